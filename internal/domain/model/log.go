package model

// PointLogEntry is one row of the point-by-point export. Indices are
// 1-based; the tiebreak of a set is its thirteenth game.
type PointLogEntry struct {
	MatchID    int64
	SetIndex   int
	GameIndex  int
	PointIndex int
	Server     string
	Outcome    PointOutcome
}

// WorkUnit is a disjoint range of match ids simulated by one worker with
// its own random stream.
type WorkUnit struct {
	ID         int
	FirstMatch int64
	Count      int
}
