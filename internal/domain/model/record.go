package model

import "fmt"

// Scoring thresholds of the game, set and tiebreak win predicates.
const (
	GamePointsToWin       = 4
	SetGamesToWin         = 6
	TiebreakPoints        = 7
	ExtendedTiebreakPoint = 10
	WinningMargin         = 2
)

// MatchRecord is the immutable summary of a completed match.
type MatchRecord struct {
	ID           int64
	Players      [2]string
	BestOf       int
	SetsWon      [2]int
	Sets         []SetScore
	Aces         [2]int
	DoubleFaults [2]int
	TotalPoints  int
	Winner       Player
}

// SetsToWin returns the number of sets needed to take a best-of-n match.
func SetsToWin(bestOf int) int { return bestOf/2 + 1 }

// Won reports whether a player with own points against opp points has
// reached target with the required margin.
func Won(own, opp, target int) bool {
	return own >= target && own-opp >= WinningMargin
}

// WinnerName returns the name of the match winner.
func (r *MatchRecord) WinnerName() string { return r.Players[r.Winner] }

// Verify cross-checks the record's counters. A non-nil error wraps
// ErrSimulationInvariant and names the first inconsistency found.
func (r *MatchRecord) Verify() error {
	if r.BestOf != 3 && r.BestOf != 5 {
		return r.invalid("best of %d", r.BestOf)
	}
	need := SetsToWin(r.BestOf)
	loser := r.Winner.Opponent()
	if r.SetsWon[r.Winner] != need || r.SetsWon[loser] >= need || r.SetsWon[loser] < 0 {
		return r.invalid("sets %d-%d for best of %d", r.SetsWon[PlayerOne], r.SetsWon[PlayerTwo], r.BestOf)
	}
	if len(r.Sets) != r.SetsWon[PlayerOne]+r.SetsWon[PlayerTwo] {
		return r.invalid("%d sets recorded for a %d-%d score", len(r.Sets), r.SetsWon[PlayerOne], r.SetsWon[PlayerTwo])
	}

	var setsWon, aces, doubleFaults [2]int
	points := 0
	for i := range r.Sets {
		s := &r.Sets[i]
		n, err := verifySet(s)
		if err != nil {
			return r.invalid("set %d: %v", i+1, err)
		}
		points += n
		setsWon[s.Winner]++
		for p := range aces {
			aces[p] += s.Aces[p]
			doubleFaults[p] += s.DoubleFaults[p]
		}
	}
	switch {
	case setsWon != r.SetsWon:
		return r.invalid("set winners %v disagree with sets won %v", setsWon, r.SetsWon)
	case aces != r.Aces:
		return r.invalid("set aces %v disagree with match aces %v", aces, r.Aces)
	case doubleFaults != r.DoubleFaults:
		return r.invalid("set double faults %v disagree with match double faults %v", doubleFaults, r.DoubleFaults)
	case points != r.TotalPoints:
		return r.invalid("%d points in games, %d recorded", points, r.TotalPoints)
	}
	return nil
}

// verifySet checks one set and returns the number of points played in it.
func verifySet(s *SetScore) (int, error) {
	w, l := s.Winner, s.Winner.Opponent()
	var won [2]int
	points := 0
	for j, g := range s.Games {
		if g.Points[0] < 0 || g.Points[1] < 0 {
			return 0, fmt.Errorf("game %d has negative points %v", j+1, g.Points)
		}
		if !Won(g.Points[g.Winner], g.Points[g.Winner.Opponent()], GamePointsToWin) {
			return 0, fmt.Errorf("game %d won at %s", j+1, GameLabel(g.Points[g.Server], g.Points[g.Server.Opponent()]))
		}
		won[g.Winner]++
		points += g.Points[0] + g.Points[1]
	}
	if tb := s.Tiebreak; tb != nil {
		if !Won(tb.Points[tb.Winner], tb.Points[tb.Winner.Opponent()], tb.Target) {
			return 0, fmt.Errorf("tiebreak to %d won at %v", tb.Target, tb.Points)
		}
		if tb.Winner != w || won[w] != SetGamesToWin || won[l] != SetGamesToWin {
			return 0, fmt.Errorf("tiebreak played at %v won by %v", won, tb.Winner)
		}
		won[w]++
		points += tb.Points[0] + tb.Points[1]
	} else if !Won(won[w], won[l], SetGamesToWin) {
		return 0, fmt.Errorf("set won at %d-%d", won[w], won[l])
	}
	if won != s.GamesWon {
		return 0, fmt.Errorf("game winners %v disagree with games won %v", won, s.GamesWon)
	}
	return points, nil
}

func (r *MatchRecord) invalid(format string, args ...any) error {
	return &InvariantError{MatchID: r.ID, Stage: "match", Detail: fmt.Sprintf(format, args...)}
}
