package model

// PointOutcome is the result of a single serve point.
type PointOutcome int

// Point outcomes produced by the point engine.
const (
	Ace PointOutcome = iota
	DoubleFault
	ServerWinsRally
	ReturnerWinsRally
)

// ServerWon reports whether the server took the point.
func (o PointOutcome) ServerWon() bool {
	return o == Ace || o == ServerWinsRally
}

// String returns the label written to the point log export.
func (o PointOutcome) String() string {
	switch o {
	case Ace:
		return "ace"
	case DoubleFault:
		return "double_fault"
	case ServerWinsRally:
		return "server_rally"
	case ReturnerWinsRally:
		return "returner_rally"
	default:
		return "unknown"
	}
}
