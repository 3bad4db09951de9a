package model

import (
	"errors"
	"fmt"
)

// Error kinds shared by every layer of the simulator. Callers match them
// with errors.Is.
var (
	ErrConfiguration       = errors.New("configuration error")
	ErrSimulationInvariant = errors.New("simulation invariant violated")
	ErrExport              = errors.New("export error")
)

// InvariantError reports a state machine that reached an impossible state.
// UnitID and Seed are enough to replay the unit that produced it.
type InvariantError struct {
	MatchID int64
	UnitID  int
	Seed    uint64
	Stage   string
	Detail  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: match %d (unit %d, seed %d) at %s: %s",
		ErrSimulationInvariant, e.MatchID, e.UnitID, e.Seed, e.Stage, e.Detail)
}

// Unwrap lets errors.Is(err, ErrSimulationInvariant) succeed.
func (e *InvariantError) Unwrap() error { return ErrSimulationInvariant }
