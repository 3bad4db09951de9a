// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Player identifies one side of a match.
type Player int

// Sides of a match, in configuration order.
const (
	PlayerOne Player = iota
	PlayerTwo
)

// Opponent returns the other side.
func (p Player) Opponent() Player { return 1 - p }

func (p Player) String() string {
	if p == PlayerOne {
		return "player_one"
	}
	return "player_two"
}

// PlayerProfile is the immutable statistical descriptor of a player.
// AceProb and DoubleFaultProb carve out the points decided by the serve
// itself; ServeWinProb is the server's chance of winning any other point.
type PlayerProfile struct {
	Name            string
	ServeWinProb    float64
	AceProb         float64
	DoubleFaultProb float64
}

// Validate checks that every probability lies in [0,1] and that aces and
// double faults do not exceed the whole probability mass.
func (p PlayerProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: player name must not be empty", ErrConfiguration)
	}
	checks := []struct {
		field string
		value float64
	}{
		{"serve_win_prob", p.ServeWinProb},
		{"ace_prob", p.AceProb},
		{"double_fault_prob", p.DoubleFaultProb},
	}
	for _, c := range checks {
		// NaN fails both comparisons, so test for the valid range.
		if !(c.value >= 0 && c.value <= 1) {
			return fmt.Errorf("%w: %s %s=%v outside [0,1]", ErrConfiguration, p.Name, c.field, c.value)
		}
	}
	if p.AceProb+p.DoubleFaultProb > 1 {
		return fmt.Errorf("%w: %s ace_prob+double_fault_prob=%v exceeds 1",
			ErrConfiguration, p.Name, p.AceProb+p.DoubleFaultProb)
	}
	return nil
}
