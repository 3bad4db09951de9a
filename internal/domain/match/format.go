package match

import (
	"fmt"
	"strings"

	"github.com/okian/matchsim/internal/domain/model"
)

// FinalSetRule selects how the deciding set resolves at 6-6.
type FinalSetRule int

// Final-set rules. Every other set always uses the 7-point tiebreak.
const (
	// StandardTiebreak plays a 7-point tiebreak like any other set.
	StandardTiebreak FinalSetRule = iota
	// NoTiebreakFinalSet keeps playing games until one player leads by two.
	NoTiebreakFinalSet
	// ExtendedFinalTiebreak plays a 10-point tiebreak.
	ExtendedFinalTiebreak
)

var finalSetNames = map[FinalSetRule]string{
	StandardTiebreak:      "standard",
	NoTiebreakFinalSet:    "advantage",
	ExtendedFinalTiebreak: "super_tiebreak",
}

func (r FinalSetRule) String() string {
	if name, ok := finalSetNames[r]; ok {
		return name
	}
	return fmt.Sprintf("FinalSetRule(%d)", int(r))
}

// ParseFinalSetRule maps a configuration value to a rule.
func ParseFinalSetRule(s string) (FinalSetRule, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for rule, name := range finalSetNames {
		if key == name {
			return rule, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown final set rule %q (want standard, advantage or super_tiebreak)",
		model.ErrConfiguration, s)
}

// Format describes the match length and the deciding-set rule.
type Format struct {
	NumSets  int
	FinalSet FinalSetRule
}

// Validate rejects anything but best of 3 or best of 5 and unknown rules.
func (f Format) Validate() error {
	if f.NumSets != 3 && f.NumSets != 5 {
		return fmt.Errorf("%w: num_sets must be 3 or 5, got %d", model.ErrConfiguration, f.NumSets)
	}
	if _, ok := finalSetNames[f.FinalSet]; !ok {
		return fmt.Errorf("%w: unknown final set rule %d", model.ErrConfiguration, int(f.FinalSet))
	}
	return nil
}

// SetsToWin returns 2 for best of 3 and 3 for best of 5.
func (f Format) SetsToWin() int { return model.SetsToWin(f.NumSets) }

// tiebreakTarget returns the points needed to win the tiebreak played at
// 6-6, or 0 when the set has no tiebreak.
func (f Format) tiebreakTarget(finalSet bool) int {
	if !finalSet {
		return model.TiebreakPoints
	}
	switch f.FinalSet {
	case NoTiebreakFinalSet:
		return 0
	case ExtendedFinalTiebreak:
		return model.ExtendedTiebreakPoint
	default:
		return model.TiebreakPoints
	}
}
