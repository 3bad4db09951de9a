// Package stats reduces match records into run-wide statistics.
//
// The reduction is associative and commutative: workers fold records into
// private accumulators and the partial results are merged once, in any
// order, with the same outcome.
package stats

import (
	"maps"

	"github.com/okian/matchsim/internal/domain/model"
)

// PlayerTotals accumulates one player's results across matches.
type PlayerTotals struct {
	Wins         int64
	Aces         int64
	DoubleFaults int64
}

func (t PlayerTotals) plus(o PlayerTotals) PlayerTotals {
	return PlayerTotals{
		Wins:         t.Wins + o.Wins,
		Aces:         t.Aces + o.Aces,
		DoubleFaults: t.DoubleFaults + o.DoubleFaults,
	}
}

// AggregateStats is the reduction of any number of match records. The zero
// value is the identity element.
type AggregateStats struct {
	Players      map[string]PlayerTotals
	TotalShots   int64
	TotalMatches int64
}

// New returns an empty accumulator.
func New() AggregateStats {
	return AggregateStats{Players: make(map[string]PlayerTotals, 2)}
}

// Add folds r into s in place. It is the accumulator form of Combine for
// callers that own s exclusively.
func (s *AggregateStats) Add(r *model.MatchRecord) {
	if s.Players == nil {
		s.Players = make(map[string]PlayerTotals, 2)
	}
	for _, p := range []model.Player{model.PlayerOne, model.PlayerTwo} {
		t := s.Players[r.Players[p]]
		t.Aces += int64(r.Aces[p])
		t.DoubleFaults += int64(r.DoubleFaults[p])
		if r.Winner == p {
			t.Wins++
		}
		s.Players[r.Players[p]] = t
	}
	s.TotalShots += int64(r.TotalPoints)
	s.TotalMatches++
}

// Clone returns a deep copy of s.
func (s AggregateStats) Clone() AggregateStats {
	out := s
	out.Players = maps.Clone(s.Players)
	if out.Players == nil {
		out.Players = make(map[string]PlayerTotals, 2)
	}
	return out
}

// Combine returns s with r folded in. s is not modified.
func Combine(s AggregateStats, r *model.MatchRecord) AggregateStats {
	out := s.Clone()
	out.Add(r)
	return out
}

// Merge returns the reduction of two partial aggregates. Neither argument
// is modified.
func Merge(a, b AggregateStats) AggregateStats {
	out := a.Clone()
	for name, t := range b.Players {
		out.Players[name] = out.Players[name].plus(t)
	}
	out.TotalShots += b.TotalShots
	out.TotalMatches += b.TotalMatches
	return out
}

// Reduce merges any number of partial aggregates.
func Reduce(parts ...AggregateStats) AggregateStats {
	out := New()
	for _, p := range parts {
		out = Merge(out, p)
	}
	return out
}

// WinPercentage returns the share of matches won by name, in percent.
func (s AggregateStats) WinPercentage(name string) float64 {
	if s.TotalMatches == 0 {
		return 0
	}
	return float64(s.Players[name].Wins) / float64(s.TotalMatches) * 100
}

// AvgAces returns name's mean aces per match.
func (s AggregateStats) AvgAces(name string) float64 {
	return s.perMatch(s.Players[name].Aces)
}

// AvgDoubleFaults returns name's mean double faults per match.
func (s AggregateStats) AvgDoubleFaults(name string) float64 {
	return s.perMatch(s.Players[name].DoubleFaults)
}

func (s AggregateStats) perMatch(n int64) float64 {
	if s.TotalMatches == 0 {
		return 0
	}
	return float64(n) / float64(s.TotalMatches)
}
