// Package types contains common types used across the application
package types

import "sort"

// Standing is one player's line in a run summary.
type Standing struct {
	Rank            int
	Player          string
	Wins            int64
	WinPct          float64
	AvgAces         float64
	AvgDoubleFaults float64
}

// Rank orders standings by wins, ties by name, and assigns 1-based ranks.
// Tied players share a rank.
func Rank(s []Standing) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Wins != s[j].Wins {
			return s[i].Wins > s[j].Wins
		}
		return s[i].Player < s[j].Player
	})
	for i := range s {
		if i > 0 && s[i].Wins == s[i-1].Wins {
			s[i].Rank = s[i-1].Rank
			continue
		}
		s[i].Rank = i + 1
	}
}
