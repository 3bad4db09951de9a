package match

import "github.com/okian/matchsim/internal/domain/model"

// playTiebreak plays a tiebreak to target points with a two-point margin.
func (m *play) playTiebreak(first model.Player, target int) model.TiebreakScore {
	tb := model.TiebreakScore{FirstServer: first, Target: target}
	for point := 1; ; point++ {
		w := m.point(tiebreakServer(first, point), point)
		tb.Points[w]++
		if model.Won(tb.Points[w], tb.Points[w.Opponent()], target) {
			tb.Winner = w
			return tb
		}
	}
}

// tiebreakServer returns the server of the 1-based point: the first server
// takes point 1, then each player serves two in a row.
func tiebreakServer(first model.Player, point int) model.Player {
	if (point/2)%2 == 1 {
		return first.Opponent()
	}
	return first
}
