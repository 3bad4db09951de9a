package match

import "github.com/okian/matchsim/internal/domain/model"

// playGame plays a service game to completion. There is no cap on deuces.
func (m *play) playGame(server model.Player) model.GameScore {
	g := model.GameScore{Server: server}
	for point := 1; ; point++ {
		w := m.point(server, point)
		g.Points[w]++
		if model.Won(g.Points[w], g.Points[w.Opponent()], model.GamePointsToWin) {
			g.Winner = w
			return g
		}
	}
}
