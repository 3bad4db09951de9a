package match

import (
	"fmt"

	"github.com/okian/matchsim/internal/domain/model"
)

// playSet plays one set. tiebreakAt is the tiebreak target used at 6-6, or
// 0 to play on until a two-game lead.
func (m *play) playSet(tiebreakAt int) (model.SetScore, error) {
	m.set = &model.SetScore{}
	m.setIndex++
	m.gameIndex = 0
	s := m.set

	for {
		m.gameIndex++
		if tiebreakAt > 0 && s.GamesWon[model.PlayerOne] == model.SetGamesToWin && s.GamesWon[model.PlayerTwo] == model.SetGamesToWin {
			tb := m.playTiebreak(m.server, tiebreakAt)
			// The tiebreak counts as one game in the service rotation.
			m.server = m.server.Opponent()
			s.Tiebreak = &tb
			s.GamesWon[tb.Winner]++
			s.Winner = tb.Winner
			return *s, nil
		}

		g := m.playGame(m.server)
		m.server = m.server.Opponent()
		s.Games = append(s.Games, g)
		s.GamesWon[g.Winner]++

		w, l := s.GamesWon[g.Winner], s.GamesWon[g.Winner.Opponent()]
		if model.Won(w, l, model.SetGamesToWin) {
			s.Winner = g.Winner
			return *s, nil
		}
		if tiebreakAt > 0 && w > model.SetGamesToWin {
			return model.SetScore{}, &model.InvariantError{
				MatchID: m.record.ID,
				Stage:   fmt.Sprintf("set %d", m.setIndex),
				Detail:  fmt.Sprintf("games %d-%d passed 6-6 without a tiebreak", s.GamesWon[model.PlayerOne], s.GamesWon[model.PlayerTwo]),
			}
		}
	}
}
