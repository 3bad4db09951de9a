package model

import "fmt"

// GameScore is a completed service game.
type GameScore struct {
	Server Player
	Points [2]int
	Winner Player
}

// TiebreakScore is a completed tiebreak. Target is 7 for a regular
// tiebreak and 10 for the extended final-set variant.
type TiebreakScore struct {
	FirstServer Player
	Target      int
	Points      [2]int
	Winner      Player
}

// SetScore is a completed set. The tiebreak, when played, is not part of
// Games but is counted in GamesWon as the deciding game.
type SetScore struct {
	Games        []GameScore
	GamesWon     [2]int
	Tiebreak     *TiebreakScore
	Aces         [2]int
	DoubleFaults [2]int
	Winner       Player
}

// TiebreakPlayed reports whether the set was decided by a tiebreak.
func (s *SetScore) TiebreakPlayed() bool { return s.Tiebreak != nil }

// String renders the set as "7-6(5)" from player one's point of view.
func (s *SetScore) String() string {
	if !s.TiebreakPlayed() {
		return fmt.Sprintf("%d-%d", s.GamesWon[PlayerOne], s.GamesWon[PlayerTwo])
	}
	loser := s.Tiebreak.Winner.Opponent()
	return fmt.Sprintf("%d-%d(%d)", s.GamesWon[PlayerOne], s.GamesWon[PlayerTwo], s.Tiebreak.Points[loser])
}

var pointNames = [...]string{"0", "15", "30", "40"}

// GameLabel renders a regular game score the way an umpire calls it, from
// the server's side: "15-30", "Deuce", "Ad-In", "Ad-Out" or "Game".
// Negative counts are not a game score and render as raw numbers.
func GameLabel(serverPoints, receiverPoints int) string {
	if serverPoints < 0 || receiverPoints < 0 {
		return fmt.Sprintf("%d-%d", serverPoints, receiverPoints)
	}
	diff := serverPoints - receiverPoints
	switch {
	case serverPoints >= 4 && diff >= 2, receiverPoints >= 4 && diff <= -2:
		return "Game"
	case serverPoints >= 3 && diff == 0:
		return "Deuce"
	case serverPoints >= 3 && receiverPoints >= 3 && diff == 1:
		return "Ad-In"
	case serverPoints >= 3 && receiverPoints >= 3 && diff == -1:
		return "Ad-Out"
	}
	return pointNames[serverPoints] + "-" + pointNames[receiverPoints]
}
