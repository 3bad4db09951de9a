package model_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/matchsim/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPlayerProfile(t *testing.T) {
	Convey("Given player profiles", t, func() {
		Convey("When the profile is the reference baseline", func() {
			p := model.PlayerProfile{Name: "Federer", ServeWinProb: 0.65, AceProb: 0.10, DoubleFaultProb: 0.05}
			So(p.Validate(), ShouldBeNil)
		})

		Convey("When the boundaries are hit exactly", func() {
			So(model.PlayerProfile{Name: "a", ServeWinProb: 1, AceProb: 0.5, DoubleFaultProb: 0.5}.Validate(), ShouldBeNil)
			So(model.PlayerProfile{Name: "b"}.Validate(), ShouldBeNil)
		})

		Convey("When a profile is invalid", func() {
			invalid := []model.PlayerProfile{
				{Name: "", ServeWinProb: 0.6},
				{Name: "  ", ServeWinProb: 0.6},
				{Name: "x", ServeWinProb: 1.01},
				{Name: "x", ServeWinProb: 0.6, AceProb: -0.01},
				{Name: "x", ServeWinProb: 0.6, DoubleFaultProb: 2},
				{Name: "x", ServeWinProb: math.NaN()},
				{Name: "x", ServeWinProb: 0.6, AceProb: 0.6, DoubleFaultProb: 0.5},
			}
			for _, p := range invalid {
				So(errors.Is(p.Validate(), model.ErrConfiguration), ShouldBeTrue)
			}
		})
	})

	Convey("Given the two sides of a match", t, func() {
		So(model.PlayerOne.Opponent(), ShouldEqual, model.PlayerTwo)
		So(model.PlayerTwo.Opponent(), ShouldEqual, model.PlayerOne)
		So(model.PlayerOne.String(), ShouldEqual, "player_one")
		So(model.PlayerTwo.String(), ShouldEqual, "player_two")
	})
}

func TestPointOutcome(t *testing.T) {
	Convey("Given every point outcome", t, func() {
		So(model.Ace.ServerWon(), ShouldBeTrue)
		So(model.ServerWinsRally.ServerWon(), ShouldBeTrue)
		So(model.DoubleFault.ServerWon(), ShouldBeFalse)
		So(model.ReturnerWinsRally.ServerWon(), ShouldBeFalse)

		So(model.Ace.String(), ShouldEqual, "ace")
		So(model.DoubleFault.String(), ShouldEqual, "double_fault")
		So(model.ServerWinsRally.String(), ShouldEqual, "server_rally")
		So(model.ReturnerWinsRally.String(), ShouldEqual, "returner_rally")
		So(model.PointOutcome(42).String(), ShouldEqual, "unknown")
	})
}

func TestGameLabel(t *testing.T) {
	Convey("Given game scores from the server's side", t, func() {
		cases := []struct {
			server, receiver int
			want             string
		}{
			{0, 0, "0-0"},
			{1, 2, "15-30"},
			{3, 0, "40-0"},
			{3, 3, "Deuce"},
			{5, 5, "Deuce"},
			{4, 3, "Ad-In"},
			{6, 7, "Ad-Out"},
			{4, 0, "Game"},
			{2, 4, "Game"},
			{8, 6, "Game"},
			{-1, 2, "-1-2"},
			{3, -4, "3--4"},
		}
		for _, c := range cases {
			So(model.GameLabel(c.server, c.receiver), ShouldEqual, c.want)
		}
	})
}

func TestWon(t *testing.T) {
	Convey("Given the win predicate", t, func() {
		So(model.Won(4, 2, model.GamePointsToWin), ShouldBeTrue)
		So(model.Won(4, 3, model.GamePointsToWin), ShouldBeFalse)
		So(model.Won(6, 4, model.SetGamesToWin), ShouldBeTrue)
		So(model.Won(6, 5, model.SetGamesToWin), ShouldBeFalse)
		So(model.Won(9, 9, model.TiebreakPoints), ShouldBeFalse)
		So(model.Won(12, 10, model.ExtendedTiebreakPoint), ShouldBeTrue)
		So(model.SetsToWin(3), ShouldEqual, 2)
		So(model.SetsToWin(5), ShouldEqual, 3)
	})
}

// loveSet is a 6-0 set won by p with one ace per game.
func loveSet(p model.Player) model.SetScore {
	s := model.SetScore{Winner: p}
	for i := 0; i < 6; i++ {
		var g model.GameScore
		g.Server = model.Player(i % 2)
		g.Winner = p
		g.Points[p] = 4
		s.Games = append(s.Games, g)
	}
	s.GamesWon[p] = 6
	s.Aces[p] = 6
	return s
}

func tiebreakSet() model.SetScore {
	s := model.SetScore{Winner: model.PlayerTwo}
	for i := 0; i < 12; i++ {
		w := model.Player(i % 2)
		var g model.GameScore
		g.Server, g.Winner = w, w
		g.Points[w] = 4
		s.Games = append(s.Games, g)
	}
	s.Tiebreak = &model.TiebreakScore{FirstServer: model.PlayerOne, Target: 7, Points: [2]int{5, 7}, Winner: model.PlayerTwo}
	s.GamesWon = [2]int{6, 7}
	return s
}

func validRecord() *model.MatchRecord {
	sets := []model.SetScore{loveSet(model.PlayerOne), tiebreakSet(), loveSet(model.PlayerOne)}
	return &model.MatchRecord{
		ID:          9,
		Players:     [2]string{"Federer", "Nadal"},
		BestOf:      3,
		SetsWon:     [2]int{2, 1},
		Sets:        sets,
		Aces:        [2]int{12, 0},
		TotalPoints: 24 + 48 + 12 + 24,
		Winner:      model.PlayerOne,
	}
}

func TestMatchRecordVerify(t *testing.T) {
	Convey("Given a consistent record", t, func() {
		r := validRecord()

		Convey("It verifies", func() {
			So(r.Verify(), ShouldBeNil)
			So(r.WinnerName(), ShouldEqual, "Federer")
			So(r.Sets[1].String(), ShouldEqual, "6-7(5)")
			So(r.Sets[0].String(), ShouldEqual, "6-0")
		})

		mutations := []struct {
			name   string
			mutate func(*model.MatchRecord)
		}{
			{"an unsupported length", func(r *model.MatchRecord) { r.BestOf = 4 }},
			{"too few sets for the winner", func(r *model.MatchRecord) { r.SetsWon = [2]int{1, 1} }},
			{"a missing set", func(r *model.MatchRecord) { r.Sets = r.Sets[:2] }},
			{"a miscounted ace", func(r *model.MatchRecord) { r.Aces[model.PlayerOne]++ }},
			{"a miscounted double fault", func(r *model.MatchRecord) { r.DoubleFaults[model.PlayerTwo] = 1 }},
			{"a miscounted point", func(r *model.MatchRecord) { r.TotalPoints-- }},
			{"a game won without a margin", func(r *model.MatchRecord) { r.Sets[0].Games[0].Points = [2]int{4, 3} }},
			{"a set won 6-5", func(r *model.MatchRecord) {
				s := &r.Sets[0]
				s.Games = s.Games[:5]
				s.GamesWon = [2]int{5, 0}
			}},
			{"a tiebreak before 6-6", func(r *model.MatchRecord) { r.Sets[1].Games = r.Sets[1].Games[:10] }},
			{"a short tiebreak", func(r *model.MatchRecord) { r.Sets[1].Tiebreak.Points = [2]int{5, 6} }},
		}
		for _, m := range mutations {
			Convey("It rejects "+m.name, func() {
				m.mutate(r)
				err := r.Verify()

				var inv *model.InvariantError
				So(errors.As(err, &inv), ShouldBeTrue)
				So(errors.Is(err, model.ErrSimulationInvariant), ShouldBeTrue)
				So(inv.MatchID, ShouldEqual, 9)
				So(inv.Stage, ShouldEqual, "match")
			})
		}

		Convey("It names an unfinished game by its umpire call", func() {
			r.Sets[0].Games[0].Points = [2]int{4, 3}
			So(r.Verify().Error(), ShouldContainSubstring, "set 1: game 1 won at Ad-In")
		})
	})
}

func TestInvariantError(t *testing.T) {
	Convey("Given an invariant error", t, func() {
		err := &model.InvariantError{MatchID: 12, UnitID: 3, Seed: 99, Stage: "set 2", Detail: "7-7 without a tiebreak"}

		So(errors.Is(err, model.ErrSimulationInvariant), ShouldBeTrue)
		So(errors.Is(err, model.ErrConfiguration), ShouldBeFalse)
		So(err.Error(), ShouldContainSubstring, "match 12")
		So(err.Error(), ShouldContainSubstring, "unit 3")
		So(err.Error(), ShouldContainSubstring, "seed 99")
		So(err.Error(), ShouldContainSubstring, "set 2")
	})
}
