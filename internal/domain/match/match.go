package match

import (
	"fmt"

	"github.com/okian/matchsim/internal/domain/model"
)

// PointRecorder receives every point of a match in play order.
type PointRecorder interface {
	Record(entry model.PointLogEntry)
}

// Engine plays matches between two fixed players under a fixed format.
// It holds no mutable state and may be shared by any number of goroutines.
type Engine struct {
	players [2]model.PlayerProfile
	serve   [2]serveModel
	format  Format
}

// NewEngine validates the players and the format once, up front.
func NewEngine(players [2]model.PlayerProfile, format Format) (*Engine, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	for _, p := range players {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	if players[0].Name == players[1].Name {
		return nil, fmt.Errorf("%w: players must have distinct names, both are %q",
			model.ErrConfiguration, players[0].Name)
	}
	return &Engine{
		players: players,
		serve:   [2]serveModel{newServeModel(players[0]), newServeModel(players[1])},
		format:  format,
	}, nil
}

// Format returns the match format the engine plays.
func (e *Engine) Format() Format { return e.format }

// Players returns the two profiles in configuration order.
func (e *Engine) Players() [2]model.PlayerProfile { return e.players }

// Play simulates match id to completion using rng. rec may be nil. The
// returned record is complete and verified; it is never modified again.
func (e *Engine) Play(id int64, rng RNG, rec PointRecorder) (*model.MatchRecord, error) {
	m := &play{
		engine: e,
		rng:    rng,
		rec:    rec,
		record: &model.MatchRecord{
			ID:      id,
			Players: [2]string{e.players[0].Name, e.players[1].Name},
			BestOf:  e.format.NumSets,
		},
		server: model.PlayerOne,
	}
	if rng.Float64() < 0.5 {
		m.server = model.PlayerTwo
	}

	r := m.record
	need := e.format.SetsToWin()
	for r.SetsWon[model.PlayerOne] < need && r.SetsWon[model.PlayerTwo] < need {
		final := len(r.Sets) == e.format.NumSets-1
		set, err := m.playSet(e.format.tiebreakTarget(final))
		if err != nil {
			return nil, err
		}
		r.Sets = append(r.Sets, set)
		r.SetsWon[set.Winner]++
	}
	if r.SetsWon[model.PlayerTwo] == need {
		r.Winner = model.PlayerTwo
	}

	if err := r.Verify(); err != nil {
		return nil, err
	}
	return r, nil
}

// play is the mutable state of one match in progress.
type play struct {
	engine *Engine
	rng    RNG
	rec    PointRecorder
	record *model.MatchRecord

	set       *model.SetScore
	setIndex  int
	gameIndex int
	server    model.Player // server of the next game
}

// point plays a single point and returns its winner.
func (m *play) point(server model.Player, index int) model.Player {
	outcome := m.engine.serve[server].draw(m.rng.Float64())

	m.record.TotalPoints++
	switch outcome {
	case model.Ace:
		m.record.Aces[server]++
		m.set.Aces[server]++
	case model.DoubleFault:
		m.record.DoubleFaults[server]++
		m.set.DoubleFaults[server]++
	}

	if m.rec != nil {
		m.rec.Record(model.PointLogEntry{
			MatchID:    m.record.ID,
			SetIndex:   m.setIndex,
			GameIndex:  m.gameIndex,
			PointIndex: index,
			Server:     m.engine.players[server].Name,
			Outcome:    outcome,
		})
	}

	if outcome.ServerWon() {
		return server
	}
	return server.Opponent()
}
