// Package match simulates tennis matches point by point.
package match

import (
	"github.com/okian/matchsim/internal/domain/model"
)

// serveModel holds the cumulative thresholds that split [0,1) into ace,
// double fault, rally won by the server and rally won by the returner.
type serveModel struct {
	ace   float64
	fault float64
	rally float64
}

// newServeModel assumes a validated profile. Points not decided by the serve
// itself go to the server with probability ServeWinProb.
func newServeModel(p model.PlayerProfile) serveModel {
	fault := p.AceProb + p.DoubleFaultProb
	rally := fault + p.ServeWinProb*(1-fault)
	if p.ServeWinProb >= 1 {
		rally = 1
	}
	return serveModel{ace: p.AceProb, fault: fault, rally: rally}
}

func (s serveModel) draw(u float64) model.PointOutcome {
	switch {
	case u < s.ace:
		return model.Ace
	case u < s.fault:
		return model.DoubleFault
	case u < s.rally:
		return model.ServerWinsRally
	default:
		return model.ReturnerWinsRally
	}
}

// PlayPoint draws the outcome of one point served by server. It consumes
// exactly one value from rng.
func PlayPoint(server model.PlayerProfile, rng RNG) (model.PointOutcome, error) {
	if err := server.Validate(); err != nil {
		return 0, err
	}
	return newServeModel(server).draw(rng.Float64()), nil
}
