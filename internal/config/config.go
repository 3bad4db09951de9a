// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Defaults come from New; Load layers a YAML file and the environment on top.
// - Validate runs before any simulation starts and fails fast.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/matchsim/internal/domain/match"
	"github.com/okian/matchsim/internal/domain/model"
)

// PlayerConfig is the configuration shape of a player profile.
type PlayerConfig struct {
	Name            string  `koanf:"name"`
	ServeWinProb    float64 `koanf:"serve_win_prob"`
	AceProb         float64 `koanf:"ace_prob"`
	DoubleFaultProb float64 `koanf:"double_fault_prob"`
}

// Profile converts the configuration into a domain profile.
func (p PlayerConfig) Profile() model.PlayerProfile {
	return model.PlayerProfile{
		Name:            strings.TrimSpace(p.Name),
		ServeWinProb:    p.ServeWinProb,
		AceProb:         p.AceProb,
		DoubleFaultProb: p.DoubleFaultProb,
	}
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// NumSimulations is the number of matches to simulate.
	NumSimulations int `koanf:"num_simulations"`

	// NumSets is the match length: 3 or 5.
	NumSets int `koanf:"num_sets"`

	// FinalSet selects the deciding-set rule: standard, advantage or super_tiebreak.
	FinalSet string `koanf:"final_set"`

	// MaxWorkers bounds the number of parallel simulation workers.
	MaxWorkers int `koanf:"max_workers"`

	// BatchSize is the number of matches in one work unit.
	BatchSize int `koanf:"batch_size"`

	// LogInterval is the number of completed matches after which a worker
	// flushes its point log buffer to the exporter.
	LogInterval int `koanf:"log_interval"`

	// LogSampleEvery exports only matches whose id is a multiple of it.
	LogSampleEvery int `koanf:"log_sample_every"`

	// Seed makes a run reproducible. Zero picks a seed at startup.
	Seed uint64 `koanf:"seed"`

	// ExportPath is the CSV point log destination; empty disables export.
	ExportPath string `koanf:"export_path"`

	// MetricsPath is the Prometheus textfile destination; empty disables it.
	MetricsPath string `koanf:"metrics_path"`

	PlayerOne PlayerConfig `koanf:"player_one"`
	PlayerTwo PlayerConfig `koanf:"player_two"`
}

// New creates a Config holding the defaults of the reference setup:
// ten thousand best-of-five matches between two seeded baseline profiles.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		NumSimulations: 10_000,
		NumSets:        5,
		FinalSet:       match.ExtendedFinalTiebreak.String(),
		MaxWorkers:     10,
		BatchSize:      10,
		LogInterval:    10_000,
		LogSampleEvery: 1,
		ExportPath:     "match_log_parallel.csv",
		PlayerOne: PlayerConfig{
			Name:            "Federer",
			ServeWinProb:    0.65,
			AceProb:         0.10,
			DoubleFaultProb: 0.05,
		},
		PlayerTwo: PlayerConfig{
			Name:            "Nadal",
			ServeWinProb:    0.62,
			AceProb:         0.08,
			DoubleFaultProb: 0.04,
		},
	}
}

// Players returns both profiles in configuration order.
func (c *Config) Players() [2]model.PlayerProfile {
	return [2]model.PlayerProfile{c.PlayerOne.Profile(), c.PlayerTwo.Profile()}
}

// Format returns the match format, or an error for an unknown final-set rule.
func (c *Config) Format() (match.Format, error) {
	rule, err := match.ParseFinalSetRule(c.FinalSet)
	if err != nil {
		return match.Format{}, err
	}
	return match.Format{NumSets: c.NumSets, FinalSet: rule}, nil
}

// Validate reports every invalid field at once. The result wraps
// ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	positive := []struct {
		key   string
		value int
	}{
		{"num_simulations", c.NumSimulations},
		{"max_workers", c.MaxWorkers},
		{"batch_size", c.BatchSize},
		{"log_interval", c.LogInterval},
		{"log_sample_every", c.LogSampleEvery},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %d", p.key, p.value))
		}
	}

	format, err := c.Format()
	if err == nil {
		err = format.Validate()
	}
	if err != nil {
		errs = append(errs, err)
	}

	players := c.Players()
	for i, p := range players {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", model.Player(i), err))
		}
	}
	if players[0].Name != "" && players[0].Name == players[1].Name {
		errs = append(errs, fmt.Errorf("players must have distinct names, both are %q", players[0].Name))
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
