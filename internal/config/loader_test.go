package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/matchsim/internal/config"
	"github.com/okian/matchsim/internal/domain/match"
	"github.com/okian/matchsim/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.NumSimulations, convey.ShouldEqual, 10_000)
				convey.So(cfg.NumSets, convey.ShouldEqual, 5)
				convey.So(cfg.MaxWorkers, convey.ShouldEqual, 10)
				convey.So(cfg.BatchSize, convey.ShouldEqual, 10)
				convey.So(cfg.LogInterval, convey.ShouldEqual, 10_000)
				convey.So(cfg.LogSampleEvery, convey.ShouldEqual, 1)
				convey.So(cfg.FinalSet, convey.ShouldEqual, "super_tiebreak")
				convey.So(cfg.ExportPath, convey.ShouldEqual, "match_log_parallel.csv")
				convey.So(cfg.PlayerOne.Name, convey.ShouldEqual, "Federer")
				convey.So(cfg.PlayerTwo.Name, convey.ShouldEqual, "Nadal")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MATCHSIM_NUM_SIMULATIONS", "500")
			_ = os.Setenv("MATCHSIM_NUM_SETS", "3")
			_ = os.Setenv("MATCHSIM_FINAL_SET", "advantage")
			_ = os.Setenv("MATCHSIM_SEED", "12345")
			_ = os.Setenv("MATCHSIM_PLAYER_ONE__NAME", "Borg")
			_ = os.Setenv("MATCHSIM_PLAYER_ONE__ACE_PROB", "0.2")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.NumSimulations, convey.ShouldEqual, 500)
				convey.So(cfg.NumSets, convey.ShouldEqual, 3)
				convey.So(cfg.FinalSet, convey.ShouldEqual, "advantage")
				convey.So(cfg.Seed, convey.ShouldEqual, uint64(12345))
				convey.So(cfg.PlayerOne.Name, convey.ShouldEqual, "Borg")
				convey.So(cfg.PlayerOne.AceProb, convey.ShouldAlmostEqual, 0.2)
				convey.So(cfg.PlayerOne.ServeWinProb, convey.ShouldAlmostEqual, 0.65) // default kept
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
num_simulations: 2000
max_workers: 4
batch_size: 25
player_two:
  name: "McEnroe"
  serve_win_prob: 0.7
`
			tmpFile := createTempConfigFile(t, yamlContent)

			_ = os.Setenv("MATCHSIM_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.NumSimulations, convey.ShouldEqual, 2000)
				convey.So(cfg.MaxWorkers, convey.ShouldEqual, 4)
				convey.So(cfg.BatchSize, convey.ShouldEqual, 25)
				convey.So(cfg.PlayerTwo.Name, convey.ShouldEqual, "McEnroe")
				convey.So(cfg.PlayerTwo.ServeWinProb, convey.ShouldAlmostEqual, 0.7)
				convey.So(cfg.PlayerTwo.AceProb, convey.ShouldAlmostEqual, 0.08) // default kept
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
num_simulations: 2000
max_workers: 4
`
			tmpFile := createTempConfigFile(t, yamlContent)

			_ = os.Setenv("MATCHSIM_CONFIG", tmpFile)
			_ = os.Setenv("MATCHSIM_MAX_WORKERS", "8")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.NumSimulations, convey.ShouldEqual, 2000) // From file
				convey.So(cfg.MaxWorkers, convey.ShouldEqual, 8)        // Overridden by env
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("MATCHSIM_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should report a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the environment holds invalid values", func() {
			_ = os.Setenv("MATCHSIM_NUM_SETS", "4")
			_ = os.Setenv("MATCHSIM_PLAYER_TWO__ACE_PROB", "0.7")
			_ = os.Setenv("MATCHSIM_PLAYER_TWO__DOUBLE_FAULT_PROB", "0.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail with a configuration error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(errors.Is(err, model.ErrConfiguration), convey.ShouldBeTrue)
			})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.New()

		convey.Convey("It should be valid", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("It should expose domain values", func() {
			format, err := cfg.Format()
			convey.So(err, convey.ShouldBeNil)
			convey.So(format.NumSets, convey.ShouldEqual, 5)
			convey.So(format.FinalSet, convey.ShouldEqual, match.ExtendedFinalTiebreak)

			players := cfg.Players()
			convey.So(players[0].Name, convey.ShouldEqual, "Federer")
			convey.So(players[1].DoubleFaultProb, convey.ShouldAlmostEqual, 0.04)
		})

		convey.Convey("When several fields are invalid", func() {
			cfg.NumSimulations = 0
			cfg.MaxWorkers = -1
			cfg.FinalSet = "sudden_death"

			err := cfg.Validate()

			convey.Convey("Then every problem is reported", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "num_simulations")
				convey.So(err.Error(), convey.ShouldContainSubstring, "max_workers")
				convey.So(err.Error(), convey.ShouldContainSubstring, "sudden_death")
			})
		})

		convey.Convey("When both players share a name", func() {
			cfg.PlayerTwo.Name = cfg.PlayerOne.Name
			convey.So(errors.Is(cfg.Validate(), model.ErrConfiguration), convey.ShouldBeTrue)
		})

		convey.Convey("When the log format is unknown", func() {
			cfg.LogFormat = "xml"
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})
	})
}

// Helper functions

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "MATCHSIM_") {
			_ = os.Unsetenv(strings.SplitN(kv, "=", 2)[0])
		}
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
