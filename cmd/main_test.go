package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestRun(t *testing.T) {
	convey.Convey("Given a small configured run", t, func() {
		dir := t.TempDir()
		csvPath := filepath.Join(dir, "points.csv")
		promPath := filepath.Join(dir, "matchsim.prom")
		setEnv(t, map[string]string{
			"MATCHSIM_NUM_SIMULATIONS": "40",
			"MATCHSIM_NUM_SETS":        "3",
			"MATCHSIM_MAX_WORKERS":     "2",
			"MATCHSIM_BATCH_SIZE":      "6",
			"MATCHSIM_SEED":            "5",
			"MATCHSIM_EXPORT_PATH":     csvPath,
			"MATCHSIM_METRICS_PATH":    promPath,
			"MATCHSIM_LOG_FORMAT":      "json",
		})

		var stdout, stderr bytes.Buffer
		code := run(context.Background(), &stdout, &stderr)

		convey.Convey("Then it succeeds and prints the summary", func() {
			convey.So(code, convey.ShouldEqual, exitOK)
			out := stdout.String()
			convey.So(out, convey.ShouldContainSubstring, "Federer")
			convey.So(out, convey.ShouldContainSubstring, "Nadal")
			convey.So(out, convey.ShouldContainSubstring, "Matches simulated:")
			convey.So(out, convey.ShouldContainSubstring, "best of 3")
		})

		convey.Convey("Then logs go to stderr as JSON", func() {
			convey.So(stderr.String(), convey.ShouldContainSubstring, `"msg":"simulation run finished"`)
		})

		convey.Convey("Then the point log and metrics files exist", func() {
			f, err := os.Open(csvPath)
			convey.So(err, convey.ShouldBeNil)
			defer f.Close()
			rows, err := csv.NewReader(f).ReadAll()
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(rows), convey.ShouldBeGreaterThan, 40)

			prom, err := os.ReadFile(promPath)
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(prom), convey.ShouldContainSubstring, "matchsim_simulation_matches_simulated_total")
		})
	})
}

func TestRunInvalidConfig(t *testing.T) {
	convey.Convey("Given an invalid configuration", t, func() {
		setEnv(t, map[string]string{"MATCHSIM_NUM_SETS": "4"})

		var stdout, stderr bytes.Buffer
		code := run(context.Background(), &stdout, &stderr)

		convey.Convey("Then it exits before simulating", func() {
			convey.So(code, convey.ShouldEqual, exitConfigError)
			convey.So(stdout.Len(), convey.ShouldEqual, 0)
			convey.So(strings.Contains(stderr.String(), "num_sets"), convey.ShouldBeTrue)
		})
	})
}

func TestRunExportFailure(t *testing.T) {
	convey.Convey("Given an export path that cannot be created", t, func() {
		setEnv(t, map[string]string{
			"MATCHSIM_NUM_SIMULATIONS": "10",
			"MATCHSIM_SEED":            "1",
			"MATCHSIM_EXPORT_PATH":     filepath.Join(t.TempDir(), "missing", "points.csv"),
		})

		var stdout, stderr bytes.Buffer
		code := run(context.Background(), &stdout, &stderr)

		convey.Convey("Then the summary is printed and the exit code flags it", func() {
			convey.So(code, convey.ShouldEqual, exitPartial)
			convey.So(stdout.String(), convey.ShouldContainSubstring, "Point log:")
		})
	})
}
