package service_test

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	service "github.com/okian/matchsim/internal/app"
	"github.com/okian/matchsim/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service exporting to a CSV file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "match_log_parallel.csv")

		res, err := service.New(
			service.WithPlayers(players),
			service.WithSimulations(50),
			service.WithWorkerCount(3),
			service.WithBatchSize(4),
			service.WithLogInterval(5),
			service.WithSeed(2024),
			service.WithExportPath(path),
		).Run(ctx)
		So(err, ShouldBeNil)
		So(res.ExportErr, ShouldBeNil)

		f, err := os.Open(path)
		So(err, ShouldBeNil)
		defer f.Close()
		rows, err := csv.NewReader(f).ReadAll()
		So(err, ShouldBeNil)

		Convey("Then the file has a header and one row per point", func() {
			So(rows[0], ShouldResemble, []string{"match_id", "set_index", "game_index", "point_index", "server_name", "outcome"})
			So(int64(len(rows)-1), ShouldEqual, res.Stats.TotalShots)
			So(res.LogRows, ShouldEqual, res.Stats.TotalShots)
		})

		Convey("Then every row is well formed", func() {
			matches := map[string]bool{}
			for _, row := range rows[1:] {
				So(row, ShouldHaveLength, 6)
				id, err := strconv.Atoi(row[0])
				So(err, ShouldBeNil)
				So(id, ShouldBeBetweenOrEqual, 0, 49)
				set, _ := strconv.Atoi(row[1])
				So(set, ShouldBeBetweenOrEqual, 1, 5)
				So(row[4], ShouldBeIn, "Federer", "Nadal")
				So(row[5], ShouldBeIn, "ace", "double_fault", "server_rally", "returner_rally")
				matches[row[0]] = true
			}
			So(matches, ShouldHaveLength, 50)
		})
	})

	Convey("Given an export path that cannot be created", t, func() {
		path := filepath.Join(t.TempDir(), "missing", "log.csv")

		res, err := service.New(
			service.WithPlayers(players),
			service.WithSimulations(20),
			service.WithSeed(3),
			service.WithExportPath(path),
		).Run(context.Background())

		Convey("Then the summary is still produced", func() {
			So(err, ShouldBeNil)
			So(res.Stats.TotalMatches, ShouldEqual, 20)
			So(errors.Is(res.ExportErr, model.ErrExport), ShouldBeTrue)
			So(res.LogRows, ShouldEqual, 0)
		})
	})
}
