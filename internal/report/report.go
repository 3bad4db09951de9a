// Package report renders the console summary of a simulation run.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	service "github.com/okian/matchsim/internal/app"
	"github.com/okian/matchsim/internal/domain/types"
)

// Summary is the presentable view of a Result.
type Summary struct {
	RunID       string
	Seed        uint64
	BestOf      int
	FinalSet    string
	Matches     int64
	TotalShots  int64
	Elapsed     time.Duration
	Standings   []types.Standing
	FailedUnits int
	ExportErr   string
}

// Build derives a Summary from a run result. Standings are ranked by wins.
func Build(res *service.Result) Summary {
	s := Summary{
		RunID:       res.RunID,
		Seed:        res.Seed,
		BestOf:      res.Format.NumSets,
		FinalSet:    res.Format.FinalSet.String(),
		Matches:     res.Stats.TotalMatches,
		TotalShots:  res.Stats.TotalShots,
		Elapsed:     res.Elapsed,
		FailedUnits: len(res.Failures),
	}
	if res.ExportErr != nil {
		s.ExportErr = res.ExportErr.Error()
	}
	for _, p := range res.Players {
		s.Standings = append(s.Standings, types.Standing{
			Player:          p.Name,
			Wins:            res.Stats.Players[p.Name].Wins,
			WinPct:          res.Stats.WinPercentage(p.Name),
			AvgAces:         res.Stats.AvgAces(p.Name),
			AvgDoubleFaults: res.Stats.AvgDoubleFaults(p.Name),
		})
	}
	types.Rank(s.Standings)
	return s
}

// Render writes the summary as an aligned table followed by run totals.
func (s Summary) Render(out io.Writer) error {
	if _, err := fmt.Fprintf(out, "Run %s (seed %d), best of %d, final set %s\n\n",
		s.RunID, s.Seed, s.BestOf, s.FinalSet); err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Rank\tPlayer\tWins\tWin %\tAvg Aces\tAvg Double Faults")
	for _, st := range s.Standings {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.2f%%\t%.2f\t%.2f\n",
			st.Rank, st.Player, st.Wins, st.WinPct, st.AvgAces, st.AvgDoubleFaults)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	w = tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Matches simulated:\t%d\n", s.Matches)
	fmt.Fprintf(w, "Total shots:\t%d\n", s.TotalShots)
	fmt.Fprintf(w, "Time taken:\t%s\n", s.Elapsed.Round(time.Millisecond))
	if s.FailedUnits > 0 {
		fmt.Fprintf(w, "Failed units:\t%d\n", s.FailedUnits)
	}
	if s.ExportErr != "" {
		fmt.Fprintf(w, "Point log:\tincomplete (%s)\n", s.ExportErr)
	}
	return w.Flush()
}
