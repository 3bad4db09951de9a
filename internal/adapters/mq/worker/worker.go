// Package worker runs simulation work units on a fixed pool of goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/matchsim/internal/adapters/export"
	"github.com/okian/matchsim/internal/domain/match"
	"github.com/okian/matchsim/internal/domain/model"
	"github.com/okian/matchsim/internal/domain/stats"
	"github.com/okian/matchsim/pkg/logger"
	"github.com/okian/matchsim/pkg/metrics"
)

// Simulator plays a single match.
type Simulator interface {
	Play(id int64, rng match.RNG, rec match.PointRecorder) (*model.MatchRecord, error)
}

// Queue defines how workers receive units.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.WorkUnit
}

// Partial is what one worker produced over a run.
type Partial struct {
	Worker    string
	Units     int
	Stats     stats.AggregateStats
	Failures  []*model.InvariantError
	ExportErr error
}

// InMemoryWorker consumes units until the queue is drained. All state is
// private to the worker; nothing is shared on the per-match path.
type InMemoryWorker struct {
	queue Queue
	sim   Simulator
	name  string
	seed  uint64

	sink        export.Sink
	logInterval int
	sampleEvery int64
	buf         *export.Buffer

	stats     stats.AggregateStats
	units     int
	failures  []*model.InvariantError
	exportErr error

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, sim Simulator, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:       queue,
		sim:         sim,
		name:        "worker",
		sampleEvery: 1,
		stats:       stats.New(),
		logger:      logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	if w.sink != nil {
		w.buf = export.NewBuffer(w.sink, w.logInterval)
	}
	return w
}

// Run processes units until the queue closes or ctx is cancelled. A non-nil
// error means the run must be aborted.
func (w *InMemoryWorker) Run(ctx context.Context) error {
	metrics.AddWorkerActive(1)
	defer metrics.AddWorkerActive(-1)

	units := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-units:
			if !ok {
				w.finish(ctx)
				return nil
			}
			if err := w.processUnit(ctx, u); err != nil {
				return err
			}
		}
	}
}

// Result returns what the worker accumulated. Call it after Run returns.
func (w *InMemoryWorker) Result() Partial {
	return Partial{
		Worker:    w.name,
		Units:     w.units,
		Stats:     w.stats,
		Failures:  w.failures,
		ExportErr: w.exportErr,
	}
}

// processUnit plays every match of u on the unit's own stream. An invariant
// violation abandons the rest of the unit; matches finished before it stay
// counted and the failing match leaves no stats or log rows.
func (w *InMemoryWorker) processUnit(ctx context.Context, u model.WorkUnit) error {
	start := time.Now()
	rng := match.NewStream(w.seed, uint64(u.ID))

	for i := 0; i < u.Count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := u.FirstMatch + int64(i)

		var rec match.PointRecorder
		if w.buf != nil {
			w.buf.Mark()
			if id%w.sampleEvery == 0 {
				rec = w.buf
			}
		}

		r, err := w.sim.Play(id, rng, rec)
		if err != nil {
			if w.buf != nil {
				w.buf.Rollback()
			}
			var inv *model.InvariantError
			if !errors.As(err, &inv) {
				metrics.RecordErrorByComponent("worker", "simulation_error")
				return fmt.Errorf("unit %d match %d: %w", u.ID, id, err)
			}
			w.fail(ctx, u, id, inv)
			return nil
		}

		w.stats.Add(r)
		metrics.RecordMatch(r.TotalPoints)

		if w.buf != nil {
			if err := w.buf.MatchDone(ctx); err != nil {
				w.exportFailed(ctx, err)
			}
		}
	}

	w.units++
	metrics.RecordUnitCompleted(time.Since(start))
	return nil
}

func (w *InMemoryWorker) fail(ctx context.Context, u model.WorkUnit, id int64, inv *model.InvariantError) {
	inv.MatchID = id
	inv.UnitID = u.ID
	inv.Seed = w.seed
	w.failures = append(w.failures, inv)

	metrics.RecordUnitFailed()
	metrics.RecordInvariantError(inv.Stage)
	w.logger.Error(ctx, "simulation invariant violated; unit abandoned",
		logger.Int("unit", u.ID),
		logger.Int64("match", id),
		logger.Uint64("seed", w.seed),
		logger.String("stage", inv.Stage),
		logger.String("detail", inv.Detail),
	)
}

// exportFailed keeps the first export error and turns the point log off for
// the rest of the run. Statistics are unaffected.
func (w *InMemoryWorker) exportFailed(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	w.exportErr = err
	w.buf = nil
	w.logger.Warn(ctx, "point log disabled after export failure", logger.Error(err))
}

func (w *InMemoryWorker) finish(ctx context.Context) {
	if w.buf != nil {
		if err := w.buf.Flush(ctx); err != nil {
			w.exportFailed(ctx, err)
		}
	}
	for name, t := range w.stats.Players {
		metrics.RecordServeStats(name, t.Aces, t.DoubleFaults)
	}
	w.logger.Debug(ctx, "worker drained",
		logger.Int("units", w.units),
		logger.Int64("matches", w.stats.TotalMatches),
		logger.Int("failures", len(w.failures)),
	)
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	logger  logger.Logger
}

// NewPool creates workerCount workers sharing queue and sim. opts apply to
// every worker; names are assigned per worker.
func NewPool(workerCount int, queue Queue, sim Simulator, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append(append([]Option(nil), opts...), WithName("worker-"+strconv.Itoa(i)))
		p.workers[i] = NewInMemoryWorker(queue, sim, wopts...)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Run starts every worker and waits for all of them. The first worker error
// cancels the others and is returned; partials are returned only on success.
func (p *Pool) Run(ctx context.Context) ([]Partial, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var wg sync.WaitGroup
	for _, w := range p.workers {
		wg.Add(1)
		go func(w *InMemoryWorker) {
			defer wg.Done()
			if err := w.Run(ctx); err != nil {
				cancel(err)
			}
		}(w)
	}
	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		p.logger.Error(ctx, "worker pool aborted", logger.Error(err))
		return nil, err
	}

	partials := make([]Partial, len(p.workers))
	for i, w := range p.workers {
		partials[i] = w.Result()
	}
	return partials, nil
}
