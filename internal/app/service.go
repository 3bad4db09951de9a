// Package service runs batches of simulated matches and aggregates their
// statistics.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okian/matchsim/internal/adapters/export"
	unitqueue "github.com/okian/matchsim/internal/adapters/mq/queue"
	workerpool "github.com/okian/matchsim/internal/adapters/mq/worker"
	"github.com/okian/matchsim/internal/domain/match"
	"github.com/okian/matchsim/internal/domain/model"
	"github.com/okian/matchsim/internal/domain/stats"
	"github.com/okian/matchsim/pkg/logger"
	"github.com/okian/matchsim/pkg/metrics"
)

// queueSlotsPerWorker bounds how far the producer runs ahead of the workers.
const queueSlotsPerWorker = 2

// Result is the outcome of one Run.
type Result struct {
	RunID   string
	Seed    uint64
	Players [2]model.PlayerProfile
	Format  match.Format
	Stats   stats.AggregateStats
	Elapsed time.Duration

	// Units is the number of units planned; UnitsCompleted excludes units
	// abandoned after an invariant violation.
	Units          int
	UnitsCompleted int
	Failures       []*model.InvariantError

	// ExportErr is the first point log failure. The statistics are complete
	// even when it is set.
	ExportErr error
	// LogRows counts the rows written to the CSV point log.
	LogRows int64
}

// Service simulates a configured number of matches in parallel.
type Service struct {
	players     [2]model.PlayerProfile
	format      match.Format
	simulations int
	workerCount int
	batchSize   int
	logInterval int
	sampleEvery int
	seed        uint64
	exportPath  string
	sink        export.Sink

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPlayers sets the two competing profiles.
func WithPlayers(players [2]model.PlayerProfile) Option {
	return func(s *Service) {
		s.players = players
	}
}

// WithFormat sets the match format.
func WithFormat(format match.Format) Option {
	return func(s *Service) {
		s.format = format
	}
}

// WithSimulations sets the number of matches to simulate.
func WithSimulations(n int) Option {
	return func(s *Service) {
		s.simulations = n
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		s.workerCount = count
	}
}

// WithBatchSize sets the number of matches per work unit.
func WithBatchSize(size int) Option {
	return func(s *Service) {
		s.batchSize = size
	}
}

// WithLogInterval sets how many completed matches a worker buffers before
// flushing its point log.
func WithLogInterval(n int) Option {
	return func(s *Service) {
		s.logInterval = n
	}
}

// WithSampleEvery logs only matches whose id is a multiple of n.
func WithSampleEvery(n int) Option {
	return func(s *Service) {
		s.sampleEvery = n
	}
}

// WithSeed makes the run reproducible. Zero picks a random seed, which is
// reported in the Result.
func WithSeed(seed uint64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithExportPath writes the point log to a CSV file at path. Empty disables it.
func WithExportPath(path string) Option {
	return func(s *Service) {
		s.exportPath = path
	}
}

// WithSink sends the point log to sink instead of a file. The caller owns it.
func WithSink(sink export.Sink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		players: [2]model.PlayerProfile{
			{Name: "Federer", ServeWinProb: 0.65, AceProb: 0.10, DoubleFaultProb: 0.05},
			{Name: "Nadal", ServeWinProb: 0.62, AceProb: 0.08, DoubleFaultProb: 0.04},
		},
		format:      match.Format{NumSets: 5, FinalSet: match.ExtendedFinalTiebreak},
		simulations: 10_000,
		workerCount: 10,
		batchSize:   10,
		logInterval: 10_000,
		sampleEvery: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks the run parameters. Errors wrap model.ErrConfiguration.
func (s *Service) Validate() error {
	var errs []error
	for _, p := range []struct {
		key   string
		value int
	}{
		{"num_simulations", s.simulations},
		{"max_workers", s.workerCount},
		{"batch_size", s.batchSize},
		{"log_interval", s.logInterval},
		{"log_sample_every", s.sampleEvery},
	} {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be > 0, got %d", model.ErrConfiguration, p.key, p.value))
		}
	}
	if _, err := match.NewEngine(s.players, s.format); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Partition splits n matches into units of at most batch matches. Ids are
// 0..n-1; the last unit takes the remainder.
func Partition(n, batch int) []model.WorkUnit {
	if n <= 0 || batch <= 0 {
		return nil
	}
	units := make([]model.WorkUnit, 0, (n+batch-1)/batch)
	for first := 0; first < n; first += batch {
		units = append(units, model.WorkUnit{
			ID:         len(units),
			FirstMatch: int64(first),
			Count:      min(batch, n-first),
		})
	}
	return units
}

// Run simulates every match and returns the merged statistics. It fails
// before simulating anything when the configuration is invalid, and fails
// as a whole only when ctx is cancelled. Invariant violations and export
// failures are reported in the Result.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	engine, err := match.NewEngine(s.players, s.format)
	if err != nil {
		return nil, err
	}

	seed := s.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	res := &Result{
		RunID:   uuid.NewString(),
		Seed:    seed,
		Players: s.players,
		Format:  s.format,
	}
	log := s.logger.With(logger.String("run_id", res.RunID))

	opts := []workerpool.Option{
		workerpool.WithSeed(seed),
		workerpool.WithSampleEvery(s.sampleEvery),
	}
	sink, closeSink := s.openSink(ctx, log, res)
	if sink != nil {
		opts = append(opts, workerpool.WithSink(sink, s.logInterval))
	}

	units := Partition(s.simulations, s.batchSize)
	res.Units = len(units)
	q := unitqueue.NewInMemoryQueue(unitqueue.WithCapacity(s.workerCount * queueSlotsPerWorker))
	pool := workerpool.NewPool(s.workerCount, q, engine, opts...)

	log.Info(ctx, "simulation run started",
		logger.Int("matches", s.simulations),
		logger.Int("units", len(units)),
		logger.Int("workers", s.workerCount),
		logger.Int("best_of", s.format.NumSets),
		logger.String("final_set", s.format.FinalSet.String()),
		logger.Uint64("seed", seed),
	)

	start := time.Now()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	produced := make(chan error, 1)
	go func() {
		defer func() { _ = q.Close() }()
		for _, u := range units {
			if err := q.Enqueue(runCtx, u); err != nil {
				produced <- err
				return
			}
		}
		produced <- nil
	}()

	partials, err := pool.Run(runCtx)
	cancel()
	if perr := <-produced; err == nil && perr != nil {
		err = perr
	}
	if err != nil {
		_ = closeSink()
		metrics.RecordErrorByComponent("service", "aborted")
		log.Error(ctx, "simulation run aborted", logger.Error(err))
		return nil, fmt.Errorf("simulation run aborted: %w", err)
	}

	parts := make([]stats.AggregateStats, len(partials))
	for i, p := range partials {
		parts[i] = p.Stats
		res.UnitsCompleted += p.Units
		res.Failures = append(res.Failures, p.Failures...)
		if res.ExportErr == nil && p.ExportErr != nil {
			res.ExportErr = p.ExportErr
		}
	}
	res.Stats = stats.Reduce(parts...)
	sort.Slice(res.Failures, func(i, j int) bool { return res.Failures[i].UnitID < res.Failures[j].UnitID })

	if err := closeSink(); err != nil && res.ExportErr == nil {
		res.ExportErr = err
	}
	res.Elapsed = time.Since(start)
	metrics.RecordRun(res.RunID, s.format.NumSets, s.format.FinalSet.String(), res.Elapsed)

	log.Info(ctx, "simulation run finished",
		logger.Int64("matches", res.Stats.TotalMatches),
		logger.Int64("points", res.Stats.TotalShots),
		logger.Int("failed_units", len(res.Failures)),
		logger.Int64("log_rows", res.LogRows),
		logger.Duration("elapsed", res.Elapsed),
	)
	if res.ExportErr != nil {
		log.Warn(ctx, "point log incomplete", logger.Error(res.ExportErr))
	}
	return res, nil
}

// openSink resolves where the point log goes. A file that cannot be created
// is an export failure: the run goes on without a log.
func (s *Service) openSink(ctx context.Context, log logger.Logger, res *Result) (export.Sink, func() error) {
	noop := func() error { return nil }
	if s.sink != nil {
		return s.sink, noop
	}
	if s.exportPath == "" {
		return nil, noop
	}
	w, err := export.NewCSVWriter(s.exportPath, export.WithLogger(log.Named("export")))
	if err != nil {
		res.ExportErr = err
		log.Warn(ctx, "point log disabled", logger.Error(err))
		return nil, noop
	}
	return w, func() error {
		err := w.Close()
		res.LogRows = w.Rows()
		return err
	}
}
