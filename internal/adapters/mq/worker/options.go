package worker

import (
	"github.com/okian/matchsim/internal/adapters/export"
	"github.com/okian/matchsim/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithSeed sets the run seed every unit stream is derived from.
func WithSeed(seed uint64) Option {
	return func(w *InMemoryWorker) {
		w.seed = seed
	}
}

// WithSink enables the point log. Points are buffered per worker and handed
// to sink every interval completed matches.
func WithSink(sink export.Sink, interval int) Option {
	return func(w *InMemoryWorker) {
		if sink != nil {
			w.sink = sink
			w.logInterval = interval
		}
	}
}

// WithSampleEvery logs only matches whose id is a multiple of n.
func WithSampleEvery(n int) Option {
	return func(w *InMemoryWorker) {
		if n > 0 {
			w.sampleEvery = int64(n)
		}
	}
}
