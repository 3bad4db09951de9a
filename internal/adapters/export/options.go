package export

import "github.com/okian/matchsim/pkg/logger"

// Option applies a configuration option to the CSVWriter.
type Option func(*CSVWriter)

// WithLogger sets a custom logger for the writer.
func WithLogger(l logger.Logger) Option {
	return func(w *CSVWriter) {
		if l != nil {
			w.logger = l
		}
	}
}
