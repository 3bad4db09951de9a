// Package export writes the point-by-point log of simulated matches.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/okian/matchsim/internal/domain/model"
	"github.com/okian/matchsim/pkg/logger"
	"github.com/okian/matchsim/pkg/metrics"
)

// Header is the first row of every point log file.
var Header = []string{"match_id", "set_index", "game_index", "point_index", "server_name", "outcome"}

// CSVWriter appends point log batches to a CSV file. It is safe for
// concurrent use. The first write failure is kept and returned by every
// later call, so a broken file never receives a partial tail.
type CSVWriter struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	w      *csv.Writer
	rows   int64
	err    error
	closed bool
	logger logger.Logger
}

// NewCSVWriter truncates or creates path and writes the header row.
func NewCSVWriter(path string, opts ...Option) (*CSVWriter, error) {
	c := &CSVWriter{
		path:   path,
		logger: logger.Get().Named("export"),
	}
	for _, opt := range opts {
		opt(c)
	}

	f, err := os.Create(path)
	if err != nil {
		metrics.RecordExportError()
		return nil, fmt.Errorf("%w: create %s: %w", model.ErrExport, path, err)
	}
	c.file = f
	c.w = csv.NewWriter(f)
	if err := c.w.Write(Header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: write header: %w", model.ErrExport, err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: write header: %w", model.ErrExport, err)
	}
	return c, nil
}

// WriteBatch appends entries in order and flushes them to the file.
func (c *CSVWriter) WriteBatch(ctx context.Context, entries []model.PointLogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.err != nil {
		return c.err
	}

	start := time.Now()
	record := make([]string, len(Header))
	for i := range entries {
		e := &entries[i]
		record[0] = strconv.FormatInt(e.MatchID, 10)
		record[1] = strconv.Itoa(e.SetIndex)
		record[2] = strconv.Itoa(e.GameIndex)
		record[3] = strconv.Itoa(e.PointIndex)
		record[4] = e.Server
		record[5] = e.Outcome.String()
		if err := c.w.Write(record); err != nil {
			return c.fail(ctx, err)
		}
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return c.fail(ctx, err)
	}

	c.rows += int64(len(entries))
	metrics.RecordExportBatch(len(entries), time.Since(start))
	return nil
}

func (c *CSVWriter) fail(ctx context.Context, err error) error {
	c.err = fmt.Errorf("%w: write %s: %w", model.ErrExport, c.path, err)
	metrics.RecordExportError()
	metrics.RecordErrorByComponent("export", "write_failed")
	c.logger.Error(ctx, "point log export failed; further batches are dropped",
		logger.String("path", c.path),
		logger.Error(err),
	)
	return c.err
}

// Err returns the first write failure, if any.
func (c *CSVWriter) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Rows returns the number of data rows written so far.
func (c *CSVWriter) Rows() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

// Close flushes and closes the file. It returns the sticky write failure if
// one happened, otherwise any error from closing.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.err
	}
	c.closed = true
	c.w.Flush()
	if err := c.w.Error(); err != nil && c.err == nil {
		c.err = fmt.Errorf("%w: flush %s: %w", model.ErrExport, c.path, err)
	}
	if err := c.file.Close(); err != nil && c.err == nil {
		c.err = fmt.Errorf("%w: close %s: %w", model.ErrExport, c.path, err)
	}
	return c.err
}
