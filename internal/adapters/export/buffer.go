package export

import (
	"context"

	"github.com/okian/matchsim/internal/domain/model"
)

// Sink receives flushed point log batches.
type Sink interface {
	WriteBatch(ctx context.Context, entries []model.PointLogEntry) error
}

// Buffer collects the point log of one worker. It is not safe for
// concurrent use; each worker owns one.
//
// A match is recorded between Mark and MatchDone. Rollback drops everything
// recorded since the last Mark, so an aborted match leaves no rows behind.
type Buffer struct {
	sink     Sink
	interval int
	entries  []model.PointLogEntry
	mark     int
	pending  int
}

// NewBuffer returns a buffer that flushes to sink every interval completed
// matches. An interval below 1 flushes after every match.
func NewBuffer(sink Sink, interval int) *Buffer {
	if interval < 1 {
		interval = 1
	}
	return &Buffer{sink: sink, interval: interval}
}

// Record appends one point.
func (b *Buffer) Record(e model.PointLogEntry) {
	b.entries = append(b.entries, e)
}

// Mark starts a new match.
func (b *Buffer) Mark() {
	b.mark = len(b.entries)
}

// Rollback discards the points recorded since the last Mark.
func (b *Buffer) Rollback() {
	clear(b.entries[b.mark:])
	b.entries = b.entries[:b.mark]
}

// MatchDone commits the current match and flushes when the interval is reached.
func (b *Buffer) MatchDone(ctx context.Context) error {
	b.mark = len(b.entries)
	b.pending++
	if b.pending >= b.interval {
		return b.Flush(ctx)
	}
	return nil
}

// Len returns the number of buffered points.
func (b *Buffer) Len() int { return len(b.entries) }

// Flush hands every committed point to the sink. The buffer is emptied even
// when the sink fails.
func (b *Buffer) Flush(ctx context.Context) error {
	b.pending = 0
	if b.mark == 0 {
		return nil
	}
	batch := b.entries[:b.mark]
	err := b.sink.WriteBatch(ctx, batch)

	rest := copy(b.entries, b.entries[b.mark:])
	clear(b.entries[rest:])
	b.entries = b.entries[:rest]
	b.mark = 0
	return err
}
