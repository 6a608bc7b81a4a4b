package cursor

import (
	"context"
	"fmt"

	"github.com/geoplaces/gazetteer/internal/wof"
)

// ChunkWalk is a lazy, finite, forward-only walk over a cursor's full
// result set in fixed-size batches, honoring the cursor's deterministic
// row order. Each Next call is a cancellation point; stopping early
// (just calling Close, or abandoning after a context error) leaves no
// batch-fetch resource open because every chunk's detail query is fully
// consumed before Next returns.
type ChunkWalk struct {
	cursor       *Cursor
	size         int
	pos          int
	withGeometry bool
	closed       bool
}

// ProcessInChunks starts a chunked walk covering every loaded row
// exactly once. The walk owns the cursor's exhaustion transition:
// consuming the final chunk moves the cursor to StateExhausted.
func (c *Cursor) ProcessInChunks(size int, withGeometry bool) (*ChunkWalk, error) {
	if size < 1 {
		return nil, &wof.InvalidArgumentError{Argument: "chunk_size", Reason: fmt.Sprintf("must be >= 1, got %d", size)}
	}
	if c.state == StateExhausted {
		return nil, fmt.Errorf("cursor %s already exhausted", c.id)
	}
	return &ChunkWalk{cursor: c, size: size, withGeometry: withGeometry}, nil
}

// Next returns the next batch. ok is false when the walk is complete or
// closed; a completed walk marks the cursor exhausted.
func (w *ChunkWalk) Next(ctx context.Context) (batch []wof.PlaceWithGeometry, ok bool, err error) {
	if w.closed {
		return nil, false, nil
	}
	if err := ctx.Err(); err != nil {
		w.Close()
		return nil, false, fmt.Errorf("chunk walk cancelled: %w", err)
	}
	rows := w.cursor.rows
	if w.pos >= len(rows) {
		w.finish()
		return nil, false, nil
	}

	hi := w.pos + w.size
	if hi > len(rows) {
		hi = len(rows)
	}
	batch, err = w.cursor.materialize(ctx, rows[w.pos:hi], w.withGeometry)
	if err != nil {
		w.Close()
		return nil, false, err
	}
	w.pos = hi
	if w.pos >= len(rows) {
		w.finish()
	}
	return batch, true, nil
}

// Close abandons the walk. Safe to call at any point and more than
// once; an abandoned walk does not exhaust the cursor.
func (w *ChunkWalk) Close() {
	w.closed = true
}

func (w *ChunkWalk) finish() {
	w.closed = true
	w.cursor.state = StateExhausted
}
