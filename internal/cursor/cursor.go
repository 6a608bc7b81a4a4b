package cursor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/geoplaces/gazetteer/internal/transform"
	"github.com/geoplaces/gazetteer/internal/wof"
)

// State is the cursor lifecycle state.
type State string

const (
	// StateReady means lightweight rows are loaded and no detail fetch
	// is in flight.
	StateReady State = "ready"
	// StateMaterializing means a detail/geometry fetch is in flight.
	StateMaterializing State = "materializing"
	// StateExhausted is terminal, reached only when a chunked walk has
	// consumed every row.
	StateExhausted State = "exhausted"
)

// Fetcher is the detail-fetch capability a cursor needs from the
// federation. Implementations must resolve the whole id batch in a
// single query and honor context cancellation.
type Fetcher interface {
	FetchByIDs(ctx context.Context, ids []int64, withGeometry bool) ([]wof.PlaceWithGeometry, []transform.Warning, error)
}

// PageInfo describes pagination over a cursor's loaded rows. TotalCount
// is the aggregate match count before limit and offset.
type PageInfo struct {
	TotalCount int `json:"total_count"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Cursor wraps a filter spec and its lightweight row set. Created by
// the federation's search path; never constructed directly by callers.
type Cursor struct {
	id      string
	spec    wof.FilterSpec
	rows    []wof.Place
	total   int
	fetcher Fetcher

	state    State
	warnings []transform.Warning
}

// fetchBatchSize bounds how many ids one detail query carries. It must
// not exceed the federation's per-batch id cap.
const fetchBatchSize = 1000

// New builds a cursor over an already-executed row set. total is the
// separate aggregate count, which may exceed len(rows) when the spec
// carried a limit.
func New(spec wof.FilterSpec, rows []wof.Place, total int, fetcher Fetcher) *Cursor {
	return &Cursor{
		id:      uuid.NewString(),
		spec:    spec,
		rows:    rows,
		total:   total,
		fetcher: fetcher,
		state:   StateReady,
	}
}

// ID returns the cursor's identity, used in logs and collection
// metadata.
func (c *Cursor) ID() string { return c.id }

// Spec returns the exact filter spec that produced this cursor.
func (c *Cursor) Spec() wof.FilterSpec { return c.spec }

// State returns the current lifecycle state.
func (c *Cursor) State() State { return c.state }

// TotalCount returns the aggregate count over the full predicate set,
// independent of any limit truncation.
func (c *Cursor) TotalCount() int { return c.total }

// HasResults reports whether the query matched anything at all.
func (c *Cursor) HasResults() bool { return c.total > 0 }

// Len returns the number of loaded lightweight rows.
func (c *Cursor) Len() int { return len(c.rows) }

// Places returns a copy of the loaded lightweight rows.
func (c *Cursor) Places() []wof.Place {
	out := make([]wof.Place, len(c.rows))
	copy(out, c.rows)
	return out
}

// Warnings returns decode warnings accumulated by materializing calls
// on this cursor.
func (c *Cursor) Warnings() []transform.Warning {
	out := make([]transform.Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// FetchOne materializes exactly one row by index. Index is
// bounds-checked against the loaded row count.
func (c *Cursor) FetchOne(ctx context.Context, index int, withGeometry bool) (wof.PlaceWithGeometry, error) {
	if index < 0 || index >= len(c.rows) {
		return wof.PlaceWithGeometry{}, fmt.Errorf("fetch index %d with %d rows loaded: %w",
			index, len(c.rows), wof.ErrIndexOutOfRange)
	}
	places, err := c.materialize(ctx, c.rows[index:index+1], withGeometry)
	if err != nil {
		return wof.PlaceWithGeometry{}, err
	}
	return places[0], nil
}

// FetchAll materializes every loaded row in one pass. With geometry the
// detail fetch runs in id batches, never one round-trip per row.
func (c *Cursor) FetchAll(ctx context.Context, withGeometry bool) (*wof.PlaceCollection, error) {
	places, err := c.materialize(ctx, c.rows, withGeometry)
	if err != nil {
		return nil, err
	}
	return c.collect(places), nil
}

// FetchPage materializes one 1-based page. Pages beyond the end return
// an empty collection, never an index error.
func (c *Cursor) FetchPage(ctx context.Context, page, size int, withGeometry bool) (*wof.PlaceCollection, error) {
	if page < 1 {
		return nil, &wof.InvalidArgumentError{Argument: "page", Reason: fmt.Sprintf("must be >= 1, got %d", page)}
	}
	if size < 1 {
		return nil, &wof.InvalidArgumentError{Argument: "size", Reason: fmt.Sprintf("must be >= 1, got %d", size)}
	}

	lo := (page - 1) * size
	hi := lo + size
	if lo > len(c.rows) {
		lo = len(c.rows)
	}
	if hi > len(c.rows) {
		hi = len(c.rows)
	}

	places, err := c.materialize(ctx, c.rows[lo:hi], withGeometry)
	if err != nil {
		return nil, err
	}
	return c.collect(places), nil
}

// FetchByIDs materializes the given ids, restricted to the cursor's
// own row set. Unknown ids are silently dropped.
func (c *Cursor) FetchByIDs(ctx context.Context, ids []int64, withGeometry bool) (*wof.PlaceCollection, error) {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var subset []wof.Place
	for _, row := range c.rows {
		if want[row.ID] {
			subset = append(subset, row)
		}
	}
	places, err := c.materialize(ctx, subset, withGeometry)
	if err != nil {
		return nil, err
	}
	return c.collect(places), nil
}

// FilterPlaces narrows the loaded lightweight rows in memory. It never
// issues a query; use it to pick a subset before a selective geometry
// fetch.
func (c *Cursor) FilterPlaces(keep func(wof.Place) bool) []wof.Place {
	var out []wof.Place
	for _, row := range c.rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

// PageInfo computes pagination shape for a given page size. TotalPages
// counts pages over the loaded rows, matching what FetchPage can serve;
// TotalCount stays the unshaped aggregate total.
func (c *Cursor) PageInfo(size int) (PageInfo, error) {
	if size < 1 {
		return PageInfo{}, &wof.InvalidArgumentError{Argument: "size", Reason: fmt.Sprintf("must be >= 1, got %d", size)}
	}
	n := len(c.rows)
	pages := n / size
	if n%size != 0 {
		pages++
	}
	return PageInfo{TotalCount: c.total, PageSize: size, TotalPages: pages}, nil
}

// materialize converts lightweight rows to full records, fetching
// geometry in one batch when requested. Rows whose detail fetch finds
// no match (a source dropped mid-session) are kept geometry-absent.
func (c *Cursor) materialize(ctx context.Context, rows []wof.Place, withGeometry bool) ([]wof.PlaceWithGeometry, error) {
	if !withGeometry || len(rows) == 0 {
		out := make([]wof.PlaceWithGeometry, len(rows))
		for i, row := range rows {
			out[i] = wof.PlaceWithGeometry{Place: row}
		}
		return out, nil
	}

	c.state = StateMaterializing
	defer func() {
		if c.state == StateMaterializing {
			c.state = StateReady
		}
	}()

	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	var fetched []wof.PlaceWithGeometry
	for lo := 0; lo < len(ids); lo += fetchBatchSize {
		hi := lo + fetchBatchSize
		if hi > len(ids) {
			hi = len(ids)
		}
		batch, warns, err := c.fetcher.FetchByIDs(ctx, ids[lo:hi], true)
		if err != nil {
			return nil, fmt.Errorf("materialize %d rows: %w", len(rows), err)
		}
		fetched = append(fetched, batch...)
		c.warnings = append(c.warnings, warns...)
	}

	// Preserve the cursor's row order regardless of fetch order, and
	// keep identity source-qualified: match on (alias, id).
	byKey := make(map[string]wof.PlaceWithGeometry, len(fetched))
	for _, p := range fetched {
		byKey[fmt.Sprintf("%s/%d", p.Alias, p.ID)] = p
	}
	out := make([]wof.PlaceWithGeometry, len(rows))
	for i, row := range rows {
		if p, ok := byKey[fmt.Sprintf("%s/%d", row.Alias, row.ID)]; ok {
			out[i] = p
		} else {
			out[i] = wof.PlaceWithGeometry{Place: row}
		}
	}
	return out, nil
}

func (c *Cursor) collect(places []wof.PlaceWithGeometry) *wof.PlaceCollection {
	return wof.NewPlaceCollection(places, wof.CollectionMeta{
		Spec:       c.spec,
		TotalCount: c.total,
		CursorID:   c.id,
	})
}
