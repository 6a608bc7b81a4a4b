package federation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geoplaces/gazetteer/internal/cursor"
	"github.com/geoplaces/gazetteer/internal/querysql"
	"github.com/geoplaces/gazetteer/internal/transform"
	"github.com/geoplaces/gazetteer/internal/wof"
)

// maxBatchIDs caps explicit id-list fetches.
const maxBatchIDs = 1000

// Search compiles and executes a filter spec, returning a cursor over
// the lightweight row set. Validation failures surface before any
// query runs.
func (f *Federation) Search(ctx context.Context, spec wof.FilterSpec) (*cursor.Cursor, error) {
	if err := f.ensureConnected(); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	q, err := f.compiler.Compile(spec)
	if err != nil {
		return nil, err
	}

	total, rows, err := f.execute(ctx, q)
	if err != nil {
		return nil, err
	}

	if q.Walk != nil {
		rows, err = f.ancestorWalk(ctx, rows, q.Walk)
		if err != nil {
			return nil, err
		}
		// The SQL count ran without the ancestor predicate, so the walk
		// result is the authoritative count. Shaping is reapplied here
		// because the SQL limit could not be, either.
		total = len(rows)
		rows = shapeRows(rows, spec.Offset, spec.Limit)
	}

	slog.Debug("search executed", "total", total, "loaded", len(rows))
	return cursor.New(spec, rows, total, f), nil
}

// execute runs the count query and then the row query of a compiled
// pair. Total count comes from the separate aggregate so it stays
// accurate when a limit truncates the returned rows.
func (f *Federation) execute(ctx context.Context, q querysql.CompiledQuery) (int, []wof.Place, error) {
	var total int
	f.queries.Add(1)
	if err := f.db.QueryRowContext(ctx, q.CountSQL, q.CountArgs...).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("count query: %w", err)
	}

	f.queries.Add(1)
	rows, err := f.db.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return 0, nil, fmt.Errorf("row query: %w", err)
	}
	defer rows.Close()

	places := []wof.Place{}
	for rows.Next() {
		p, err := transform.ScanPlace(rows)
		if err != nil {
			return 0, nil, err
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("iterate rows: %w", err)
	}
	return total, places, nil
}

// shapeRows applies offset/limit in memory when the SQL could not.
func shapeRows(rows []wof.Place, offset, limit int) []wof.Place {
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

// GetPlace returns one place by id. When multiple sources define the
// id, the first-attached source wins.
func (f *Federation) GetPlace(ctx context.Context, id int64) (wof.Place, error) {
	if err := f.ensureConnected(); err != nil {
		return wof.Place{}, err
	}
	q := f.compiler.CompileByIDs([]int64{id})
	_, rows, err := f.execute(ctx, q)
	if err != nil {
		return wof.Place{}, err
	}
	if len(rows) == 0 {
		return wof.Place{}, fmt.Errorf("place %d: %w", id, sql.ErrNoRows)
	}
	// Rows are ordered by id then attach rank, so index 0 is the
	// deterministic winner.
	return rows[0], nil
}

// GetAncestors returns the ancestor chain of a place in
// immediate-parent-to-root order, walking parent pointers with a
// visited set and the taxonomy depth as a hard cap so malformed cyclic
// data terminates.
func (f *Federation) GetAncestors(ctx context.Context, id int64) ([]wof.Place, error) {
	if err := f.ensureConnected(); err != nil {
		return nil, err
	}

	start, err := f.GetPlace(ctx, id)
	if err != nil {
		return nil, err
	}

	var chain []wof.Place
	visited := map[int64]bool{id: true}
	current := start
	for depth := 0; depth < wof.TaxonomyDepth; depth++ {
		if current.ParentID == nil || *current.ParentID <= 0 {
			break
		}
		pid := *current.ParentID
		if visited[pid] {
			slog.Warn("cycle in parent chain, stopping walk", "id", id, "at", pid)
			break
		}
		visited[pid] = true

		parent, err := f.GetPlace(ctx, pid)
		if err != nil {
			// Dangling parent references terminate the chain quietly;
			// anything else is a real failure.
			if errors.Is(err, sql.ErrNoRows) {
				break
			}
			return nil, err
		}
		chain = append(chain, parent)
		current = parent
	}
	return chain, nil
}

// GetDescendants returns every place under the given ancestor,
// optionally narrowed by the extra filters. Uses the closure relation
// when available, otherwise a breadth-first parent_id walk bounded by
// the taxonomy depth.
func (f *Federation) GetDescendants(ctx context.Context, id int64, extra wof.FilterSpec) (*cursor.Cursor, error) {
	spec := extra
	spec.AncestorIDs = []int64{id}
	return f.Search(ctx, spec)
}

// GetChildren returns the immediate children of a place, optionally
// restricted to one placetype.
func (f *Federation) GetChildren(ctx context.Context, id int64, placetype wof.PlaceType) (*cursor.Cursor, error) {
	spec := wof.FilterSpec{ParentIDs: []int64{id}}
	if placetype != "" {
		spec.Placetypes = []wof.PlaceType{placetype}
	}
	return f.Search(ctx, spec)
}

// ancestorWalk resolves ancestor containment without a closure
// relation: a levelwise walk up the parent pointers of all candidates
// at once, one query per level, capped at the taxonomy depth.
func (f *Federation) ancestorWalk(ctx context.Context, candidates []wof.Place, walk *querysql.AncestorWalk) ([]wof.Place, error) {
	wantID := make(map[int64]bool, len(walk.IDs))
	for _, id := range walk.IDs {
		wantID[id] = true
	}
	wantName := make(map[string]bool, len(walk.Names))
	for _, n := range walk.Names {
		wantName[wof.FoldName(n)] = true
	}

	// parentOf and nameOf accumulate the portion of the tree seen so
	// far; frontier is the work queue of ids whose parents are unknown.
	parentOf := make(map[int64]int64)
	nameOf := make(map[int64]string)
	frontier := make(map[int64]bool)
	for _, c := range candidates {
		if c.ParentID != nil {
			parentOf[c.ID] = *c.ParentID
			frontier[*c.ParentID] = true
		}
		nameOf[c.ID] = c.Name
	}

	for depth := 0; depth < wof.TaxonomyDepth && len(frontier) > 0; depth++ {
		ids := make([]int64, 0, len(frontier))
		for id := range frontier {
			if _, seen := nameOf[id]; !seen {
				ids = append(ids, id)
			}
		}
		frontier = make(map[int64]bool)
		if len(ids) == 0 {
			break
		}

		q := f.compiler.CompileByIDs(ids)
		_, rows, err := f.execute(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("ancestor walk depth %d: %w", depth, err)
		}
		for _, row := range rows {
			if _, seen := nameOf[row.ID]; seen {
				continue
			}
			nameOf[row.ID] = row.Name
			if row.ParentID != nil {
				parentOf[row.ID] = *row.ParentID
				if _, seen := nameOf[*row.ParentID]; !seen {
					frontier[*row.ParentID] = true
				}
			}
		}
	}

	matches := func(c wof.Place) bool {
		visited := map[int64]bool{c.ID: true}
		cur := c.ID
		for depth := 0; depth < wof.TaxonomyDepth; depth++ {
			pid, ok := parentOf[cur]
			if !ok || visited[pid] {
				return false
			}
			visited[pid] = true
			if wantID[pid] || wantName[wof.FoldName(nameOf[pid])] {
				return true
			}
			cur = pid
		}
		return false
	}

	var out []wof.Place
	for _, c := range candidates {
		if matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}
