package federation

import (
	"context"
	"fmt"

	"github.com/geoplaces/gazetteer/internal/transform"
	"github.com/geoplaces/gazetteer/internal/wof"
)

// FetchByIDs materializes full place records for a batch of identifiers.
// When withGeometry is set and at least one attached source carries a
// geojson table, geometry bodies are fetched in a single batched query
// and merged by source alias and id. Decoded geometries are cached so
// repeated cursor materializations of the same records skip the detail
// query entirely.
func (f *Federation) FetchByIDs(ctx context.Context, ids []int64, withGeometry bool) ([]wof.PlaceWithGeometry, []transform.Warning, error) {
	if err := f.ensureConnected(); err != nil {
		return nil, nil, err
	}
	if len(ids) == 0 {
		return nil, nil, nil
	}
	if len(ids) > maxBatchIDs {
		return nil, nil, &wof.InvalidArgumentError{
			Argument: "ids",
			Reason:   fmt.Sprintf("batch of %d exceeds maximum of %d", len(ids), maxBatchIDs),
		}
	}

	q := f.compiler.CompileByIDs(ids)
	rows, err := f.db.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch by ids: %w", err)
	}
	defer rows.Close()
	f.queries.Add(1)

	var places []wof.Place
	for rows.Next() {
		p, err := transform.ScanPlace(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate places: %w", err)
	}

	if !withGeometry || !f.caps.HasGeometry {
		out := make([]wof.PlaceWithGeometry, len(places))
		for i, p := range places {
			out[i] = wof.PlaceWithGeometry{Place: p}
		}
		return out, nil, nil
	}
	return f.attachGeometries(ctx, places)
}

// attachGeometries joins decoded geometry bodies onto the given places.
// Cached entries are served from the LRU; only cache misses hit the
// geojson view, and every decoded body is cached for the next batch.
func (f *Federation) attachGeometries(ctx context.Context, places []wof.Place) ([]wof.PlaceWithGeometry, []transform.Warning, error) {
	ws := &transform.Warnings{}
	out := make([]wof.PlaceWithGeometry, len(places))
	cached := make(map[string]*wof.Geometry, len(places))

	var missing []int64
	seen := make(map[int64]bool, len(places))
	for i, p := range places {
		out[i] = wof.PlaceWithGeometry{Place: p}
		key := geomCacheKey(p.Alias, p.ID)
		if g, ok := f.geomCache.Get(key); ok {
			cached[key] = g
			continue
		}
		if !seen[p.ID] {
			seen[p.ID] = true
			missing = append(missing, p.ID)
		}
	}

	bodies := make(map[string][]byte, len(missing))
	if len(missing) > 0 {
		gsql, gargs := f.compiler.CompileGeometry(missing)
		rows, err := f.db.QueryContext(ctx, gsql, gargs...)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch geometries: %w", err)
		}
		defer rows.Close()
		f.queries.Add(1)

		for rows.Next() {
			var src string
			var id int64
			var body []byte
			if err := rows.Scan(&src, &id, &body); err != nil {
				return nil, nil, fmt.Errorf("scan geometry: %w", err)
			}
			bodies[geomCacheKey(src, id)] = body
		}
		if err := rows.Err(); err != nil {
			return nil, nil, fmt.Errorf("iterate geometries: %w", err)
		}
	}

	for i := range out {
		p := out[i].Place
		key := geomCacheKey(p.Alias, p.ID)
		if g, ok := cached[key]; ok {
			out[i].Geometry = g
			continue
		}
		body, ok := bodies[key]
		if !ok {
			continue
		}
		pg := transform.ToPlaceWithGeometry(p, body, ws)
		out[i] = pg
		if pg.Geometry != nil {
			f.geomCache.Add(key, pg.Geometry)
		}
	}
	return out, ws.All(), nil
}

func geomCacheKey(alias string, id int64) string {
	return fmt.Sprintf("%s/%d", alias, id)
}
