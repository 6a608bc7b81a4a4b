package transform

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/geoplaces/gazetteer/internal/wof"
)

// Warning records a recovered per-row decode failure.
type Warning struct {
	Alias string
	ID    int64
	Err   error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s/%d: %v", w.Alias, w.ID, w.Err)
}

// Warnings aggregates recovered decode failures for one operation.
// Callers may inspect them after a batch completes; they never abort
// the operation that produced them.
type Warnings struct {
	items []Warning
}

// Add records a warning and logs it.
func (ws *Warnings) Add(alias string, id int64, err error) {
	ws.items = append(ws.items, Warning{Alias: alias, ID: id, Err: err})
	slog.Warn("geometry decode failed, record degraded to geometry-absent",
		"source", alias, "id", id, "error", err)
}

// All returns the recorded warnings in order.
func (ws *Warnings) All() []Warning {
	out := make([]Warning, len(ws.items))
	copy(out, ws.items)
	return out
}

// Len returns the number of recorded warnings.
func (ws *Warnings) Len() int { return len(ws.items) }

// RowScanner is the subset of sql.Rows the scanners need.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanPlace reads one lightweight row in the fixed projection order
// into a Place.
func ScanPlace(rs RowScanner) (wof.Place, error) {
	var (
		p            wof.Place
		placetype    string
		parentID     sql.NullInt64
		country      sql.NullString
		region       sql.NullString
		county       sql.NullString
		locality     sql.NullString
		neighbourhd  sql.NullString
		lat, lon     sql.NullFloat64
		minLon       sql.NullFloat64
		minLat       sql.NullFloat64
		maxLon       sql.NullFloat64
		maxLat       sql.NullFloat64
		isCurrent    sql.NullInt64
		isDeprecated sql.NullInt64
		isCeased     sql.NullInt64
		isSuperseded sql.NullInt64
		isSupersedng sql.NullInt64
		supersededBy sql.NullString
		supersedes   sql.NullString
		population   sql.NullInt64
		area         sql.NullFloat64
		source       sql.NullString
		lastModified sql.NullInt64
	)

	err := rs.Scan(
		&p.Alias, &p.ID, &parentID, &p.Name, &placetype,
		&country, &region, &county, &locality, &neighbourhd,
		&lat, &lon, &minLon, &minLat, &maxLon, &maxLat,
		&isCurrent, &isDeprecated, &isCeased, &isSuperseded, &isSupersedng,
		&supersededBy, &supersedes,
		&population, &area, &source, &lastModified,
	)
	if err != nil {
		return wof.Place{}, fmt.Errorf("scan place row: %w", err)
	}

	p.Placetype = wof.PlaceType(placetype)
	if parentID.Valid {
		p.ParentID = &parentID.Int64
	}
	p.Country = country.String
	p.Region = region.String
	p.County = county.String
	p.Locality = locality.String
	p.Neighbourhood = neighbourhd.String

	if lat.Valid && lon.Valid {
		p.Centroid = &wof.Centroid{Lon: lon.Float64, Lat: lat.Float64}
	}
	if minLon.Valid && minLat.Valid && maxLon.Valid && maxLat.Valid {
		p.BBox = &wof.Bounds{
			MinLon: minLon.Float64, MinLat: minLat.Float64,
			MaxLon: maxLon.Float64, MaxLat: maxLat.Float64,
		}
	}

	// is_current uses -1 for "unknown" in source data; preserve it.
	if isCurrent.Valid {
		p.IsCurrent = isCurrent.Int64
	} else {
		p.IsCurrent = -1
	}
	p.IsDeprecated = isDeprecated.Int64 == 1
	p.IsCeased = isCeased.Int64 == 1
	p.IsSuperseded = isSuperseded.Int64 == 1
	p.IsSuperseding = isSupersedng.Int64 == 1

	p.SupersededBy = parseIDList(supersededBy.String)
	p.Supersedes = parseIDList(supersedes.String)

	p.Population = population.Int64
	p.Area = area.Float64
	p.Source = source.String
	p.LastModified = lastModified.Int64

	return p, nil
}

// ToPlaceWithGeometry attaches a decoded geometry payload to a place.
// A decode failure degrades the record to geometry-absent and records
// a warning; body == nil is the valid absent-geometry state.
func ToPlaceWithGeometry(p wof.Place, body []byte, ws *Warnings) wof.PlaceWithGeometry {
	out := wof.PlaceWithGeometry{Place: p}
	if body == nil {
		return out
	}
	geom, err := wof.DecodeGeometry(body)
	if err != nil {
		ws.Add(p.Alias, p.ID, err)
		return out
	}
	if geom != nil {
		geom.Source = p.Alias
	}
	out.Geometry = geom
	return out
}

// parseIDList parses a stored supersession list. Source data uses
// either a comma-separated string or a JSON-style bracketed list.
func parseIDList(s string) []int64 {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if s == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
