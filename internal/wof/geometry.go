package wof

import (
	"encoding/json"
	"fmt"
	"math"
)

// Geometry holds decoded GeoJSON-shaped coordinate data. Coordinates is
// the raw nesting for the declared type: [lon, lat] for Point, rings of
// positions for Polygon, a list of polygons for MultiPolygon.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
	// Source names the alias of the federation source the payload came
	// from, for provenance.
	Source string `json:"-"`
}

// Bounds is a bounding box in degrees: min/max longitude and latitude.
type Bounds struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// Centroid is a single lon/lat point.
type Centroid struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// geojsonEnvelope is the subset of a GeoJSON document needed to locate
// the bare geometry inside Feature and FeatureCollection wrappers.
type geojsonEnvelope struct {
	Type     string          `json:"type"`
	Geometry json.RawMessage `json:"geometry"`
	Features []struct {
		Geometry json.RawMessage `json:"geometry"`
	} `json:"features"`
}

// DecodeGeometry parses a stored geometry payload. Payloads wrapped in a
// Feature (or single-feature FeatureCollection) envelope are unwrapped
// to the bare geometry. An empty payload returns (nil, nil): absent
// geometry is a valid state, not an error.
func DecodeGeometry(body []byte) (*Geometry, error) {
	if len(body) == 0 {
		return nil, nil
	}

	var env geojsonEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse geometry payload: %w", err)
	}

	raw := body
	switch env.Type {
	case "Feature":
		if len(env.Geometry) == 0 || string(env.Geometry) == "null" {
			return nil, nil
		}
		raw = env.Geometry
	case "FeatureCollection":
		if len(env.Features) == 0 {
			return nil, nil
		}
		raw = env.Features[0].Geometry
	}

	var g Geometry
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("parse geometry: %w", err)
	}
	switch g.Type {
	case "Point", "Polygon", "MultiPolygon", "LineString", "MultiLineString":
	case "":
		return nil, fmt.Errorf("geometry payload has no type")
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
	if len(g.Coordinates) == 0 {
		return nil, fmt.Errorf("%s geometry has no coordinates", g.Type)
	}
	return &g, nil
}

// Point decodes the coordinates as a single position. Valid only for
// Point geometries.
func (g *Geometry) Point() (Centroid, error) {
	if g.Type != "Point" {
		return Centroid{}, fmt.Errorf("geometry is %s, not Point", g.Type)
	}
	var pos []float64
	if err := json.Unmarshal(g.Coordinates, &pos); err != nil {
		return Centroid{}, fmt.Errorf("decode point coordinates: %w", err)
	}
	if len(pos) < 2 {
		return Centroid{}, fmt.Errorf("point has %d coordinates, want 2", len(pos))
	}
	return Centroid{Lon: pos[0], Lat: pos[1]}, nil
}

// PolygonRings decodes the coordinates as rings of positions. Valid for
// Polygon geometries.
func (g *Geometry) PolygonRings() ([][][2]float64, error) {
	if g.Type != "Polygon" {
		return nil, fmt.Errorf("geometry is %s, not Polygon", g.Type)
	}
	var rings [][][2]float64
	if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
		return nil, fmt.Errorf("decode polygon coordinates: %w", err)
	}
	return rings, nil
}

// MultiPolygonRings decodes the coordinates as a list of polygons.
func (g *Geometry) MultiPolygonRings() ([][][][2]float64, error) {
	if g.Type != "MultiPolygon" {
		return nil, fmt.Errorf("geometry is %s, not MultiPolygon", g.Type)
	}
	var polys [][][][2]float64
	if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
		return nil, fmt.Errorf("decode multipolygon coordinates: %w", err)
	}
	return polys, nil
}

// Contains reports whether the point lies inside the bounds, edges
// inclusive.
func (b Bounds) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}

// Intersects reports whether two bounds overlap.
func (b Bounds) Intersects(o Bounds) bool {
	return b.MinLon <= o.MaxLon && b.MaxLon >= o.MinLon &&
		b.MinLat <= o.MaxLat && b.MaxLat >= o.MinLat
}

// Valid reports whether the box is well formed: min <= max on both axes
// and every value inside the legal degree range. Boxes crossing the
// antimeridian are rejected here; that case is a declared limitation.
func (b Bounds) Valid() bool {
	return b.MinLon <= b.MaxLon && b.MinLat <= b.MaxLat &&
		b.MinLon >= -180 && b.MaxLon <= 180 &&
		b.MinLat >= -90 && b.MaxLat <= 90
}

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two lon/lat
// points in kilometres. Planar approximations break down near the poles
// and the antimeridian, so proximity filtering always uses this.
func HaversineKm(a, b Centroid) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
