package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/geoplaces/gazetteer/internal/wof"
)

// wktEmpty marks a record whose geometry is genuinely absent. A record
// with malformed coordinates is an error, never EMPTY.
const wktEmpty = "GEOMETRYCOLLECTION EMPTY"

type wktSerializer struct{}

func (wktSerializer) Format() Format { return FormatWKT }

// Serialize emits one tab-separated line per record: id, name,
// placetype, WKT geometry. Polygon rings are emitted exactly as stored;
// closure is preserved, never synthesized.
func (s wktSerializer) Serialize(places []wof.PlaceWithGeometry, opts Options) ([]byte, error) {
	lines, err := Lines(places, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Lines returns the WKT form of places one record per line, the
// structured counterpart to NewFeatureCollection for callers that
// stream or post-process records instead of writing a file.
func Lines(places []wof.PlaceWithGeometry, opts Options) ([]string, error) {
	out := make([]string, 0, len(places))
	for _, p := range places {
		if p.Geometry == nil {
			if opts.RequireGeometry {
				continue
			}
			out = append(out, wktLine(p.Place, wktEmpty))
			continue
		}
		wkt, err := EncodeWKT(p.Geometry)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", p.ID, err)
		}
		out = append(out, wktLine(p.Place, wkt))
	}
	return out, nil
}

func wktLine(p wof.Place, wkt string) string {
	return strconv.FormatInt(p.ID, 10) + "\t" + p.Name + "\t" + string(p.Placetype) + "\t" + wkt
}

// EncodeWKT renders a single decoded geometry as WKT.
func EncodeWKT(g *wof.Geometry) (string, error) {
	switch g.Type {
	case "Point":
		pt, err := g.Point()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("POINT (%s %s)", formatFloat(pt.Lon), formatFloat(pt.Lat)), nil
	case "LineString":
		var line [][2]float64
		if err := json.Unmarshal(g.Coordinates, &line); err != nil {
			return "", fmt.Errorf("decode linestring coordinates: %w", err)
		}
		if len(line) == 0 {
			return "", fmt.Errorf("linestring has no positions")
		}
		return "LINESTRING " + wktPositions(line), nil
	case "MultiLineString":
		var lines [][][2]float64
		if err := json.Unmarshal(g.Coordinates, &lines); err != nil {
			return "", fmt.Errorf("decode multilinestring coordinates: %w", err)
		}
		if len(lines) == 0 {
			return "", fmt.Errorf("multilinestring has no lines")
		}
		return "MULTILINESTRING " + wktGroups(lines), nil
	case "Polygon":
		rings, err := g.PolygonRings()
		if err != nil {
			return "", err
		}
		if len(rings) == 0 {
			return "", fmt.Errorf("polygon has no rings")
		}
		return "POLYGON " + wktGroups(rings), nil
	case "MultiPolygon":
		polys, err := g.MultiPolygonRings()
		if err != nil {
			return "", err
		}
		if len(polys) == 0 {
			return "", fmt.Errorf("multipolygon has no polygons")
		}
		var buf bytes.Buffer
		buf.WriteString("MULTIPOLYGON (")
		for i, rings := range polys {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(wktGroups(rings))
		}
		buf.WriteByte(')')
		return buf.String(), nil
	default:
		return "", fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

func wktPositions(positions [][2]float64) string {
	var buf bytes.Buffer
	buf.WriteByte('(')
	for i, pos := range positions {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(formatFloat(pos[0]))
		buf.WriteByte(' ')
		buf.WriteString(formatFloat(pos[1]))
	}
	buf.WriteByte(')')
	return buf.String()
}

func wktGroups(groups [][][2]float64) string {
	var buf bytes.Buffer
	buf.WriteByte('(')
	for i, g := range groups {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(wktPositions(g))
	}
	buf.WriteByte(')')
	return buf.String()
}
