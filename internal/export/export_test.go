package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoplaces/gazetteer/internal/wof"
)

func golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// samplePlaces is two records: one fully populated with a point
// geometry and extent, one geometry-absent and deprecated.
func samplePlaces() []wof.PlaceWithGeometry {
	parent := int64(85670295)
	return []wof.PlaceWithGeometry{
		{
			Place: wof.Place{
				ID: 102027145, Name: "Bridgetown", Placetype: wof.TypeLocality,
				ParentID: &parent, Alias: "barbados",
				IsCurrent: 1,
				Country:   "BB", Region: "Saint Michael",
				BBox:       &wof.Bounds{MinLon: -59.63, MinLat: 13.08, MaxLon: -59.58, MaxLat: 13.12},
				Centroid:   &wof.Centroid{Lon: -59.6167, Lat: 13.0975},
				Population: 110000, Area: 38.8,
				Source: "whosonfirst-data", LastModified: 1661000000,
			},
			Geometry: &wof.Geometry{
				Type:        "Point",
				Coordinates: json.RawMessage(`[-59.6167, 13.0975]`),
				Source:      "barbados",
			},
		},
		{
			Place: wof.Place{
				ID: 1326720241, Name: "Moore Hill", Placetype: wof.TypeLocality,
				ParentID: &parent, Alias: "barbados",
				IsCurrent: 1, IsDeprecated: true,
				Country: "BB", Region: "Saint Michael",
				Source: "whosonfirst-data", LastModified: 1600000000,
			},
		},
	}
}

func TestNew(t *testing.T) {
	for _, format := range Formats() {
		s, err := New(format)
		require.NoError(t, err)
		assert.Equal(t, format, s.Format())
	}

	_, err := New("shapefile")
	require.Error(t, err)
	var argErr *wof.InvalidArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "format", argErr.Argument)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []Format{FormatCSV, FormatGeoJSON, FormatWKT}, Formats())
}

func TestGeoJSONSerializer_Golden(t *testing.T) {
	s, err := New(FormatGeoJSON)
	require.NoError(t, err)

	data, err := s.Serialize(samplePlaces(), Options{})
	require.NoError(t, err)
	golden(t).Assert(t, "geojson_default", data)
}

func TestGeoJSONSerializer_CustomProperties(t *testing.T) {
	s, err := New(FormatGeoJSON)
	require.NoError(t, err)

	data, err := s.Serialize(samplePlaces(), Options{Properties: []string{"name", "status", "population"}})
	require.NoError(t, err)

	var fc FeatureCollection
	require.NoError(t, json.Unmarshal(data, &fc))
	require.Len(t, fc.Features, 2)

	assert.Equal(t, map[string]any{
		"name": "Bridgetown", "status": "current", "population": float64(110000),
	}, fc.Features[0].Properties)
	assert.Equal(t, "deprecated", fc.Features[1].Properties["status"])
}

func TestGeoJSONSerializer_UnknownProperty(t *testing.T) {
	s, err := New(FormatGeoJSON)
	require.NoError(t, err)

	_, err = s.Serialize(samplePlaces(), Options{Properties: []string{"elevation"}})
	require.Error(t, err)
	var argErr *wof.InvalidArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "properties", argErr.Argument)
}

func TestGeoJSONSerializer_RequireGeometry(t *testing.T) {
	s, err := New(FormatGeoJSON)
	require.NoError(t, err)

	data, err := s.Serialize(samplePlaces(), Options{RequireGeometry: true})
	require.NoError(t, err)

	var fc FeatureCollection
	require.NoError(t, json.Unmarshal(data, &fc))
	require.Len(t, fc.Features, 1)
	assert.Equal(t, int64(102027145), fc.Features[0].ID)
}

func TestGeoJSONSerializer_Empty(t *testing.T) {
	s, err := New(FormatGeoJSON)
	require.NoError(t, err)

	data, err := s.Serialize(nil, Options{})
	require.NoError(t, err)

	var fc FeatureCollection
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.NotNil(t, fc.Features)
	assert.Empty(t, fc.Features)
}

func TestGeoJSONSerializer_GeometryRoundTrip(t *testing.T) {
	parent := int64(85670295)
	place := func(id int64, geomType, coords string) wof.PlaceWithGeometry {
		return wof.PlaceWithGeometry{
			Place: wof.Place{
				ID: id, Name: "Roundtrip", Placetype: wof.TypeLocality,
				ParentID: &parent, IsCurrent: 1,
			},
			Geometry: &wof.Geometry{Type: geomType, Coordinates: json.RawMessage(coords)},
		}
	}
	places := []wof.PlaceWithGeometry{
		place(1, "Point", `[-59.6167, 13.0975]`),
		place(2, "Polygon", `[[[-59.63, 13.08], [-59.58, 13.08], [-59.58, 13.12], [-59.63, 13.08]]]`),
		place(3, "MultiPolygon", `[[[[0, 0], [1, 0], [1, 1], [0, 0]]], [[[5, 5], [6, 5], [6, 6], [5, 5]]]]`),
	}

	s, err := New(FormatGeoJSON)
	require.NoError(t, err)
	data, err := s.Serialize(places, Options{})
	require.NoError(t, err)

	var fc FeatureCollection
	require.NoError(t, json.Unmarshal(data, &fc))
	require.Len(t, fc.Features, 3)

	for i, f := range fc.Features {
		want := places[i].Geometry
		got := f.Geometry
		require.NotNil(t, got)
		require.Equal(t, want.Type, got.Type)

		switch want.Type {
		case "Point":
			wantPt, err := want.Point()
			require.NoError(t, err)
			gotPt, err := got.Point()
			require.NoError(t, err)
			assert.Equal(t, wantPt, gotPt)
		case "Polygon":
			wantRings, err := want.PolygonRings()
			require.NoError(t, err)
			gotRings, err := got.PolygonRings()
			require.NoError(t, err)
			assert.Equal(t, wantRings, gotRings)
		case "MultiPolygon":
			wantPolys, err := want.MultiPolygonRings()
			require.NoError(t, err)
			gotPolys, err := got.MultiPolygonRings()
			require.NoError(t, err)
			assert.Equal(t, wantPolys, gotPolys)
		}
	}
}

func TestCSVSerializer_Golden(t *testing.T) {
	s, err := New(FormatCSV)
	require.NoError(t, err)

	data, err := s.Serialize(samplePlaces(), Options{})
	require.NoError(t, err)
	golden(t).Assert(t, "csv_default", data)
}

func TestCSVSerializer_RequireGeometry(t *testing.T) {
	s, err := New(FormatCSV)
	require.NoError(t, err)

	data, err := s.Serialize(samplePlaces(), Options{RequireGeometry: true})
	require.NoError(t, err)

	lines := splitLines(data)
	require.Len(t, lines, 2, "header plus one record")
	assert.Contains(t, lines[1], "Bridgetown")
}

func TestRecords(t *testing.T) {
	recs := Records(samplePlaces(), Options{})
	require.Len(t, recs, 3)
	assert.Equal(t, csvColumns, recs[0])
	assert.Equal(t, "102027145", recs[1][0])
	assert.Equal(t, "Bridgetown", recs[1][2])
	assert.Equal(t, "Moore Hill", recs[2][2])
	for _, rec := range recs {
		assert.Len(t, rec, len(csvColumns))
	}

	recs = Records(samplePlaces(), Options{RequireGeometry: true})
	require.Len(t, recs, 2, "header plus the record with geometry")
	assert.Equal(t, "Bridgetown", recs[1][2])
}

func TestLines(t *testing.T) {
	lines, err := Lines(samplePlaces(), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"102027145\tBridgetown\tlocality\tPOINT (-59.6167 13.0975)",
		"1326720241\tMoore Hill\tlocality\tGEOMETRYCOLLECTION EMPTY",
	}, lines)

	lines, err = Lines(samplePlaces(), Options{RequireGeometry: true})
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestWKTSerializer(t *testing.T) {
	s, err := New(FormatWKT)
	require.NoError(t, err)

	data, err := s.Serialize(samplePlaces(), Options{})
	require.NoError(t, err)

	want := "102027145\tBridgetown\tlocality\tPOINT (-59.6167 13.0975)\n" +
		"1326720241\tMoore Hill\tlocality\tGEOMETRYCOLLECTION EMPTY\n"
	assert.Equal(t, want, string(data))
}

func TestWKTSerializer_RequireGeometry(t *testing.T) {
	s, err := New(FormatWKT)
	require.NoError(t, err)

	data, err := s.Serialize(samplePlaces(), Options{RequireGeometry: true})
	require.NoError(t, err)
	assert.Equal(t, "102027145\tBridgetown\tlocality\tPOINT (-59.6167 13.0975)\n", string(data))
}

func TestEncodeWKT(t *testing.T) {
	tests := []struct {
		name     string
		geomType string
		coords   string
		want     string
	}{
		{"point", "Point", `[-122.4194, 37.7749]`, "POINT (-122.4194 37.7749)"},
		{"linestring", "LineString", `[[0, 0], [1, 1], [2, 0]]`, "LINESTRING (0 0, 1 1, 2 0)"},
		{
			"multilinestring", "MultiLineString",
			`[[[0, 0], [1, 1]], [[2, 2], [3, 3]]]`,
			"MULTILINESTRING ((0 0, 1 1), (2 2, 3 3))",
		},
		{
			"polygon", "Polygon",
			`[[[-59.63, 13.08], [-59.58, 13.08], [-59.58, 13.12], [-59.63, 13.08]]]`,
			"POLYGON ((-59.63 13.08, -59.58 13.08, -59.58 13.12, -59.63 13.08))",
		},
		{
			"multipolygon", "MultiPolygon",
			`[[[[0, 0], [1, 0], [1, 1], [0, 0]]], [[[5, 5], [6, 5], [6, 6], [5, 5]]]]`,
			"MULTIPOLYGON (((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5, 6 6, 5 5)))",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EncodeWKT(&wof.Geometry{
				Type:        tc.geomType,
				Coordinates: json.RawMessage(tc.coords),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEncodeWKT_Errors(t *testing.T) {
	tests := []struct {
		name     string
		geomType string
		coords   string
	}{
		{"unsupported type", "GeometryCollection", `[]`},
		{"empty polygon", "Polygon", `[]`},
		{"empty linestring", "LineString", `[]`},
		{"malformed coordinates", "Point", `"not coordinates"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EncodeWKT(&wof.Geometry{
				Type:        tc.geomType,
				Coordinates: json.RawMessage(tc.coords),
			})
			assert.Error(t, err)
		})
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.geojson")
	require.NoError(t, WriteFile(path, FormatGeoJSON, samplePlaces(), Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var fc FeatureCollection
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Len(t, fc.Features, 2)
}

func TestWriteFile_UnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.dat")
	err := WriteFile(path, "shapefile", samplePlaces(), Options{})
	require.Error(t, err)
	assert.True(t, wof.IsInvalidArgument(err))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func splitLines(data []byte) []string {
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, string(data[start:i]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines
}
