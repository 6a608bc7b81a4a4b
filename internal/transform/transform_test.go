package transform

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoplaces/gazetteer/internal/testutil"
	"github.com/geoplaces/gazetteer/internal/wof"
)

// queryRows runs the lightweight projection directly against a fixture
// database, with a literal src column standing in for the federation
// view.
func queryRows(t *testing.T, path, where string) []wof.Place {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rows, err := db.Query(`SELECT 'main' AS src, id, parent_id, name, placetype,
		country, region, county, locality, neighbourhood,
		latitude, longitude, min_longitude, min_latitude, max_longitude, max_latitude,
		is_current, is_deprecated, is_ceased, is_superseded, is_superseding,
		superseded_by, supersedes, population, area, source, lastmodified
		FROM spr ` + where + ` ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var places []wof.Place
	for rows.Next() {
		p, err := ScanPlace(rows)
		require.NoError(t, err)
		places = append(places, p)
	}
	require.NoError(t, rows.Err())
	return places
}

func TestScanPlace_FullRow(t *testing.T) {
	path := testutil.BuildDB(t, "scan.db", testutil.BarbadosFixture())

	places := queryRows(t, path, "WHERE id = 102027145")
	require.Len(t, places, 1)
	p := places[0]

	assert.Equal(t, testutil.BridgetownID, p.ID)
	assert.Equal(t, "main", p.Alias)
	assert.Equal(t, "Bridgetown", p.Name)
	assert.Equal(t, wof.TypeLocality, p.Placetype)
	require.NotNil(t, p.ParentID)
	assert.Equal(t, testutil.SaintMichaelID, *p.ParentID)
	assert.Equal(t, "BB", p.Country)
	assert.Equal(t, "Saint Michael", p.Region)
	assert.Equal(t, int64(1), p.IsCurrent)
	assert.Equal(t, wof.StatusCurrent, p.Status())

	require.NotNil(t, p.Centroid)
	assert.InDelta(t, 13.0975, p.Centroid.Lat, 1e-9)
	assert.InDelta(t, -59.6167, p.Centroid.Lon, 1e-9)
	require.NotNil(t, p.BBox)
	assert.InDelta(t, -59.63, p.BBox.MinLon, 1e-9)

	assert.Equal(t, int64(110000), p.Population)
	assert.Equal(t, "whosonfirst-data", p.Source)
	assert.Equal(t, int64(1661000000), p.LastModified)
}

func TestScanPlace_NullColumns(t *testing.T) {
	fx := testutil.Fixture{
		Places: []testutil.PlaceRow{{
			ID: 1, Name: "Nowhere", Placetype: "locality", IsCurrent: -1,
		}},
	}
	path := testutil.BuildDB(t, "nulls.db", fx)

	places := queryRows(t, path, "")
	require.Len(t, places, 1)
	p := places[0]

	assert.Nil(t, p.ParentID)
	assert.Nil(t, p.Centroid)
	assert.Nil(t, p.BBox)
	assert.Equal(t, int64(-1), p.IsCurrent)
	assert.Equal(t, wof.StatusUnknown, p.Status())
	_, ok := p.Latitude()
	assert.False(t, ok)
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		input string
		want  []int64
	}{
		{"", nil},
		{"123", []int64{123}},
		{"1,2,3", []int64{1, 2, 3}},
		{"[1, 2, 3]", []int64{1, 2, 3}},
		{" [42] ", []int64{42}},
		{"1,bogus,3", []int64{1, 3}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseIDList(tt.input), "input %q", tt.input)
	}
}

func TestToPlaceWithGeometry(t *testing.T) {
	p := wof.Place{ID: 7, Alias: "main"}

	t.Run("absent body is valid", func(t *testing.T) {
		ws := &Warnings{}
		out := ToPlaceWithGeometry(p, nil, ws)
		assert.Nil(t, out.Geometry)
		assert.Zero(t, ws.Len())
	})

	t.Run("valid body decodes with provenance", func(t *testing.T) {
		ws := &Warnings{}
		out := ToPlaceWithGeometry(p, []byte(`{"type": "Point", "coordinates": [1, 2]}`), ws)
		require.NotNil(t, out.Geometry)
		assert.Equal(t, "Point", out.Geometry.Type)
		assert.Equal(t, "main", out.Geometry.Source)
		assert.Zero(t, ws.Len())
	})

	t.Run("malformed body degrades with a warning", func(t *testing.T) {
		ws := &Warnings{}
		out := ToPlaceWithGeometry(p, []byte(`{"type": "Blob"`), ws)
		assert.Nil(t, out.Geometry)
		require.Equal(t, 1, ws.Len())
		w := ws.All()[0]
		assert.Equal(t, "main", w.Alias)
		assert.Equal(t, int64(7), w.ID)
		assert.Error(t, w.Err)
	})
}

func TestWarnings_AllCopies(t *testing.T) {
	ws := &Warnings{}
	ws.Add("main", 1, assert.AnError)

	got := ws.All()
	got[0].ID = 99
	assert.Equal(t, int64(1), ws.All()[0].ID)
}
