package querysql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoplaces/gazetteer/internal/wof"
)

var allCaps = Capabilities{HasNames: true, HasAncestors: true, HasGeometry: true}

func boolPtr(v bool) *bool { return &v }

func TestCompile_EmptySpec(t *testing.T) {
	q, err := NewCompiler(allCaps).Compile(wof.FilterSpec{})
	require.NoError(t, err)

	assert.Equal(t, "SELECT "+lightweightColumns+" FROM spr_all ORDER BY id ASC, src_order ASC", q.SQL)
	assert.Empty(t, q.Args)
	assert.Equal(t, "SELECT COUNT(*) FROM spr_all", q.CountSQL)
	assert.Empty(t, q.CountArgs)
	assert.Nil(t, q.Walk)
}

func TestCompile_RejectsInvalidSpec(t *testing.T) {
	_, err := NewCompiler(allCaps).Compile(wof.FilterSpec{Limit: -1})
	require.Error(t, err)
	assert.True(t, wof.IsInvalidFilter(err))
}

func TestCompile_NameSubstring(t *testing.T) {
	q, err := NewCompiler(allCaps).Compile(wof.FilterSpec{Name: "Bridge_Town"})
	require.NoError(t, err)

	assert.Contains(t, q.SQL, `lower(name) LIKE ? ESCAPE '\'`)
	require.Len(t, q.Args, 1)
	// Folded, with LIKE wildcards escaped and containment wildcards added.
	assert.Equal(t, `%bridge\_town%`, q.Args[0])
}

func TestCompile_NameExact(t *testing.T) {
	q, err := NewCompiler(allCaps).Compile(wof.FilterSpec{Name: "Bridgetown", NameExact: true})
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "lower(name) = ?")
	assert.Equal(t, []any{"bridgetown"}, q.Args)
}

func TestCompile_NameWithLanguage(t *testing.T) {
	q, err := NewCompiler(allCaps).Compile(wof.FilterSpec{
		Name: "SF", NameExact: true, NameLanguage: "eng", NameKind: wof.NameColloquial,
	})
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "SELECT n.id FROM names_all n")
	assert.Contains(t, q.SQL, "n.language = ?")
	assert.Contains(t, q.SQL, "n.kind = ?")
	assert.Equal(t, []any{"eng", "sf", "colloquial"}, q.Args)
}

func TestCompile_NameKindAnySkipsKindFilter(t *testing.T) {
	q, err := NewCompiler(allCaps).Compile(wof.FilterSpec{
		Name: "SF", NameLanguage: "eng", NameKind: wof.NameAny,
	})
	require.NoError(t, err)
	assert.NotContains(t, q.SQL, "n.kind")
}

func TestCompile_NameLanguageWithoutNamesTable(t *testing.T) {
	caps := allCaps
	caps.HasNames = false
	q, err := NewCompiler(caps).Compile(wof.FilterSpec{Name: "SF", NameLanguage: "eng"})
	require.NoError(t, err)

	// Degrades to a primary-name match instead of referencing a view
	// that does not exist.
	assert.NotContains(t, q.SQL, "names_all")
	assert.Contains(t, q.SQL, "lower(name)")
}

func TestCompile_Placetypes(t *testing.T) {
	q, err := NewCompiler(allCaps).Compile(wof.FilterSpec{
		Placetypes:        []wof.PlaceType{wof.TypeLocality, wof.TypeRegion},
		ExcludePlacetypes: []wof.PlaceType{wof.TypeVenue},
	})
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "placetype IN (?, ?)")
	assert.Contains(t, q.SQL, "placetype NOT IN (?)")
	assert.Equal(t, []any{"locality", "region", "venue"}, q.Args)
}

func TestCompile_LocationFields(t *testing.T) {
	q, err := NewCompiler(allCaps).Compile(wof.FilterSpec{
		Countries: []string{"BB", "US"},
		Regions:   []string{"California"},
		Sources:   []string{"admin"},
	})
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "country IN (?, ?)")
	assert.Contains(t, q.SQL, "region IN (?)")
	assert.Contains(t, q.SQL, "src IN (?)")
	assert.Equal(t, []any{"BB", "US", "California", "admin"}, q.Args)
}

func TestCompile_ParentContainment(t *testing.T) {
	q, err := NewCompiler(allCaps).Compile(wof.FilterSpec{
		ParentIDs:   []int64{85670295},
		ParentNames: []string{"Saint Michael"},
	})
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "parent_id IN (?)")
	assert.Contains(t, q.SQL, "parent_id IN (SELECT id FROM spr_all WHERE lower(name) IN (?))")
	assert.Equal(t, []any{int64(85670295), "saint michael"}, q.Args)
}

func TestCompile_AncestorsWithClosure(t *testing.T) {
	q, err := NewCompiler(allCaps).Compile(wof.FilterSpec{
		AncestorIDs:   []int64{85688637},
		AncestorNames: []string{"California"},
		Limit:         5,
	})
	require.NoError(t, err)

	assert.Nil(t, q.Walk)
	assert.Contains(t, q.SQL, "FROM ancestors_all a WHERE a.ancestor_id IN (?)")
	assert.Contains(t, q.SQL, "JOIN spr_all p ON a.ancestor_id = p.id")
	assert.Contains(t, q.SQL, "LIMIT ?")
}

func TestCompile_AncestorsWithoutClosure(t *testing.T) {
	caps := allCaps
	caps.HasAncestors = false
	q, err := NewCompiler(caps).Compile(wof.FilterSpec{
		AncestorNames: []string{"California"},
		Limit:         5,
		Offset:        2,
	})
	require.NoError(t, err)

	require.NotNil(t, q.Walk)
	assert.Equal(t, []string{"California"}, q.Walk.Names)
	assert.NotContains(t, q.SQL, "ancestors_all")
	// Shaping is deferred to the executor so the walk sees every
	// candidate row.
	assert.NotContains(t, q.SQL, "LIMIT")
	assert.NotContains(t, q.SQL, "OFFSET")
}

func TestCompile_StatusFlags(t *testing.T) {
	q, err := NewCompiler(allCaps).Compile(wof.FilterSpec{
		IsCurrent:    boolPtr(true),
		IsDeprecated: boolPtr(false),
	})
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "is_current = 1")
	// False must match 0 and -1 both, so it is expressed as != 1.
	assert.Contains(t, q.SQL, "is_deprecated != 1")
}

func TestCompile_BBoxOverlap(t *testing.T) {
	q, err := NewCompiler(allCaps).Compile(wof.FilterSpec{
		BBox: &wof.Bounds{MinLon: -60, MinLat: 13, MaxLon: -59, MaxLat: 14},
	})
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "max_longitude >= ? AND min_longitude <= ? AND max_latitude >= ? AND min_latitude <= ?")
	assert.Equal(t, []any{-60.0, -59.0, 13.0, 14.0}, q.Args)
}

func TestCompile_Proximity(t *testing.T) {
	q, err := NewCompiler(allCaps).Compile(wof.FilterSpec{
		Near:     &wof.Centroid{Lon: -59.6, Lat: 13.1},
		RadiusKm: 50,
	})
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "haversine_km(latitude, longitude, ?, ?) <= ?")
	assert.Contains(t, q.CountSQL, "haversine_km", "count query carries the same predicate")
	assert.Equal(t, []any{13.1, -59.6, 50.0}, q.Args)
	assert.Equal(t, q.Args, q.CountArgs)
}

func TestCompile_RequireGeometry(t *testing.T) {
	q, err := NewCompiler(allCaps).Compile(wof.FilterSpec{RequireGeometry: true})
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "EXISTS (SELECT 1 FROM geojson_all g WHERE g.id = spr_all.id AND g.src = spr_all.src)")

	caps := allCaps
	caps.HasGeometry = false
	q, err = NewCompiler(caps).Compile(wof.FilterSpec{RequireGeometry: true})
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "1 = 0", "unsatisfiable without any geojson table")
}

func TestCompile_LimitOffsetShaping(t *testing.T) {
	q, err := NewCompiler(allCaps).Compile(wof.FilterSpec{Countries: []string{"BB"}, Limit: 10, Offset: 20})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(q.SQL, "LIMIT ? OFFSET ?"))
	assert.Equal(t, []any{"BB", 10, 20}, q.Args)
	// The count aggregates the full predicate set, unshaped.
	assert.Equal(t, []any{"BB"}, q.CountArgs)

	// Offset without limit uses SQLite's unlimited LIMIT -1.
	q, err = NewCompiler(allCaps).Compile(wof.FilterSpec{Offset: 20})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(q.SQL, "LIMIT -1 OFFSET ?"))
}

func TestCompile_SortOrder(t *testing.T) {
	q, err := NewCompiler(allCaps).Compile(wof.FilterSpec{SortBy: "name", Order: wof.SortDesc})
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "ORDER BY name COLLATE BINARY DESC, id ASC, src_order ASC")

	// Sorting by id is already the deterministic default.
	q, err = NewCompiler(allCaps).Compile(wof.FilterSpec{SortBy: "id"})
	require.NoError(t, err)
	assert.Contains(t, q.SQL, "ORDER BY id ASC, src_order ASC")
}

func TestCompileByIDs(t *testing.T) {
	c := NewCompiler(allCaps)

	q := c.CompileByIDs([]int64{7, 3})
	assert.Contains(t, q.SQL, "WHERE id IN (?, ?)")
	assert.Contains(t, q.SQL, "ORDER BY id ASC, src_order ASC")
	assert.Equal(t, []any{int64(7), int64(3)}, q.Args)

	empty := c.CompileByIDs(nil)
	assert.Contains(t, empty.SQL, "WHERE 1 = 0")
	assert.Empty(t, empty.Args)
}

func TestCompileGeometry(t *testing.T) {
	c := NewCompiler(allCaps)

	sql, args := c.CompileGeometry([]int64{5})
	assert.Equal(t, "SELECT src, id, body FROM geojson_all WHERE id IN (?) ORDER BY id ASC, src_order ASC", sql)
	assert.Equal(t, []any{int64(5)}, args)

	sql, args = c.CompileGeometry(nil)
	assert.Contains(t, sql, "WHERE 1 = 0")
	assert.Empty(t, args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b`, escapeLike("a%b"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
