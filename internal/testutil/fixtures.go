// Package testutil builds throwaway SQLite place databases for tests.
// Every builder writes a file under t.TempDir(), so databases never
// outlive the test that created them.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// sprDDL is the shared place-table shape. All fixture databases use the
// exact same declaration so they federate without schema conflicts.
const sprDDL = `
CREATE TABLE spr (
	id             INTEGER NOT NULL,
	parent_id      INTEGER,
	name           TEXT NOT NULL,
	placetype      TEXT NOT NULL,
	country        TEXT,
	region         TEXT,
	county         TEXT,
	locality       TEXT,
	neighbourhood  TEXT,
	latitude       REAL,
	longitude      REAL,
	min_longitude  REAL,
	min_latitude   REAL,
	max_longitude  REAL,
	max_latitude   REAL,
	is_current     INTEGER NOT NULL DEFAULT -1,
	is_deprecated  INTEGER NOT NULL DEFAULT 0,
	is_ceased      INTEGER NOT NULL DEFAULT 0,
	is_superseded  INTEGER NOT NULL DEFAULT 0,
	is_superseding INTEGER NOT NULL DEFAULT 0,
	superseded_by  TEXT,
	supersedes     TEXT,
	population     INTEGER NOT NULL DEFAULT 0,
	area           REAL NOT NULL DEFAULT 0,
	source         TEXT,
	lastmodified   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX spr_by_parent ON spr (parent_id);
CREATE INDEX spr_by_placetype ON spr (placetype);
`

const namesDDL = `
CREATE TABLE names (
	id       INTEGER NOT NULL,
	language TEXT NOT NULL,
	kind     TEXT NOT NULL,
	name     TEXT NOT NULL
);
CREATE INDEX names_by_id ON names (id);
`

const ancestorsDDL = `
CREATE TABLE ancestors (
	id                 INTEGER NOT NULL,
	ancestor_id        INTEGER NOT NULL,
	ancestor_placetype TEXT NOT NULL
);
CREATE INDEX ancestors_by_id ON ancestors (id);
`

const geojsonDDL = `
CREATE TABLE geojson (
	id     INTEGER NOT NULL,
	body   TEXT,
	source TEXT
);
CREATE INDEX geojson_by_id ON geojson (id);
`

// PlaceRow is one spr fixture row. Optional scalar columns use
// pointers so NULL cases are expressible; F wraps literals.
type PlaceRow struct {
	ID            int64
	ParentID      *int64
	Name          string
	Placetype     string
	Country       string
	Region        string
	County        string
	Locality      string
	Neighbourhood string
	Lat, Lon      *float64
	MinLon        *float64
	MinLat        *float64
	MaxLon        *float64
	MaxLat        *float64
	IsCurrent     int64
	IsDeprecated  bool
	IsCeased      bool
	IsSuperseded  bool
	IsSuperseding bool
	SupersededBy  string
	Supersedes    string
	Population    int64
	Area          float64
	Source        string
	LastModified  int64
}

// NameRow is one names fixture row.
type NameRow struct {
	ID       int64
	Language string
	Kind     string
	Name     string
}

// AncestorRow is one ancestors closure fixture row.
type AncestorRow struct {
	ID                int64
	AncestorID        int64
	AncestorPlacetype string
}

// GeometryRow is one geojson fixture row. Body is stored verbatim, so
// malformed payloads for degradation tests go in as-is.
type GeometryRow struct {
	ID     int64
	Body   string
	Source string
}

// Fixture describes one database to build. Tables named in Omit are
// not created at all, which is how capability degradation is tested.
type Fixture struct {
	Places     []PlaceRow
	Names      []NameRow
	Ancestors  []AncestorRow
	Geometries []GeometryRow
	Omit       []string
}

// F returns a pointer to v, for optional fixture columns.
func F(v float64) *float64 { return &v }

// I returns a pointer to v, for optional id columns.
func I(v int64) *int64 { return &v }

// BuildDB writes the fixture into a new SQLite file under t.TempDir()
// and returns its path.
func BuildDB(t *testing.T, name string, fx Fixture) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open fixture db %s: %v", name, err)
	}
	defer db.Close()

	omitted := make(map[string]bool, len(fx.Omit))
	for _, tbl := range fx.Omit {
		omitted[tbl] = true
	}

	mustExec(t, db, sprDDL)
	if !omitted["names"] {
		mustExec(t, db, namesDDL)
	}
	if !omitted["ancestors"] {
		mustExec(t, db, ancestorsDDL)
	}
	if !omitted["geojson"] {
		mustExec(t, db, geojsonDDL)
	}

	for _, p := range fx.Places {
		mustExec(t, db, `INSERT INTO spr (
			id, parent_id, name, placetype,
			country, region, county, locality, neighbourhood,
			latitude, longitude,
			min_longitude, min_latitude, max_longitude, max_latitude,
			is_current, is_deprecated, is_ceased, is_superseded, is_superseding,
			superseded_by, supersedes, population, area, source, lastmodified
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			p.ID, p.ParentID, p.Name, p.Placetype,
			p.Country, p.Region, p.County, p.Locality, p.Neighbourhood,
			p.Lat, p.Lon,
			p.MinLon, p.MinLat, p.MaxLon, p.MaxLat,
			p.IsCurrent, boolInt(p.IsDeprecated), boolInt(p.IsCeased),
			boolInt(p.IsSuperseded), boolInt(p.IsSuperseding),
			p.SupersededBy, p.Supersedes, p.Population, p.Area, p.Source, p.LastModified,
		)
	}
	for _, n := range fx.Names {
		if omitted["names"] {
			t.Fatalf("fixture names row %d but names table omitted", n.ID)
		}
		mustExec(t, db, `INSERT INTO names (id, language, kind, name) VALUES (?,?,?,?)`,
			n.ID, n.Language, n.Kind, n.Name)
	}
	for _, a := range fx.Ancestors {
		if omitted["ancestors"] {
			t.Fatalf("fixture ancestors row %d but ancestors table omitted", a.ID)
		}
		mustExec(t, db, `INSERT INTO ancestors (id, ancestor_id, ancestor_placetype) VALUES (?,?,?)`,
			a.ID, a.AncestorID, a.AncestorPlacetype)
	}
	for _, g := range fx.Geometries {
		if omitted["geojson"] {
			t.Fatalf("fixture geojson row %d but geojson table omitted", g.ID)
		}
		mustExec(t, db, `INSERT INTO geojson (id, body, source) VALUES (?,?,?)`,
			g.ID, g.Body, g.Source)
	}

	if err := db.Close(); err != nil {
		t.Fatalf("close fixture db %s: %v", name, err)
	}
	return path
}

func mustExec(t *testing.T, db *sql.DB, stmt string, args ...any) {
	t.Helper()
	if _, err := db.Exec(stmt, args...); err != nil {
		t.Fatalf("fixture exec failed: %v\nstatement: %s", err, stmt)
	}
}

func boolInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}
