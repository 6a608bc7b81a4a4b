package federation

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/geoplaces/gazetteer/internal/querysql"
	"github.com/geoplaces/gazetteer/internal/wof"
)

const driverName = "sqlite3_gazetteer"

// geometryCacheSize bounds the decoded-geometry LRU per federation
// handle. Country polygons run to a few MB; 256 entries keeps repeat
// materialization cheap without holding a whole planet file in memory.
const geometryCacheSize = 256

var registerDriverOnce sync.Once

// registerDriver installs the sqlite driver variant that exposes
// haversine_km to SQL, so proximity predicates run as real great-circle
// distance inside the query instead of a planar approximation.
func registerDriver() {
	registerDriverOnce.Do(func() {
		sql.Register(driverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("haversine_km", func(lat1, lon1, lat2, lon2 float64) float64 {
					return wof.HaversineKm(
						wof.Centroid{Lat: lat1, Lon: lon1},
						wof.Centroid{Lat: lat2, Lon: lon2},
					)
				}, true)
			},
		})
	})
}

// requiredColumns is the minimal place-table column set every source
// must provide. The full reference shape is whatever the first
// attached source declares.
var requiredColumns = []string{
	"id", "parent_id", "name", "placetype",
	"latitude", "longitude",
	"is_current", "is_deprecated", "is_ceased", "is_superseded", "is_superseding",
}

// optionalTables are detected per source; capabilities degrade
// gracefully when one is missing.
var optionalTables = []string{"names", "ancestors", "geojson"}

// Federation is the single logical connection over all attached
// sources. Construct with Attach; the unified views are built once and
// never change, so any number of concurrent queries may run against
// one handle.
type Federation struct {
	db       *sql.DB
	sources  []DataSource
	caps     querysql.Capabilities
	compiler *querysql.Compiler

	geomCache *lru.Cache[string, *wof.Geometry]

	// queries counts executed SQL statements; tests use it to verify
	// that invalid filters never reach the database.
	queries atomic.Int64

	connected atomic.Bool
}

// Attach federates the given database paths, deriving each alias from
// its file name.
func Attach(ctx context.Context, paths []string) (*Federation, error) {
	refs := make([]Ref, len(paths))
	for i, p := range paths {
		refs[i] = Ref{Path: p}
	}
	return AttachRefs(ctx, refs)
}

// AttachRefs validates and federates the given sources. On any failure
// every handle acquired so far is released before the error is
// returned, including failures during federation itself.
func AttachRefs(ctx context.Context, refs []Ref) (f *Federation, err error) {
	registerDriver()

	sources, err := resolveSources(refs)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open federation connection: %w", err)
	}
	// ATTACH and TEMP views are connection-local, so the pool must stay
	// a single connection for the life of the handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	if err = db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if _, err = db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	cache, err := lru.New[string, *wof.Geometry](geometryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("build geometry cache: %w", err)
	}

	f = &Federation{
		db:        db,
		compiler:  nil, // set after capabilities are known
		geomCache: cache,
	}

	for i := range sources {
		if err = f.attachSource(ctx, &sources[i]); err != nil {
			return nil, err
		}
	}
	f.sources = sources

	// Schema compatibility: the first source defines the reference
	// shape; later sources must match it exactly.
	for i := 1; i < len(sources); i++ {
		if sources[i].Fingerprint != sources[0].Fingerprint {
			return nil, &wof.SchemaIncompatibleError{
				Path: sources[i].Path,
				Detail: fmt.Sprintf("place table shape %q does not match reference %q from %s",
					sources[i].Fingerprint, sources[0].Fingerprint, sources[0].Path),
			}
		}
	}

	f.caps = capabilitiesOf(sources)
	f.compiler = querysql.NewCompiler(f.caps)

	if err = f.createViews(ctx); err != nil {
		return nil, err
	}

	// Sources are attached mode=ro; query_only additionally pins the
	// whole connection read-only once the temp views exist.
	if _, err = f.db.ExecContext(ctx, "PRAGMA query_only = 1"); err != nil {
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err = f.warnOnConflicts(ctx); err != nil {
		return nil, err
	}

	f.connected.Store(true)
	slog.Info("federation attached",
		"sources", len(sources),
		"has_names", f.caps.HasNames,
		"has_ancestors", f.caps.HasAncestors)
	return f, nil
}

// attachSource attaches one database read-only and records its shape.
func (f *Federation) attachSource(ctx context.Context, src *DataSource) error {
	uri := fmt.Sprintf("file:%s?mode=ro&immutable=0", src.Path)
	// Aliases are quoted everywhere they are interpolated, so an alias
	// that happens to be an SQL keyword still attaches.
	stmt := fmt.Sprintf("ATTACH DATABASE ? AS %q", src.Alias)
	if _, err := f.db.ExecContext(ctx, stmt, uri); err != nil {
		return fmt.Errorf("attach %s: %w", src.Path, err)
	}

	fp, err := f.fingerprint(ctx, src.Alias)
	if err != nil {
		return err
	}
	if fp == "" {
		return &wof.SchemaIncompatibleError{Path: src.Path, Detail: "no spr place table"}
	}
	cols := fingerprintColumns(fp)
	for _, col := range requiredColumns {
		if !cols[col] {
			return &wof.SchemaIncompatibleError{
				Path:   src.Path,
				Detail: fmt.Sprintf("place table missing required column %q", col),
			}
		}
	}
	src.Fingerprint = fp

	for _, table := range optionalTables {
		ok, err := f.hasTable(ctx, src.Alias, table)
		if err != nil {
			return err
		}
		src.Tables[table] = ok
	}

	slog.Debug("source attached", "alias", src.Alias, "path", src.Path)
	return nil
}

// fingerprint renders the spr table shape as "name:TYPE" pairs in
// declaration order.
func (f *Federation) fingerprint(ctx context.Context, alias string) (string, error) {
	rows, err := f.db.QueryContext(ctx, fmt.Sprintf("PRAGMA %q.table_info(spr)", alias))
	if err != nil {
		return "", fmt.Errorf("inspect %s.spr: %w", alias, err)
	}
	defer rows.Close()

	var parts []string
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notnull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return "", fmt.Errorf("scan table_info: %w", err)
		}
		parts = append(parts, fmt.Sprintf("%s:%s", strings.ToLower(name), strings.ToUpper(ctype)))
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate table_info: %w", err)
	}
	return strings.Join(parts, ","), nil
}

// fingerprintColumns parses a fingerprint back into its column-name
// set. Exact membership, so "parent_id" never satisfies "id".
func fingerprintColumns(fp string) map[string]bool {
	cols := make(map[string]bool)
	for _, part := range strings.Split(fp, ",") {
		if name, _, ok := strings.Cut(part, ":"); ok {
			cols[name] = true
		}
	}
	return cols
}

func (f *Federation) hasTable(ctx context.Context, alias, table string) (bool, error) {
	var n int
	err := f.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %q.sqlite_master WHERE type = 'table' AND name = ?", alias),
		table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspect %s tables: %w", alias, err)
	}
	return n > 0, nil
}

// capabilitiesOf derives what the compiled SQL may lean on. Names and
// ancestors require every source to provide the table: a partial union
// would silently drop matches for the sources lacking it. Geometry is
// present if any source carries it, since absent geometry is a valid
// row state.
func capabilitiesOf(sources []DataSource) querysql.Capabilities {
	caps := querysql.Capabilities{HasNames: true, HasAncestors: true}
	for _, src := range sources {
		caps.HasNames = caps.HasNames && src.Tables["names"]
		caps.HasAncestors = caps.HasAncestors && src.Tables["ancestors"]
		caps.HasGeometry = caps.HasGeometry || src.Tables["geojson"]
	}
	return caps
}

// createViews builds the TEMP UNION ALL views that present all sources
// as one table each. Each branch carries the source alias and its
// attach rank so ordering and conflict resolution are deterministic.
func (f *Federation) createViews(ctx context.Context) error {
	type viewDef struct {
		name    string
		table   string
		columns string
		needed  func(DataSource) bool
	}
	defs := []viewDef{
		{querysql.ViewPlaces, "spr", "*", func(DataSource) bool { return true }},
		{querysql.ViewNames, "names", "*", func(s DataSource) bool { return s.Tables["names"] }},
		{querysql.ViewAncestors, "ancestors", "*", func(s DataSource) bool { return s.Tables["ancestors"] }},
		{querysql.ViewGeometry, "geojson", "*", func(s DataSource) bool { return s.Tables["geojson"] }},
	}

	for _, def := range defs {
		var branches []string
		for i, src := range f.sources {
			if !def.needed(src) {
				continue
			}
			branches = append(branches, fmt.Sprintf("SELECT '%s' AS src, %d AS src_order, %s FROM %q.%s",
				src.Alias, i, def.columns, src.Alias, def.table))
		}
		if len(branches) == 0 {
			// Compiled SQL never references a view whose capability is
			// off, so absent tables simply get no view.
			continue
		}
		stmt := fmt.Sprintf("CREATE TEMP VIEW %s AS %s", def.name, strings.Join(branches, " UNION ALL "))
		if _, err := f.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create view %s: %w", def.name, err)
		}
	}
	return nil
}

// warnOnConflicts surfaces cross-source id collisions. The engine keeps
// both rows in the unified view; single-record lookups resolve to the
// first-attached source deterministically.
func (f *Federation) warnOnConflicts(ctx context.Context) error {
	if len(f.sources) < 2 {
		return nil
	}
	rows, err := f.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT id, GROUP_CONCAT(src, ',') FROM %s GROUP BY id HAVING COUNT(DISTINCT src) > 1",
		querysql.ViewPlaces))
	if err != nil {
		return fmt.Errorf("scan for id conflicts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var aliases string
		if err := rows.Scan(&id, &aliases); err != nil {
			return fmt.Errorf("scan conflict row: %w", err)
		}
		slog.Warn("place id defined by multiple sources; first-attached source wins for lookups",
			"id", id, "sources", aliases)
	}
	return rows.Err()
}

// Sources returns the attached sources in attach order.
func (f *Federation) Sources() []DataSource {
	out := make([]DataSource, len(f.sources))
	copy(out, f.sources)
	return out
}

// Capabilities reports which optional tables all sources share.
func (f *Federation) Capabilities() querysql.Capabilities { return f.caps }

// QueriesExecuted returns the number of SQL statements this handle has
// run, counting from attach completion.
func (f *Federation) QueriesExecuted() int64 { return f.queries.Load() }

// Close detaches every source and releases the connection. Safe to
// call more than once; all operations after Close fail with
// ErrNotConnected.
func (f *Federation) Close() error {
	f.connected.Store(false)
	if f.db == nil {
		return nil
	}
	err := f.db.Close()
	f.db = nil
	if err != nil {
		return fmt.Errorf("close federation: %w", err)
	}
	slog.Info("federation detached", "sources", len(f.sources))
	return nil
}

// ensureConnected guards every operation entry point.
func (f *Federation) ensureConnected() error {
	if !f.connected.Load() {
		return wof.ErrNotConnected
	}
	return nil
}
