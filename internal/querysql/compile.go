package querysql

import (
	"fmt"
	"strings"

	"github.com/geoplaces/gazetteer/internal/wof"
)

// Unified view names created by the federation layer. Each view unions
// the same-named table across every attached source and carries a
// leading src column with the source alias.
const (
	ViewPlaces    = "spr_all"
	ViewNames     = "names_all"
	ViewAncestors = "ancestors_all"
	ViewGeometry  = "geojson_all"
)

// lightweightColumns is the fixed projection for row queries. Geometry
// is never part of it; the detail fetch is a separate query.
const lightweightColumns = "src, id, parent_id, name, placetype, country, region, county, locality, neighbourhood, " +
	"latitude, longitude, min_longitude, min_latitude, max_longitude, max_latitude, " +
	"is_current, is_deprecated, is_ceased, is_superseded, is_superseding, superseded_by, supersedes, " +
	"population, area, source, lastmodified"

// Capabilities describes which optional tables the attached sources
// provide. Predicates that need a missing table are either rewritten
// (name search falls back to the primary name column) or deferred to an
// in-memory walk (ancestor containment without a closure relation).
type Capabilities struct {
	HasNames     bool
	HasAncestors bool
	HasGeometry  bool
}

// AncestorWalk describes an ancestor predicate the SQL could not
// express because no closure relation exists. The executor resolves it
// with a bounded parent-pointer walk over the candidate rows.
type AncestorWalk struct {
	IDs   []int64
	Names []string
}

// CompiledQuery is an executable query pair: the row query and the
// aggregate count query over the same predicate set.
type CompiledQuery struct {
	SQL       string
	Args      []any
	CountSQL  string
	CountArgs []any

	// Walk is non-nil when ancestor containment must be applied by the
	// executor after the row fetch.
	Walk *AncestorWalk
}

// Compiler turns validated filter specs into SQL for one federation's
// capability set.
type Compiler struct {
	Caps Capabilities
}

// NewCompiler creates a Compiler for the given source capabilities.
func NewCompiler(caps Capabilities) *Compiler {
	return &Compiler{Caps: caps}
}

// Compile converts a filter spec into a parameterized query. The spec
// must already be validated; Compile revalidates as a guard so a
// malformed spec can never reach execution.
func (c *Compiler) Compile(spec wof.FilterSpec) (CompiledQuery, error) {
	if err := spec.Validate(); err != nil {
		return CompiledQuery{}, err
	}

	w := newWhereBuilder()

	c.compileName(w, spec)
	c.compilePlacetypes(w, spec)
	c.compileLocationFields(w, spec)
	c.compileContainment(w, spec)
	c.compileStatus(w, spec)
	c.compileSpatial(w, spec)

	if spec.RequireGeometry {
		if c.Caps.HasGeometry {
			w.add(fmt.Sprintf("EXISTS (SELECT 1 FROM %s g WHERE g.id = %s.id AND g.src = %s.src)",
				ViewGeometry, ViewPlaces, ViewPlaces))
		} else {
			// No source stores geometry, so the requirement can never
			// be satisfied.
			w.add("1 = 0")
		}
	}

	where := w.clause()

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", ViewPlaces, where)

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		lightweightColumns, ViewPlaces, where, orderClause(spec))

	// An executor-side ancestor walk filters rows after the fetch, so
	// SQL-level shaping would truncate its candidate set. The executor
	// reapplies offset and limit once the walk has run.
	needWalk := !c.Caps.HasAncestors && (len(spec.AncestorIDs) > 0 || len(spec.AncestorNames) > 0)

	args := w.args
	if !needWalk {
		if spec.Limit > 0 {
			sql += " LIMIT ?"
			args = append(args, spec.Limit)
			if spec.Offset > 0 {
				sql += " OFFSET ?"
				args = append(args, spec.Offset)
			}
		} else if spec.Offset > 0 {
			// SQLite requires a LIMIT before OFFSET; -1 means unlimited.
			sql += " LIMIT -1 OFFSET ?"
			args = append(args, spec.Offset)
		}
	}

	q := CompiledQuery{
		SQL:       sql,
		Args:      args,
		CountSQL:  countSQL,
		CountArgs: append([]any(nil), w.args[:w.countArgLen]...),
	}
	if needWalk {
		q.Walk = &AncestorWalk{IDs: spec.AncestorIDs, Names: spec.AncestorNames}
	}

	return q, nil
}

// CompileByIDs builds the batch lookup query for an explicit id list,
// using the same deterministic ordering as search queries.
func (c *Compiler) CompileByIDs(ids []int64) CompiledQuery {
	if len(ids) == 0 {
		return CompiledQuery{
			SQL:      fmt.Sprintf("SELECT %s FROM %s WHERE 1 = 0", lightweightColumns, ViewPlaces),
			CountSQL: fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE 1 = 0", ViewPlaces),
		}
	}
	where := fmt.Sprintf(" WHERE id IN (%s)", placeholders(len(ids)))
	args := int64Args(ids)
	return CompiledQuery{
		SQL:       fmt.Sprintf("SELECT %s FROM %s%s ORDER BY id ASC, src_order ASC", lightweightColumns, ViewPlaces, where),
		Args:      args,
		CountSQL:  fmt.Sprintf("SELECT COUNT(*) FROM %s%s", ViewPlaces, where),
		CountArgs: int64Args(ids),
	}
}

// CompileGeometry builds the detail query fetching geometry payloads
// for a batch of ids in one round trip.
func (c *Compiler) CompileGeometry(ids []int64) (string, []any) {
	if len(ids) == 0 {
		return fmt.Sprintf("SELECT src, id, body FROM %s WHERE 1 = 0", ViewGeometry), nil
	}
	sql := fmt.Sprintf("SELECT src, id, body FROM %s WHERE id IN (%s) ORDER BY id ASC, src_order ASC",
		ViewGeometry, placeholders(len(ids)))
	return sql, int64Args(ids)
}

// compileName adds the name predicate: case-insensitive, substring by
// default, exact on request, joined against the alternate-name view
// when a language qualifier is present.
func (c *Compiler) compileName(w *whereBuilder, spec wof.FilterSpec) {
	if spec.Name == "" {
		return
	}

	folded := wof.FoldName(spec.Name)
	op, val := `LIKE ? ESCAPE '\'`, "%"+escapeLike(folded)+"%"
	if spec.NameExact {
		op, val = "= ?", folded
	}

	if spec.NameLanguage != "" && c.Caps.HasNames {
		sub := fmt.Sprintf("%s.id IN (SELECT n.id FROM %s n WHERE n.language = ? AND lower(n.name) %s",
			ViewPlaces, ViewNames, op)
		args := []any{spec.NameLanguage, val}
		if spec.NameKind != "" && spec.NameKind != wof.NameAny {
			sub += " AND n.kind = ?"
			args = append(args, string(spec.NameKind))
		}
		sub += ")"
		w.addArgs(sub, args...)
		return
	}

	// Unqualified request: primary name column only.
	w.addArgs(fmt.Sprintf("lower(name) %s", op), val)
}

func (c *Compiler) compilePlacetypes(w *whereBuilder, spec wof.FilterSpec) {
	if len(spec.Placetypes) > 0 {
		w.addArgs(fmt.Sprintf("placetype IN (%s)", placeholders(len(spec.Placetypes))),
			placetypeArgs(spec.Placetypes)...)
	}
	if len(spec.ExcludePlacetypes) > 0 {
		w.addArgs(fmt.Sprintf("placetype NOT IN (%s)", placeholders(len(spec.ExcludePlacetypes))),
			placetypeArgs(spec.ExcludePlacetypes)...)
	}
}

func (c *Compiler) compileLocationFields(w *whereBuilder, spec wof.FilterSpec) {
	addIn := func(col string, vals []string) {
		if len(vals) == 0 {
			return
		}
		args := make([]any, len(vals))
		for i, v := range vals {
			args[i] = v
		}
		w.addArgs(fmt.Sprintf("%s IN (%s)", col, placeholders(len(vals))), args...)
	}
	addIn("country", spec.Countries)
	addIn("region", spec.Regions)
	// Sources filter on the federation alias, not the provenance
	// column inside the row.
	addIn("src", spec.Sources)
}

// compileContainment handles the two hierarchy modes: immediate parent
// (direct parent_id comparison, or a parent-name subquery) and any
// ancestor (closure-relation membership when available).
func (c *Compiler) compileContainment(w *whereBuilder, spec wof.FilterSpec) {
	if len(spec.ParentIDs) > 0 {
		w.addArgs(fmt.Sprintf("parent_id IN (%s)", placeholders(len(spec.ParentIDs))),
			int64Args(spec.ParentIDs)...)
	}
	if len(spec.ParentNames) > 0 {
		args := make([]any, len(spec.ParentNames))
		for i, n := range spec.ParentNames {
			args[i] = wof.FoldName(n)
		}
		w.addArgs(fmt.Sprintf("parent_id IN (SELECT id FROM %s WHERE lower(name) IN (%s))",
			ViewPlaces, placeholders(len(spec.ParentNames))), args...)
	}

	// Without a closure relation these predicates become an executor
	// walk; see Compile.
	if !c.Caps.HasAncestors {
		return
	}

	if len(spec.AncestorIDs) > 0 {
		w.addArgs(fmt.Sprintf("%s.id IN (SELECT a.id FROM %s a WHERE a.ancestor_id IN (%s))",
			ViewPlaces, ViewAncestors, placeholders(len(spec.AncestorIDs))),
			int64Args(spec.AncestorIDs)...)
	}
	if len(spec.AncestorNames) > 0 {
		args := make([]any, len(spec.AncestorNames))
		for i, n := range spec.AncestorNames {
			args[i] = wof.FoldName(n)
		}
		w.addArgs(fmt.Sprintf(
			"%s.id IN (SELECT a.id FROM %s a JOIN %s p ON a.ancestor_id = p.id WHERE lower(p.name) IN (%s))",
			ViewPlaces, ViewAncestors, ViewPlaces, placeholders(len(spec.AncestorNames))), args...)
	}
}

func (c *Compiler) compileStatus(w *whereBuilder, spec wof.FilterSpec) {
	flag := func(col string, v *bool) {
		if v == nil {
			return
		}
		if *v {
			w.add(col + " = 1")
		} else {
			w.add(col + " != 1")
		}
	}
	flag("is_current", spec.IsCurrent)
	flag("is_deprecated", spec.IsDeprecated)
	flag("is_ceased", spec.IsCeased)
	flag("is_superseded", spec.IsSuperseded)
	flag("is_superseding", spec.IsSuperseding)
}

// compileSpatial adds bbox-overlap and great-circle proximity
// predicates. Proximity relies on the haversine_km SQL function the
// federation registers on every connection.
func (c *Compiler) compileSpatial(w *whereBuilder, spec wof.FilterSpec) {
	if spec.BBox != nil {
		b := spec.BBox
		w.addArgs("max_longitude >= ? AND min_longitude <= ? AND max_latitude >= ? AND min_latitude <= ?",
			b.MinLon, b.MaxLon, b.MinLat, b.MaxLat)
	}
	if spec.Near != nil {
		w.addArgs("haversine_km(latitude, longitude, ?, ?) <= ?",
			spec.Near.Lat, spec.Near.Lon, spec.RadiusKm)
	}
}

// orderClause builds the deterministic ORDER BY: explicit sort field
// first when given, then id ascending, then source attach order so
// cross-source id collisions tie-break the same way every time.
func orderClause(spec wof.FilterSpec) string {
	if spec.SortBy == "" || spec.SortBy == "id" {
		return "id ASC, src_order ASC"
	}
	dir := "ASC"
	if spec.Order == wof.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s COLLATE BINARY %s, id ASC, src_order ASC", spec.SortBy, dir)
}

// whereBuilder accumulates AND-joined predicate fragments and their
// bound arguments. countArgLen tracks how many args belong to the
// predicate set itself (shared with the count query) as opposed to
// limit/offset shaping.
type whereBuilder struct {
	parts       []string
	args        []any
	countArgLen int
}

func newWhereBuilder() *whereBuilder {
	return &whereBuilder{}
}

func (w *whereBuilder) add(sql string) {
	w.parts = append(w.parts, sql)
}

func (w *whereBuilder) addArgs(sql string, args ...any) {
	w.parts = append(w.parts, sql)
	w.args = append(w.args, args...)
	w.countArgLen = len(w.args)
}

func (w *whereBuilder) clause() string {
	if len(w.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.parts, " AND ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func placetypeArgs(pts []wof.PlaceType) []any {
	args := make([]any, len(pts))
	for i, pt := range pts {
		args[i] = string(pt)
	}
	return args
}

// escapeLike neutralizes LIKE wildcards inside a user-supplied
// substring so they match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
