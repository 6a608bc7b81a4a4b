package wof

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NameKind selects which alternate-name rows a localized name match
// joins against.
type NameKind string

const (
	NamePreferred  NameKind = "preferred"
	NameColloquial NameKind = "colloquial"
	NameVariant    NameKind = "variant"
	NameAny        NameKind = "any"
)

// SortOrder is the direction of an explicit sort field.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FilterSpec enumerates optional search predicates. A zero field means
// "no constraint on that dimension". Multiple values within one field
// compose with OR; distinct fields compose with AND.
//
// FilterSpec is a value object: build it once, validate, and pass it
// around by value. Cursors retain the exact spec that produced them.
type FilterSpec struct {
	// Name matching. NameExact switches substring containment to an
	// exact (case-insensitive) comparison. NameLanguage joins against
	// the alternate-name table; empty means primary-name match only.
	Name         string
	NameExact    bool
	NameLanguage string
	NameKind     NameKind

	// Placetype inclusion and exclusion.
	Placetypes        []PlaceType
	ExcludePlacetypes []PlaceType

	// One-or-many equality filters. Countries and Regions match
	// denormalized columns; Sources matches attached source aliases.
	Countries []string
	Regions   []string
	Sources   []string

	// Immediate-parent containment, by id or by name.
	ParentIDs   []int64
	ParentNames []string

	// Any-ancestor containment, by id or by name.
	AncestorIDs   []int64
	AncestorNames []string

	// Lifecycle flags. Nil means no constraint.
	IsCurrent     *bool
	IsDeprecated  *bool
	IsCeased      *bool
	IsSuperseded  *bool
	IsSuperseding *bool

	// Spatial constraints.
	BBox     *Bounds
	Near     *Centroid
	RadiusKm float64

	// RequireGeometry restricts results to rows with a stored geometry
	// payload.
	RequireGeometry bool

	// Result shaping. Limit 0 means unlimited.
	Limit  int
	Offset int
	SortBy string
	Order  SortOrder
}

// sortableFields are the columns an explicit SortBy may name.
var sortableFields = map[string]bool{
	"id":           true,
	"name":         true,
	"placetype":    true,
	"country":      true,
	"lastmodified": true,
}

// Validate checks the spec for structural errors. It runs before any
// query executes; a non-nil return means no query will be issued.
func (f FilterSpec) Validate() error {
	for _, pt := range f.Placetypes {
		if pt.Level() < 0 {
			return &InvalidFilterError{Field: "placetype", Reason: fmt.Sprintf("unknown placetype %q", pt)}
		}
	}
	for _, pt := range f.ExcludePlacetypes {
		if pt.Level() < 0 {
			return &InvalidFilterError{Field: "exclude_placetype", Reason: fmt.Sprintf("unknown placetype %q", pt)}
		}
	}

	if f.BBox != nil && !f.BBox.Valid() {
		return &InvalidFilterError{
			Field:  "bbox",
			Reason: fmt.Sprintf("malformed box [%g %g %g %g]: min must not exceed max and values must be in range", f.BBox.MinLon, f.BBox.MinLat, f.BBox.MaxLon, f.BBox.MaxLat),
		}
	}

	if f.Near != nil {
		if f.RadiusKm <= 0 {
			return &InvalidFilterError{Field: "radius_km", Reason: "proximity search requires a positive radius"}
		}
		if f.Near.Lat < -90 || f.Near.Lat > 90 || f.Near.Lon < -180 || f.Near.Lon > 180 {
			return &InvalidFilterError{Field: "near", Reason: "center point out of range"}
		}
	} else if f.RadiusKm != 0 {
		return &InvalidFilterError{Field: "radius_km", Reason: "radius given without a center point"}
	}

	switch f.NameKind {
	case "", NamePreferred, NameColloquial, NameVariant, NameAny:
	default:
		return &InvalidFilterError{Field: "name_kind", Reason: fmt.Sprintf("unknown name kind %q", f.NameKind)}
	}

	if f.Limit < 0 {
		return &InvalidFilterError{Field: "limit", Reason: "must be positive"}
	}
	if f.Offset < 0 {
		return &InvalidFilterError{Field: "offset", Reason: "must not be negative"}
	}

	if f.SortBy != "" && !sortableFields[f.SortBy] {
		return &InvalidFilterError{Field: "sort_by", Reason: fmt.Sprintf("cannot sort by %q", f.SortBy)}
	}
	switch f.Order {
	case "", SortAsc, SortDesc:
	default:
		return &InvalidFilterError{Field: "order", Reason: fmt.Sprintf("unknown sort order %q", f.Order)}
	}

	return nil
}

// IsEmpty reports whether the spec constrains nothing beyond result
// shaping.
func (f FilterSpec) IsEmpty() bool {
	return f.Name == "" &&
		len(f.Placetypes) == 0 && len(f.ExcludePlacetypes) == 0 &&
		len(f.Countries) == 0 && len(f.Regions) == 0 && len(f.Sources) == 0 &&
		len(f.ParentIDs) == 0 && len(f.ParentNames) == 0 &&
		len(f.AncestorIDs) == 0 && len(f.AncestorNames) == 0 &&
		f.IsCurrent == nil && f.IsDeprecated == nil && f.IsCeased == nil &&
		f.IsSuperseded == nil && f.IsSuperseding == nil &&
		f.BBox == nil && f.Near == nil && !f.RequireGeometry
}

// HasSpatialFilter reports whether the spec constrains location by box,
// proximity, or containment.
func (f FilterSpec) HasSpatialFilter() bool {
	return f.BBox != nil || f.Near != nil ||
		len(f.ParentIDs) > 0 || len(f.AncestorIDs) > 0
}

// HasStatusFilter reports whether any lifecycle flag is constrained.
func (f FilterSpec) HasStatusFilter() bool {
	return f.IsCurrent != nil || f.IsDeprecated != nil || f.IsCeased != nil ||
		f.IsSuperseded != nil || f.IsSuperseding != nil
}

// FoldName normalizes a name for case-insensitive comparison: NFC
// normalization then lowercasing. Both sides of every name match go
// through this.
func FoldName(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}
