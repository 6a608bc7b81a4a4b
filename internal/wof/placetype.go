package wof

import (
	"fmt"
	"strings"
)

// PlaceType is a rung in the fixed geographic hierarchy, ordered from
// continent down to address.
type PlaceType string

const (
	TypeContinent     PlaceType = "continent"
	TypeEmpire        PlaceType = "empire"
	TypeCountry       PlaceType = "country"
	TypeDependency    PlaceType = "dependency"
	TypeMacroRegion   PlaceType = "macroregion"
	TypeRegion        PlaceType = "region"
	TypeMacroCounty   PlaceType = "macrocounty"
	TypeCounty        PlaceType = "county"
	TypeLocalAdmin    PlaceType = "localadmin"
	TypeLocality      PlaceType = "locality"
	TypeBorough       PlaceType = "borough"
	TypeMacroHood     PlaceType = "macrohood"
	TypeNeighbourhood PlaceType = "neighbourhood"
	TypeMicroHood     PlaceType = "microhood"
	TypeCampus        PlaceType = "campus"
	TypeBuilding      PlaceType = "building"
	TypeVenue         PlaceType = "venue"
	TypeAddress       PlaceType = "address"
)

// taxonomy lists every placetype in hierarchy order. The index of a type
// is its level: lower index means closer to the root.
var taxonomy = [...]PlaceType{
	TypeContinent,
	TypeEmpire,
	TypeCountry,
	TypeDependency,
	TypeMacroRegion,
	TypeRegion,
	TypeMacroCounty,
	TypeCounty,
	TypeLocalAdmin,
	TypeLocality,
	TypeBorough,
	TypeMacroHood,
	TypeNeighbourhood,
	TypeMicroHood,
	TypeCampus,
	TypeBuilding,
	TypeVenue,
	TypeAddress,
}

// levels maps each placetype to its taxonomy index.
var levels = func() map[PlaceType]int {
	m := make(map[PlaceType]int, len(taxonomy))
	for i, pt := range taxonomy {
		m[pt] = i
	}
	return m
}()

// spelling variants accepted on input and normalized to taxonomy values.
var placetypeAliases = map[string]PlaceType{
	"neighborhood": TypeNeighbourhood,
	"macro_region": TypeMacroRegion,
	"macro_county": TypeMacroCounty,
	"local_admin":  TypeLocalAdmin,
}

// TaxonomyDepth is the number of levels in the hierarchy. Ancestor walks
// are capped at this depth so cyclic parent data cannot loop forever.
const TaxonomyDepth = len(taxonomy)

// Taxonomy returns the full placetype hierarchy in root-first order.
func Taxonomy() []PlaceType {
	out := make([]PlaceType, len(taxonomy))
	copy(out, taxonomy[:])
	return out
}

// ParsePlaceType normalizes and validates a placetype string.
// Accepts common spelling variants ("neighborhood" -> "neighbourhood").
func ParsePlaceType(s string) (PlaceType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := placetypeAliases[key]; ok {
		return alias, nil
	}
	pt := PlaceType(key)
	if _, ok := levels[pt]; !ok {
		return "", &InvalidFilterError{
			Field:  "placetype",
			Reason: fmt.Sprintf("unknown placetype %q", s),
		}
	}
	return pt, nil
}

// Level returns the taxonomy index for a placetype, or -1 if unknown.
func (pt PlaceType) Level() int {
	lvl, ok := levels[pt]
	if !ok {
		return -1
	}
	return lvl
}

// Precedes reports whether pt sits strictly above other in the
// hierarchy, i.e. pt is a legal immediate parent level for other.
func (pt PlaceType) Precedes(other PlaceType) bool {
	a, b := pt.Level(), other.Level()
	return a >= 0 && b >= 0 && a < b
}

// IsTopLevel reports whether places of this type may have a null parent.
func (pt PlaceType) IsTopLevel() bool {
	return pt == TypeContinent || pt == TypeEmpire || pt == TypeCountry
}

func (pt PlaceType) String() string { return string(pt) }
