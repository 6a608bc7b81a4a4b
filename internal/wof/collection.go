package wof

import (
	"sort"
	"strings"
)

// CollectionMeta records how a collection was produced.
type CollectionMeta struct {
	Spec       FilterSpec `json:"-"`
	TotalCount int        `json:"total_count"`
	CursorID   string     `json:"cursor_id,omitempty"`
	Sources    []string   `json:"sources,omitempty"`
}

// PlaceCollection is a terminal, immutable grouping of place records
// plus the filter metadata that produced them. It is the unit the
// export package consumes. Mutating operations return new collections.
type PlaceCollection struct {
	places []PlaceWithGeometry
	meta   CollectionMeta
}

// NewPlaceCollection copies places into a fresh collection. The input
// slice is not retained.
func NewPlaceCollection(places []PlaceWithGeometry, meta CollectionMeta) *PlaceCollection {
	cp := make([]PlaceWithGeometry, len(places))
	copy(cp, places)
	return &PlaceCollection{places: cp, meta: meta}
}

// Len returns the number of places in the collection.
func (c *PlaceCollection) Len() int { return len(c.places) }

// Places returns a copy of the record slice.
func (c *PlaceCollection) Places() []PlaceWithGeometry {
	out := make([]PlaceWithGeometry, len(c.places))
	copy(out, c.places)
	return out
}

// At returns the record at index i. Callers must bounds-check with Len.
func (c *PlaceCollection) At(i int) PlaceWithGeometry { return c.places[i] }

// Meta returns the collection's provenance metadata.
func (c *PlaceCollection) Meta() CollectionMeta { return c.meta }

// Filter returns a new collection holding the records the predicate
// keeps. Metadata is preserved.
func (c *PlaceCollection) Filter(keep func(PlaceWithGeometry) bool) *PlaceCollection {
	var out []PlaceWithGeometry
	for _, p := range c.places {
		if keep(p) {
			out = append(out, p)
		}
	}
	return &PlaceCollection{places: out, meta: c.meta}
}

// Find returns the records whose name contains the query,
// case-insensitively. An exact match is tried first; if any exact
// matches exist only those are returned.
func (c *PlaceCollection) Find(name string) []PlaceWithGeometry {
	folded := FoldName(name)
	var exact, partial []PlaceWithGeometry
	for _, p := range c.places {
		pn := FoldName(p.Name)
		switch {
		case pn == folded:
			exact = append(exact, p)
		case strings.Contains(pn, folded):
			partial = append(partial, p)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return partial
}

// GroupByPlacetype splits the collection into one collection per
// placetype, each inheriting the metadata.
func (c *PlaceCollection) GroupByPlacetype() map[PlaceType]*PlaceCollection {
	groups := make(map[PlaceType][]PlaceWithGeometry)
	for _, p := range c.places {
		groups[p.Placetype] = append(groups[p.Placetype], p)
	}
	out := make(map[PlaceType]*PlaceCollection, len(groups))
	for pt, places := range groups {
		out[pt] = &PlaceCollection{places: places, meta: c.meta}
	}
	return out
}

// Summary aggregates counts per placetype and per country, for display.
type Summary struct {
	Total        int            `json:"total"`
	ByPlacetype  map[string]int `json:"by_placetype"`
	ByCountry    map[string]int `json:"by_country"`
	WithGeometry int            `json:"with_geometry"`
}

// Summarize computes collection statistics.
func (c *PlaceCollection) Summarize() Summary {
	s := Summary{
		Total:       len(c.places),
		ByPlacetype: make(map[string]int),
		ByCountry:   make(map[string]int),
	}
	for _, p := range c.places {
		s.ByPlacetype[string(p.Placetype)]++
		if p.Country != "" {
			s.ByCountry[p.Country]++
		}
		if p.Geometry != nil {
			s.WithGeometry++
		}
	}
	return s
}

// IDs returns the record ids in collection order.
func (c *PlaceCollection) IDs() []int64 {
	ids := make([]int64, len(c.places))
	for i, p := range c.places {
		ids[i] = p.ID
	}
	return ids
}

// SortedIDs returns the record ids in ascending order, for set-style
// comparisons in tests and dedup checks.
func (c *PlaceCollection) SortedIDs() []int64 {
	ids := c.IDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
