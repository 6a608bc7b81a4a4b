package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/geoplaces/gazetteer/internal/wof"
)

// filterFlags collects the search predicate flags shared by the search
// and export commands.
type filterFlags struct {
	name          string
	exact         bool
	language      string
	kind          string
	placetypes    []string
	exclude       []string
	countries     []string
	regions       []string
	sources       []string
	parentIDs     []int64
	parentNames   []string
	ancestorIDs   []int64
	ancestorNames []string
	current       string
	deprecated    string
	ceased        string
	superseded    string
	superseding   string
	bbox          string
	near          string
	radiusKm      float64
	withGeometry  bool
	limit         int
	offset        int
	sortBy        string
	order         string
}

func (ff *filterFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&ff.name, "name", "", "match by name (substring unless --exact)")
	fl.BoolVar(&ff.exact, "exact", false, "exact name match instead of substring")
	fl.StringVar(&ff.language, "language", "", "match alternate names in this language (e.g. eng)")
	fl.StringVar(&ff.kind, "name-kind", "", "alternate-name kind: preferred|colloquial|variant|any")
	fl.StringSliceVar(&ff.placetypes, "placetype", nil, "restrict to placetypes (repeatable)")
	fl.StringSliceVar(&ff.exclude, "exclude-placetype", nil, "exclude placetypes (repeatable)")
	fl.StringSliceVar(&ff.countries, "country", nil, "restrict to country codes")
	fl.StringSliceVar(&ff.regions, "region", nil, "restrict to region names")
	fl.StringSliceVar(&ff.sources, "source", nil, "restrict to attached source aliases")
	fl.Int64SliceVar(&ff.parentIDs, "parent-id", nil, "restrict to direct children of these ids")
	fl.StringSliceVar(&ff.parentNames, "parent-name", nil, "restrict to direct children of places with these names")
	fl.Int64SliceVar(&ff.ancestorIDs, "ancestor-id", nil, "restrict to descendants of these ids")
	fl.StringSliceVar(&ff.ancestorNames, "ancestor-name", nil, "restrict to descendants of places with these names")
	fl.StringVar(&ff.current, "current", "", "filter on is_current: true|false")
	fl.StringVar(&ff.deprecated, "deprecated", "", "filter on is_deprecated: true|false")
	fl.StringVar(&ff.ceased, "ceased", "", "filter on is_ceased: true|false")
	fl.StringVar(&ff.superseded, "superseded", "", "filter on is_superseded: true|false")
	fl.StringVar(&ff.superseding, "superseding", "", "filter on is_superseding: true|false")
	fl.StringVar(&ff.bbox, "bbox", "", "bounding box as minLon,minLat,maxLon,maxLat")
	fl.StringVar(&ff.near, "near", "", "proximity center as lon,lat (requires --radius-km)")
	fl.Float64Var(&ff.radiusKm, "radius-km", 0, "proximity radius in kilometres")
	fl.BoolVar(&ff.withGeometry, "require-geometry", false, "only places with stored geometry")
	fl.IntVar(&ff.limit, "limit", 0, "maximum results (0 = unlimited)")
	fl.IntVar(&ff.offset, "offset", 0, "results to skip")
	fl.StringVar(&ff.sortBy, "sort", "", "sort field: id|name|placetype|country|lastmodified")
	fl.StringVar(&ff.order, "order", "", "sort direction: asc|desc")
}

// spec converts the parsed flags into a filter spec. Validation beyond
// flag syntax is the spec's job, not this function's.
func (ff *filterFlags) spec() (wof.FilterSpec, error) {
	spec := wof.FilterSpec{
		Name:          ff.name,
		NameExact:     ff.exact,
		NameLanguage:  ff.language,
		NameKind:      wof.NameKind(ff.kind),
		Countries:     ff.countries,
		Regions:       ff.regions,
		Sources:       ff.sources,
		ParentIDs:     ff.parentIDs,
		ParentNames:   ff.parentNames,
		AncestorIDs:   ff.ancestorIDs,
		AncestorNames: ff.ancestorNames,
		RadiusKm:      ff.radiusKm,
		Limit:         ff.limit,
		Offset:        ff.offset,
		SortBy:        ff.sortBy,
		Order:         wof.SortOrder(ff.order),

		RequireGeometry: ff.withGeometry,
	}

	for _, raw := range ff.placetypes {
		pt, err := wof.ParsePlaceType(raw)
		if err != nil {
			return wof.FilterSpec{}, err
		}
		spec.Placetypes = append(spec.Placetypes, pt)
	}
	for _, raw := range ff.exclude {
		pt, err := wof.ParsePlaceType(raw)
		if err != nil {
			return wof.FilterSpec{}, err
		}
		spec.ExcludePlacetypes = append(spec.ExcludePlacetypes, pt)
	}

	var err error
	if spec.IsCurrent, err = parseTriState("current", ff.current); err != nil {
		return wof.FilterSpec{}, err
	}
	if spec.IsDeprecated, err = parseTriState("deprecated", ff.deprecated); err != nil {
		return wof.FilterSpec{}, err
	}
	if spec.IsCeased, err = parseTriState("ceased", ff.ceased); err != nil {
		return wof.FilterSpec{}, err
	}
	if spec.IsSuperseded, err = parseTriState("superseded", ff.superseded); err != nil {
		return wof.FilterSpec{}, err
	}
	if spec.IsSuperseding, err = parseTriState("superseding", ff.superseding); err != nil {
		return wof.FilterSpec{}, err
	}

	if ff.bbox != "" {
		vals, err := parseFloats("bbox", ff.bbox, 4)
		if err != nil {
			return wof.FilterSpec{}, err
		}
		spec.BBox = &wof.Bounds{MinLon: vals[0], MinLat: vals[1], MaxLon: vals[2], MaxLat: vals[3]}
	}
	if ff.near != "" {
		vals, err := parseFloats("near", ff.near, 2)
		if err != nil {
			return wof.FilterSpec{}, err
		}
		spec.Near = &wof.Centroid{Lon: vals[0], Lat: vals[1]}
	}

	return spec, nil
}

func parseTriState(flag, raw string) (*bool, error) {
	switch raw {
	case "":
		return nil, nil
	case "true":
		v := true
		return &v, nil
	case "false":
		v := false
		return &v, nil
	default:
		return nil, fmt.Errorf("--%s: want true or false, got %q", flag, raw)
	}
}

func parseFloats(flag, raw string, want int) ([]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("--%s: want %d comma-separated values, got %d", flag, want, len(parts))
	}
	out := make([]float64, want)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("--%s: %q is not a number", flag, p)
		}
		out[i] = v
	}
	return out, nil
}
