package export

import (
	"encoding/json"
	"fmt"

	"github.com/geoplaces/gazetteer/internal/wof"
)

// defaultProperties is the property set emitted when Options.Properties
// is empty. Order here is documentation only; JSON objects carry no
// order.
var defaultProperties = []string{
	"name", "placetype", "parent_id", "country", "region",
	"is_current", "source", "lastmodified",
}

// Feature is one GeoJSON feature. Geometry is null for records without
// stored geometry.
type Feature struct {
	Type       string         `json:"type"`
	ID         int64          `json:"id"`
	Properties map[string]any `json:"properties"`
	Geometry   *wof.Geometry  `json:"geometry"`
	BBox       []float64      `json:"bbox,omitempty"`
}

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type geoJSONSerializer struct{}

func (geoJSONSerializer) Format() Format { return FormatGeoJSON }

func (s geoJSONSerializer) Serialize(places []wof.PlaceWithGeometry, opts Options) ([]byte, error) {
	fc, err := NewFeatureCollection(places, opts)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode feature collection: %w", err)
	}
	return append(data, '\n'), nil
}

// NewFeatureCollection builds the structured form of the GeoJSON
// output, for callers that post-process features rather than writing
// bytes.
func NewFeatureCollection(places []wof.PlaceWithGeometry, opts Options) (FeatureCollection, error) {
	props := opts.Properties
	if len(props) == 0 {
		props = defaultProperties
	}

	fc := FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
	for _, p := range places {
		if p.Geometry == nil && opts.RequireGeometry {
			continue
		}
		f := Feature{
			Type:       "Feature",
			ID:         p.ID,
			Properties: make(map[string]any, len(props)),
			Geometry:   p.Geometry,
		}
		for _, name := range props {
			v, err := propertyValue(p.Place, name)
			if err != nil {
				return FeatureCollection{}, err
			}
			f.Properties[name] = v
		}
		if p.BBox != nil {
			f.BBox = []float64{p.BBox.MinLon, p.BBox.MinLat, p.BBox.MaxLon, p.BBox.MaxLat}
		}
		fc.Features = append(fc.Features, f)
	}
	return fc, nil
}

func propertyValue(p wof.Place, name string) (any, error) {
	switch name {
	case "name":
		return p.Name, nil
	case "placetype":
		return string(p.Placetype), nil
	case "parent_id":
		if p.ParentID == nil {
			return nil, nil
		}
		return *p.ParentID, nil
	case "country":
		return p.Country, nil
	case "region":
		return p.Region, nil
	case "county":
		return p.County, nil
	case "locality":
		return p.Locality, nil
	case "neighbourhood":
		return p.Neighbourhood, nil
	case "is_current":
		return p.IsCurrent, nil
	case "is_deprecated":
		return p.IsDeprecated, nil
	case "is_ceased":
		return p.IsCeased, nil
	case "is_superseded":
		return p.IsSuperseded, nil
	case "is_superseding":
		return p.IsSuperseding, nil
	case "superseded_by":
		return p.SupersededBy, nil
	case "supersedes":
		return p.Supersedes, nil
	case "population":
		return p.Population, nil
	case "area":
		return p.Area, nil
	case "status":
		return string(p.Status()), nil
	case "source":
		return p.Source, nil
	case "lastmodified":
		return p.LastModified, nil
	default:
		return nil, &wof.InvalidArgumentError{
			Argument: "properties",
			Reason:   fmt.Sprintf("unknown property %q", name),
		}
	}
}
