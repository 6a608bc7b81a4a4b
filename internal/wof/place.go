package wof

// Status is the single authoritative lifecycle state of a place,
// derived from the stored flags.
type Status string

const (
	StatusCurrent     Status = "current"
	StatusDeprecated  Status = "deprecated"
	StatusCeased      Status = "ceased"
	StatusSuperseded  Status = "superseded"
	StatusSuperseding Status = "superseding"
	StatusUnknown     Status = "unknown"
)

// Place is a lightweight place record without geometry. Records are
// immutable once constructed; the engine never mutates a Place after
// the transform layer builds it.
type Place struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Placetype PlaceType `json:"placetype"`

	// ParentID is nil only for top-level placetypes.
	ParentID *int64 `json:"parent_id,omitempty"`

	// Alias names the federation source the row came from. IDs are only
	// unique per source, so (Alias, ID) is the full identity.
	Alias string `json:"alias,omitempty"`

	// Lifecycle flags as stored. is_current uses -1 for "unknown".
	IsCurrent     int64 `json:"is_current"`
	IsDeprecated  bool  `json:"is_deprecated"`
	IsCeased      bool  `json:"is_ceased"`
	IsSuperseded  bool  `json:"is_superseded"`
	IsSuperseding bool  `json:"is_superseding"`

	SupersededBy []int64 `json:"superseded_by,omitempty"`
	Supersedes   []int64 `json:"supersedes,omitempty"`

	// Denormalized location fields for fast filtering.
	Country       string `json:"country,omitempty"`
	Region        string `json:"region,omitempty"`
	County        string `json:"county,omitempty"`
	Locality      string `json:"locality,omitempty"`
	Neighbourhood string `json:"neighbourhood,omitempty"`

	BBox     *Bounds   `json:"bbox,omitempty"`
	Centroid *Centroid `json:"centroid,omitempty"`

	Population   int64   `json:"population,omitempty"`
	Area         float64 `json:"area,omitempty"`
	Source       string  `json:"source,omitempty"`
	LastModified int64   `json:"last_modified,omitempty"`

	// Extra carries fields present in a source row that the fixed
	// schema does not model. Never nil-checked by the engine itself;
	// serializers may surface selected keys.
	Extra map[string]any `json:"-"`
}

// PlaceWithGeometry is a Place plus an optional decoded geometry
// payload. Geometry is nil for point-only records that carry no stored
// payload, and for records whose payload failed to decode (the decode
// warning is surfaced separately).
type PlaceWithGeometry struct {
	Place
	Geometry *Geometry `json:"geometry,omitempty"`
}

// Status derives the lifecycle state using a fixed precedence:
// deprecated over ceased over superseded over superseding over current.
// Source data may set several flags at once (deprecated+ceased is real
// data); precedence picks one deterministic answer.
func (p *Place) Status() Status {
	switch {
	case p.IsDeprecated:
		return StatusDeprecated
	case p.IsCeased:
		return StatusCeased
	case p.IsSuperseded:
		return StatusSuperseded
	case p.IsSuperseding:
		return StatusSuperseding
	case p.IsCurrent == 1:
		return StatusCurrent
	case p.IsCurrent < 0:
		return StatusUnknown
	default:
		return StatusUnknown
	}
}

// IsActive reports whether the place is current and not retired under
// any lifecycle flag.
func (p *Place) IsActive() bool {
	return p.Status() == StatusCurrent
}

// Latitude returns the centroid latitude, or 0 with ok=false when the
// record has no centroid.
func (p *Place) Latitude() (float64, bool) {
	if p.Centroid == nil {
		return 0, false
	}
	return p.Centroid.Lat, true
}

// Longitude returns the centroid longitude, or 0 with ok=false when the
// record has no centroid.
func (p *Place) Longitude() (float64, bool) {
	if p.Centroid == nil {
		return 0, false
	}
	return p.Centroid.Lon, true
}
