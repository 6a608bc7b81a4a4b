package export

import (
	"fmt"
	"os"
	"sort"

	"github.com/geoplaces/gazetteer/internal/wof"
)

// Format identifies a supported serialization format.
type Format string

const (
	FormatGeoJSON Format = "geojson"
	FormatCSV     Format = "csv"
	FormatWKT     Format = "wkt"
)

// Options control serialization behavior across formats.
type Options struct {
	// RequireGeometry drops records without geometry instead of
	// emitting the format's absent-geometry representation.
	RequireGeometry bool
	// Properties selects which place attributes appear as GeoJSON
	// feature properties. Empty means the default set. Ignored by the
	// CSV and WKT formats, whose column sets are fixed.
	Properties []string
}

// Serializer renders a batch of place records into one format.
type Serializer interface {
	Format() Format
	Serialize(places []wof.PlaceWithGeometry, opts Options) ([]byte, error)
}

var serializers = map[Format]Serializer{
	FormatGeoJSON: geoJSONSerializer{},
	FormatCSV:     csvSerializer{},
	FormatWKT:     wktSerializer{},
}

// New returns the serializer for the given format.
func New(format Format) (Serializer, error) {
	s, ok := serializers[format]
	if !ok {
		return nil, &wof.InvalidArgumentError{
			Argument: "format",
			Reason:   fmt.Sprintf("unsupported format %q (supported: %v)", format, Formats()),
		}
	}
	return s, nil
}

// Formats lists the supported formats in stable order.
func Formats() []Format {
	out := make([]Format, 0, len(serializers))
	for f := range serializers {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// WriteFile serializes the records and writes them to path.
func WriteFile(path string, format Format, places []wof.PlaceWithGeometry, opts Options) error {
	s, err := New(format)
	if err != nil {
		return err
	}
	data, err := s.Serialize(places, opts)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", format, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
