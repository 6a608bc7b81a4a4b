package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/geoplaces/gazetteer/internal/wof"
)

// csvColumns is the fixed, ordered column set for tabular output.
// Centroid and bounding box are flattened into scalar columns; absent
// values render as empty cells.
var csvColumns = []string{
	"id", "parent_id", "name", "placetype",
	"country", "region", "county", "locality", "neighbourhood",
	"latitude", "longitude",
	"min_longitude", "min_latitude", "max_longitude", "max_latitude",
	"is_current", "is_deprecated", "is_ceased", "is_superseded", "is_superseding",
	"superseded_by", "supersedes",
	"population", "area", "status", "source", "lastmodified",
}

type csvSerializer struct{}

func (csvSerializer) Format() Format { return FormatCSV }

func (s csvSerializer) Serialize(places []wof.PlaceWithGeometry, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(Records(places, opts)); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Records returns the tabular form of places as string records, header
// first. This is the structured counterpart to NewFeatureCollection for
// callers that post-process rows instead of writing a file.
func Records(places []wof.PlaceWithGeometry, opts Options) [][]string {
	out := make([][]string, 0, len(places)+1)
	out = append(out, csvColumns)
	for _, p := range places {
		if p.Geometry == nil && opts.RequireGeometry {
			continue
		}
		out = append(out, csvRecord(p.Place))
	}
	return out
}

func csvRecord(p wof.Place) []string {
	rec := make([]string, 0, len(csvColumns))
	rec = append(rec,
		strconv.FormatInt(p.ID, 10),
		optionalInt64(p.ParentID),
		p.Name,
		string(p.Placetype),
		p.Country, p.Region, p.County, p.Locality, p.Neighbourhood,
	)
	if p.Centroid != nil {
		rec = append(rec, formatFloat(p.Centroid.Lat), formatFloat(p.Centroid.Lon))
	} else {
		rec = append(rec, "", "")
	}
	if p.BBox != nil {
		rec = append(rec,
			formatFloat(p.BBox.MinLon), formatFloat(p.BBox.MinLat),
			formatFloat(p.BBox.MaxLon), formatFloat(p.BBox.MaxLat),
		)
	} else {
		rec = append(rec, "", "", "", "")
	}
	rec = append(rec,
		strconv.FormatInt(p.IsCurrent, 10),
		formatBool(p.IsDeprecated),
		formatBool(p.IsCeased),
		formatBool(p.IsSuperseded),
		formatBool(p.IsSuperseding),
		formatIDList(p.SupersededBy),
		formatIDList(p.Supersedes),
		strconv.FormatInt(p.Population, 10),
		formatFloat(p.Area),
		string(p.Status()),
		p.Source,
		strconv.FormatInt(p.LastModified, 10),
	)
	return rec
}

func optionalInt64(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func formatIDList(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
