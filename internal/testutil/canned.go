package testutil

// Well-known fixture identifiers. Tests reference these instead of
// repeating literals.
const (
	BarbadosID     int64 = 85632491
	SaintMichaelID int64 = 85670295
	BridgetownID   int64 = 102027145
	MooreHillID    int64 = 1326720241

	USID         int64 = 85633793
	CaliforniaID int64 = 85688637

	SanFranciscoCountyID int64 = 102087579
	AlamedaCountyID      int64 = 102086959
	SantaClaraCountyID   int64 = 102085387

	SanFranciscoID int64 = 85922583
	OaklandID      int64 = 85921881
	BerkeleyID     int64 = 85921393
	SanJoseID      int64 = 85922347
	PaloAltoID     int64 = 85921543
)

// BridgetownGeometry is a small valid polygon around Bridgetown.
const BridgetownGeometry = `{"type": "Polygon", "coordinates": [[[-59.63, 13.08], [-59.58, 13.08], [-59.58, 13.12], [-59.63, 13.12], [-59.63, 13.08]]]}`

// BarbadosGeometry is a Feature-wrapped multipolygon, exercising
// envelope unwrapping.
const BarbadosGeometry = `{"type": "Feature", "geometry": {"type": "MultiPolygon", "coordinates": [[[[-59.65, 13.04], [-59.42, 13.04], [-59.42, 13.34], [-59.65, 13.34], [-59.65, 13.04]]]]}, "properties": {}}`

// BarbadosFixture is a single-country hierarchy: country, one region,
// two localities. Moore Hill is deprecated and also marked current, so
// lifecycle precedence is observable.
func BarbadosFixture() Fixture {
	return Fixture{
		Places: []PlaceRow{
			{
				ID: BarbadosID, Name: "Barbados", Placetype: "country",
				Country: "BB",
				Lat:     F(13.19), Lon: F(-59.54),
				MinLon: F(-59.65), MinLat: F(13.04), MaxLon: F(-59.42), MaxLat: F(13.34),
				IsCurrent: 1, Population: 281200, Area: 439.0,
				Source: "whosonfirst-data", LastModified: 1660000000,
			},
			{
				ID: SaintMichaelID, ParentID: I(BarbadosID),
				Name: "Saint Michael", Placetype: "region",
				Country: "BB",
				Lat:     F(13.12), Lon: F(-59.59),
				MinLon: F(-59.65), MinLat: F(13.04), MaxLon: F(-59.55), MaxLat: F(13.18),
				IsCurrent: 1, Population: 89000, Area: 39.0,
				Source: "whosonfirst-data", LastModified: 1660000000,
			},
			{
				ID: BridgetownID, ParentID: I(SaintMichaelID),
				Name: "Bridgetown", Placetype: "locality",
				Country: "BB", Region: "Saint Michael",
				Lat: F(13.0975), Lon: F(-59.6167),
				MinLon: F(-59.63), MinLat: F(13.08), MaxLon: F(-59.58), MaxLat: F(13.12),
				IsCurrent: 1, Population: 110000, Area: 38.8,
				Source: "whosonfirst-data", LastModified: 1661000000,
			},
			{
				ID: MooreHillID, ParentID: I(SaintMichaelID),
				Name: "Moore Hill", Placetype: "locality",
				Country: "BB", Region: "Saint Michael",
				Lat: F(13.175), Lon: F(-59.555),
				IsCurrent: 1, IsDeprecated: true,
				Source: "whosonfirst-data", LastModified: 1600000000,
			},
		},
		Names: []NameRow{
			{ID: BridgetownID, Language: "eng", Kind: "preferred", Name: "Bridgetown"},
			{ID: BridgetownID, Language: "fra", Kind: "preferred", Name: "Bridgetown"},
			{ID: BridgetownID, Language: "eng", Kind: "colloquial", Name: "The Town"},
			{ID: BarbadosID, Language: "eng", Kind: "preferred", Name: "Barbados"},
			{ID: BarbadosID, Language: "spa", Kind: "variant", Name: "Barbados"},
		},
		Ancestors: []AncestorRow{
			{ID: SaintMichaelID, AncestorID: BarbadosID, AncestorPlacetype: "country"},
			{ID: BridgetownID, AncestorID: SaintMichaelID, AncestorPlacetype: "region"},
			{ID: BridgetownID, AncestorID: BarbadosID, AncestorPlacetype: "country"},
			{ID: MooreHillID, AncestorID: SaintMichaelID, AncestorPlacetype: "region"},
			{ID: MooreHillID, AncestorID: BarbadosID, AncestorPlacetype: "country"},
		},
		Geometries: []GeometryRow{
			{ID: BarbadosID, Body: BarbadosGeometry, Source: "whosonfirst-data"},
			{ID: BridgetownID, Body: BridgetownGeometry, Source: "whosonfirst-data"},
		},
	}
}

// CaliforniaFixture is a second source for federation tests: one
// region with three counties and five localities under it.
func CaliforniaFixture() Fixture {
	counties := []struct {
		id   int64
		name string
	}{
		{SanFranciscoCountyID, "San Francisco County"},
		{AlamedaCountyID, "Alameda County"},
		{SantaClaraCountyID, "Santa Clara County"},
	}
	localities := []struct {
		id     int64
		name   string
		county int64
		lat    float64
		lon    float64
	}{
		{SanFranciscoID, "San Francisco", SanFranciscoCountyID, 37.7749, -122.4194},
		{OaklandID, "Oakland", AlamedaCountyID, 37.8044, -122.2712},
		{BerkeleyID, "Berkeley", AlamedaCountyID, 37.8715, -122.2730},
		{SanJoseID, "San Jose", SantaClaraCountyID, 37.3382, -121.8863},
		{PaloAltoID, "Palo Alto", SantaClaraCountyID, 37.4419, -122.1430},
	}

	fx := Fixture{
		Places: []PlaceRow{
			{
				ID: USID, Name: "United States", Placetype: "country",
				Country: "US",
				Lat:     F(39.8), Lon: F(-98.5),
				IsCurrent: 1, Source: "whosonfirst-data", LastModified: 1660000000,
			},
			{
				ID: CaliforniaID, ParentID: I(USID),
				Name: "California", Placetype: "region",
				Country: "US",
				Lat:     F(37.2), Lon: F(-119.3),
				MinLon: F(-124.41), MinLat: F(32.53), MaxLon: F(-114.13), MaxLat: F(42.01),
				IsCurrent: 1, Population: 39500000, Area: 423970,
				Source: "whosonfirst-data", LastModified: 1660000000,
			},
		},
		Names: []NameRow{
			{ID: CaliforniaID, Language: "eng", Kind: "preferred", Name: "California"},
			{ID: SanFranciscoID, Language: "eng", Kind: "preferred", Name: "San Francisco"},
			{ID: SanFranciscoID, Language: "eng", Kind: "colloquial", Name: "SF"},
			{ID: SanFranciscoID, Language: "spa", Kind: "preferred", Name: "San Francisco"},
		},
		Ancestors: []AncestorRow{
			{ID: CaliforniaID, AncestorID: USID, AncestorPlacetype: "country"},
		},
		Geometries: []GeometryRow{
			{ID: SanFranciscoID, Body: `{"type": "Point", "coordinates": [-122.4194, 37.7749]}`, Source: "whosonfirst-data"},
		},
	}

	for _, c := range counties {
		fx.Places = append(fx.Places, PlaceRow{
			ID: c.id, ParentID: I(CaliforniaID),
			Name: c.name, Placetype: "county",
			Country: "US", Region: "California",
			Lat: F(37.7), Lon: F(-122.2),
			IsCurrent: 1, Source: "whosonfirst-data", LastModified: 1660000000,
		})
		fx.Ancestors = append(fx.Ancestors,
			AncestorRow{ID: c.id, AncestorID: CaliforniaID, AncestorPlacetype: "region"},
			AncestorRow{ID: c.id, AncestorID: USID, AncestorPlacetype: "country"},
		)
	}
	for _, l := range localities {
		fx.Places = append(fx.Places, PlaceRow{
			ID: l.id, ParentID: I(l.county),
			Name: l.name, Placetype: "locality",
			Country: "US", Region: "California",
			Lat: F(l.lat), Lon: F(l.lon),
			MinLon: F(l.lon - 0.1), MinLat: F(l.lat - 0.1),
			MaxLon: F(l.lon + 0.1), MaxLat: F(l.lat + 0.1),
			IsCurrent: 1, Source: "whosonfirst-data", LastModified: 1661000000,
		})
		fx.Ancestors = append(fx.Ancestors,
			AncestorRow{ID: l.id, AncestorID: l.county, AncestorPlacetype: "county"},
			AncestorRow{ID: l.id, AncestorID: CaliforniaID, AncestorPlacetype: "region"},
			AncestorRow{ID: l.id, AncestorID: USID, AncestorPlacetype: "country"},
		)
	}
	return fx
}
