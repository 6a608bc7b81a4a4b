package wof

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlaceType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  PlaceType
		ok    bool
	}{
		{"canonical", "locality", TypeLocality, true},
		{"uppercase", "LOCALITY", TypeLocality, true},
		{"whitespace", "  region ", TypeRegion, true},
		{"us spelling alias", "neighborhood", TypeNeighbourhood, true},
		{"underscore alias", "macro_region", TypeMacroRegion, true},
		{"unknown", "galaxy", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePlaceType(tt.input)
			if !tt.ok {
				require.Error(t, err)
				assert.True(t, IsInvalidFilter(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlaceType_Level(t *testing.T) {
	assert.Equal(t, 0, TypeContinent.Level())
	assert.Equal(t, 2, TypeCountry.Level())
	assert.Equal(t, -1, PlaceType("galaxy").Level())

	// Every taxonomy entry has a distinct level matching its position.
	for i, pt := range Taxonomy() {
		assert.Equal(t, i, pt.Level())
	}
}

func TestPlaceType_Precedes(t *testing.T) {
	assert.True(t, TypeCountry.Precedes(TypeRegion))
	assert.True(t, TypeRegion.Precedes(TypeLocality))
	assert.False(t, TypeLocality.Precedes(TypeRegion))
	assert.False(t, TypeLocality.Precedes(TypeLocality))
	assert.False(t, PlaceType("galaxy").Precedes(TypeRegion))
	assert.False(t, TypeRegion.Precedes(PlaceType("galaxy")))
}

func TestPlaceType_IsTopLevel(t *testing.T) {
	assert.True(t, TypeContinent.IsTopLevel())
	assert.True(t, TypeCountry.IsTopLevel())
	assert.True(t, TypeEmpire.IsTopLevel())
	assert.False(t, TypeRegion.IsTopLevel())
	assert.False(t, TypeLocality.IsTopLevel())
}

func TestTaxonomy_Immutable(t *testing.T) {
	a := Taxonomy()
	a[0] = "mutated"
	b := Taxonomy()
	assert.Equal(t, TypeContinent, b[0])
	assert.Len(t, b, TaxonomyDepth)
}
