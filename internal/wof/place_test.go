package wof

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlace_StatusPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		place Place
		want  Status
	}{
		{"current", Place{IsCurrent: 1}, StatusCurrent},
		{"unknown flag", Place{IsCurrent: -1}, StatusUnknown},
		{"not current, nothing else", Place{IsCurrent: 0}, StatusUnknown},
		{"deprecated", Place{IsCurrent: 1, IsDeprecated: true}, StatusDeprecated},
		{"deprecated beats ceased", Place{IsDeprecated: true, IsCeased: true}, StatusDeprecated},
		{"ceased beats superseded", Place{IsCeased: true, IsSuperseded: true}, StatusCeased},
		{"superseded beats superseding", Place{IsSuperseded: true, IsSuperseding: true}, StatusSuperseded},
		{"superseding beats current", Place{IsCurrent: 1, IsSuperseding: true}, StatusSuperseding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.place.Status())
		})
	}
}

func TestPlace_IsActive(t *testing.T) {
	assert.True(t, (&Place{IsCurrent: 1}).IsActive())
	assert.False(t, (&Place{IsCurrent: 1, IsDeprecated: true}).IsActive())
	assert.False(t, (&Place{IsCurrent: -1}).IsActive())
}

func TestPlace_Coordinates(t *testing.T) {
	p := Place{Centroid: &Centroid{Lon: -59.6, Lat: 13.1}}
	lat, ok := p.Latitude()
	assert.True(t, ok)
	assert.InDelta(t, 13.1, lat, 1e-9)
	lon, ok := p.Longitude()
	assert.True(t, ok)
	assert.InDelta(t, -59.6, lon, 1e-9)

	none := Place{}
	_, ok = none.Latitude()
	assert.False(t, ok)
	_, ok = none.Longitude()
	assert.False(t, ok)
}
