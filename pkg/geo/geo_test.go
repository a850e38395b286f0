package geo

import (
	"math"
	"testing"
)

func TestDistanceMeters_ZeroDistance(t *testing.T) {
	p := Coordinate{Lat: 48.8584, Lng: 2.2945}
	if d := DistanceMeters(p, p); d != 0 {
		t.Errorf("distance to self = %.4f, want 0", d)
	}
}

func TestDistanceMeters_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Coordinate
		wantM     float64
		tolerance float64
	}{
		{
			name:      "Paris to London",
			a:         Coordinate{Lat: 48.8566, Lng: 2.3522},
			b:         Coordinate{Lat: 51.5074, Lng: -0.1278},
			wantM:     343500,
			tolerance: 2000,
		},
		{
			name:      "one degree of latitude at equator",
			a:         Coordinate{Lat: 0, Lng: 0},
			b:         Coordinate{Lat: 1, Lng: 0},
			wantM:     111195,
			tolerance: 100,
		},
		{
			name:      "short hop across a venue",
			a:         Coordinate{Lat: 45.5017, Lng: -73.5673},
			b:         Coordinate{Lat: 45.5021, Lng: -73.5668},
			wantM:     59,
			tolerance: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMeters(tt.a, tt.b)
			if math.Abs(got-tt.wantM) > tt.tolerance {
				t.Errorf("DistanceMeters = %.1f, want %.1f ± %.1f", got, tt.wantM, tt.tolerance)
			}
		})
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	a := Coordinate{Lat: 40.7128, Lng: -74.0060}
	b := Coordinate{Lat: 34.0522, Lng: -118.2437}

	ab := DistanceMeters(a, b)
	ba := DistanceMeters(b, a)
	if math.Abs(ab-ba) > 1e-6 {
		t.Errorf("distance not symmetric: %f vs %f", ab, ba)
	}
}

func TestDistanceMeters_Antipodal(t *testing.T) {
	a := Coordinate{Lat: 0, Lng: 0}
	b := Coordinate{Lat: 0, Lng: 180}

	got := DistanceMeters(a, b)
	want := math.Pi * earthRadiusM
	if math.Abs(got-want) > 1000 {
		t.Errorf("antipodal distance = %.0f, want ~%.0f", got, want)
	}
}
