package geo

import (
	"math"
	"testing"

	"github.com/nandanugg/tourist-safety/module/core/domain"
)

func TestDistance_SamePoint(t *testing.T) {
	p := domain.Coordinate{Lat: 23.2590, Lon: 77.4017}
	if d := Distance(p, p); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	pairs := [][2]domain.Coordinate{
		{{Lat: 23.2590, Lon: 77.4017}, {Lat: 23.3000, Lon: 77.4500}},
		{{Lat: -6.2088, Lon: 106.8456}, {Lat: -6.2100, Lon: 106.8456}},
		{{Lat: 27.1185, Lon: 95.7352}, {Lat: 26.3950, Lon: 95.3060}},
		{{Lat: 89.9, Lon: -179.9}, {Lat: -89.9, Lon: 179.9}},
		{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 180}},
	}

	for _, p := range pairs {
		ab := Distance(p[0], p[1])
		ba := Distance(p[1], p[0])
		if math.Abs(ab-ba) > 1e-6*math.Max(ab, 1) {
			t.Errorf("distance not symmetric for %v: %f vs %f", p, ab, ba)
		}
	}
}

func TestDistance_KnownValue(t *testing.T) {
	// ~5.9km between the Bhopal test points
	d := Distance(domain.Coordinate{Lat: 23.2590, Lon: 77.4017}, domain.Coordinate{Lat: 23.3000, Lon: 77.4500})
	if d < 5000 || d > 7000 {
		t.Errorf("expected ~6km, got %f", d)
	}

	// one degree of latitude along a meridian
	d = Distance(domain.Coordinate{Lat: 0, Lon: 0}, domain.Coordinate{Lat: 1, Lon: 0})
	want := EarthRadiusMeters * math.Pi / 180
	if math.Abs(d-want) > 1e-6 {
		t.Errorf("expected %f, got %f", want, d)
	}
}

func TestDistance_NaNPropagates(t *testing.T) {
	d := Distance(domain.Coordinate{Lat: math.NaN(), Lon: 0}, domain.Coordinate{})
	if !math.IsNaN(d) {
		t.Errorf("expected NaN, got %f", d)
	}
}
