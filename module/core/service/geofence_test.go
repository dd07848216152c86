package service

import (
	"errors"
	"math"
	"testing"

	"github.com/nandanugg/tourist-safety/module/core/domain"
	"github.com/nandanugg/tourist-safety/module/core/geo"
)

var bhopalZone = domain.Zone{
	Name:         "Bhopal Old City",
	Center:       domain.Coordinate{Lat: 23.2590, Lon: 77.4017},
	RadiusMeters: 500,
}

func TestGeofenceCheck_Inside(t *testing.T) {
	svc := NewGeofenceService(geo.NewRegistry([]domain.Zone{bhopalZone}))

	res, err := svc.Check(domain.Coordinate{Lat: 23.2590, Lon: 77.4017})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Inside {
		t.Fatal("expected inside")
	}
	if res.Zone == nil || res.Zone.Name != "Bhopal Old City" {
		t.Errorf("expected zone name, got %+v", res.Zone)
	}
	if res.DistanceMeters != 0 {
		t.Errorf("expected 0m, got %f", res.DistanceMeters)
	}
}

func TestGeofenceCheck_Outside(t *testing.T) {
	svc := NewGeofenceService(geo.NewRegistry([]domain.Zone{bhopalZone}))

	res, err := svc.Check(domain.Coordinate{Lat: 23.3000, Lon: 77.4500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Inside || res.Zone != nil {
		t.Errorf("expected outside, got %+v", res)
	}
}

func TestGeofenceCheck_InvalidCoordinate(t *testing.T) {
	svc := NewGeofenceService(geo.NewRegistry(nil))

	_, err := svc.Check(domain.Coordinate{Lat: math.NaN(), Lon: 10})
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	_, err = svc.Check(domain.Coordinate{Lat: 91, Lon: 10})
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestGeofenceZones_ReturnsCopy(t *testing.T) {
	svc := NewGeofenceService(geo.NewRegistry([]domain.Zone{bhopalZone}))

	zones := svc.Zones()
	zones[0].RadiusMeters = 1

	if svc.Zones()[0].RadiusMeters != 500 {
		t.Error("registry was mutated through Zones()")
	}
}
