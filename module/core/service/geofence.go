package service

import (
	"fmt"

	"github.com/nandanugg/tourist-safety/module/core/domain"
	"github.com/nandanugg/tourist-safety/module/core/geo"
)

type GeofenceService struct {
	registry  *geo.Registry
	evaluator *geo.Evaluator
}

func NewGeofenceService(registry *geo.Registry) *GeofenceService {
	return &GeofenceService{
		registry:  registry,
		evaluator: geo.NewEvaluator(registry),
	}
}

func (s *GeofenceService) Zones() []domain.Zone {
	return s.registry.Zones()
}

// Check reports whether c lies in a red zone and, if so, which one.
func (s *GeofenceService) Check(c domain.Coordinate) (domain.ZoneCheck, error) {
	if err := c.Validate(); err != nil {
		return domain.ZoneCheck{}, fmt.Errorf("check zone: %w", err)
	}
	return s.evaluator.Check(c), nil
}

// Matcher is the membership evaluator tracking sessions run on every sample.
func (s *GeofenceService) Matcher() *geo.Evaluator {
	return s.evaluator
}
