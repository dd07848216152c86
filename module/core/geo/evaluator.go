package geo

import "github.com/nandanugg/tourist-safety/module/core/domain"

// Evaluator answers zone membership questions against a Registry. Overlapping
// zones behave as their union; the boundary is inclusive.
type Evaluator struct {
	registry *Registry
}

func NewEvaluator(registry *Registry) *Evaluator {
	return &Evaluator{registry: registry}
}

// Inside reports whether c lies in any zone.
func (e *Evaluator) Inside(c domain.Coordinate) bool {
	_, ok := e.Match(c)
	return ok
}

// Match returns the first zone, in registry order, containing c. The scan
// stops at the first hit.
func (e *Evaluator) Match(c domain.Coordinate) (domain.Zone, bool) {
	if e == nil || e.registry == nil {
		return domain.Zone{}, false
	}
	for _, z := range e.registry.zones {
		if Distance(c, z.Center) <= z.RadiusMeters {
			return z, true
		}
	}
	return domain.Zone{}, false
}

// Check is Match plus the distance to the matched zone's center.
func (e *Evaluator) Check(c domain.Coordinate) domain.ZoneCheck {
	z, ok := e.Match(c)
	if !ok {
		return domain.ZoneCheck{}
	}
	return domain.ZoneCheck{
		Inside:         true,
		Zone:           &z,
		DistanceMeters: Distance(c, z.Center),
	}
}
