package geo

import "github.com/nandanugg/tourist-safety/module/core/domain"

// Registry is the read-only, ordered set of red zones.
type Registry struct {
	zones []domain.Zone
}

func NewRegistry(zones []domain.Zone) *Registry {
	return &Registry{zones: append([]domain.Zone(nil), zones...)}
}

// Zones returns a copy of the registry contents in load order.
func (r *Registry) Zones() []domain.Zone {
	if r == nil {
		return nil
	}
	return append([]domain.Zone(nil), r.zones...)
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.zones)
}
