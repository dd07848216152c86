package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nandanugg/tourist-safety/module/core/domain"
)

//go:embed zones.yaml
var defaultZones []byte

type zoneFile struct {
	Zones []zoneEntry `yaml:"zones" validate:"dive"`
}

type zoneEntry struct {
	Name   string     `yaml:"name"`
	Center zoneCenter `yaml:"center"`
	Radius float64    `yaml:"radius" validate:"gt=0"`
}

type zoneCenter struct {
	Lat float64 `yaml:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `yaml:"lng" validate:"gte=-180,lte=180"`
}

// LoadZones reads the red zone registry from ZONES_FILE, or the embedded
// default list when none is set.
func LoadZones(cfg *Config) ([]domain.Zone, error) {
	data := defaultZones
	if cfg.ZonesFile != "" {
		b, err := os.ReadFile(cfg.ZonesFile)
		if err != nil {
			return nil, fmt.Errorf("read zones file: %w", err)
		}
		data = b
	}
	return ParseZones(data)
}

func ParseZones(data []byte) ([]domain.Zone, error) {
	var f zoneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse zones: %w", err)
	}
	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("validate zones: %w", err)
	}

	zones := make([]domain.Zone, len(f.Zones))
	for i, z := range f.Zones {
		zones[i] = domain.Zone{
			Name:         z.Name,
			Center:       domain.Coordinate{Lat: z.Center.Lat, Lon: z.Center.Lng},
			RadiusMeters: z.Radius,
		}
	}
	return zones, nil
}
