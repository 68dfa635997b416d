package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/location"
	"gopkg.in/yaml.v3"
)

type zonesFile struct {
	Zones []location.Zone `yaml:"zones"`
}

// LoadZones reads permitted zones from a YAML file when path is set, otherwise from
// the inline "name|lat|lon|radius;..." form.
func LoadZones(path, inline string) ([]location.Zone, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read ZONES_FILE: %w", err)
		}
		return ParseZonesYAML(data)
	}
	if inline != "" {
		return ParseZonesInline(inline)
	}
	return nil, nil
}

func ParseZonesYAML(data []byte) ([]location.Zone, error) {
	var f zonesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid zones file: %w", err)
	}
	return f.Zones, nil
}

func ParseZonesInline(s string) ([]location.Zone, error) {
	var zones []location.Zone

	for i, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, "|")
		if len(parts) != 4 {
			return nil, fmt.Errorf("ATTENDANCE_ZONES entry #%d: expected name|lat|lon|radius", i)
		}

		var nums [3]float64
		for j, p := range parts[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("ATTENDANCE_ZONES entry #%d: %w", i, err)
			}
			nums[j] = v
		}

		zones = append(zones, location.Zone{
			Name:         strings.TrimSpace(parts[0]),
			Latitude:     nums[0],
			Longitude:    nums[1],
			RadiusMeters: nums[2],
		})
	}

	return zones, nil
}
