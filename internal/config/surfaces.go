package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Surface is one dashboard panel that polls a single endpoint.
type Surface struct {
	Name       string `yaml:"name"`
	Endpoint   string `yaml:"endpoint"`
	IntervalMS int    `yaml:"interval_ms"`
}

func (s Surface) Interval() time.Duration {
	return time.Duration(s.IntervalMS) * time.Millisecond
}

// SurfacesConfig is the top-level YAML configuration for polled surfaces.
type SurfacesConfig struct {
	Surfaces []Surface `yaml:"surfaces"`
}

// DefaultSurfaces mirrors the refresh cadence of the stock dashboard pages.
func DefaultSurfaces() []Surface {
	return []Surface{
		{Name: "system", Endpoint: "/system/status", IntervalMS: 30000},
		{Name: "patterns", Endpoint: "/patterns/live", IntervalMS: 30000},
		{Name: "alerts", Endpoint: "/alerts/live", IntervalMS: 15000},
		{Name: "engines", Endpoint: "/ai/engines", IntervalMS: 30000},
		{Name: "tournament", Endpoint: "/patterns/tournament", IntervalMS: 60000},
		{Name: "evolution", Endpoint: "/evolution/status", IntervalMS: 60000},
	}
}

// LoadSurfaces reads a surfaces YAML file. A missing file yields
// DefaultSurfaces; any other read or validation problem is an error.
func LoadSurfaces(path string) ([]Surface, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultSurfaces(), nil
		}
		return nil, fmt.Errorf("surfaces config: %w", err)
	}
	var cfg SurfacesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("surfaces config: %w", err)
	}
	if err := ValidateSurfaces(cfg.Surfaces); err != nil {
		return nil, err
	}
	return cfg.Surfaces, nil
}

// ValidateSurfaces checks names, endpoints and intervals.
func ValidateSurfaces(surfaces []Surface) error {
	if len(surfaces) == 0 {
		return fmt.Errorf("surfaces config: at least one surface is required")
	}
	seen := make(map[string]bool, len(surfaces))
	for i, s := range surfaces {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("surfaces config: surfaces[%d] missing name", i)
		}
		if !strings.HasPrefix(s.Endpoint, "/") {
			return fmt.Errorf("surfaces config: surfaces[%d] (%s) endpoint must start with /", i, s.Name)
		}
		if s.IntervalMS < 1000 {
			return fmt.Errorf("surfaces config: surfaces[%d] (%s) interval_ms must be >= 1000", i, s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("surfaces config: duplicate surface %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}
