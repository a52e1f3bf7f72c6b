package jelly

import (
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// WorldConfig contains the tunables of a world. Zero values are replaced
// by the defaults at world construction, so a partially filled config or
// YAML document is fine.
type WorldConfig struct {
	// Gravity acceleration applied to every non-static point (m/s²)
	Gravity [2]float64 `yaml:"gravity"`
	// Max penetration resolved per iteration; deeper contacts are
	// counted and skipped
	PenetrationThreshold float64 `yaml:"penetration_threshold"`
	// Narrow phase + resolution passes per step
	PenetrationIterations int `yaml:"penetration_iterations"`
	// Broad phase grid resolution, 1..64 per axis
	GridWidth  int `yaml:"bitmask_grid_width"`
	GridHeight int `yaml:"bitmask_grid_height"`
	// Number of material slots in the pair table
	Materials int `yaml:"materials"`
}

var configDefaults = WorldConfig{
	Gravity:               [2]float64{0, -9.8},
	PenetrationThreshold:  0.3,
	PenetrationIterations: 1,
	GridWidth:             32,
	GridHeight:            32,
	Materials:             1,
}

// DefaultWorldConfig returns the stock configuration.
func DefaultWorldConfig() WorldConfig {
	return configDefaults
}

// LoadWorldConfig reads a YAML document, layered over the defaults.
func LoadWorldConfig(r io.Reader) (WorldConfig, error) {
	cfg := configDefaults

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return WorldConfig{}, fmt.Errorf("load world config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return WorldConfig{}, err
	}

	return cfg, nil
}

// GravityVec returns the configured gravity as a vector.
func (c WorldConfig) GravityVec() mgl64.Vec2 {
	return mgl64.Vec2{c.Gravity[0], c.Gravity[1]}
}

// withDefaults fills unset fields in from the defaults.
func (c WorldConfig) withDefaults() WorldConfig {
	if c.PenetrationThreshold == 0 {
		c.PenetrationThreshold = configDefaults.PenetrationThreshold
	}
	if c.PenetrationIterations == 0 {
		c.PenetrationIterations = configDefaults.PenetrationIterations
	}
	if c.GridWidth == 0 {
		c.GridWidth = configDefaults.GridWidth
	}
	if c.GridHeight == 0 {
		c.GridHeight = configDefaults.GridHeight
	}
	if c.Materials == 0 {
		c.Materials = configDefaults.Materials
	}

	return c
}

func (c WorldConfig) validate() error {
	if math.IsNaN(c.Gravity[0]) || math.IsInf(c.Gravity[0], 0) ||
		math.IsNaN(c.Gravity[1]) || math.IsInf(c.Gravity[1], 0) {
		return fmt.Errorf("gravity is not finite: %v", c.Gravity)
	}
	if c.PenetrationThreshold < 0 || math.IsNaN(c.PenetrationThreshold) {
		return fmt.Errorf("penetration threshold must not be negative, got %v", c.PenetrationThreshold)
	}
	if c.PenetrationIterations < 0 {
		return fmt.Errorf("penetration iterations must not be negative, got %d", c.PenetrationIterations)
	}
	if c.GridWidth < 0 || c.GridWidth > MaxGridCells || c.GridHeight < 0 || c.GridHeight > MaxGridCells {
		return fmt.Errorf("grid resolution must be in [1, %d], got %dx%d", MaxGridCells, c.GridWidth, c.GridHeight)
	}
	if c.Materials < 0 {
		return fmt.Errorf("material count must be at least 1, got %d", c.Materials)
	}

	return nil
}
