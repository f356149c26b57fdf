package crossroad

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the geometry, signal timing and traffic parameters of a run.
// Durations counted in ticks are frames of the simulation clock.
type Config struct {
	Width            float64 `yaml:"width"`
	Height           float64 `yaml:"height"`
	RoadWidth        float64 `yaml:"road_width"`
	IntersectionSize float64 `yaml:"intersection_size"`

	BaseGreenTicks int `yaml:"base_green_ticks"`
	YellowTicks    int `yaml:"yellow_ticks"`
	QueueThreshold int `yaml:"queue_threshold"`

	SpawnIntervalTicks int     `yaml:"spawn_interval_ticks"`
	MinSpeed           float64 `yaml:"min_speed"`
	MaxSpeed           float64 `yaml:"max_speed"`
	StopProximity      float64 `yaml:"stop_proximity"`
	ExitMargin         float64 `yaml:"exit_margin"`

	TickRate time.Duration `yaml:"tick_rate"`
	// Seed fixes the random source; zero seeds from the clock
	Seed int64 `yaml:"seed"`
	// CheckInvariants validates every tick and reports violations to OnError
	CheckInvariants bool `yaml:"check_invariants"`
}

// DefaultConfig returns the stock intersection: an 800x800 canvas, 200-tick
// greens doubled past a queue of 5, 60-tick yellows and a spawn every 6 ticks
func DefaultConfig() Config {
	return Config{
		Width:              800,
		Height:             800,
		RoadWidth:          100,
		IntersectionSize:   100,
		BaseGreenTicks:     200,
		YellowTicks:        60,
		QueueThreshold:     5,
		SpawnIntervalTicks: 6,
		MinSpeed:           1.0,
		MaxSpeed:           1.5,
		StopProximity:      2,
		ExitMargin:         10,
		TickRate:           16 * time.Millisecond,
	}
}

// LoadConfig reads a YAML file over the defaults and validates the result
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every out-of-range value
func (c Config) Validate() error {
	var errs []error
	positive := func(field string, v float64) {
		if v <= 0 {
			errs = append(errs, NewConfigurationError(field, fmt.Sprintf("must be positive, got %v", v)))
		}
	}

	positive("width", c.Width)
	positive("height", c.Height)
	positive("road_width", c.RoadWidth)
	positive("intersection_size", c.IntersectionSize)
	positive("base_green_ticks", float64(c.BaseGreenTicks))
	positive("yellow_ticks", float64(c.YellowTicks))
	positive("spawn_interval_ticks", float64(c.SpawnIntervalTicks))
	positive("min_speed", c.MinSpeed)
	positive("stop_proximity", c.StopProximity)
	positive("tick_rate", float64(c.TickRate))

	if c.QueueThreshold < 0 {
		errs = append(errs, NewConfigurationError("queue_threshold", "must not be negative"))
	}
	if c.ExitMargin < 0 {
		errs = append(errs, NewConfigurationError("exit_margin", "must not be negative"))
	}
	if c.MaxSpeed < c.MinSpeed {
		errs = append(errs, NewConfigurationError("max_speed", "must not be below min_speed"))
	}
	// A vehicle covering more than the stop window in one tick could jump it.
	if c.MaxSpeed > c.StopProximity {
		errs = append(errs, NewConfigurationError("max_speed", "must not exceed stop_proximity"))
	}
	if c.IntersectionSize >= c.Width || c.IntersectionSize >= c.Height {
		errs = append(errs, NewConfigurationError("intersection_size", "must be smaller than the canvas"))
	}

	return errors.Join(errs...)
}
