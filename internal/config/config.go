// Package config provides YAML-based game configuration loading for the
// blockfall platform.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// BlockfallConfig contains all configuration for the Blockfall game.
type BlockfallConfig struct {
	Board   BlockfallBoard   `yaml:"board"`
	Timing  BlockfallTiming  `yaml:"timing"`
	Scoring BlockfallScoring `yaml:"scoring"`
	Rules   BlockfallRules   `yaml:"rules"`
	Input   BlockfallInput   `yaml:"input"`
}

// BlockfallBoard defines the playfield size in cells.
type BlockfallBoard struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// BlockfallTiming defines the gravity and lateral repeat timers.
type BlockfallTiming struct {
	GravityPeriod      Duration `yaml:"gravity_period"`
	SoftDropMultiplier float64  `yaml:"soft_drop_multiplier"`
	LateralPeriod      Duration `yaml:"lateral_period"`
}

// BlockfallScoring defines score awards.
type BlockfallScoring struct {
	PerRow int `yaml:"per_row"`
}

// BlockfallRules toggles rule variants.
type BlockfallRules struct {
	ValidateRotation bool `yaml:"validate_rotation"` // Reject rotations into walls or locked cells
	Strict           bool `yaml:"strict"`            // Panic on invariant violations (debugging)
}

// BlockfallInput defines how the terminal frontend samples keys.
type BlockfallInput struct {
	// HoldWindow is how long a key counts as held after its last key event.
	// Terminals report presses and auto-repeats but no releases.
	HoldWindow Duration `yaml:"hold_window"`
}

// Duration is a time.Duration that reads and writes YAML as "250ms", "1s".
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String formats the duration the same way as time.Duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML accepts a Go duration string or a bare integer of nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration at line %d: %w", value.Line, err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		var ns int64
		if numErr := value.Decode(&ns); numErr != nil {
			return fmt.Errorf("invalid duration %q at line %d: %w", s, value.Line, err)
		}
		parsed = time.Duration(ns)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration as a Go duration string.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// Validate checks that the configuration describes a playable game.
func (c BlockfallConfig) Validate() error {
	if c.Board.Width < 4 || c.Board.Width%2 != 0 {
		return fmt.Errorf("config: board.width must be an even number >= 4, got %d", c.Board.Width)
	}
	if c.Board.Height < 6 || c.Board.Height%2 != 0 {
		return fmt.Errorf("config: board.height must be an even number >= 6, got %d", c.Board.Height)
	}
	if c.Timing.GravityPeriod <= 0 {
		return fmt.Errorf("config: timing.gravity_period must be positive, got %s", c.Timing.GravityPeriod)
	}
	if c.Timing.LateralPeriod <= 0 {
		return fmt.Errorf("config: timing.lateral_period must be positive, got %s", c.Timing.LateralPeriod)
	}
	if c.Timing.SoftDropMultiplier < 1 {
		return fmt.Errorf("config: timing.soft_drop_multiplier must be >= 1, got %g", c.Timing.SoftDropMultiplier)
	}
	if c.Scoring.PerRow <= 0 {
		return fmt.Errorf("config: scoring.per_row must be positive, got %d", c.Scoring.PerRow)
	}
	if c.Input.HoldWindow < 0 {
		return fmt.Errorf("config: input.hold_window must not be negative, got %s", c.Input.HoldWindow)
	}
	return nil
}
