package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/blockfall.yaml
var defaultBlockfallYAML []byte

// DefaultBlockfallConfig returns the default Blockfall configuration.
func DefaultBlockfallConfig() BlockfallConfig {
	return BlockfallConfig{
		Board: BlockfallBoard{
			Width:  10,
			Height: 20,
		},
		Timing: BlockfallTiming{
			GravityPeriod:      Duration(time.Second),
			SoftDropMultiplier: 25,
			LateralPeriod:      Duration(40 * time.Millisecond),
		},
		Scoring: BlockfallScoring{
			PerRow: 100,
		},
		Rules: BlockfallRules{
			ValidateRotation: true,
			Strict:           false,
		},
		Input: BlockfallInput{
			HoldWindow: Duration(60 * time.Millisecond),
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a game.
func GetDefaultYAML(gameID string) []byte {
	switch gameID {
	case "blockfall", "blockfall_classic":
		return defaultBlockfallYAML
	default:
		return nil
	}
}
