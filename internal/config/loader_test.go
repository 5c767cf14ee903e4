package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	var cfg BlockfallConfig
	if err := yaml.Unmarshal(defaultBlockfallYAML, &cfg); err != nil {
		t.Fatalf("embedded default does not parse: %v", err)
	}
	if cfg != DefaultBlockfallConfig() {
		t.Errorf("embedded default = %+v, want %+v", cfg, DefaultBlockfallConfig())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("embedded default is invalid: %v", err)
	}
}

func TestLoadBlockfallCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := `
board:
  width: 12
timing:
  gravity_period: 500ms
rules:
  validate_rotation: false
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadBlockfall(path)
	if err != nil {
		t.Fatalf("LoadBlockfall() failed: %v", err)
	}

	if cfg.Board.Width != 12 {
		t.Errorf("Board.Width = %d, want 12", cfg.Board.Width)
	}
	if cfg.Board.Height != 20 {
		t.Errorf("Board.Height = %d, want default 20", cfg.Board.Height)
	}
	if cfg.Timing.GravityPeriod.Std() != 500*time.Millisecond {
		t.Errorf("GravityPeriod = %s, want 500ms", cfg.Timing.GravityPeriod)
	}
	if cfg.Timing.LateralPeriod.Std() != 40*time.Millisecond {
		t.Errorf("LateralPeriod = %s, want default 40ms", cfg.Timing.LateralPeriod)
	}
	if cfg.Rules.ValidateRotation {
		t.Error("ValidateRotation should be overridden to false")
	}
}

func TestLoadBlockfallErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "board: [", "failed to parse"},
		{"bad duration", "timing:\n  gravity_period: soon\n", "failed to parse"},
		{"odd width", "board:\n  width: 9\n", "board.width"},
		{"zero lateral", "timing:\n  lateral_period: 0s\n", "lateral_period"},
		{"slow soft drop", "timing:\n  soft_drop_multiplier: 0.5\n", "soft_drop_multiplier"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tc.name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0o600); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			cfg, err := LoadBlockfall(path)
			if err == nil {
				t.Fatalf("LoadBlockfall() succeeded, want error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tc.wantErr)
			}
			if cfg != DefaultBlockfallConfig() {
				t.Error("a failed load should return the defaults")
			}
		})
	}

	if _, err := LoadBlockfall(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing custom file should be an error")
	}
}

func TestDurationIntegerNanoseconds(t *testing.T) {
	var d struct {
		D Duration `yaml:"d"`
	}
	if err := yaml.Unmarshal([]byte("d: 1000000"), &d); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if d.D.Std() != time.Millisecond {
		t.Errorf("D = %s, want 1ms", d.D)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := DefaultBlockfallConfig()
	cfg.Timing.LateralPeriod = Duration(75 * time.Millisecond)

	data, err := Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), "lateral_period: 75ms") {
		t.Errorf("durations should be written as strings:\n%s", data)
	}

	var back BlockfallConfig
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != cfg {
		t.Errorf("round trip = %+v, want %+v", back, cfg)
	}
}

func TestGetDefaultYAML(t *testing.T) {
	if len(GetDefaultYAML("blockfall")) == 0 {
		t.Error("blockfall should have embedded YAML")
	}
	if GetDefaultYAML("pong") != nil {
		t.Error("unknown games should have no YAML")
	}
}

func TestExpandHome(t *testing.T) {
	got, err := ExpandHome("/abs/path.db")
	if err != nil || got != "/abs/path.db" {
		t.Errorf("ExpandHome(abs) = %q, %v", got, err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err = ExpandHome("~/.blockfall/scores.db")
	if err != nil {
		t.Fatalf("ExpandHome: %v", err)
	}
	if got != filepath.Join(home, ".blockfall", "scores.db") {
		t.Errorf("ExpandHome = %q", got)
	}
}
