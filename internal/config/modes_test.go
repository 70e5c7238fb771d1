package config

import (
	"os"
	"path/filepath"
	"testing"

	"portfolio-chat/internal/models"
)

func TestLoadModesConfig_Success(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "modes.yaml")

	configContent := `default_mode: engineer
welcome: "Hello there."
modes:
  recruiter:
    label: "Recruiter"
    description: "Summaries"
    show_scores: false
  engineer:
    label: "Engineer"
    description: "Deep dives"
    show_scores: true
  ama:
    label: "AMA"
    description: "Q&A"
    show_scores: true
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	os.Setenv("MODES_CONFIG_PATH", configPath)
	defer os.Unsetenv("MODES_CONFIG_PATH")

	cfg, err := LoadModesConfig()
	if err != nil {
		t.Fatalf("LoadModesConfig failed: %v", err)
	}

	if cfg.DefaultMode != models.ModeEngineer {
		t.Errorf("expected default mode engineer, got %s", cfg.DefaultMode)
	}
	if cfg.Welcome != "Hello there." {
		t.Errorf("unexpected welcome text %q", cfg.Welcome)
	}
	if cfg.Profile(models.ModeRecruiter).ShowScores {
		t.Error("recruiter profile should hide scores")
	}
	if !cfg.Profile(models.ModeEngineer).ShowScores {
		t.Error("engineer profile should show scores")
	}
}

func TestLoadModesConfig_MissingFileUsesDefaults(t *testing.T) {
	os.Setenv("MODES_CONFIG_PATH", filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	defer os.Unsetenv("MODES_CONFIG_PATH")

	cfg, err := LoadModesConfig()
	if err != nil {
		t.Fatalf("missing config file must fall back to defaults: %v", err)
	}
	if cfg.DefaultMode != models.ModeAMA {
		t.Errorf("expected default mode ama, got %s", cfg.DefaultMode)
	}
	if len(cfg.Modes) != 3 {
		t.Errorf("expected 3 built-in mode profiles, got %d", len(cfg.Modes))
	}
}

func TestLoadModesConfig_InvalidDefaultMode(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "modes.yaml")

	if err := os.WriteFile(configPath, []byte("default_mode: pirate\n"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	os.Setenv("MODES_CONFIG_PATH", configPath)
	defer os.Unsetenv("MODES_CONFIG_PATH")

	if _, err := LoadModesConfig(); err == nil {
		t.Fatal("expected validation error for unknown default mode")
	}
}

func TestModesConfig_ProfileFallback(t *testing.T) {
	cfg := defaultModesConfig()
	delete(cfg.Modes, models.ModeAMA)

	profile := cfg.Profile(models.ModeAMA)
	if profile.Label != "ama" {
		t.Errorf("expected bare fallback label, got %q", profile.Label)
	}
	if !profile.ShowScores {
		t.Error("fallback profile should show scores")
	}
}
