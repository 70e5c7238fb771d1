package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"portfolio-chat/internal/models"
)

// ModeProfile describes how one interaction mode is presented.
type ModeProfile struct {
	Label       string `yaml:"label"`
	Icon        string `yaml:"icon"`
	Description string `yaml:"description"`
	ShowScores  bool   `yaml:"show_scores"`
}

// ModesConfig holds the interaction-mode presentation profiles and the
// welcome text shown on an empty session.
type ModesConfig struct {
	DefaultMode models.InteractionMode                 `yaml:"default_mode"`
	Welcome     string                                 `yaml:"welcome"`
	Modes       map[models.InteractionMode]ModeProfile `yaml:"modes"`
}

// LoadModesConfig reads the mode profiles from MODES_CONFIG_PATH (default
// configs/modes.yaml). A missing file falls back to the built-in profiles so
// the client runs without any setup.
func LoadModesConfig() (*ModesConfig, error) {
	path := os.Getenv("MODES_CONFIG_PATH")
	if path == "" {
		path = "configs/modes.yaml"
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultModesConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	var cfg ModesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyModeDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyModeDefaults(cfg *ModesConfig) {
	defaults := defaultModesConfig()
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = defaults.DefaultMode
	}
	if cfg.Welcome == "" {
		cfg.Welcome = defaults.Welcome
	}
	if len(cfg.Modes) == 0 {
		cfg.Modes = defaults.Modes
	}
}

func (c *ModesConfig) Validate() error {
	if !models.ValidMode(c.DefaultMode) {
		return fmt.Errorf("default_mode %q is not a known interaction mode", c.DefaultMode)
	}
	for mode, profile := range c.Modes {
		if !models.ValidMode(mode) {
			return fmt.Errorf("mode %q is not a known interaction mode", mode)
		}
		if profile.Label == "" {
			return fmt.Errorf("mode %q has no label", mode)
		}
	}
	return nil
}

// Profile returns the presentation profile for a mode, falling back to a
// bare profile for modes missing from the config.
func (c *ModesConfig) Profile(mode models.InteractionMode) ModeProfile {
	if profile, ok := c.Modes[mode]; ok {
		return profile
	}
	return ModeProfile{Label: string(mode), ShowScores: true}
}

func defaultModesConfig() *ModesConfig {
	return &ModesConfig{
		DefaultMode: models.ModeAMA,
		Welcome:     "Welcome! Ask me about my projects, experience, or technical decisions.",
		Modes: map[models.InteractionMode]ModeProfile{
			models.ModeRecruiter: {Label: "Recruiter", Icon: "💼", Description: "Business-focused summaries", ShowScores: false},
			models.ModeEngineer:  {Label: "Engineer", Icon: "⚙️", Description: "Technical deep dives", ShowScores: true},
			models.ModeAMA:       {Label: "AMA", Icon: "💬", Description: "Conversational Q&A", ShowScores: true},
		},
	}
}
