// Package config loads and validates PhiloMind configuration.
// Config lives in <home>/config.yaml where home defaults to ~/.philomind
// and can be overridden with PHILOMIND_HOME.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all PhiloMind configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Gemini analysis configuration
	Gemini GeminiConfig `yaml:"gemini"`

	// Share card rendering and capture
	ShareCard ShareCardConfig `yaml:"share_card"`

	// TUI behavior
	UI UIConfig `yaml:"ui"`

	// Local persistence
	Storage StorageConfig `yaml:"storage"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GeminiConfig configures the analysis client.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// RequestTimeout returns the analysis request timeout.
func (c GeminiConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// ShareCardConfig configures share card dimensions and the capture budget.
// The capture path makes a high-fidelity attempt and, on failure, exactly
// one degraded retry; each attempt has its own time budget.
type ShareCardConfig struct {
	Width             int     `yaml:"width"`
	Height            int     `yaml:"height"`
	SettleDelayMs     int     `yaml:"settle_delay_ms"`
	PrimaryTimeoutMs  int     `yaml:"primary_timeout_ms"`
	FallbackTimeoutMs int     `yaml:"fallback_timeout_ms"`
	PrimaryScale      float64 `yaml:"primary_scale"`
	FallbackScale     float64 `yaml:"fallback_scale"`
	Background        string  `yaml:"background"`
	AppURL            string  `yaml:"app_url"`
}

// GetWidth returns the card width in pixels.
func (c ShareCardConfig) GetWidth() int {
	if c.Width <= 0 {
		return 1200
	}
	return c.Width
}

// GetHeight returns the card height in pixels.
func (c ShareCardConfig) GetHeight() int {
	if c.Height <= 0 {
		return 630
	}
	return c.Height
}

// SettleDelay returns the pre-capture settle delay.
func (c ShareCardConfig) SettleDelay() time.Duration {
	if c.SettleDelayMs <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

// PrimaryTimeout returns the high-fidelity attempt budget.
func (c ShareCardConfig) PrimaryTimeout() time.Duration {
	if c.PrimaryTimeoutMs <= 0 {
		return 2500 * time.Millisecond
	}
	return time.Duration(c.PrimaryTimeoutMs) * time.Millisecond
}

// FallbackTimeout returns the degraded retry budget.
func (c ShareCardConfig) FallbackTimeout() time.Duration {
	if c.FallbackTimeoutMs <= 0 {
		return 1500 * time.Millisecond
	}
	return time.Duration(c.FallbackTimeoutMs) * time.Millisecond
}

// GetPrimaryScale returns the device scale for the first attempt.
func (c ShareCardConfig) GetPrimaryScale() float64 {
	if c.PrimaryScale <= 0 {
		return 2
	}
	return c.PrimaryScale
}

// GetFallbackScale returns the device scale for the retry.
func (c ShareCardConfig) GetFallbackScale() float64 {
	if c.FallbackScale <= 0 {
		return 1
	}
	return c.FallbackScale
}

// UIConfig configures TUI timing.
type UIConfig struct {
	TransitionDelayMs int    `yaml:"transition_delay_ms"`
	CopyNoticeMs      int    `yaml:"copy_notice_ms"`
	Theme             string `yaml:"theme"` // auto, light, dark
}

// TransitionDelay returns the intro-to-questionnaire transition delay.
func (c UIConfig) TransitionDelay() time.Duration {
	if c.TransitionDelayMs <= 0 {
		return 800 * time.Millisecond
	}
	return time.Duration(c.TransitionDelayMs) * time.Millisecond
}

// CopyNotice returns how long the clipboard confirmation stays visible.
func (c UIConfig) CopyNotice() time.Duration {
	if c.CopyNoticeMs <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.CopyNoticeMs) * time.Millisecond
}

// StorageConfig configures local persistence.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "PhiloMind",
		Version: "1.0.0",

		Gemini: GeminiConfig{
			Model:   "gemini-2.5-flash",
			Timeout: "60s",
		},

		ShareCard: ShareCardConfig{
			Width:             1200,
			Height:            630,
			SettleDelayMs:     100,
			PrimaryTimeoutMs:  2500,
			FallbackTimeoutMs: 1500,
			PrimaryScale:      2,
			FallbackScale:     1,
			Background:        "#1e293b",
			AppURL:            "https://philomind.app",
		},

		UI: UIConfig{
			TransitionDelayMs: 800,
			CopyNoticeMs:      2000,
			Theme:             "auto",
		},

		Storage: StorageConfig{
			DatabasePath: "philomind.db",
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Home returns the PhiloMind home directory, creating it if needed.
func Home() (string, error) {
	if h := os.Getenv("PHILOMIND_HOME"); h != "" {
		if err := os.MkdirAll(h, 0755); err != nil {
			return "", fmt.Errorf("failed to create home directory: %w", err)
		}
		return h, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	h := filepath.Join(userHome, ".philomind")
	if err := os.MkdirAll(h, 0755); err != nil {
		return "", fmt.Errorf("failed to create home directory: %w", err)
	}
	return h, nil
}

// Load reads config.yaml from the given home directory, falling back to
// defaults when the file is absent. Environment overrides are applied last.
func Load(home string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(home, "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if !filepath.IsAbs(cfg.Storage.DatabasePath) {
		cfg.Storage.DatabasePath = filepath.Join(home, cfg.Storage.DatabasePath)
	}

	return cfg, nil
}

// Save writes the configuration back to <home>/config.yaml.
func Save(home string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(home, "config.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides layers environment variables over file values.
// GEMINI_API_KEY always wins so keys never need to live on disk.
func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.APIKey = key
	}
	if model := os.Getenv("PHILOMIND_MODEL"); model != "" {
		cfg.Gemini.Model = model
	}
	if theme := os.Getenv("PHILOMIND_THEME"); theme != "" {
		cfg.UI.Theme = theme
	}
}
