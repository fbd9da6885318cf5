package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yogeswararao/trail-explorer/internal/domain"
)

// DefaultPath is the config file name looked up in the working directory
// when TRAILEXPLORER_CONFIG is not set.
const DefaultPath = "trailexplorer.json"

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "TRAILEXPLORER_CONFIG"

// marshalIndent and writeFile are used by WriteDefault and Save; tests may replace to force errors.
var (
	marshalIndent = json.MarshalIndent
	writeFile     = os.WriteFile
)

// Default returns the built-in configuration.
func Default() *domain.Config {
	return &domain.Config{
		Overpass: domain.OverpassConfig{
			URL:              "https://overpass-api.de/api/interpreter",
			QueryTimeoutSec:  30,
			ClientTimeoutSec: 60,
			MaxTrailsDisplay: 50,
			CacheTTLMinutes:  60,
		},
		LLM: domain.LLMConfig{
			Provider:  "scripted",
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 2000,
		},
		Orchestrator: domain.OrchestratorConfig{MaxRounds: 10},
		Infra:        domain.InfraConfig{LogFormat: "text", LogLevel: "info"},
		Retry: domain.RetryConfig{
			MaxRetries:     3,
			InitialBackoff: 500,
			MaxBackoff:     30000,
			Multiplier:     2,
		},
	}
}

// ResolvePath returns the config file location: the TRAILEXPLORER_CONFIG
// environment variable when set, otherwise DefaultPath.
func ResolvePath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return filepath.Clean(p)
	}
	return DefaultPath
}

// WriteDefault writes the default Config to path. Parent directories are not created.
func WriteDefault(path string) error {
	data, err := marshalIndent(Default(), "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, data, 0644)
}

// Load reads path, unmarshals into domain.Config, fills unset fields from the
// defaults, and validates the result. Returns error if the file is missing,
// is invalid JSON, or fails validation.
func Load(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	c := Default()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config parse: %w", err)
	}
	applyDefaults(c)
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// applyDefaults fills zero-valued fields that have no meaningful zero.
func applyDefaults(c *domain.Config) {
	d := Default()
	if c.Overpass.URL == "" {
		c.Overpass.URL = d.Overpass.URL
	}
	if c.Overpass.QueryTimeoutSec <= 0 {
		c.Overpass.QueryTimeoutSec = d.Overpass.QueryTimeoutSec
	}
	if c.Overpass.ClientTimeoutSec <= 0 {
		c.Overpass.ClientTimeoutSec = d.Overpass.ClientTimeoutSec
	}
	if c.Overpass.MaxTrailsDisplay <= 0 {
		c.Overpass.MaxTrailsDisplay = d.Overpass.MaxTrailsDisplay
	}
	if c.Overpass.CacheTTLMinutes <= 0 {
		c.Overpass.CacheTTLMinutes = d.Overpass.CacheTTLMinutes
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = d.LLM.Provider
	}
	if c.LLM.Model == "" {
		c.LLM.Model = d.LLM.Model
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = d.LLM.MaxTokens
	}
	if c.Orchestrator.MaxRounds <= 0 {
		c.Orchestrator.MaxRounds = d.Orchestrator.MaxRounds
	}
	if c.Infra.LogFormat == "" {
		c.Infra.LogFormat = d.Infra.LogFormat
	}
	if c.Infra.LogLevel == "" {
		c.Infra.LogLevel = d.Infra.LogLevel
	}
}

// Validate checks cross-field constraints the zero-fill pass cannot express.
func Validate(c *domain.Config) error {
	if c == nil {
		return fmt.Errorf("config validate: nil config")
	}
	if c.Overpass.ClientTimeoutSec <= c.Overpass.QueryTimeoutSec {
		return fmt.Errorf("config validate: client timeout (%ds) must exceed query timeout (%ds)",
			c.Overpass.ClientTimeoutSec, c.Overpass.QueryTimeoutSec)
	}
	switch c.LLM.Provider {
	case "anthropic", "scripted":
	default:
		return fmt.Errorf("config validate: unknown llm provider %q", c.LLM.Provider)
	}
	switch c.Infra.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("config validate: unknown log format %q", c.Infra.LogFormat)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("config validate: maxRetries must not be negative")
	}
	return nil
}

// Save writes cfg to path as JSON, creating parent directories as needed.
func Save(path string, cfg *domain.Config) error {
	if cfg == nil {
		return fmt.Errorf("config save: nil config")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("config save mkdir: %w", err)
	}
	data, err := marshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config save marshal: %w", err)
	}
	if err := writeFile(path, data, 0644); err != nil {
		return fmt.Errorf("config save write: %w", err)
	}
	return nil
}
