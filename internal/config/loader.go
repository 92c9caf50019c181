package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidSummaryProviders lists known summary provider names.
// Used by [Validate] to warn about unrecognised provider names.
var ValidSummaryProviders = []string{
	"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq", "llamacpp", "llamafile",
}

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied underneath.
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of [DefaultConfig] and
// validates the result. Useful in tests where configs are constructed from
// string literals. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto cfg. The environment ranks
// above the file: a set OPENAI_API_KEY replaces api.key.
func ApplyEnv(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.API.Key = key
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.OutputDir == "" {
		errs = append(errs, fmt.Errorf("output_dir is required"))
	}
	if cfg.Backend != "" && !cfg.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("backend %q is invalid; valid values: api, local, auto", cfg.Backend))
	}
	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	if cfg.Local.ModelSize != "" && !cfg.Local.ModelSize.IsValid() {
		errs = append(errs, fmt.Errorf("local.model_size %q is invalid; valid values: tiny, base, small, medium, large", cfg.Local.ModelSize))
	}
	if cfg.Local.ChunkMinutes <= 0 {
		errs = append(errs, fmt.Errorf("local.chunk_minutes %d must be positive", cfg.Local.ChunkMinutes))
	}
	if cfg.Local.ChunkThresholdMB < 0 {
		errs = append(errs, fmt.Errorf("local.chunk_threshold_mb %d must not be negative", cfg.Local.ChunkThresholdMB))
	}
	if cfg.API.SizeLimitMB < 0 {
		errs = append(errs, fmt.Errorf("api.size_limit_mb %d must not be negative", cfg.API.SizeLimitMB))
	}

	// Soft issues: the run can start, so warn instead of failing.
	if cfg.Backend == BackendAPI && cfg.API.Key == "" {
		slog.Warn("backend is api but no credential is configured; transcription will fail without OPENAI_API_KEY")
	}
	if cfg.Summary.Enabled && cfg.Summary.Provider != "" && !slices.Contains(ValidSummaryProviders, cfg.Summary.Provider) {
		slog.Warn("unknown summary provider name, may be a typo",
			"name", cfg.Summary.Provider,
			"known", ValidSummaryProviders,
		)
	}

	return errors.Join(errs...)
}
