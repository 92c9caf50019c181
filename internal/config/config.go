// Package config provides the configuration schema, loader and defaults for
// the vidscribe pipeline.
package config

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Backend selects which transcription service handles a request.
type Backend string

const (
	// BackendAPI sends audio to the remote transcription API.
	BackendAPI Backend = "api"

	// BackendLocal runs a whisper model on this machine.
	BackendLocal Backend = "local"

	// BackendAuto prefers the API when a credential is configured and falls
	// back to local transcription when the API fails.
	BackendAuto Backend = "auto"
)

// IsValid reports whether b is a recognised backend.
func (b Backend) IsValid() bool {
	switch b {
	case BackendAPI, BackendLocal, BackendAuto:
		return true
	}
	return false
}

// ModelSize selects the local whisper model weights.
type ModelSize string

const (
	ModelTiny   ModelSize = "tiny"
	ModelBase   ModelSize = "base"
	ModelSmall  ModelSize = "small"
	ModelMedium ModelSize = "medium"
	ModelLarge  ModelSize = "large"
)

// IsValid reports whether m is a recognised model size.
func (m ModelSize) IsValid() bool {
	switch m {
	case ModelTiny, ModelBase, ModelSmall, ModelMedium, ModelLarge:
		return true
	}
	return false
}

// Config is the root configuration structure for vidscribe.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	// OutputDir is the root under which per-video output directories are
	// created.
	OutputDir string `yaml:"output_dir"`

	// Backend picks the transcription backend for this run.
	Backend Backend `yaml:"backend"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// KeepAudio copies the downloaded audio file into the output directory
	// instead of deleting it with the temp dir.
	KeepAudio bool `yaml:"keep_audio"`

	// MetricsListen is the address for the /metrics and health endpoints
	// (e.g., "127.0.0.1:9090"). Empty disables the listener.
	MetricsListen string `yaml:"metrics_listen"`

	// Vocab lists expected terms (proper nouns, jargon) used to correct
	// recognition output.
	Vocab []string `yaml:"vocab"`

	API     APIConfig     `yaml:"api"`
	Local   LocalConfig   `yaml:"local"`
	Summary SummaryConfig `yaml:"summary"`
	Tools   ToolsConfig   `yaml:"tools"`
}

// APIConfig configures the remote transcription backend.
type APIConfig struct {
	// Key authenticates against the transcription API. Usually supplied via
	// the OPENAI_API_KEY environment variable rather than the file.
	Key string `yaml:"key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the built-in default.
	BaseURL string `yaml:"base_url"`

	// Model overrides the transcription model (default whisper-1).
	Model string `yaml:"model"`

	// SizeLimitMB caps uploads. Larger files are compressed once; if still
	// over the cap the API path fails rather than truncate.
	SizeLimitMB int64 `yaml:"size_limit_mb"`
}

// LocalConfig configures the local whisper backend.
type LocalConfig struct {
	// ModelSize picks the whisper weights (tiny, base, small, medium, large).
	ModelSize ModelSize `yaml:"model_size"`

	// ModelsDir holds ggml-<size>.bin weight files.
	ModelsDir string `yaml:"models_dir"`

	// Language is the recognition language (ISO 639-1).
	Language string `yaml:"language"`

	// ChunkMinutes is the window length for splitting very large downloads.
	ChunkMinutes int `yaml:"chunk_minutes"`

	// ChunkThresholdMB is the file size above which local transcription runs
	// chunked. Zero disables chunking.
	ChunkThresholdMB int64 `yaml:"chunk_threshold_mb"`
}

// SummaryConfig configures the optional transcript summarization step.
type SummaryConfig struct {
	// Enabled produces summary.txt alongside the transcript files.
	Enabled bool `yaml:"enabled"`

	// Provider is the completion provider name (e.g., "openai", "ollama").
	Provider string `yaml:"provider"`

	// Model is the completion model used to summarize.
	Model string `yaml:"model"`

	// APIKey overrides api.key for the summary provider.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the summary provider's default endpoint.
	BaseURL string `yaml:"base_url"`
}

// ToolsConfig locates the external binaries the pipeline shells out to.
type ToolsConfig struct {
	// FFmpeg is the ffmpeg binary path or name resolved via PATH.
	FFmpeg string `yaml:"ffmpeg"`

	// YTDLP is the yt-dlp binary path or name resolved via PATH.
	YTDLP string `yaml:"ytdlp"`
}

// DefaultConfig returns the documented defaults. Loading overlays the YAML
// file on top of these.
func DefaultConfig() *Config {
	return &Config{
		OutputDir: "./outputs",
		Backend:   BackendLocal,
		LogLevel:  LogInfo,
		API: APIConfig{
			SizeLimitMB: 25,
		},
		Local: LocalConfig{
			ModelSize:        ModelBase,
			ModelsDir:        "./models",
			Language:         "en",
			ChunkMinutes:     10,
			ChunkThresholdMB: 100,
		},
		Summary: SummaryConfig{
			Provider: "openai",
			Model:    "gpt-3.5-turbo",
		},
		Tools: ToolsConfig{
			FFmpeg: "ffmpeg",
			YTDLP:  "yt-dlp",
		},
	}
}
