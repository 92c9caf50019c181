// Package mcpserve exposes the vidscribe pipeline as MCP tools over stdio.
//
// Two tools are served: transcribe_url downloads and transcribes a video,
// transcribe_file transcribes an already-local audio file. Both run the
// same pipeline as the CLI. Backend, model size, language and
// summarization can be overridden per call; everything else comes from the
// server's configuration.
package mcpserve

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vidscribe/vidscribe/internal/app"
	"github.com/vidscribe/vidscribe/internal/config"
)

// shutdownTimeout bounds the per-call pipeline teardown.
const shutdownTimeout = 5 * time.Second

// Pipeline is the run surface the tools drive. *app.App is the production
// implementation.
type Pipeline interface {
	Run(ctx context.Context, url string) (*app.Result, error)
	RunFile(ctx context.Context, path string) (*app.Result, error)
}

// Factory builds a pipeline for one tool call. The returned shutdown
// function is invoked when the call finishes.
type Factory func(cfg *config.Config) (Pipeline, func(context.Context) error, error)

// TranscribeURLInput is the transcribe_url tool input.
type TranscribeURLInput struct {
	URL       string `json:"url" jsonschema:"Video URL to transcribe"`
	Backend   string `json:"backend,omitempty" jsonschema:"Transcription backend: api, local, auto"`
	Model     string `json:"model,omitempty" jsonschema:"Whisper model size: tiny, base, small, medium, large"`
	Language  string `json:"language,omitempty" jsonschema:"Recognition language code, e.g. en"`
	Summarize *bool  `json:"summarize,omitempty" jsonschema:"Also write summary.txt"`
}

// TranscribeFileInput is the transcribe_file tool input.
type TranscribeFileInput struct {
	Path      string `json:"path" jsonschema:"Audio file path to transcribe"`
	Backend   string `json:"backend,omitempty" jsonschema:"Transcription backend: api, local, auto"`
	Model     string `json:"model,omitempty" jsonschema:"Whisper model size: tiny, base, small, medium, large"`
	Language  string `json:"language,omitempty" jsonschema:"Recognition language code, e.g. en"`
	Summarize *bool  `json:"summarize,omitempty" jsonschema:"Also write summary.txt"`
}

// TranscribeOutput is the structured result of both tools.
type TranscribeOutput struct {
	Title           string   `json:"title"`
	OutputDir       string   `json:"output_dir"`
	Text            string   `json:"text"`
	Language        string   `json:"language,omitempty"`
	DurationSeconds float64  `json:"duration_seconds,omitempty"`
	ChunkCount      int      `json:"chunk_count,omitempty"`
	Corrections     int      `json:"corrections,omitempty"`
	SummaryPath     string   `json:"summary_path,omitempty"`
	Files           []string `json:"files"`
}

// Server serves the pipeline tools on stdio.
type Server struct {
	cfg     *config.Config
	version string
	factory Factory
}

// Option configures a [Server].
type Option func(*Server)

// WithFactory substitutes the pipeline factory, for tests.
func WithFactory(f Factory) Option {
	return func(s *Server) { s.factory = f }
}

// New creates a Server around the base configuration. Each tool call builds
// its own pipeline from a copy of cfg with the call's overrides applied, so
// concurrent calls stay isolated.
func New(cfg *config.Config, version string, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		version: version,
		factory: func(cfg *config.Config) (Pipeline, func(context.Context) error, error) {
			a, err := app.New(cfg)
			if err != nil {
				return nil, nil, err
			}
			return a, a.Shutdown, nil
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves the tools on stdio until ctx is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "vidscribe",
		Version: s.version,
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "transcribe_url",
		Description: "Download a video's audio and transcribe it. Writes transcript.txt, transcript.srt and transcript.vtt (plus summary.txt when requested) into a per-video output directory and returns the transcript text.",
	}, s.transcribeURL)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "transcribe_file",
		Description: "Transcribe an audio file that is already on disk. Writes the same transcript files as transcribe_url; the input file is left in place.",
	}, s.transcribeFile)

	slog.Info("mcp server listening on stdio", "version", s.version)
	return srv.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) transcribeURL(ctx context.Context, _ *mcp.CallToolRequest, in TranscribeURLInput) (*mcp.CallToolResult, TranscribeOutput, error) {
	if in.URL == "" {
		return nil, TranscribeOutput{}, fmt.Errorf("url is required")
	}
	cfg, err := s.callConfig(in.Backend, in.Model, in.Language, in.Summarize)
	if err != nil {
		return nil, TranscribeOutput{}, err
	}

	pipe, shutdown, err := s.factory(cfg)
	if err != nil {
		return nil, TranscribeOutput{}, err
	}
	defer closePipeline(shutdown)

	slog.Info("tool call", "tool", "transcribe_url", "url", in.URL, "backend", cfg.Backend)
	res, err := pipe.Run(ctx, in.URL)
	if err != nil {
		return nil, TranscribeOutput{}, err
	}
	return nil, toOutput(res), nil
}

func (s *Server) transcribeFile(ctx context.Context, _ *mcp.CallToolRequest, in TranscribeFileInput) (*mcp.CallToolResult, TranscribeOutput, error) {
	if in.Path == "" {
		return nil, TranscribeOutput{}, fmt.Errorf("path is required")
	}
	cfg, err := s.callConfig(in.Backend, in.Model, in.Language, in.Summarize)
	if err != nil {
		return nil, TranscribeOutput{}, err
	}

	pipe, shutdown, err := s.factory(cfg)
	if err != nil {
		return nil, TranscribeOutput{}, err
	}
	defer closePipeline(shutdown)

	slog.Info("tool call", "tool", "transcribe_file", "path", in.Path, "backend", cfg.Backend)
	res, err := pipe.RunFile(ctx, in.Path)
	if err != nil {
		return nil, TranscribeOutput{}, err
	}
	return nil, toOutput(res), nil
}

// callConfig copies the base configuration and applies one call's
// overrides. The base is never mutated.
func (s *Server) callConfig(backend, model, language string, summarize *bool) (*config.Config, error) {
	cfg := *s.cfg
	if backend != "" {
		b := config.Backend(backend)
		if !b.IsValid() {
			return nil, fmt.Errorf("unknown backend %q (want api, local, or auto)", backend)
		}
		cfg.Backend = b
	}
	if model != "" {
		m := config.ModelSize(model)
		if !m.IsValid() {
			return nil, fmt.Errorf("unknown model size %q (want tiny, base, small, medium, or large)", model)
		}
		cfg.Local.ModelSize = m
	}
	if language != "" {
		cfg.Local.Language = language
	}
	if summarize != nil {
		cfg.Summary.Enabled = *summarize
	}
	return &cfg, nil
}

func closePipeline(shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		slog.Warn("pipeline shutdown failed", "error", err)
	}
}

func toOutput(res *app.Result) TranscribeOutput {
	out := TranscribeOutput{
		Title:       res.Title,
		OutputDir:   res.OutputDir,
		Text:        res.Transcript.Text,
		Language:    res.Transcript.Language,
		ChunkCount:  res.Transcript.ChunkCount,
		Corrections: res.Corrections,
		SummaryPath: res.SummaryPath,
		Files:       []string{res.Files.TXT, res.Files.SRT, res.Files.VTT},
	}
	if d := res.Transcript.Duration; d > 0 {
		out.DurationSeconds = d.Seconds()
	}
	return out
}
