// Package app wires the vidscribe subsystems into a running pipeline.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run (or RunFile) executes one transcription pass, and
// Shutdown tears everything down in order.
//
// For testing, inject mock implementations via functional options
// (WithAcquirer, WithTranscriber, etc.). When an option is not provided,
// New creates real implementations from the config.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/vidscribe/vidscribe/internal/acquire"
	"github.com/vidscribe/vidscribe/internal/capability"
	"github.com/vidscribe/vidscribe/internal/config"
	"github.com/vidscribe/vidscribe/internal/format"
	"github.com/vidscribe/vidscribe/internal/health"
	"github.com/vidscribe/vidscribe/internal/media"
	"github.com/vidscribe/vidscribe/internal/observe"
	"github.com/vidscribe/vidscribe/internal/outfile"
	"github.com/vidscribe/vidscribe/internal/summary"
	"github.com/vidscribe/vidscribe/internal/transcribe"
	"github.com/vidscribe/vidscribe/internal/transcript"
	"github.com/vidscribe/vidscribe/pkg/provider/llm/anyllm"
	"github.com/vidscribe/vidscribe/pkg/provider/stt"
	"github.com/vidscribe/vidscribe/pkg/provider/stt/openai"
	"github.com/vidscribe/vidscribe/pkg/provider/stt/whisper"
)

// Transcriber is the backend-selection surface the pipeline drives.
// *transcribe.Selector is the production implementation.
type Transcriber interface {
	Transcribe(ctx context.Context, asset media.Asset, backend config.Backend, hint config.ModelSize) (*stt.Result, error)
	TranscribeChunked(ctx context.Context, chunks []media.Asset, backend config.Backend, hint config.ModelSize) (*stt.Result, error)
}

// Splitter cuts an oversized recording into sequential windows.
type Splitter interface {
	Split(ctx context.Context, asset media.Asset, chunkDur time.Duration) []media.Asset
}

// Summarizer condenses a finished transcript.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Title is the video title (or the input file's base name).
	Title string

	// OutputDir is the per-run directory holding every written artifact.
	OutputDir string

	// Files lists the transcript files written into OutputDir.
	Files format.Files

	// SummaryPath is the written summary file, empty when summarization is
	// disabled, produced nothing, or failed.
	SummaryPath string

	// AudioPath is the preserved audio copy, empty unless keep_audio is set.
	AudioPath string

	// Transcript is the corrected transcription result.
	Transcript *stt.Result

	// Corrections is the number of vocabulary corrections applied.
	Corrections int
}

// App owns all subsystem lifetimes and orchestrates the vidscribe pipeline.
type App struct {
	cfg *config.Config

	// Subsystems — initialised in New, torn down in Shutdown.
	acquirer    acquire.Acquirer
	splitter    Splitter
	transcriber Transcriber
	corrector   *transcript.Corrector
	summarizer  Summarizer
	metrics     *observe.Metrics

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithAcquirer injects an audio acquirer instead of creating a yt-dlp one.
func WithAcquirer(ac acquire.Acquirer) Option {
	return func(a *App) { a.acquirer = ac }
}

// WithTranscriber injects a transcriber instead of building the backend
// selector from config.
func WithTranscriber(t Transcriber) Option {
	return func(a *App) { a.transcriber = t }
}

// WithSplitter injects a splitter instead of creating an ffmpeg one.
func WithSplitter(s Splitter) Option {
	return func(a *App) { a.splitter = s }
}

// WithSummarizer injects a summarizer instead of building one from config.
func WithSummarizer(s Summarizer) Option {
	return func(a *App) { a.summarizer = s }
}

// WithMetrics injects a metrics recorder instead of the process default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New creates an App by wiring all subsystems together. Use Option functions
// to inject test doubles for any subsystem.
//
// New is cheap: external binaries are not probed (Run does that per pass)
// and whisper weights load lazily on first use.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	// ── 1. Acquirer ──────────────────────────────────────────────────────
	if a.acquirer == nil {
		a.acquirer = acquire.NewYTDLP(cfg.Tools.YTDLP)
	}

	// ── 2. Media toolchain ───────────────────────────────────────────────
	if a.splitter == nil {
		a.splitter = media.NewSplitter(cfg.Tools.FFmpeg)
	}

	// ── 3. Transcription backends ────────────────────────────────────────
	if err := a.initTranscriber(); err != nil {
		return nil, fmt.Errorf("app: init transcriber: %w", err)
	}

	// ── 4. Vocabulary corrector ──────────────────────────────────────────
	if len(cfg.Vocab) > 0 {
		a.corrector = transcript.New(cfg.Vocab)
	}

	// ── 5. Summarizer ────────────────────────────────────────────────────
	if err := a.initSummarizer(); err != nil {
		return nil, fmt.Errorf("app: init summarizer: %w", err)
	}

	return a, nil
}

// ─── Init helpers ────────────────────────────────────────────────────────────

// initTranscriber builds the backend selector: the local whisper engine,
// plus the hosted API path when a credential is configured.
func (a *App) initTranscriber() error {
	if a.transcriber != nil {
		return nil // injected
	}

	local, err := whisper.New(a.cfg.Local.ModelsDir,
		whisper.WithLanguage(a.cfg.Local.Language),
		whisper.WithFFmpegPath(a.cfg.Tools.FFmpeg),
	)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, local.Close)

	selOpts := []transcribe.Option{
		transcribe.WithCompressor(media.NewCompressor(a.cfg.Tools.FFmpeg)),
		transcribe.WithCeiling(a.cfg.API.SizeLimitMB << 20),
		transcribe.WithChunkDuration(time.Duration(a.cfg.Local.ChunkMinutes) * time.Minute),
		transcribe.WithLanguage(a.cfg.Local.Language),
		transcribe.WithMetrics(a.metrics),
	}
	if a.cfg.API.Key != "" {
		var apiOpts []openai.Option
		if a.cfg.API.BaseURL != "" {
			apiOpts = append(apiOpts, openai.WithBaseURL(a.cfg.API.BaseURL))
		}
		api, err := openai.New(a.cfg.API.Key, a.cfg.API.Model, apiOpts...)
		if err != nil {
			return err
		}
		selOpts = append(selOpts, transcribe.WithAPI(api))
	}

	a.transcriber = transcribe.NewSelector(local, selOpts...)
	return nil
}

// initSummarizer builds the completion provider for the summary step when
// enabled. The summary api_key falls back to the transcription api key.
func (a *App) initSummarizer() error {
	if a.summarizer != nil || !a.cfg.Summary.Enabled {
		return nil
	}

	var opts []anyllmlib.Option
	if key := a.cfg.Summary.APIKey; key != "" {
		opts = append(opts, anyllmlib.WithAPIKey(key))
	} else if a.cfg.API.Key != "" {
		opts = append(opts, anyllmlib.WithAPIKey(a.cfg.API.Key))
	}
	if a.cfg.Summary.BaseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(a.cfg.Summary.BaseURL))
	}

	p, err := anyllm.New(a.cfg.Summary.Provider, a.cfg.Summary.Model, opts...)
	if err != nil {
		return err
	}
	a.summarizer = summary.New(p)
	return nil
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run downloads the audio of url into a temporary directory and feeds it
// through the pipeline. The temporary directory is removed afterwards; with
// keep_audio set, the audio file is copied into the output directory first.
func (a *App) Run(ctx context.Context, url string) (*Result, error) {
	if !acquire.ValidURL(url) {
		return nil, fmt.Errorf("app: %q: %w", url, acquire.ErrInvalidURL)
	}
	if err := capability.Detect(a.cfg).Verify(a.cfg.Backend, true); err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp("", "vidscribe-*")
	if err != nil {
		return nil, fmt.Errorf("app: create work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			slog.Warn("removing work dir failed", "dir", workDir, "error", err)
		}
	}()

	start := time.Now()
	audio, err := a.acquirer.Acquire(ctx, url, workDir)
	if err != nil {
		return nil, err
	}
	a.metrics.RecordStage(ctx, "acquire", time.Since(start))

	return a.process(ctx, audio, a.cfg.KeepAudio)
}

// RunFile feeds an already-downloaded audio file through the pipeline. The
// input file is left in place; chunk files created while splitting are
// cleaned up.
func (a *App) RunFile(ctx context.Context, path string) (*Result, error) {
	if err := capability.Detect(a.cfg).Verify(a.cfg.Backend, false); err != nil {
		return nil, err
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return a.process(ctx, acquire.Audio{Path: path, Title: title}, false)
}

// process is the shared tail of Run and RunFile: transcribe, correct,
// write artifacts, summarize.
func (a *App) process(ctx context.Context, audio acquire.Audio, keep bool) (*Result, error) {
	asset, err := media.Stat(audio.Path)
	if err != nil {
		return nil, err
	}

	res, err := a.transcribeAsset(ctx, asset)
	if err != nil {
		return nil, err
	}

	var corrections int
	if a.corrector != nil {
		corrected, applied := a.corrector.Correct(res)
		res = corrected
		corrections = len(applied)
		for _, c := range applied {
			slog.Debug("vocabulary correction",
				"from", c.Original, "to", c.Corrected, "confidence", c.Confidence)
		}
		if corrections > 0 {
			slog.Info("vocabulary corrections applied", "count", corrections)
		}
	}

	dir, err := outfile.UniqueDir(a.cfg.OutputDir, outfile.SafeTitle(audio.Title))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	files, err := format.WriteAll(dir, res)
	if err != nil {
		return nil, err
	}
	a.metrics.RecordStage(ctx, "format", time.Since(start))

	out := &Result{
		Title:       audio.Title,
		OutputDir:   dir,
		Files:       files,
		Transcript:  res,
		Corrections: corrections,
	}

	if a.summarizer != nil {
		out.SummaryPath = a.summarize(ctx, dir, res.Text)
	}

	if keep {
		dst, err := copyInto(audio.Path, dir)
		if err != nil {
			slog.Warn("keeping audio failed", "error", err)
		} else {
			out.AudioPath = dst
		}
	}

	slog.Info("transcription complete",
		"title", audio.Title,
		"dir", dir,
		"segments", len(res.Segments),
		"corrections", corrections,
	)
	return out, nil
}

// transcribeAsset picks between single-file and chunked transcription.
// Files above the chunk threshold are split unless the api backend was
// requested, whose own size handling is compression against the upload
// ceiling.
func (a *App) transcribeAsset(ctx context.Context, asset media.Asset) (*stt.Result, error) {
	backend, hint := a.cfg.Backend, a.cfg.Local.ModelSize

	threshold := a.cfg.Local.ChunkThresholdMB << 20
	if threshold > 0 && asset.Size > threshold && backend != config.BackendAPI {
		slog.Info("audio above chunk threshold, splitting",
			"size", asset.Size, "threshold", threshold)

		start := time.Now()
		chunks := a.splitter.Split(ctx, asset, time.Duration(a.cfg.Local.ChunkMinutes)*time.Minute)
		a.metrics.RecordStage(ctx, "split", time.Since(start))

		if len(chunks) > 1 {
			defer discardChunks(chunks, asset.Path)

			start = time.Now()
			res, err := a.transcriber.TranscribeChunked(ctx, chunks, backend, hint)
			a.metrics.RecordStage(ctx, "transcribe", time.Since(start))
			return res, err
		}
		// Split degraded to the whole file; fall through unchunked.
		asset = chunks[0]
	}

	start := time.Now()
	res, err := a.transcriber.Transcribe(ctx, asset, backend, hint)
	a.metrics.RecordStage(ctx, "transcribe", time.Since(start))
	return res, err
}

// summarize writes summary.txt into dir. Summary failures are logged and
// swallowed: the transcript files are already on disk and remain the
// primary product.
func (a *App) summarize(ctx context.Context, dir, text string) string {
	start := time.Now()
	defer func() { a.metrics.RecordStage(ctx, "summarize", time.Since(start)) }()

	s, err := a.summarizer.Summarize(ctx, text)
	if err != nil {
		slog.Warn("summary generation failed, continuing without it", "error", err)
		return ""
	}
	if s == "" {
		return ""
	}

	path := filepath.Join(dir, "summary.txt")
	if err := os.WriteFile(path, []byte(s+"\n"), 0o644); err != nil {
		slog.Warn("writing summary failed", "path", path, "error", err)
		return ""
	}
	slog.Info("summary written", "path", path)
	return path
}

// ─── Observability ───────────────────────────────────────────────────────────

// Observability returns the metrics and health listener for the configured
// metrics_listen address, or nil when the listener is disabled. The caller
// runs it alongside the pipeline.
func (a *App) Observability(version string) *observe.Server {
	if a.cfg.MetricsListen == "" {
		return nil
	}
	h := health.New(version, capability.Checkers(a.cfg)...)
	return observe.NewServer(a.cfg.MetricsListen, a.metrics, h.Register)
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown tears down all subsystems in order. It respects the context
// deadline: if ctx expires before all closers finish, remaining closers are
// skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "error", err)
			}
		}
	})
	return shutdownErr
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// discardChunks removes split chunk files, best effort. src is skipped so a
// fallback entry pointing at the original never deletes the input.
func discardChunks(chunks []media.Asset, src string) {
	for _, c := range chunks {
		if c.Path == src {
			continue
		}
		if err := os.Remove(c.Path); err != nil && !os.IsNotExist(err) {
			slog.Warn("removing chunk failed", "path", c.Path, "error", err)
		}
	}
}

// copyInto copies src into dir keeping its base name and returns the
// destination path.
func copyInto(src, dir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	dst := filepath.Join(dir, filepath.Base(src))
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dst, nil
}
