// Package transcribe routes audio through a speech-to-text backend and
// stitches chunked runs back into a single result.
//
// The [Selector] implements the backend policy: "api" uploads to the hosted
// service and enforces its size ceiling, "local" runs a whisper model on
// this machine, and "auto" prefers the api when a credential is configured
// but falls back to the local engine on any api failure. Chunked runs
// transcribe each chunk independently and merge the pieces with cumulative
// timestamp offsets.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/vidscribe/vidscribe/internal/config"
	"github.com/vidscribe/vidscribe/internal/media"
	"github.com/vidscribe/vidscribe/internal/observe"
	"github.com/vidscribe/vidscribe/pkg/provider/stt"
)

const (
	// DefaultCeiling is the hosted API upload limit in bytes.
	DefaultCeiling = 25 << 20

	// minAudioBytes is the smallest file size accepted as plausible audio.
	// Anything below it is rejected as corrupt before a backend is invoked.
	minAudioBytes = 1000
)

// Compressor re-encodes an asset to fit under a size ceiling. A degraded
// implementation may return the asset unchanged; the Selector re-checks the
// ceiling afterwards.
type Compressor interface {
	Compress(ctx context.Context, asset media.Asset, ceiling int64) media.Asset
}

// Selector routes transcription requests to the hosted API or the local
// whisper engine. It is cheap to construct; build one per pipeline run with
// the run's language and reuse the long-lived providers underneath.
type Selector struct {
	api        stt.Provider
	local      stt.Provider
	compressor Compressor
	ceiling    int64
	chunkDur   time.Duration
	language   string
	metrics    *observe.Metrics
}

// Option configures a [Selector].
type Option func(*Selector)

// WithAPI sets the hosted API provider. Leaving it nil means no credential
// is configured: explicit api requests fail with [ErrMissingCredential] and
// auto goes straight to the local engine.
func WithAPI(p stt.Provider) Option {
	return func(s *Selector) { s.api = p }
}

// WithCompressor sets the compressor used to shrink oversized assets before
// an api upload.
func WithCompressor(c Compressor) Option {
	return func(s *Selector) { s.compressor = c }
}

// WithCeiling overrides the api upload ceiling in bytes. Zero disables the
// size check entirely.
func WithCeiling(n int64) Option {
	return func(s *Selector) { s.ceiling = n }
}

// WithChunkDuration sets the configured chunk length. It is assumed as the
// duration of chunks whose transcription reports none, and of skipped
// chunks, when accumulating timestamp offsets.
func WithChunkDuration(d time.Duration) Option {
	return func(s *Selector) {
		if d > 0 {
			s.chunkDur = d
		}
	}
}

// WithLanguage sets the recognition language passed to both backends.
func WithLanguage(lang string) Option {
	return func(s *Selector) { s.language = lang }
}

// WithMetrics overrides the metrics instance, mainly for tests.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Selector) { s.metrics = m }
}

// NewSelector builds a Selector around the local engine provider. local may
// be nil when only the api backend will ever be requested; local requests
// then fail with [ErrBackendFailure].
func NewSelector(local stt.Provider, opts ...Option) *Selector {
	s := &Selector{
		local:    local,
		ceiling:  DefaultCeiling,
		chunkDur: media.DefaultChunkDuration,
		metrics:  observe.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Transcribe produces a transcription of asset using the requested backend.
// The hint selects the local model weights and is ignored by the api path,
// whose model is fixed at provider construction.
func (s *Selector) Transcribe(ctx context.Context, asset media.Asset, backend config.Backend, hint config.ModelSize) (*stt.Result, error) {
	fi, err := os.Stat(asset.Path)
	if err != nil || fi.IsDir() {
		return nil, fmt.Errorf("transcribe: %q: %w", asset.Path, ErrFileNotFound)
	}
	if fi.Size() < minAudioBytes {
		return nil, fmt.Errorf("transcribe: %q is only %d bytes: %w", asset.Path, fi.Size(), ErrCorruptAudio)
	}
	asset.Size = fi.Size()
	s.metrics.RecordAudioBytes(ctx, asset.Size)

	switch backend {
	case config.BackendAPI:
		return s.transcribeAPI(ctx, asset)
	case config.BackendLocal:
		return s.transcribeLocal(ctx, asset, hint)
	case config.BackendAuto:
		return s.transcribeAuto(ctx, asset, hint)
	default:
		return nil, fmt.Errorf("transcribe: backend %q: %w", backend, ErrUnknownBackend)
	}
}

// transcribeAPI uploads the asset to the hosted service, compressing it
// first when it exceeds the ceiling. Compression is attempted once; if the
// result is still over the ceiling the call fails rather than truncating.
func (s *Selector) transcribeAPI(ctx context.Context, asset media.Asset) (*stt.Result, error) {
	if s.api == nil {
		return nil, fmt.Errorf("transcribe: api backend: %w", ErrMissingCredential)
	}

	if s.ceiling > 0 && asset.Size > s.ceiling {
		slog.Info("audio exceeds api size limit, compressing",
			"path", asset.Path, "size", asset.Size, "limit", s.ceiling)
		asset = s.compress(ctx, asset)
		if asset.Size > s.ceiling {
			return nil, fmt.Errorf("transcribe: %q is %d bytes after compression, over the %d byte api limit (try the local backend): %w",
				asset.Path, asset.Size, s.ceiling, ErrSizeLimitExceeded)
		}
	}

	res, err := s.api.Transcribe(ctx, asset.Path, stt.Options{Language: s.language})
	if err != nil {
		s.metrics.RecordTranscription(ctx, "api", "error")
		return nil, fmt.Errorf("transcribe: api backend: %w: %w", ErrBackendFailure, err)
	}
	s.metrics.RecordTranscription(ctx, "api", "ok")
	return res, nil
}

// transcribeLocal runs the whisper engine with weights sized by hint.
func (s *Selector) transcribeLocal(ctx context.Context, asset media.Asset, hint config.ModelSize) (*stt.Result, error) {
	if s.local == nil {
		return nil, fmt.Errorf("transcribe: local engine not configured: %w", ErrBackendFailure)
	}

	res, err := s.local.Transcribe(ctx, asset.Path, stt.Options{Model: string(hint), Language: s.language})
	if err != nil {
		s.metrics.RecordTranscription(ctx, "local", "error")
		return nil, fmt.Errorf("transcribe: local backend: %w: %w", ErrBackendFailure, err)
	}
	s.metrics.RecordTranscription(ctx, "local", "ok")
	return res, nil
}

// transcribeAuto prefers the api and falls back to the local engine on any
// api failure, including a rejected size limit. Without a credential it uses
// the local engine directly, which is not a failure.
func (s *Selector) transcribeAuto(ctx context.Context, asset media.Asset, hint config.ModelSize) (*stt.Result, error) {
	if s.api == nil {
		slog.Debug("no api credential configured, using local engine", "path", asset.Path)
		return s.transcribeLocal(ctx, asset, hint)
	}

	res, err := s.transcribeAPI(ctx, asset)
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	slog.Warn("api transcription failed, falling back to local engine",
		"path", asset.Path, "error", err)
	s.metrics.RecordFallback(ctx)
	return s.transcribeLocal(ctx, asset, hint)
}

func (s *Selector) compress(ctx context.Context, asset media.Asset) media.Asset {
	if s.compressor == nil {
		return asset
	}
	return s.compressor.Compress(ctx, asset, s.ceiling)
}
