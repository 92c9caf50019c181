// Package whisper provides a local whisper.cpp-backed STT provider using the
// native Go bindings (CGO). The whisper.cpp static library (libwhisper.a) and
// headers (whisper.h) must be available at link time via LIBRARY_PATH and
// C_INCLUDE_PATH environment variables.
//
// Model weights live in a directory of ggml files named by size class
// (ggml-base.bin, ggml-small.bin, ...). A model loads on the first request
// that asks for its size and stays cached for the provider's lifetime; each
// Transcribe creates its own whisper context, so concurrent calls do not
// interfere. Input audio of any container/codec is accepted: it is decoded
// to 16 kHz mono PCM through ffmpeg before inference.
//
// Usage:
//
//	p, err := whisper.New("/models", whisper.WithLanguage("en"))
//	res, err := p.Transcribe(ctx, "talk.m4a", stt.Options{Model: "base"})
//	p.Close()
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/vidscribe/vidscribe/pkg/provider/stt"
)

const (
	// sampleRate is the rate whisper.cpp expects its input samples at.
	sampleRate = 16000

	// DefaultSize is the weights size class used when a request names none.
	DefaultSize = "base"

	defaultLanguage = "en"
)

// ModelPath returns the conventional weights location for a size class:
// <dir>/ggml-<size>.bin.
func ModelPath(dir, size string) string {
	return filepath.Join(dir, "ggml-"+size+".bin")
}

// Compile-time assertion that Provider satisfies stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithLanguage sets the default recognition language code (e.g. "en", "de").
// A per-call stt.Options.Language overrides it. Defaults to "en".
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// WithFFmpegPath sets the ffmpeg binary used to decode input files to PCM.
// Defaults to "ffmpeg" resolved via PATH.
func WithFFmpegPath(path string) Option {
	return func(p *Provider) { p.ffmpeg = path }
}

// Provider implements stt.Provider on top of the whisper.cpp Go bindings.
// stt.Options.Model selects the weights size class per call.
type Provider struct {
	modelsDir string
	language  string
	ffmpeg    string

	mu     sync.Mutex
	models map[string]whisperlib.Model
}

// New creates a Provider reading ggml weight files from modelsDir. No model
// is loaded until the first Transcribe. The caller must call Close when the
// provider is no longer needed.
func New(modelsDir string, opts ...Option) (*Provider, error) {
	if modelsDir == "" {
		return nil, errors.New("whisper: modelsDir must not be empty")
	}
	p := &Provider{
		modelsDir: modelsDir,
		language:  defaultLanguage,
		ffmpeg:    "ffmpeg",
		models:    make(map[string]whisperlib.Model),
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Close releases every loaded model.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for size, m := range p.models {
		if err := m.Close(); err != nil {
			errs = append(errs, fmt.Errorf("whisper: close %s model: %w", size, err))
		}
	}
	p.models = make(map[string]whisperlib.Model)
	return errors.Join(errs...)
}

// Name implements stt.Provider.
func (p *Provider) Name() string { return "whisper" }

// model returns the loaded weights for size, loading them on first use.
// Loading large weights takes seconds; the lock intentionally serializes
// concurrent first requests for the same size.
func (p *Provider) model(size string) (whisperlib.Model, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if m, ok := p.models[size]; ok {
		return m, nil
	}
	path := ModelPath(p.modelsDir, size)
	slog.Info("loading whisper model", "size", size, "path", path)
	m, err := whisperlib.New(path)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", path, err)
	}
	p.models[size] = m
	return m, nil
}

// Transcribe decodes the audio file to PCM, runs whisper.cpp inference, and
// returns the recognized text with per-segment timing. Segments whose text
// is empty after trimming are discarded; a fully silent file yields an empty
// Result, not an error.
func (p *Provider) Transcribe(ctx context.Context, audioPath string, opts stt.Options) (*stt.Result, error) {
	size := opts.Model
	if size == "" {
		size = DefaultSize
	}
	model, err := p.model(size)
	if err != nil {
		return nil, err
	}

	samples, err := decodeSamples(ctx, p.ffmpeg, audioPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: decode %q: %w", audioPath, err)
	}

	lang := opts.Language
	if lang == "" {
		lang = p.language
	}

	// Each context is NOT thread-safe, but the model can be shared across
	// goroutines, so a fresh context per call keeps Transcribe concurrent.
	wctx, err := model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("whisper: create context: %w", err)
	}
	if err := wctx.SetLanguage(lang); err != nil {
		slog.Warn("whisper: failed to set language, using model default",
			"language", lang, "error", err)
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper: process audio: %w", err)
	}

	var segments []stt.Segment
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whisper: read segment: %w", err)
		}
		segments = append(segments, stt.Segment{
			Start: segment.Start,
			End:   segment.End,
			Text:  strings.TrimSpace(segment.Text),
		})
	}
	segments = stt.FilterSegments(segments)

	return &stt.Result{
		Text:     stt.JoinSegments(segments),
		Segments: segments,
		Language: lang,
		Duration: samplesDuration(len(samples)),
	}, nil
}

// samplesDuration returns the play time of n PCM samples at the whisper
// input rate.
func samplesDuration(n int) time.Duration {
	return time.Duration(float64(n) / sampleRate * float64(time.Second))
}
