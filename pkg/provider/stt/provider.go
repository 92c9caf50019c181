// Package stt defines the Provider interface for speech-to-text backends.
//
// An STT provider wraps a transcription engine (a remote service such as the
// OpenAI audio API, or a local whisper.cpp model) and exposes a uniform batch
// interface: hand it the path of an audio file, get back a Result with the
// recognized text and, when the engine reports them, time-stamped segments.
//
// Providers are stateless between calls and must be safe for concurrent use;
// a single provider may serve several pipeline runs.
package stt

import "context"

// Options carries per-call recognition hints. Zero values mean "use the
// provider's configured default".
type Options struct {
	// Model is a backend-specific model hint: a remote model identifier
	// (e.g. "whisper-1") for API providers, a weights size class (e.g.
	// "base") for the local engine.
	Model string

	// Language is the recognition language code (e.g. "en", "de"). An empty
	// string lets the provider fall back to its configured default.
	Language string
}

// Provider is the abstraction over any batch STT backend.
type Provider interface {
	// Name returns a short identifier for logs and metrics (e.g. "openai",
	// "whisper").
	Name() string

	// Transcribe runs recognition over the audio file at audioPath and
	// returns the result. The file is read but never modified. Returns an
	// error when the engine cannot produce any transcription; a silent file
	// yielding zero segments is a valid empty Result, not an error.
	Transcribe(ctx context.Context, audioPath string, opts Options) (*Result, error)
}
