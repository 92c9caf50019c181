// Package mock provides a test double for the stt.Provider interface.
//
// Pre-populate Result (or ResultFn for per-call behavior) and inspect Calls
// to verify which files were transcribed with which options.
//
// Example:
//
//	p := &mock.Provider{NameStr: "fake", Result: &stt.Result{Text: "hi"}}
//	res, err := p.Transcribe(ctx, "audio.m4a", stt.Options{})
package mock

import (
	"context"
	"sync"

	"github.com/vidscribe/vidscribe/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Provider.Transcribe.
type TranscribeCall struct {
	// Path is the audio path passed to Transcribe.
	Path string
	// Opts is the Options value passed to Transcribe.
	Opts stt.Options
}

// Provider is a mock implementation of stt.Provider.
type Provider struct {
	mu sync.Mutex

	// NameStr is returned by Name. Defaults to "mock".
	NameStr string

	// Result is returned by Transcribe when ResultFn is nil and Err is nil.
	// A nil Result yields an empty &stt.Result{}.
	Result *stt.Result

	// Err, if non-nil, is returned as the error from every Transcribe call.
	Err error

	// ResultFn, if non-nil, computes the per-call result and error, taking
	// precedence over Result and Err. The call is still recorded.
	ResultFn func(path string, opts stt.Options) (*stt.Result, error)

	// Calls records every call to Transcribe in order.
	Calls []TranscribeCall
}

// Name returns NameStr, defaulting to "mock".
func (p *Provider) Name() string {
	if p.NameStr == "" {
		return "mock"
	}
	return p.NameStr
}

// Transcribe records the call and returns the configured result.
func (p *Provider) Transcribe(_ context.Context, audioPath string, opts stt.Options) (*stt.Result, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, TranscribeCall{Path: audioPath, Opts: opts})
	fn := p.ResultFn
	res, err := p.Result, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(audioPath, opts)
	}
	if err != nil {
		return nil, err
	}
	if res == nil {
		return &stt.Result{}, nil
	}
	cp := *res
	return &cp, nil
}

// CallCount returns the number of Transcribe calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = nil
}

// Ensure Provider implements stt.Provider at compile time.
var _ stt.Provider = (*Provider)(nil)
