// Package mock provides a hand-written [acquire.Acquirer] fake for tests.
package mock

import (
	"context"
	"sync"

	"github.com/vidscribe/vidscribe/internal/acquire"
)

// AcquireCall records one Acquire invocation.
type AcquireCall struct {
	URL     string
	DestDir string
}

// Acquirer is a configurable fake. Set Audio/Err for fixed behavior or
// AcquireFn for per-call behavior. Safe for concurrent use.
type Acquirer struct {
	Audio     acquire.Audio
	Err       error
	AcquireFn func(url, destDir string) (acquire.Audio, error)

	mu    sync.Mutex
	calls []AcquireCall
}

// Compile-time interface assertion.
var _ acquire.Acquirer = (*Acquirer)(nil)

func (a *Acquirer) Acquire(_ context.Context, url, destDir string) (acquire.Audio, error) {
	a.mu.Lock()
	a.calls = append(a.calls, AcquireCall{URL: url, DestDir: destDir})
	fn := a.AcquireFn
	a.mu.Unlock()

	if fn != nil {
		return fn(url, destDir)
	}
	if a.Err != nil {
		return acquire.Audio{}, a.Err
	}
	return a.Audio, nil
}

// Calls returns a copy of all recorded invocations.
func (a *Acquirer) Calls() []AcquireCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]AcquireCall, len(a.calls))
	copy(out, a.calls)
	return out
}

// Reset clears recorded calls.
func (a *Acquirer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = nil
}
