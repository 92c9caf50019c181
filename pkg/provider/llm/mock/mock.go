// Package mock provides a test double for the llm.Provider interface.
//
// Pre-populate Response (or ResponseFn for per-call behavior) and inspect
// Calls to verify what prompts were sent.
package mock

import (
	"context"
	"sync"

	"github.com/vidscribe/vidscribe/pkg/provider/llm"
)

// Provider is a mock implementation of llm.Provider.
type Provider struct {
	mu sync.Mutex

	// NameStr is returned by Name. Defaults to "mock".
	NameStr string

	// Response is returned by Complete when ResponseFn is nil and Err is
	// nil. A nil Response yields an empty &llm.CompletionResponse{}.
	Response *llm.CompletionResponse

	// Err, if non-nil, is returned as the error from every Complete call.
	Err error

	// ResponseFn, if non-nil, computes the per-call response and error,
	// taking precedence over Response and Err. The call is still recorded.
	ResponseFn func(req llm.CompletionRequest) (*llm.CompletionResponse, error)

	// Calls records every request passed to Complete in order.
	Calls []llm.CompletionRequest
}

// Name returns NameStr, defaulting to "mock".
func (p *Provider) Name() string {
	if p.NameStr == "" {
		return "mock"
	}
	return p.NameStr
}

// Complete records the call and returns the configured response.
func (p *Provider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, req)
	fn := p.ResponseFn
	resp, err := p.Response, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return &llm.CompletionResponse{}, nil
	}
	cp := *resp
	return &cp, nil
}

// CallCount returns the number of Complete calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// Ensure Provider implements llm.Provider at compile time.
var _ llm.Provider = (*Provider)(nil)
