// Package openai provides an STT provider backed by the OpenAI audio
// transcription API.
//
// Results are requested in verbose JSON so that segment timing, language,
// and duration are recovered when the service reports them; the plain text
// field is always populated regardless.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/vidscribe/vidscribe/pkg/provider/stt"
)

// DefaultModel is the transcription model used when neither the provider nor
// the call specifies one.
const DefaultModel = string(oai.AudioModelWhisper1)

// Compile-time assertion that Provider satisfies stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// config holds optional configuration for the provider.
type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithTimeout sets a per-request HTTP timeout. Uploads of near-ceiling audio
// files can take minutes on slow links; size the timeout accordingly.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// Provider implements stt.Provider using the OpenAI audio API.
type Provider struct {
	client oai.Client
	model  string
}

// New constructs a new OpenAI STT Provider. model may be empty, in which case
// DefaultModel applies.
func New(apiKey string, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	client := oai.NewClient(reqOpts...)
	return &Provider{client: client, model: model}, nil
}

// Name implements stt.Provider.
func (p *Provider) Name() string { return "openai" }

// Transcribe uploads the audio file and returns the service's transcription.
// opts.Model overrides the provider's configured model for this call.
func (p *Provider) Transcribe(ctx context.Context, audioPath string, opts stt.Options) (*stt.Result, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("openai: open audio %q: %w", audioPath, err)
	}
	defer f.Close()

	model := opts.Model
	if model == "" {
		model = p.model
	}

	params := oai.AudioTranscriptionNewParams{
		File:           f,
		Model:          oai.AudioModel(model),
		ResponseFormat: oai.AudioResponseFormatVerboseJSON,
	}
	if opts.Language != "" {
		params.Language = param.NewOpt(opts.Language)
	}

	resp, err := p.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: transcription request: %w", err)
	}

	res := &stt.Result{Text: resp.Text, Language: opts.Language}
	decorateVerbose(res, []byte(resp.RawJSON()))
	return res, nil
}

// verbosePayload mirrors the verbose JSON transcription response fields this
// provider consumes.
type verbosePayload struct {
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// decorateVerbose enriches res with language, duration, and segment timing
// from the raw verbose JSON body. The service does not guarantee these fields
// for every model, so decoding is best-effort: on any failure res keeps its
// text-only shape.
func decorateVerbose(res *stt.Result, raw []byte) {
	var v verbosePayload
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	if v.Language != "" {
		res.Language = v.Language
	}
	if v.Duration > 0 {
		res.Duration = time.Duration(v.Duration * float64(time.Second))
	}
	if len(v.Segments) == 0 {
		return
	}
	segments := make([]stt.Segment, 0, len(v.Segments))
	for _, s := range v.Segments {
		segments = append(segments, stt.Segment{
			Start: time.Duration(s.Start * float64(time.Second)),
			End:   time.Duration(s.End * float64(time.Second)),
			Text:  s.Text,
		})
	}
	res.Segments = stt.FilterSegments(segments)
}
