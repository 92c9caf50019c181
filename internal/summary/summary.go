// Package summary turns a finished transcript into a short prose summary
// via a chat-completion model.
package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/vidscribe/vidscribe/pkg/provider/llm"
)

const (
	// maxInputChars caps the transcript characters sent to the model.
	// Longer transcripts are cut and marked truncated.
	maxInputChars = 12000

	truncationMark = "... [truncated]"

	systemPrompt = "You are a helpful assistant that creates concise, informative summaries of transcripts."

	promptHeader = "Please provide a concise summary of this transcript, highlighting the main points and key information:"

	maxTokens   = 500
	temperature = 0.3
)

// Summarizer produces transcript summaries through an [llm.Provider].
type Summarizer struct {
	llm llm.Provider
}

// New returns a Summarizer backed by provider.
func New(provider llm.Provider) *Summarizer {
	return &Summarizer{llm: provider}
}

// Summarize asks the model for a concise summary of text. Blank input
// yields an empty summary without a model call.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	resp, err := s.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: promptHeader + "\n\n" + truncate(text) + "\n\nSummary:"},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("summary: %s: %w", s.llm.Name(), err)
	}
	return strings.TrimSpace(resp.Content), nil
}

// truncate cuts text to maxInputChars characters and appends the
// truncation mark when anything was dropped.
func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxInputChars {
		return text
	}
	return string(runes[:maxInputChars]) + truncationMark
}
