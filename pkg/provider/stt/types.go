package stt

import (
	"strings"
	"time"
)

// Segment is one time-bounded piece of recognized speech.
type Segment struct {
	// Start and End bound the segment within the source audio. Start <= End
	// holds for every segment stored in a Result.
	Start time.Duration
	End   time.Duration

	// Text is the recognized text, non-empty after trimming.
	Text string
}

// Result is the outcome of one transcription call.
type Result struct {
	// Text is the full recognized text. When Segments is non-empty it is the
	// space-joined concatenation of the segment texts.
	Text string

	// Segments holds per-segment timing when the backend reports it. Remote
	// API results may legitimately carry none while Text is still populated.
	Segments []Segment

	// Language is the recognition language as reported by the backend.
	Language string

	// Duration is the audio duration as reported by the backend; zero when
	// the backend does not report one.
	Duration time.Duration

	// ChunkCount is the number of chunks attempted when the result was
	// assembled from a split recording; zero for single-file runs.
	ChunkCount int
}

// FilterSegments returns segs without entries that are empty after trimming
// or whose timing is inverted (start after end). Kept entries have their Text
// trimmed. Providers apply this before returning a Result.
func FilterSegments(segs []Segment) []Segment {
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		text := strings.TrimSpace(s.Text)
		if text == "" || s.Start > s.End {
			continue
		}
		s.Text = text
		out = append(out, s)
	}
	return out
}

// JoinSegments returns the space-joined concatenation of the segment texts,
// the canonical Result.Text for a segment-bearing result.
func JoinSegments(segs []Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}
