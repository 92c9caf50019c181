package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vidscribe/vidscribe/internal/config"
	"github.com/vidscribe/vidscribe/internal/media"
	"github.com/vidscribe/vidscribe/pkg/provider/stt"
)

// TranscribeChunked transcribes each chunk in order with [Selector.Transcribe]
// and merges the per-chunk results into one. A failed chunk is skipped with a
// warning rather than aborting the run; the call fails only when every chunk
// fails. Segment timestamps are shifted by the cumulative duration of all
// prior chunks; when a chunk reports no duration (and for skipped chunks) the
// configured chunk length is assumed, so merged timestamps can drift from the
// real timeline.
func (s *Selector) TranscribeChunked(ctx context.Context, chunks []media.Asset, backend config.Backend, hint config.ModelSize) (*stt.Result, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("transcribe: no chunks to transcribe: %w", ErrBackendFailure)
	}

	var (
		segments []stt.Segment
		texts    []string
		offset   time.Duration
		language string
		done     int
	)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("transcribe: chunk %d of %d: %w", i+1, len(chunks), err)
		}
		slog.Info("transcribing chunk", "chunk", i+1, "total", len(chunks), "path", chunk.Path)

		res, err := s.Transcribe(ctx, chunk, backend, hint)
		if err != nil {
			slog.Warn("chunk transcription failed, skipping",
				"chunk", i+1, "total", len(chunks), "error", err)
			s.metrics.RecordChunk(ctx, "skipped")
			offset += s.chunkDur
			continue
		}
		s.metrics.RecordChunk(ctx, "ok")
		done++

		for _, seg := range res.Segments {
			seg.Start += offset
			seg.End += offset
			segments = append(segments, seg)
		}
		if res.Text != "" {
			texts = append(texts, res.Text)
		}
		if language == "" {
			language = res.Language
		}

		if res.Duration > 0 {
			offset += res.Duration
		} else {
			offset += s.chunkDur
		}
	}

	if done == 0 {
		return nil, fmt.Errorf("transcribe: all %d chunks failed: %w", len(chunks), ErrBackendFailure)
	}
	if skipped := len(chunks) - done; skipped > 0 {
		slog.Warn("transcript incomplete, some chunks were skipped",
			"skipped", skipped, "total", len(chunks))
	}

	return &stt.Result{
		Text:       strings.Join(texts, " "),
		Segments:   segments,
		Language:   language,
		Duration:   offset,
		ChunkCount: len(chunks),
	}, nil
}
