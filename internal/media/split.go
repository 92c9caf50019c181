package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultChunkDuration is the window length for chunked transcription of
// very large recordings.
const DefaultChunkDuration = 10 * time.Minute

// Splitter cuts a long recording into sequential fixed-duration windows.
type Splitter struct {
	ffmpeg string
	run    Runner
}

// SplitterOption configures a [Splitter].
type SplitterOption func(*Splitter)

// WithSplitterRunner substitutes the command runner, for tests.
func WithSplitterRunner(r Runner) SplitterOption {
	return func(s *Splitter) {
		s.run = r
	}
}

// NewSplitter creates a [Splitter] using the given ffmpeg binary.
// An empty path defaults to "ffmpeg" resolved via PATH.
func NewSplitter(ffmpegPath string, opts ...SplitterOption) *Splitter {
	s := &Splitter{ffmpeg: ffmpegPath, run: execRunner{}}
	if s.ffmpeg == "" {
		s.ffmpeg = "ffmpeg"
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split cuts asset into consecutive windows of at most chunkDur, written
// next to the source file as <base>_chunk_NNN<ext>. The last window takes
// the remainder. Splitting never fails the run: when the duration cannot be
// probed, the file fits in a single window, or any extraction fails, the
// original asset is returned as the only element and the caller proceeds
// unchunked.
func (s *Splitter) Split(ctx context.Context, asset Asset, chunkDur time.Duration) []Asset {
	if chunkDur <= 0 {
		chunkDur = DefaultChunkDuration
	}

	total, err := probeDuration(ctx, s.run, s.ffmpeg, asset.Path)
	if err != nil {
		slog.Warn("duration probe failed, skipping split",
			"path", asset.Path, "error", err)
		return []Asset{asset}
	}
	if total <= chunkDur {
		slog.Debug("audio fits in a single window, skipping split",
			"path", asset.Path, "duration", total)
		return []Asset{asset}
	}

	ext := filepath.Ext(asset.Path)
	base := strings.TrimSuffix(asset.Path, ext)

	var chunks []Asset
	for i := 0; ; i++ {
		start := time.Duration(i) * chunkDur
		if start >= total {
			break
		}
		end := min(start+chunkDur, total)

		path := fmt.Sprintf("%s_chunk_%03d%s", base, i, ext)
		if err := s.extract(ctx, asset.Path, path, start, end); err != nil {
			slog.Warn("chunk extraction failed, falling back to whole file",
				"chunk", i, "error", err)
			removeChunks(chunks)
			return []Asset{asset}
		}
		chunk, err := Stat(path)
		if err != nil {
			slog.Warn("extracted chunk unreadable, falling back to whole file",
				"chunk", i, "error", err)
			removeChunks(chunks)
			return []Asset{asset}
		}
		chunks = append(chunks, chunk)
	}

	slog.Info("split audio for chunked transcription",
		"path", asset.Path, "duration", total, "chunks", len(chunks))
	return chunks
}

// extract copies one [start, end) window of src into dst without re-encoding.
func (s *Splitter) extract(ctx context.Context, src, dst string, start, end time.Duration) error {
	output, err := s.run.CombinedOutput(ctx, s.ffmpeg,
		"-y",
		"-i", src,
		"-ss", ffmpegTime(start),
		"-to", ffmpegTime(end),
		"-c", "copy",
		dst,
	)
	if err != nil {
		return fmt.Errorf("media: extract %q: %w: %s", dst, err, lastLine(output))
	}
	return nil
}

// removeChunks deletes already-extracted chunk files after a mid-split
// failure. Best effort; the caller falls back to the unsplit original.
func removeChunks(chunks []Asset) {
	for _, c := range chunks {
		_ = os.Remove(c.Path)
	}
}
