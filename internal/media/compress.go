package media

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
)

// Compressor re-encodes audio files that exceed a size ceiling down to a
// low-bitrate mono AAC profile that keeps speech intelligible.
type Compressor struct {
	ffmpeg string
	run    Runner
}

// CompressorOption configures a [Compressor].
type CompressorOption func(*Compressor)

// WithCompressorRunner substitutes the command runner, for tests.
func WithCompressorRunner(r Runner) CompressorOption {
	return func(c *Compressor) {
		c.run = r
	}
}

// NewCompressor creates a [Compressor] using the given ffmpeg binary.
// An empty path defaults to "ffmpeg" resolved via PATH.
func NewCompressor(ffmpegPath string, opts ...CompressorOption) *Compressor {
	c := &Compressor{ffmpeg: ffmpegPath, run: execRunner{}}
	if c.ffmpeg == "" {
		c.ffmpeg = "ffmpeg"
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compress re-encodes asset into <base>_compressed.m4a when it exceeds
// ceiling. Assets at or under the ceiling are returned unchanged. A failed
// re-encode also returns the original unchanged; the caller decides whether
// an unreduced size is fatal. The re-encoded file may itself still exceed
// the ceiling and is returned anyway so the caller can check.
func (c *Compressor) Compress(ctx context.Context, asset Asset, ceiling int64) Asset {
	if ceiling <= 0 || asset.Size <= ceiling {
		return asset
	}

	out := strings.TrimSuffix(asset.Path, filepath.Ext(asset.Path)) + "_compressed.m4a"
	slog.Info("compressing audio for upload",
		"path", asset.Path, "bytes", asset.Size, "ceiling", ceiling)

	// 64 kb/s mono AAC at 22.05 kHz.
	output, err := c.run.CombinedOutput(ctx, c.ffmpeg,
		"-i", asset.Path,
		"-acodec", "aac",
		"-b:a", "64k",
		"-ac", "1",
		"-ar", "22050",
		"-y",
		out,
	)
	if err != nil {
		slog.Warn("compression failed, keeping original audio",
			"path", asset.Path, "error", err, "ffmpeg", lastLine(output))
		return asset
	}

	compressed, err := Stat(out)
	if err != nil {
		slog.Warn("compressed file unreadable, keeping original audio",
			"path", out, "error", err)
		return asset
	}
	slog.Info("compressed audio", "path", compressed.Path,
		"bytes", compressed.Size, "saved", asset.Size-compressed.Size)
	return compressed
}
