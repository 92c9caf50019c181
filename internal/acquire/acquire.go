// Package acquire downloads the audio track of a video URL through an
// external yt-dlp binary.
package acquire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrInvalidURL flags URLs that do not match any supported video URL shape.
// It is a usage error: nothing has been downloaded yet.
var ErrInvalidURL = errors.New("acquire: unsupported video url")

// Audio is a downloaded audio track plus the source video's title.
type Audio struct {
	Path  string
	Title string
}

// Acquirer fetches the audio of a video URL into a working directory.
type Acquirer interface {
	Acquire(ctx context.Context, url, destDir string) (Audio, error)
}

// Supported YouTube URL shapes, checked before any external command runs.
var urlShapes = []*regexp.Regexp{
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/watch\?v=[\w-]+`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtu\.be/[\w-]+`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/embed/[\w-]+`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/v/[\w-]+`),
}

// ValidURL reports whether url matches a supported video URL shape.
func ValidURL(url string) bool {
	for _, re := range urlShapes {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}

// Runner executes an external command and returns its stdout and stderr
// separately. yt-dlp keeps machine-readable --print output on stdout and
// progress on stderr, so the two must not be merged.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// execRunner runs commands through os/exec.
type execRunner struct{}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// YTDLP is an [Acquirer] shelling out to yt-dlp.
type YTDLP struct {
	bin string
	run Runner
}

// Compile-time interface assertion.
var _ Acquirer = (*YTDLP)(nil)

// Option configures a [YTDLP].
type Option func(*YTDLP)

// WithRunner substitutes the command runner, for tests.
func WithRunner(r Runner) Option {
	return func(y *YTDLP) {
		y.run = r
	}
}

// NewYTDLP creates an acquirer around the given yt-dlp binary.
// An empty path defaults to "yt-dlp" resolved via PATH.
func NewYTDLP(bin string, opts ...Option) *YTDLP {
	y := &YTDLP{bin: bin, run: execRunner{}}
	if y.bin == "" {
		y.bin = "yt-dlp"
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Acquire validates url, downloads its best audio as 128k m4a into destDir
// and returns the on-disk path with the video title. Title and final file
// path are captured from --print lines on stdout.
func (y *YTDLP) Acquire(ctx context.Context, url, destDir string) (Audio, error) {
	if !ValidURL(url) {
		return Audio{}, fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}

	slog.Info("downloading audio", "url", url)
	stdout, stderr, err := y.run.Output(ctx, y.bin,
		"--no-playlist",
		"-f", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "m4a",
		"--audio-quality", "128K",
		"--print", "title",
		"--print", "after_move:filepath",
		"--no-simulate",
		"-o", filepath.Join(destDir, "%(id)s.%(ext)s"),
		url,
	)
	if err != nil {
		return Audio{}, fmt.Errorf("acquire: yt-dlp: %w: %s", err, lastLine(stderr))
	}

	audio, err := parsePrinted(stdout)
	if err != nil {
		return Audio{}, err
	}
	if _, err := os.Stat(audio.Path); err != nil {
		return Audio{}, fmt.Errorf("acquire: downloaded file missing: %w", err)
	}
	slog.Info("audio downloaded", "title", audio.Title, "path", audio.Path)
	return audio, nil
}

// parsePrinted reads the --print lines: title first, final path last.
func parsePrinted(stdout []byte) (Audio, error) {
	var lines []string
	for line := range strings.SplitSeq(string(stdout), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return Audio{}, fmt.Errorf("acquire: yt-dlp printed %d lines, want title and filepath", len(lines))
	}
	return Audio{Title: lines[0], Path: lines[len(lines)-1]}, nil
}

// lastLine returns the final non-empty line of command output, which for
// yt-dlp is usually the actual error message.
func lastLine(output []byte) string {
	lines := bytes.Split(bytes.TrimSpace(output), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if line := bytes.TrimSpace(lines[i]); len(line) > 0 {
			return string(line)
		}
	}
	return "no output"
}
