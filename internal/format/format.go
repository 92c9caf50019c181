// Package format renders a transcription result into the three textual
// artifacts of a run: a plain transcript (transcript.txt), SubRip subtitles
// (transcript.srt) and WebVTT subtitles (transcript.vtt).
//
// The plain transcript carries a timestamped section plus an 80-column
// wrapped full-text section when segments are available, and only the
// wrapped text when they are not. The two cue formats differ solely in their
// millisecond separator (comma for SRT, period for VTT) and the WEBVTT
// header. A result without segments still yields one placeholder cue
// covering the first five minutes, so players always have something to load.
package format

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vidscribe/vidscribe/pkg/provider/stt"
)

const (
	// wrapWidth is the line width of the plain-text transcript section.
	wrapWidth = 80

	// placeholderSpan is the cue length emitted when a result carries no
	// segment timing.
	placeholderSpan = 5 * time.Minute

	// placeholderText is the cue body emitted when a result carries no
	// segment timing.
	placeholderText = "[Transcript available in .txt file - no timing data from API]"
)

// rule separates sections of the plain transcript.
var rule = strings.Repeat("=", 50)

// Files lists the artifacts written for one run.
type Files struct {
	TXT string
	SRT string
	VTT string
}

// WriteAll renders res into dir as transcript.txt, transcript.srt and
// transcript.vtt, creating dir if needed.
func WriteAll(dir string, res *stt.Result) (Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("format: create output dir %q: %w", dir, err)
	}

	files := Files{
		TXT: filepath.Join(dir, "transcript.txt"),
		SRT: filepath.Join(dir, "transcript.srt"),
		VTT: filepath.Join(dir, "transcript.vtt"),
	}
	renders := []struct {
		path   string
		render func(io.Writer, *stt.Result) error
	}{
		{files.TXT, WriteTXT},
		{files.SRT, WriteSRT},
		{files.VTT, WriteVTT},
	}
	for _, r := range renders {
		if err := writeFile(r.path, res, r.render); err != nil {
			return Files{}, err
		}
	}

	slog.Info("transcript files written", "dir", dir)
	return files, nil
}

// WriteTXT renders the plain transcript. With segments it produces a
// timestamped section followed by the full text wrapped at 80 columns;
// without segments only the wrapped text is written.
func WriteTXT(w io.Writer, res *stt.Result) error {
	bw := bufio.NewWriter(w)

	if len(res.Segments) > 0 {
		fmt.Fprintf(bw, "TRANSCRIPT\n%s\n", rule)
		for _, seg := range res.Segments {
			fmt.Fprintf(bw, "[%s -> %s]\n%s\n\n",
				stamp(seg.Start, '.'), stamp(seg.End, '.'), strings.TrimSpace(seg.Text))
		}
		fmt.Fprintf(bw, "%s\nFULL TRANSCRIPT (Plain Text)\n%s\n", rule, rule)
	}
	for _, line := range wrap(res.Text, wrapWidth) {
		fmt.Fprintln(bw, line)
	}

	return bw.Flush()
}

// WriteSRT renders numbered SubRip cues with comma millisecond separators.
func WriteSRT(w io.Writer, res *stt.Result) error {
	bw := bufio.NewWriter(w)

	if len(res.Segments) == 0 {
		fmt.Fprintf(bw, "1\n%s --> %s\n%s\n\n",
			stamp(0, ','), stamp(placeholderSpan, ','), placeholderText)
		return bw.Flush()
	}
	for i, seg := range res.Segments {
		fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n",
			i+1, stamp(seg.Start, ','), stamp(seg.End, ','), strings.TrimSpace(seg.Text))
	}

	return bw.Flush()
}

// WriteVTT renders WebVTT cues with period millisecond separators.
func WriteVTT(w io.Writer, res *stt.Result) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "WEBVTT\n\n")

	if len(res.Segments) == 0 {
		fmt.Fprintf(bw, "%s --> %s\n%s\n\n",
			stamp(0, '.'), stamp(placeholderSpan, '.'), placeholderText)
		return bw.Flush()
	}
	for _, seg := range res.Segments {
		fmt.Fprintf(bw, "%s --> %s\n%s\n\n",
			stamp(seg.Start, '.'), stamp(seg.End, '.'), strings.TrimSpace(seg.Text))
	}

	return bw.Flush()
}

// stamp formats d as HH:MM:SS<sep>mmm, clamping negatives to zero.
func stamp(d time.Duration, sep byte) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	m := d % time.Hour / time.Minute
	s := d % time.Minute / time.Second
	ms := d % time.Second / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms)
}

// wrap greedily word-wraps text at width runes. Words longer than width are
// kept whole on their own line.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	length := utf8.RuneCountInString(line)
	for _, word := range words[1:] {
		n := utf8.RuneCountInString(word)
		if length+1+n > width {
			lines = append(lines, line)
			line, length = word, n
			continue
		}
		line += " " + word
		length += 1 + n
	}
	return append(lines, line)
}

func writeFile(path string, res *stt.Result, render func(io.Writer, *stt.Result) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("format: create %q: %w", path, err)
	}
	if err := render(f, res); err != nil {
		f.Close()
		return fmt.Errorf("format: write %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("format: close %q: %w", path, err)
	}
	return nil
}
