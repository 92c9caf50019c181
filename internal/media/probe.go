package media

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ffmpeg reports stream metadata on stderr. Duration comes from the banner
// ("Duration: 00:05:23.45") or, failing that, from the last progress line
// ("time=00:05:23.45").
var (
	durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)
	progressRe = regexp.MustCompile(`time=(\d+):(\d+):(\d+)\.(\d+)`)
)

// probeDuration measures the file at path by running it through the null
// muxer. ffmpeg may exit non-zero and still have printed the duration, so
// the output is parsed regardless of exit status.
func probeDuration(ctx context.Context, run Runner, ffmpeg, path string) (time.Duration, error) {
	output, err := run.CombinedOutput(ctx, ffmpeg, "-i", path, "-f", "null", "-")
	if err != nil && len(output) == 0 {
		return 0, fmt.Errorf("media: probe %q: %w", path, err)
	}
	d, ok := parseFFmpegDuration(string(output))
	if !ok {
		return 0, fmt.Errorf("media: probe %q: no duration in ffmpeg output", path)
	}
	return d, nil
}

// parseFFmpegDuration extracts a duration from ffmpeg output. When only
// progress lines are present the last one wins, as it carries the final
// position.
func parseFFmpegDuration(output string) (time.Duration, bool) {
	if m := durationRe.FindStringSubmatch(output); m != nil {
		return clockDuration(m[1], m[2], m[3], m[4]), true
	}
	all := progressRe.FindAllStringSubmatch(output, -1)
	if len(all) > 0 {
		m := all[len(all)-1]
		return clockDuration(m[1], m[2], m[3], m[4]), true
	}
	return 0, false
}

// clockDuration converts matched hour, minute, second and fractional-second
// strings to a [time.Duration]. The fraction may carry any number of digits.
func clockDuration(hours, minutes, seconds, fraction string) time.Duration {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	frac, _ := strconv.ParseFloat("0."+fraction, 64)
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(frac*float64(time.Second))
}

// ffmpegTime renders a duration in the HH:MM:SS.mmm form ffmpeg expects for
// -ss and -to arguments.
func ffmpegTime(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := d.Seconds() - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}
