// Package outfile derives collision-free on-disk names for pipeline outputs
// from untrusted video titles.
package outfile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// maxTitleLen caps directory names derived from video titles.
const maxTitleLen = 100

var (
	reservedChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// SafeTitle turns an arbitrary video title into a filesystem-safe name:
// reserved characters are stripped, whitespace runs become single
// underscores and the result is capped at 100 runes. Titles that reduce to
// nothing become "unknown_video".
func SafeTitle(title string) string {
	s := reservedChars.ReplaceAllString(title, "")
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), "_")
	if runes := []rune(s); len(runes) > maxTitleLen {
		s = string(runes[:maxTitleLen])
	}
	if s == "" {
		return "unknown_video"
	}
	return s
}

// UniqueDir creates and returns root/name, appending _1, _2, ... to name
// while the candidate already exists.
func UniqueDir(root, name string) (string, error) {
	dir := filepath.Join(root, name)
	for i := 1; exists(dir); i++ {
		dir = filepath.Join(root, fmt.Sprintf("%s_%d", name, i))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("outfile: create %q: %w", dir, err)
	}
	return dir, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
