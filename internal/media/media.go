// Package media handles the on-disk audio assets of a pipeline run:
// sizing, duration probing, compression of oversized files and splitting
// long recordings into fixed transcription windows. The heavy lifting is
// delegated to an external ffmpeg binary.
package media

import (
	"fmt"
	"os"
)

// Asset is an audio file on disk, identified by path and sized at creation
// time. Components that replace the file (compressor, splitter) return new
// Asset values; the underlying bytes are never mutated in place.
type Asset struct {
	Path string
	Size int64
}

// Stat builds an [Asset] from the file at path.
func Stat(path string) (Asset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Asset{}, fmt.Errorf("media: stat %q: %w", path, err)
	}
	if info.IsDir() {
		return Asset{}, fmt.Errorf("media: %q is a directory, not an audio file", path)
	}
	return Asset{Path: path, Size: info.Size()}, nil
}
