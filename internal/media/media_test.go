package media

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// stubRunner scripts external command execution so no test shells out.
// Every call is recorded as [name, args...]; behavior comes from fn.
type stubRunner struct {
	calls [][]string
	fn    func(call int, name string, args []string) ([]byte, error)
}

func (r *stubRunner) CombinedOutput(_ context.Context, name string, args ...string) ([]byte, error) {
	call := len(r.calls)
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.fn(call, name, args)
}

// writeFile creates a file of n bytes and returns its [Asset].
func writeFile(t *testing.T, path string, n int) Asset {
	t.Helper()
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x11}, n), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return Asset{Path: path, Size: int64(n)}
}

func TestStat_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audio.m4a")
	writeFile(t, path, 5)

	got, err := Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if got.Path != path {
		t.Fatalf("Stat() path = %q, want %q", got.Path, path)
	}
	if got.Size != 5 {
		t.Fatalf("Stat() size = %d, want 5", got.Size)
	}
}

func TestStat_Missing_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := Stat(filepath.Join(t.TempDir(), "nope.m4a"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Stat() error = %v, want fs.ErrNotExist", err)
	}
}

func TestStat_Directory_ReturnsError(t *testing.T) {
	t.Parallel()

	if _, err := Stat(t.TempDir()); err == nil {
		t.Fatal("Stat() on a directory succeeded, want error")
	}
}
