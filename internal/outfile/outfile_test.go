package outfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSafeTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "My Video", "My_Video"},
		{"reserved characters stripped", `Go 1.26: What's <new>?`, "Go_1.26_What's_new"},
		{"path separators stripped", `a/b\c`, "abc"},
		{"whitespace collapsed", "  hello \t world\nagain  ", "hello_world_again"},
		{"empty", "", "unknown_video"},
		{"only reserved characters", `???***`, "unknown_video"},
		{"long title capped", strings.Repeat("a", 150), strings.Repeat("a", 100)},
		{"multibyte runes survive capping", strings.Repeat("ü", 150), strings.Repeat("ü", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SafeTitle(tt.title); got != tt.want {
				t.Fatalf("SafeTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestUniqueDir_CreatesDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	got, err := UniqueDir(root, "video")
	if err != nil {
		t.Fatalf("UniqueDir() error = %v", err)
	}
	if want := filepath.Join(root, "video"); got != want {
		t.Fatalf("UniqueDir() = %q, want %q", got, want)
	}
	if info, err := os.Stat(got); err != nil || !info.IsDir() {
		t.Fatalf("UniqueDir() did not create directory: stat = %v, %v", info, err)
	}
}

func TestUniqueDir_Collision_AppendsSuffix(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "video"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "video_1"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := UniqueDir(root, "video")
	if err != nil {
		t.Fatalf("UniqueDir() error = %v", err)
	}
	if want := filepath.Join(root, "video_2"); got != want {
		t.Fatalf("UniqueDir() = %q, want %q", got, want)
	}
}

func TestUniqueDir_FileCollision_AppendsSuffix(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "video"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := UniqueDir(root, "video")
	if err != nil {
		t.Fatalf("UniqueDir() error = %v", err)
	}
	if want := filepath.Join(root, "video_1"); got != want {
		t.Fatalf("UniqueDir() = %q, want %q", got, want)
	}
}
