package stt_test

import (
	"testing"
	"time"

	"github.com/vidscribe/vidscribe/pkg/provider/stt"
)

func TestFilterSegments_DropsEmptyAndInverted(t *testing.T) {
	t.Parallel()

	in := []stt.Segment{
		{Start: 0, End: 2 * time.Second, Text: " hello "},
		{Start: 2 * time.Second, End: 4 * time.Second, Text: "   "},
		{Start: 6 * time.Second, End: 5 * time.Second, Text: "backwards"},
		{Start: 4 * time.Second, End: 4 * time.Second, Text: "zero width"},
		{Start: 5 * time.Second, End: 7 * time.Second, Text: "world"},
	}

	got := stt.FilterSegments(in)

	if len(got) != 3 {
		t.Fatalf("FilterSegments kept %d segments, want 3", len(got))
	}
	if got[0].Text != "hello" {
		t.Errorf("first segment text = %q, want trimmed %q", got[0].Text, "hello")
	}
	if got[1].Text != "zero width" {
		t.Errorf("second segment text = %q, want %q", got[1].Text, "zero width")
	}
	if got[2].Text != "world" {
		t.Errorf("third segment text = %q, want %q", got[2].Text, "world")
	}
}

func TestFilterSegments_Empty(t *testing.T) {
	t.Parallel()

	if got := stt.FilterSegments(nil); len(got) != 0 {
		t.Fatalf("FilterSegments(nil) = %v, want empty", got)
	}
}

func TestJoinSegments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		segs []stt.Segment
		want string
	}{
		{name: "none", segs: nil, want: ""},
		{name: "one", segs: []stt.Segment{{Text: "only"}}, want: "only"},
		{
			name: "several",
			segs: []stt.Segment{{Text: "a"}, {Text: "b"}, {Text: "c"}},
			want: "a b c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := stt.JoinSegments(tt.segs); got != tt.want {
				t.Errorf("JoinSegments = %q, want %q", got, tt.want)
			}
		})
	}
}
