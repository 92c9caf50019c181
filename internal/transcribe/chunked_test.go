package transcribe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidscribe/vidscribe/internal/config"
	"github.com/vidscribe/vidscribe/internal/media"
	"github.com/vidscribe/vidscribe/pkg/provider/stt"
	sttmock "github.com/vidscribe/vidscribe/pkg/provider/stt/mock"
)

func TestSelector_TranscribeChunked_OffsetsSegments(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	chunks := []media.Asset{
		writeAudio(t, dir, "chunk_000.m4a", 4096),
		writeAudio(t, dir, "chunk_001.m4a", 4096),
		writeAudio(t, dir, "chunk_002.m4a", 4096),
	}

	perChunk := map[string]*stt.Result{
		chunks[0].Path: {
			Text:     "one two",
			Language: "en",
			Duration: 600 * time.Second,
			Segments: []stt.Segment{
				{Start: 0, End: 2 * time.Second, Text: "one"},
				{Start: 5 * time.Second, End: 8 * time.Second, Text: "two"},
			},
		},
		chunks[1].Path: {
			Text:     "three four five",
			Language: "en",
			Duration: 600 * time.Second,
			Segments: []stt.Segment{
				{Start: 1 * time.Second, End: 3 * time.Second, Text: "three"},
				{Start: 4 * time.Second, End: 6 * time.Second, Text: "four"},
				{Start: 7 * time.Second, End: 9 * time.Second, Text: "five"},
			},
		},
		chunks[2].Path: {
			Text:     "six",
			Language: "en",
			Duration: 600 * time.Second,
			Segments: []stt.Segment{
				{Start: 2 * time.Second, End: 4 * time.Second, Text: "six"},
			},
		},
	}
	local := &sttmock.Provider{ResultFn: func(path string, _ stt.Options) (*stt.Result, error) {
		res, ok := perChunk[path]
		if !ok {
			return nil, errors.New("unexpected path " + path)
		}
		cp := *res
		return &cp, nil
	}}

	s := NewSelector(local)
	res, err := s.TranscribeChunked(context.Background(), chunks, config.BackendLocal, config.ModelBase)
	if err != nil {
		t.Fatalf("TranscribeChunked: %v", err)
	}

	if res.Text != "one two three four five six" {
		t.Errorf("text = %q", res.Text)
	}
	if len(res.Segments) != 6 {
		t.Fatalf("segment count = %d, want 6", len(res.Segments))
	}
	if res.ChunkCount != 3 {
		t.Errorf("chunk count = %d, want 3", res.ChunkCount)
	}
	if want := 1800 * time.Second; res.Duration != want {
		t.Errorf("duration = %v, want %v", res.Duration, want)
	}

	// Chunk 2 segments shift by +600s, chunk 3 by +1200s.
	if got, want := res.Segments[2].Start, 601*time.Second; got != want {
		t.Errorf("first chunk-2 segment start = %v, want %v", got, want)
	}
	if got, want := res.Segments[4].End, 609*time.Second; got != want {
		t.Errorf("last chunk-2 segment end = %v, want %v", got, want)
	}
	if got, want := res.Segments[5].Start, 1202*time.Second; got != want {
		t.Errorf("chunk-3 segment start = %v, want %v", got, want)
	}
	// Chunk 1 segments are untouched.
	if got := res.Segments[0].Start; got != 0 {
		t.Errorf("first segment start = %v, want 0", got)
	}
}

func TestSelector_TranscribeChunked_SkipsFailedChunks(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	chunks := []media.Asset{
		writeAudio(t, dir, "chunk_000.m4a", 4096),
		writeAudio(t, dir, "chunk_001.m4a", 4096),
		writeAudio(t, dir, "chunk_002.m4a", 4096),
	}

	local := &sttmock.Provider{ResultFn: func(path string, _ stt.Options) (*stt.Result, error) {
		switch path {
		case chunks[0].Path:
			return &stt.Result{
				Text:     "first",
				Duration: 90 * time.Second,
				Segments: []stt.Segment{{Start: 0, End: time.Second, Text: "first"}},
			}, nil
		case chunks[1].Path:
			return nil, errors.New("decode error")
		default:
			return &stt.Result{
				Text:     "third",
				Duration: 80 * time.Second,
				Segments: []stt.Segment{{Start: 2 * time.Second, End: 3 * time.Second, Text: "third"}},
			}, nil
		}
	}}

	s := NewSelector(local, WithChunkDuration(2*time.Minute))
	res, err := s.TranscribeChunked(context.Background(), chunks, config.BackendLocal, config.ModelBase)
	if err != nil {
		t.Fatalf("TranscribeChunked: %v", err)
	}

	if res.Text != "first third" {
		t.Errorf("text = %q, want %q", res.Text, "first third")
	}
	if res.ChunkCount != 3 {
		t.Errorf("chunk count = %d, want 3", res.ChunkCount)
	}
	if len(res.Segments) != 2 {
		t.Fatalf("segment count = %d, want 2", len(res.Segments))
	}

	// The skipped middle chunk still advances the timeline by the configured
	// chunk length: 90s + 120s assumed = 210s offset for chunk 3.
	if got, want := res.Segments[1].Start, 212*time.Second; got != want {
		t.Errorf("chunk-3 segment start = %v, want %v", got, want)
	}
	if want := (90 + 120 + 80) * time.Second; res.Duration != want {
		t.Errorf("duration = %v, want %v", res.Duration, want)
	}
}

func TestSelector_TranscribeChunked_AssumesChunkDurationWhenUnreported(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	chunks := []media.Asset{
		writeAudio(t, dir, "chunk_000.m4a", 4096),
		writeAudio(t, dir, "chunk_001.m4a", 4096),
	}

	// Results carry no duration, as api responses often do.
	local := &sttmock.Provider{ResultFn: func(path string, _ stt.Options) (*stt.Result, error) {
		return &stt.Result{
			Text:     "words",
			Segments: []stt.Segment{{Start: 0, End: time.Second, Text: "words"}},
		}, nil
	}}

	s := NewSelector(local, WithChunkDuration(10*time.Minute))
	res, err := s.TranscribeChunked(context.Background(), chunks, config.BackendLocal, config.ModelBase)
	if err != nil {
		t.Fatalf("TranscribeChunked: %v", err)
	}

	if got, want := res.Segments[1].Start, 600*time.Second; got != want {
		t.Errorf("chunk-2 segment start = %v, want %v", got, want)
	}
	if want := 1200 * time.Second; res.Duration != want {
		t.Errorf("duration = %v, want %v", res.Duration, want)
	}
}

func TestSelector_TranscribeChunked_AllChunksFail(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	chunks := []media.Asset{
		writeAudio(t, dir, "chunk_000.m4a", 4096),
		writeAudio(t, dir, "chunk_001.m4a", 4096),
	}
	local := &sttmock.Provider{Err: errors.New("decode error")}

	s := NewSelector(local)
	_, err := s.TranscribeChunked(context.Background(), chunks, config.BackendLocal, config.ModelBase)
	if !errors.Is(err, ErrBackendFailure) {
		t.Fatalf("err = %v, want ErrBackendFailure", err)
	}
}

func TestSelector_TranscribeChunked_NoChunks(t *testing.T) {
	t.Parallel()
	s := NewSelector(&sttmock.Provider{})
	_, err := s.TranscribeChunked(context.Background(), nil, config.BackendLocal, config.ModelBase)
	if !errors.Is(err, ErrBackendFailure) {
		t.Fatalf("err = %v, want ErrBackendFailure", err)
	}
}

func TestSelector_TranscribeChunked_StopsWhenCancelled(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	chunks := []media.Asset{
		writeAudio(t, dir, "chunk_000.m4a", 4096),
		writeAudio(t, dir, "chunk_001.m4a", 4096),
	}
	local := &sttmock.Provider{Result: &stt.Result{Text: "x"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSelector(local)
	_, err := s.TranscribeChunked(ctx, chunks, config.BackendLocal, config.ModelBase)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if got := local.CallCount(); got != 0 {
		t.Errorf("local called %d times after cancellation, want 0", got)
	}
}

func TestSelector_TranscribeChunked_PassesBackendThrough(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	chunks := []media.Asset{
		writeAudio(t, dir, "chunk_000.m4a", 4096),
		writeAudio(t, dir, "chunk_001.m4a", 4096),
	}
	api := &sttmock.Provider{Result: &stt.Result{Text: "api words"}}
	local := &sttmock.Provider{Result: &stt.Result{Text: "local words"}}

	s := NewSelector(local, WithAPI(api))
	res, err := s.TranscribeChunked(context.Background(), chunks, config.BackendAuto, config.ModelBase)
	if err != nil {
		t.Fatalf("TranscribeChunked: %v", err)
	}

	if got := api.CallCount(); got != 2 {
		t.Errorf("api called %d times, want 2", got)
	}
	if got := local.CallCount(); got != 0 {
		t.Errorf("local called %d times, want 0", got)
	}
	if res.Text != "api words api words" {
		t.Errorf("text = %q", res.Text)
	}
}
