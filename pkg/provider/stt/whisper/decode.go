package whisper

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os/exec"
)

// decodeSamples shells out to ffmpeg to decode an audio file of any
// container/codec into 16 kHz mono float32 samples, the input format
// whisper.cpp expects.
func decodeSamples(ctx context.Context, ffmpeg, audioPath string) ([]float32, error) {
	// ffmpeg -i input -f s16le -ac 1 -ar 16000 pipe:1
	cmd := exec.CommandContext(ctx, ffmpeg,
		"-i", audioPath,
		"-f", "s16le",
		"-ac", "1",
		"-ar", "16000",
		"pipe:1",
	)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, lastLine(errBuf.Bytes()))
	}
	return pcmToFloat32(out.Bytes()), nil
}

// pcmToFloat32 converts 16-bit signed little-endian PCM audio to float32
// samples normalised to the range [-1.0, 1.0]. The input length must be
// even (two bytes per sample); any trailing odd byte is silently ignored.
func pcmToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	samples := make([]float32, n)
	for i := range n {
		sample := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		samples[i] = float32(sample) / 32768.0
	}
	return samples
}

// lastLine returns the final non-empty line of ffmpeg's stderr, which is
// where it prints the reason a decode failed.
func lastLine(b []byte) string {
	lines := bytes.Split(bytes.TrimSpace(b), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if line := bytes.TrimSpace(lines[i]); len(line) > 0 {
			return string(line)
		}
	}
	return "no output"
}
