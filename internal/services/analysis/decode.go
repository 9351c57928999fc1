package analysis

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strings"
)

// DefaultFfmpegPath is used when no explicit binary path is configured
const DefaultFfmpegPath = "ffmpeg"

// decodeAudio decodes an audio file to mono float32 PCM at the analyzer's
// sample rate using ffmpeg
func decodeAudio(ctx context.Context, ffmpegPath, filePath string, sampleRate int) ([]float64, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-i", filePath,
		"-f", "f32le",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-v", "error",
		"pipe:1",
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 500 {
			msg = msg[:500] + "..."
		}
		return nil, fmt.Errorf("ffmpeg decode failed: %w: %s", err, msg)
	}

	raw := stdout.Bytes()
	n := len(raw) / 4
	if n == 0 {
		return nil, fmt.Errorf("decoded audio is empty")
	}

	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
		samples[i] = float64(math.Float32frombits(bits))
	}

	return samples, nil
}
