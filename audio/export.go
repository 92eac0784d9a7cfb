package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Export writes the track to basePath plus an extension. The track is
// written as WAV first; if ffmpeg is available it is re-encoded to MP3
// at the given bitrate and the WAV removed. When ffmpeg fails the WAV
// path is returned instead, so callers always get a playable file.
func Export(ctx context.Context, t *Track, basePath, bitrate string, log *logrus.Logger) (string, error) {
	if dir := filepath.Dir(basePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create audio dir: %w", err)
		}
	}
	wavPath := basePath + ".wav"
	if err := t.WriteWAV(wavPath); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}

	mp3Path := basePath + ".mp3"
	if err := encodeMP3(ctx, wavPath, mp3Path, bitrate); err != nil {
		log.Warnf("[audio] mp3 encode failed: %v — keeping wav", err)
		return wavPath, nil
	}
	os.Remove(wavPath)
	return mp3Path, nil
}

// encodeTimeout bounds the MP3 encode so a hung ffmpeg degrades to the
// WAV artifact instead of blocking the pipeline.
const encodeTimeout = 2 * time.Minute

func encodeMP3(ctx context.Context, wavPath, mp3Path, bitrate string) error {
	ctx, cancel := context.WithTimeout(ctx, encodeTimeout)
	defer cancel()

	if bitrate == "" {
		bitrate = "320k"
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", wavPath,
		"-c:a", "libmp3lame",
		"-b:a", bitrate,
		mp3Path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	info, err := os.Stat(mp3Path)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("ffmpeg produced no output")
	}
	return nil
}
