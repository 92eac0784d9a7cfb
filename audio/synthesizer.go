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

	"codecraft-studio/config"
	"codecraft-studio/styles"
)

const (
	ttsAttempts  = 3
	fallbackGain = -10 // dB, keeps the tone from overpowering the mix
)

// ttsBackoff is the base delay between retry attempts.
var ttsBackoff = 2 * time.Second

// fallbackFreq is the synthetic-voice pitch per style, used when TTS is
// unavailable.
var fallbackFreq = map[string]float64{
	styles.VoiceSoprano:    523.25, // C5
	styles.VoiceHeroicMale: 329.63, // E4
	styles.VoiceWhisper:    220,    // A3
}

const defaultFallbackFreq = 440 // A4

// Synthesizer turns lyric text into a voice track. It shells out to a
// TTS command (edge-tts by default) and decodes the result with ffmpeg;
// if neither is available it synthesizes a tonal placeholder so the
// pipeline always produces audio.
type Synthesizer struct {
	cfg *config.Config
	log *logrus.Logger
}

// NewSynthesizer creates a voice Synthesizer.
func NewSynthesizer(cfg *config.Config, log *logrus.Logger) *Synthesizer {
	return &Synthesizer{cfg: cfg, log: log}
}

// SynthesizeVoice produces the voice track for the text, with the
// style's effect chain already applied. TTS failures degrade to the
// tonal fallback; this method never returns an error.
func (s *Synthesizer) SynthesizeVoice(ctx context.Context, text, voiceStyle string) *Track {
	track, err := s.synthesizeTTS(ctx, text)
	if err != nil {
		s.log.Warnf("[tts] synthesis failed: %v — using tonal fallback", err)
		track = fallbackVoice(text, voiceStyle, s.cfg.Audio.SampleRate)
	}
	return ApplyVoiceEffects(track, voiceStyle)
}

func (s *Synthesizer) synthesizeTTS(ctx context.Context, text string) (*Track, error) {
	cmdPath := s.cfg.Audio.TTSCommand
	if cmdPath == "" {
		found, err := exec.LookPath("edge-tts")
		if err != nil {
			return nil, fmt.Errorf("no TTS command configured and edge-tts not in PATH")
		}
		cmdPath = found
	}

	tmpFile, err := os.CreateTemp("", "voice-*.mp3")
	if err != nil {
		return nil, fmt.Errorf("temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	var lastErr error
	for attempt := 1; attempt <= ttsAttempts; attempt++ {
		if attempt > 1 {
			s.log.Warnf("[tts] attempt %d/%d after: %v", attempt, ttsAttempts, lastErr)
			select {
			case <-time.After(ttsBackoff * time.Duration(attempt-1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Audio.TTSTimeoutSec)*time.Second)
		cmd := s.buildTTSCmd(attemptCtx, cmdPath, text, tmpPath)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		err := cmd.Run()
		cancel()
		if err != nil {
			lastErr = fmt.Errorf("tts command: %w (%s)", err, strings.TrimSpace(stderr.String()))
			continue
		}

		info, err := os.Stat(tmpPath)
		if err != nil || info.Size() == 0 {
			lastErr = fmt.Errorf("tts produced no audio")
			continue
		}
		return s.decodeAudio(ctx, tmpPath)
	}
	return nil, lastErr
}

// buildTTSCmd assembles the command line per attempt. A fresh exec.Cmd
// is required each time; a Cmd cannot be reused after Run.
func (s *Synthesizer) buildTTSCmd(ctx context.Context, cmdPath, text, outPath string) *exec.Cmd {
	base := filepath.Base(cmdPath)
	switch {
	case strings.HasSuffix(base, ".py"):
		return exec.CommandContext(ctx, "python3", cmdPath,
			"--voice", s.cfg.Audio.TTSVoice,
			"--text", text,
			"--write-media", outPath)
	case strings.Contains(base, "edge-tts"):
		return exec.CommandContext(ctx, cmdPath,
			"--voice", s.cfg.Audio.TTSVoice,
			"--text", text,
			"--write-media", outPath)
	default:
		return exec.CommandContext(ctx, cmdPath,
			"--text", text,
			"--output", outPath)
	}
}

// decodeAudio converts whatever the TTS command wrote into mono PCM at
// the pipeline sample rate, via ffmpeg. The call gets its own deadline
// so a hung ffmpeg cannot block the pipeline.
func (s *Synthesizer) decodeAudio(ctx context.Context, path string) (*Track, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Audio.TTSTimeoutSec)*time.Second)
	defer cancel()

	rate := s.cfg.Audio.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", fmt.Sprint(rate),
		"-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg decode produced no samples")
	}
	return FromPCM16(stdout.Bytes(), rate), nil
}

// fallbackVoice builds a deterministic tone standing in for the voice:
// 100ms per character, clamped to 3-30 seconds, at the style's pitch.
func fallbackVoice(text, voiceStyle string, sampleRate int) *Track {
	durMS := len(text) * 100
	if durMS < 3000 {
		durMS = 3000
	}
	if durMS > 30000 {
		durMS = 30000
	}
	freq, ok := fallbackFreq[voiceStyle]
	if !ok {
		freq = defaultFallbackFreq
	}
	return Tone(freq, durMS, sampleRate).FadeIn(500).FadeOut(500).Gain(fallbackGain)
}
