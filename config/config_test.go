package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config file must not be an error: %v", err)
	}
	if cfg.LLM.TimeoutSec != 15 {
		t.Errorf("LLM timeout default %d, want 15", cfg.LLM.TimeoutSec)
	}
	if cfg.Audio.SampleRate != 44100 {
		t.Errorf("sample rate default %d, want 44100", cfg.Audio.SampleRate)
	}
	if cfg.Video.Width != 1920 || cfg.Video.Height != 1080 || cfg.Video.FPS != 24 {
		t.Errorf("video defaults wrong: %+v", cfg.Video)
	}
	if cfg.Security.RateLimitPerMin != 30 {
		t.Errorf("rate limit default %d, want 30", cfg.Security.RateLimitPerMin)
	}
	if cfg.Upload.Visibility != "private" {
		t.Errorf("upload visibility default %q, want private", cfg.Upload.Visibility)
	}
}

func TestLoadOverridesAndFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
llm:
  model: gpt-4o-mini
  timeout_sec: 5
audio:
  bitrate: 192k
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.Model != "gpt-4o-mini" || cfg.LLM.TimeoutSec != 5 {
		t.Errorf("overrides not applied: %+v", cfg.LLM)
	}
	if cfg.Audio.Bitrate != "192k" {
		t.Errorf("bitrate override not applied: %q", cfg.Audio.Bitrate)
	}
	// fields absent from the file still get defaults
	if cfg.LLM.Endpoint == "" || cfg.Audio.SampleRate != 44100 {
		t.Errorf("gaps not filled: %+v", cfg)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("llm: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed yaml must be an error")
	}
}
