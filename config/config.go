package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Audio    AudioConfig    `yaml:"audio"`
	Video    VideoConfig    `yaml:"video"`
	Upload   UploadConfig   `yaml:"upload"`
	Security SecurityConfig `yaml:"security"`
	Paths    PathsConfig    `yaml:"paths"`
}

type LLMConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSec  int     `yaml:"timeout_sec"`
}

type AudioConfig struct {
	SampleRate    int    `yaml:"sample_rate"`
	OutputFormat  string `yaml:"output_format"`
	Bitrate       string `yaml:"bitrate"`
	TTSCommand    string `yaml:"tts_command"`
	TTSVoice      string `yaml:"tts_voice"`
	TTSTimeoutSec int    `yaml:"tts_timeout_sec"`
}

type VideoConfig struct {
	Width            int `yaml:"width"`
	Height           int `yaml:"height"`
	FPS              int `yaml:"fps"`
	RenderTimeoutSec int `yaml:"render_timeout_sec"`
}

type UploadConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Visibility        string `yaml:"visibility"`
	CategoryID        string `yaml:"category_id"`
	NotifySubscribers bool   `yaml:"notify_subscribers"`
	MadeForKids       bool   `yaml:"made_for_kids"`
	DefaultLanguage   string `yaml:"default_language"`
}

type SecurityConfig struct {
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
	LogLevel        string `yaml:"log_level"`
}

type PathsConfig struct {
	Output   string `yaml:"output"`
	AudioDir string `yaml:"audio_dir"`
	VideoDir string `yaml:"video_dir"`
	Data     string `yaml:"data"`
	Logs     string `yaml:"logs"`
}

// Load reads a YAML config file. A missing file is not an error: the
// defaults are enough to run the pipeline end to end.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.fillDefaults()
	return cfg
}

func (c *Config) fillDefaults() {
	if c.LLM.Endpoint == "" {
		c.LLM.Endpoint = "https://api.openai.com/v1/chat/completions"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
	if c.LLM.TimeoutSec == 0 {
		c.LLM.TimeoutSec = 15
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 44100
	}
	if c.Audio.OutputFormat == "" {
		c.Audio.OutputFormat = "mp3"
	}
	if c.Audio.Bitrate == "" {
		c.Audio.Bitrate = "320k"
	}
	if c.Audio.TTSVoice == "" {
		c.Audio.TTSVoice = "en-US-GuyNeural"
	}
	if c.Audio.TTSTimeoutSec == 0 {
		c.Audio.TTSTimeoutSec = 60
	}
	if c.Video.Width == 0 {
		c.Video.Width = 1920
	}
	if c.Video.Height == 0 {
		c.Video.Height = 1080
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = 24
	}
	if c.Video.RenderTimeoutSec == 0 {
		c.Video.RenderTimeoutSec = 300
	}
	if c.Upload.Visibility == "" {
		c.Upload.Visibility = "private"
	}
	if c.Upload.CategoryID == "" {
		c.Upload.CategoryID = "10" // Music
	}
	if c.Upload.DefaultLanguage == "" {
		c.Upload.DefaultLanguage = "en"
	}
	if c.Security.RateLimitPerMin == 0 {
		c.Security.RateLimitPerMin = 30
	}
	if c.Security.LogLevel == "" {
		c.Security.LogLevel = "info"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}
	if c.Paths.AudioDir == "" {
		c.Paths.AudioDir = "static/audio"
	}
	if c.Paths.VideoDir == "" {
		c.Paths.VideoDir = "static/video"
	}
	if c.Paths.Data == "" {
		c.Paths.Data = "data"
	}
	if c.Paths.Logs == "" {
		c.Paths.Logs = "logs"
	}
}
