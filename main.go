package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"codecraft-studio/config"
	"codecraft-studio/lyrics"
	"codecraft-studio/orchestrator"
	"codecraft-studio/security"
	"codecraft-studio/store"
	"codecraft-studio/types"
	"codecraft-studio/upload"
	"codecraft-studio/video"

	studioaudio "codecraft-studio/audio"
)

func main() {
	// .env is for local dev; CI injects real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	audit := security.NewLogger(cfg.Security.LogLevel)
	log := audit.Logrus()

	for _, dir := range []string{cfg.Paths.Output, cfg.Paths.AudioDir, cfg.Paths.VideoDir, cfg.Paths.Data, cfg.Paths.Logs} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("create dir %s: %v", dir, err)
		}
	}

	st, err := store.Open(cfg.Paths.Data)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()
	audit.AttachSink(st)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: codecraft-studio <theme> [title]")
		os.Exit(1)
	}
	req := types.Request{Theme: strings.TrimSpace(os.Args[1])}
	if len(os.Args) > 2 {
		req.Title = strings.TrimSpace(strings.Join(os.Args[2:], " "))
	}

	pipeline := orchestrator.New(cfg, st,
		lyrics.New(cfg, log),
		studioaudio.NewSynthesizer(cfg, log),
		video.NewRenderer(cfg, log),
		audit,
	)

	ctx := context.Background()
	result, err := pipeline.Run(ctx, req)
	if err != nil {
		log.Errorf("generation failed: %v", err)
		os.Exit(1)
	}

	log.Infof("generation %d complete", result.ID)
	log.Infof("  audio: %s", result.AudioFile)
	log.Infof("  video: %s", result.VideoFile)
	log.Infof("  voice: %s  music: %s", result.VoiceStyle, result.MusicStyle)

	if cfg.Upload.Enabled {
		gen, err := st.GetGeneration(result.ID)
		if err != nil {
			log.Warnf("load generation for upload: %v", err)
			return
		}
		uploader := upload.New(cfg, log)
		meta := uploader.BuildMetadata(&gen, result.Lyrics)
		videoID, videoURL, err := uploader.Run(ctx, result.VideoFile, meta)
		if err != nil {
			// Upload is best effort; the generation already succeeded.
			log.Warnf("upload failed: %v", err)
			audit.Event("upload_failed", err.Error(), security.SeverityWarning)
			return
		}
		audit.Event("upload_completed", videoURL, security.SeverityInfo)
		if err := upload.LogUpload(cfg.Paths.Logs, videoID, videoURL, result.VideoFile, meta); err != nil {
			log.Warnf("write upload log: %v", err)
		}
	}
}
