package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"codecraft-studio/config"
	"codecraft-studio/types"
)

// Renderer produces the final video for a generation. Frames are drawn
// procedurally per scene and muxed with the mixed audio via ffmpeg.
// When ffmpeg is unavailable the renderer degrades to a placeholder
// text file plus a JSON metadata sidecar, so a generation always yields
// a video artifact.
type Renderer struct {
	cfg *config.Config
	log *logrus.Logger
}

// NewRenderer creates a video Renderer.
func NewRenderer(cfg *config.Config, log *logrus.Logger) *Renderer {
	return &Renderer{cfg: cfg, log: log}
}

// Render builds the video at basePath (extension added here) from the
// planned scenes and the mixed audio file. It returns the path of the
// artifact actually produced; only a placeholder write failure is an
// error.
func (r *Renderer) Render(ctx context.Context, doc *types.LyricDocument, scenes []types.Scene, audioFile, basePath string) (string, error) {
	if dir := filepath.Dir(basePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create video dir: %w", err)
		}
	}
	if len(scenes) == 0 {
		r.log.Warn("[video] no scenes to render — writing placeholder")
		return r.writePlaceholder(doc, scenes, basePath)
	}

	outPath := basePath + ".mp4"
	if err := r.renderMP4(ctx, scenes, audioFile, outPath); err != nil {
		r.log.Warnf("[video] render failed: %v — writing placeholder", err)
		return r.writePlaceholder(doc, scenes, basePath)
	}
	r.log.Infof("[video] rendered %s (%d scenes)", outPath, len(scenes))
	return outPath, nil
}

func (r *Renderer) renderMP4(ctx context.Context, scenes []types.Scene, audioFile, outPath string) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Video.RenderTimeoutSec)*time.Second)
	defer cancel()

	frameDir, err := os.MkdirTemp("", "frames-")
	if err != nil {
		return fmt.Errorf("frame dir: %w", err)
	}
	defer os.RemoveAll(frameDir)

	if err := r.writeFrames(ctx, scenes, frameDir); err != nil {
		return err
	}

	args := []string{"-y",
		"-framerate", fmt.Sprint(r.cfg.Video.FPS),
		"-i", filepath.Join(frameDir, "frame_%06d.png"),
	}
	if audioFile != "" {
		args = append(args, "-i", audioFile)
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
	)
	if audioFile != "" {
		args = append(args,
			"-c:a", "aac",
			"-b:a", "192k",
			"-shortest",
		)
	}
	args = append(args, "-movflags", "+faststart", outPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg mux: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("ffmpeg produced no output")
	}
	return nil
}

// writeFrames renders every scene's frames as a single numbered PNG
// sequence. A scene spans round(duration*fps) frames, at least one.
func (r *Renderer) writeFrames(ctx context.Context, scenes []types.Scene, dir string) error {
	fr := &frameRenderer{width: r.cfg.Video.Width, height: r.cfg.Video.Height}
	fps := float64(r.cfg.Video.FPS)
	frameIdx := 0
	for _, sc := range scenes {
		duration := sc.EndSec - sc.StartSec
		if duration <= 0 {
			duration = 30
		}
		count := int(math.Round(duration * fps))
		if count < 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := float64(i) / fps
			img := fr.renderFrame(sc, t, duration)
			path := filepath.Join(dir, fmt.Sprintf("frame_%06d.png", frameIdx))
			if err := writePNG(path, img); err != nil {
				return err
			}
			frameIdx++
		}
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame: %w", err)
	}
	defer f.Close()
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(f, img); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}

// placeholderMeta is the JSON sidecar written next to the placeholder.
type placeholderMeta struct {
	Title      string        `json:"title"`
	Theme      string        `json:"theme"`
	SceneCount int           `json:"scene_count"`
	Scenes     []types.Scene `json:"scenes"`
	CreatedAt  time.Time     `json:"created_at"`
	Note       string        `json:"note"`
}

// writePlaceholder produces the degraded artifact pair: a human-readable
// .info file and a .json sidecar describing the planned scenes.
func (r *Renderer) writePlaceholder(doc *types.LyricDocument, scenes []types.Scene, basePath string) (string, error) {
	infoPath := basePath + ".info"

	var sb strings.Builder
	fmt.Fprintf(&sb, "Video placeholder for %q (theme: %s)\n", doc.Title, doc.Theme)
	fmt.Fprintf(&sb, "Planned scenes: %d\n\n", len(scenes))
	for _, sc := range scenes {
		fmt.Fprintf(&sb, "[%d] %.1fs-%.1fs %s: %s\n", sc.Index, sc.StartSec, sc.EndSec, sc.Category, sc.Description)
	}
	if err := os.WriteFile(infoPath, []byte(sb.String()), 0644); err != nil {
		return "", fmt.Errorf("write placeholder: %w", err)
	}

	meta := placeholderMeta{
		Title:      doc.Title,
		Theme:      doc.Theme,
		SceneCount: len(scenes),
		Scenes:     scenes,
		CreatedAt:  time.Now().UTC(),
		Note:       "video rendering unavailable; scene plan preserved",
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal placeholder meta: %w", err)
	}
	if err := os.WriteFile(basePath+".json", metaBytes, 0644); err != nil {
		return "", fmt.Errorf("write placeholder meta: %w", err)
	}
	return infoPath, nil
}
