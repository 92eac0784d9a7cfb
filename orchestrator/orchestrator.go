package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"codecraft-studio/audio"
	"codecraft-studio/config"
	"codecraft-studio/scenes"
	"codecraft-studio/security"
	"codecraft-studio/store"
	"codecraft-studio/styles"
	"codecraft-studio/types"
)

// GenerationStore is the persistence surface the pipeline depends on.
// *store.Store implements it.
type GenerationStore interface {
	CreateGeneration(g *types.Generation) error
	UpdateGeneration(g *types.Generation) error
	AppendLearning(rec types.LearningRecord) error
	LookupLearning(theme string) (types.LearningRecord, bool, error)
}

// LyricSource produces a lyric document for a theme. Implementations
// must degrade internally rather than fail.
type LyricSource interface {
	Generate(ctx context.Context, theme, title string) *types.LyricDocument
}

// VoiceSynth produces the effect-processed voice track for lyric text.
type VoiceSynth interface {
	SynthesizeVoice(ctx context.Context, text, voiceStyle string) *audio.Track
}

// VideoRenderer turns a scene plan plus audio into a video artifact.
type VideoRenderer interface {
	Render(ctx context.Context, doc *types.LyricDocument, scenes []types.Scene, audioFile, basePath string) (string, error)
}

// Pipeline runs one generation end to end: lyrics, style selection,
// voice synthesis, background music, mixing, scene planning, rendering,
// and record keeping. Persistence failures are fatal; every media stage
// degrades instead of failing.
type Pipeline struct {
	cfg      *config.Config
	store    GenerationStore
	lyrics   LyricSource
	synth    VoiceSynth
	renderer VideoRenderer
	selector *styles.Selector
	audit    *security.Logger
	limiter  *security.RateLimiter
	validate *validator.Validate
	log      *logrus.Logger
}

// New wires a Pipeline from its stages.
func New(cfg *config.Config, st GenerationStore, lyrics LyricSource, synth VoiceSynth, renderer VideoRenderer, audit *security.Logger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		lyrics:   lyrics,
		synth:    synth,
		renderer: renderer,
		selector: styles.New(st, audit.Logrus()),
		audit:    audit,
		limiter:  security.NewRateLimiter(cfg.Security.RateLimitPerMin),
		validate: validator.New(),
		log:      audit.Logrus(),
	}
}

// Run executes one generation for the request. The returned error is
// non-nil only when no completed record could be produced; the record
// itself (when one was created) reflects the final status.
func (p *Pipeline) Run(ctx context.Context, req types.Request) (*types.Result, error) {
	if err := p.validate.Struct(req); err != nil {
		p.audit.Event("validation_failed", fmt.Sprintf("rejected request: %v", err), security.SeverityWarning)
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if !p.limiter.Allow("generate") {
		p.audit.Event("rate_limited", "generation rejected by rate limiter", security.SeverityWarning)
		return nil, fmt.Errorf("rate limit exceeded")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Invictus " + req.Theme
	}

	gen := &types.Generation{Theme: req.Theme, Title: title, Status: types.StatusPending}
	if err := p.store.CreateGeneration(gen); err != nil {
		p.audit.Event("store_failure", fmt.Sprintf("create generation: %v", err), security.SeverityError)
		return nil, err
	}
	p.audit.Event("generation_started", fmt.Sprintf("generation %d theme %q", gen.ID, gen.Theme), security.SeverityInfo)

	gen.Status = types.StatusGenerating
	if err := p.store.UpdateGeneration(gen); err != nil {
		return nil, p.fail(gen, fmt.Errorf("mark generating: %w", err))
	}

	runID := uuid.New().String()[:8]

	// Lyrics. Never fails: the source falls back to templates.
	doc := p.lyrics.Generate(ctx, gen.Theme, gen.Title)
	lyricsJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, p.fail(gen, fmt.Errorf("encode lyrics: %w", err))
	}
	gen.LyricsData = string(lyricsJSON)
	p.audit.Event("lyrics_generated", fmt.Sprintf("generation %d: %d verses", gen.ID, len(doc.Verses)), security.SeverityInfo)

	// Style selection. The record is persisted after every phase so a
	// crash mid-pipeline never strands a row with no data.
	gen.VoiceStyle, gen.MusicStyle = p.selector.Select(gen.Theme, doc.FullText)
	p.log.Infof("[pipeline] styles for %d: voice=%s music=%s", gen.ID, gen.VoiceStyle, gen.MusicStyle)
	if err := p.store.UpdateGeneration(gen); err != nil {
		return nil, p.fail(gen, fmt.Errorf("persist lyrics and styles: %w", err))
	}

	// Audio: voice, background, mix, export. Each step degrades.
	voice := p.synth.SynthesizeVoice(ctx, doc.FullText, gen.VoiceStyle)
	background := audio.BuildBackground(gen.MusicStyle, voice.DurationMS(), p.cfg.Audio.SampleRate)
	mixed := audio.Mix(voice, background, gen.MusicStyle)

	audioBase := filepath.Join(p.cfg.Paths.AudioDir, fmt.Sprintf("song_%d_%s", gen.ID, runID))
	audioFile, err := audio.Export(ctx, mixed, audioBase, p.cfg.Audio.Bitrate, p.log)
	if err != nil {
		return nil, p.fail(gen, fmt.Errorf("export audio: %w", err))
	}
	gen.AudioFile = audioFile
	p.audit.Event("audio_generated", fmt.Sprintf("generation %d: %s", gen.ID, audioFile), security.SeverityInfo)
	if err := p.store.UpdateGeneration(gen); err != nil {
		return nil, p.fail(gen, fmt.Errorf("persist audio path: %w", err))
	}

	// Scenes and video.
	plan := scenes.Plan(doc)
	videoBase := filepath.Join(p.cfg.Paths.VideoDir, fmt.Sprintf("video_%d_%s", gen.ID, runID))
	videoFile, err := p.renderer.Render(ctx, doc, plan, audioFile, videoBase)
	if err != nil {
		return nil, p.fail(gen, fmt.Errorf("render video: %w", err))
	}
	gen.VideoFile = videoFile
	p.audit.Event("video_generated", fmt.Sprintf("generation %d: %s", gen.ID, videoFile), security.SeverityInfo)
	if err := p.store.UpdateGeneration(gen); err != nil {
		return nil, p.fail(gen, fmt.Errorf("persist video path: %w", err))
	}

	// Final commit.
	now := time.Now().UTC()
	gen.Status = types.StatusCompleted
	gen.CompletedAt = &now
	if err := p.store.UpdateGeneration(gen); err != nil {
		return nil, p.fail(gen, fmt.Errorf("complete generation: %w", err))
	}

	if err := p.store.AppendLearning(types.LearningRecord{
		Theme:      gen.Theme,
		MusicStyle: gen.MusicStyle,
		VoiceStyle: gen.VoiceStyle,
		Rating:     5,
	}); err != nil {
		p.log.Warnf("[pipeline] learning append failed: %v", err)
	}

	p.audit.Event("generation_completed", fmt.Sprintf("generation %d completed", gen.ID), security.SeverityInfo)
	return &types.Result{
		ID:         gen.ID,
		AudioFile:  gen.AudioFile,
		VideoFile:  gen.VideoFile,
		VoiceStyle: gen.VoiceStyle,
		MusicStyle: gen.MusicStyle,
		Lyrics:     doc,
	}, nil
}

// fail marks the generation failed (best effort) and returns the cause.
func (p *Pipeline) fail(gen *types.Generation, cause error) error {
	p.audit.Event("generation_failed", fmt.Sprintf("generation %d: %v", gen.ID, cause), security.SeverityError)
	gen.Status = types.StatusFailed
	gen.ErrorMsg = cause.Error()
	if err := p.store.UpdateGeneration(gen); err != nil {
		p.log.Errorf("[pipeline] could not mark generation %d failed: %v", gen.ID, err)
	}
	return cause
}

// Verify interface satisfaction at compile time.
var _ GenerationStore = (*store.Store)(nil)
