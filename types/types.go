package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Verse is one structural unit of a lyric document.
type Verse struct {
	Type   string `json:"type"`   // verse | chorus | bridge
	Lyrics string `json:"lyrics"`
	Timing string `json:"timing"` // "30:60" (seconds pair) or "0:30-1:00" (mm:ss range)
}

// LyricDocument is the full structured lyric output for one generation.
// It is serialized as JSON into Generation.LyricsData.
type LyricDocument struct {
	Title    string  `json:"title"`
	Theme    string  `json:"theme"`
	FullText string  `json:"full_text"`
	Verses   []Verse `json:"verses"`
}

// Scene is one visual unit planned from a verse, used to drive rendering.
type Scene struct {
	Index       int      `json:"index"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Colors      []string `json:"colors"`
	VerseType   string   `json:"verse_type"`
	Lyrics      string   `json:"lyrics"`
	StartSec    float64  `json:"start_sec"`
	EndSec      float64  `json:"end_sec"`
}

// Generation status values. Transitions are strictly
// pending -> generating -> completed|failed.
const (
	StatusPending    = "pending"
	StatusGenerating = "generating"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Generation is one persisted end-to-end content request.
type Generation struct {
	ID          int64      `json:"id"`
	Theme       string     `json:"theme"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	VoiceStyle  string     `json:"voice_style"`
	MusicStyle  string     `json:"music_style"`
	LyricsData  string     `json:"lyrics_data"`
	AudioFile   string     `json:"audio_file"`
	VideoFile   string     `json:"video_file"`
	ErrorMsg    string     `json:"error_message,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// LearningRecord is one capped learning-table entry: a theme keyword
// associated with the styles that worked for it.
type LearningRecord struct {
	ID         int64     `json:"id"`
	Theme      string    `json:"theme"`
	MusicStyle string    `json:"music_style"`
	VoiceStyle string    `json:"voice_style"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
}

// Request is the validated input for one generation.
type Request struct {
	Theme string `json:"theme" validate:"required,min=3"`
	Title string `json:"title"`
}

// Result is what the orchestrator hands back on success.
type Result struct {
	ID         int64          `json:"id"`
	AudioFile  string         `json:"audio_file"`
	VideoFile  string         `json:"video_file"`
	VoiceStyle string         `json:"voice_style"`
	MusicStyle string         `json:"music_style"`
	Lyrics     *LyricDocument `json:"lyrics"`
}

// ParseTiming converts a verse timing string into start/end seconds.
// Two forms occur in practice: "30:60" meaning start:end in whole
// seconds, and "0:30-1:00" meaning an mm:ss range.
func ParseTiming(timing string) (start, end float64, err error) {
	timing = strings.TrimSpace(timing)
	if timing == "" {
		return 0, 0, fmt.Errorf("empty timing")
	}

	if strings.Contains(timing, "-") {
		parts := strings.SplitN(timing, "-", 2)
		start, err = parseClock(parts[0])
		if err != nil {
			return 0, 0, err
		}
		end, err = parseClock(parts[1])
		if err != nil {
			return 0, 0, err
		}
		return start, end, nil
	}

	parts := strings.SplitN(timing, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad timing %q", timing)
	}
	start, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad timing %q: %w", timing, err)
	}
	end, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad timing %q: %w", timing, err)
	}
	return start, end, nil
}

// parseClock parses an "m:ss" clock value into seconds.
func parseClock(s string) (float64, error) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("bad clock value %q", s)
	}
	mins, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("bad clock value %q: %w", s, err)
	}
	secs, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("bad clock value %q: %w", s, err)
	}
	return float64(mins)*60 + secs, nil
}
