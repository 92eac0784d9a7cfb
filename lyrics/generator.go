package lyrics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"codecraft-studio/config"
	"codecraft-studio/types"
)

const systemPrompt = `You are a master lyricist who creates epic, cinematic song lyrics. Always respond with valid JSON.

The JSON must have exactly these fields:
- "title": the song title
- "theme": the song theme
- "full_text": the complete lyrics as one text
- "verses": array of {"type": "verse"|"chorus"|"bridge", "lyrics": "...", "timing": "start:end in seconds, e.g. 30:60"}

The lyrics must be epic and emotionally resonant, suitable for orchestral/cinematic music, structured with verses and choruses, inspiring and uplifting. Timings must be ordered and non-overlapping.`

// Generator produces lyric documents from a theme, via an
// OpenAI-compatible chat completions endpoint with a deterministic
// template fallback when the API is unavailable.
type Generator struct {
	cfg        *config.Config
	httpClient *http.Client
	log        *logrus.Logger
}

// New creates a lyric Generator.
func New(cfg *config.Config, log *logrus.Logger) *Generator {
	return &Generator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.LLM.TimeoutSec+5) * time.Second},
		log:        log,
	}
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate returns a lyric document for the theme. It never fails: any
// API problem (missing key, network error, timeout, malformed JSON)
// degrades to the template fallback.
func (g *Generator) Generate(ctx context.Context, theme, title string) *types.LyricDocument {
	doc, err := g.generateWithAPI(ctx, theme, title)
	if err != nil {
		g.log.Warnf("[lyrics] API generation failed: %v — using template fallback", err)
		return Fallback(theme, title)
	}
	g.log.Infof("[lyrics] Generated %d verses for %q", len(doc.Verses), title)
	return doc
}

func (g *Generator) generateWithAPI(ctx context.Context, theme, title string) (*types.LyricDocument, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(g.cfg.LLM.TimeoutSec)*time.Second)
	defer cancel()

	reqBody := chatRequest{
		Model: g.cfg.LLM.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(theme, title)},
		},
		Temperature:    g.cfg.LLM.Temperature,
		MaxTokens:      2048,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.cfg.LLM.Endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lyrics request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lyrics API status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return nil, fmt.Errorf("parse API response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("lyrics API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("lyrics API returned no choices")
	}

	content := cleanJSON(chatResp.Choices[0].Message.Content)
	var doc types.LyricDocument
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("parse lyric JSON: %w", err)
	}
	return normalize(&doc, theme, title)
}

func buildUserPrompt(theme, title string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Create powerful, cinematic lyrics for a song titled %q with the theme %q.\n\n", title, theme))
	sb.WriteString("Include verse, chorus, and bridge sections with timing information for video synchronization.\n")
	sb.WriteString("Respond ONLY with valid JSON. No markdown. No explanation.")
	return sb.String()
}

// normalize fills omitted fields and rejects documents that would break
// the downstream pipeline.
func normalize(doc *types.LyricDocument, theme, title string) (*types.LyricDocument, error) {
	if doc.Title == "" {
		doc.Title = title
	}
	if doc.Theme == "" {
		doc.Theme = theme
	}
	if len(doc.Verses) == 0 {
		return nil, fmt.Errorf("lyric document has no verses")
	}
	if strings.TrimSpace(doc.FullText) == "" {
		lines := make([]string, 0, len(doc.Verses))
		for _, v := range doc.Verses {
			lines = append(lines, v.Lyrics)
		}
		doc.FullText = strings.Join(lines, "\n")
	}
	if strings.TrimSpace(doc.FullText) == "" {
		return nil, fmt.Errorf("lyric document has no text")
	}
	return doc, nil
}

// fallback template lines keyed by theme keyword family.
var templateLines = map[string][]string{
	"epic": {
		"Rise above the shadow's call",
		"Through the fire we stand tall",
		"Victory echoes through the land",
		"United we make our final stand",
	},
	"battle": {
		"Warriors gather in the dawn",
		"Steel and courage pressing on",
		"Glory waits beyond the fight",
		"We are champions of the light",
	},
	"sacred": {
		"Divine light guides our way",
		"Sacred vows we keep today",
		"Eternal grace within our souls",
		"Heaven's plan for us unfolds",
	},
}

// Fallback builds the deterministic template document for a theme.
// Lines alternate verse/chorus with 30-second timing slots.
func Fallback(theme, title string) *types.LyricDocument {
	themeLower := strings.ToLower(theme)
	var lines []string
	switch {
	case strings.Contains(themeLower, "battle") || strings.Contains(themeLower, "war"):
		lines = templateLines["battle"]
	case strings.Contains(themeLower, "sacred") || strings.Contains(themeLower, "divine"):
		lines = templateLines["sacred"]
	default:
		lines = templateLines["epic"]
	}

	verses := make([]types.Verse, 0, len(lines))
	for i, line := range lines {
		vtype := "verse"
		if i%2 == 1 {
			vtype = "chorus"
		}
		verses = append(verses, types.Verse{
			Type:   vtype,
			Lyrics: line,
			Timing: fmt.Sprintf("%d:%d", i*30, (i+1)*30),
		})
	}

	return &types.LyricDocument{
		Title:    title,
		Theme:    theme,
		FullText: strings.Join(lines, "\n"),
		Verses:   verses,
	}
}

// cleanJSON strips markdown fences if the model wraps its response in
// ```json ... ```.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
