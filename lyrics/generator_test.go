package lyrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"codecraft-studio/config"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestFallbackBattleTheme(t *testing.T) {
	doc := Fallback("the great battle", "War Song")
	if doc.Title != "War Song" || doc.Theme != "the great battle" {
		t.Fatalf("fallback header: %+v", doc)
	}
	if len(doc.Verses) != 4 {
		t.Fatalf("expected 4 verses, got %d", len(doc.Verses))
	}
	if !strings.Contains(doc.FullText, "Warriors gather in the dawn") {
		t.Errorf("battle template not used: %q", doc.FullText)
	}
}

func TestFallbackSacredAndDefaultThemes(t *testing.T) {
	sacred := Fallback("a sacred vow", "Hymn")
	if !strings.Contains(sacred.FullText, "Divine light guides our way") {
		t.Errorf("sacred template not used: %q", sacred.FullText)
	}
	generic := Fallback("summer afternoon", "Song")
	if !strings.Contains(generic.FullText, "Rise above the shadow's call") {
		t.Errorf("epic template not used for default theme: %q", generic.FullText)
	}
}

func TestFallbackVerseStructureAndTimings(t *testing.T) {
	doc := Fallback("anything", "Song")
	for i, v := range doc.Verses {
		wantType := "verse"
		if i%2 == 1 {
			wantType = "chorus"
		}
		if v.Type != wantType {
			t.Errorf("verse %d type = %s, want %s", i, v.Type, wantType)
		}
	}
	if doc.Verses[0].Timing != "0:30" || doc.Verses[3].Timing != "90:120" {
		t.Errorf("timings wrong: %q %q", doc.Verses[0].Timing, doc.Verses[3].Timing)
	}
}

func TestGenerateFallsBackWithoutAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := config.Default()
	g := New(cfg, quietLogger())
	doc := g.Generate(context.Background(), "epic quest", "Quest")
	if doc == nil || strings.TrimSpace(doc.FullText) == "" {
		t.Fatal("Generate must always return a usable document")
	}
}

func TestGenerateFallsBackOnServerError(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.LLM.Endpoint = srv.URL
	g := New(cfg, quietLogger())
	doc := g.Generate(context.Background(), "sacred fire", "Flame")
	if !strings.Contains(doc.FullText, "Divine light guides our way") {
		t.Errorf("server error should fall back to template: %q", doc.FullText)
	}
}

func TestGenerateParsesAPIResponse(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	payload := `{"choices":[{"message":{"content":"{\"title\":\"Flame\",\"theme\":\"fire\",\"full_text\":\"burning bright\",\"verses\":[{\"type\":\"verse\",\"lyrics\":\"burning bright\",\"timing\":\"0:30\"}]}"}}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.LLM.Endpoint = srv.URL
	g := New(cfg, quietLogger())
	doc := g.Generate(context.Background(), "fire", "Flame")
	if doc.FullText != "burning bright" || len(doc.Verses) != 1 {
		t.Errorf("API response not parsed: %+v", doc)
	}
}

func TestGenerateStripsMarkdownFences(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	content := "```json\n{\"title\":\"T\",\"theme\":\"x\",\"full_text\":\"fenced lyrics\",\"verses\":[{\"type\":\"verse\",\"lyrics\":\"fenced lyrics\",\"timing\":\"0:30\"}]}\n```"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := `{"choices":[{"message":{"content":` + jsonString(content) + `}}]}`
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(resp))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.LLM.Endpoint = srv.URL
	g := New(cfg, quietLogger())
	doc := g.Generate(context.Background(), "x", "T")
	if doc.FullText != "fenced lyrics" {
		t.Errorf("fenced JSON not handled: %q", doc.FullText)
	}
}

func TestGenerateRejectsEmptyVerses(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"title\":\"T\",\"verses\":[]}"}}]}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.LLM.Endpoint = srv.URL
	g := New(cfg, quietLogger())
	doc := g.Generate(context.Background(), "battle cry", "T")
	// empty verses must trigger the fallback, not an empty document
	if len(doc.Verses) == 0 {
		t.Fatal("empty API document should fall back to templates")
	}
}

func TestCleanJSON(t *testing.T) {
	cases := []struct{ in, want string }{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
	}
	for _, c := range cases {
		if got := cleanJSON(c.in); got != c.want {
			t.Errorf("cleanJSON(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// jsonString quotes a string as a JSON literal for response fixtures.
func jsonString(s string) string {
	out := strings.NewReplacer("\\", "\\\\", "\"", "\\\"", "\n", "\\n").Replace(s)
	return "\"" + out + "\""
}
