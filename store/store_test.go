package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"codecraft-studio/security"
	"codecraft-studio/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGenerationLifecycle(t *testing.T) {
	s := openTestStore(t)

	gen := &types.Generation{Theme: "eternal glory", Title: "Invictus"}
	if err := s.CreateGeneration(gen); err != nil {
		t.Fatalf("create: %v", err)
	}
	if gen.ID == 0 {
		t.Fatal("create must assign an id")
	}
	if gen.Status != types.StatusPending {
		t.Errorf("new generation status %q, want pending", gen.Status)
	}

	gen.Status = types.StatusGenerating
	gen.VoiceStyle = "choir"
	gen.MusicStyle = "gregorian"
	if err := s.UpdateGeneration(gen); err != nil {
		t.Fatalf("update: %v", err)
	}

	now := time.Now().UTC()
	gen.Status = types.StatusCompleted
	gen.AudioFile = "static/audio/song_1.mp3"
	gen.VideoFile = "static/video/video_1.mp4"
	gen.CompletedAt = &now
	if err := s.UpdateGeneration(gen); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, err := s.GetGeneration(gen.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != types.StatusCompleted || got.MusicStyle != "gregorian" {
		t.Errorf("loaded record wrong: %+v", got)
	}
	if got.CompletedAt == nil {
		t.Error("completed_at not persisted")
	}
}

func TestGetGenerationNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetGeneration(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateGeneration(&types.Generation{ID: 999}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing record: expected ErrNotFound, got %v", err)
	}
}

func TestListRecentReturnsOnlyCompleted(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 3; i++ {
		gen := &types.Generation{Theme: fmt.Sprintf("theme %d", i), Title: "t"}
		if err := s.CreateGeneration(gen); err != nil {
			t.Fatal(err)
		}
		if i < 2 {
			gen.Status = types.StatusCompleted
			if err := s.UpdateGeneration(gen); err != nil {
				t.Fatal(err)
			}
		}
	}

	recent, err := s.ListRecent(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("listed %d, want 2 completed", len(recent))
	}
	// newest first
	if recent[0].Theme != "theme 1" {
		t.Errorf("ordering wrong: first is %q", recent[0].Theme)
	}
}

func TestCountByStatus(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 4; i++ {
		if err := s.CreateGeneration(&types.Generation{Theme: "x", Title: "t"}); err != nil {
			t.Fatal(err)
		}
	}
	n, err := s.CountByStatus(types.StatusPending)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("count %d, want 4", n)
	}
}

func TestLearningCapEvictsOldest(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < learningCap+20; i++ {
		rec := types.LearningRecord{
			Theme:      fmt.Sprintf("theme-%03d", i),
			MusicStyle: "epic",
			VoiceStyle: "heroic_male",
			Rating:     5,
		}
		if err := s.AppendLearning(rec); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	n, err := s.LearningCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != learningCap {
		t.Fatalf("learning table holds %d, want cap %d", n, learningCap)
	}

	// the oldest entries are gone, the newest remain
	if _, ok, _ := s.LookupLearning("theme-000"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok, _ := s.LookupLearning(fmt.Sprintf("theme-%03d", learningCap+19)); !ok {
		t.Error("newest entry missing")
	}
}

func TestLookupLearningSubstringAndRecency(t *testing.T) {
	s := openTestStore(t)

	first := types.LearningRecord{Theme: "gladiator", MusicStyle: "gladiator", VoiceStyle: "heroic_male", Rating: 5}
	second := types.LearningRecord{Theme: "gladiator", MusicStyle: "emotional", VoiceStyle: "soprano", Rating: 5}
	if err := s.AppendLearning(first); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendLearning(second); err != nil {
		t.Fatal(err)
	}

	// stored theme matches as a substring of the request
	rec, ok, err := s.LookupLearning("epic gladiator arena fight")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !ok {
		t.Fatal("expected a learned match")
	}
	// the most recently appended record wins
	if rec.MusicStyle != "emotional" {
		t.Errorf("recency not honored: got %s", rec.MusicStyle)
	}

	if _, ok, _ := s.LookupLearning("completely unrelated"); ok {
		t.Error("unrelated theme should not match")
	}
}

func TestInsertSecurityEvent(t *testing.T) {
	s := openTestStore(t)
	evt := security.Event{
		Type:        "generation_started",
		Description: "generation 1",
		Severity:    security.SeverityInfo,
	}
	if err := s.InsertSecurityEvent(evt); err != nil {
		t.Fatalf("insert event: %v", err)
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM security_logs`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("security_logs rows %d, want 1", n)
	}
}
