package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"codecraft-studio/security"
	"codecraft-studio/types"
)

// ErrNotFound is returned when a generation id has no record.
var ErrNotFound = errors.New("generation not found")

// learningCap bounds the learning table to the most recent entries.
const learningCap = 100

// Store is the SQLite persistence layer for generations, the learning
// table and the security audit log. It is the only long-term owner of
// generation records; persistence errors are fatal to the caller.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database under dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dataDir, "codecraft.db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS generations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		theme TEXT NOT NULL,
		title TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		voice_style TEXT NOT NULL DEFAULT '',
		music_style TEXT NOT NULL DEFAULT '',
		lyrics_data TEXT NOT NULL DEFAULT '',
		audio_file TEXT NOT NULL DEFAULT '',
		video_file TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		completed_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_generations_status ON generations(status);
	CREATE TABLE IF NOT EXISTS learning_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		theme TEXT NOT NULL,
		music_style TEXT NOT NULL,
		voice_style TEXT NOT NULL,
		rating INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS security_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		description TEXT NOT NULL,
		severity TEXT NOT NULL DEFAULT 'INFO',
		timestamp INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CreateGeneration inserts a new record and fills in its ID and
// creation timestamp.
func (s *Store) CreateGeneration(g *types.Generation) error {
	if g.Status == "" {
		g.Status = types.StatusPending
	}
	g.CreatedAt = time.Now().UTC()
	res, err := s.db.Exec(`
		INSERT INTO generations (theme, title, status, voice_style, music_style, lyrics_data, audio_file, video_file, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Theme, g.Title, g.Status, g.VoiceStyle, g.MusicStyle, g.LyricsData,
		g.AudioFile, g.VideoFile, g.ErrorMsg, g.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	g.ID = id
	return nil
}

// UpdateGeneration writes every mutable column of the record.
func (s *Store) UpdateGeneration(g *types.Generation) error {
	var completed interface{}
	if g.CompletedAt != nil {
		completed = g.CompletedAt.Unix()
	}
	res, err := s.db.Exec(`
		UPDATE generations
		SET status = ?, voice_style = ?, music_style = ?, lyrics_data = ?,
		    audio_file = ?, video_file = ?, error_message = ?, completed_at = ?
		WHERE id = ?`,
		g.Status, g.VoiceStyle, g.MusicStyle, g.LyricsData,
		g.AudioFile, g.VideoFile, g.ErrorMsg, completed, g.ID)
	if err != nil {
		return fmt.Errorf("update generation %d: %w", g.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update generation %d: %w", g.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetGeneration loads one record by id.
func (s *Store) GetGeneration(id int64) (types.Generation, error) {
	row := s.db.QueryRow(`
		SELECT id, theme, title, status, voice_style, music_style, lyrics_data,
		       audio_file, video_file, error_message, created_at, completed_at
		FROM generations WHERE id = ?`, id)
	return scanGeneration(row)
}

// ListRecent returns the most recently created completed generations,
// newest first. This backs external gallery/serving layers.
func (s *Store) ListRecent(limit int) ([]types.Generation, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := s.db.Query(`
		SELECT id, theme, title, status, voice_style, music_style, lyrics_data,
		       audio_file, video_file, error_message, created_at, completed_at
		FROM generations WHERE status = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		types.StatusCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	var out []types.Generation
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// CountByStatus returns how many generations are in the given status.
func (s *Store) CountByStatus(status string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM generations WHERE status = ?`, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count generations: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGeneration(row rowScanner) (types.Generation, error) {
	var g types.Generation
	var created int64
	var completed sql.NullInt64
	err := row.Scan(&g.ID, &g.Theme, &g.Title, &g.Status, &g.VoiceStyle, &g.MusicStyle,
		&g.LyricsData, &g.AudioFile, &g.VideoFile, &g.ErrorMsg, &created, &completed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return g, ErrNotFound
		}
		return g, fmt.Errorf("scan generation: %w", err)
	}
	g.CreatedAt = time.Unix(created, 0).UTC()
	if completed.Valid {
		t := time.Unix(completed.Int64, 0).UTC()
		g.CompletedAt = &t
	}
	return g, nil
}

// AppendLearning records one successful theme/style combination and
// prunes the table to its cap, oldest entries first. Insert and prune
// run in one transaction so concurrent generations cannot lose entries.
func (s *Store) AppendLearning(rec types.LearningRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("append learning: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO learning_data (theme, music_style, voice_style, rating, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.Theme, rec.MusicStyle, rec.VoiceStyle, rec.Rating, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("append learning: %w", err)
	}
	_, err = tx.Exec(`
		DELETE FROM learning_data
		WHERE id NOT IN (SELECT id FROM learning_data ORDER BY id DESC LIMIT ?)`,
		learningCap)
	if err != nil {
		return fmt.Errorf("prune learning: %w", err)
	}
	return tx.Commit()
}

// LookupLearning finds the most recently appended record whose stored
// theme occurs as a substring of the requested theme. Recency wins so
// the table behaves like the append-then-scan lookup it replaces.
func (s *Store) LookupLearning(theme string) (types.LearningRecord, bool, error) {
	row := s.db.QueryRow(`
		SELECT id, theme, music_style, voice_style, rating, created_at
		FROM learning_data
		WHERE instr(lower(?), lower(theme)) > 0
		ORDER BY id DESC LIMIT 1`, theme)

	var rec types.LearningRecord
	var created int64
	err := row.Scan(&rec.ID, &rec.Theme, &rec.MusicStyle, &rec.VoiceStyle, &rec.Rating, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, fmt.Errorf("lookup learning: %w", err)
	}
	rec.CreatedAt = time.Unix(created, 0).UTC()
	return rec, true, nil
}

// LearningCount reports the current table size (used by stats consumers).
func (s *Store) LearningCount() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM learning_data`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count learning: %w", err)
	}
	return n, nil
}

// InsertSecurityEvent persists one audit event. Implements security.Sink.
func (s *Store) InsertSecurityEvent(evt security.Event) error {
	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO security_logs (event_type, description, severity, timestamp)
		VALUES (?, ?, ?, ?)`,
		evt.Type, evt.Description, string(evt.Severity), ts.Unix())
	if err != nil {
		return fmt.Errorf("insert security event: %w", err)
	}
	return nil
}
