package profile

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store persists the profile and learned answers in SQLite.
// The profile is stored as a single JSON document; QnA entries get
// their own table so learn mode can upsert them individually.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and migrates) the store at dbPath
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS profile (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			data TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS qna (
			id TEXT PRIMARY KEY,
			question TEXT NOT NULL,
			question_norm TEXT NOT NULL UNIQUE,
			answer TEXT NOT NULL,
			tags TEXT,
			updated_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS session_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
	`)
	return err
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the profile snapshot with learned QnA attached.
// A missing profile yields an empty context, not an error.
func (s *Store) Load() (*Context, error) {
	ctx := &Context{}

	var data string
	err := s.db.QueryRow(`SELECT data FROM profile WHERE id = 1`).Scan(&data)
	switch {
	case err == sql.ErrNoRows:
		// Empty profile
	case err != nil:
		return nil, fmt.Errorf("failed to load profile: %w", err)
	default:
		if err := json.Unmarshal([]byte(data), ctx); err != nil {
			return nil, fmt.Errorf("corrupt profile document: %w", err)
		}
	}

	qna, err := s.ListQnA()
	if err != nil {
		return nil, err
	}
	ctx.QnA = qna
	return ctx, nil
}

// Save replaces the stored profile document. QnA entries are managed
// separately and not written here.
func (s *Store) Save(ctx *Context) error {
	doc := *ctx
	doc.QnA = nil

	data, err := json.Marshal(&doc)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO profile (id, data, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, string(data), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// ListQnA returns all learned entries ordered by insertion time
func (s *Store) ListQnA() ([]QnAEntry, error) {
	rows, err := s.db.Query(`SELECT id, question, answer, tags FROM qna ORDER BY updated_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list qna: %w", err)
	}
	defer rows.Close()

	var entries []QnAEntry
	for rows.Next() {
		var e QnAEntry
		var tags sql.NullString
		if err := rows.Scan(&e.ID, &e.Question, &e.Answer, &tags); err != nil {
			return nil, err
		}
		if tags.Valid && tags.String != "" {
			_ = json.Unmarshal([]byte(tags.String), &e.Tags)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LearnQnA upserts a learned answer. Duplicate questions (after
// normalization) overwrite the stored answer rather than adding a new
// entry. Returns true when a new entry was created.
func (s *Store) LearnQnA(question, answer string, tags ...string) (bool, error) {
	norm := NormalizeQuestion(question)
	if norm == "" || answer == "" {
		return false, nil
	}

	tagsJSON := ""
	if len(tags) > 0 {
		b, _ := json.Marshal(tags)
		tagsJSON = string(b)
	}

	var existing int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM qna WHERE question_norm = ?`, norm).Scan(&existing); err != nil {
		return false, err
	}

	_, err := s.db.Exec(`
		INSERT INTO qna (id, question, question_norm, answer, tags, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(question_norm) DO UPDATE SET answer = excluded.answer, updated_at = excluded.updated_at
	`, uuid.NewString(), question, norm, answer, tagsJSON, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to learn answer: %w", err)
	}
	return existing == 0, nil
}

// SaveSessionState stores an opaque resume token under key
func (s *Store) SaveSessionState(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO session_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now())
	return err
}

// LoadSessionState returns the stored token, or "" when absent
func (s *Store) LoadSessionState(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM session_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// ClearSessionState removes a stored token
func (s *Store) ClearSessionState(key string) error {
	_, err := s.db.Exec(`DELETE FROM session_state WHERE key = ?`, key)
	return err
}
