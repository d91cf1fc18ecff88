package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore archives tasks in an embedded SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS archived_tasks (
		id TEXT PRIMARY KEY,
		agent TEXT NOT NULL,
		state TEXT NOT NULL,
		payload TEXT NOT NULL,
		archived_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_archived_tasks_state ON archived_tasks(state);
	`)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context, taskID string) (*Record, error) {
	id, err := validTaskID(taskID)
	if err != nil {
		return nil, err
	}

	var (
		agent      string
		payload    string
		archivedAt time.Time
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT agent, payload, archived_at FROM archived_tasks WHERE id = ?`, id,
	).Scan(&agent, &payload, &archivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query archived task: %w", err)
	}

	rec := &Record{Agent: agent, ArchivedAt: archivedAt.UTC()}
	if err := json.Unmarshal([]byte(payload), &rec.Task); err != nil {
		return nil, fmt.Errorf("unmarshal archived task: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	rec.normalize()

	payload, err := json.Marshal(rec.Task)
	if err != nil {
		return fmt.Errorf("marshal archived task: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO archived_tasks (id, agent, state, payload, archived_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			agent = excluded.agent,
			state = excluded.state,
			payload = excluded.payload,
			archived_at = excluded.archived_at`,
		rec.Task.ID, rec.Agent, string(rec.Task.Status.State), string(payload), rec.ArchivedAt,
	)
	if err != nil {
		return fmt.Errorf("save archived task: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, taskID string) error {
	id, err := validTaskID(taskID)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM archived_tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete archived task: %w", err)
	}
	return nil
}
