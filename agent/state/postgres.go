package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type taskRow struct {
	bun.BaseModel `bun:"table:archived_tasks,alias:at"`

	ID         string    `bun:"id,pk"`
	Agent      string    `bun:"agent,notnull"`
	State      string    `bun:"state,notnull"`
	Payload    string    `bun:"payload,type:jsonb,notnull"`
	ArchivedAt time.Time `bun:"archived_at,notnull"`
}

func rowFromRecord(rec *Record) (*taskRow, error) {
	payload, err := json.Marshal(rec.Task)
	if err != nil {
		return nil, fmt.Errorf("marshal archived task: %w", err)
	}
	return &taskRow{
		ID:         rec.Task.ID,
		Agent:      rec.Agent,
		State:      string(rec.Task.Status.State),
		Payload:    string(payload),
		ArchivedAt: rec.ArchivedAt,
	}, nil
}

func (r *taskRow) record() (*Record, error) {
	rec := &Record{Agent: r.Agent, ArchivedAt: r.ArchivedAt.UTC()}
	if err := json.Unmarshal([]byte(r.Payload), &rec.Task); err != nil {
		return nil, fmt.Errorf("unmarshal archived task: %w", err)
	}
	return rec, nil
}

// PostgresStore archives tasks in Postgres through bun.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	s := &PostgresStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*taskRow)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *PostgresStore) Load(ctx context.Context, taskID string) (*Record, error) {
	id, err := validTaskID(taskID)
	if err != nil {
		return nil, err
	}

	row := new(taskRow)
	err = s.db.NewSelect().Model(row).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query archived task: %w", err)
	}
	return row.record()
}

func (s *PostgresStore) Save(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	rec.normalize()

	row, err := rowFromRecord(rec)
	if err != nil {
		return err
	}

	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("agent = EXCLUDED.agent").
		Set("state = EXCLUDED.state").
		Set("payload = EXCLUDED.payload").
		Set("archived_at = EXCLUDED.archived_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save archived task: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, taskID string) error {
	id, err := validTaskID(taskID)
	if err != nil {
		return err
	}
	if _, err := s.db.NewDelete().Model((*taskRow)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		return fmt.Errorf("delete archived task: %w", err)
	}
	return nil
}
