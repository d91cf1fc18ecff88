package state

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendUpstash  = "upstash"
)

// Config is loaded with the STORAGE prefix.
type Config struct {
	Backend     string        `envconfig:"BACKEND" split_words:"true" default:"memory"`
	SQLitePath  string        `envconfig:"SQLITE_PATH" split_words:"true" default:"data/tasks.db"`
	PostgresDSN string        `envconfig:"POSTGRES_DSN" split_words:"true"`
	KeyPrefix   string        `envconfig:"KEY_PREFIX" split_words:"true" default:"travel:task:"`
	TTL         time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
	Upstash     UpstashConfig
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case BackendMemory, BackendSQLite, BackendUpstash:
		return nil
	case BackendPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("storage backend postgres needs STORAGE_POSTGRES_DSN")
		}
		return nil
	default:
		return fmt.Errorf("unknown storage backend %q", c.Backend)
	}
}

// Open builds the configured Store for one agent's archive. TTL applies to the
// memory and upstash backends. The returned closer is never nil.
func Open(ctx context.Context, cfg Config, agent string) (Store, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendMemory:
		return NewMemoryStore(WithMemoryTTL(cfg.TTL)), nopCloser{}, nil
	case BackendSQLite:
		s, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return s, s, nil
	case BackendPostgres:
		s, err := NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return s, s, nil
	case BackendUpstash:
		s, err := NewUpstashArchive(cfg.Upstash, agent, WithKeyPrefix(cfg.KeyPrefix), WithRetention(cfg.TTL))
		if err != nil {
			return nil, nopCloser{}, err
		}
		return s, nopCloser{}, nil
	default:
		return nil, nopCloser{}, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
