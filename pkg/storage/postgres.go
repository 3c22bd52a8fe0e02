package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/starry-habits/pkg/habits"
)

// DefaultProfile names the row used when no profile is configured.
const DefaultProfile = "default"

const createTrackerTable = `
	CREATE TABLE IF NOT EXISTS habit_trackers (
		profile    TEXT PRIMARY KEY,
		document   JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// PGStore keeps each profile's tracker as one JSONB row in PostgreSQL.
type PGStore struct {
	pool    *pgxpool.Pool
	profile string
}

// NewPGStore connects, verifies the connection and creates the table if needed.
func NewPGStore(ctx context.Context, databaseURL, profile string) (*PGStore, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL is required")
	}
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// A single tracker needs very few connections
	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	if _, err := pool.Exec(ctx, createTrackerTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	if profile == "" {
		profile = DefaultProfile
	}
	return &PGStore{pool: pool, profile: profile}, nil
}

func (s *PGStore) Load(ctx context.Context) (*habits.Data, error) {
	var document []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM habit_trackers WHERE profile = $1`,
		s.profile,
	).Scan(&document)

	if errors.Is(err, pgx.ErrNoRows) {
		return habits.NewData(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tracker: %w", err)
	}
	return decode(document)
}

func (s *PGStore) Save(ctx context.Context, data *habits.Data) error {
	document, err := encode(data, false)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO habit_trackers (profile, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (profile) DO UPDATE
		SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at
	`, s.profile, document)
	if err != nil {
		return fmt.Errorf("failed to save tracker: %w", err)
	}
	return nil
}

// Ping checks database connectivity
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}
