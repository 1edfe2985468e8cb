package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/coastal7-sdlc/user-story-agent/common/id"
	"github.com/coastal7-sdlc/user-story-agent/core/config"
	"github.com/coastal7-sdlc/user-story-agent/core/db"
	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS user_story_batches (
		id           BIGINT PRIMARY KEY,
		user_stories JSONB NOT NULL,
		requirements TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		model        TEXT NOT NULL,
		status       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS user_story_batches_created_at_idx
		ON user_story_batches (created_at DESC, id DESC)`,
}

type postgresStore struct {
	db *db.DB
}

func NewPostgresStore(database *db.DB) BatchStore {
	return &postgresStore{db: database}
}

// EnsureSchema creates the batch table and its index when missing.
func EnsureSchema(ctx context.Context, database *db.DB) error {
	return database.WithTx(ctx, func(tx pgx.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("applying schema: %w", err)
			}
		}
		return nil
	})
}

func (s *postgresStore) Backend() string {
	return config.StoreBackendPostgres
}

func (s *postgresStore) Create(ctx context.Context, b *model.Batch) error {
	stories, err := json.Marshal(b.Stories)
	if err != nil {
		return fmt.Errorf("encoding stories: %w", err)
	}

	batchID := id.New()
	_, err = s.db.Pool().Exec(ctx,
		`INSERT INTO user_story_batches (id, user_stories, requirements, created_at, model, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		batchID, stories, b.Requirements, b.CreatedAt, b.Model, b.Status,
	)
	if err != nil {
		return fmt.Errorf("inserting batch: %w", err)
	}

	b.ID = strconv.FormatInt(batchID, 10)
	return nil
}

func (s *postgresStore) GetByID(ctx context.Context, batchID string) (*model.Batch, error) {
	if !id.Valid(batchID) {
		return nil, ErrNotFound
	}
	key, _ := strconv.ParseInt(batchID, 10, 64)

	row := s.db.Pool().QueryRow(ctx,
		`SELECT id, user_stories, requirements, created_at, model, status
		 FROM user_story_batches WHERE id = $1`, key)

	b, err := scanBatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching batch: %w", err)
	}
	return b, nil
}

func (s *postgresStore) List(ctx context.Context, skip, limit int) ([]model.Batch, error) {
	skip, limit = NormalizePage(skip, limit)

	rows, err := s.db.Pool().Query(ctx,
		`SELECT id, user_stories, requirements, created_at, model, status
		 FROM user_story_batches ORDER BY created_at DESC, id DESC OFFSET $1 LIMIT $2`,
		skip, limit)
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	defer rows.Close()

	batches := []model.Batch{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning batch: %w", err)
		}
		batches = append(batches, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batches: %w", err)
	}
	return batches, nil
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *postgresStore) Close(_ context.Context) error {
	s.db.Close()
	return nil
}

func scanBatch(row pgx.Row) (*model.Batch, error) {
	var (
		key       int64
		stories   []byte
		createdAt time.Time
		b         model.Batch
	)
	if err := row.Scan(&key, &stories, &b.Requirements, &createdAt, &b.Model, &b.Status); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(stories, &b.Stories); err != nil {
		return nil, fmt.Errorf("decoding stories: %w", err)
	}
	b.ID = strconv.FormatInt(key, 10)
	b.CreatedAt = createdAt.UTC()
	return &b, nil
}
