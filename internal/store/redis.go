package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/coastal7-sdlc/user-story-agent/common/id"
	"github.com/coastal7-sdlc/user-story-agent/core/config"
	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore keeps each batch as a JSON document at <prefix>:batch:<id> and
// indexes ids in the sorted set <prefix>:batches scored by creation time.
func NewRedisStore(client *redis.Client, prefix string) BatchStore {
	if prefix == "" {
		prefix = "user_stories"
	}
	return &redisStore{client: client, prefix: prefix}
}

func (s *redisStore) batchKey(batchID string) string {
	return s.prefix + ":batch:" + batchID
}

func (s *redisStore) indexKey() string {
	return s.prefix + ":batches"
}

func (s *redisStore) Backend() string {
	return config.StoreBackendRedis
}

func (s *redisStore) Create(ctx context.Context, b *model.Batch) error {
	stored := *b
	stored.ID = id.NewString()

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encoding batch: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.batchKey(stored.ID), data, 0)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{
			Score:  float64(stored.CreatedAt.UnixMilli()),
			Member: stored.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing batch: %w", err)
	}

	b.ID = stored.ID
	return nil
}

func (s *redisStore) GetByID(ctx context.Context, batchID string) (*model.Batch, error) {
	if !id.Valid(batchID) {
		return nil, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.batchKey(batchID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching batch: %w", err)
	}

	var b model.Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decoding batch: %w", err)
	}
	return &b, nil
}

func (s *redisStore) List(ctx context.Context, skip, limit int) ([]model.Batch, error) {
	skip, limit = NormalizePage(skip, limit)

	ids, err := s.client.ZRevRange(ctx, s.indexKey(), int64(skip), int64(skip+limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading batch index: %w", err)
	}
	if len(ids) == 0 {
		return []model.Batch{}, nil
	}

	keys := make([]string, len(ids))
	for i, batchID := range ids {
		keys[i] = s.batchKey(batchID)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetching batches: %w", err)
	}

	batches := make([]model.Batch, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // index entry without a document
		}
		var b model.Batch
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return nil, fmt.Errorf("decoding batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close(_ context.Context) error {
	return s.client.Close()
}
