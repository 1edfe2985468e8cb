package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
	"github.com/coastal7-sdlc/user-story-agent/internal/store"
)

type BatchService interface {
	Get(ctx context.Context, id string) (*model.Batch, error)
	List(ctx context.Context, skip, limit int) ([]model.Batch, int, int, error)
	Available() bool
	Backend() string
	Ping(ctx context.Context) error
}

type batchService struct {
	store store.BatchStore
}

// NewBatchService accepts a nil store, in which case reads fail with
// ServiceUnavailableError.
func NewBatchService(batches store.BatchStore) BatchService {
	return &batchService{store: batches}
}

func (s *batchService) Available() bool {
	return s.store != nil
}

func (s *batchService) Backend() string {
	if s.store == nil {
		return ""
	}
	return s.store.Backend()
}

func (s *batchService) Ping(ctx context.Context) error {
	if s.store == nil {
		return &ServiceUnavailableError{Service: "batch store"}
	}
	return s.store.Ping(ctx)
}

func (s *batchService) Get(ctx context.Context, id string) (*model.Batch, error) {
	if s.store == nil {
		return nil, &ServiceUnavailableError{Service: "batch store"}
	}

	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		slog.ErrorContext(ctx, "failed to read batch", "error", err, "batch_id", id)
		return nil, &PersistenceError{Message: "Failed to read user stories", Err: err}
	}
	return b, nil
}

// List returns the page together with the normalized skip and limit.
func (s *batchService) List(ctx context.Context, skip, limit int) ([]model.Batch, int, int, error) {
	if s.store == nil {
		return nil, 0, 0, &ServiceUnavailableError{Service: "batch store"}
	}

	skip, limit = store.NormalizePage(skip, limit)
	batches, err := s.store.List(ctx, skip, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list batches", "error", err)
		return nil, 0, 0, &PersistenceError{Message: "Failed to list user stories", Err: err}
	}
	return batches, skip, limit, nil
}
