package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/coastal7-sdlc/user-story-agent/core/config"
	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

type memoryStore struct {
	mu      sync.RWMutex
	batches map[string]model.Batch
}

// NewMemoryStore returns a process-local store for development and tests.
func NewMemoryStore() BatchStore {
	return &memoryStore{batches: make(map[string]model.Batch)}
}

func (s *memoryStore) Backend() string {
	return config.StoreBackendMemory
}

func (s *memoryStore) Create(_ context.Context, b *model.Batch) error {
	stored := cloneBatch(*b)
	stored.ID = uuid.NewString()

	s.mu.Lock()
	s.batches[stored.ID] = stored
	s.mu.Unlock()

	b.ID = stored.ID
	return nil
}

func (s *memoryStore) GetByID(_ context.Context, batchID string) (*model.Batch, error) {
	s.mu.RLock()
	b, ok := s.batches[batchID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneBatch(b)
	return &out, nil
}

func (s *memoryStore) List(_ context.Context, skip, limit int) ([]model.Batch, error) {
	skip, limit = NormalizePage(skip, limit)

	s.mu.RLock()
	all := make([]model.Batch, 0, len(s.batches))
	for _, b := range s.batches {
		all = append(all, cloneBatch(b))
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if skip >= len(all) {
		return []model.Batch{}, nil
	}
	end := min(skip+limit, len(all))
	return all[skip:end], nil
}

func (s *memoryStore) Ping(_ context.Context) error {
	return nil
}

func (s *memoryStore) Close(_ context.Context) error {
	return nil
}

func cloneBatch(b model.Batch) model.Batch {
	stories := make([]model.Story, len(b.Stories))
	for i, st := range b.Stories {
		stories[i] = model.NewStory(st.Story, append([]string(nil), st.AcceptanceCriteria...)...)
	}
	b.Stories = stories
	return b
}
