package store

import (
	"context"
	"errors"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// BatchStore persists generated story batches.
type BatchStore interface {
	// Create assigns b.ID and writes the batch.
	Create(ctx context.Context, b *model.Batch) error
	// GetByID returns ErrNotFound for unknown or malformed ids.
	GetByID(ctx context.Context, id string) (*model.Batch, error)
	// List returns batches newest first.
	List(ctx context.Context, skip, limit int) ([]model.Batch, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	Backend() string
}

// NormalizePage clamps pagination arguments to the supported range.
func NormalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return skip, limit
}
