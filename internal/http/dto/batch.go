package dto

import (
	"time"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

type ListBatchesQuery struct {
	Skip  int `form:"skip" binding:"min=0"`
	Limit int `form:"limit" binding:"min=0"`
}

type BatchResponse struct {
	ID           string        `json:"id"`
	UserStories  []model.Story `json:"user_stories"`
	Requirements string        `json:"requirements"`
	CreatedAt    time.Time     `json:"created_at"`
	Model        string        `json:"model"`
	Status       string        `json:"status"`
}

func ToBatchResponse(b *model.Batch) BatchResponse {
	stories := b.Stories
	if stories == nil {
		stories = []model.Story{}
	}
	return BatchResponse{
		ID:           b.ID,
		UserStories:  stories,
		Requirements: b.Requirements,
		CreatedAt:    b.CreatedAt,
		Model:        b.Model,
		Status:       b.Status,
	}
}

type ListBatchesResponse struct {
	Stories []BatchResponse `json:"stories"`
	Skip    int             `json:"skip"`
	Limit   int             `json:"limit"`
}

func ToListBatchesResponse(batches []model.Batch, skip, limit int) ListBatchesResponse {
	out := make([]BatchResponse, 0, len(batches))
	for i := range batches {
		out = append(out, ToBatchResponse(&batches[i]))
	}
	return ListBatchesResponse{Stories: out, Skip: skip, Limit: limit}
}

type GetBatchResponse struct {
	Story BatchResponse `json:"story"`
}
