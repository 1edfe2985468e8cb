package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coastal7-sdlc/user-story-agent/internal/http/dto"
	"github.com/coastal7-sdlc/user-story-agent/internal/service"
)

type BatchHandler struct {
	batches service.BatchService
}

func NewBatchHandler(batches service.BatchService) *BatchHandler {
	return &BatchHandler{batches: batches}
}

func (h *BatchHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.ListBatchesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondQueryError(c, err)
		return
	}

	batches, skip, limit, err := h.batches.List(ctx, q.Skip, q.Limit)
	if err != nil {
		respondError(c, err, "Failed to fetch user stories")
		return
	}

	c.JSON(http.StatusOK, dto.ToListBatchesResponse(batches, skip, limit))
}

func (h *BatchHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	batch, err := h.batches.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch user story")
		return
	}

	c.JSON(http.StatusOK, dto.GetBatchResponse{Story: dto.ToBatchResponse(batch)})
}
