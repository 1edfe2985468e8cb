package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coastal7-sdlc/user-story-agent/internal/http/dto"
	"github.com/coastal7-sdlc/user-story-agent/internal/service"
)

type StoryHandler struct {
	generation service.GenerationService
	downloads  service.DownloadService
}

func NewStoryHandler(generation service.GenerationService, downloads service.DownloadService) *StoryHandler {
	return &StoryHandler{generation: generation, downloads: downloads}
}

func (h *StoryHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RequirementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	batch, err := h.generation.Generate(ctx, req.Requirements)
	if err != nil {
		respondError(c, err, "Failed to generate user stories")
		return
	}

	c.JSON(http.StatusOK, dto.ToGenerateResponse(batch))
}

func (h *StoryHandler) Analyze(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RequirementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	assessment, err := h.generation.Analyze(ctx, req.Requirements)
	if err != nil {
		respondError(c, err, "Failed to analyze requirements")
		return
	}

	c.JSON(http.StatusOK, dto.ToAnalyzeResponse(assessment, time.Now()))
}

func (h *StoryHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	doc, err := h.downloads.Download(ctx, req.Format, req.UserStories)
	if err != nil {
		respondError(c, err, "Failed to download user stories")
		return
	}

	c.JSON(http.StatusOK, dto.ToDownloadResponse(doc))
}
