package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coastal7-sdlc/user-story-agent/core/config"
	"github.com/coastal7-sdlc/user-story-agent/internal/http/dto"
	"github.com/coastal7-sdlc/user-story-agent/internal/service"
	"github.com/coastal7-sdlc/user-story-agent/internal/service/issue_tracker"
)

const storePingTimeout = 2 * time.Second

type HealthHandler struct {
	appName     string
	version     string
	generation  service.GenerationService
	batches     service.BatchService
	trackerByID func(name string) issue_tracker.IssueTracker
}

func NewHealthHandler(appName, version string, generation service.GenerationService, batches service.BatchService, trackers func(name string) issue_tracker.IssueTracker) *HealthHandler {
	return &HealthHandler{
		appName:     appName,
		version:     version,
		generation:  generation,
		batches:     batches,
		trackerByID: trackers,
	}
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, dto.RootResponse{
		Message: h.appName + " API",
		Version: h.version,
		Health:  "/health",
		Status:  "running",
	})
}

// Health reports the completion provider as the critical dependency; the
// store and trackers are reported but never make the service unhealthy.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now().UTC()

	if !h.generation.Available() {
		c.JSON(http.StatusOK, dto.HealthResponse{
			Status:    "unhealthy",
			API:       "disconnected",
			Error:     "completion provider is not available",
			Timestamp: now,
		})
		return
	}

	resp := dto.HealthResponse{
		Status:       "healthy",
		API:          "connected",
		Model:        h.generation.Model(),
		Store:        h.storeStatus(ctx),
		StoreBackend: h.batches.Backend(),
		Jira:         connectedIf(h.trackerByID(issue_tracker.TrackerJira) != nil),
		GitLab:       connectedIf(h.trackerByID(issue_tracker.TrackerGitLab) != nil),
		Timestamp:    now,
	}
	if resp.StoreBackend == config.StoreBackendMongo {
		resp.MongoDB = resp.Store
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) storeStatus(ctx context.Context) string {
	if !h.batches.Available() {
		return "disconnected"
	}
	ctx, cancel := context.WithTimeout(ctx, storePingTimeout)
	defer cancel()
	if err := h.batches.Ping(ctx); err != nil {
		return "error"
	}
	return "connected"
}

func connectedIf(ok bool) string {
	if ok {
		return "connected"
	}
	return "disconnected"
}
