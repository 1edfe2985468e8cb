package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coastal7-sdlc/user-story-agent/common/logger"
	"github.com/coastal7-sdlc/user-story-agent/internal/http/dto"
	"github.com/coastal7-sdlc/user-story-agent/internal/service"
	"github.com/coastal7-sdlc/user-story-agent/internal/service/issue_tracker"
)

// TrackerHandler serves the proxy and export routes of one issue tracker.
// A nil tracker answers every route except Health with 503.
type TrackerHandler struct {
	name     string
	tracker  issue_tracker.IssueTracker
	exporter service.ExportService
}

func NewTrackerHandler(name string, tracker issue_tracker.IssueTracker, exporter service.ExportService) *TrackerHandler {
	return &TrackerHandler{name: name, tracker: tracker, exporter: exporter}
}

func (h *TrackerHandler) unavailable(c *gin.Context) bool {
	if h.tracker != nil {
		return false
	}
	respondError(c, &service.ServiceUnavailableError{Service: trackerTitle(h.name) + " service"}, "")
	return true
}

func (h *TrackerHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	resp := dto.TrackerHealthResponse{Service: h.name, Timestamp: time.Now().UTC()}

	if h.tracker == nil {
		resp.Status = "unhealthy"
		resp.Error = trackerTitle(h.name) + " service not initialized"
		c.JSON(http.StatusOK, resp)
		return
	}

	if err := h.tracker.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "tracker health check failed", "error", err, "tracker", h.name)
		resp.Status = "unhealthy"
		resp.Connection = "failed"
		resp.Error = err.Error()
		c.JSON(http.StatusOK, resp)
		return
	}

	resp.Status = "healthy"
	resp.Connection = "connected"
	c.JSON(http.StatusOK, resp)
}

func (h *TrackerHandler) ListProjects(c *gin.Context) {
	if h.unavailable(c) {
		return
	}

	projects, err := h.tracker.ListProjects(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch projects")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectsResponse(projects, time.Now()))
}

func (h *TrackerHandler) GetProject(c *gin.Context) {
	if h.unavailable(c) {
		return
	}

	project, err := h.tracker.GetProject(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err, "Failed to fetch project details")
		return
	}

	c.JSON(http.StatusOK, dto.ProjectResponse{
		Status:    "success",
		Project:   project,
		Timestamp: time.Now().UTC(),
	})
}

func (h *TrackerHandler) ListIssueTypes(c *gin.Context) {
	if h.unavailable(c) {
		return
	}

	key := c.Param("key")
	types, err := h.tracker.ListIssueTypes(c.Request.Context(), key)
	if err != nil {
		respondError(c, err, "Failed to fetch issue types")
		return
	}

	c.JSON(http.StatusOK, dto.ToIssueTypesResponse(key, types, time.Now()))
}

// GetIssue takes the key from a wildcard segment so GitLab keys like
// "group/project#12" (sent URL-encoded) reach the tracker intact.
func (h *TrackerHandler) GetIssue(c *gin.Context) {
	if h.unavailable(c) {
		return
	}

	issue, err := h.tracker.GetIssue(c.Request.Context(), trimWildcard(c.Param("key")))
	if err != nil {
		respondError(c, err, "Failed to fetch issue details")
		return
	}

	c.JSON(http.StatusOK, dto.IssueResponse{
		Status:    "success",
		Issue:     issue,
		Timestamp: time.Now().UTC(),
	})
}

func (h *TrackerHandler) Export(c *gin.Context) {
	if h.unavailable(c) {
		return
	}

	var req dto.ExportStoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{Tracker: logger.Ptr(h.name)})
	result, err := h.exporter.Export(ctx, req.ToModel())
	if err != nil {
		respondError(c, err, "Failed to export stories")
		return
	}

	c.JSON(http.StatusOK, dto.ToExportStoriesResponse(trackerTitle(h.name), result, time.Now()))
}

func trimWildcard(p string) string {
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	return p
}

func trackerTitle(name string) string {
	switch name {
	case issue_tracker.TrackerJira:
		return "Jira"
	case issue_tracker.TrackerGitLab:
		return "GitLab"
	default:
		return name
	}
}
