package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/coastal7-sdlc/user-story-agent/common/logger"
	"github.com/coastal7-sdlc/user-story-agent/internal/model"
	"github.com/coastal7-sdlc/user-story-agent/internal/service/issue_tracker"
	"github.com/coastal7-sdlc/user-story-agent/internal/story"
)

const DefaultEpicName = "User Stories"

type ExportService interface {
	Export(ctx context.Context, req model.ExportRequest) (*model.ExportResult, error)
}

type exportService struct {
	tracker           issue_tracker.IssueTracker
	defaultProjectKey string
}

// NewExportService binds an exporter to one tracker. A nil tracker makes every
// export fail with ServiceUnavailableError.
func NewExportService(tracker issue_tracker.IssueTracker, defaultProjectKey string) ExportService {
	return &exportService{
		tracker:           tracker,
		defaultProjectKey: defaultProjectKey,
	}
}

// Export creates the optional parent issue and then one issue per story, in
// order. A failed story is recorded and the loop moves on.
func (s *exportService) Export(ctx context.Context, req model.ExportRequest) (*model.ExportResult, error) {
	if s.tracker == nil {
		return nil, &ServiceUnavailableError{Service: "issue tracker"}
	}
	if len(req.Stories) == 0 {
		return nil, &ValidationError{Message: "At least one user story is required"}
	}

	projectKey := strings.TrimSpace(req.ProjectKey)
	if projectKey == "" {
		projectKey = s.defaultProjectKey
	}
	if projectKey == "" {
		return nil, &ValidationError{Message: "project_key is required"}
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ProjectKey: logger.Ptr(projectKey),
		Tracker:    logger.Ptr(s.tracker.Name()),
		Component:  "agent.service.export",
	})
	sc := logger.StartSpan(ctx, "service.export_stories")
	defer sc.End()
	ctx = sc.Context()

	result := &model.ExportResult{
		TotalRequested: len(req.Stories),
		Stories:        []model.ExportedStory{},
		Failed:         []model.ExportFailure{},
	}

	if req.CreateEpic {
		result.Epic = s.createEpic(ctx, projectKey, req.EpicName, len(req.Stories))
	}

	var lastErr error
	for i, st := range req.Stories {
		points := story.EstimatePoints(st)
		issue, err := s.tracker.CreateIssue(ctx, issue_tracker.CreateIssueParams{
			ProjectKey:  projectKey,
			Summary:     st.Story,
			Description: FormatIssueDescription(st, points),
		})
		if err != nil {
			lastErr = err
			slog.WarnContext(ctx, "failed to export story, continuing",
				"error", err,
				"index", i,
				"story", logger.Truncate(st.Story, 80))
			result.Failed = append(result.Failed, model.ExportFailure{
				Index: i,
				Story: st.Story,
				Error: err.Error(),
			})
			continue
		}

		result.Stories = append(result.Stories, model.ExportedStory{
			TrackerIssue: *issue,
			StoryPoints:  points,
		})
	}

	result.TotalExported = len(result.Stories)
	switch {
	case len(result.Failed) == 0:
		result.Status = model.ExportStatusSuccess
	case result.TotalExported > 0:
		result.Status = model.ExportStatusPartial
	default:
		result.Status = model.ExportStatusFailed
	}

	sc.SetAttributes(
		attribute.Int("export.requested", result.TotalRequested),
		attribute.Int("export.exported", result.TotalExported),
		attribute.Int("export.failed", len(result.Failed)),
	)

	if result.TotalExported == 0 {
		sc.RecordError(lastErr)
		slog.ErrorContext(ctx, "no stories exported", "error", lastErr)
		return nil, &ExportError{Message: "Failed to export stories", Err: lastErr, Result: result}
	}

	slog.InfoContext(ctx, "stories exported",
		"exported", result.TotalExported,
		"failed", len(result.Failed),
		"epic", result.Epic != nil)
	return result, nil
}

func (s *exportService) createEpic(ctx context.Context, projectKey, name string, count int) *model.TrackerIssue {
	if strings.TrimSpace(name) == "" {
		name = DefaultEpicName
	}

	epic, err := s.tracker.CreateIssue(ctx, issue_tracker.CreateIssueParams{
		ProjectKey:  projectKey,
		Summary:     name,
		Description: fmt.Sprintf("Parent task containing %d user stories", count),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to create parent issue, exporting without it", "error", err)
		return nil
	}
	return epic
}

// FormatIssueDescription renders a story as an issue body.
func FormatIssueDescription(st model.Story, points int) string {
	var b strings.Builder
	b.WriteString("**User Story:**\n")
	b.WriteString(st.Story)
	b.WriteString("\n\n**Acceptance Criteria:**\n")
	for i, c := range st.EffectiveCriteria() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c)
	}
	fmt.Fprintf(&b, "\n**Estimated Story Points:** %d\n", points)
	return b.String()
}
