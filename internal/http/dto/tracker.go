package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

type ExportStoriesRequest struct {
	Stories    []model.Story `json:"stories" binding:"required"`
	ProjectKey string        `json:"project_key" binding:"max=255"`
	CreateEpic *bool         `json:"create_epic,omitempty"`
	EpicName   string        `json:"epic_name" binding:"max=255"`
}

// ToModel applies the request defaults: a parent issue is created unless
// create_epic is explicitly false.
func (r ExportStoriesRequest) ToModel() model.ExportRequest {
	createEpic := true
	if r.CreateEpic != nil {
		createEpic = *r.CreateEpic
	}
	return model.ExportRequest{
		Stories:    r.Stories,
		ProjectKey: strings.TrimSpace(r.ProjectKey),
		CreateEpic: createEpic,
		EpicName:   r.EpicName,
	}
}

type ExportStoriesResponse struct {
	Status       string              `json:"status"`
	Message      string              `json:"message"`
	ExportResult *model.ExportResult `json:"export_result"`
	Timestamp    time.Time           `json:"timestamp"`
}

func ToExportStoriesResponse(trackerTitle string, result *model.ExportResult, now time.Time) ExportStoriesResponse {
	return ExportStoriesResponse{
		Status:       result.Status,
		Message:      fmt.Sprintf("Exported %d stories to %s", result.TotalExported, trackerTitle),
		ExportResult: result,
		Timestamp:    now.UTC(),
	}
}

type ProjectsResponse struct {
	Status    string          `json:"status"`
	Projects  []model.Project `json:"projects"`
	Count     int             `json:"count"`
	Timestamp time.Time       `json:"timestamp"`
}

func ToProjectsResponse(projects []model.Project, now time.Time) ProjectsResponse {
	if projects == nil {
		projects = []model.Project{}
	}
	return ProjectsResponse{
		Status:    "success",
		Projects:  projects,
		Count:     len(projects),
		Timestamp: now.UTC(),
	}
}

type ProjectResponse struct {
	Status    string         `json:"status"`
	Project   *model.Project `json:"project"`
	Timestamp time.Time      `json:"timestamp"`
}

type IssueTypesResponse struct {
	Status     string            `json:"status"`
	ProjectKey string            `json:"project_key"`
	IssueTypes []model.IssueType `json:"issue_types"`
	Count      int               `json:"count"`
	Timestamp  time.Time         `json:"timestamp"`
}

func ToIssueTypesResponse(projectKey string, types []model.IssueType, now time.Time) IssueTypesResponse {
	if types == nil {
		types = []model.IssueType{}
	}
	return IssueTypesResponse{
		Status:     "success",
		ProjectKey: projectKey,
		IssueTypes: types,
		Count:      len(types),
		Timestamp:  now.UTC(),
	}
}

type IssueResponse struct {
	Status    string              `json:"status"`
	Issue     *model.TrackerIssue `json:"issue"`
	Timestamp time.Time           `json:"timestamp"`
}

type TrackerHealthResponse struct {
	Status     string    `json:"status"`
	Service    string    `json:"service"`
	Connection string    `json:"connection,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
