package issue_tracker

import (
	"context"
	"errors"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

const (
	TrackerJira   = "jira"
	TrackerGitLab = "gitlab"
)

var ErrNotFound = errors.New("not found")

type CreateIssueParams struct {
	ProjectKey  string
	Summary     string
	Description string
	IssueType   string // tracker default when empty
}

// IssueTracker is the subset of an issue tracker's API the exporter and the
// tracker proxy routes use.
type IssueTracker interface {
	Name() string
	Ping(ctx context.Context) error
	ListProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, key string) (*model.Project, error)
	ListIssueTypes(ctx context.Context, projectKey string) ([]model.IssueType, error)
	GetIssue(ctx context.Context, key string) (*model.TrackerIssue, error)
	CreateIssue(ctx context.Context, params CreateIssueParams) (*model.TrackerIssue, error)
}
