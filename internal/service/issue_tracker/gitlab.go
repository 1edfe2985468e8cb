package issue_tracker

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

type GitLabConfig struct {
	URL   string
	Token string
}

type gitLabTracker struct {
	client *gitlab.Client
}

// gitLabIssueTypes is the fixed set of work item types the issues API accepts.
var gitLabIssueTypes = []model.IssueType{
	{ID: "issue", Name: "issue", Description: "A standard issue"},
	{ID: "incident", Name: "incident", Description: "An incident"},
	{ID: "task", Name: "task", Description: "A task"},
}

func NewGitLabTracker(cfg GitLabConfig) (IssueTracker, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("gitlab token is required")
	}

	client, err := newGitLabClient(cfg.URL, cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}
	return &gitLabTracker{client: client}, nil
}

func newGitLabClient(baseURL, token string) (*gitlab.Client, error) {
	// Issue creation is not idempotent; a retried POST can duplicate issues.
	opts := []gitlab.ClientOptionFunc{gitlab.WithoutRetries()}
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(strings.TrimSuffix(baseURL, "/")+"/api/v4"))
	}
	return gitlab.NewClient(token, opts...)
}

func (t *gitLabTracker) Name() string {
	return TrackerGitLab
}

func (t *gitLabTracker) Ping(ctx context.Context) error {
	if _, _, err := t.client.Users.CurrentUser(gitlab.WithContext(ctx)); err != nil {
		return fmt.Errorf("fetching current gitlab user: %w", err)
	}
	return nil
}

func (t *gitLabTracker) ListProjects(ctx context.Context) ([]model.Project, error) {
	opts := &gitlab.ListProjectsOptions{
		Membership: gitlab.Ptr(true),
		ListOptions: gitlab.ListOptions{
			Page:    1,
			PerPage: 100,
		},
	}

	var projects []model.Project
	for {
		page, resp, err := t.client.Projects.ListProjects(opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("listing gitlab projects: %w", err)
		}

		for _, p := range page {
			projects = append(projects, mapGitLabProject(p))
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return projects, nil
}

func (t *gitLabTracker) GetProject(ctx context.Context, key string) (*model.Project, error) {
	p, resp, err := t.client.Projects.GetProject(key, nil, gitlab.WithContext(ctx))
	if err != nil {
		if isGitLabNotFound(resp) {
			return nil, fmt.Errorf("gitlab project %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("fetching gitlab project: %w", err)
	}

	project := mapGitLabProject(p)
	return &project, nil
}

func (t *gitLabTracker) ListIssueTypes(ctx context.Context, projectKey string) ([]model.IssueType, error) {
	if _, err := t.GetProject(ctx, projectKey); err != nil {
		return nil, err
	}
	return append([]model.IssueType(nil), gitLabIssueTypes...), nil
}

// GetIssue resolves keys of the form "<project>#<iid>".
func (t *gitLabTracker) GetIssue(ctx context.Context, key string) (*model.TrackerIssue, error) {
	project, iid, err := parseGitLabIssueKey(key)
	if err != nil {
		return nil, err
	}

	issue, resp, err := t.client.Issues.GetIssue(project, iid, nil, gitlab.WithContext(ctx))
	if err != nil {
		if isGitLabNotFound(resp) {
			return nil, fmt.Errorf("gitlab issue %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("fetching gitlab issue: %w", err)
	}

	return mapGitLabIssue(project, issue), nil
}

func (t *gitLabTracker) CreateIssue(ctx context.Context, params CreateIssueParams) (*model.TrackerIssue, error) {
	opts := &gitlab.CreateIssueOptions{
		Title:       gitlab.Ptr(params.Summary),
		Description: gitlab.Ptr(params.Description),
	}
	if it := strings.ToLower(params.IssueType); it == "issue" || it == "incident" || it == "task" {
		opts.IssueType = gitlab.Ptr(it)
	}

	issue, _, err := t.client.Issues.CreateIssue(params.ProjectKey, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("creating gitlab issue: %w", err)
	}

	return mapGitLabIssue(params.ProjectKey, issue), nil
}

func parseGitLabIssueKey(key string) (string, int64, error) {
	i := strings.LastIndex(key, "#")
	if i <= 0 || i == len(key)-1 {
		return "", 0, fmt.Errorf("gitlab issue key %q must look like <project>#<iid>: %w", key, ErrNotFound)
	}
	iid, err := strconv.ParseInt(key[i+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("gitlab issue key %q has a non-numeric iid: %w", key, ErrNotFound)
	}
	return key[:i], iid, nil
}

func isGitLabNotFound(resp *gitlab.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

func mapGitLabProject(p *gitlab.Project) model.Project {
	project := model.Project{
		ID:   fmt.Sprint(p.ID),
		Key:  p.PathWithNamespace,
		Name: p.Name,
		URL:  p.WebURL,
	}
	if p.Owner != nil && p.Owner.Name != "" {
		lead := p.Owner.Name
		project.Lead = &lead
	}
	return project
}

func mapGitLabIssue(project string, issue *gitlab.Issue) *model.TrackerIssue {
	result := &model.TrackerIssue{
		ID:          fmt.Sprint(issue.ID),
		Key:         fmt.Sprintf("%s#%d", project, issue.IID),
		Summary:     issue.Title,
		Description: issue.Description,
		URL:         issue.WebURL,
	}
	if issue.State != "" {
		state := issue.State
		result.Status = &state
	}
	if issue.Assignee != nil {
		assignee := issue.Assignee.Username
		result.Assignee = &assignee
	}
	return result
}
