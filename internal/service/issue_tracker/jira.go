package issue_tracker

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	jira "github.com/andygrunwald/go-jira"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

type JiraConfig struct {
	URL              string
	Username         string
	APIToken         string
	DefaultIssueType string
}

type jiraTracker struct {
	client           *jira.Client
	baseURL          string
	defaultIssueType string
}

// NewJiraTracker builds a Jira Cloud/Server client using basic auth with an API token.
func NewJiraTracker(cfg JiraConfig) (IssueTracker, error) {
	if cfg.URL == "" || cfg.Username == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("jira url, username and api token are required")
	}

	tp := jira.BasicAuthTransport{
		Username: cfg.Username,
		Password: cfg.APIToken,
	}
	client, err := jira.NewClient(tp.Client(), cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("creating jira client: %w", err)
	}

	issueType := cfg.DefaultIssueType
	if issueType == "" {
		issueType = "Task"
	}

	return &jiraTracker{
		client:           client,
		baseURL:          strings.TrimSuffix(cfg.URL, "/"),
		defaultIssueType: issueType,
	}, nil
}

func (t *jiraTracker) Name() string {
	return TrackerJira
}

func (t *jiraTracker) Ping(ctx context.Context) error {
	_, resp, err := t.client.User.GetSelfWithContext(ctx)
	if err != nil {
		return fmt.Errorf("fetching current jira user: %w", jiraError(resp, err))
	}
	return nil
}

func (t *jiraTracker) ListProjects(ctx context.Context) ([]model.Project, error) {
	list, resp, err := t.client.Project.GetListWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing jira projects: %w", jiraError(resp, err))
	}

	projects := make([]model.Project, 0, len(*list))
	for _, p := range *list {
		projects = append(projects, model.Project{
			ID:   p.ID,
			Key:  p.Key,
			Name: p.Name,
			URL:  t.baseURL + "/browse/" + p.Key,
		})
	}
	return projects, nil
}

func (t *jiraTracker) GetProject(ctx context.Context, key string) (*model.Project, error) {
	p, resp, err := t.client.Project.GetWithContext(ctx, key)
	if err != nil {
		if isNotFound(resp) {
			return nil, fmt.Errorf("jira project %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("fetching jira project: %w", jiraError(resp, err))
	}

	project := &model.Project{
		ID:   p.ID,
		Key:  p.Key,
		Name: p.Name,
		URL:  t.baseURL + "/browse/" + p.Key,
	}
	if p.Lead.DisplayName != "" {
		lead := p.Lead.DisplayName
		project.Lead = &lead
	}
	return project, nil
}

// ListIssueTypes returns the project's issue types, or the instance-wide list
// when the project does not expose any.
func (t *jiraTracker) ListIssueTypes(ctx context.Context, projectKey string) ([]model.IssueType, error) {
	p, resp, err := t.client.Project.GetWithContext(ctx, projectKey)
	if err != nil {
		if isNotFound(resp) {
			return nil, fmt.Errorf("jira project %s: %w", projectKey, ErrNotFound)
		}
		return nil, fmt.Errorf("fetching jira project: %w", jiraError(resp, err))
	}

	issueTypes := p.IssueTypes
	if len(issueTypes) == 0 {
		req, err := t.client.NewRequestWithContext(ctx, http.MethodGet, "rest/api/2/issuetype", nil)
		if err != nil {
			return nil, fmt.Errorf("building issue type request: %w", err)
		}
		resp, err := t.client.Do(req, &issueTypes)
		if err != nil {
			return nil, fmt.Errorf("listing jira issue types: %w", jiraError(resp, err))
		}
	}

	types := make([]model.IssueType, 0, len(issueTypes))
	for _, it := range issueTypes {
		types = append(types, model.IssueType{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			IconURL:     it.IconURL,
		})
	}
	return types, nil
}

func (t *jiraTracker) GetIssue(ctx context.Context, key string) (*model.TrackerIssue, error) {
	issue, resp, err := t.client.Issue.GetWithContext(ctx, key, nil)
	if err != nil {
		if isNotFound(resp) {
			return nil, fmt.Errorf("jira issue %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("fetching jira issue: %w", jiraError(resp, err))
	}

	result := &model.TrackerIssue{
		ID:  issue.ID,
		Key: issue.Key,
		URL: t.baseURL + "/browse/" + issue.Key,
	}
	if f := issue.Fields; f != nil {
		result.Summary = f.Summary
		result.Description = f.Description
		if f.Status != nil {
			result.Status = &f.Status.Name
		}
		if f.Assignee != nil {
			result.Assignee = &f.Assignee.DisplayName
		}
	}
	return result, nil
}

func (t *jiraTracker) CreateIssue(ctx context.Context, params CreateIssueParams) (*model.TrackerIssue, error) {
	issueType := params.IssueType
	if issueType == "" {
		issueType = t.defaultIssueType
	}

	issue := &jira.Issue{
		Fields: &jira.IssueFields{
			Project:     jira.Project{Key: params.ProjectKey},
			Type:        jira.IssueType{Name: issueType},
			Summary:     params.Summary,
			Description: params.Description,
		},
	}

	created, resp, err := t.client.Issue.CreateWithContext(ctx, issue)
	if err != nil {
		return nil, fmt.Errorf("creating jira issue: %w", jiraError(resp, err))
	}

	return &model.TrackerIssue{
		ID:          created.ID,
		Key:         created.Key,
		Summary:     params.Summary,
		Description: params.Description,
		URL:         t.baseURL + "/browse/" + created.Key,
	}, nil
}

// jiraError folds the response body into err so API error messages reach the log.
func jiraError(resp *jira.Response, err error) error {
	if resp == nil {
		return err
	}
	return jira.NewJiraError(resp, err)
}

func isNotFound(resp *jira.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}
