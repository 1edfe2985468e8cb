package service_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/coastal7-sdlc/user-story-agent/common/llm"
	"github.com/coastal7-sdlc/user-story-agent/internal/model"
	"github.com/coastal7-sdlc/user-story-agent/internal/service/issue_tracker"
)

type mockLLMClient struct {
	completeFn func(ctx context.Context, req llm.Request) (*llm.Response, error)
	calls      []llm.Request
}

func (m *mockLLMClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	m.calls = append(m.calls, req)
	if m.completeFn != nil {
		return m.completeFn(ctx, req)
	}
	return &llm.Response{Content: "[]"}, nil
}

func (m *mockLLMClient) Model() string {
	return "test-model"
}

func (m *mockLLMClient) Provider() string {
	return llm.ProviderOpenAI
}

type mockBatchStore struct {
	createFn  func(ctx context.Context, b *model.Batch) error
	getByIDFn func(ctx context.Context, id string) (*model.Batch, error)
	listFn    func(ctx context.Context, skip, limit int) ([]model.Batch, error)
	created   []*model.Batch
}

func (m *mockBatchStore) Create(ctx context.Context, b *model.Batch) error {
	m.created = append(m.created, b)
	if m.createFn != nil {
		return m.createFn(ctx, b)
	}
	b.ID = "65f0c0ffee0000000000beef"
	return nil
}

func (m *mockBatchStore) GetByID(ctx context.Context, id string) (*model.Batch, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockBatchStore) List(ctx context.Context, skip, limit int) ([]model.Batch, error) {
	if m.listFn != nil {
		return m.listFn(ctx, skip, limit)
	}
	return []model.Batch{}, nil
}

func (m *mockBatchStore) Ping(context.Context) error { return nil }

func (m *mockBatchStore) Close(context.Context) error { return nil }

func (m *mockBatchStore) Backend() string { return "mock" }

type mockTracker struct {
	mu            sync.Mutex
	createIssueFn func(ctx context.Context, params issue_tracker.CreateIssueParams) (*model.TrackerIssue, error)
	created       []issue_tracker.CreateIssueParams
}

func (m *mockTracker) Name() string { return "mock" }

func (m *mockTracker) Ping(context.Context) error { return nil }

func (m *mockTracker) ListProjects(context.Context) ([]model.Project, error) {
	return nil, nil
}

func (m *mockTracker) GetProject(context.Context, string) (*model.Project, error) {
	return nil, nil
}

func (m *mockTracker) ListIssueTypes(context.Context, string) ([]model.IssueType, error) {
	return nil, nil
}

func (m *mockTracker) GetIssue(context.Context, string) (*model.TrackerIssue, error) {
	return nil, nil
}

func (m *mockTracker) CreateIssue(ctx context.Context, params issue_tracker.CreateIssueParams) (*model.TrackerIssue, error) {
	m.mu.Lock()
	m.created = append(m.created, params)
	n := len(m.created)
	m.mu.Unlock()

	if m.createIssueFn != nil {
		return m.createIssueFn(ctx, params)
	}
	return &model.TrackerIssue{
		ID:      fmt.Sprintf("%d", 10000+n),
		Key:     fmt.Sprintf("PROJ-%d", n),
		Summary: params.Summary,
	}, nil
}
