package service

import (
	"github.com/coastal7-sdlc/user-story-agent/common/llm"
	"github.com/coastal7-sdlc/user-story-agent/internal/service/issue_tracker"
	"github.com/coastal7-sdlc/user-story-agent/internal/store"
)

// Services wires request-time services over independently constructed
// dependencies. Any dependency may be nil; the service that needs it then
// reports ServiceUnavailableError.
type Services struct {
	llm      llm.Client
	store    store.BatchStore
	trackers map[string]issue_tracker.IssueTracker
	projects map[string]string
	genCfg   GenerationConfig
}

func NewServices(client llm.Client, batches store.BatchStore, genCfg GenerationConfig) *Services {
	return &Services{
		llm:      client,
		store:    batches,
		trackers: make(map[string]issue_tracker.IssueTracker),
		projects: make(map[string]string),
		genCfg:   genCfg,
	}
}

// WithTracker registers a tracker under name (nil marks it unavailable) along
// with the project key exports fall back to.
func (s *Services) WithTracker(name string, tracker issue_tracker.IssueTracker, defaultProjectKey string) *Services {
	s.trackers[name] = tracker
	s.projects[name] = defaultProjectKey
	return s
}

func (s *Services) Generation() GenerationService {
	return NewGenerationService(s.llm, s.store, s.genCfg)
}

func (s *Services) Batches() BatchService {
	return NewBatchService(s.store)
}

func (s *Services) Downloads() DownloadService {
	return NewDownloadService()
}

func (s *Services) Tracker(name string) issue_tracker.IssueTracker {
	return s.trackers[name]
}

// DefaultProjectKey is the project exports to name fall back to.
func (s *Services) DefaultProjectKey(name string) string {
	return s.projects[name]
}

func (s *Services) Export(name string) ExportService {
	return NewExportService(s.trackers[name], s.projects[name])
}
