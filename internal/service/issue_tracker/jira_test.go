package issue_tracker_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/coastal7-sdlc/user-story-agent/internal/service/issue_tracker"
)

type jiraAPIMock struct {
	server *httptest.Server

	mu          sync.Mutex
	created     []map[string]any
	authHeaders []string
	nextKey     int
}

func newJiraAPIMock() *jiraAPIMock {
	m := &jiraAPIMock{nextKey: 1}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

func (m *jiraAPIMock) close() {
	m.server.Close()
}

func (m *jiraAPIMock) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.authHeaders = append(m.authHeaders, r.Header.Get("Authorization"))
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path
	switch {
	case path == "/rest/api/2/myself" && r.Method == http.MethodGet:
		_, _ = w.Write([]byte(`{"accountId": "abc", "displayName": "Story Bot"}`))

	case path == "/rest/api/2/project" && r.Method == http.MethodGet:
		_, _ = w.Write([]byte(`[{"id": "10000", "key": "PROJ", "name": "Project"}, {"id": "10001", "key": "OPS", "name": "Operations"}]`))

	case path == "/rest/api/2/project/PROJ":
		_, _ = w.Write([]byte(`{"id": "10000", "key": "PROJ", "name": "Project", "lead": {"displayName": "Dana Lead"},
			"issueTypes": [{"id": "1", "name": "Task", "description": "A task", "iconUrl": "http://icons/task.png"}]}`))

	case path == "/rest/api/2/project/BARE":
		_, _ = w.Write([]byte(`{"id": "10002", "key": "BARE", "name": "Bare"}`))

	case strings.HasPrefix(path, "/rest/api/2/project/"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errorMessages": ["No project could be found"], "errors": {}}`))

	case path == "/rest/api/2/issuetype":
		_, _ = w.Write([]byte(`[{"id": "1", "name": "Task"}, {"id": "2", "name": "Bug"}]`))

	case path == "/rest/api/2/issue/PROJ-1" && r.Method == http.MethodGet:
		_, _ = w.Write([]byte(`{"id": "100", "key": "PROJ-1", "fields": {"summary": "Login", "description": "As a user",
			"status": {"name": "To Do"}, "assignee": {"displayName": "Ann"}}}`))

	case strings.HasPrefix(path, "/rest/api/2/issue/") && r.Method == http.MethodGet:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errorMessages": ["Issue does not exist"], "errors": {}}`))

	case path == "/rest/api/2/issue" && r.Method == http.MethodPost:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		fields, _ := body["fields"].(map[string]any)
		summary, _ := fields["summary"].(string)
		if strings.Contains(summary, "FAIL") {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errorMessages": [], "errors": {"summary": "rejected"}}`))
			return
		}

		m.mu.Lock()
		m.created = append(m.created, fields)
		key := m.nextKey
		m.nextKey++
		m.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":   fmt.Sprintf("%d", 200+key),
			"key":  fmt.Sprintf("PROJ-%d", key),
			"self": fmt.Sprintf("%s/rest/api/2/issue/%d", m.server.URL, 200+key),
		})

	default:
		http.NotFound(w, r)
	}
}

var _ = Describe("Jira tracker", func() {
	var (
		ctx     context.Context
		mock    *jiraAPIMock
		tracker issue_tracker.IssueTracker
	)

	BeforeEach(func() {
		ctx = context.Background()
		mock = newJiraAPIMock()

		var err error
		tracker, err = issue_tracker.NewJiraTracker(issue_tracker.JiraConfig{
			URL:      mock.server.URL,
			Username: "bot@example.com",
			APIToken: "token",
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		mock.close()
	})

	It("requires credentials", func() {
		_, err := issue_tracker.NewJiraTracker(issue_tracker.JiraConfig{URL: mock.server.URL})
		Expect(err).To(HaveOccurred())
	})

	It("pings with basic auth", func() {
		Expect(tracker.Name()).To(Equal(issue_tracker.TrackerJira))
		Expect(tracker.Ping(ctx)).To(Succeed())
		Expect(mock.authHeaders).NotTo(BeEmpty())
		Expect(mock.authHeaders[0]).To(HavePrefix("Basic "))
	})

	It("lists projects", func() {
		projects, err := tracker.ListProjects(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(projects).To(HaveLen(2))
		Expect(projects[0].Key).To(Equal("PROJ"))
		Expect(projects[1].Name).To(Equal("Operations"))
	})

	It("gets a project with its lead", func() {
		project, err := tracker.GetProject(ctx, "PROJ")
		Expect(err).NotTo(HaveOccurred())
		Expect(project.ID).To(Equal("10000"))
		Expect(project.Lead).NotTo(BeNil())
		Expect(*project.Lead).To(Equal("Dana Lead"))
	})

	It("maps a missing project to ErrNotFound", func() {
		_, err := tracker.GetProject(ctx, "NOPE")
		Expect(errors.Is(err, issue_tracker.ErrNotFound)).To(BeTrue())
	})

	It("lists project issue types", func() {
		types, err := tracker.ListIssueTypes(ctx, "PROJ")
		Expect(err).NotTo(HaveOccurred())
		Expect(types).To(HaveLen(1))
		Expect(types[0].Name).To(Equal("Task"))
		Expect(types[0].IconURL).To(Equal("http://icons/task.png"))
	})

	It("falls back to the global issue types", func() {
		types, err := tracker.ListIssueTypes(ctx, "BARE")
		Expect(err).NotTo(HaveOccurred())
		Expect(types).To(HaveLen(2))
		Expect(types[1].Name).To(Equal("Bug"))
	})

	It("gets an issue", func() {
		issue, err := tracker.GetIssue(ctx, "PROJ-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(issue.Summary).To(Equal("Login"))
		Expect(*issue.Status).To(Equal("To Do"))
		Expect(*issue.Assignee).To(Equal("Ann"))
		Expect(issue.URL).To(Equal(mock.server.URL + "/browse/PROJ-1"))
	})

	It("maps a missing issue to ErrNotFound", func() {
		_, err := tracker.GetIssue(ctx, "PROJ-404")
		Expect(errors.Is(err, issue_tracker.ErrNotFound)).To(BeTrue())
	})

	It("creates an issue with the default issue type", func() {
		issue, err := tracker.CreateIssue(ctx, issue_tracker.CreateIssueParams{
			ProjectKey:  "PROJ",
			Summary:     "As a user, I want X",
			Description: "**User Story:**\nAs a user, I want X",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(issue.Key).To(Equal("PROJ-1"))
		Expect(issue.Summary).To(Equal("As a user, I want X"))

		Expect(mock.created).To(HaveLen(1))
		fields := mock.created[0]
		Expect(fields["project"]).To(HaveKeyWithValue("key", "PROJ"))
		Expect(fields["issuetype"]).To(HaveKeyWithValue("name", "Task"))
		Expect(fields["description"]).To(ContainSubstring("**User Story:**"))
	})

	It("surfaces creation failures", func() {
		_, err := tracker.CreateIssue(ctx, issue_tracker.CreateIssueParams{ProjectKey: "PROJ", Summary: "FAIL"})
		Expect(err).To(MatchError(ContainSubstring("creating jira issue")))
	})
})
