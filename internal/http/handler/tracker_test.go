package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/coastal7-sdlc/user-story-agent/internal/http/handler"
	"github.com/coastal7-sdlc/user-story-agent/internal/model"
	"github.com/coastal7-sdlc/user-story-agent/internal/service"
	"github.com/coastal7-sdlc/user-story-agent/internal/service/issue_tracker"
)

var _ = Describe("TrackerHandler", func() {
	var (
		router   *gin.Engine
		tracker  *mockTracker
		exporter *mockExportService
	)

	mount := func(t issue_tracker.IssueTracker) {
		h := handler.NewTrackerHandler(issue_tracker.TrackerJira, t, exporter)
		g := router.Group("/jira")
		g.GET("/health", h.Health)
		g.GET("/projects", h.ListProjects)
		g.GET("/projects/:key", h.GetProject)
		g.GET("/projects/:key/issue-types", h.ListIssueTypes)
		g.GET("/issues/*key", h.GetIssue)
		g.POST("/export-stories", h.Export)
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		tracker = &mockTracker{}
		exporter = &mockExportService{}
	})

	Context("without a configured tracker", func() {
		BeforeEach(func() {
			mount(nil)
		})

		It("reports unhealthy", func() {
			w := doGet(router, "/jira/health")
			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["status"]).To(Equal("unhealthy"))
			Expect(resp["service"]).To(Equal("jira"))
			Expect(resp["error"]).To(Equal("Jira service not initialized"))
		})

		DescribeTable("answers 503",
			func(method, path string) {
				w := doJSON(router, method, path, `{"stories":["As a user, I want X"]}`)
				Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
				Expect(decode(w)["detail"]).To(Equal("Jira service is not available. Please check your configuration."))
			},
			Entry("projects", http.MethodGet, "/jira/projects"),
			Entry("project", http.MethodGet, "/jira/projects/PROJ"),
			Entry("issue types", http.MethodGet, "/jira/projects/PROJ/issue-types"),
			Entry("issue", http.MethodGet, "/jira/issues/PROJ-1"),
			Entry("export", http.MethodPost, "/jira/export-stories"),
		)
	})

	Context("with a tracker", func() {
		BeforeEach(func() {
			mount(tracker)
		})

		It("reports a failed connection", func() {
			tracker.pingFn = func(context.Context) error { return errors.New("401 Unauthorized") }

			resp := decode(doGet(router, "/jira/health"))
			Expect(resp["status"]).To(Equal("unhealthy"))
			Expect(resp["connection"]).To(Equal("failed"))
		})

		It("reports a healthy connection", func() {
			resp := decode(doGet(router, "/jira/health"))
			Expect(resp["status"]).To(Equal("healthy"))
			Expect(resp["connection"]).To(Equal("connected"))
		})

		It("lists projects", func() {
			tracker.listProjectsFn = func(context.Context) ([]model.Project, error) {
				return []model.Project{{ID: "1", Key: "PROJ", Name: "Project"}}, nil
			}

			w := doGet(router, "/jira/projects")
			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["status"]).To(Equal("success"))
			Expect(resp["count"]).To(Equal(1.0))
			Expect(resp["projects"]).To(HaveLen(1))
		})

		It("returns 404 for unknown projects", func() {
			tracker.getProjectFn = func(_ context.Context, key string) (*model.Project, error) {
				return nil, fmt.Errorf("jira project %s: %w", key, issue_tracker.ErrNotFound)
			}

			Expect(doGet(router, "/jira/projects/NOPE").Code).To(Equal(http.StatusNotFound))
		})

		It("lists issue types for a project", func() {
			var gotKey string
			tracker.issueTypesFn = func(_ context.Context, key string) ([]model.IssueType, error) {
				gotKey = key
				return []model.IssueType{{ID: "10001", Name: "Task"}}, nil
			}

			resp := decode(doGet(router, "/jira/projects/PROJ/issue-types"))
			Expect(gotKey).To(Equal("PROJ"))
			Expect(resp["project_key"]).To(Equal("PROJ"))
			Expect(resp["count"]).To(Equal(1.0))
		})

		It("passes the full issue key through", func() {
			var gotKey string
			tracker.getIssueFn = func(_ context.Context, key string) (*model.TrackerIssue, error) {
				gotKey = key
				return &model.TrackerIssue{ID: "7", Key: key, Summary: "s"}, nil
			}

			w := doGet(router, "/jira/issues/PROJ-7")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(gotKey).To(Equal("PROJ-7"))
		})

		It("returns 500 with the message when the tracker fails", func() {
			tracker.listProjectsFn = func(context.Context) ([]model.Project, error) {
				return nil, errors.New("connection refused")
			}

			w := doGet(router, "/jira/projects")
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(decode(w)["detail"]).To(Equal("Failed to fetch projects: connection refused"))
		})

		Describe("Export", func() {
			It("defaults create_epic to true and normalizes stories", func() {
				var got model.ExportRequest
				exporter.exportFn = func(_ context.Context, req model.ExportRequest) (*model.ExportResult, error) {
					got = req
					return &model.ExportResult{
						TotalRequested: 1,
						TotalExported:  1,
						Stories:        []model.ExportedStory{},
						Failed:         []model.ExportFailure{},
						Status:         model.ExportStatusSuccess,
					}, nil
				}

				w := doJSON(router, http.MethodPost, "/jira/export-stories",
					`{"stories":["As a user, I want X"],"project_key":" PROJ "}`)

				Expect(w.Code).To(Equal(http.StatusOK))
				Expect(got.CreateEpic).To(BeTrue())
				Expect(got.ProjectKey).To(Equal("PROJ"))
				Expect(got.Stories).To(Equal([]model.Story{model.NewStory("As a user, I want X")}))

				resp := decode(w)
				Expect(resp["status"]).To(Equal("success"))
				Expect(resp["message"]).To(Equal("Exported 1 stories to Jira"))
			})

			It("honours create_epic false", func() {
				var got model.ExportRequest
				exporter.exportFn = func(_ context.Context, req model.ExportRequest) (*model.ExportResult, error) {
					got = req
					return &model.ExportResult{Status: model.ExportStatusSuccess}, nil
				}

				doJSON(router, http.MethodPost, "/jira/export-stories",
					`{"stories":["As a user, I want X"],"project_key":"PROJ","create_epic":false}`)
				Expect(got.CreateEpic).To(BeFalse())
			})

			It("returns 422 when stories are missing", func() {
				w := doJSON(router, http.MethodPost, "/jira/export-stories", `{"project_key":"PROJ"}`)
				Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
				Expect(decode(w)["detail"]).To(Equal("Missing 'stories' field"))
			})

			It("returns 500 with the result when nothing was exported", func() {
				exporter.exportFn = func(context.Context, model.ExportRequest) (*model.ExportResult, error) {
					return nil, &service.ExportError{
						Message: "Failed to export stories",
						Err:     errors.New("401"),
						Result:  &model.ExportResult{TotalRequested: 1, Status: model.ExportStatusFailed},
					}
				}

				w := doJSON(router, http.MethodPost, "/jira/export-stories",
					`{"stories":["As a user, I want X"],"project_key":"PROJ"}`)
				Expect(w.Code).To(Equal(http.StatusInternalServerError))
				resp := decode(w)
				Expect(resp["detail"]).To(Equal("Failed to export stories: 401"))
				Expect(resp["export_result"]).To(HaveKeyWithValue("status", "failed"))
			})
		})
	})
})
