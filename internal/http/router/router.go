package router

import (
	"github.com/gin-gonic/gin"

	"github.com/coastal7-sdlc/user-story-agent/internal/http/handler"
	"github.com/coastal7-sdlc/user-story-agent/internal/service"
	"github.com/coastal7-sdlc/user-story-agent/internal/service/issue_tracker"
)

type RouterConfig struct {
	AppName string
	Version string
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	healthHandler := handler.NewHealthHandler(cfg.AppName, cfg.Version,
		services.Generation(), services.Batches(), services.Tracker)
	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.Health)

	storyHandler := handler.NewStoryHandler(services.Generation(), services.Downloads())
	StoryRouter(router.Group(""), storyHandler)

	batchHandler := handler.NewBatchHandler(services.Batches())
	BatchRouter(router.Group("/user-stories"), batchHandler)

	for _, name := range []string{issue_tracker.TrackerJira, issue_tracker.TrackerGitLab} {
		trackerHandler := handler.NewTrackerHandler(name, services.Tracker(name), services.Export(name))
		TrackerRouter(router.Group("/"+name), trackerHandler)
	}
}
