package router

import (
	"github.com/gin-gonic/gin"

	"github.com/coastal7-sdlc/user-story-agent/internal/http/handler"
)

func TrackerRouter(router *gin.RouterGroup, handler *handler.TrackerHandler) {
	router.GET("/health", handler.Health)
	router.GET("/projects", handler.ListProjects)
	router.GET("/projects/:key", handler.GetProject)
	router.GET("/projects/:key/issue-types", handler.ListIssueTypes)
	router.GET("/issues/*key", handler.GetIssue)
	router.POST("/export-stories", handler.Export)
}
