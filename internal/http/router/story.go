package router

import (
	"github.com/gin-gonic/gin"

	"github.com/coastal7-sdlc/user-story-agent/internal/http/handler"
)

func StoryRouter(router *gin.RouterGroup, handler *handler.StoryHandler) {
	router.POST("/generate-user-stories", handler.Generate)
	router.POST("/analyze-requirements", handler.Analyze)
	router.POST("/download-user-stories", handler.Download)
}
