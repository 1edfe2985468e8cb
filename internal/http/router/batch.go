package router

import (
	"github.com/gin-gonic/gin"

	"github.com/coastal7-sdlc/user-story-agent/internal/http/handler"
)

func BatchRouter(router *gin.RouterGroup, handler *handler.BatchHandler) {
	router.GET("", handler.List)
	router.GET("/:id", handler.Get)
}
