package http

import (
	"github.com/gin-gonic/gin"

	"docbrain/internal/bootstrap"
	"docbrain/internal/transport/http/handler"
	"docbrain/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	documentHandler := handler.NewDocumentHandler(app.Engine, app.Config.Ingest.MaxUploadMB)
	chatHandler := handler.NewChatHandler(app.Chat)
	adminHandler := handler.NewAdminHandler(app.Engine)

	v1 := router.Group("/api/v1")

	docGroup := v1.Group("/documents")
	docGroup.POST("", documentHandler.Upload)
	docGroup.GET("", documentHandler.List)
	docGroup.DELETE("/:filename", documentHandler.Delete)

	chatGroup := v1.Group("/chat")
	chatGroup.POST("/sessions", chatHandler.CreateSession)
	chatGroup.DELETE("/sessions/:id", chatHandler.DeleteSession)
	chatGroup.POST("/messages", chatHandler.SendMessage)
	chatGroup.GET("/history", chatHandler.GetHistory)

	v1.POST("/admin/clear", adminHandler.Clear)

	return router
}
