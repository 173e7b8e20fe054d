package handler

import (
	"github.com/gin-gonic/gin"

	"docbrain/internal/app"
	"docbrain/internal/transport/http/response"
)

// AdminHandler exposes destructive maintenance operations kept off the
// primary document and chat surface.
type AdminHandler struct {
	engine *app.KnowledgeEngine
}

func NewAdminHandler(engine *app.KnowledgeEngine) *AdminHandler {
	return &AdminHandler{engine: engine}
}

// Clear destroys the entire persisted store.
func (h *AdminHandler) Clear(c *gin.Context) {
	response.OK(c, h.engine.ClearAll())
}
