package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docbrain/internal/bootstrap"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	ollamaStatus := h.checkOllama(ctx)

	// The store is lazy, so "not yet initialized" is a valid healthy state.
	statusCode := http.StatusOK
	if !ollamaStatus.OK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":        h.app.Config.App.Name,
		"env":        h.app.Config.App.Env,
		"uptime_sec": int(time.Since(h.app.StartedAt).Seconds()),
		"store": gin.H{
			"initialized": h.app.Engine.StoreReady(),
			"documents":   len(h.app.Engine.ListDocuments()),
		},
		"dependencies": gin.H{
			"ollama": ollamaStatus,
		},
	})
}

func (h *HealthHandler) checkOllama(ctx context.Context) dependencyStatus {
	if err := h.app.Ollama.Ping(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}
