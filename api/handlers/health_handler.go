package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ncea-extract-go/internal/app"
)

// Version is reported by the health endpoint
var Version = "1.0.0"

// HealthHandler handles health check requests
type HealthHandler struct {
	batchMgr *app.BatchManager
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(batchMgr *app.BatchManager) *HealthHandler {
	return &HealthHandler{
		batchMgr: batchMgr,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Batch   struct {
		Running bool   `json:"running"`
		RunID   string `json:"run_id,omitempty"`
	} `json:"batch"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: Version,
	}
	response.Batch.Running = h.batchMgr.IsRunning()
	response.Batch.RunID = h.batchMgr.Current()

	c.JSON(http.StatusOK, response)
}
