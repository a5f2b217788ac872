package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/ncea-extract-go/internal/app"
	"github.com/yourusername/ncea-extract-go/internal/domain"
)

// RunHandler handles batch run requests
type RunHandler struct {
	ctx      context.Context
	batchMgr *app.BatchManager
	history  domain.RunRepository
	logger   *zap.Logger
}

// NewRunHandler creates a run handler. Batches started through it live as
// long as ctx, not the request. history may be nil when disabled.
func NewRunHandler(ctx context.Context, batchMgr *app.BatchManager, history domain.RunRepository, logger *zap.Logger) *RunHandler {
	return &RunHandler{
		ctx:      ctx,
		batchMgr: batchMgr,
		history:  history,
		logger:   logger,
	}
}

// StartRunRequest represents a request to start a batch
type StartRunRequest struct {
	Standards []string `json:"standards" binding:"required"`
	Years     []int    `json:"years,omitempty"`
	Kinds     []string `json:"kinds,omitempty"`
}

// StartRun handles POST /api/v1/runs
func (h *RunHandler) StartRun(c *gin.Context) {
	var req StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ids := make([]domain.StandardID, 0, len(req.Standards))
	for _, raw := range req.Standards {
		id, err := domain.ParseStandardID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ids = append(ids, id)
	}

	kinds := make([]domain.ComponentKind, 0, len(req.Kinds))
	for _, raw := range req.Kinds {
		kind := domain.ComponentKind(raw)
		if !domain.ValidateKind(kind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid kind: " + raw})
			return
		}
		kinds = append(kinds, kind)
	}

	run, err := h.batchMgr.Start(h.ctx, ids, req.Years, kinds)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrBatchRunning):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "run_id": h.batchMgr.Current()})
		case errors.Is(err, domain.ErrInvalidStandard):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Failed to start batch", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusAccepted, run)
}

// ListRuns handles GET /api/v1/runs
func (h *RunHandler) ListRuns(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		limit = 20
	}

	runs, err := h.history.ListRuns(limit)
	if err != nil {
		h.logger.Error("Failed to list runs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRun handles GET /api/v1/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	run, err := h.history.FindRun(c.Param("id"))
	if err != nil {
		h.notFoundOrError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// GetRunTasks handles GET /api/v1/runs/:id/tasks
func (h *RunHandler) GetRunTasks(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	id := c.Param("id")
	if _, err := h.history.FindRun(id); err != nil {
		h.notFoundOrError(c, err)
		return
	}

	records, err := h.history.ListTaskRecords(id)
	if err != nil {
		h.logger.Error("Failed to list task records", zap.String("run_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}

	if outcome := c.Query("outcome"); outcome != "" {
		filtered := records[:0]
		for _, r := range records {
			if string(r.Outcome) == outcome {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id": id,
		"tasks":  records,
		"count":  len(records),
	})
}

func (h *RunHandler) historyEnabled(c *gin.Context) bool {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history is disabled"})
		return false
	}
	return true
}

func (h *RunHandler) notFoundOrError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	h.logger.Error("Failed to load run", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load run"})
}
