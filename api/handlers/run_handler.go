// api/handlers/run_handler.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-seeder/api/models"
	"github.com/Annany2002/nebula-seeder/internal/core"
	"github.com/Annany2002/nebula-seeder/internal/domain"
)

// RunReader reads the run ledger.
type RunReader interface {
	FindRun(ctx context.Context, runID string) (*domain.Run, error)
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)
}

// RunHandler serves run history.
type RunHandler struct {
	Runs RunReader
}

// NewRunHandler creates a new RunHandler with dependencies.
func NewRunHandler(runs RunReader) *RunHandler {
	return &RunHandler{Runs: runs}
}

// ListRuns returns the most recent runs, newest first.
func (h *RunHandler) ListRuns(c *gin.Context) {
	opts, err := core.ParseRunListOptions(c.Request.URL.Query())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runs, err := h.Runs.ListRuns(c.Request.Context(), opts.Limit)
	if err != nil {
		customLog.Warnf("Failed to list runs: %v", err)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.RunListResponse{Runs: runs})
}

// GetRun returns a single run by id.
func (h *RunHandler) GetRun(c *gin.Context) {
	runID := c.Param("run_id")

	run, err := h.Runs.FindRun(c.Request.Context(), runID)
	if err != nil {
		customLog.Warnf("Run %s not found: %v", runID, err)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, run)
}
