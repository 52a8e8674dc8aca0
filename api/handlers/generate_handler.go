// api/handlers/generate_handler.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-seeder/api/middleware"
	"github.com/Annany2002/nebula-seeder/api/models"
	"github.com/Annany2002/nebula-seeder/internal/domain"
	"github.com/Annany2002/nebula-seeder/internal/seeder"
)

// Seeder runs one generate-and-write pass.
type Seeder interface {
	Run(ctx context.Context, in seeder.Input) (*seeder.Result, error)
}

// GenerateHandler exposes the seeding pipeline.
type GenerateHandler struct {
	Seeder Seeder
}

// NewGenerateHandler creates a new GenerateHandler with dependencies.
func NewGenerateHandler(s Seeder) *GenerateHandler {
	return &GenerateHandler{Seeder: s}
}

// Generate samples the target table, generates rows and inserts them in one batch.
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req models.GenerateRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("Generate binding error: %v", err)
		_ = c.Error(err)
		return
	}

	resourceURL := req.ResourceURL
	if resourceURL == "" {
		resourceURL = req.OrgURL
	}

	in := seeder.Input{
		Credentials: domain.Credentials{
			TenantID:     req.TenantID,
			ClientID:     req.ClientID,
			ClientSecret: req.ClientSecret,
			ResourceURL:  resourceURL,
		},
		OrgURL:         req.OrgURL,
		CollectionName: req.CollectionName,
		RowCount:       req.RowCount,
		APIKey:         req.APIKey,
	}

	res, err := h.Seeder.Run(c.Request.Context(), in)
	if res != nil {
		c.Set(middleware.RunIDKey, res.RunID)
	}
	if err != nil {
		customLog.Warnf("Generate failed for collection '%s': %v", req.CollectionName, err)
		_ = c.Error(err)
		return
	}

	customLog.Printf("Generate run %s inserted %d record(s) into '%s'", res.RunID, len(res.Records), req.CollectionName)
	c.JSON(http.StatusCreated, models.GenerateResponse{
		Message:       "Records inserted successfully",
		RunID:         res.RunID,
		LogicalName:   res.Table.LogicalName,
		SampleFormat:  res.SampleFormat,
		Records:       res.Records,
		StatusCode:    res.Batch.StatusCode,
		BatchResponse: res.Batch.Body,
		StateHistory:  res.StateNames(),
	})
}
