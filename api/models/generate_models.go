// api/models/generate_models.go
package models

import "github.com/Annany2002/nebula-seeder/internal/domain"

// GenerateRequest carries the inputs of one generate-and-write run.
// ResourceURL defaults to OrgURL when omitted.
type GenerateRequest struct {
	APIKey         string `json:"api_key" binding:"required"`
	TenantID       string `json:"tenant_id" binding:"required"`
	ClientID       string `json:"client_id" binding:"required"`
	ClientSecret   string `json:"client_secret" binding:"required"`
	OrgURL         string `json:"org_url" binding:"required,url"`
	ResourceURL    string `json:"resource_url" binding:"omitempty,url"`
	CollectionName string `json:"collection_name" binding:"required"`
	RowCount       int    `json:"row_count" binding:"required,min=1"`
}

// GenerateResponse reports the outcome of a run.
type GenerateResponse struct {
	Message       string                   `json:"message"`
	RunID         string                   `json:"run_id"`
	LogicalName   string                   `json:"logical_name"`
	SampleFormat  string                   `json:"sample_format"`
	Records       []domain.SyntheticRecord `json:"records"`
	StatusCode    int                      `json:"status_code"`
	BatchResponse string                   `json:"batch_response,omitempty"`
	StateHistory  []string                 `json:"state_history"`
}

// RunListResponse wraps the run ledger listing.
type RunListResponse struct {
	Runs []domain.Run `json:"runs"`
}
