// internal/domain/models.go
package domain

import (
	"strings"
	"time"
)

// Credentials are the app registration values used for the client-credentials grant.
type Credentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	ResourceURL  string
}

// TableIdentity names a Dataverse table by its singular logical name and its
// plural entity set (collection) name.
type TableIdentity struct {
	LogicalName    string
	CollectionName string
}

// NewTableIdentity derives the logical name from the collection name:
// "companies" -> "company", "accounts" -> "account". Names ending in neither
// "ies" nor "s" are used unchanged.
func NewTableIdentity(collectionName string) TableIdentity {
	return TableIdentity{
		LogicalName:    LogicalNameFor(collectionName),
		CollectionName: collectionName,
	}
}

// LogicalNameFor applies the plural suffix rule to an entity set name.
func LogicalNameFor(collectionName string) string {
	switch {
	case strings.HasSuffix(collectionName, "ies"):
		return strings.TrimSuffix(collectionName, "ies") + "y"
	case strings.HasSuffix(collectionName, "s"):
		return strings.TrimSuffix(collectionName, "s")
	default:
		return collectionName
	}
}

// SampleRecord is a row exactly as returned by the platform.
type SampleRecord map[string]any

// SyntheticRecord is a generated row ready to be inserted.
type SyntheticRecord map[string]any

// Run is one generate-and-write attempt as kept in the run ledger.
// It never holds credentials or row content.
type Run struct {
	RunID          string     `json:"run_id"`
	CollectionName string     `json:"collection_name"`
	LogicalName    string     `json:"logical_name"`
	RowCount       int        `json:"row_count"`
	State          string     `json:"state"`
	StatusCode     int        `json:"status_code,omitempty"`
	Error          string     `json:"error,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}
