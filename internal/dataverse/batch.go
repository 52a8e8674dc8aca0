package dataverse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Annany2002/nebula-seeder/internal/domain"
)

const (
	batchBoundaryPrefix     = "batch_"
	changesetBoundaryPrefix = "changeset_"
)

// Header is one MIME header line.
type Header struct {
	Name  string
	Value string
}

// ChangesetPart is one embedded HTTP request inside the changeset.
type ChangesetPart struct {
	ContentID string
	Method    string
	URL       string
	Headers   []Header
	Body      []byte
}

// BatchBuilder assembles an OData multipart/mixed batch holding a single
// changeset. Every line it writes ends in "\n".
type BatchBuilder struct {
	BatchID     string
	ChangesetID string
	Parts       []ChangesetPart
}

// NewBatchBuilder creates a builder with fresh random batch and changeset ids.
func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{
		BatchID:     uuid.NewString(),
		ChangesetID: uuid.NewString(),
	}
}

// BatchBoundary is the outer multipart boundary.
func (b *BatchBuilder) BatchBoundary() string { return batchBoundaryPrefix + b.BatchID }

// ChangesetBoundary is the inner multipart boundary.
func (b *BatchBuilder) ChangesetBoundary() string { return changesetBoundaryPrefix + b.ChangesetID }

// ContentType is the value for the outer request's Content-Type header.
func (b *BatchBuilder) ContentType() string {
	return "multipart/mixed; boundary=" + b.BatchBoundary()
}

// AddPost appends a POST of record to targetURL, serialized as UTF-8 JSON.
func (b *BatchBuilder) AddPost(targetURL string, record domain.SyntheticRecord) error {
	body, err := marshalRecord(record)
	if err != nil {
		return err
	}
	b.Parts = append(b.Parts, ChangesetPart{
		ContentID: uuid.NewString(),
		Method:    http.MethodPost,
		URL:       targetURL,
		Headers:   []Header{{Name: "Content-Type", Value: "application/json"}},
		Body:      body,
	})
	return nil
}

// Build renders the batch body.
func (b *BatchBuilder) Build() ([]byte, error) {
	batchBoundary := b.BatchBoundary()
	changesetBoundary := b.ChangesetBoundary()

	for i, part := range b.Parts {
		for _, boundary := range []string{batchBoundary, changesetBoundary} {
			if bytes.Contains(part.Body, []byte(boundary)) {
				return nil, fmt.Errorf("part %d body contains boundary %q", i, boundary)
			}
		}
	}

	var buf bytes.Buffer
	line := func(format string, args ...any) {
		fmt.Fprintf(&buf, format, args...)
		buf.WriteByte('\n')
	}

	line("--%s", batchBoundary)
	line("Content-Type: multipart/mixed; boundary=%s", changesetBoundary)
	line("")

	for _, part := range b.Parts {
		line("--%s", changesetBoundary)
		line("Content-Type: application/http")
		line("Content-Transfer-Encoding: binary")
		line("Content-ID: %s", part.ContentID)
		line("")
		line("%s %s HTTP/1.1", part.Method, part.URL)
		for _, h := range part.Headers {
			line("%s: %s", h.Name, h.Value)
		}
		line("")
		buf.Write(part.Body)
		buf.WriteByte('\n')
		line("")
	}

	line("--%s--", changesetBoundary)
	line("--%s--", batchBoundary)

	return buf.Bytes(), nil
}

// marshalRecord encodes a record on one line without HTML escaping.
func marshalRecord(record domain.SyntheticRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// BatchResult is the raw $batch response. The multipart body is not parsed, so
// a 200 can still hide per-row failures inside the changeset response.
type BatchResult struct {
	StatusCode  int
	ContentType string
	Body        string
	PartCount   int
}

// BatchURL is the $batch endpoint of an organization.
func BatchURL(orgURL string) string {
	return apiURL(orgURL, apiVersion, "$batch")
}

// EntitySetURL is the insert target for a collection.
func EntitySetURL(orgURL, collectionName string) string {
	return apiURL(orgURL, apiVersion, collectionName)
}

// SubmitBatch inserts records into collectionName in one changeset. Any
// status other than 200 is returned as *SubmissionError alongside the result.
func (c *Client) SubmitBatch(ctx context.Context, token, orgURL, collectionName string, records []domain.SyntheticRecord) (*BatchResult, error) {
	builder := NewBatchBuilder()
	target := EntitySetURL(orgURL, collectionName)
	for i, record := range records {
		if err := builder.AddPost(target, record); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	body, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build batch: %w", err)
	}

	customLog.Printf("Dataverse: Submitting batch %s with %d insert(s) into '%s'", builder.BatchID, len(builder.Parts), collectionName)
	headers := map[string]string{
		"Content-Type": builder.ContentType(),
		"Accept":       "application/json",
	}
	resp, err := c.do(ctx, http.MethodPost, BatchURL(orgURL), token, headers, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("batch request: %w", err)
	}

	result := &BatchResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        string(resp.Body),
		PartCount:   len(builder.Parts),
	}
	if resp.StatusCode != http.StatusOK {
		customLog.Warnf("Dataverse: Batch request failed. Status code: %d", resp.StatusCode)
		customLog.Warnf("Dataverse: Response content: %s", strings.TrimSpace(result.Body))
		return result, &SubmissionError{StatusCode: resp.StatusCode, Body: result.Body}
	}
	return result, nil
}
