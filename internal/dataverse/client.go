// Package dataverse talks to the Dataverse Web API: one saved-view sample
// read and one transactional $batch insert.
package dataverse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Annany2002/nebula-seeder/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// API versions used by the endpoints. The sample read is pinned to v9.0.
const (
	apiVersion       = "v9.2"
	sampleAPIVersion = "v9.0"
)

var (
	ErrDiscovery  = errors.New("schema discovery failed")
	ErrSubmission = errors.New("batch submission failed")
)

// DiscoveryError reports a failed saved-query lookup or sample read.
type DiscoveryError struct {
	Reason     string
	StatusCode int
	Body       string
}

func (e *DiscoveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Reason, e.StatusCode, e.Body)
	}
	return e.Reason
}

func (e *DiscoveryError) Unwrap() error { return ErrDiscovery }

// SubmissionError reports a $batch POST that did not return 200.
type SubmissionError struct {
	StatusCode int
	Body       string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("batch request failed (status %d): %s", e.StatusCode, e.Body)
}

func (e *SubmissionError) Unwrap() error { return ErrSubmission }

// Client issues Web API requests with a caller-supplied bearer token.
type Client struct {
	httpClient *http.Client
}

// NewClient wraps an http.Client. A nil client means http.DefaultClient.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient}
}

// response is a fully read HTTP response.
type response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func apiURL(orgURL, version, path string) string {
	return fmt.Sprintf("%s/api/data/%s/%s", strings.TrimSuffix(orgURL, "/"), version, path)
}

func (c *Client) do(ctx context.Context, method, fullURL, token string, headers map[string]string, body io.Reader) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("OData-MaxVersion", "4.0")
	req.Header.Set("OData-Version", "4.0")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}
