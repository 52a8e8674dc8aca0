package dataverse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Annany2002/nebula-seeder/internal/domain"
)

// SampleSize is the number of existing rows handed to the generator as a template.
const SampleSize = 2

var jsonHeaders = map[string]string{
	"Accept":       "application/json",
	"Content-Type": "application/json",
}

// savedQueryPage is one page of the savedqueries catalog.
type savedQueryPage struct {
	Value []struct {
		SavedQueryID string `json:"savedqueryid"`
	} `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

// rowPage is one page of an entity set read.
type rowPage struct {
	Value []domain.SampleRecord `json:"value"`
}

// SavedViewName is the display name of the default view for a collection.
func SavedViewName(collectionName string) string {
	return "All " + collectionName
}

// odataLiteral quotes s as an OData string literal.
func odataLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// SavedQueryURL is the catalog lookup for the views returning logicalName rows.
func SavedQueryURL(orgURL, logicalName string) string {
	filter := "returnedtypecode eq " + odataLiteral(logicalName)
	return apiURL(orgURL, apiVersion, "savedqueries") + "?$select=savedqueryid&$filter=" + url.PathEscape(filter)
}

// SampleRowsURL reads an entity set through a saved view.
func SampleRowsURL(orgURL, collectionName, savedQueryID string) string {
	return apiURL(orgURL, sampleAPIVersion, url.PathEscape(collectionName)) + "?savedQuery=" + url.QueryEscape(savedQueryID)
}

// FindSavedQuery returns the id of the saved view for logicalName. An empty or
// paginated catalog result is a DiscoveryError; only one page is ever read.
func (c *Client) FindSavedQuery(ctx context.Context, orgURL, logicalName, collectionName, token string) (string, error) {
	lookupURL := SavedQueryURL(orgURL, logicalName)
	customLog.Debugf("Dataverse: Looking up saved query '%s' via %s", SavedViewName(collectionName), lookupURL)

	resp, err := c.do(ctx, http.MethodGet, lookupURL, token, jsonHeaders, nil)
	if err != nil {
		return "", fmt.Errorf("saved query lookup: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &DiscoveryError{Reason: "saved query lookup failed", StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	var page savedQueryPage
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		return "", &DiscoveryError{Reason: "saved query response is not valid JSON", StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	if page.NextLink != "" || len(page.Value) == 0 || page.Value[0].SavedQueryID == "" {
		customLog.Warnf("Dataverse: Saved query not found for '%s' (rows: %d, paginated: %v)", logicalName, len(page.Value), page.NextLink != "")
		return "", &DiscoveryError{Reason: "saved query not found"}
	}

	return page.Value[0].SavedQueryID, nil
}

// SampleRows fetches at most SampleSize rows of collectionName through its saved view.
func (c *Client) SampleRows(ctx context.Context, orgURL, logicalName, collectionName, token string) ([]domain.SampleRecord, error) {
	savedQueryID, err := c.FindSavedQuery(ctx, orgURL, logicalName, collectionName, token)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodGet, SampleRowsURL(orgURL, collectionName, savedQueryID), token, jsonHeaders, nil)
	if err != nil {
		return nil, fmt.Errorf("sample rows request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &DiscoveryError{Reason: "sample rows request failed", StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	var page rowPage
	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()
	if err := dec.Decode(&page); err != nil {
		return nil, &DiscoveryError{Reason: "sample rows response is not valid JSON", StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	rows := page.Value
	if len(rows) > SampleSize {
		rows = rows[:SampleSize]
	}
	customLog.Printf("Dataverse: Sampled %d row(s) from '%s' using saved query %s", len(rows), collectionName, savedQueryID)
	return rows, nil
}

// SampleFormat returns the sampled rows as JSON text for the generation prompt.
func (c *Client) SampleFormat(ctx context.Context, orgURL, logicalName, collectionName, token string) (string, error) {
	rows, err := c.SampleRows(ctx, orgURL, logicalName, collectionName, token)
	if err != nil {
		return "", err
	}
	return FormatSample(rows)
}

// FormatSample renders rows as indented JSON without HTML escaping.
func FormatSample(rows []domain.SampleRecord) (string, error) {
	if rows == nil {
		rows = []domain.SampleRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return "", fmt.Errorf("encode sample rows: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
