package dataverse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/nebula-seeder/internal/domain"
)

// embeddedRequest is one changeset part decoded back into its pieces.
type embeddedRequest struct {
	PartHeader  map[string]string
	RequestLine string
	Headers     []string
	Body        string
}

// parseBatch walks body with mime/multipart and returns each embedded request.
func parseBatch(t *testing.T, contentType string, body []byte) []embeddedRequest {
	t.Helper()

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/mixed", mediaType)

	outer := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	changeset, err := outer.NextPart()
	require.NoError(t, err)

	csType, csParams, err := mime.ParseMediaType(changeset.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/mixed", csType)

	var requests []embeddedRequest
	inner := multipart.NewReader(changeset, csParams["boundary"])
	for {
		part, err := inner.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)

		raw, err := io.ReadAll(part)
		require.NoError(t, err)

		head, payload, found := strings.Cut(string(raw), "\n\n")
		require.True(t, found, "embedded request has no blank line")
		lines := strings.Split(head, "\n")

		requests = append(requests, embeddedRequest{
			PartHeader: map[string]string{
				"Content-Type":              part.Header.Get("Content-Type"),
				"Content-Transfer-Encoding": part.Header.Get("Content-Transfer-Encoding"),
				"Content-ID":                part.Header.Get("Content-ID"),
			},
			RequestLine: lines[0],
			Headers:     lines[1:],
			Body:        strings.TrimSpace(payload),
		})
	}

	_, err = outer.NextPart()
	require.ErrorIs(t, err, io.EOF, "batch must contain a single changeset")
	return requests
}

func testRecords() []domain.SyntheticRecord {
	return []domain.SyntheticRecord{
		{"name": "Acme Corporation", "revenue": 1250000.5, "telephone1": "555-0100"},
		{"name": "Fabrikam & Sons <EU>", "numberofemployees": float64(42), "description": "Ünïcødé – ok"},
		{"name": "Contoso", "address1_city": "Redmond", "tags": []any{"a", "b"}},
	}
}

func TestBatchBuilder_Structure(t *testing.T) {
	const org = "https://org.crm.dynamics.com"
	records := testRecords()

	builder := NewBatchBuilder()
	for _, r := range records {
		require.NoError(t, builder.AddPost(EntitySetURL(org, "accounts"), r))
	}
	body, err := builder.Build()
	require.NoError(t, err)
	text := string(body)

	assert.NotEqual(t, builder.BatchID, builder.ChangesetID)
	assert.Equal(t, 1, strings.Count(text, "--"+builder.BatchBoundary()+"\n"))
	assert.Equal(t, 1, strings.Count(text, "--"+builder.BatchBoundary()+"--"))
	assert.Equal(t, 1, strings.Count(text, "boundary="+builder.ChangesetBoundary()))
	assert.Equal(t, len(records), strings.Count(text, "--"+builder.ChangesetBoundary()+"\n"))
	assert.Equal(t, 1, strings.Count(text, "--"+builder.ChangesetBoundary()+"--"))
	assert.True(t, strings.HasPrefix(text, "--"+builder.BatchBoundary()+"\nContent-Type: multipart/mixed; boundary="+builder.ChangesetBoundary()+"\n\n"))
	assert.True(t, strings.HasSuffix(text, "--"+builder.ChangesetBoundary()+"--\n--"+builder.BatchBoundary()+"--\n"))
	assert.NotContains(t, text, "\r", "lines end in a bare newline")
	assert.Contains(t, text, "Fabrikam & Sons <EU>", "JSON is not HTML-escaped")
	assert.Contains(t, text, "Ünïcødé – ok", "JSON keeps UTF-8 verbatim")

	requests := parseBatch(t, builder.ContentType(), body)
	require.Len(t, requests, len(records))

	seenIDs := map[string]bool{}
	for i, req := range requests {
		assert.Equal(t, "application/http", req.PartHeader["Content-Type"])
		assert.Equal(t, "binary", req.PartHeader["Content-Transfer-Encoding"])
		assert.NotEmpty(t, req.PartHeader["Content-ID"])
		assert.False(t, seenIDs[req.PartHeader["Content-ID"]], "Content-ID must be unique")
		seenIDs[req.PartHeader["Content-ID"]] = true

		assert.Equal(t, "POST "+org+"/api/data/v9.2/accounts HTTP/1.1", req.RequestLine)
		assert.Equal(t, []string{"Content-Type: application/json"}, req.Headers)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(req.Body), &got))
		want, _ := json.Marshal(records[i])
		var wantMap map[string]any
		require.NoError(t, json.Unmarshal(want, &wantMap))
		assert.Equal(t, wantMap, got, "part %d body must round-trip", i)
	}
}

func TestBatchBuilder_FreshIDsPerBuilder(t *testing.T) {
	a, b := NewBatchBuilder(), NewBatchBuilder()
	assert.NotEqual(t, a.BatchID, b.BatchID)
	assert.NotEqual(t, a.ChangesetID, b.ChangesetID)
}

func TestBatchBuilder_EmptyChangeset(t *testing.T) {
	builder := &BatchBuilder{BatchID: "b", ChangesetID: "c"}
	body, err := builder.Build()
	require.NoError(t, err)
	assert.Equal(t, "--batch_b\nContent-Type: multipart/mixed; boundary=changeset_c\n\n--changeset_c--\n--batch_b--\n", string(body))
}

func TestBatchBuilder_RejectsBoundaryInBody(t *testing.T) {
	builder := &BatchBuilder{BatchID: "b", ChangesetID: "c"}
	require.NoError(t, builder.AddPost("https://org/api/data/v9.2/accounts", domain.SyntheticRecord{"name": "--changeset_c"}))
	_, err := builder.Build()
	assert.Error(t, err)
}

func TestSubmitBatch_Success(t *testing.T) {
	var gotContentType, gotAuth string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/data/v9.2/$batch", r.URL.Path)
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "multipart/mixed; boundary=batchresponse_1")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("--batchresponse_1--"))
	}))
	defer server.Close()

	records := testRecords()
	client := NewClient(server.Client())
	result, err := client.SubmitBatch(context.Background(), "tok", server.URL, "accounts", records)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, len(records), result.PartCount)
	assert.Equal(t, "--batchresponse_1--", result.Body)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.True(t, strings.HasPrefix(gotContentType, "multipart/mixed; boundary=batch_"))

	requests := parseBatch(t, gotContentType, gotBody)
	assert.Len(t, requests, len(records))
}

func TestSubmitBatch_NonOK(t *testing.T) {
	const failure = `{"error":{"code":"0x80040237","message":"Cannot insert duplicate key."}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(failure))
	}))
	defer server.Close()

	client := NewClient(server.Client())
	result, err := client.SubmitBatch(context.Background(), "tok", server.URL, "accounts", testRecords())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmission)
	var subErr *SubmissionError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, http.StatusBadRequest, subErr.StatusCode)
	assert.Equal(t, failure, subErr.Body)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusBadRequest, result.StatusCode)
}
