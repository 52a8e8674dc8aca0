package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, 500, req.MaxTokens)
		assert.InDelta(t, 0.7, req.Temperature, 1e-9)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.True(t, strings.Contains(req.Messages[0].Content, "2 records for contacts table"))

		_, _ = w.Write([]byte(`{"id":"mock-1","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"\n[{\"firstname\":\"Ada\"}]\n"}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(Config{
		BaseURL:     server.URL + "/v1/chat/completions",
		APIKey:      "sk-test",
		Model:       "test-model",
		Temperature: 0.7,
		MaxTokens:   500,
	})

	out, err := client.Generate(context.Background(), Request{CollectionName: "contacts", SampleFormat: "[]", RowCount: 2})
	require.NoError(t, err)
	assert.Equal(t, `[{"firstname":"Ada"}]`, out)
}

func TestOpenAIClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(Config{BaseURL: server.URL, APIKey: "bad"})
	_, err := client.Generate(context.Background(), Request{CollectionName: "accounts", RowCount: 1})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGeneration))
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"mock-2","choices":[]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(Config{BaseURL: server.URL})
	_, err := client.Generate(context.Background(), Request{CollectionName: "accounts", RowCount: 1})
	assert.ErrorIs(t, err, ErrGeneration)
}
