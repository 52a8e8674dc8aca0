// Package generation asks an OpenAI-compatible chat completion API for
// synthetic rows and turns its reply into records.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Annany2002/nebula-seeder/internal/logger"
)

var (
	customLog = logger.NewLogger()

	// ErrGeneration is matched by transport or API failures of the generator.
	ErrGeneration = errors.New("text generation failed")
)

// Request is the input contract of the generator.
type Request struct {
	CollectionName string
	SampleFormat   string
	RowCount       int
}

// Generator returns text that should parse as a JSON array of RowCount objects.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config is passed explicitly to the client; the API key is never read from
// the process environment.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Message is a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index        int     `json:"index"`
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// OpenAIClient implements Generator against a chat completions endpoint.
type OpenAIClient struct {
	cfg    Config
	client *http.Client
}

var _ Generator = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client. Timeout zero leaves the client without a deadline.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	return &OpenAIClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Generate sends the prompt for req and returns the assistant's reply verbatim.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	payload := chatRequest{
		Model:       c.cfg.Model,
		Messages:    []Message{{Role: "user", Content: BuildPrompt(req)}},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	customLog.Debugf("Generation: requesting %d row(s) for '%s' from model %s", req.RowCount, req.CollectionName, c.cfg.Model)
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: failed to send request: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: LLM API error (status %d): %s", ErrGeneration, resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrGeneration, err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", ErrGeneration)
	}

	choice := chatResp.Choices[0]
	if choice.FinishReason == "length" {
		customLog.Warnf("Generation: reply for '%s' was cut at the token limit (%d tokens)", req.CollectionName, c.cfg.MaxTokens)
	}
	customLog.Debugf("Generation: %d completion token(s) used", chatResp.Usage.CompletionTokens)

	return strings.TrimSpace(choice.Message.Content), nil
}
