// Package ollama implements the client for a local Ollama-compatible
// text generation endpoint. One blocking request per call, fixed sampling
// parameters, no retries — callers decide their own fallback behavior.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Sampling parameters used for every generation request.
const (
	temperature = 0.3
	topP        = 0.9
)

// Client talks to an Ollama /api/generate endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client for the given endpoint and model.
// No client-global timeout is set; callers bound each call with a
// context deadline.
func New(baseURL, model string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        5,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     120 * time.Second,
			},
		},
		logger: logger.With("component", "ollama", "model", model),
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// ---------- Wire Types ----------

// generateRequest is the Ollama /api/generate request body.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

// generateOptions carries the sampling parameters.
type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
	TopP        float64 `json:"top_p"`
}

// generateResponse is the non-streaming /api/generate response.
// Thinking is populated instead of Response by some reasoning models.
type generateResponse struct {
	Response string `json:"response"`
	Thinking string `json:"thinking"`
	Done     bool   `json:"done"`
}

// ---------- Errors ----------

// APIError is returned when the endpoint answers with a non-success status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ollama returned %d: %s", e.StatusCode, truncate(e.Body, 200))
}

// truncate shortens s to max bytes for log/error output.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// ---------- Public Methods ----------

// Generate sends one non-streaming generation request and returns the
// trimmed generated text. maxTokens is the num_predict budget. A failed
// call is returned as-is; there is no retry.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: temperature,
			NumPredict:  maxTokens,
			TopP:        topP,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := c.baseURL + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending generate request", "prompt_len", len(prompt), "num_predict", maxTokens)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("generate API error", "status", resp.StatusCode, "body", truncate(string(respBody), 500))
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var gen generateResponse
	if err := json.Unmarshal(respBody, &gen); err != nil {
		return "", fmt.Errorf("parsing response: %w (body: %s)", err, truncate(string(respBody), 200))
	}

	text := gen.Response
	if text == "" {
		text = gen.Thinking
	}

	c.logger.Debug("generate done",
		"duration_ms", time.Since(start).Milliseconds(),
		"response_len", len(text),
	)

	return strings.TrimSpace(text), nil
}
