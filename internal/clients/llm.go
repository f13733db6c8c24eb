package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"surfcast/pkg/logging"
	"surfcast/pkg/metrics"
)

// LLMClient calls the language-model collaborator that writes narrative
// surf reports. It returns the raw completion text; parsing and verdict
// normalization live in ParseReport.
type LLMClient struct {
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
}

// NewLLMClient creates a new language-model API client
func NewLLMClient(baseURL, apiKey, model string, timeout time.Duration, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *LLMClient {
	return &LLMClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		timeout:    timeout,
		httpClient: &http.Client{},
		logger:     logger,
		metrics:    metricsCollector,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends a structured prompt and returns the raw completion text.
func (c *LLMClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.7,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	timer := time.Now()
	defer func() {
		c.metrics.UpstreamRequestDuration.WithLabelValues("llm").Observe(time.Since(timer).Seconds())
	}()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamError("llm", "transport")
		return "", classifyError("llm", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.RecordUpstreamError("llm", "status")
		return "", &UpstreamMalformedError{
			Collaborator: "llm",
			Reason:       fmt.Sprintf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		c.metrics.RecordUpstreamError("llm", "decode")
		return "", &UpstreamMalformedError{Collaborator: "llm", Reason: "undecodable body", Err: err}
	}

	if len(completion.Choices) == 0 {
		c.metrics.RecordUpstreamError("llm", "empty")
		return "", &UpstreamMalformedError{Collaborator: "llm", Reason: "no choices returned"}
	}

	return completion.Choices[0].Message.Content, nil
}
