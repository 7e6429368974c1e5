package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BerylCAtieno/legal-assistant-api/internal/utils"
)

type openAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

type openAIChoice struct {
	Message Message `json:"message"`
}

// OpenAIClient speaks the OpenAI chat-completions protocol. Any compatible
// endpoint works (OpenAI, OpenRouter, Groq) by changing the base URL.
type OpenAIClient struct {
	baseURL string
	apiKey  string
	logger  *utils.Logger
	client  *http.Client
}

func NewOpenAIClient(baseURL, apiKey string, logger *utils.Logger) *OpenAIClient {
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	jsonData, err := json.Marshal(openAIRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: failed to send request: %w", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %w", ErrServiceUnavailable, err)
	}

	var parsed openAIResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("Completion API error body", "status", resp.StatusCode, "body", string(body))
		if decodeErr == nil && parsed.Error != nil {
			return "", fmt.Errorf("%w: status %d: %s", ErrServiceUnavailable, resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}

	if decodeErr != nil {
		return "", fmt.Errorf("%w: failed to unmarshal response: %w", ErrServiceUnavailable, decodeErr)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrServiceUnavailable, parsed.Error.Message)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: %w", ErrServiceUnavailable, ErrNoChoices)
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
