// Package llm talks to OpenAI-compatible chat completion endpoints.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
)

const (
	defaultAPIBase = "https://api.openai.com/v1"
	defaultTimeout = 60 * time.Second
	// errorBodyLimit caps how much of a failed response is copied into the error.
	errorBodyLimit = 1024
)

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest describes one non-streaming chat completion request.
type ChatRequest struct {
	Model    string
	Messages []Message
	// Temperature is sent when >= 0.
	Temperature float64
	MaxTokens   int
}

// ChatHelper wraps OpenAI-compatible chat completion calls.
type ChatHelper struct {
	apiBase    string
	httpClient *http.Client
}

// NewChatHelper creates a chat completion helper with safe defaults.
func NewChatHelper(apiBase string, timeout time.Duration, httpClient *http.Client) *ChatHelper {
	trimmedBase := strings.TrimSpace(apiBase)
	if trimmedBase == "" {
		trimmedBase = defaultAPIBase
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &ChatHelper{
		apiBase:    strings.TrimRight(trimmedBase, "/"),
		httpClient: httpClient,
	}
}

// CreateChatCompletion sends a chat completion request and returns the first choice's text.
func (h *ChatHelper) CreateChatCompletion(ctx context.Context, apiKey string, req ChatRequest) (string, error) {
	if h == nil {
		return "", errors.New("chat helper is nil")
	}
	if strings.TrimSpace(apiKey) == "" {
		return "", errors.New("missing api key")
	}
	if strings.TrimSpace(req.Model) == "" {
		return "", errors.New("missing model")
	}
	if len(req.Messages) == 0 {
		return "", errors.New("missing messages")
	}

	payload := chatCompletionRequest{
		Model:    req.Model,
		Messages: req.Messages,
	}
	if req.Temperature >= 0 {
		temperature := req.Temperature
		payload.Temperature = &temperature
	}
	if req.MaxTokens > 0 {
		payload.MaxTokens = req.MaxTokens
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "marshal chat completion request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.apiBase+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build chat completion request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "call chat completion endpoint")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return "", errors.Errorf("chat completion endpoint status %d: %s",
			resp.StatusCode, providerErrorMessage(raw))
	}

	var decoded chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", errors.Wrap(err, "decode chat completion response")
	}

	if len(decoded.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	text := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("chat completion content is empty")
	}

	return text, nil
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// providerErrorMessage extracts error.message from an OpenAI-style error body,
// falling back to the raw body.
func providerErrorMessage(raw []byte) string {
	var decoded chatErrorResponse
	if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Error.Message != "" {
		return decoded.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
