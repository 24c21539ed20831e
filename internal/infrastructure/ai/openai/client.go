// Package openai provides the language-model client used for recipe
// generation, speaking the chat-completions protocol against OpenAI or a
// local Ollama endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/richardjr822/food-findr/internal/infrastructure/config"
	"github.com/richardjr822/food-findr/internal/infrastructure/monitoring"
	"github.com/richardjr822/food-findr/internal/ports/outbound"
)

// Client implements the LLMService interface using the chat-completions API
type Client struct {
	apiKey  string
	baseURL string
	model   string

	maxTokens   int
	temperature float64

	client  *http.Client
	metrics *monitoring.MetricsCollector
	logger  *zap.Logger
}

// NewClient creates a language-model client. Without an API key it falls back
// to a local Ollama endpoint so development works offline.
func NewClient(cfg *config.AIConfig, metrics *monitoring.MetricsCollector, logger *zap.Logger) *Client {
	apiKey := cfg.OpenAIKey
	baseURL := cfg.BaseURL
	model := cfg.OpenAIModel

	if baseURL == "" {
		if apiKey == "" {
			logger.Info("OpenAI API key not found, using local Ollama for generation")
			baseURL = "http://localhost:11434/v1"
			apiKey = "ollama" // Dummy key for Ollama
			model = "llama3.2:3b"
		} else {
			baseURL = "https://api.openai.com/v1"
		}
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
		metrics:     metrics,
		logger:      logger.Named("openai-client"),
	}
}

// Chat-completions API structures

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Generate sends the prompt, preceded by the trailing conversation history,
// and returns the model's raw text reply.
func (c *Client) Generate(ctx context.Context, prompt string, history []outbound.ChatTurn) (string, error) {
	messages := make([]chatMessage, 0, len(history)+1)
	for _, turn := range history {
		messages = append(messages, chatMessage{
			Role:    apiRole(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	reqBody := chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.recordCall("error", time.Since(started))
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordCall("error", time.Since(started))
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.recordCall("error", time.Since(started))
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		c.recordCall("error", time.Since(started))
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		c.recordCall("error", time.Since(started))
		return "", fmt.Errorf("no response choices returned")
	}

	c.recordCall("ok", time.Since(started))
	c.logger.Debug("model call completed",
		zap.Int("prompt_tokens", chatResp.Usage.PromptTokens),
		zap.Int("completion_tokens", chatResp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(started)),
	)

	return chatResp.Choices[0].Message.Content, nil
}

func (c *Client) recordCall(status string, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordModelCall(c.provider(), c.model, status, elapsed)
}

func (c *Client) provider() string {
	if strings.Contains(c.baseURL, "localhost:11434") {
		return "ollama"
	}
	return "openai"
}

// apiRole maps conversation roles onto chat-completions roles
func apiRole(role string) string {
	if role == "model" || role == "assistant" {
		return "assistant"
	}
	return "user"
}

var _ outbound.LLMService = (*Client)(nil)
