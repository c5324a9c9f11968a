package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"labflow/internal/config"
)

// StructuredClient provides typed JSON responses from LLM calls
type StructuredClient[T any] struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// NewStructuredClient creates a new structured client from AI config
func NewStructuredClient[T any](cfg config.AIConfig) *StructuredClient[T] {
	log.Printf("[StructuredClient] Initializing client with model=%s, temp=%.2f, maxTokens=%d, timeout=%v",
		cfg.OpenAIModel, cfg.Temperature, cfg.MaxTokens, cfg.Timeout)

	return &StructuredClient[T]{
		APIKey:      cfg.OpenAIKey,
		BaseURL:     "https://api.openai.com/v1",
		Model:       cfg.OpenAIModel,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout,
		HTTPClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

// GetJSONResponse makes a typed LLM call and parses the JSON response
func (client *StructuredClient[T]) GetJSONResponse(ctx context.Context, systemMessage, prompt string) (*T, error) {
	log.Printf("[StructuredClient] Starting JSON response request - model=%s, promptLength=%d",
		client.Model, len(prompt))

	if client.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, client.Timeout)
	defer cancel()

	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type responseFormat struct {
		Type string `json:"type"`
	}
	type requestBody struct {
		Model               string         `json:"model"`
		Messages            []message      `json:"messages"`
		Temperature         float64        `json:"temperature,omitempty"`
		MaxCompletionTokens int            `json:"max_completion_tokens,omitempty"`
		ResponseFormat      responseFormat `json:"response_format"`
	}

	// JSON mode requires the word JSON somewhere in the conversation
	if !strings.Contains(strings.ToLower(systemMessage), "json") {
		systemMessage += "\n\nRespond with valid JSON output."
	}

	reqBody := requestBody{
		Model: client.Model,
		Messages: []message{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: prompt},
		},
		Temperature:         client.Temperature,
		MaxCompletionTokens: client.MaxTokens,
		ResponseFormat:      responseFormat{Type: "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", client.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+client.APIKey)

	resp, err := client.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("request timeout after %v: %w", client.Timeout, err)
		}
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(body))
	}

	log.Printf("[StructuredClient] Response body size: %d bytes", len(body))

	var envelope struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAI response: %w", err)
	}
	if len(envelope.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenAI response")
	}

	content := cleanJSONContent(envelope.Choices[0].Message.Content)

	var result T
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		log.Printf("[StructuredClient] ERROR: Failed to unmarshal content: %v", err)
		return nil, fmt.Errorf("failed to parse JSON content into result type: %w\nContent: %s", err, content)
	}
	return &result, nil
}

// cleanJSONContent strips markdown code fences some models wrap around JSON
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
