package llm

import (
	"context"
	"fmt"
	"strings"

	"taskflow/ollama"
)

// Generation defaults tuned for structured JSON output
const (
	defaultTemperature = 0.7
	defaultTopP        = 0.9
	defaultMaxTokens   = 2000
)

// OllamaClient implements the Client interface for Ollama
type OllamaClient struct {
	client      *ollama.Client
	model       string
	temperature float64
	topP        float64
	maxTokens   int
}

// NewOllamaClient creates a new Ollama-backed client
func NewOllamaClient(config Config) (*OllamaClient, error) {
	client, err := ollama.NewClient(config.BaseURL, config.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}

	c := &OllamaClient{
		client:      client,
		model:       client.Model(),
		temperature: config.Temperature,
		topP:        config.TopP,
		maxTokens:   config.MaxTokens,
	}
	if c.temperature == 0 {
		c.temperature = defaultTemperature
	}
	if c.topP == 0 {
		c.topP = defaultTopP
	}
	if c.maxTokens == 0 {
		c.maxTokens = defaultMaxTokens
	}
	return c, nil
}

// Generate sends a request to Ollama and returns the response
func (c *OllamaClient) Generate(ctx context.Context, req Request) (*Response, error) {
	var promptBuilder strings.Builder
	var systemPrompt string

	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			systemPrompt = msg.Content
		default:
			promptBuilder.WriteString(msg.Content)
			promptBuilder.WriteString("\n")
		}
	}
	prompt := strings.TrimSpace(promptBuilder.String())

	opts := ollama.Options{
		Temperature: c.temperature,
		TopP:        c.topP,
		NumPredict:  c.maxTokens,
	}
	if req.Temperature > 0 {
		opts.Temperature = req.Temperature
	}
	if req.TopP > 0 {
		opts.TopP = req.TopP
	}
	if req.MaxTokens > 0 {
		opts.NumPredict = req.MaxTokens
	}

	result, err := c.client.Generate(ctx, prompt, systemPrompt, opts)
	if err != nil {
		return nil, fmt.Errorf("ollama generation error: %w", err)
	}

	metadata := map[string]any{
		"temperature": opts.Temperature,
	}
	if req.Purpose != "" {
		metadata["purpose"] = string(req.Purpose)
	}
	return &Response{
		Content:    result.Response,
		Model:      c.model,
		TokensUsed: result.TokensUsed(),
		Metadata:   metadata,
	}, nil
}

// GetModel returns the model name
func (c *OllamaClient) GetModel() string {
	return c.model
}

// GetProvider returns the provider name
func (c *OllamaClient) GetProvider() string {
	return "ollama"
}

// IsAvailable checks if Ollama is responding
func (c *OllamaClient) IsAvailable(ctx context.Context) bool {
	return c.client.Ping(ctx) == nil
}
