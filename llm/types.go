package llm

import "context"

// Purpose defines the intended use case for an LLM call
type Purpose string

const (
	PurposePlanning     Purpose = "planning"     // Goal decomposition into tasks
	PurposeSubtasks     Purpose = "subtasks"     // Breaking a task into subtasks
	PurposeOptimization Purpose = "optimization" // Plan optimization analysis
)

// Message represents a single message in a conversation
type Message struct {
	Role    string `json:"role"`    // "system", "user"
	Content string `json:"content"` // The message content
}

// Request represents a request to an LLM
type Request struct {
	Purpose     Purpose   `json:"purpose,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	TopP        float64   `json:"top_p,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Response represents a response from an LLM
type Response struct {
	Content    string         `json:"content"`
	Model      string         `json:"model"`
	TokensUsed int            `json:"tokens_used,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Client defines the interface for interacting with LLM providers
type Client interface {
	// Generate sends a request to the LLM and returns a response
	Generate(ctx context.Context, req Request) (*Response, error)

	// GetModel returns the model name this client is using
	GetModel() string

	// GetProvider returns the provider name (e.g., "ollama")
	GetProvider() string

	// IsAvailable checks if the LLM is available and responding
	IsAvailable(ctx context.Context) bool
}

// Config represents configuration for an LLM instance
type Config struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	MaxTokens   int     `yaml:"max_tokens"`
	BaseURL     string  `yaml:"base_url,omitempty"`
}
