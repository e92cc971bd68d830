// Package ai talks to a hosted language model for the metadata and
// history-based recommendation flows.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cineverse/internal/config"
)

var ErrNoAPIKey = errors.New("ai: no API key configured")

// Model is any text generation backend.
type Model interface {
	Generate(ctx context.Context, prompt string, opts *GenerationOptions) (string, error)
	Name() string
}

// GenerationOptions provides configuration for one generation.
type GenerationOptions struct {
	MaxTokens   int
	Temperature float32
	// JSON asks the backend for a JSON-only answer when it supports that.
	JSON bool
}

func DefaultGenerationOptions() *GenerationOptions {
	return &GenerationOptions{
		MaxTokens:   1024,
		Temperature: 0.4,
		JSON:        true,
	}
}

// ModelConfig holds common configuration for models.
type ModelConfig struct {
	APIKey    string
	BaseURL   string
	ModelName string
	Timeout   time.Duration
}

func ModelConfigFrom(cfg *config.Config) *ModelConfig {
	return &ModelConfig{
		APIKey:    cfg.AIAPIKey,
		BaseURL:   cfg.AIBaseURL,
		ModelName: cfg.AIModel,
		Timeout:   cfg.AITimeout,
	}
}

// NewModel builds the backend for provider ("gemini" or "openai").
func NewModel(provider string, mc *ModelConfig) (Model, error) {
	switch provider {
	case "gemini", "":
		return NewGeminiModel(mc)
	case "openai":
		return NewOpenAIModel(mc)
	default:
		return nil, fmt.Errorf("ai: unsupported provider %q", provider)
	}
}

func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
