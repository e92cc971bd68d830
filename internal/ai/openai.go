package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIModel calls any OpenAI-compatible chat completions endpoint.
type OpenAIModel struct {
	apiKey    string
	baseURL   string
	modelName string
	client    *http.Client
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float32         `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func NewOpenAIModel(mc *ModelConfig) (*OpenAIModel, error) {
	if mc.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	baseURL := strings.TrimSuffix(mc.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	modelName := mc.ModelName
	if modelName == "" || strings.HasPrefix(modelName, "gemini") {
		modelName = "gpt-4o-mini"
	}

	return &OpenAIModel{
		apiKey:    mc.APIKey,
		baseURL:   baseURL,
		modelName: modelName,
		client:    httpClient(mc.Timeout),
	}, nil
}

func (o *OpenAIModel) Generate(ctx context.Context, prompt string, opts *GenerationOptions) (string, error) {
	req := openAIRequest{
		Model:    o.modelName,
		Messages: []openAIMessage{{Role: "user", Content: prompt}},
	}
	if opts != nil {
		req.MaxTokens = opts.MaxTokens
		req.Temperature = opts.Temperature
		if opts.JSON {
			req.ResponseFormat = &responseFormat{Type: "json_object"}
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var or openAIResponse
	if err := json.Unmarshal(raw, &or); err != nil {
		return "", fmt.Errorf("openai: status %d: unmarshal response: %w", resp.StatusCode, err)
	}
	if or.Error != nil {
		return "", fmt.Errorf("openai API error: %s", or.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai: unexpected status %d", resp.StatusCode)
	}
	if len(or.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response")
	}
	return or.Choices[0].Message.Content, nil
}

func (o *OpenAIModel) Name() string {
	return "openai:" + o.modelName
}
