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

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiModel calls the Gemini generateContent endpoint.
type GeminiModel struct {
	apiKey    string
	baseURL   string
	modelName string
	client    *http.Client
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      *float32 `json:"temperature,omitempty"`
	MaxOutputTokens  *int     `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string   `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func NewGeminiModel(mc *ModelConfig) (*GeminiModel, error) {
	if mc.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	modelName := mc.ModelName
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	baseURL := strings.TrimSuffix(mc.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	return &GeminiModel{
		apiKey:    mc.APIKey,
		baseURL:   baseURL,
		modelName: modelName,
		client:    httpClient(mc.Timeout),
	}, nil
}

func (g *GeminiModel) Generate(ctx context.Context, prompt string, opts *GenerationOptions) (string, error) {
	req := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	if opts != nil {
		gc := &geminiGenerationConfig{}
		if opts.Temperature > 0 {
			gc.Temperature = &opts.Temperature
		}
		if opts.MaxTokens > 0 {
			gc.MaxOutputTokens = &opts.MaxTokens
		}
		if opts.JSON {
			gc.ResponseMIMEType = "application/json"
		}
		req.GenerationConfig = gc
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.modelName)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var gr geminiResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("gemini: status %d: unmarshal response: %w", resp.StatusCode, err)
	}
	if gr.Error != nil {
		return "", fmt.Errorf("gemini API error: %s", gr.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini: unexpected status %d", resp.StatusCode)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}

func (g *GeminiModel) Name() string {
	return "gemini:" + g.modelName
}
