package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint
// (OpenAI, DeepSeek, Groq, local servers).
type OpenAIProvider struct {
	cfg    Config
	client *http.Client
	base   string
	apiKey string
}

func newOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	base := cfg.BaseURL
	if base == "" {
		base = defaultOpenAIBaseURL
	}
	envKey := cfg.APIKeyEnv
	if envKey == "" {
		envKey = "OPENAI_API_KEY"
	}
	apiKey := os.Getenv(envKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key: env var %s is not set", envKey)
	}
	return &OpenAIProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: defaultTimeout},
		base:   strings.TrimSuffix(base, "/"),
		apiKey: apiKey,
	}, nil
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenAIProvider) GeneratePatch(ctx context.Context, role, contextText, instructions string) (*Patch, error) {
	user := fmt.Sprintf("Instructions:\n%s\n\nProject context (truncated):\n%s", instructions, contextText)
	reqBody, err := json.Marshal(openAIRequest{
		Model: p.cfg.Model,
		Messages: []openAIMessage{
			{Role: "system", Content: schemaPrompt},
			{Role: "user", Content: user},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	header := p.cfg.APIKeyHeader
	if header == "" {
		header = "Authorization"
	}
	prefix := "Bearer "
	if p.cfg.APIKeyPrefix != nil {
		prefix = *p.cfg.APIKeyPrefix
	}
	req.Header.Set(header, prefix+p.apiKey)
	if p.cfg.Organization != "" {
		req.Header.Set("OpenAI-Organization", p.cfg.Organization)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat completions request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading chat completions response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat completions returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed openAIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshaling chat completions response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("chat completions response for role %s contained no choices", role)
	}
	return parsePatch(parsed.Choices[0].Message.Content)
}
