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

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiProvider talks to the Gemini generateContent API.
type GeminiProvider struct {
	cfg    Config
	client *http.Client
	base   string
	apiKey string
}

func newGeminiProvider(cfg Config) (*GeminiProvider, error) {
	base := cfg.BaseURL
	if base == "" {
		base = defaultGeminiBaseURL
	}
	envKey := cfg.APIKeyEnv
	if envKey == "" {
		envKey = "GEMINI_API_KEY"
	}
	apiKey := os.Getenv(envKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key: env var %s is not set", envKey)
	}
	return &GeminiProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: defaultTimeout},
		base:   strings.TrimSuffix(base, "/"),
		apiKey: apiKey,
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (p *GeminiProvider) GeneratePatch(ctx context.Context, role, contextText, instructions string) (*Patch, error) {
	apiURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", p.base, p.cfg.Model, p.apiKey)
	user := fmt.Sprintf("Role: %s\nInstructions:\n%s\n\nProject context (truncated):\n%s", role, instructions, contextText)

	reqBodyStruct := geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: schemaPrompt}, {Text: user}},
			},
		},
	}
	reqBodyStruct.GenerationConfig.Temperature = 0.2

	reqBody, err := json.Marshal(reqBodyStruct)
	if err != nil {
		return nil, fmt.Errorf("marshaling generateContent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("creating generateContent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generateContent request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading generateContent response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generateContent returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshaling generateContent response: %w", err)
	}
	for _, cand := range parsed.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return parsePatch(part.Text)
			}
		}
	}
	return nil, fmt.Errorf("generateContent response for role %s contained no candidates", role)
}
