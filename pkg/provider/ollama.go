package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

// OllamaProvider talks to a local Ollama server.
type OllamaProvider struct {
	cfg    Config
	client *ollama.Client
}

func newOllamaProvider(cfg Config) (*OllamaProvider, error) {
	var client *ollama.Client
	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama base URL %q: %w", cfg.BaseURL, err)
		}
		client = ollama.NewClient(base, http.DefaultClient)
	} else {
		var err error
		client, err = ollama.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("could not create ollama client: %w", err)
		}
	}
	return &OllamaProvider{cfg: cfg, client: client}, nil
}

func (p *OllamaProvider) GeneratePatch(ctx context.Context, role, contextText, instructions string) (*Patch, error) {
	user := fmt.Sprintf("Instructions:\n%s\n\nProject context (truncated):\n%s", instructions, contextText)

	// The model name for ollama is without the "ollama:" prefix.
	model := strings.TrimPrefix(p.cfg.Model, "ollama:")

	stream := false
	req := &ollama.ChatRequest{
		Model: model,
		Messages: []ollama.Message{
			{Role: "system", Content: schemaPrompt},
			{Role: "user", Content: user},
		},
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": 0.2,
		},
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var reply strings.Builder
	err := p.client.Chat(ctx, req, func(res ollama.ChatResponse) error {
		reply.WriteString(res.Message.Content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat request failed: %w", err)
	}
	if reply.Len() == 0 {
		return nil, fmt.Errorf("ollama response for role %s was empty", role)
	}
	return parsePatch(reply.String())
}
