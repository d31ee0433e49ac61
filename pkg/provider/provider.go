package provider

import (
	"context"
	"fmt"
	"time"
)

// defaultTimeout bounds a single backend call. Model responses for a full
// patch can take a while on slower endpoints.
const defaultTimeout = 5 * time.Minute

// schemaPrompt is sent to every remote backend so replies stay machine-parseable.
const schemaPrompt = "You are a code-modifying agent. Respond ONLY with a valid JSON object " +
	"matching the schema { files: [{path, mode: 'rewrite'|'append', content}], commit_message?, notes? }. No prose."

// Provider generates a structured patch for a named role given project
// context and role instructions.
type Provider interface {
	GeneratePatch(ctx context.Context, role, contextText, instructions string) (*Patch, error)
}

// New builds the backend selected by cfg.Kind.
func New(cfg Config) (Provider, error) {
	switch cfg.Kind {
	case KindOpenAI:
		return newOpenAIProvider(cfg)
	case KindGemini:
		return newGeminiProvider(cfg)
	case KindOllama:
		return newOllamaProvider(cfg)
	case KindMock:
		return &MockProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
}
