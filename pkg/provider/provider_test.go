package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsBackend(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk")
	t.Setenv("GEMINI_API_KEY", "gk")
	t.Setenv("OLLAMA_HOST", "http://127.0.0.1:11434")

	tests := []struct {
		kind    Kind
		want    interface{}
		wantErr bool
	}{
		{kind: KindMock, want: &MockProvider{}},
		{kind: KindOpenAI, want: &OpenAIProvider{}},
		{kind: KindGemini, want: &GeminiProvider{}},
		{kind: KindOllama, want: &OllamaProvider{}},
		{kind: Kind("bogus"), wantErr: true},
		{kind: Kind(""), wantErr: true},
	}

	for _, tt := range tests {
		p, err := New(Config{Kind: tt.kind, Model: "m"})
		if tt.wantErr {
			assert.Error(t, err, "kind %q", tt.kind)
			continue
		}
		require.NoError(t, err, "kind %q", tt.kind)
		assert.IsType(t, tt.want, p, "kind %q", tt.kind)
	}
}
