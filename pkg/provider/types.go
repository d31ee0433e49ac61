package provider

// EditMode selects how a file edit is applied to the working tree.
type EditMode string

const (
	// EditModeRewrite replaces the file content entirely.
	EditModeRewrite EditMode = "rewrite"
	// EditModeAppend appends to the file, creating it if absent.
	EditModeAppend EditMode = "append"
)

// FileEdit is a single file change inside a Patch.
type FileEdit struct {
	// Path is relative to the project root.
	Path string   `json:"path" yaml:"path"`
	Mode EditMode `json:"mode" yaml:"mode"`
	// Content is the full new content for rewrite, or the appended text for append.
	Content string `json:"content" yaml:"content"`
}

// Patch is the structured edit set a backend must return. Files apply in
// order; an empty Files slice is valid and results in an empty commit.
type Patch struct {
	Files         []FileEdit `json:"files" yaml:"files"`
	CommitMessage string     `json:"commit_message,omitempty" yaml:"commit_message,omitempty"`
	Notes         string     `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Kind identifies a backend implementation.
type Kind string

const (
	KindOpenAI Kind = "openai"
	KindGemini Kind = "gemini"
	KindOllama Kind = "ollama"
	KindMock   Kind = "mock"
)

// Config describes one backend endpoint.
type Config struct {
	Kind  Kind   `json:"kind" yaml:"kind"`
	Model string `json:"model" yaml:"model"`
	// BaseURL overrides the provider endpoint (OpenAI-compatible servers,
	// Gemini proxies, or the Ollama host).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	// APIKeyEnv names the environment variable holding the API key
	// (e.g. OPENAI_API_KEY, GEMINI_API_KEY).
	APIKeyEnv string `json:"api_key_env,omitempty" yaml:"api_key_env,omitempty"`
	// Organization is sent as the OpenAI-Organization header when set.
	Organization string `json:"organization,omitempty" yaml:"organization,omitempty"`
	// APIKeyHeader overrides the Authorization header name (e.g. "api-key").
	APIKeyHeader string `json:"api_key_header,omitempty" yaml:"api_key_header,omitempty"`
	// APIKeyPrefix overrides the "Bearer " value prefix; set to "" for raw keys.
	APIKeyPrefix *string `json:"api_key_prefix,omitempty" yaml:"api_key_prefix,omitempty"`
}

// RoleConfig pairs a backend with an optional role-specific system prompt.
type RoleConfig struct {
	Provider     Config `json:"provider" yaml:"provider"`
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
}
