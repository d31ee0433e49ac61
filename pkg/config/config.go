package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/redgreenloop/redgreen/pkg/provider"
)

const (
	defaultTestCmd         = "go test ./..."
	defaultMaxContextBytes = 200_000
	defaultImplAttempts    = 3
)

// Config holds everything the cycle controller needs: one backend per role,
// the test command, the context byte budget and the implementor retry budget.
type Config struct {
	Tester                 provider.RoleConfig `json:"tester" yaml:"tester"`
	Implementor            provider.RoleConfig `json:"implementor" yaml:"implementor"`
	Refactorer             provider.RoleConfig `json:"refactorer" yaml:"refactorer"`
	TestCmd                string              `json:"test_cmd" yaml:"test_cmd"`
	MaxContextBytes        int                 `json:"max_context_bytes" yaml:"max_context_bytes"`
	ImplementorMaxAttempts int                 `json:"implementor_max_attempts" yaml:"implementor_max_attempts"`
}

// Example returns the built-in configuration: mock backends and default
// prompts, ready to run without API keys.
func Example() *Config {
	mockRole := func(prompt string) provider.RoleConfig {
		return provider.RoleConfig{
			Provider:     provider.Config{Kind: provider.KindMock, Model: "mock"},
			SystemPrompt: prompt,
		}
	}
	return &Config{
		Tester:                 mockRole("You are the Tester. Add a single failing test expressing a new behavior. Only output a JSON patch."),
		Implementor:            mockRole("You are the Implementor. Make tests pass with minimal changes. Only output a JSON patch."),
		Refactorer:             mockRole("You are the Refactorer. Improve code without changing behavior. Keep tests passing. Only output a JSON patch."),
		TestCmd:                defaultTestCmd,
		MaxContextBytes:        defaultMaxContextBytes,
		ImplementorMaxAttempts: defaultImplAttempts,
	}
}

// Load reads a config file, JSON or YAML by extension. An empty path returns
// the built-in example config.
func Load(path string) (*Config, error) {
	if path == "" {
		return Example(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.TestCmd == "" {
		c.TestCmd = defaultTestCmd
	}
	if c.MaxContextBytes == 0 {
		c.MaxContextBytes = defaultMaxContextBytes
	}
	if c.ImplementorMaxAttempts == 0 {
		c.ImplementorMaxAttempts = defaultImplAttempts
	}
}

// Validate rejects configurations the controller cannot act on.
func (c *Config) Validate() error {
	roles := map[string]provider.RoleConfig{
		"tester":      c.Tester,
		"implementor": c.Implementor,
		"refactorer":  c.Refactorer,
	}
	for name, rc := range roles {
		switch rc.Provider.Kind {
		case provider.KindOpenAI, provider.KindGemini, provider.KindOllama, provider.KindMock:
		case "":
			return fmt.Errorf("role %s has no provider kind", name)
		default:
			return fmt.Errorf("role %s has unknown provider kind %q", name, rc.Provider.Kind)
		}
		if rc.Provider.Model == "" {
			return fmt.Errorf("role %s has no model configured", name)
		}
	}
	if c.ImplementorMaxAttempts < 1 {
		return fmt.Errorf("implementor_max_attempts must be at least 1, got %d", c.ImplementorMaxAttempts)
	}
	if c.MaxContextBytes < 1 {
		return fmt.Errorf("max_context_bytes must be positive, got %d", c.MaxContextBytes)
	}
	return nil
}

// WriteTemplate writes the example config as YAML. If path is a directory,
// the default filename is used inside it.
func WriteTemplate(path string) (string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, "redgreen.yaml")
	}
	data, err := yaml.Marshal(Example())
	if err != nil {
		return "", fmt.Errorf("marshaling template config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing template config %s: %w", path, err)
	}
	return path, nil
}
