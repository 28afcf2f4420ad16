// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/flexchat/internal/provider"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete flexchat configuration.
type Config struct {
	Chat      ChatConfig       `toml:"chat" yaml:"chat"`
	Questions QuestionsConfig  `toml:"questions" yaml:"questions"`
	Agents    AgentsConfig     `toml:"agents" yaml:"agents"`
	Logging   LoggingConfig    `toml:"logging" yaml:"logging"`
	Providers []ProviderConfig `toml:"providers" yaml:"providers"`
}

// ChatConfig configures the interactive chat loop.
type ChatConfig struct {
	// SystemPrompt seeds every new transcript.
	SystemPrompt string `toml:"system_prompt" yaml:"system_prompt"`

	// HistoryFile stores line-editor history between runs. Empty disables it.
	HistoryFile string `toml:"history_file" yaml:"history_file"`
}

// QuestionsConfig configures the fan-out Q&A pipeline.
type QuestionsConfig struct {
	Provider      string `toml:"provider" yaml:"provider"`
	Workers       int    `toml:"workers" yaml:"workers"`
	MaxRelated    int    `toml:"max_related" yaml:"max_related"`
	OutputDir     string `toml:"output_dir" yaml:"output_dir"`
	Prefix        string `toml:"prefix" yaml:"prefix"`
	Title         string `toml:"title" yaml:"title"`
	DefaultExpert string `toml:"default_expert" yaml:"default_expert"`
}

// AgentsConfig selects the providers used by the agent pipelines.
type AgentsConfig struct {
	BusinessProvider string `toml:"business_provider" yaml:"business_provider"`
	PoemProvider     string `toml:"poem_provider" yaml:"poem_provider"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level     string `toml:"level" yaml:"level"`
	Format    string `toml:"format" yaml:"format"`
	LogToFile bool   `toml:"log_to_file" yaml:"log_to_file"`
	LogFile   string `toml:"log_file" yaml:"log_file"`
}

// ProviderConfig describes one chat vendor.
type ProviderConfig struct {
	Name    string `toml:"name" yaml:"name"`
	Kind    string `toml:"kind" yaml:"kind"`
	BaseURL string `toml:"base_url" yaml:"base_url"`
	Model   string `toml:"model" yaml:"model"`

	// APIKeyEnv names the environment variable holding the key.
	APIKeyEnv string `toml:"api_key_env" yaml:"api_key_env"`

	// APIKey may be set in the file; the environment variable wins when set.
	APIKey string `toml:"api_key,omitempty" yaml:"api_key,omitempty"`

	Temperature       float64 `toml:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens         int     `toml:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	RequestsPerMinute int     `toml:"requests_per_minute,omitempty" yaml:"requests_per_minute,omitempty"`

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string `toml:"headers,omitempty" yaml:"headers,omitempty"`

	Disabled bool `toml:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// Spec converts the entry into a provider.Spec. The kind must already be
// validated.
func (p ProviderConfig) Spec() (provider.Spec, error) {
	kind, err := provider.ParseKind(p.Kind)
	if err != nil {
		return provider.Spec{}, err
	}
	return provider.Spec{
		Name:              p.Name,
		Kind:              kind,
		BaseURL:           p.BaseURL,
		Model:             p.Model,
		APIKey:            p.APIKey,
		Temperature:       p.Temperature,
		MaxTokens:         p.MaxTokens,
		RequestsPerMinute: p.RequestsPerMinute,
		Headers:           p.Headers,
	}, nil
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultSystemPrompt  = "You are a helpful assistant."
	DefaultWorkers       = 5
	DefaultMaxRelated    = 5
	DefaultOutputDir     = "data/output/questions"
	DefaultPrefix        = "questions"
	DefaultTitle         = "Q&A Results"
	DefaultExpert        = "knowledgeable expert"
	DefaultLogFile       = "app.log"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultQAProvider    = "Perplexity"
	DefaultBusinessAgent = "OpenAI"
	DefaultPoemAgent     = "Groq"
)

// DefaultProviders returns the built-in vendor table in registration order.
func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{
			Name:      "OpenAI",
			Kind:      "openai",
			BaseURL:   provider.OpenAIBaseURL,
			Model:     "gpt-3.5-turbo",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		{
			Name:        "Groq",
			Kind:        "openai",
			BaseURL:     provider.GroqBaseURL,
			Model:       "mixtral-8x7b-32768",
			APIKeyEnv:   "GROQ_API_KEY",
			Temperature: 0.5,
		},
		{
			Name:      "OpenRouter",
			Kind:      "openai",
			BaseURL:   provider.OpenRouterBaseURL,
			Model:     "openrouter/auto",
			APIKeyEnv: "OPENROUTER_API_KEY",
			Headers: map[string]string{
				"HTTP-Referer": "https://github.com/jeranaias/flexchat",
				"X-Title":      "flexchat",
			},
		},
		{
			Name:      "Anthropic",
			Kind:      "anthropic",
			BaseURL:   provider.AnthropicBaseURL,
			Model:     "claude-3-opus-20240229",
			APIKeyEnv: "ANTHROPIC_API_KEY",
			MaxTokens: provider.DefaultAnthropicMaxTokens,
		},
		{
			Name:      "Perplexity",
			Kind:      "openai",
			BaseURL:   provider.PerplexityBaseURL,
			Model:     "llama-3.1-sonar-large-128k-online",
			APIKeyEnv: "PERPLEXITY_API_KEY",
		},
		{
			Name:      "Google",
			Kind:      "openai",
			BaseURL:   provider.GoogleBaseURL,
			Model:     "gemini-1.5-pro-latest",
			APIKeyEnv: "GOOGLE_API_KEY",
		},
	}
}

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		Chat: ChatConfig{
			SystemPrompt: DefaultSystemPrompt,
		},
		Questions: QuestionsConfig{
			Workers:       DefaultWorkers,
			MaxRelated:    DefaultMaxRelated,
			OutputDir:     DefaultOutputDir,
			Prefix:        DefaultPrefix,
			Title:         DefaultTitle,
			DefaultExpert: DefaultExpert,
		},
		Logging: LoggingConfig{
			Level:   DefaultLogLevel,
			Format:  DefaultLogFormat,
			LogFile: DefaultLogFile,
		},
		Providers: DefaultProviders(),
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the flexchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".flexchat"), nil
}

// candidatePaths lists config files in lookup order.
func candidatePaths() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return []string{
		filepath.Join(dir, "config.toml"),
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.yml"),
	}, nil
}

// DefaultPath returns the path `config init` writes to.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads the first config file found in ~/.flexchat, or the built-in
// defaults when none exists. Environment overrides are applied last.
func Load() (*Config, error) {
	paths, err := candidatePaths()
	if err != nil {
		// No home directory: defaults plus environment still work.
		return finish(Default())
	}

	for _, path := range paths {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	return finish(Default())
}

// LoadFromPath loads configuration from a specific file. The format is chosen
// by extension: .yaml/.yml for YAML, anything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := LoadYAML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load YAML config from %s: %w", path, err)
		}
	default:
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// finish applies env overrides, defaults and validation.
func finish(cfg *Config) (*Config, error) {
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. A providers table in the file
// replaces the default table.
func LoadTOML(cfg *Config, path string) error {
	cfg.Providers = nil
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if len(cfg.Providers) == 0 {
		cfg.Providers = DefaultProviders()
	}
	return nil
}

// LoadYAML decodes a YAML file over cfg. A providers list in the file
// replaces the default table.
func LoadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}

	cfg.Providers = nil
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode YAML file: %w", err)
	}
	if len(cfg.Providers) == 0 {
		cfg.Providers = DefaultProviders()
	}
	return nil
}

// SaveTOML writes the configuration to a TOML file with 0600 permissions.
// API keys loaded from the environment are not written.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# flexchat configuration file")
	fmt.Fprintln(file, "# API keys are read from the environment variable named by api_key_env.")
	fmt.Fprintln(file, "")

	out := cfg.Clone()
	for i := range out.Providers {
		if out.Providers[i].APIKeyEnv != "" {
			out.Providers[i].APIKey = ""
		}
	}

	if err := toml.NewEncoder(file).Encode(out); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns ValidateErrors when
// anything is wrong.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if len(c.Providers) == 0 {
		errs = append(errs, ValidationError{Field: "providers", Message: "at least one provider is required"})
	}

	seen := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		field := fmt.Sprintf("providers[%d]", i)

		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, ValidationError{Field: field + ".name", Message: "must not be empty"})
		} else if seen[strings.ToLower(p.Name)] {
			errs = append(errs, ValidationError{Field: field + ".name", Message: fmt.Sprintf("duplicate provider %q", p.Name)})
		}
		seen[strings.ToLower(p.Name)] = true

		if _, err := provider.ParseKind(p.Kind); err != nil {
			errs = append(errs, ValidationError{Field: field + ".kind", Message: err.Error()})
		}

		if u, err := url.Parse(p.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{Field: field + ".base_url", Message: fmt.Sprintf("invalid URL %q", p.BaseURL)})
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, ValidationError{Field: field + ".base_url", Message: "scheme must be http or https"})
		}

		if p.Temperature < 0 || p.Temperature > 2 {
			errs = append(errs, ValidationError{Field: field + ".temperature", Message: "must be between 0 and 2"})
		}
		if p.MaxTokens < 0 {
			errs = append(errs, ValidationError{Field: field + ".max_tokens", Message: "must not be negative"})
		}
		if p.RequestsPerMinute < 0 {
			errs = append(errs, ValidationError{Field: field + ".requests_per_minute", Message: "must not be negative"})
		}
	}

	if c.Questions.Workers < 1 || c.Questions.Workers > 64 {
		errs = append(errs, ValidationError{
			Field:   "questions.workers",
			Message: fmt.Sprintf("must be between 1 and 64, got %d", c.Questions.Workers),
		})
	}
	if c.Questions.MaxRelated < 0 || c.Questions.MaxRelated > 5 {
		errs = append(errs, ValidationError{
			Field:   "questions.max_related",
			Message: fmt.Sprintf("must be between 0 and 5, got %d", c.Questions.MaxRelated),
		})
	}
	if strings.ContainsAny(c.Questions.Prefix, `/\`) {
		errs = append(errs, ValidationError{Field: "questions.prefix", Message: "must not contain path separators"})
	}

	for _, check := range []struct{ field, name string }{
		{"questions.provider", c.Questions.Provider},
		{"agents.business_provider", c.Agents.BusinessProvider},
		{"agents.poem_provider", c.Agents.PoemProvider},
	} {
		if check.name == "" {
			continue
		}
		switch p := c.Provider(check.name); {
		case p == nil:
			errs = append(errs, ValidationError{Field: check.field, Message: fmt.Sprintf("unknown provider %q", check.name)})
		case p.Disabled:
			errs = append(errs, ValidationError{Field: check.field, Message: fmt.Sprintf("provider %q is disabled", check.name)})
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: text, json", c.Logging.Format),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Chat.SystemPrompt == "" {
		c.Chat.SystemPrompt = d.Chat.SystemPrompt
	}
	if c.Questions.Workers == 0 {
		c.Questions.Workers = d.Questions.Workers
	}
	if c.Questions.OutputDir == "" {
		c.Questions.OutputDir = d.Questions.OutputDir
	}
	if c.Questions.Prefix == "" {
		c.Questions.Prefix = d.Questions.Prefix
	}
	if c.Questions.Title == "" {
		c.Questions.Title = d.Questions.Title
	}
	if c.Questions.DefaultExpert == "" {
		c.Questions.DefaultExpert = d.Questions.DefaultExpert
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	if c.Logging.LogFile == "" {
		c.Logging.LogFile = d.Logging.LogFile
	}

	// Pipelines left unset use their preferred vendor when it is configured,
	// otherwise the first enabled provider.
	c.Questions.Provider = c.pickProvider(c.Questions.Provider, DefaultQAProvider)
	c.Agents.BusinessProvider = c.pickProvider(c.Agents.BusinessProvider, DefaultBusinessAgent)
	c.Agents.PoemProvider = c.pickProvider(c.Agents.PoemProvider, DefaultPoemAgent)
}

func (c *Config) pickProvider(current, preferred string) string {
	if current != "" {
		return current
	}
	if p := c.Provider(preferred); p != nil && !p.Disabled {
		return p.Name
	}
	if enabled := c.EnabledProviders(); len(enabled) > 0 {
		return enabled[0].Name
	}
	return ""
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variables to the configuration.
//
//   - <api_key_env> for each provider (OPENAI_API_KEY, GROQ_API_KEY, ...)
//   - FLEXCHAT_OUTPUT_DIR: overrides questions.output_dir
//   - FLEXCHAT_WORKERS: overrides questions.workers
//   - FLEXCHAT_QUESTIONS_PROVIDER: overrides questions.provider
//   - FLEXCHAT_LOG_LEVEL: overrides logging.level
//   - FLEXCHAT_LOG_FILE: sets logging.log_file and enables file logging
//
// Values that cannot be parsed are reported as ValidateErrors and leave the
// field unchanged.
func (c *Config) ApplyEnvOverrides() error {
	var errs ValidateErrors

	for i := range c.Providers {
		if env := c.Providers[i].APIKeyEnv; env != "" {
			if key := os.Getenv(env); key != "" {
				c.Providers[i].APIKey = key
			}
		}
	}

	if dir := os.Getenv("FLEXCHAT_OUTPUT_DIR"); dir != "" {
		c.Questions.OutputDir = dir
	}
	if workers := os.Getenv("FLEXCHAT_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			c.Questions.Workers = n
		} else {
			errs = append(errs, ValidationError{
				Field:   "FLEXCHAT_WORKERS",
				Message: fmt.Sprintf("invalid integer value %q", workers),
			})
		}
	}
	if p := os.Getenv("FLEXCHAT_QUESTIONS_PROVIDER"); p != "" {
		c.Questions.Provider = p
	}
	if level := os.Getenv("FLEXCHAT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("FLEXCHAT_LOG_FILE"); file != "" {
		c.Logging.LogFile = file
		c.Logging.LogToFile = true
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// EnabledProviders returns the providers that are not disabled, in table
// order.
func (c *Config) EnabledProviders() []ProviderConfig {
	out := make([]ProviderConfig, 0, len(c.Providers))
	for _, p := range c.Providers {
		if !p.Disabled {
			out = append(out, p)
		}
	}
	return out
}

// Provider returns the provider entry with the given name (case-insensitive),
// or nil.
func (c *Config) Provider(name string) *ProviderConfig {
	for i := range c.Providers {
		if strings.EqualFold(c.Providers[i].Name, name) {
			return &c.Providers[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Providers = make([]ProviderConfig, len(c.Providers))
	for i, p := range c.Providers {
		if p.Headers != nil {
			headers := make(map[string]string, len(p.Headers))
			for k, v := range p.Headers {
				headers[k] = v
			}
			p.Headers = headers
		}
		clone.Providers[i] = p
	}
	return &clone
}

// String returns a TOML rendering of the config with API keys redacted.
func (c *Config) String() string {
	safe := c.Clone()
	for i := range safe.Providers {
		if safe.Providers[i].APIKey != "" {
			safe.Providers[i].APIKey = "[REDACTED]"
		}
	}

	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(safe); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
