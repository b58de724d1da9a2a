package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingDimensions returns the vector sizes of well-known embedding
// models. Models not listed here fall back to the provider default or
// an explicitly configured dimensionality.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"snowflake-arctic-embed": 1024,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or API-compatible
	// servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the expected vector size; zero adopts the
	// provider default.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration for query expansion.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// StorageSettings holds document store configuration.
type StorageSettings struct {
	// Path is the SQLite database file. Empty selects the default
	// location under ~/.winnow; the literal ":memory:" keeps documents
	// in memory only, so nothing survives a restart.
	Path string
}

// GitHubSettings holds GitHub connector configuration.
type GitHubSettings struct {
	// Token is a personal access token with repo read scope.
	Token string
}

// Settings holds all application settings, the typed view over the
// config store.
type Settings struct {
	// Retrieval holds the engine configuration knobs.
	Retrieval Config

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Storage holds document store settings.
	Storage StorageSettings

	// GitHub holds GitHub connector settings.
	GitHub GitHubSettings
}

// DefaultSettings returns settings with engine defaults applied and
// providers left unconfigured; users set providers up explicitly.
func DefaultSettings() Settings {
	return Settings{
		Retrieval: DefaultConfig(),
		Embedding: EmbeddingSettings{},
		LLM:       LLMSettings{},
	}
}

// EmbedTimeoutOrDefault returns the configured embed timeout, falling
// back to the package default when unset.
func (s Settings) EmbedTimeoutOrDefault() time.Duration {
	if s.Retrieval.EmbedTimeout > 0 {
		return s.Retrieval.EmbedTimeout
	}
	return DefaultEmbedTimeout
}
