package driving

import "github.com/winnowlabs/winnow/internal/core/domain"

// SettingsService manages application settings stored in the config
// file, exposing them as the typed domain.Settings view.
type SettingsService interface {
	// Get assembles current settings, with defaults applied for any
	// key not present in the store.
	Get() (*domain.Settings, error)

	// Save persists the settings back to the store.
	Save(settings *domain.Settings) error

	// SetEmbeddingProvider configures the embedding provider, filling
	// in the provider's default model and base URL where omitted.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the LLM provider similarly.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// EngineConfig returns the validated retrieval configuration.
	// Invalid stored values surface as domain.ErrConfiguration rather
	// than being silently corrected.
	EngineConfig() (domain.Config, error)
}
