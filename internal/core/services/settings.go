package services

import (
	"fmt"
	"time"

	"github.com/winnowlabs/winnow/internal/core/domain"
	"github.com/winnowlabs/winnow/internal/core/ports/driven"
	"github.com/winnowlabs/winnow/internal/core/ports/driving"
)

// Configuration keys.
const (
	keyChunkSize       = "chunking.size"
	keyChunkOverlap    = "chunking.overlap"
	keyChunkSeparators = "chunking.separators"

	keyBM25K1        = "bm25.k1"
	keyBM25B         = "bm25.b"
	keyBM25Stopwords = "bm25.stopwords"

	keyLexicalWeight = "fusion.lexical_weight"
	keyVectorWeight  = "fusion.vector_weight"

	keyQueryK           = "query.k"
	keyOverFetch        = "query.over_fetch"
	keyContextBudget    = "query.context_budget"
	keyOverlapTolerance = "query.overlap_tolerance"
	keyLexicalFallback  = "query.lexical_fallback"
	keyExpandQueries    = "query.expand"
	keyExpansionCount   = "query.expansion_count"

	keyEmbeddingProvider   = "embedding.provider"
	keyEmbeddingModel      = "embedding.model"
	keyEmbeddingBaseURL    = "embedding.base_url"
	keyEmbeddingAPIKey     = "embedding.api_key"
	keyEmbeddingDimensions = "embedding.dimensions"
	keyEmbedTimeoutSecs    = "embedding.timeout_seconds"

	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"

	keyStoragePath = "storage.path"
	keyGitHubToken = "github.token"
)

// Provider defaults applied when the user configures a provider
// without naming a model or endpoint.
const (
	defaultOllamaBaseURL     = "http://localhost:11434"
	defaultOllamaEmbedModel  = "nomic-embed-text"
	defaultOpenAIEmbedModel  = "text-embedding-3-small"
	defaultOllamaLLMModel    = "llama3.2"
	defaultOpenAILLMModel    = "gpt-4o-mini"
	defaultAnthropicLLMModel = "claude-3-5-haiku-latest"
)

var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsService reads and writes application settings through the
// config store, converting between dotted keys and the typed
// domain.Settings view.
type SettingsService struct {
	config driven.ConfigStore
}

func NewSettingsService(config driven.ConfigStore) (*SettingsService, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: settings service requires a config store", domain.ErrConfiguration)
	}
	return &SettingsService{config: config}, nil
}

// Get assembles current settings, with defaults applied for any key
// not present in the store.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := domain.DefaultSettings()

	settings.Retrieval = s.retrievalConfig()

	settings.Embedding = domain.EmbeddingSettings{
		Provider:   domain.AIProvider(s.config.GetString(keyEmbeddingProvider)),
		Model:      s.config.GetString(keyEmbeddingModel),
		BaseURL:    s.config.GetString(keyEmbeddingBaseURL),
		APIKey:     s.config.GetString(keyEmbeddingAPIKey),
		Dimensions: s.intOr(keyEmbeddingDimensions, 0),
	}
	settings.LLM = domain.LLMSettings{
		Provider: domain.AIProvider(s.config.GetString(keyLLMProvider)),
		Model:    s.config.GetString(keyLLMModel),
		BaseURL:  s.config.GetString(keyLLMBaseURL),
		APIKey:   s.config.GetString(keyLLMAPIKey),
	}
	settings.Storage = domain.StorageSettings{
		Path: s.config.GetString(keyStoragePath),
	}
	settings.GitHub = domain.GitHubSettings{
		Token: s.config.GetString(keyGitHubToken),
	}

	return &settings, nil
}

// Save persists the settings back to the store.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if settings == nil {
		return fmt.Errorf("%w: settings are nil", domain.ErrInvalidInput)
	}

	pairs := []struct {
		key   string
		value any
	}{
		{keyChunkSize, settings.Retrieval.Chunking.Size},
		{keyChunkOverlap, settings.Retrieval.Chunking.Overlap},
		{keyChunkSeparators, settings.Retrieval.Chunking.Separators},
		{keyBM25K1, settings.Retrieval.BM25.K1},
		{keyBM25B, settings.Retrieval.BM25.B},
		{keyBM25Stopwords, settings.Retrieval.BM25.Stopwords},
		{keyLexicalWeight, settings.Retrieval.Fusion.LexicalWeight},
		{keyVectorWeight, settings.Retrieval.Fusion.VectorWeight},
		{keyQueryK, settings.Retrieval.Query.K},
		{keyOverFetch, settings.Retrieval.Query.OverFetch},
		{keyContextBudget, settings.Retrieval.Query.ContextBudget},
		{keyOverlapTolerance, settings.Retrieval.Query.OverlapTolerance},
		{keyLexicalFallback, settings.Retrieval.Query.LexicalFallback},
		{keyExpandQueries, settings.Retrieval.Query.ExpandQueries},
		{keyExpansionCount, settings.Retrieval.Query.ExpansionCount},
		{keyEmbeddingProvider, settings.Embedding.Provider.String()},
		{keyEmbeddingModel, settings.Embedding.Model},
		{keyEmbeddingBaseURL, settings.Embedding.BaseURL},
		{keyEmbeddingAPIKey, settings.Embedding.APIKey},
		{keyEmbeddingDimensions, settings.Embedding.Dimensions},
		{keyEmbedTimeoutSecs, int(settings.EmbedTimeoutOrDefault().Seconds())},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMAPIKey, settings.LLM.APIKey},
		{keyStoragePath, settings.Storage.Path},
		{keyGitHubToken, settings.GitHub.Token},
	}

	for _, p := range pairs {
		if err := s.config.Set(p.key, p.value); err != nil {
			return fmt.Errorf("save setting %s: %w", p.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider, filling in
// the provider's default model, endpoint, and known dimensionality.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}
	if provider == domain.AIProviderAnthropic {
		return fmt.Errorf("%w: anthropic does not offer an embeddings API", domain.ErrInvalidInput)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: provider %s requires an API key", domain.ErrInvalidInput, provider)
	}

	if model == "" {
		switch provider {
		case domain.AIProviderOllama:
			model = defaultOllamaEmbedModel
		case domain.AIProviderOpenAI:
			model = defaultOpenAIEmbedModel
		}
	}

	if err := s.setAll(map[string]any{
		keyEmbeddingProvider: provider.String(),
		keyEmbeddingModel:    model,
		keyEmbeddingAPIKey:   apiKey,
	}); err != nil {
		return err
	}

	if provider.IsLocal() && s.config.GetString(keyEmbeddingBaseURL) == "" {
		if err := s.config.Set(keyEmbeddingBaseURL, defaultOllamaBaseURL); err != nil {
			return fmt.Errorf("save setting %s: %w", keyEmbeddingBaseURL, err)
		}
	}
	if dims, ok := domain.EmbeddingDimensions()[model]; ok {
		if err := s.config.Set(keyEmbeddingDimensions, dims); err != nil {
			return fmt.Errorf("save setting %s: %w", keyEmbeddingDimensions, err)
		}
	}
	return nil
}

// SetLLMProvider configures the LLM provider used for query expansion.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: provider %s requires an API key", domain.ErrInvalidInput, provider)
	}

	if model == "" {
		switch provider {
		case domain.AIProviderOllama:
			model = defaultOllamaLLMModel
		case domain.AIProviderOpenAI:
			model = defaultOpenAILLMModel
		case domain.AIProviderAnthropic:
			model = defaultAnthropicLLMModel
		}
	}

	if err := s.setAll(map[string]any{
		keyLLMProvider: provider.String(),
		keyLLMModel:    model,
		keyLLMAPIKey:   apiKey,
	}); err != nil {
		return err
	}

	if provider.IsLocal() && s.config.GetString(keyLLMBaseURL) == "" {
		if err := s.config.Set(keyLLMBaseURL, defaultOllamaBaseURL); err != nil {
			return fmt.Errorf("save setting %s: %w", keyLLMBaseURL, err)
		}
	}
	return nil
}

// EngineConfig returns the validated retrieval configuration. Invalid
// stored values are reported, never silently corrected.
func (s *SettingsService) EngineConfig() (domain.Config, error) {
	cfg := s.retrievalConfig()
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// retrievalConfig builds the engine configuration from the store,
// falling back to defaults key by key.
func (s *SettingsService) retrievalConfig() domain.Config {
	cfg := domain.DefaultConfig()

	cfg.Chunking.Size = s.intOr(keyChunkSize, cfg.Chunking.Size)
	cfg.Chunking.Overlap = s.intOr(keyChunkOverlap, cfg.Chunking.Overlap)
	if _, ok := s.config.Get(keyChunkSeparators); ok {
		cfg.Chunking.Separators = s.config.GetStringSlice(keyChunkSeparators)
	}

	cfg.BM25.K1 = s.floatOr(keyBM25K1, cfg.BM25.K1)
	cfg.BM25.B = s.floatOr(keyBM25B, cfg.BM25.B)
	if _, ok := s.config.Get(keyBM25Stopwords); ok {
		cfg.BM25.Stopwords = s.config.GetStringSlice(keyBM25Stopwords)
	}

	cfg.Fusion.LexicalWeight = s.floatOr(keyLexicalWeight, cfg.Fusion.LexicalWeight)
	cfg.Fusion.VectorWeight = s.floatOr(keyVectorWeight, cfg.Fusion.VectorWeight)

	cfg.Query.K = s.intOr(keyQueryK, cfg.Query.K)
	cfg.Query.OverFetch = s.intOr(keyOverFetch, cfg.Query.OverFetch)
	cfg.Query.ContextBudget = s.intOr(keyContextBudget, cfg.Query.ContextBudget)
	cfg.Query.OverlapTolerance = s.floatOr(keyOverlapTolerance, cfg.Query.OverlapTolerance)
	cfg.Query.LexicalFallback = s.boolOr(keyLexicalFallback, cfg.Query.LexicalFallback)
	cfg.Query.ExpandQueries = s.boolOr(keyExpandQueries, cfg.Query.ExpandQueries)
	cfg.Query.ExpansionCount = s.intOr(keyExpansionCount, cfg.Query.ExpansionCount)

	cfg.Dimensions = s.intOr(keyEmbeddingDimensions, 0)
	if cfg.Dimensions == 0 {
		if dims, ok := domain.EmbeddingDimensions()[s.config.GetString(keyEmbeddingModel)]; ok {
			cfg.Dimensions = dims
		}
	}
	if secs := s.intOr(keyEmbedTimeoutSecs, 0); secs > 0 {
		cfg.EmbedTimeout = time.Duration(secs) * time.Second
	}

	return cfg
}

// setAll writes a batch of keys, stopping at the first failure.
func (s *SettingsService) setAll(pairs map[string]any) error {
	for key, value := range pairs {
		if err := s.config.Set(key, value); err != nil {
			return fmt.Errorf("save setting %s: %w", key, err)
		}
	}
	return nil
}

// intOr returns the stored integer, or fallback when the key is
// absent. An explicitly stored zero wins over the fallback.
func (s *SettingsService) intOr(key string, fallback int) int {
	if _, ok := s.config.Get(key); ok {
		return s.config.GetInt(key)
	}
	return fallback
}

func (s *SettingsService) floatOr(key string, fallback float64) float64 {
	if _, ok := s.config.Get(key); ok {
		return s.config.GetFloat(key)
	}
	return fallback
}

func (s *SettingsService) boolOr(key string, fallback bool) bool {
	if _, ok := s.config.Get(key); ok {
		return s.config.GetBool(key)
	}
	return fallback
}
