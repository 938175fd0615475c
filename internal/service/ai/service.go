package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zhouzirui/assistentes/backend/internal/config"
)

// NewGenerator builds the configured provider, instrumented per attempt and
// wrapped in the retry policy.
func NewGenerator(ctx context.Context, cfg config.AIConfig, httpClient *http.Client) (Generator, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("credentials missing for provider %q", cfg.Provider)
	}

	var gen Generator
	switch cfg.Provider {
	case config.ProviderGemini:
		geminiGen, err := NewGeminiClient(ctx, GeminiConfig{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			BaseURL: cfg.Gemini.BaseURL,
		}, httpClient)
		if err != nil {
			return nil, err
		}
		gen = geminiGen

	case config.ProviderArk:
		chatModel, err := cfg.Ark.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		chainGen, err := NewChainGenerator(ctx, chatModel)
		if err != nil {
			return nil, err
		}
		gen = chainGen

	case config.ProviderOpenAI:
		gen = NewOpenAIGenerator(OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		})

	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}

	gen = Instrument(gen, string(cfg.Provider))
	return WithRetry(gen, RetryConfig{MaxRetries: cfg.MaxRetries, Base: cfg.RetryBase}), nil
}
