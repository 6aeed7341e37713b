package service

import (
	"context"
	"errors"
	"fmt"

	"glaw-backend/config"

	"github.com/sashabaranov/go-openai"
)

// Providers holds the embedder and generator of the configured LLM provider.
// Both share one underlying client.
type Providers struct {
	Embedder  Embedder
	Generator Generator
	close     func() error
}

// NewProviders creates the model clients selected by cfg.LLMProvider
func NewProviders(ctx context.Context, cfg *config.Config) (*Providers, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY not set")
		}
		client := openai.NewClient(cfg.OpenAIAPIKey)
		return &Providers{
			Embedder:  NewOpenAIEmbedder(client, cfg.EmbeddingModel, cfg.EmbeddingDimension),
			Generator: NewOpenAIGenerator(client, cfg.GenerationModel),
		}, nil
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		return &Providers{
			Embedder:  NewGeminiEmbedder(client, cfg.EmbeddingModel),
			Generator: NewGeminiGenerator(client, cfg.GenerationModel),
			close:     client.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}
}

// Close releases the underlying client
func (p *Providers) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}
