package cli

import (
	"fmt"

	"visionrag/config"
	"visionrag/internal/adapter/embedding"
	"visionrag/internal/port"
)

// newTextEmbedder builds the configured text embedding gateway, optionally
// wrapped in the bbolt cache. The returned closer is nil when there is
// nothing to close.
func newTextEmbedder(cfg *config.Config, withCache bool) (port.TextEmbedder, func() error, error) {
	var inner port.TextEmbedder
	switch cfg.Embed.Provider {
	case "openai":
		client, err := embedding.NewClient(cfg.Embed.APIKeyEnv, cfg.Embed.TextModel, cfg.Embed.BaseURL, cfg.Embed.DimText, cfg.Embed.BatchSize)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create text embedder: %w", err)
		}
		inner = client
	case "mock":
		inner = embedding.NewMockTextEmbedder(cfg.Embed.DimText)
	default:
		return nil, nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embed.Provider)
	}

	if !withCache || !cfg.Embed.CacheEnabled {
		return inner, nil, nil
	}

	cached, err := embedding.NewCachedTextEmbedder(cfg.EmbedCachePath(), inner)
	if err != nil {
		return nil, nil, err
	}
	return cached, cached.Close, nil
}

func newImageEmbedder(cfg *config.Config) (port.ImageEmbedder, error) {
	switch cfg.Embed.Provider {
	case "openai":
		return embedding.NewClient(cfg.Embed.APIKeyEnv, cfg.Embed.ImageModel, cfg.Embed.BaseURL, cfg.Embed.DimImage, cfg.Embed.BatchSize)
	case "mock":
		return embedding.NewMockImageEmbedder(cfg.Embed.DimImage), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embed.Provider)
	}
}
