package factory

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/solshare/feed-ranker/internal/config"
	"github.com/solshare/feed-ranker/internal/embeddings/voyage"
)

// NewEmbeddingProvider creates the Voyage embedding provider from config.
// Launches optional async warmup; returns provider immediately for fast startup.
func NewEmbeddingProvider(ctx context.Context, cfg *config.Config, log zerolog.Logger) *voyage.Provider {
	provider := voyage.New(voyage.Config{
		APIKey:          cfg.VoyageAPIKey,
		TextModel:       cfg.VoyageTextModel,
		MultimodalModel: cfg.VoyageMultimodal,
		RerankModel:     cfg.VoyageRerankModel,
		Dimensions:      cfg.VoyageDimensions,
	}, log)

	// Optional async warmup with configurable timeout; don't block startup
	go func() {
		warmupTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
		warmupCtx, cancel := context.WithTimeout(ctx, warmupTimeout)
		defer cancel()

		if vec, err := provider.Embed(warmupCtx, "factory-warmup-check"); err != nil || len(vec) == 0 {
			log.Warn().Err(err).Int("vec_len", len(vec)).
				Str("model", cfg.VoyageTextModel).
				Msg("embedding provider warmup failed")
		} else {
			log.Debug().Str("model", cfg.VoyageTextModel).
				Msg("embedding provider warmup completed")
		}
	}()

	return provider
}
