package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/solshare/feed-ranker/internal/config"
	"github.com/solshare/feed-ranker/internal/postindex"
)

// NewPostIndex creates the post similarity index from config.
// Launches async bootstrap with short timeout; returns index immediately for
// fast startup.
func NewPostIndex(ctx context.Context, cfg *config.Config, log zerolog.Logger) (postindex.Index, error) {
	if cfg.PostIndexURL == "" {
		return nil, fmt.Errorf("post index URL not configured - required for service operation")
	}

	idx, err := postindex.NewWeaviateIndex(cfg.PostIndexURL)
	if err != nil {
		return nil, err
	}

	// Async bootstrap with configurable timeout; don't block startup
	go func() {
		bootstrapTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
		bootstrapCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
		defer cancel()

		if err := postindex.Bootstrap(bootstrapCtx, cfg.PostIndexURL); err != nil {
			log.Warn().Err(err).Str("url", cfg.PostIndexURL).Msg("post index bootstrap failed")
		} else {
			log.Debug().Str("url", cfg.PostIndexURL).Msg("post index bootstrap completed")
		}
	}()

	return idx, nil
}
