package factory

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/solshare/feed-ranker/internal/config"
	storepg "github.com/solshare/feed-ranker/internal/store/postgres"
)

// NewViolationStore returns a Postgres-backed violation store, or nil when no
// DSN is configured (violation persistence disabled).
// Launches async bootstrap check; returns store immediately for fast startup.
func NewViolationStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storepg.ViolationStore, error) {
	dsn := cfg.PostgresDSN
	if dsn == "" {
		log.Info().Msg("no postgres DSN configured; violation persistence disabled")
		return nil, nil
	}

	// Open connection synchronously since health checks need it immediately
	db, err := storepg.Open(dsn)
	if err != nil {
		return nil, err
	}

	// Async bootstrap check with configurable timeout; don't block startup
	go func() {
		bootstrapTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
		bootstrapCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
		defer cancel()

		if err := storepg.Bootstrap(bootstrapCtx, dsn); err != nil {
			log.Warn().Err(err).Msg("violation store bootstrap check failed")
		} else {
			log.Debug().Msg("violation store bootstrap check completed")
		}
	}()

	return storepg.NewViolationStore(db), nil
}
