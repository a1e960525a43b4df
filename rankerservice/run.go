// Package rankerservice wires configuration, dependencies and the HTTP
// server into a runnable feed-ranking service.
package rankerservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/solshare/feed-ranker/internal/analyzer"
	"github.com/solshare/feed-ranker/internal/api"
	"github.com/solshare/feed-ranker/internal/config"
	"github.com/solshare/feed-ranker/internal/embeddings/voyage"
	"github.com/solshare/feed-ranker/internal/factory"
	"github.com/solshare/feed-ranker/internal/health"
	"github.com/solshare/feed-ranker/internal/llm"
	"github.com/solshare/feed-ranker/internal/logger"
	"github.com/solshare/feed-ranker/internal/moderation"
	"github.com/solshare/feed-ranker/internal/postindex"
	"github.com/solshare/feed-ranker/internal/ranking"
	"github.com/solshare/feed-ranker/internal/scoring"
	"github.com/solshare/feed-ranker/internal/store/postgres"
)

const (
	healthInterval     = 30 * time.Second
	healthProbeTimeout = 5 * time.Second
)

// Run starts the feed ranker HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("feed-ranker")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Str("post_index_url", cfg.PostIndexURL).
		Str("environment", string(cfg.Environment)).
		Msg("Feed ranker starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	idx, embProvider, violations, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}

	builder := scoring.NewContextBuilder(embProvider, idx, log)
	if cfg.GeminiAPIKey != "" {
		builder = builder.WithProfileSummarizer(llm.NewGeminiClient(llm.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		}))
	}
	retriever := ranking.NewRetriever(builder, idx, cfg.VoyageDimensions, log)
	moderationClient := llm.NewModerationClient(llm.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModerationType,
	})

	var recorder moderation.ViolationRecorder
	if violations != nil {
		recorder = violations
	}
	moderator := moderation.NewModerator(moderationClient, recorder, log)
	contentAnalyzer := analyzer.New(embProvider, idx, cfg.IPFSGateway, log)

	router := api.NewRouter(api.Deps{
		Builder:        builder,
		Retriever:      retriever,
		Analyzer:       contentAnalyzer,
		Moderator:      moderator,
		InternalAPIKey: cfg.InternalAPIKey,
		ErrDetail:      !cfg.IsProduction(),
		Log:            log,
	})

	startHealthCheckers(ctx, log, idx, embProvider, violations)

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs required components and fails fast on missing deps.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (postindex.Index, *voyage.Provider, *postgres.ViolationStore, error) {
	idx, err := factory.NewPostIndex(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Post index adapter unavailable")
		return nil, nil, nil, err
	}

	embProvider := factory.NewEmbeddingProvider(ctx, cfg, log)
	if embProvider == nil {
		return nil, nil, nil, fmt.Errorf("embedding provider not configured")
	}

	store, err := factory.NewViolationStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Violation store unavailable")
		return nil, nil, nil, err
	}
	return idx, embProvider, store, nil
}

// startHealthCheckers starts component checkers and the service aggregator.
func startHealthCheckers(ctx context.Context, log zerolog.Logger, idx postindex.Index, embProvider *voyage.Provider, violations *postgres.ViolationStore) {
	var checkers []health.HealthChecker

	if pinger, ok := idx.(health.HealthPinger); ok {
		c := health.NewPingChecker("post-index", pinger, log, healthProbeTimeout)
		go c.Start(ctx, healthInterval)
		checkers = append(checkers, c)
	}
	embChecker := health.NewPingChecker("embedder", embProvider, log, healthProbeTimeout)
	go embChecker.Start(ctx, healthInterval)
	checkers = append(checkers, embChecker)

	if violations != nil {
		c := health.NewPingChecker("violation-store", violations, log, healthProbeTimeout)
		go c.Start(ctx, healthInterval)
		checkers = append(checkers, c)
	}

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, healthInterval)
	api.BindServiceHealth(svcHealth.IsHealthy)
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
