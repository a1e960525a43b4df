package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/solshare/feed-ranker/internal/analyzer"
	"github.com/solshare/feed-ranker/internal/api/recovery"
	"github.com/solshare/feed-ranker/internal/moderation"
	"github.com/solshare/feed-ranker/internal/ranking"
	"github.com/solshare/feed-ranker/internal/scoring"
)

// Deps collects everything the router's handlers need.
type Deps struct {
	Builder   *scoring.ContextBuilder
	Retriever *ranking.Retriever
	Analyzer  *analyzer.Analyzer
	Moderator *moderation.Moderator

	// InternalAPIKey guards non-health routes; empty disables auth.
	InternalAPIKey string
	// ErrDetail surfaces internal error text to callers. Off in production.
	ErrDetail bool

	Log zerolog.Logger
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)
	router.Use(MetricsMiddleware)

	healthHandler := NewHealthHandler()
	pipelineHandler := NewPipelineHandler(d.Builder, d.Retriever, d.ErrDetail, d.Log)
	contentHandler := NewContentHandler(d.Analyzer, d.Moderator, d.ErrDetail, d.Log)

	// Unauthenticated operational endpoints
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Backend-facing endpoints behind internal auth
	authed := router.PathPrefix("/api").Subrouter()
	authed.Use(AuthMiddleware(d.InternalAPIKey))

	authed.HandleFunc("/pipeline/score", pipelineHandler.Score).Methods("POST")
	authed.HandleFunc("/pipeline/retrieve", pipelineHandler.Retrieve).Methods("POST")
	authed.HandleFunc("/pipeline/info", pipelineHandler.Info).Methods("GET")

	authed.HandleFunc("/analyze", contentHandler.Analyze).Methods("POST")
	authed.HandleFunc("/moderate", contentHandler.Moderate).Methods("POST")

	return router
}
