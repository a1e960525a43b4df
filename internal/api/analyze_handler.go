package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/solshare/feed-ranker/internal/analyzer"
	"github.com/solshare/feed-ranker/internal/api/respond"
	"github.com/solshare/feed-ranker/internal/metrics"
	"github.com/solshare/feed-ranker/internal/model"
	"github.com/solshare/feed-ranker/internal/moderation"
)

// AnalyzeRequest asks for content analysis and indexing of one post.
type AnalyzeRequest struct {
	ContentURI    string `json:"content_uri"`
	Caption       string `json:"caption,omitempty"`
	PostID        string `json:"post_id,omitempty"`
	CreatorWallet string `json:"creator_wallet,omitempty"`
}

// AnalyzeResponse wraps the analysis result with timing.
type AnalyzeResponse struct {
	model.AnalyzeResult
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// ModerateRequest asks for a moderation verdict. The image is the primary
// input; caption is moderated alongside it when both are present.
type ModerateRequest struct {
	Wallet      string `json:"wallet"`
	ImageBase64 string `json:"image_base64,omitempty"`
	Caption     string `json:"caption,omitempty"`
}

// ContentHandler serves analysis and moderation endpoints.
type ContentHandler struct {
	analyzer  *analyzer.Analyzer
	moderator *moderation.Moderator
	errDetail bool
	log       zerolog.Logger
}

// NewContentHandler wires the handler.
func NewContentHandler(a *analyzer.Analyzer, m *moderation.Moderator, errDetail bool, log zerolog.Logger) *ContentHandler {
	return &ContentHandler{analyzer: a, moderator: m, errDetail: errDetail, log: log}
}

// Analyze handles POST /api/analyze.
func (h *ContentHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if req.ContentURI == "" && req.Caption == "" {
		respond.WriteBadRequest(w, "content_uri or caption is required")
		return
	}

	res, err := h.analyzer.Analyze(r.Context(), req.ContentURI, req.Caption, req.PostID, req.CreatorWallet)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		h.log.Error().Err(err).Str("postId", req.PostID).Msg("analysis failed")
		respond.WriteInternalError(w, h.detail(err, "Analysis service error"))
		return
	}
	if len(res.Embedding) == 0 {
		metrics.EmbeddingFailures.WithLabelValues("analyze").Inc()
	}

	respond.WriteJSON(w, http.StatusOK, AnalyzeResponse{
		AnalyzeResult:    *res,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})
}

// Moderate handles POST /api/moderate.
func (h *ContentHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	var req ModerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if req.ImageBase64 == "" && req.Caption == "" {
		respond.WriteBadRequest(w, "image_base64 or caption is required")
		return
	}

	res, err := h.moderator.Moderate(r.Context(), req.Wallet, req.ImageBase64, req.Caption)
	if err != nil {
		h.log.Error().Err(err).Str("wallet", req.Wallet).Msg("moderation failed")
		respond.WriteInternalError(w, h.detail(err, "Moderation service error"))
		return
	}
	metrics.ModerationVerdicts.WithLabelValues(res.Verdict).Inc()

	respond.WriteJSON(w, http.StatusOK, res)
}

func (h *ContentHandler) detail(err error, fallback string) string {
	if h.errDetail {
		return err.Error()
	}
	return fallback
}
