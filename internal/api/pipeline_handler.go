package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/solshare/feed-ranker/internal/api/respond"
	"github.com/solshare/feed-ranker/internal/api/validate"
	"github.com/solshare/feed-ranker/internal/metrics"
	"github.com/solshare/feed-ranker/internal/model"
	"github.com/solshare/feed-ranker/internal/ranking"
	"github.com/solshare/feed-ranker/internal/scoring"
)

// defaultRetrieveLimit applies when a retrieve request omits the limit.
const defaultRetrieveLimit = 100

// ScoreRequest asks for engagement predictions over a candidate batch.
type ScoreRequest struct {
	UserWallet       string                    `json:"user_wallet"`
	LikedPostIDs     []string                  `json:"liked_post_ids"`
	FollowingWallets []string                  `json:"following_wallets"`
	Candidates       []model.CandidateFeatures `json:"candidates"`
	Weights          map[string]float64        `json:"weights,omitempty"`
}

// ScoreResponse carries one prediction per input candidate, input order.
type ScoreResponse struct {
	Predictions      []model.EngagementPrediction `json:"predictions"`
	ProcessingTimeMs int64                        `json:"processing_time_ms"`
}

// RetrieveRequest asks for ranked out-of-network candidates.
type RetrieveRequest struct {
	UserWallet       string             `json:"user_wallet"`
	LikedPostIDs     []string           `json:"liked_post_ids"`
	FollowingWallets []string           `json:"following_wallets"`
	ExcludeIDs       []string           `json:"exclude_ids"`
	Limit            int                `json:"limit"`
	Weights          map[string]float64 `json:"weights,omitempty"`
}

// RetrievedCandidate is one ranked result with its prediction attached.
type RetrievedCandidate struct {
	PostID        string             `json:"post_id"`
	CreatorWallet string             `json:"creator_wallet"`
	Description   string             `json:"description,omitempty"`
	Tags          []string           `json:"tags"`
	SceneType     string             `json:"scene_type,omitempty"`
	Mood          string             `json:"mood,omitempty"`
	Source        string             `json:"source"`
	Scores        map[string]float64 `json:"scores,omitempty"`
	FinalScore    float64            `json:"final_score"`
}

// RetrieveResponse carries ranked candidates plus the taste profile used.
type RetrieveResponse struct {
	Candidates       []RetrievedCandidate `json:"candidates"`
	TasteProfile     string               `json:"taste_profile,omitempty"`
	ProcessingTimeMs int64                `json:"processing_time_ms"`
}

// PipelineInfoResponse reports the action set and default weights.
type PipelineInfoResponse struct {
	Actions        []string           `json:"actions"`
	DefaultWeights map[string]float64 `json:"default_weights"`
}

// PipelineHandler serves the backend pipeline's scoring and retrieval calls.
type PipelineHandler struct {
	builder   *scoring.ContextBuilder
	retriever *ranking.Retriever
	// errDetail controls whether failures surface internal error text.
	// Off in production.
	errDetail bool
	log       zerolog.Logger
}

// NewPipelineHandler wires the handler. errDetail should be false in
// production so internal error text never reaches callers.
func NewPipelineHandler(builder *scoring.ContextBuilder, retriever *ranking.Retriever, errDetail bool, log zerolog.Logger) *PipelineHandler {
	return &PipelineHandler{builder: builder, retriever: retriever, errDetail: errDetail, log: log}
}

// Score handles POST /api/pipeline/score.
func (h *PipelineHandler) Score(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := validate.Wallet(req.UserWallet); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.CandidateCount(len(req.Candidates)); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.builder.Build(r.Context(), req.UserWallet, req.LikedPostIDs, req.FollowingWallets)
	if err != nil {
		h.log.Error().Err(err).Str("wallet", req.UserWallet).Msg("scoring failed")
		respond.WriteInternalError(w, h.errorDetail(err, "Scoring service error"))
		return
	}

	predictions := scoring.ScoreAll(user, req.Candidates, req.Weights)
	metrics.CandidatesScored.Add(float64(len(predictions)))

	respond.WriteJSON(w, http.StatusOK, ScoreResponse{
		Predictions:      predictions,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})
}

// Retrieve handles POST /api/pipeline/retrieve.
func (h *PipelineHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req RetrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := validate.Wallet(req.UserWallet); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Limit(req.Limit); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultRetrieveLimit
	}

	result, err := h.retriever.RetrieveOutOfNetwork(r.Context(), req.UserWallet, req.LikedPostIDs, req.FollowingWallets, req.ExcludeIDs, limit)
	if err != nil {
		h.log.Error().Err(err).Str("wallet", req.UserWallet).Msg("retrieval failed")
		respond.WriteInternalError(w, h.errorDetail(err, "Retrieval service error"))
		return
	}

	predictions := ranking.ScoreAndRank(result.User, result.Candidates, req.Weights, limit)
	metrics.CandidatesScored.Add(float64(len(result.Candidates)))
	metrics.RetrievalCandidates.Observe(float64(len(result.Candidates)))

	byID := make(map[string]model.CandidateFeatures, len(result.Candidates))
	for _, c := range result.Candidates {
		byID[c.PostID] = c
	}

	out := make([]RetrievedCandidate, 0, len(predictions))
	for _, p := range predictions {
		c := byID[p.PostID]
		tags := c.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, RetrievedCandidate{
			PostID:        p.PostID,
			CreatorWallet: c.CreatorWallet,
			Description:   c.Description,
			Tags:          tags,
			SceneType:     c.SceneType,
			Mood:          c.Mood,
			Source:        c.Source,
			Scores:        p.Scores,
			FinalScore:    p.FinalScore,
		})
	}

	respond.WriteJSON(w, http.StatusOK, RetrieveResponse{
		Candidates:       out,
		TasteProfile:     result.User.TasteProfile,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})
}

// Info handles GET /api/pipeline/info.
func (h *PipelineHandler) Info(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, PipelineInfoResponse{
		Actions:        scoring.Actions,
		DefaultWeights: scoring.DefaultWeights,
	})
}

func (h *PipelineHandler) errorDetail(err error, fallback string) string {
	if h.errDetail {
		return err.Error()
	}
	return fallback
}
