// Package ranking orchestrates two-tower retrieval: a user tower (taste
// context) queries the post tower (similarity index) for out-of-network
// candidates, which are then scored and ranked for the feed.
package ranking

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/solshare/feed-ranker/internal/model"
	"github.com/solshare/feed-ranker/internal/postindex"
	"github.com/solshare/feed-ranker/internal/scoring"
)

// RetrievalResult bundles the retrieved candidates with the user context
// that produced them, so callers can score without rebuilding the context.
type RetrievalResult struct {
	Candidates []model.CandidateFeatures `json:"candidates"`
	User       *model.UserContext        `json:"user"`
}

// Retriever pairs a context builder with a post index to produce
// out-of-network feed candidates.
type Retriever struct {
	builder *scoring.ContextBuilder
	index   postindex.Index
	dims    int
	log     zerolog.Logger
}

// NewRetriever constructs a Retriever. dims must match the embedding
// dimensionality the index was populated with.
func NewRetriever(builder *scoring.ContextBuilder, index postindex.Index, dims int, log zerolog.Logger) *Retriever {
	return &Retriever{builder: builder, index: index, dims: dims, log: log}
}

// RetrieveOutOfNetwork builds the caller's taste context and queries the
// index for similar posts the caller has not already seen. Cold-start users
// (no taste embedding) query with a zero vector, which the index answers
// with its default ordering.
func (r *Retriever) RetrieveOutOfNetwork(ctx context.Context, wallet string, likedPostIDs, followingWallets, excludeIDs []string, limit int) (*RetrievalResult, error) {
	user, err := r.builder.Build(ctx, wallet, likedPostIDs, followingWallets)
	if err != nil {
		return nil, fmt.Errorf("build user context: %w", err)
	}

	queryVec := user.TasteEmbedding
	if len(queryVec) == 0 {
		queryVec = make([]float32, r.dims)
	}

	// Only the caller-supplied set is excluded. Liked posts stay retrievable;
	// feed dedup is the caller's call, not ours.
	seen := make(map[string]struct{}, len(excludeIDs))
	exclude := make([]string, 0, len(excludeIDs))
	for _, id := range excludeIDs {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			exclude = append(exclude, id)
		}
	}

	recs, err := r.index.SearchSimilar(ctx, queryVec, limit, exclude)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	following := make(map[string]struct{}, len(followingWallets))
	for _, w := range followingWallets {
		following[w] = struct{}{}
	}

	candidates := make([]model.CandidateFeatures, 0, len(recs))
	for _, rec := range recs {
		_, follows := following[rec.CreatorWallet]
		candidates = append(candidates, model.CandidateFeatures{
			PostID:             rec.PostID,
			CreatorWallet:      rec.CreatorWallet,
			Embedding:          rec.Embedding,
			Description:        rec.Description,
			Tags:               rec.Tags,
			SceneType:          rec.SceneType,
			Mood:               rec.Mood,
			Likes:              rec.Likes,
			Comments:           rec.Comments,
			TipsReceived:       rec.TipsReceived,
			AgeHours:           rec.AgeHours,
			IsFollowingCreator: follows,
			Source:             "out_of_network",
		})
	}

	r.log.Debug().
		Str("wallet", wallet).
		Int("candidates", len(candidates)).
		Bool("coldStart", len(user.TasteEmbedding) == 0).
		Msg("retrieved out-of-network candidates")

	return &RetrievalResult{Candidates: candidates, User: user}, nil
}

// ScoreAndRank scores every candidate against the user, sorts descending by
// final score and truncates to limit. Ties keep their input order.
func ScoreAndRank(user *model.UserContext, candidates []model.CandidateFeatures, weights map[string]float64, limit int) []model.EngagementPrediction {
	preds := scoring.ScoreAll(user, candidates, weights)
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].FinalScore > preds[j].FinalScore
	})
	if limit > 0 && len(preds) > limit {
		preds = preds[:limit]
	}
	return preds
}
