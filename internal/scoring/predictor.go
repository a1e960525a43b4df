package scoring

import (
	"github.com/solshare/feed-ranker/internal/model"
)

// neutralSimilarity is used when either side has no embedding. Absence of
// taste data must not be penalized as dissimilarity.
const neutralSimilarity = 0.5

// Predict computes multi-action engagement probabilities for one
// user/candidate pair. Pure and deterministic: identical inputs always yield
// identical outputs, and it is safe to call concurrently across candidates.
func Predict(user *model.UserContext, candidate *model.CandidateFeatures) model.EngagementPrediction {
	similarity := neutralSimilarity
	if len(user.TasteEmbedding) > 0 && len(candidate.Embedding) > 0 {
		if cos, err := CosineSimilarity(user.TasteEmbedding, candidate.Embedding); err == nil {
			// Negative similarity is "no signal", not a penalty.
			similarity = Clamp(cos, 0.0, 1.0)
		}
	}

	tagScore := TagOverlap(user.LikedTags, candidate.Tags)
	popularity := PopularitySignal(candidate.Likes, candidate.Comments, candidate.TipsReceived)
	freshness := FreshnessDecay(candidate.AgeHours, DefaultHalfLifeHours)
	inNetwork := 0.0
	if candidate.IsFollowingCreator {
		inNetwork = 1.0
	}

	scores := make(map[string]float64, len(Actions))

	// Like: heavily influenced by similarity and popularity.
	scores["like"] = clamp01(0.3*similarity + 0.25*tagScore + 0.2*popularity + 0.15*freshness + 0.1*inNetwork)

	// Comment: similarity plus engaging content.
	scores["comment"] = clamp01(0.35*similarity + 0.2*tagScore + 0.15*popularity + 0.15*freshness + 0.15*inNetwork)

	// Share: high bar, needs strong similarity and perceived quality.
	scores["share"] = clamp01(0.4*similarity + 0.2*tagScore + 0.25*popularity + 0.1*freshness + 0.05*inNetwork)

	// Save: like-shaped but less driven by popularity.
	scores["save"] = clamp01(0.4*similarity + 0.3*tagScore + 0.1*popularity + 0.1*freshness + 0.1*inNetwork)

	// Tip: highest bar, depends on an existing creator relationship.
	scores["tip"] = clamp01(0.25*similarity + 0.15*tagScore + 0.15*popularity + 0.05*freshness + 0.4*inNetwork)

	// Subscribe and follow hinge on the creator, not the individual post.
	// Both are hard-gated to zero when the user already follows the creator.
	subscribe := clamp01(0.2*similarity + 0.1*tagScore + 0.2*popularity + 0.0*freshness + 0.5*inNetwork)
	follow := clamp01(0.25*similarity + 0.15*tagScore + 0.25*popularity + 0.1*freshness + 0.25*inNetwork)
	if candidate.IsFollowingCreator {
		subscribe = 0
		follow = 0
	}
	scores["subscribe"] = subscribe
	scores["follow_creator"] = follow

	// Dwell: expected view time from similarity and content richness.
	scores["dwell"] = clamp01(0.35*similarity + 0.25*tagScore + 0.15*popularity + 0.15*freshness + 0.1*inNetwork)

	// Profile click: curiosity about the creator; reduced but not zeroed when
	// already following.
	profileClick := clamp01(0.2*similarity + 0.1*tagScore + 0.3*popularity + 0.1*freshness + 0.3*inNetwork)
	if candidate.IsFollowingCreator {
		profileClick *= 0.3
	}
	scores["profile_click"] = profileClick

	// Negative actions use inverted signals and are tuned to stay near zero
	// for well-matched content.
	scores["not_interested"] = clamp01(0.6*(1.0-similarity) + 0.2*(1.0-tagScore) + 0.1*(1.0-freshness) + 0.1*(1.0-inNetwork))
	scores["mute_creator"] = clamp01(0.1 * (1.0 - similarity) * (1.0 - inNetwork))
	scores["report"] = clamp01(0.02 * (1.0 - similarity))

	return model.EngagementPrediction{PostID: candidate.PostID, Scores: scores}
}

// WeightedScore reduces a multi-action prediction to one scalar:
// sum over actions of weight*score. A nil or empty weights map falls back to
// DefaultWeights; actions absent from a custom map contribute zero. The
// result is unclamped and can be negative when hostile actions dominate.
func WeightedScore(prediction model.EngagementPrediction, weights map[string]float64) float64 {
	w := weights
	if len(w) == 0 {
		w = DefaultWeights
	}
	total := 0.0
	for action, prob := range prediction.Scores {
		total += w[action] * prob
	}
	return total
}

// ScoreAll scores a batch of candidates for one user, returning one
// prediction per candidate in input order. Candidates are scored
// independently; nothing is dropped or reordered.
func ScoreAll(user *model.UserContext, candidates []model.CandidateFeatures, weights map[string]float64) []model.EngagementPrediction {
	predictions := make([]model.EngagementPrediction, 0, len(candidates))
	for i := range candidates {
		p := Predict(user, &candidates[i])
		p.FinalScore = WeightedScore(p, weights)
		predictions = append(predictions, p)
	}
	return predictions
}
