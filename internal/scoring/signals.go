package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/solshare/feed-ranker/internal/model"
)

// DefaultHalfLifeHours is the freshness half-life applied by the predictor.
const DefaultHalfLifeHours = 24.0

// normEpsilon guards cosine similarity against division instability.
const normEpsilon = 1e-12

// CosineSimilarity returns the cosine of the angle between a and b in [-1, 1].
// Vectors whose Euclidean norm is below 1e-12 yield exactly 0. Vectors of
// different lengths are rejected with a validation error.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: vector length mismatch %d != %d", model.ErrValidation, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	normA = math.Sqrt(normA)
	normB = math.Sqrt(normB)
	if normA < normEpsilon || normB < normEpsilon {
		return 0, nil
	}
	return dot / (normA * normB), nil
}

// FreshnessDecay returns exp(-0.693*age/halfLife), an exponential decay with
// true half-life semantics (0.693 ~= ln 2). Age 0 yields 1.0.
func FreshnessDecay(ageHours, halfLifeHours float64) float64 {
	return math.Exp(-0.693 * ageHours / halfLifeHours)
}

// TagOverlap returns the case-insensitive Jaccard index of the two tag sets.
// Either side empty yields 0: no preference data means no match, not full match.
func TagOverlap(userTags, candidateTags []string) float64 {
	if len(userTags) == 0 || len(candidateTags) == 0 {
		return 0
	}
	userSet := lowerSet(userTags)
	candSet := lowerSet(candidateTags)
	intersection := 0
	for t := range userSet {
		if _, ok := candSet[t]; ok {
			intersection++
		}
	}
	union := len(userSet) + len(candSet) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// PopularitySignal folds likes, comments and tips into a [0,1] signal.
// Log scaling keeps viral posts from dominating: a 1000-like post should not
// score 1000x a 1-like post.
func PopularitySignal(likes, comments int, tips float64) float64 {
	s := (math.Log1p(float64(likes))*0.4 + math.Log1p(float64(comments))*0.4 + math.Log1p(tips)*0.2) / 5.0
	return math.Min(1.0, s)
}

// Clamp bounds v to [low, high].
func Clamp(v, low, high float64) float64 {
	return math.Max(low, math.Min(high, v))
}

func clamp01(v float64) float64 { return Clamp(v, 0.0, 1.0) }

func lowerSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}
