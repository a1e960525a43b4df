// Package postindex provides the similarity index over post embeddings.
// The index is an external black box to the ranking core: it stores content
// vectors with post metadata and answers nearest-neighbour queries.
package postindex

import (
	"context"

	"github.com/solshare/feed-ranker/internal/model"
)

// Index provides vector search, lookup and maintenance over posts.
type Index interface {
	// SearchSimilar returns up to limit posts nearest to vec, excluding the
	// given post IDs (compared in the index's native identifier form).
	// A zero vector yields the index's default ordering (recency) instead of
	// failing, which is the cold-start path.
	SearchSimilar(ctx context.Context, vec []float32, limit int, excludeIDs []string) ([]model.PostRecord, error)

	// GetByIDs retrieves posts with their vectors for taste extraction.
	// Missing IDs are skipped, not errors.
	GetByIDs(ctx context.Context, postIDs []string) ([]model.PostRecord, error)

	// UpsertPost indexes or updates one post embedding with its payload.
	UpsertPost(ctx context.Context, rec model.PostRecord, vec []float32) error

	// DeletePost removes a post from the index. Best-effort; not-found is
	// ignored.
	DeletePost(ctx context.Context, postID string) error
}

// HealthPinger is optionally implemented by an Index to expose specialized
// health check logic. Returns nil when healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
