// Package embeddings defines the capability contracts for vector embedding
// backends. Providers map text (and optionally images) into a fixed-length
// vector space shared with indexed post content.
package embeddings

import "context"

// Provider produces vector representations for text.
//
// Embed encodes document-side content; EmbedQuery encodes query-side text.
// The two encodings may differ but must live in the same vector space.
// Failure must be catchable by callers and treated as "no embedding
// available", never fatal to the request.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// MultimodalProvider additionally embeds image bytes with an optional
// caption into the same space as text embeddings.
type MultimodalProvider interface {
	Provider
	EmbedImage(ctx context.Context, image []byte, caption string) ([]float32, error)
}

// Reranker reorders documents by relevance to a query, returning indices
// into the input slice, most relevant first.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string, topK int) ([]int, error)
}

// HealthPinger is optionally implemented by a provider to expose a
// health-check probe. Returns nil when healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
