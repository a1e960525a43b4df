package voyage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		APIKey:          "test-key",
		BaseURL:         srv.URL,
		TextModel:       "voyage-4",
		MultimodalModel: "voyage-multimodal-3.5",
		RerankModel:     "rerank-2.5",
		Dimensions:      4,
	}, zerolog.Nop())
}

func TestEmbedQueryUsesQueryInputType(t *testing.T) {
	var got multimodalRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/multimodalembeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"embedding": []float64{0.1, 0.2, 0.3, 0.4}}},
		})
	})

	vec, err := p.EmbedQuery(context.Background(), "sunset beach")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
	assert.Equal(t, "query", got.InputType)
	require.Len(t, got.Inputs, 1)
	assert.Equal(t, "sunset beach", got.Inputs[0].Content[0].Text)
}

func TestEmbedDocumentInputType(t *testing.T) {
	var got multimodalRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"embedding": []float64{1}}},
		})
	})

	_, err := p.Embed(context.Background(), "a post description")
	require.NoError(t, err)
	assert.Equal(t, "document", got.InputType)
}

func TestEmbedErrorStatusSurfaces(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid api key"}`, http.StatusUnauthorized)
	})

	_, err := p.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestEmbedBatch(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/embeddings", r.URL.Path)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"one", "two"}, req.Input)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float64{1, 0}},
				{"embedding": []float64{0, 1}},
			},
		})
	})

	vecs, err := p.EmbedBatch(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{1, 0}, vecs[0])
}

func TestRerankFallsBackToOriginalOrder(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	})

	indices, err := p.Rerank(context.Background(), "query", []string{"a", "b", "c"}, 2)
	require.NoError(t, err, "rerank failure must degrade, not error")
	assert.Equal(t, []int{0, 1}, indices)
}

func TestRerankReturnsProviderOrder(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/rerank", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"index": 2, "relevance_score": 0.9},
				{"index": 0, "relevance_score": 0.4},
			},
		})
	})

	indices, err := p.Rerank(context.Background(), "query", []string{"a", "b", "c"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, indices)
}
