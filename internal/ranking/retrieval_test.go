package ranking

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solshare/feed-ranker/internal/model"
	"github.com/solshare/feed-ranker/internal/scoring"
)

type fakeIndex struct {
	posts      []model.PostRecord
	lastVector []float32
	lastLimit  int
	lastExcl   []string
}

func (f *fakeIndex) SearchSimilar(_ context.Context, vec []float32, limit int, excludeIDs []string) ([]model.PostRecord, error) {
	f.lastVector = vec
	f.lastLimit = limit
	f.lastExcl = excludeIDs

	excl := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excl[id] = struct{}{}
	}
	out := make([]model.PostRecord, 0, limit)
	for _, p := range f.posts {
		if _, skip := excl[p.PostID]; skip {
			continue
		}
		out = append(out, p)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeIndex) GetByIDs(_ context.Context, postIDs []string) ([]model.PostRecord, error) {
	want := make(map[string]struct{}, len(postIDs))
	for _, id := range postIDs {
		want[id] = struct{}{}
	}
	var out []model.PostRecord
	for _, p := range f.posts {
		if _, ok := want[p.PostID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeIndex) UpsertPost(context.Context, model.PostRecord, []float32) error { return nil }
func (f *fakeIndex) DeletePost(context.Context, string) error                     { return nil }

type fakeEmbedder struct {
	vec []float32
}

func (f *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return f.vec, nil
}

func testRetriever(idx *fakeIndex, emb *fakeEmbedder) *Retriever {
	builder := scoring.NewContextBuilder(emb, idx, zerolog.Nop())
	return NewRetriever(builder, idx, 4, zerolog.Nop())
}

func TestRetrieveOutOfNetwork_ColdStart(t *testing.T) {
	idx := &fakeIndex{posts: []model.PostRecord{
		{PostID: "p1", CreatorWallet: "c1", Description: "fresh post"},
		{PostID: "p2", CreatorWallet: "c2"},
	}}
	r := testRetriever(idx, &fakeEmbedder{})

	res, err := r.RetrieveOutOfNetwork(context.Background(), "0xUser", nil, nil, nil, 10)
	require.NoError(t, err)

	// No liked history: the index is queried with a zero vector.
	assert.Equal(t, make([]float32, 4), idx.lastVector)
	assert.Empty(t, res.User.TasteEmbedding)
	require.Len(t, res.Candidates, 2)
	for _, c := range res.Candidates {
		assert.Equal(t, "out_of_network", c.Source)
	}
}

func TestRetrieveOutOfNetwork_UsesTasteEmbedding(t *testing.T) {
	idx := &fakeIndex{posts: []model.PostRecord{
		{PostID: "liked1", Description: "sunset beach", Tags: []string{"beach"}},
		{PostID: "p2", CreatorWallet: "c2"},
	}}
	emb := &fakeEmbedder{vec: []float32{0.1, 0.2, 0.3, 0.4}}
	r := testRetriever(idx, emb)

	res, err := r.RetrieveOutOfNetwork(context.Background(), "0xUser", []string{"liked1"}, nil, nil, 10)
	require.NoError(t, err)

	assert.Equal(t, emb.vec, idx.lastVector)
	assert.Equal(t, emb.vec, res.User.TasteEmbedding)
}

func TestRetrieveOutOfNetwork_ExcludesOnlyCallerSet(t *testing.T) {
	idx := &fakeIndex{posts: []model.PostRecord{
		{PostID: "liked1", Description: "sunset"},
		{PostID: "seen1"},
		{PostID: "p3", CreatorWallet: "c3"},
	}}
	r := testRetriever(idx, &fakeEmbedder{vec: []float32{1, 0, 0, 0}})

	res, err := r.RetrieveOutOfNetwork(context.Background(), "0xUser", []string{"liked1"}, nil, []string{"seen1", "seen1"}, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"seen1"}, idx.lastExcl, "liked posts are not excluded, duplicates collapse")
	ids := candidateIDs(res.Candidates)
	assert.NotContains(t, ids, "seen1")
	assert.Contains(t, ids, "p3")
	assert.Contains(t, ids, "liked1")
}

func TestRetrieveOutOfNetwork_LikedPostsStayRetrievable(t *testing.T) {
	idx := &fakeIndex{posts: []model.PostRecord{
		{PostID: "liked1", Description: "sunset"},
		{PostID: "p2", CreatorWallet: "c2"},
	}}
	r := testRetriever(idx, &fakeEmbedder{vec: []float32{1, 0, 0, 0}})

	res, err := r.RetrieveOutOfNetwork(context.Background(), "0xUser", []string{"liked1"}, nil, nil, 10)
	require.NoError(t, err)

	assert.Empty(t, idx.lastExcl)
	assert.Contains(t, candidateIDs(res.Candidates), "liked1")
}

func candidateIDs(candidates []model.CandidateFeatures) []string {
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.PostID)
	}
	return ids
}

func TestRetrieveOutOfNetwork_MarksFollowedCreators(t *testing.T) {
	idx := &fakeIndex{posts: []model.PostRecord{
		{PostID: "p1", CreatorWallet: "0xFollowed"},
		{PostID: "p2", CreatorWallet: "0xStranger"},
	}}
	r := testRetriever(idx, &fakeEmbedder{})

	res, err := r.RetrieveOutOfNetwork(context.Background(), "0xUser", nil, []string{"0xFollowed"}, nil, 10)
	require.NoError(t, err)

	byID := map[string]model.CandidateFeatures{}
	for _, c := range res.Candidates {
		byID[c.PostID] = c
	}
	assert.True(t, byID["p1"].IsFollowingCreator)
	assert.False(t, byID["p2"].IsFollowingCreator)
}

func TestScoreAndRank_OrdersByFinalScore(t *testing.T) {
	user := &model.UserContext{
		Wallet:         "0xUser",
		TasteEmbedding: []float32{1, 0, 0, 0},
		LikedTags:      []string{"beach"},
	}
	candidates := []model.CandidateFeatures{
		{PostID: "opposite", Embedding: []float32{-1, 0, 0, 0}, AgeHours: 100},
		{PostID: "aligned", Embedding: []float32{1, 0, 0, 0}, Tags: []string{"beach"}, Likes: 500, AgeHours: 1},
		{PostID: "middling", Embedding: []float32{0, 1, 0, 0}, AgeHours: 48},
	}

	ranked := ScoreAndRank(user, candidates, nil, 10)
	require.Len(t, ranked, 3)
	assert.Equal(t, "aligned", ranked[0].PostID)
	assert.Equal(t, "opposite", ranked[2].PostID)
	assert.GreaterOrEqual(t, ranked[0].FinalScore, ranked[1].FinalScore)
	assert.GreaterOrEqual(t, ranked[1].FinalScore, ranked[2].FinalScore)
}

func TestScoreAndRank_TruncatesToLimit(t *testing.T) {
	user := &model.UserContext{Wallet: "0xUser"}
	candidates := make([]model.CandidateFeatures, 20)
	for i := range candidates {
		candidates[i] = model.CandidateFeatures{PostID: "p", AgeHours: float64(i)}
	}

	ranked := ScoreAndRank(user, candidates, nil, 5)
	assert.Len(t, ranked, 5)
	// Fresher posts score higher, so the freshest lead after sorting.
	assert.Equal(t, ranked[0].FinalScore, highestScore(ranked))
}

func highestScore(preds []model.EngagementPrediction) float64 {
	best := preds[0].FinalScore
	for _, p := range preds {
		if p.FinalScore > best {
			best = p.FinalScore
		}
	}
	return best
}
