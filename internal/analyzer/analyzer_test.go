package analyzer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solshare/feed-ranker/internal/model"
)

const testCID = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

type fakeMultimodal struct {
	textVec  []float32
	imageVec []float32
	imageErr error
	textErr  error

	lastImage   []byte
	lastCaption string
}

func (f *fakeMultimodal) Embed(context.Context, string) ([]float32, error) {
	return f.textVec, f.textErr
}
func (f *fakeMultimodal) EmbedQuery(context.Context, string) ([]float32, error) {
	return f.textVec, f.textErr
}
func (f *fakeMultimodal) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = f.textVec
	}
	return out, f.textErr
}
func (f *fakeMultimodal) Dimensions() int { return len(f.imageVec) }
func (f *fakeMultimodal) EmbedImage(_ context.Context, image []byte, caption string) ([]float32, error) {
	f.lastImage = image
	f.lastCaption = caption
	return f.imageVec, f.imageErr
}

type captureIndex struct {
	upserted []model.PostRecord
	vectors  [][]float32
	err      error
}

func (c *captureIndex) SearchSimilar(context.Context, []float32, int, []string) ([]model.PostRecord, error) {
	return nil, nil
}
func (c *captureIndex) GetByIDs(context.Context, []string) ([]model.PostRecord, error) {
	return nil, nil
}
func (c *captureIndex) UpsertPost(_ context.Context, rec model.PostRecord, vec []float32) error {
	if c.err != nil {
		return c.err
	}
	c.upserted = append(c.upserted, rec)
	c.vectors = append(c.vectors, vec)
	return nil
}
func (c *captureIndex) DeletePost(context.Context, string) error { return nil }

func TestResolveContentURI(t *testing.T) {
	a := New(&fakeMultimodal{}, &captureIndex{}, "https://gateway.example.com/ipfs", zerolog.Nop())

	t.Run("ipfs scheme", func(t *testing.T) {
		got, err := a.ResolveContentURI("ipfs://" + testCID)
		require.NoError(t, err)
		assert.Equal(t, "https://gateway.example.com/ipfs/"+testCID, got)
	})

	t.Run("bare cid", func(t *testing.T) {
		got, err := a.ResolveContentURI(testCID)
		require.NoError(t, err)
		assert.Equal(t, "https://gateway.example.com/ipfs/"+testCID, got)
	})

	t.Run("invalid cid", func(t *testing.T) {
		_, err := a.ResolveContentURI("ipfs://notacid")
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("public url passes", func(t *testing.T) {
		got, err := a.ResolveContentURI("https://example.com/img.jpg")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/img.jpg", got)
	})

	t.Run("private url rejected", func(t *testing.T) {
		_, err := a.ResolveContentURI("http://169.254.169.254/latest/meta-data/")
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrValidation)
	})
}

func TestAnalyze_EmbedsAndUpserts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0})
	}))
	defer srv.Close()

	emb := &fakeMultimodal{imageVec: []float32{0.1, 0.2}}
	idx := &captureIndex{}
	a := New(emb, idx, "https://gateway.example.com/ipfs", zerolog.Nop())
	a.allowPrivate = true

	res, err := a.Analyze(context.Background(), srv.URL+"/img.jpg", "a beach sunset", "post-1", "0xCreator")
	require.NoError(t, err)

	assert.Equal(t, "a beach sunset", res.Description)
	assert.Equal(t, "a beach sunset", res.AltText)
	assert.Equal(t, "unknown", res.SceneType)
	assert.Equal(t, "neutral", res.Mood)
	assert.Equal(t, emb.imageVec, res.Embedding)
	assert.Equal(t, "a beach sunset", emb.lastCaption)

	require.Len(t, idx.upserted, 1)
	assert.Equal(t, "post-1", idx.upserted[0].PostID)
	assert.Equal(t, "0xCreator", idx.upserted[0].CreatorWallet)
	assert.Equal(t, emb.imageVec, idx.vectors[0])
}

func TestAnalyze_FallsBackToTextEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	emb := &fakeMultimodal{textVec: []float32{0.5, 0.5}, imageErr: errors.New("bad image")}
	a := New(emb, &captureIndex{}, "https://gateway.example.com/ipfs", zerolog.Nop())
	a.allowPrivate = true

	res, err := a.Analyze(context.Background(), srv.URL+"/broken.jpg", "caption text", "", "")
	require.NoError(t, err)
	assert.Equal(t, emb.textVec, res.Embedding)
}

func TestAnalyze_TextOnlyPost(t *testing.T) {
	emb := &fakeMultimodal{textVec: []float32{1, 0}}
	a := New(emb, &captureIndex{}, "https://gateway.example.com/ipfs", zerolog.Nop())

	res, err := a.Analyze(context.Background(), "", "just words", "", "")
	require.NoError(t, err)
	assert.Equal(t, emb.textVec, res.Embedding)
}

func TestAnalyze_NoContentNoCaption(t *testing.T) {
	a := New(&fakeMultimodal{}, &captureIndex{}, "https://gateway.example.com/ipfs", zerolog.Nop())

	res, err := a.Analyze(context.Background(), "", "", "", "")
	require.NoError(t, err)
	assert.Empty(t, res.Embedding)
	assert.Equal(t, "Image content", res.Description)
	assert.Equal(t, "Image", res.AltText)
}

func TestAnalyze_SSRFRejectionIsHard(t *testing.T) {
	emb := &fakeMultimodal{textVec: []float32{1}}
	a := New(emb, &captureIndex{}, "https://gateway.example.com/ipfs", zerolog.Nop())

	_, err := a.Analyze(context.Background(), "http://127.0.0.1/internal", "caption", "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestAnalyze_IndexFailureIsSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("imagebytes"))
	}))
	defer srv.Close()

	emb := &fakeMultimodal{imageVec: []float32{0.3}}
	idx := &captureIndex{err: errors.New("index down")}
	a := New(emb, idx, "https://gateway.example.com/ipfs", zerolog.Nop())
	a.allowPrivate = true

	res, err := a.Analyze(context.Background(), srv.URL+"/img.jpg", "c", "post-2", "0xC")
	require.NoError(t, err)
	assert.Equal(t, emb.imageVec, res.Embedding)
}
