package postindex

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	gql "github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"

	"github.com/solshare/feed-ranker/internal/model"
)

// postClass is the Weaviate class holding indexed posts.
const postClass = "Post"

// weavIndex implements Index using the Weaviate Go client.
type weavIndex struct {
	client  *weaviate.Client
	baseURL string // host:port without scheme
}

// NewWeaviateIndex constructs an Index backed by Weaviate at baseURL.
// baseURL should be host:port (without scheme), e.g. "localhost:8081".
func NewWeaviateIndex(baseURL string) (Index, error) {
	cfg := weaviate.Config{Scheme: "http", Host: baseURL}
	cl, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &weavIndex{client: cl, baseURL: baseURL}, nil
}

func (w *weavIndex) SearchSimilar(ctx context.Context, vec []float32, limit int, excludeIDs []string) ([]model.PostRecord, error) {
	if w == nil || w.client == nil {
		return nil, fmt.Errorf("weaviate client not initialised")
	}

	// Overfetch so post-filtering of excluded IDs can still fill the limit.
	fetch := limit + len(excludeIDs)

	// certainty is only valid on vector queries; the recency path omits it.
	additional := gql.Field{Name: "_additional", Fields: []gql.Field{{Name: "id"}, {Name: "vector"}}}
	coldStart := isZeroVector(vec)
	if !coldStart {
		additional.Fields = append(additional.Fields, gql.Field{Name: "certainty"})
	}

	fields := []gql.Field{
		{Name: "postId"},
		{Name: "creatorWallet"},
		{Name: "description"},
		{Name: "tags"},
		{Name: "sceneType"},
		{Name: "mood"},
		{Name: "likes"},
		{Name: "comments"},
		{Name: "tipsReceived"},
		{Name: "createdAt"},
		additional,
	}

	req := w.client.GraphQL().Get().
		WithClassName(postClass).
		WithLimit(fetch).
		WithFields(fields...)

	if coldStart {
		// Cold start: no taste signal, fall back to recency ordering.
		req = req.WithSort(gql.Sort{Path: []string{"createdAt"}, Order: gql.Desc})
	} else {
		nv := w.client.GraphQL().NearVectorArgBuilder().WithVector(vec)
		req = req.WithNearVector(nv)
	}

	resp, err := req.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrIndexUnavailable, err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql: %s", formatGraphQLErrors(resp.Errors))
	}

	getData, ok := resp.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	rawVal := getData[postClass]
	if rawVal == nil {
		return []model.PostRecord{}, nil
	}
	raw, ok := rawVal.([]interface{})
	if !ok {
		return nil, nil
	}

	exclude := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		exclude[ToNativeID(id)] = struct{}{}
	}

	out := make([]model.PostRecord, 0, limit)
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		nativeID := ""
		score := 0.0
		var vector []float32
		if add, ok := m["_additional"].(map[string]interface{}); ok {
			nativeID = asString(add["id"])
			score = asFloat(add["certainty"])
			vector = asVector(add["vector"])
		}
		if _, skip := exclude[nativeID]; skip {
			continue
		}
		rec := recordFromProps(m)
		if rec.PostID == "" && nativeID != "" {
			rec.PostID = FromNativeID(nativeID)
		}
		rec.Embedding = vector
		rec.Score = score
		out = append(out, rec)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (w *weavIndex) GetByIDs(ctx context.Context, postIDs []string) ([]model.PostRecord, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	out := make([]model.PostRecord, 0, len(postIDs))
	for _, id := range postIDs {
		native := ToNativeID(id)
		objs, err := w.client.Data().ObjectsGetter().
			WithClassName(postClass).
			WithID(native).
			WithVector().
			Do(ctx)
		if err != nil {
			// Unknown IDs are expected (deleted or never-indexed posts).
			log.Debug().Err(err).Str("postId", id).Msg("post not found in index")
			continue
		}
		for _, obj := range objs {
			props, _ := obj.Properties.(map[string]interface{})
			rec := recordFromProps(props)
			if rec.PostID == "" {
				rec.PostID = FromNativeID(obj.ID.String())
			}
			rec.Embedding = []float32(obj.Vector)
			out = append(out, rec)
		}
	}
	return out, nil
}

func (w *weavIndex) UpsertPost(ctx context.Context, rec model.PostRecord, vec []float32) error {
	if w == nil || w.client == nil {
		return fmt.Errorf("weaviate client not initialised")
	}
	props := map[string]interface{}{
		"postId":        rec.PostID,
		"creatorWallet": rec.CreatorWallet,
		"description":   rec.Description,
		"tags":          rec.Tags,
		"sceneType":     rec.SceneType,
		"mood":          rec.Mood,
		"likes":         rec.Likes,
		"comments":      rec.Comments,
		"tipsReceived":  rec.TipsReceived,
		"createdAt":     time.Now().UTC().Add(-time.Duration(rec.AgeHours * float64(time.Hour))).Format(time.RFC3339),
	}
	if props["tags"] == nil {
		props["tags"] = []string{}
	}
	_, err := w.client.Data().Creator().
		WithClassName(postClass).
		WithID(ToNativeID(rec.PostID)).
		WithProperties(props).
		WithVector(vec).
		Do(ctx)
	return err
}

func (w *weavIndex) DeletePost(ctx context.Context, postID string) error {
	if w == nil || w.client == nil || postID == "" {
		return nil
	}
	// Best-effort; ignore not-found so index cleanup never blocks callers.
	_ = w.client.Data().Deleter().WithClassName(postClass).WithID(ToNativeID(postID)).Do(ctx)
	return nil
}

// HealthPing reports whether the index answers readiness probes.
func (w *weavIndex) HealthPing(ctx context.Context) error {
	ready, err := w.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrIndexUnavailable, err)
	}
	if !ready {
		return fmt.Errorf("%w: not ready", model.ErrIndexUnavailable)
	}
	return nil
}

// recordFromProps translates the index's untyped payload into the typed
// boundary record. AgeHours is derived from the stored creation time.
func recordFromProps(m map[string]interface{}) model.PostRecord {
	rec := model.PostRecord{
		PostID:        asString(m["postId"]),
		CreatorWallet: asString(m["creatorWallet"]),
		Description:   asString(m["description"]),
		Tags:          asStringSlice(m["tags"]),
		SceneType:     asString(m["sceneType"]),
		Mood:          asString(m["mood"]),
		Likes:         int(asFloat(m["likes"])),
		Comments:      int(asFloat(m["comments"])),
		TipsReceived:  asFloat(m["tipsReceived"]),
	}
	if ts := asString(m["createdAt"]); ts != "" {
		if created, err := time.Parse(time.RFC3339, ts); err == nil {
			age := time.Since(created).Hours()
			if age > 0 {
				rec.AgeHours = age
			}
		}
	}
	return rec
}

func isZeroVector(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func asStringSlice(v interface{}) []string {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asVector(v interface{}) []float32 {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]float32, 0, len(arr))
	for _, item := range arr {
		out = append(out, float32(asFloat(item)))
	}
	return out
}

// formatGraphQLErrors returns a compact string with messages extracted for logging.
func formatGraphQLErrors(errs interface{}) string {
	if b, err := json.Marshal(errs); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", errs)
}
