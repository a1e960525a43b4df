package postindex

import (
	"context"
	"fmt"
	"time"

	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// Bootstrap ensures the Post class exists in the index at baseURL.
// Safe to call repeatedly; an existing class is left untouched.
func Bootstrap(ctx context.Context, baseURL string) error {
	cfg := weaviate.Config{Scheme: "http", Host: baseURL}
	cl, err := weaviate.NewClient(cfg)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	post := &models.Class{
		Class:      postClass,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "postId", DataType: []string{"text"}},
			{Name: "creatorWallet", DataType: []string{"text"}},
			{Name: "description", DataType: []string{"text"}},
			{Name: "tags", DataType: []string{"text[]"}},
			{Name: "sceneType", DataType: []string{"text"}},
			{Name: "mood", DataType: []string{"text"}},
			{Name: "likes", DataType: []string{"int"}},
			{Name: "comments", DataType: []string{"int"}},
			{Name: "tipsReceived", DataType: []string{"number"}},
			{Name: "createdAt", DataType: []string{"date"}},
		},
	}

	if err := ensureClass(cctx, cl, post); err != nil {
		return fmt.Errorf("bootstrap %s: %w", postClass, err)
	}
	return nil
}

// Reset drops and recreates the Post class, discarding all indexed posts.
func Reset(ctx context.Context, baseURL string) error {
	cfg := weaviate.Config{Scheme: "http", Host: baseURL}
	cl, err := weaviate.NewClient(cfg)
	if err != nil {
		return err
	}
	if err := cl.Schema().ClassDeleter().WithClassName(postClass).Do(ctx); err != nil {
		return fmt.Errorf("delete class %s: %w", postClass, err)
	}
	return Bootstrap(ctx, baseURL)
}

func ensureClass(ctx context.Context, cl *weaviate.Client, desired *models.Class) error {
	ex, err := cl.Schema().ClassGetter().WithClassName(desired.Class).Do(ctx)
	if err == nil && ex != nil {
		return nil
	}
	if err := cl.Schema().ClassCreator().WithClass(desired).Do(ctx); err != nil {
		return fmt.Errorf("create class %s: %w", desired.Class, err)
	}
	return nil
}
