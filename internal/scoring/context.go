package scoring

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/solshare/feed-ranker/internal/model"
)

const (
	// maxLikedPosts bounds how much history feeds taste extraction.
	maxLikedPosts = 30
	// maxTasteDescriptions bounds the text joined into the taste summary.
	maxTasteDescriptions = 10
	// maxProfileChars truncates the stored taste profile.
	maxProfileChars = 500
)

// QueryEmbedder produces a query-side embedding in the same vector space as
// candidate content embeddings.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// PostLookup fetches post metadata for taste-signal extraction.
type PostLookup interface {
	GetByIDs(ctx context.Context, postIDs []string) ([]model.PostRecord, error)
}

// ProfileSummarizer rewrites raw liked-post text into short taste prose.
type ProfileSummarizer interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

const tasteProfilePrompt = "Summarize this user's content taste in one short sentence, based on posts they liked: "

// ContextBuilder hydrates a user's taste profile from their liked-post
// history. It is the sole writer of UserContext.
type ContextBuilder struct {
	embedder   QueryEmbedder
	posts      PostLookup
	summarizer ProfileSummarizer
	log        zerolog.Logger
}

// NewContextBuilder wires a builder with its collaborators. The builder does
// not own client lifecycle; handles are injected at construction.
func NewContextBuilder(embedder QueryEmbedder, posts PostLookup, log zerolog.Logger) *ContextBuilder {
	return &ContextBuilder{embedder: embedder, posts: posts, log: log}
}

// WithProfileSummarizer enables prose taste profiles. Summarization is
// best-effort; failures keep the raw joined-description profile.
func (b *ContextBuilder) WithProfileSummarizer(s ProfileSummarizer) *ContextBuilder {
	b.summarizer = s
	return b
}

// Build assembles a UserContext for scoring. A user with no usable liked-post
// history gets a cold-start context (no taste embedding, empty histories) —
// that is the expected new-user path, not an error. Embedding generation
// failure is a soft failure: logged, and the context is returned without a
// taste embedding so scoring falls back to the neutral similarity default.
func (b *ContextBuilder) Build(ctx context.Context, wallet string, likedPostIDs, followingWallets []string) (*model.UserContext, error) {
	user := &model.UserContext{Wallet: wallet, FollowingWallets: followingWallets}

	if len(likedPostIDs) == 0 {
		return user, nil
	}

	recent := likedPostIDs
	if len(recent) > maxLikedPosts {
		recent = recent[len(recent)-maxLikedPosts:]
	}

	likedPosts, err := b.posts.GetByIDs(ctx, recent)
	if err != nil {
		return nil, err
	}
	if len(likedPosts) == 0 {
		return user, nil
	}

	var tags, sceneTypes, descriptions []string
	for _, post := range likedPosts {
		tags = append(tags, post.Tags...)
		if post.SceneType != "" {
			sceneTypes = append(sceneTypes, post.SceneType)
		}
		if post.Description != "" {
			descriptions = append(descriptions, post.Description)
		}
	}

	user.LikedTags = tags
	user.LikedSceneTypes = sceneTypes
	user.LikedPostIDs = likedPostIDs

	if len(descriptions) > 0 {
		if len(descriptions) > maxTasteDescriptions {
			descriptions = descriptions[:maxTasteDescriptions]
		}
		tasteText := strings.Join(descriptions, " | ")
		vec, err := b.embedder.EmbedQuery(ctx, tasteText)
		if err != nil {
			b.log.Warn().Err(err).Str("wallet", wallet).Msg("taste embedding generation failed")
		} else {
			user.TasteEmbedding = vec
			if b.summarizer != nil {
				if prose, serr := b.summarizer.Generate(ctx, "", tasteProfilePrompt+tasteText); serr == nil && prose != "" {
					tasteText = prose
				} else if serr != nil {
					b.log.Debug().Err(serr).Str("wallet", wallet).Msg("taste profile summarization failed")
				}
			}
			user.TasteProfile = truncateRunes(tasteText, maxProfileChars)
		}
	}

	return user, nil
}

// truncateRunes cuts s to at most n characters without splitting a
// multi-byte sequence.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
