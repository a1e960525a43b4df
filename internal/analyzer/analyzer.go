// Package analyzer turns raw post media into index-ready records: it fetches
// the content (IPFS or public HTTP), produces a multimodal embedding and
// upserts the result into the post index.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/solshare/feed-ranker/internal/embeddings"
	"github.com/solshare/feed-ranker/internal/model"
	"github.com/solshare/feed-ranker/internal/postindex"
	"github.com/solshare/feed-ranker/internal/safeurl"
)

// maxImageBytes caps downloads; anything larger is rejected before embedding.
const maxImageBytes = 20 << 20

// Analyzer resolves, fetches and embeds post content.
type Analyzer struct {
	embedder    embeddings.MultimodalProvider
	index       postindex.Index
	http        *resty.Client
	ipfsGateway string
	log         zerolog.Logger

	// allowPrivate disables the SSRF host check for fetches. Test-only.
	allowPrivate bool
}

// New constructs an Analyzer. ipfsGateway is the base URL content-addressed
// URIs resolve through, e.g. "https://gateway.pinata.cloud/ipfs/".
func New(embedder embeddings.MultimodalProvider, index postindex.Index, ipfsGateway string, log zerolog.Logger) *Analyzer {
	hc := resty.New().
		SetTimeout(30 * time.Second).
		SetRedirectPolicy(resty.NoRedirectPolicy())
	return &Analyzer{
		embedder:    embedder,
		index:       index,
		http:        hc,
		ipfsGateway: strings.TrimSuffix(ipfsGateway, "/") + "/",
		log:         log,
	}
}

// ResolveContentURI turns a content reference into a fetchable, SSRF-checked
// URL. Accepted forms: ipfs://<cid>, a bare CID, or a public http(s) URL.
func (a *Analyzer) ResolveContentURI(uri string) (string, error) {
	switch {
	case strings.HasPrefix(uri, "ipfs://"):
		cid := strings.TrimPrefix(uri, "ipfs://")
		if !safeurl.IsValidIPFSCID(cid) {
			return "", fmt.Errorf("%w: invalid ipfs cid", model.ErrValidation)
		}
		return a.ipfsGateway + cid, nil
	case safeurl.IsValidIPFSCID(uri):
		return a.ipfsGateway + uri, nil
	default:
		validated, err := safeurl.ValidateURL(uri)
		if err != nil {
			return "", fmt.Errorf("%w: %v", model.ErrValidation, err)
		}
		return validated, nil
	}
}

// Analyze fetches the content at contentURI, embeds it (falling back to a
// caption-only text embedding when image processing fails) and, when postID
// is set, upserts the record into the index. Index storage failure is soft.
func (a *Analyzer) Analyze(ctx context.Context, contentURI, caption, postID, creatorWallet string) (*model.AnalyzeResult, error) {
	description := caption
	if description == "" {
		description = "Image content"
	}
	altText := caption
	if altText == "" {
		altText = "Image"
	}

	var embedding []float32
	if contentURI != "" {
		vec, err := a.embedFromURI(ctx, contentURI, caption)
		if errors.Is(err, model.ErrValidation) {
			// SSRF or CID rejection is a hard failure, never a fallback.
			return nil, err
		}
		if err != nil {
			a.log.Warn().Err(err).Str("postId", postID).Msg("multimodal embedding failed, trying text-only")
			if caption != "" {
				vec, err = a.embedder.Embed(ctx, caption)
				if err != nil {
					a.log.Warn().Err(err).Msg("text embedding also failed")
					vec = nil
				}
			}
		}
		embedding = vec
	} else if caption != "" {
		vec, err := a.embedder.Embed(ctx, caption)
		if err != nil {
			a.log.Warn().Err(err).Msg("text embedding failed")
		} else {
			embedding = vec
		}
	}

	if postID != "" && len(embedding) > 0 {
		rec := model.PostRecord{
			PostID:        postID,
			CreatorWallet: creatorWallet,
			Description:   description,
			Tags:          []string{},
			SceneType:     "unknown",
			Mood:          "neutral",
		}
		if err := a.index.UpsertPost(ctx, rec, embedding); err != nil {
			a.log.Warn().Err(err).Str("postId", postID).Msg("failed to store embedding in index")
		}
	}

	return &model.AnalyzeResult{
		Description: description,
		Tags:        []string{},
		SceneType:   "unknown",
		Mood:        "neutral",
		AltText:     altText,
		Embedding:   embedding,
	}, nil
}

func (a *Analyzer) embedFromURI(ctx context.Context, contentURI, caption string) ([]float32, error) {
	target := contentURI
	if !a.allowPrivate {
		resolved, err := a.ResolveContentURI(contentURI)
		if err != nil {
			return nil, err
		}
		target = resolved
	}
	resp, err := a.http.R().SetContext(ctx).Get(target)
	if err != nil {
		return nil, fmt.Errorf("download content: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("download content: status %d", resp.StatusCode())
	}
	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("download content: empty body")
	}
	if len(body) > maxImageBytes {
		return nil, fmt.Errorf("download content: %d bytes exceeds limit", len(body))
	}
	return a.embedder.EmbedImage(ctx, body, caption)
}
