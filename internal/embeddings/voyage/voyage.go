// Package voyage implements the embeddings contracts against the Voyage AI
// REST API. Text documents and queries go through the multimodal model so
// they stay compatible with image embeddings in the same index.
package voyage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://api.voyageai.com"

// Config carries the model selection for one provider instance.
type Config struct {
	APIKey          string
	BaseURL         string // defaults to the public Voyage endpoint
	TextModel       string
	MultimodalModel string
	RerankModel     string
	Dimensions      int
}

// Provider calls the Voyage AI embeddings and rerank endpoints.
type Provider struct {
	client *resty.Client
	cfg    Config
	log    zerolog.Logger
}

// New builds a Provider. The HTTP client is created once and reused.
func New(cfg Config, log zerolog.Logger) *Provider {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	c := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.APIKey).
		SetTimeout(60 * time.Second)
	return &Provider{client: c, cfg: cfg, log: log}
}

// Dimensions returns the fixed embedding length for this provider.
func (p *Provider) Dimensions() int { return p.cfg.Dimensions }

type multimodalContent struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

type multimodalInput struct {
	Content []multimodalContent `json:"content"`
}

type multimodalRequest struct {
	Inputs    []multimodalInput `json:"inputs"`
	Model     string            `json:"model"`
	InputType string            `json:"input_type"`
}

type embedRequest struct {
	Input     []string `json:"input"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed generates a document embedding for text, via the multimodal model so
// the vector is comparable with image-bearing documents.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.multimodalEmbed(ctx, []multimodalContent{{Type: "text", Text: text}}, "document")
}

// EmbedQuery generates a query-side embedding in the same space as Embed.
func (p *Provider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return p.multimodalEmbed(ctx, []multimodalContent{{Type: "text", Text: text}}, "query")
}

// EmbedImage embeds raw image bytes with an optional caption. On a
// multimodal failure with a caption present it falls back to a text-only
// document embedding.
func (p *Provider) EmbedImage(ctx context.Context, image []byte, caption string) ([]float32, error) {
	mime := http.DetectContentType(image)
	dataURI := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(image))

	content := []multimodalContent{{Type: "image_base64", ImageBase64: dataURI}}
	if caption != "" {
		content = append(content, multimodalContent{Type: "text", Text: caption})
	}
	vec, err := p.multimodalEmbed(ctx, content, "document")
	if err != nil {
		if caption != "" {
			p.log.Warn().Err(err).Msg("multimodal embedding failed, falling back to caption text")
			return p.Embed(ctx, caption)
		}
		return nil, err
	}
	return vec, nil
}

func (p *Provider) multimodalEmbed(ctx context.Context, content []multimodalContent, inputType string) ([]float32, error) {
	req := multimodalRequest{
		Inputs:    []multimodalInput{{Content: content}},
		Model:     p.cfg.MultimodalModel,
		InputType: inputType,
	}
	resp, err := p.client.R().SetContext(ctx).SetBody(&req).Post("/v1/multimodalembeddings")
	if err != nil {
		return nil, fmt.Errorf("voyage multimodal request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("voyage multimodal status %d: %s", resp.StatusCode(), resp.String())
	}
	var out embedResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode voyage response: %w", err)
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("voyage returned no embeddings")
	}
	return toFloat32(out.Data[0].Embedding), nil
}

// EmbedBatch embeds multiple texts with the text model in one call.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	req := embedRequest{Input: texts, Model: p.cfg.TextModel, InputType: "document"}
	resp, err := p.client.R().SetContext(ctx).SetBody(&req).Post("/v1/embeddings")
	if err != nil {
		return nil, fmt.Errorf("voyage embed request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("voyage embed status %d: %s", resp.StatusCode(), resp.String())
	}
	var out embedResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode voyage response: %w", err)
	}
	vecs := make([][]float32, len(out.Data))
	for i, d := range out.Data {
		vecs[i] = toFloat32(d.Embedding)
	}
	return vecs, nil
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	Model     string   `json:"model"`
	TopK      int      `json:"top_k"`
}

type rerankResponse struct {
	Data []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"data"`
}

// Rerank reorders documents by relevance and returns indices into the input,
// most relevant first. A provider failure degrades to original order with a
// logged warning; reranking is an enhancement, never a gate.
func (p *Provider) Rerank(ctx context.Context, query string, documents []string, topK int) ([]int, error) {
	if len(documents) == 0 {
		return nil, nil
	}
	if topK > len(documents) {
		topK = len(documents)
	}
	req := rerankRequest{Query: query, Documents: documents, Model: p.cfg.RerankModel, TopK: topK}
	resp, err := p.client.R().SetContext(ctx).SetBody(&req).Post("/v1/rerank")
	if err != nil || resp.StatusCode() != http.StatusOK {
		p.log.Warn().Err(err).Msg("voyage rerank failed, returning original order")
		indices := make([]int, topK)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}
	var out rerankResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}
	indices := make([]int, 0, len(out.Data))
	for _, d := range out.Data {
		indices = append(indices, d.Index)
	}
	return indices, nil
}

// HealthPing verifies the API is reachable and the key is accepted by
// embedding a short probe string.
func (p *Provider) HealthPing(ctx context.Context) error {
	_, err := p.EmbedQuery(ctx, "health-probe")
	return err
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
