package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultOpenAIBaseURL  = "https://api.openai.com"
	defaultModerationType = "omni-moderation-latest"
)

// OpenAIConfig selects credentials and model for the moderation endpoint.
// BaseURL is overridable for tests.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// ModerationClient calls the OpenAI moderations endpoint and returns the raw
// per-category probabilities (0..1). Mapping onto service categories is the
// moderation package's concern.
type ModerationClient struct {
	http  *resty.Client
	model string
}

// NewModerationClient constructs a moderation client.
func NewModerationClient(cfg OpenAIConfig) *ModerationClient {
	base := cfg.BaseURL
	if base == "" {
		base = defaultOpenAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModerationType
	}
	hc := resty.New().
		SetBaseURL(base).
		SetTimeout(30 * time.Second).
		SetAuthToken(cfg.APIKey)
	return &ModerationClient{http: hc, model: model}
}

type moderationRequest struct {
	Model string           `json:"model"`
	Input []moderationPart `json:"input"`
}

type moderationPart struct {
	Type     string              `json:"type"`
	Text     string              `json:"text,omitempty"`
	ImageURL *moderationImageURL `json:"image_url,omitempty"`
}

type moderationImageURL struct {
	URL string `json:"url"`
}

type moderationResponse struct {
	Results []struct {
		Flagged        bool               `json:"flagged"`
		CategoryScores map[string]float64 `json:"category_scores"`
	} `json:"results"`
}

// Moderate returns the category scores for an image and/or text. imageBase64
// may carry a data: URI or raw base64 (a jpeg data prefix is added); either
// input may be empty but not both. Keys follow the vendor's naming ("sexual",
// "sexual/minors", "harassment", ...).
func (c *ModerationClient) Moderate(ctx context.Context, imageBase64, text string) (map[string]float64, error) {
	var parts []moderationPart
	if imageBase64 != "" {
		if !strings.HasPrefix(imageBase64, "data:") {
			imageBase64 = "data:image/jpeg;base64," + imageBase64
		}
		parts = append(parts, moderationPart{Type: "image_url", ImageURL: &moderationImageURL{URL: imageBase64}})
	}
	if text != "" {
		parts = append(parts, moderationPart{Type: "text", Text: text})
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("moderation: no input")
	}

	var out moderationResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(moderationRequest{Model: c.model, Input: parts}).
		SetResult(&out).
		Post("/v1/moderations")
	if err != nil {
		return nil, fmt.Errorf("moderation request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("moderation status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Results) == 0 {
		return nil, fmt.Errorf("moderation: empty response")
	}
	return out.Results[0].CategoryScores, nil
}
