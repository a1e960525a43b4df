// Package moderation maps vendor moderation scores onto the service's
// category scale and turns them into posting verdicts.
package moderation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/solshare/feed-ranker/internal/model"
)

// categoryMapping folds the vendor's fine-grained categories onto the six
// service categories. Vendor scores are 0..1; service scores are 0..10.
var categoryMapping = map[string]string{
	"sexual":                 "nsfw",
	"sexual/minors":          "child_safety",
	"harassment":             "hate",
	"harassment/threatening": "hate",
	"hate":                   "hate",
	"hate/threatening":       "hate",
	"violence":               "violence",
	"violence/graphic":       "violence",
	"self-harm":              "drugs_weapons",
	"self-harm/intent":       "drugs_weapons",
	"self-harm/instructions": "drugs_weapons",
	"illicit":                "drugs_weapons",
	"illicit/violent":        "violence",
}

// thresholds are deliberately permissive: heated opinions and hyperbole pass,
// only extreme content blocks. child_safety is strict and non-negotiable.
var thresholds = map[string]float64{
	"nsfw":          8.5,
	"violence":      8.5,
	"hate":          9.0,
	"child_safety":  2,
	"spam":          8.5,
	"drugs_weapons": 9.5,
}

// warnFraction of a category's block threshold triggers an informational warn.
const warnFraction = 0.8

// Scorer produces raw vendor category scores for an image and/or text.
type Scorer interface {
	Moderate(ctx context.Context, imageBase64, text string) (map[string]float64, error)
}

// ViolationRecorder persists blocked/flagged content records. Optional.
type ViolationRecorder interface {
	Record(ctx context.Context, v model.Violation) error
}

// Moderator scores content and renders allow/warn/block verdicts.
type Moderator struct {
	scorer     Scorer
	violations ViolationRecorder
	log        zerolog.Logger
}

// NewModerator wires a moderator. violations may be nil, in which case
// blocked content is logged but not persisted.
func NewModerator(scorer Scorer, violations ViolationRecorder, log zerolog.Logger) *Moderator {
	return &Moderator{scorer: scorer, violations: violations, log: log}
}

// Moderate scores content for the wallet and returns a verdict. The image is
// the primary input; the caption rides along when present. "warn" is
// informational only; callers treat it like "allow" for posting.
func (m *Moderator) Moderate(ctx context.Context, wallet, imageBase64, caption string) (*model.ModerationResult, error) {
	start := time.Now()

	raw, err := m.scorer.Moderate(ctx, imageBase64, caption)
	if err != nil {
		return nil, fmt.Errorf("moderation scoring: %w", err)
	}

	scores := mapVendorScores(raw)
	verdict, blockedCategory := determineVerdict(scores)
	maxScore := maxOf(scores)

	res := &model.ModerationResult{
		Verdict:          verdict,
		Scores:           scores,
		MaxScore:         maxScore,
		Explanation:      explain(raw, scores),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		BlockedCategory:  blockedCategory,
	}

	if verdict == "block" {
		m.log.Info().
			Str("wallet", wallet).
			Str("category", blockedCategory).
			Float64("maxScore", maxScore).
			Msg("content blocked")
		if m.violations != nil {
			v := model.Violation{
				ViolationID:  uuid.New().String(),
				Wallet:       wallet,
				Category:     blockedCategory,
				Verdict:      verdict,
				MaxScore:     maxScore,
				Explanation:  res.Explanation,
				CreationTime: time.Now().UTC(),
			}
			if err := m.violations.Record(ctx, v); err != nil {
				m.log.Warn().Err(err).Msg("failed to persist violation")
			} else {
				res.ViolationID = v.ViolationID
			}
		}
	}

	return res, nil
}

// mapVendorScores scales vendor scores to 0..10 and merges mapped categories
// with max, so the worst sub-category wins.
func mapVendorScores(raw map[string]float64) model.ModerationScores {
	merged := map[string]float64{}
	for vendorCat, ourCat := range categoryMapping {
		s := raw[vendorCat] * 10.0
		if s > merged[ourCat] {
			merged[ourCat] = s
		}
	}
	return model.ModerationScores{
		NSFW:         merged["nsfw"],
		Violence:     merged["violence"],
		Hate:         merged["hate"],
		ChildSafety:  merged["child_safety"],
		Spam:         merged["spam"],
		DrugsWeapons: merged["drugs_weapons"],
	}
}

func determineVerdict(scores model.ModerationScores) (string, string) {
	sm := scores.AsMap()
	// Deterministic iteration so the blocked category is stable across runs.
	cats := make([]string, 0, len(thresholds))
	for c := range thresholds {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	for _, c := range cats {
		if sm[c] > thresholds[c] {
			return "block", c
		}
	}
	for _, c := range cats {
		if sm[c] > thresholds[c]*warnFraction {
			return "warn", ""
		}
	}
	return "allow", ""
}

func explain(raw map[string]float64, scores model.ModerationScores) string {
	var flagged []string
	for vendorCat := range categoryMapping {
		if raw[vendorCat] >= 0.5 {
			flagged = append(flagged, vendorCat)
		}
	}
	if len(flagged) == 0 {
		return "Content appears safe."
	}
	sort.Strings(flagged)

	maxCat, maxScore := "", -1.0
	for c, s := range scores.AsMap() {
		if s > maxScore || (s == maxScore && c < maxCat) {
			maxCat, maxScore = c, s
		}
	}
	return fmt.Sprintf("Flagged for: %s. Highest: %s=%.1f/10", strings.Join(flagged, ", "), maxCat, maxScore)
}

func maxOf(scores model.ModerationScores) float64 {
	max := 0.0
	for _, s := range scores.AsMap() {
		if s > max {
			max = s
		}
	}
	return max
}
