package model

import "time"

// UserContext holds one user's taste state for a single scoring request.
// It is built fresh per request by the context builder and never persisted.
type UserContext struct {
	Wallet           string    `json:"wallet"`
	TasteEmbedding   []float32 `json:"taste_embedding,omitempty"`
	TasteProfile     string    `json:"taste_profile,omitempty"`
	LikedPostIDs     []string  `json:"liked_post_ids,omitempty"`
	FollowingWallets []string  `json:"following_wallets,omitempty"`
	LikedTags        []string  `json:"liked_tags,omitempty"`
	LikedSceneTypes  []string  `json:"liked_scene_types,omitempty"`
}

// CandidateFeatures describes one post eligible for scoring.
// Read-only during scoring.
type CandidateFeatures struct {
	PostID             string    `json:"post_id"`
	CreatorWallet      string    `json:"creator_wallet"`
	Embedding          []float32 `json:"embedding,omitempty"`
	Description        string    `json:"description,omitempty"`
	Tags               []string  `json:"tags"`
	SceneType          string    `json:"scene_type,omitempty"`
	Mood               string    `json:"mood,omitempty"`
	Likes              int       `json:"likes"`
	Comments           int       `json:"comments"`
	TipsReceived       float64   `json:"tips_received"`
	AgeHours           float64   `json:"age_hours"`
	IsFollowingCreator bool      `json:"is_following_creator"`
	Source             string    `json:"source"`
}

// EngagementPrediction is the multi-action output of scoring one candidate
// for one user. Scores always contains exactly the canonical action keys.
type EngagementPrediction struct {
	PostID     string             `json:"post_id"`
	Scores     map[string]float64 `json:"scores"`
	FinalScore float64            `json:"final_score"`
}

// PostRecord is the typed boundary representation of a post returned by the
// similarity index. Numbers arrive as untyped payload fields from the index;
// the adapter translates them here so nothing downstream touches raw maps.
type PostRecord struct {
	PostID        string    `json:"post_id"`
	CreatorWallet string    `json:"creator_wallet"`
	Embedding     []float32 `json:"embedding,omitempty"`
	Description   string    `json:"description,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	SceneType     string    `json:"scene_type,omitempty"`
	Mood          string    `json:"mood,omitempty"`
	Likes         int       `json:"likes"`
	Comments      int       `json:"comments"`
	TipsReceived  float64   `json:"tips_received"`
	AgeHours      float64   `json:"age_hours"`
	Score         float64   `json:"score"`
}

// ModerationScores carries the six service moderation categories on a 0-10 scale.
type ModerationScores struct {
	NSFW         float64 `json:"nsfw"`
	Violence     float64 `json:"violence"`
	Hate         float64 `json:"hate"`
	ChildSafety  float64 `json:"child_safety"`
	Spam         float64 `json:"spam"`
	DrugsWeapons float64 `json:"drugs_weapons"`
}

// AsMap returns the scores keyed by category name.
func (s ModerationScores) AsMap() map[string]float64 {
	return map[string]float64{
		"nsfw":          s.NSFW,
		"violence":      s.Violence,
		"hate":          s.Hate,
		"child_safety":  s.ChildSafety,
		"spam":          s.Spam,
		"drugs_weapons": s.DrugsWeapons,
	}
}

// ModerationResult is the verdict returned for one piece of content.
type ModerationResult struct {
	Verdict          string           `json:"verdict"`
	Scores           ModerationScores `json:"scores"`
	MaxScore         float64          `json:"max_score"`
	Explanation      string           `json:"explanation"`
	ProcessingTimeMs int64            `json:"processing_time_ms"`
	BlockedCategory  string           `json:"blocked_category,omitempty"`
	ViolationID      string           `json:"violation_id,omitempty"`
}

// Violation is a persisted record of blocked or flagged content.
type Violation struct {
	ViolationID  string    `json:"violation_id"`
	Wallet       string    `json:"wallet"`
	Category     string    `json:"category"`
	Verdict      string    `json:"verdict"`
	MaxScore     float64   `json:"max_score"`
	Explanation  string    `json:"explanation"`
	CreationTime time.Time `json:"creation_time"`
}

// AnalyzeResult is the outcome of content analysis for one post.
type AnalyzeResult struct {
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	SceneType   string    `json:"scene_type"`
	Mood        string    `json:"mood"`
	AltText     string    `json:"alt_text"`
	Embedding   []float32 `json:"embedding,omitempty"`
}
