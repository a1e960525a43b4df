// Package scoring implements the multi-action engagement predictor.
//
// Instead of a learned model the predictor combines hand-crafted signals:
// embedding similarity between the user's taste vector and the candidate,
// tag overlap, social-proof popularity, freshness decay and an in-network
// boost. The output keeps the multi-action probability shape so the final
// ranking stays a weighted sum that can be retuned without touching the
// predictor itself.
package scoring

// Actions is the closed set of engagement actions the predictor emits.
// Every prediction carries exactly these keys.
var Actions = []string{
	"like",
	"comment",
	"share",
	"save",
	"tip",
	"subscribe",
	"follow_creator",
	"dwell",
	"profile_click",
	"not_interested",
	"mute_creator",
	"report",
}

// DefaultWeights is the default action-weight table for the weighted scorer.
// FinalScore = sum(weight * P(action)).
var DefaultWeights = map[string]float64{
	"like":           1.0,
	"comment":        1.5,
	"share":          2.0,
	"save":           1.5,
	"tip":            3.0,
	"subscribe":      4.0,
	"follow_creator": 2.5,
	"dwell":          0.5,
	"profile_click":  0.5,
	"not_interested": -3.0,
	"mute_creator":   -5.0,
	"report":         -10.0,
}
