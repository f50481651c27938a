package scoring

import "github.com/featherlab/rankline/internal/feed"

// Heat level thresholds.
const (
	HeatViral  = "viral"
	HeatHigh   = "high"
	HeatMedium = "medium"
	HeatLow    = "low"
)

// HeatScore condenses a post's behavior scores into a 0-100 display metric
// for the single-post analyzer. The coefficients differ from Aggregate on
// purpose: heat is a UI gauge, not a ranking input.
func HeatScore(scores feed.BehaviorScores) float64 {
	positive := scores.Favorite*1.0 +
		scores.Retweet*1.5 +
		scores.Reply*0.8 +
		scores.Share*1.2 +
		scores.FollowAuthor*2.0 +
		scores.VQV*1.0

	penalty := scores.NotInterested*2.0 +
		scores.BlockAuthor*3.0 +
		scores.MuteAuthor*2.5 +
		scores.Report*4.0

	raw := (positive - penalty) / 7.5 * 100
	return clamp(raw, 0, 100)
}

// HeatLevel buckets a heat score into a display label.
func HeatLevel(score float64) string {
	switch {
	case score >= 80:
		return HeatViral
	case score >= 60:
		return HeatHigh
	case score >= 40:
		return HeatMedium
	default:
		return HeatLow
	}
}
