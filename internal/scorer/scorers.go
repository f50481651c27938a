// Package scorer implements the fixed four-stage scoring chain: phoenix
// (attach simulated behavior scores), weighted (aggregate them under the
// weight config), author diversity (decay repeated authors), and OON
// balance (down-weight out-of-network content). The chain always runs in
// full and in this order; stages are not individually toggleable.
package scorer

import (
	"sort"

	"github.com/featherlab/rankline/internal/feed"
	"github.com/featherlab/rankline/internal/scoring"
)

// Config is the metadata for one scorer stage.
type Config struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry lists the scorer stages in execution order.
var Registry = []Config{
	{ID: "phoenix", Name: "Phoenix ML Scorer", Description: "Predicts 18 user behaviors per candidate"},
	{ID: "weighted", Name: "Weighted Sum Scorer", Description: "Combines behavior predictions into a weighted score"},
	{ID: "author_diversity", Name: "Author Diversity Scorer", Description: "Applies decay to repeated authors"},
	{ID: "oon", Name: "OON Balance Scorer", Description: "Balances in-network and out-of-network content"},
}

// Lookup finds a scorer config by id.
func Lookup(id string) (Config, bool) {
	for _, cfg := range Registry {
		if cfg.ID == id {
			return cfg, true
		}
	}
	return Config{}, false
}

// RunPhoenix reports the behavior scores already attached to each candidate.
// It changes nothing ranking-relevant; the per-candidate "final" here is a
// display-only unweighted mean over all 19 score fields.
func RunPhoenix(candidates []feed.Candidate) feed.ScorerResult {
	result := feed.ScorerResult{
		ScorerID:        "phoenix",
		ScorerName:      "Phoenix ML Scorer",
		CandidateScores: make([]feed.CandidateScore, 0, len(candidates)),
	}
	for _, c := range candidates {
		result.CandidateScores = append(result.CandidateScores, feed.CandidateScore{
			CandidateID: c.ID,
			Scores:      behaviorScoreMap(c.Scores),
			FinalScore:  c.Scores.Mean(),
		})
	}
	return result
}

// RunWeighted computes each candidate's weighted score from its behavior
// scores and the weight configuration.
func RunWeighted(candidates []feed.Candidate, weights scoring.WeightConfig) ([]feed.Candidate, feed.ScorerResult) {
	updated := make([]feed.Candidate, 0, len(candidates))
	result := feed.ScorerResult{
		ScorerID:        "weighted",
		ScorerName:      "Weighted Sum Scorer",
		CandidateScores: make([]feed.CandidateScore, 0, len(candidates)),
	}
	for _, c := range candidates {
		score := scoring.Aggregate(c.Scores, weights, c.VideoDurationMs)
		c.WeightedScore = feed.Float64(score)
		updated = append(updated, c)
		result.CandidateScores = append(result.CandidateScores, feed.CandidateScore{
			CandidateID: c.ID,
			Scores:      map[string]float64{"weighted_score": score},
			FinalScore:  score,
		})
	}
	return updated, result
}

// RunAuthorDiversity orders candidates by weighted score (stable, so ties
// keep their original relative order) and decays each author's repeated
// appearances: multiplier = (1-floor)*decay^count + floor, where count is
// how many of the author's posts already rank above this one.
func RunAuthorDiversity(candidates []feed.Candidate, decay, floor float64) ([]feed.Candidate, feed.ScorerResult) {
	sorted := make([]feed.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weighted() > sorted[j].Weighted()
	})

	authorCounts := make(map[string]int)
	updated := make([]feed.Candidate, 0, len(sorted))
	result := feed.ScorerResult{
		ScorerID:        "author_diversity",
		ScorerName:      "Author Diversity Scorer",
		CandidateScores: make([]feed.CandidateScore, 0, len(sorted)),
	}

	for _, c := range sorted {
		count := authorCounts[c.AuthorID]
		authorCounts[c.AuthorID] = count + 1

		multiplier := (1-floor)*pow(decay, count) + floor
		adjusted := c.Weighted() * multiplier
		c.DiversityAdjustedScore = feed.Float64(adjusted)
		updated = append(updated, c)

		result.CandidateScores = append(result.CandidateScores, feed.CandidateScore{
			CandidateID: c.ID,
			Scores: map[string]float64{
				"original_score":           c.Weighted(),
				"diversity_multiplier":     multiplier,
				"diversity_adjusted_score": adjusted,
			},
			FinalScore: adjusted,
		})
	}
	return updated, result
}

// RunOON sets the final score: out-of-network candidates are scaled by the
// OON factor, in-network ones pass through. Always the last scorer; its
// output is what selection sorts by.
func RunOON(candidates []feed.Candidate, oonFactor float64) ([]feed.Candidate, feed.ScorerResult) {
	updated := make([]feed.Candidate, 0, len(candidates))
	result := feed.ScorerResult{
		ScorerID:        "oon",
		ScorerName:      "OON Balance Scorer",
		CandidateScores: make([]feed.CandidateScore, 0, len(candidates)),
	}
	for _, c := range candidates {
		base := c.BaseScore()
		multiplier := 1.0
		inNetwork := 1.0
		if !c.InNetwork {
			multiplier = oonFactor
			inNetwork = 0
		}
		final := base * multiplier
		c.FinalScore = feed.Float64(final)
		updated = append(updated, c)

		result.CandidateScores = append(result.CandidateScores, feed.CandidateScore{
			CandidateID: c.ID,
			Scores: map[string]float64{
				"is_in_network":  inNetwork,
				"oon_multiplier": multiplier,
				"before_oon":     base,
				"after_oon":      final,
			},
			FinalScore: final,
		})
	}
	return updated, result
}

// RunAll executes the full chain in order and returns the per-stage results
// alongside the fully scored candidates.
func RunAll(candidates []feed.Candidate, weights scoring.WeightConfig) ([]feed.ScorerResult, []feed.Candidate) {
	results := make([]feed.ScorerResult, 0, len(Registry))

	results = append(results, RunPhoenix(candidates))

	candidates, weightedResult := RunWeighted(candidates, weights)
	results = append(results, weightedResult)

	candidates, diversityResult := RunAuthorDiversity(candidates, weights.AuthorDiversityDecay, weights.AuthorDiversityFloor)
	results = append(results, diversityResult)

	candidates, oonResult := RunOON(candidates, weights.OONWeightFactor)
	results = append(results, oonResult)

	return results, candidates
}

func behaviorScoreMap(s feed.BehaviorScores) map[string]float64 {
	return map[string]float64{
		"favorite_score":            s.Favorite,
		"reply_score":               s.Reply,
		"retweet_score":             s.Retweet,
		"photo_expand_score":        s.PhotoExpand,
		"click_score":               s.Click,
		"profile_click_score":       s.ProfileClick,
		"vqv_score":                 s.VQV,
		"share_score":               s.Share,
		"share_via_dm_score":        s.ShareViaDM,
		"share_via_copy_link_score": s.ShareViaCopyLink,
		"dwell_score":               s.Dwell,
		"quote_score":               s.Quote,
		"quoted_click_score":        s.QuotedClick,
		"follow_author_score":       s.FollowAuthor,
		"not_interested_score":      s.NotInterested,
		"block_author_score":        s.BlockAuthor,
		"mute_author_score":         s.MuteAuthor,
		"report_score":              s.Report,
		"dwell_time":                s.DwellTimeMs,
	}
}

// pow is an integer-exponent power; decay counts are small and exact
// repeated multiplication keeps the multiplier monotonic.
func pow(base float64, exp int) float64 {
	out := 1.0
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}
