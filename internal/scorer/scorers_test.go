package scorer

import (
	"testing"

	"github.com/featherlab/rankline/internal/feed"
	"github.com/featherlab/rankline/internal/scoring"
)

func weighted(id, author string, score float64, inNetwork bool) feed.Candidate {
	return feed.Candidate{
		ID:            id,
		AuthorID:      author,
		InNetwork:     inNetwork,
		WeightedScore: feed.Float64(score),
	}
}

func TestRunAuthorDiversityDecay(t *testing.T) {
	candidates := []feed.Candidate{
		weighted("t1", "alice", 0.8, true),
		weighted("t2", "alice", 0.6, true),
		weighted("t3", "bob", 0.5, true),
	}

	updated, result := RunAuthorDiversity(candidates, 0.8, 0.2)
	if len(updated) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(updated))
	}

	adjusted := make(map[string]float64)
	for _, c := range updated {
		adjusted[c.ID] = *c.DiversityAdjustedScore
	}

	// First post per author keeps its score: multiplier (1-0.2)*0.8^0 + 0.2 = 1.
	if got := adjusted["t1"]; !almost(got, 0.8) {
		t.Errorf("t1: expected 0.8, got %v", got)
	}
	if got := adjusted["t3"]; !almost(got, 0.5) {
		t.Errorf("t3: expected 0.5, got %v", got)
	}
	// Second alice post: (1-0.2)*0.8 + 0.2 = 0.84; 0.6 * 0.84 = 0.504.
	if got := adjusted["t2"]; !almost(got, 0.504) {
		t.Errorf("t2: expected 0.504, got %v", got)
	}

	if result.ScorerID != "author_diversity" {
		t.Errorf("unexpected scorer id %q", result.ScorerID)
	}
}

func TestRunAuthorDiversityStableOrderOnTies(t *testing.T) {
	candidates := []feed.Candidate{
		weighted("first", "alice", 0.5, true),
		weighted("second", "alice", 0.5, true),
	}

	updated, _ := RunAuthorDiversity(candidates, 0.8, 0.2)
	// Ties keep input order, so "first" is treated as the author's top post.
	if *updated[0].DiversityAdjustedScore < *updated[1].DiversityAdjustedScore {
		t.Error("expected the earlier candidate to keep the higher multiplier")
	}
	if updated[0].ID != "first" {
		t.Errorf("expected first in input order, got %q", updated[0].ID)
	}
}

func TestRunOON(t *testing.T) {
	in := weighted("in", "alice", 0.5, true)
	out := weighted("out", "bob", 0.5, false)
	in.DiversityAdjustedScore = feed.Float64(0.5)
	out.DiversityAdjustedScore = feed.Float64(0.5)

	updated, _ := RunOON([]feed.Candidate{in, out}, 0.7)

	if got := *updated[0].FinalScore; !almost(got, 0.5) {
		t.Errorf("in-network: expected 0.5, got %v", got)
	}
	if got := *updated[1].FinalScore; !almost(got, 0.35) {
		t.Errorf("out-of-network: expected 0.35, got %v", got)
	}
}

func TestRunOONFallsBackToWeightedScore(t *testing.T) {
	c := weighted("t1", "alice", 0.6, false)
	updated, _ := RunOON([]feed.Candidate{c}, 0.5)
	if got := *updated[0].FinalScore; !almost(got, 0.3) {
		t.Errorf("expected 0.3 from weighted score, got %v", got)
	}
}

func TestRunWeightedSetsScores(t *testing.T) {
	weights := scoring.DefaultWeights()
	candidates := []feed.Candidate{
		{ID: "t1", Scores: feed.BehaviorScores{Favorite: 0.5}},
	}

	updated, result := RunWeighted(candidates, weights)
	if updated[0].WeightedScore == nil {
		t.Fatal("weighted score not set")
	}
	if len(result.CandidateScores) != 1 {
		t.Fatalf("expected 1 candidate score, got %d", len(result.CandidateScores))
	}
	if result.CandidateScores[0].FinalScore != *updated[0].WeightedScore {
		t.Error("result score does not match candidate score")
	}
}

func TestRunAllChainOrder(t *testing.T) {
	weights := scoring.DefaultWeights()
	candidates := []feed.Candidate{
		{ID: "t1", AuthorID: "alice", InNetwork: true, Scores: feed.BehaviorScores{Favorite: 0.9, Retweet: 0.5}},
		{ID: "t2", AuthorID: "alice", InNetwork: false, Scores: feed.BehaviorScores{Favorite: 0.3}},
	}

	results, scored := RunAll(candidates, weights)
	if len(results) != len(Registry) {
		t.Fatalf("expected %d stage results, got %d", len(Registry), len(results))
	}
	for i, r := range results {
		if r.ScorerID != Registry[i].ID {
			t.Errorf("stage %d: expected %q, got %q", i, Registry[i].ID, r.ScorerID)
		}
	}
	for _, c := range scored {
		if c.WeightedScore == nil || c.DiversityAdjustedScore == nil || c.FinalScore == nil {
			t.Errorf("candidate %s missing derived scores", c.ID)
		}
	}
}

func almost(got, want float64) bool {
	diff := got - want
	return diff < 1e-9 && diff > -1e-9
}
