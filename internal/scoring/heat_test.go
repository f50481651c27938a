package scoring

import (
	"testing"

	"github.com/featherlab/rankline/internal/feed"
)

func TestHeatScoreBounds(t *testing.T) {
	maxed := feed.BehaviorScores{
		Favorite: 1, Retweet: 1, Reply: 1, Share: 1, FollowAuthor: 1, VQV: 1,
	}
	if got := HeatScore(maxed); got != 100 {
		t.Errorf("expected clamp at 100, got %v", got)
	}

	toxic := feed.BehaviorScores{
		NotInterested: 1, BlockAuthor: 1, MuteAuthor: 1, Report: 1,
	}
	if got := HeatScore(toxic); got != 0 {
		t.Errorf("expected clamp at 0, got %v", got)
	}

	if got := HeatScore(feed.BehaviorScores{}); got != 0 {
		t.Errorf("expected 0 for empty scores, got %v", got)
	}
}

func TestHeatScoreMidRange(t *testing.T) {
	scores := feed.BehaviorScores{Favorite: 0.5, Retweet: 0.5, Reply: 0.5}
	// (0.5 + 0.75 + 0.4) / 7.5 * 100 = 22.
	if got := HeatScore(scores); !approx(got, 22.0) {
		t.Errorf("expected 22, got %v", got)
	}
}

func TestHeatLevels(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0, HeatLow},
		{39.9, HeatLow},
		{40, HeatMedium},
		{59.9, HeatMedium},
		{60, HeatHigh},
		{79.9, HeatHigh},
		{80, HeatViral},
		{100, HeatViral},
	}
	for _, tc := range cases {
		if got := HeatLevel(tc.score); got != tc.want {
			t.Errorf("HeatLevel(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func approx(got, want float64) bool {
	diff := got - want
	return diff < 1e-9 && diff > -1e-9
}
