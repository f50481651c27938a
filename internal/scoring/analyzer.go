package scoring

import (
	"strings"

	"github.com/featherlab/rankline/internal/feed"
)

// Suggestion is a piece of content advice from the single-post analyzer.
type Suggestion struct {
	Type    string `json:"type"`   // positive | negative | neutral
	Message string `json:"message"`
	Impact  string `json:"impact"` // low | medium | high
}

// FilterRisk flags a pipeline filter a drafted post is likely to trip.
type FilterRisk struct {
	FilterID   string `json:"filter_id"`
	FilterName string `json:"filter_name"`
	Risk       string `json:"risk"` // low | medium | high
	Reason     string `json:"reason"`
}

// Suggestions derives content advice for a drafted post.
func Suggestions(post feed.PostInput) []Suggestion {
	var out []Suggestion

	if post.Media == feed.MediaNone {
		out = append(out,
			Suggestion{Type: "positive", Message: "Adding an image increases engagement by ~15%", Impact: "medium"},
			Suggestion{Type: "positive", Message: "Adding a video could boost VQV score significantly", Impact: "high"},
		)
	}
	if post.Media == feed.MediaVideo && post.VideoDurationMs > 0 {
		switch sec := float64(post.VideoDurationMs) / 1000; {
		case sec >= 30 && sec <= 60:
			out = append(out, Suggestion{Type: "positive", Message: "Video duration is optimal (30-60s) for engagement", Impact: "high"})
		case sec < 30:
			out = append(out, Suggestion{Type: "neutral", Message: "Short videos may have lower completion rates", Impact: "low"})
		case sec > 180:
			out = append(out, Suggestion{Type: "negative", Message: "Long videos (>3 min) may have lower engagement", Impact: "medium"})
		}
	}

	if len(post.Content) < 50 {
		out = append(out, Suggestion{Type: "neutral", Message: "Longer content may increase dwell time", Impact: "low"})
	}
	if strings.Contains(post.Content, "?") {
		out = append(out, Suggestion{Type: "positive", Message: "Questions encourage replies and engagement", Impact: "medium"})
	}

	hashtags := len(hashtagRE.FindAllString(post.Content, -1))
	switch {
	case hashtags > 5:
		out = append(out, Suggestion{Type: "negative", Message: "Too many hashtags may reduce reach", Impact: "medium"})
	case hashtags >= 1 && hashtags <= 3:
		out = append(out, Suggestion{Type: "positive", Message: "Good use of hashtags for discoverability", Impact: "low"})
	}
	if len(mentionRE.FindAllString(post.Content, -1)) > 5 {
		out = append(out, Suggestion{Type: "negative", Message: "Excessive mentions may trigger spam filters", Impact: "high"})
	}

	if post.AuthorType == feed.AuthorNormal && post.FollowerCount < 1000 {
		out = append(out, Suggestion{Type: "neutral", Message: "New accounts may have limited initial reach", Impact: "low"})
	}

	return out
}

// FilterRisks flags the content-sensitive pipeline filters a drafted post
// is at risk of tripping once it enters ranking.
func FilterRisks(post feed.PostInput) []FilterRisk {
	var out []FilterRisk
	content := strings.TrimSpace(post.Content)

	if content == "" {
		out = append(out, FilterRisk{
			FilterID:   "core_data",
			FilterName: "CoreDataFilter",
			Risk:       "high",
			Reason:     "empty content is dropped before scoring",
		})
	}

	lower := strings.ToLower(content)
	for _, term := range []string{"gore", "violence", "graphic", "explicit scam"} {
		if strings.Contains(lower, term) {
			out = append(out, FilterRisk{
				FilterID:   "visibility",
				FilterName: "VisibilityFilter",
				Risk:       "high",
				Reason:     "content matches a blocked term: " + term,
			})
			break
		}
	}

	if len(hashtagRE.FindAllString(content, -1)) > 5 || len(mentionRE.FindAllString(content, -1)) > 5 {
		out = append(out, FilterRisk{
			FilterID:   "muted_keyword",
			FilterName: "MutedKeywordFilter",
			Risk:       "medium",
			Reason:     "spam-like tag density raises the odds of keyword mutes",
		})
	}

	return out
}
