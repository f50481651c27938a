package scoring

import (
	"strings"
	"testing"

	"github.com/featherlab/rankline/internal/feed"
)

func hasSuggestion(suggestions []Suggestion, fragment string) bool {
	for _, s := range suggestions {
		if strings.Contains(s.Message, fragment) {
			return true
		}
	}
	return false
}

func TestSuggestionsForBarePost(t *testing.T) {
	got := Suggestions(feed.PostInput{
		Content:       "short",
		Media:         feed.MediaNone,
		AuthorType:    feed.AuthorNormal,
		FollowerCount: 100,
	})

	if !hasSuggestion(got, "Adding an image") {
		t.Error("expected image suggestion for medialess post")
	}
	if !hasSuggestion(got, "Longer content") {
		t.Error("expected length suggestion for short post")
	}
	if !hasSuggestion(got, "limited initial reach") {
		t.Error("expected reach note for small normal account")
	}
}

func TestSuggestionsVideoDuration(t *testing.T) {
	video := func(ms int64) feed.PostInput {
		return feed.PostInput{
			Content:         "a video post with enough characters to skip the length advice",
			Media:           feed.MediaVideo,
			VideoDurationMs: ms,
			AuthorType:      feed.AuthorInfluencer,
			FollowerCount:   500000,
		}
	}

	if !hasSuggestion(Suggestions(video(45000)), "optimal") {
		t.Error("expected optimal-duration suggestion for 45s video")
	}
	if !hasSuggestion(Suggestions(video(10000)), "completion rates") {
		t.Error("expected short-video note for 10s video")
	}
	if !hasSuggestion(Suggestions(video(300000)), "Long videos") {
		t.Error("expected long-video warning for 5min video")
	}
}

func TestSuggestionsTagDensity(t *testing.T) {
	spammy := feed.PostInput{
		Content:       "#a #b #c #d #e #f and @u1 @u2 @u3 @u4 @u5 @u6 plus padding text",
		Media:         feed.MediaImage,
		AuthorType:    feed.AuthorVerified,
		FollowerCount: 10000,
	}

	got := Suggestions(spammy)
	if !hasSuggestion(got, "Too many hashtags") {
		t.Error("expected hashtag warning")
	}
	if !hasSuggestion(got, "Excessive mentions") {
		t.Error("expected mention warning")
	}
}

func TestFilterRisks(t *testing.T) {
	empty := FilterRisks(feed.PostInput{Content: "   "})
	if len(empty) != 1 || empty[0].FilterID != "core_data" {
		t.Errorf("expected core_data risk for empty content, got %+v", empty)
	}

	blocked := FilterRisks(feed.PostInput{Content: "some Graphic footage"})
	found := false
	for _, r := range blocked {
		if r.FilterID == "visibility" {
			found = true
		}
	}
	if !found {
		t.Error("expected visibility risk for blocked term")
	}

	clean := FilterRisks(feed.PostInput{Content: "a perfectly normal update about lunch"})
	if len(clean) != 0 {
		t.Errorf("expected no risks, got %+v", clean)
	}
}
