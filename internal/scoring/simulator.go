// Package scoring simulates the ML behavior model behind the feed: it turns
// a post's features into 18 behavior probabilities plus a dwell-time
// estimate, aggregates them under a weight configuration, and derives the
// analyzer's heat score. Everything here is deterministic; the only
// randomness is a seeded LCG, so identical inputs always produce identical
// scores.
package scoring

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/featherlab/rankline/internal/feed"
)

var (
	mentionRE  = regexp.MustCompile(`@\w+`)
	hashtagRE  = regexp.MustCompile(`#\w+`)
	manyBangRE = regexp.MustCompile(`!{2,}`)
)

// lcg is a linear-congruential generator producing floats in [0,1).
// Kept minimal on purpose: the simulation needs reproducible jitter,
// not statistical quality.
type lcg struct {
	state int64
}

func (g *lcg) next() float64 {
	g.state = (g.state*1103515245 + 12345) & 0x7fffffff
	return float64(g.state) / float64(0x7fffffff)
}

// Seed derives the deterministic simulation seed for a post from its
// feature bundle.
func Seed(post feed.PostInput) int64 {
	var b strings.Builder
	b.WriteString(post.Content)
	b.WriteByte('|')
	b.WriteString(string(post.Media))
	b.WriteByte('|')
	b.WriteString(string(post.AuthorType))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(post.FollowerCount, 10))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(post.VideoDurationMs, 10))

	var h int32
	for _, u := range utf16.Encode([]rune(b.String())) {
		h = h*31 + int32(u)
	}
	if h < 0 {
		h = -h
	}
	return int64(h)
}

// Simulate produces the behavior scores for a post, seeding the generator
// from the post's own features.
func Simulate(post feed.PostInput) feed.BehaviorScores {
	return SimulateSeeded(post, Seed(post))
}

// SimulateSeeded is Simulate with an explicit seed, used by bulk mock
// generation to give each candidate an independent score stream.
func SimulateSeeded(post feed.PostInput, seed int64) feed.BehaviorScores {
	rng := &lcg{state: seed}

	contentLen := len(utf16.Encode([]rune(post.Content)))

	// Base engagement estimate from content length buckets.
	baseEngagement := 0.3
	switch {
	case contentLen > 200:
		baseEngagement += 0.1
	case contentLen > 100:
		baseEngagement += 0.05
	case contentLen < 20:
		baseEngagement -= 0.05
	}

	switch post.Media {
	case feed.MediaVideo:
		baseEngagement += 0.2
	case feed.MediaImage:
		baseEngagement += 0.15
	}

	var authorBoost float64
	switch post.AuthorType {
	case feed.AuthorInfluencer:
		authorBoost = 0.15
	case feed.AuthorVerified:
		authorBoost = 0.08
	}

	followerInfluence := math.Log10(float64(post.FollowerCount)+1) / 7

	// Content quality heuristics.
	var quality float64
	hasQuestion := strings.Contains(post.Content, "?")
	if hasQuestion {
		quality += 0.05
	}
	if manyBangRE.MatchString(post.Content) {
		quality -= 0.02
	}
	if len(mentionRE.FindAllString(post.Content, -1)) > 3 {
		quality -= 0.05
	}
	if len(hashtagRE.FindAllString(post.Content, -1)) > 5 {
		quality -= 0.08
	}
	switch emoji := countEmoji(post.Content); {
	case emoji > 5:
		quality -= 0.03
	case emoji > 0 && emoji <= 3:
		quality += 0.03
	}

	engagement := clamp01(baseEngagement + authorBoost + followerInfluence + quality)

	// Video duration sweet spot for the quality-view signal.
	var vqvBoost float64
	if post.Media == feed.MediaVideo && post.VideoDurationMs > 0 {
		switch sec := float64(post.VideoDurationMs) / 1000; {
		case sec >= 30 && sec <= 60:
			vqvBoost = 0.15
		case sec > 60 && sec <= 180:
			vqvBoost = 0.1
		default:
			vqvBoost = 0.05
		}
	}

	questionBonus := 0.0
	if hasQuestion {
		questionBonus = 0.1
	}

	scores := feed.BehaviorScores{
		Favorite:     clamp01(engagement + (rng.next()-0.5)*0.15),
		Reply:        clamp01(engagement*0.6 + (rng.next()-0.5)*0.1 + questionBonus),
		Retweet:      clamp01(engagement*0.7 + (rng.next()-0.5)*0.12),
		PhotoExpand:  0.05,
		Click:        clamp01(engagement*0.4 + (rng.next()-0.5)*0.1),
		ProfileClick: clamp01(engagement*0.3 + (rng.next()-0.5)*0.08 + authorBoost),
		VQV:          0.02,

		Share:            clamp01(engagement*0.4 + (rng.next()-0.5)*0.1),
		ShareViaDM:       clamp01(engagement*0.2 + (rng.next()-0.5)*0.08),
		ShareViaCopyLink: clamp01(engagement*0.25 + (rng.next()-0.5)*0.08),
		Dwell:            clamp01(0.3 + float64(contentLen)/1000 + (rng.next()-0.5)*0.1),
		Quote:            clamp01(engagement*0.3 + (rng.next()-0.5)*0.08),
		QuotedClick:      clamp01(0.2 + (rng.next()-0.5)*0.1),
		FollowAuthor:     clamp01(engagement*0.15 + authorBoost*0.5 + (rng.next()-0.5)*0.05),
	}
	if post.Media == feed.MediaImage {
		scores.PhotoExpand = clamp01(0.5 + (rng.next()-0.5)*0.2)
	}
	if post.Media == feed.MediaVideo {
		scores.VQV = clamp01(0.4 + vqvBoost + (rng.next()-0.5)*0.15)
	}

	// Negative signals: the more severe the action, the tighter the cap.
	baseNegative := 0.05 - quality*0.5
	scores.NotInterested = clamp(baseNegative+(rng.next()-0.5)*0.05, 0, 0.3)
	scores.BlockAuthor = clamp(baseNegative*0.3+(rng.next()-0.5)*0.02, 0, 0.15)
	scores.MuteAuthor = clamp(baseNegative*0.5+(rng.next()-0.5)*0.03, 0, 0.2)
	scores.Report = clamp(baseNegative*0.2+(rng.next()-0.5)*0.01, 0, 0.1)

	mediaBonus := 0.0
	if post.Media != feed.MediaNone {
		mediaBonus = 2000
	}
	scores.DwellTimeMs = math.Max(500, float64(contentLen)*50+mediaBonus+rng.next()*1000)

	return scores
}

// Aggregate combines behavior scores into a single weighted score. The VQV
// term is zeroed unless the video is longer than the configured minimum.
// When the negative signals drag the combined total below zero it is
// rescaled into a small positive band instead of going unbounded-negative,
// so the result after the offset is always >= 0.
func Aggregate(scores feed.BehaviorScores, weights WeightConfig, videoDurationMs int64) float64 {
	vqvWeight := 0.0
	if videoDurationMs > weights.MinVideoDurationMs {
		vqvWeight = weights.VQV
	}

	positive := scores.Favorite*weights.Favorite +
		scores.Reply*weights.Reply +
		scores.Retweet*weights.Retweet +
		scores.PhotoExpand*weights.PhotoExpand +
		scores.Click*weights.Click +
		scores.ProfileClick*weights.ProfileClick +
		scores.VQV*vqvWeight +
		scores.Share*weights.Share +
		scores.ShareViaDM*weights.ShareViaDM +
		scores.ShareViaCopyLink*weights.ShareViaCopyLink +
		scores.Dwell*weights.Dwell +
		scores.Quote*weights.Quote +
		scores.QuotedClick*weights.QuotedClick +
		scores.FollowAuthor*weights.FollowAuthor +
		scores.DwellTimeMs*weights.DwellTime

	negative := scores.NotInterested*weights.NotInterested +
		scores.BlockAuthor*weights.BlockAuthor +
		scores.MuteAuthor*weights.MuteAuthor +
		scores.Report*weights.Report

	combined := positive + negative
	negativeMagnitude := weights.negativeMagnitude()
	weightSum := weights.positiveSum(vqvWeight) + negativeMagnitude

	if weightSum == 0 {
		return math.Max(combined, 0)
	}
	if combined < 0 {
		return ((combined + negativeMagnitude) / weightSum) * weights.NegativeScoresOffset
	}
	return combined + weights.NegativeScoresOffset
}

func countEmoji(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x1F300 && r <= 0x1F9FF {
			n++
		}
	}
	return n
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
