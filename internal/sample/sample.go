// Package sample generates deterministic mock candidate corpora and the
// canned ranking scenarios, standing in for the real retrieval layer.
package sample

import (
	"math/rand"
	"time"

	"github.com/featherlab/rankline/internal/feed"
	"github.com/featherlab/rankline/internal/scoring"
	"github.com/featherlab/rankline/internal/snowflake"
)

type author struct {
	id        string
	name      string
	followers int64
	verified  bool
}

var authors = []author{
	{id: "author_1", name: "Tech News", followers: 1500000, verified: true},
	{id: "author_2", name: "Sarah Dev", followers: 45000, verified: true},
	{id: "author_3", name: "AI Researcher", followers: 250000, verified: true},
	{id: "author_4", name: "John Doe", followers: 1200, verified: false},
	{id: "author_5", name: "StartupFounder", followers: 85000, verified: true},
	{id: "author_6", name: "Crypto Whale", followers: 500000, verified: false},
	{id: "author_7", name: "Designer Pro", followers: 120000, verified: true},
	{id: "author_8", name: "Data Scientist", followers: 75000, verified: true},
	{id: "author_9", name: "Meme Lord", followers: 350000, verified: false},
	{id: "author_10", name: "News Anchor", followers: 2000000, verified: true},
}

type content struct {
	text            string
	hasImage        bool
	hasVideo        bool
	videoDurationMs int64
}

var contents = []content{
	{text: "Just shipped a new feature! 🚀 The team worked incredibly hard on this. Check out the demo at the link below.", hasImage: true},
	{text: "Breaking: Major tech company announces layoffs affecting 10% of workforce. More details coming soon."},
	{text: "Hot take: The future of AI is not about replacing humans, but augmenting human capabilities. What do you think?"},
	{text: "New tutorial: Building a recommendation system from scratch. 45 minute video walkthrough.", hasVideo: true, videoDurationMs: 2700000},
	{text: "This chart shows why we need to pay attention to climate change NOW.", hasImage: true},
	{text: "I interviewed 100 senior engineers. Here are the 5 skills they all have in common: 🧵"},
	{text: "Just released my new open source project! Would love your feedback.", hasImage: true},
	{text: "The market is going crazy today. Here's my analysis on what's happening.", hasImage: true},
	{text: "Can someone explain why my code works in development but not in production? 😭"},
	{text: "Beautiful sunset from my office window today 🌅", hasImage: true},
	{text: "New research paper just dropped! We achieved state-of-the-art results on 3 benchmarks.", hasImage: true},
	{text: "Quick thread on the most common mistakes I see in code reviews: 👇"},
	{text: "Anyone else feeling burned out? Taking a mental health day today."},
	{text: "Live demo of our new product! Come join us.", hasVideo: true, videoDurationMs: 45000},
	{text: "This meme is too accurate 😂💀", hasImage: true},
	{text: "10 years ago I quit my job to start a company. Today we just hit $1B valuation. Never give up on your dreams."},
	{text: "Unpopular opinion: TypeScript is overrated for small projects."},
	{text: "Just discovered this amazing productivity hack that saves me 2 hours every day!"},
	{text: "Building in public, day 47: Finally got my first paying customer! 🎉", hasImage: true},
	{text: "The new iPhone is disappointing. Here's why I'm switching to Android."},
	{text: "PSA: There's a critical security vulnerability in a popular npm package. Update now!"},
	{text: "My cat just figured out how to open doors. We're doomed.", hasImage: true},
	{text: "Attended an amazing conference today. The future of tech is bright!", hasImage: true},
	{text: "Why do recruiters always reach out on Friday afternoons? 🤔"},
	{text: "Just finished reading \"Clean Code\". Every developer should read this book.", hasImage: true},
}

// Scenario is a canned candidate-corpus recipe.
type Scenario struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	CandidateCount int     `json:"candidate_count"`
	InNetworkRatio float64 `json:"in_network_ratio"`
}

// Scenarios lists the built-in recipes.
var Scenarios = []Scenario{
	{ID: "following_feed", Name: "Following Feed", Description: "Timeline with mostly followed accounts", CandidateCount: 30, InNetworkRatio: 0.8},
	{ID: "for_you", Name: "For You", Description: "Algorithmic recommendations mix", CandidateCount: 50, InNetworkRatio: 0.4},
	{ID: "trending", Name: "Trending Topics", Description: "Popular content from around the platform", CandidateCount: 40, InNetworkRatio: 0.2},
}

// ScenarioByID finds a scenario by id.
func ScenarioByID(id string) (Scenario, bool) {
	for _, s := range Scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}

// Candidate builds the mock candidate at a given index. The author and
// content cycle through the fixed tables; the behavior scores are seeded by
// index so the same index always yields the same scores.
func Candidate(index int, hoursAgo float64, inNetwork bool, now time.Time, rng *rand.Rand) feed.Candidate {
	a := authors[index%len(authors)]
	c := contents[index%len(contents)]

	input := feed.PostInput{
		Content:         c.text,
		Media:           mediaOf(c),
		VideoDurationMs: c.videoDurationMs,
		AuthorType:      authorTypeOf(a),
		FollowerCount:   a.followers,
	}

	return feed.Candidate{
		ID:              snowflake.FromAge(hoursAgo, now, rng),
		Content:         c.text,
		AuthorID:        a.id,
		AuthorName:      a.name,
		AuthorFollowers: a.followers,
		AuthorVerified:  a.verified,
		HasImage:        c.hasImage,
		HasVideo:        c.hasVideo,
		VideoDurationMs: c.videoDurationMs,
		InNetwork:       inNetwork,
		IsRetweet:       rng.Float64() > 0.85,
		Scores:          scoring.SimulateSeeded(input, int64(index)*12345),
	}
}

// Generate builds a corpus of count candidates with approximately the given
// in-network ratio, ages spread over 0-120 hours. The same seed reproduces
// the same corpus.
func Generate(count int, inNetworkRatio float64, seed int64, now time.Time) []feed.Candidate {
	rng := rand.New(rand.NewSource(seed))
	out := make([]feed.Candidate, 0, count)
	for i := 0; i < count; i++ {
		inNetwork := rng.Float64() < inNetworkRatio
		hoursAgo := rng.Float64() * 120
		out = append(out, Candidate(i, hoursAgo, inNetwork, now, rng))
	}
	return out
}

// ForScenario builds the corpus a scenario describes.
func ForScenario(s Scenario, seed int64, now time.Time) []feed.Candidate {
	return Generate(s.CandidateCount, s.InNetworkRatio, seed, now)
}

// DefaultContext is the baseline filter context for simulated runs.
func DefaultContext(now time.Time) feed.Context {
	return feed.Context{
		CurrentUserID:     "current_user",
		BlockedUsers:      []string{"blocked_author_1"},
		MutedUsers:        []string{"muted_author_1"},
		FollowedAuthorIDs: []string{"author_1", "author_2", "author_3", "author_5", "author_8"},
		CurrentTime:       now,
		MaxTweetAgeHours:  48,
	}
}

func mediaOf(c content) feed.MediaType {
	switch {
	case c.hasVideo:
		return feed.MediaVideo
	case c.hasImage:
		return feed.MediaImage
	default:
		return feed.MediaNone
	}
}

func authorTypeOf(a author) feed.AuthorType {
	switch {
	case a.verified && a.followers > 100000:
		return feed.AuthorInfluencer
	case a.verified:
		return feed.AuthorVerified
	default:
		return feed.AuthorNormal
	}
}
