package filter

import (
	"math/rand"
	"testing"
	"time"

	"github.com/featherlab/rankline/internal/feed"
	"github.com/featherlab/rankline/internal/snowflake"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testContext() feed.Context {
	return feed.Context{
		CurrentUserID:    "current_user",
		CurrentTime:      testNow,
		MaxTweetAgeHours: 48,
	}
}

func cand(id, author, content string) feed.Candidate {
	return feed.Candidate{ID: id, AuthorID: author, Content: content}
}

func ids(candidates []feed.Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.ID)
	}
	return out
}

func TestUnknownFilterIsNoOp(t *testing.T) {
	in := []feed.Candidate{cand("1", "a", "x"), cand("2", "b", "y")}

	result := Run("no_such_filter", in, testContext())
	if result.OutputCount != 2 || len(result.PassedCandidates) != 2 {
		t.Errorf("expected full pass-through, got output %d", result.OutputCount)
	}
	if len(result.FilteredCandidates) != 0 {
		t.Errorf("expected no drops, got %d", len(result.FilteredCandidates))
	}
}

func TestFilteredStatusIsMonotone(t *testing.T) {
	dropped := cand("1", "current_user", "mine")
	result := Run("self_tweet", []feed.Candidate{dropped}, testContext())
	if len(result.FilteredCandidates) != 1 {
		t.Fatal("expected self tweet to be dropped")
	}

	// Re-running any filter over the dropped candidate must not resurrect it.
	again := Run("core_data", result.FilteredCandidates, testContext())
	if len(again.PassedCandidates) != 0 {
		t.Error("a filtered candidate passed a later filter")
	}
	c := again.FilteredCandidates[0]
	if !c.Filtered || c.FilteredBy != "self_tweet" {
		t.Errorf("drop attribution changed: filtered=%v by=%q", c.Filtered, c.FilteredBy)
	}
}

func TestDropDuplicatesKeepsFirst(t *testing.T) {
	in := []feed.Candidate{cand("1", "a", "first"), cand("1", "b", "second"), cand("2", "c", "other")}

	result := Run("drop_duplicates", in, testContext())
	if len(result.PassedCandidates) != 2 {
		t.Fatalf("expected 2 passed, got %d", len(result.PassedCandidates))
	}
	if result.PassedCandidates[0].Content != "first" {
		t.Error("expected the first occurrence to survive")
	}
}

func TestCoreDataFilter(t *testing.T) {
	in := []feed.Candidate{
		cand("1", "a", "fine"),
		cand("2", "", "no author"),
		cand("3", "a", ""),
		cand("4", "a", "   "),
	}

	result := Run("core_data", in, testContext())
	if got := ids(result.PassedCandidates); len(got) != 1 || got[0] != "1" {
		t.Errorf("expected only candidate 1 to pass, got %v", got)
	}
}

func TestAgeFilter(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	fresh := cand(snowflake.FromAge(10, testNow, rng), "a", "fresh")
	stale := cand(snowflake.FromAge(72, testNow, rng), "a", "stale")
	broken := cand("tweet_abc", "a", "broken id")

	result := Run("age", []feed.Candidate{fresh, stale, broken}, testContext())
	if len(result.PassedCandidates) != 1 || result.PassedCandidates[0].Content != "fresh" {
		t.Errorf("expected only the fresh candidate, got %v", ids(result.PassedCandidates))
	}
	if result.Anomalies != 1 {
		t.Errorf("expected 1 anomaly, got %d", result.Anomalies)
	}
	for _, c := range result.FilteredCandidates {
		if c.ID == "tweet_abc" && c.FilterReason != "unparseable post id" {
			t.Errorf("unexpected reason for broken id: %q", c.FilterReason)
		}
	}
}

func TestRetweetDedup(t *testing.T) {
	original := cand("100", "a", "original")
	rt1 := feed.Candidate{ID: "101", AuthorID: "b", Content: "rt", IsRetweet: true, OriginalTweetID: "100"}
	rt2 := feed.Candidate{ID: "102", AuthorID: "c", Content: "rt again", IsRetweet: true, OriginalTweetID: "100"}

	result := Run("retweet_dedup", []feed.Candidate{original, rt1, rt2}, testContext())
	if got := ids(result.PassedCandidates); len(got) != 2 {
		t.Errorf("expected original + first retweet, got %v", got)
	}
	if got := ids(result.FilteredCandidates); len(got) != 1 || got[0] != "102" {
		t.Errorf("expected the later retweet dropped, got %v", got)
	}
}

func TestSubscriptionFilter(t *testing.T) {
	ctx := testContext()
	ctx.SubscribedAuthorIDs = []string{"paid_author"}

	open := cand("1", "a", "open")
	subscribed := feed.Candidate{ID: "2", AuthorID: "paid_author", Content: "sub", SubscriptionAuthorID: "paid_author"}
	locked := feed.Candidate{ID: "3", AuthorID: "other_author", Content: "locked", SubscriptionAuthorID: "other_author"}

	result := Run("subscription", []feed.Candidate{open, subscribed, locked}, ctx)
	if got := ids(result.PassedCandidates); len(got) != 2 {
		t.Errorf("expected open and subscribed to pass, got %v", got)
	}
}

func TestSeenTweetsUnionOfExactAndBloom(t *testing.T) {
	ctx := testContext()
	ctx.SeenTweetIDs = []string{"1"}
	ctx.BloomSeenTweetIDs = []string{"2"}

	in := []feed.Candidate{
		cand("1", "a", "seen exactly"),
		cand("2", "a", "seen probabilistically"),
		cand("3", "a", "unseen"),
		{ID: "4", AuthorID: "a", Content: "reply under seen thread", ConversationID: "1"},
		{ID: "5", AuthorID: "a", Content: "retweet of seen", IsRetweet: true, OriginalTweetID: "2"},
		{ID: "6", AuthorID: "a", Content: "descendant of seen", Ancestors: []string{"1", "9"}},
	}

	result := Run("seen_tweets", in, ctx)
	if got := ids(result.PassedCandidates); len(got) != 1 || got[0] != "3" {
		t.Errorf("expected only candidate 3 to pass, got %v", got)
	}
}

func TestServedTweetsOnlyOnBottomRequest(t *testing.T) {
	ctx := testContext()
	ctx.ServedTweetIDs = []string{"1"}
	in := []feed.Candidate{cand("1", "a", "served"), cand("2", "a", "new")}

	fresh := Run("served_tweets", in, ctx)
	if len(fresh.PassedCandidates) != 2 {
		t.Errorf("fresh load: expected everything to pass, got %v", ids(fresh.PassedCandidates))
	}

	ctx.IsBottomRequest = true
	paged := Run("served_tweets", in, ctx)
	if got := ids(paged.PassedCandidates); len(got) != 1 || got[0] != "2" {
		t.Errorf("pagination: expected only candidate 2, got %v", got)
	}
}

func TestMutedKeywordFilter(t *testing.T) {
	ctx := testContext()
	ctx.MutedKeywords = []string{"  Crypto ", ""}

	in := []feed.Candidate{
		cand("1", "a", "big CRYPTO news today"),
		cand("2", "a", "nothing to see"),
	}

	result := Run("muted_keyword", in, ctx)
	if got := ids(result.PassedCandidates); len(got) != 1 || got[0] != "2" {
		t.Errorf("expected keyword match dropped, got %v", got)
	}
}

func TestBlockedAndMutedAuthors(t *testing.T) {
	ctx := testContext()
	ctx.BlockedUsers = []string{"bad"}
	ctx.MutedUsers = []string{"quiet"}

	in := []feed.Candidate{cand("1", "bad", "x"), cand("2", "quiet", "y"), cand("3", "ok", "z")}

	afterBlocked := Run("blocked_author", in, ctx)
	afterMuted := Run("muted_author", afterBlocked.PassedCandidates, ctx)
	if got := ids(afterMuted.PassedCandidates); len(got) != 1 || got[0] != "3" {
		t.Errorf("expected only the unrestricted author, got %v", got)
	}
}

func TestVisibilityFilter(t *testing.T) {
	flagged := feed.Candidate{ID: "1", AuthorID: "a", Content: "x", VisibilityFiltered: true}
	clean := cand("2", "a", "y")

	result := Run("visibility", []feed.Candidate{flagged, clean}, testContext())
	if got := ids(result.PassedCandidates); len(got) != 1 || got[0] != "2" {
		t.Errorf("expected flagged candidate dropped, got %v", got)
	}
}

func TestConversationDedupKeepsHighestScore(t *testing.T) {
	scoredCand := func(id, convo string, score float64) feed.Candidate {
		return feed.Candidate{ID: id, AuthorID: "a", Content: "x", ConversationID: convo, FinalScore: feed.Float64(score)}
	}

	in := []feed.Candidate{
		scoredCand("1", "root", 0.9),
		scoredCand("2", "root", 0.95),
		scoredCand("3", "root", 0.7),
		scoredCand("4", "other", 0.1),
	}

	result := Run("dedup_conversation", in, testContext())
	if got := ids(result.PassedCandidates); len(got) != 2 {
		t.Fatalf("expected 2 survivors, got %v", got)
	}
	for _, c := range result.PassedCandidates {
		if c.ConversationID == "root" && c.ID != "2" {
			t.Errorf("expected the highest-scored candidate to survive, got %s", c.ID)
		}
	}
	if len(result.FilteredCandidates) != 2 {
		t.Errorf("expected 2 drops, got %d", len(result.FilteredCandidates))
	}
}

func TestRunPhaseSkipsDisabledFilters(t *testing.T) {
	ctx := testContext()
	in := []feed.Candidate{
		cand("1", "current_user", "self tweet"),
		cand("2", "", "missing author"),
	}

	// Only core_data enabled: the self tweet must survive.
	results, passed, dropped := RunPhase(PreScoring, in, ctx, []string{"core_data"})
	if len(results) != 1 || results[0].FilterID != "core_data" {
		t.Fatalf("expected exactly the core_data stage, got %d results", len(results))
	}
	if got := ids(passed); len(got) != 1 || got[0] != "1" {
		t.Errorf("expected the self tweet to pass, got %v", got)
	}
	if len(dropped) != 1 {
		t.Errorf("expected 1 drop, got %d", len(dropped))
	}
}

func TestRegistryPhases(t *testing.T) {
	pre := ByPhase(PreScoring)
	post := ByPhase(PostSelection)
	if len(pre)+len(post) != len(Registry) {
		t.Error("phases do not partition the registry")
	}
	if len(post) != 2 {
		t.Errorf("expected 2 post-selection filters, got %d", len(post))
	}
	if _, ok := Lookup("dedup_conversation"); !ok {
		t.Error("dedup_conversation missing from registry")
	}
	if len(AllIDs()) != len(Registry) {
		t.Error("AllIDs length mismatch")
	}
}
