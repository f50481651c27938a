package filter

import (
	"strings"

	"github.com/featherlab/rankline/internal/feed"
	"github.com/featherlab/rankline/internal/snowflake"
)

// verdict is one dropped candidate plus an optional override of the default
// drop reason (the filter description).
type verdict struct {
	cand   feed.Candidate
	reason string
}

// stageFunc partitions the live (not yet filtered) candidates. Implementations
// must not mutate their input; dropped candidates are marked by the evaluator.
type stageFunc func(live []feed.Candidate, ctx feed.Context) (passed []feed.Candidate, dropped []verdict, anomalies int)

// predicate lifts a per-candidate keep/drop decision into a stageFunc.
func predicate(keep func(c feed.Candidate, ctx feed.Context) bool) stageFunc {
	return func(live []feed.Candidate, ctx feed.Context) ([]feed.Candidate, []verdict, int) {
		passed := make([]feed.Candidate, 0, len(live))
		var dropped []verdict
		for _, c := range live {
			if keep(c, ctx) {
				passed = append(passed, c)
			} else {
				dropped = append(dropped, verdict{cand: c})
			}
		}
		return passed, dropped, 0
	}
}

var stageFuncs = map[string]stageFunc{
	"drop_duplicates": dropDuplicates,
	"core_data": predicate(func(c feed.Candidate, _ feed.Context) bool {
		return strings.TrimSpace(c.AuthorID) != "" && strings.TrimSpace(c.Content) != ""
	}),
	"age":           ageFilter,
	"self_tweet":    predicate(func(c feed.Candidate, ctx feed.Context) bool { return c.AuthorID != ctx.CurrentUserID }),
	"retweet_dedup": retweetDedup,
	"subscription": predicate(func(c feed.Candidate, ctx feed.Context) bool {
		return c.SubscriptionAuthorID == "" || ctx.SubscribedTo(c.SubscriptionAuthorID)
	}),
	"seen_tweets":   predicate(notSeen),
	"served_tweets": servedTweets,
	"muted_keyword": mutedKeyword,
	"blocked_author": predicate(func(c feed.Candidate, ctx feed.Context) bool {
		return !ctx.Blocked(c.AuthorID)
	}),
	"muted_author": predicate(func(c feed.Candidate, ctx feed.Context) bool {
		return !ctx.Muted(c.AuthorID)
	}),

	"visibility": predicate(func(c feed.Candidate, _ feed.Context) bool {
		return !c.VisibilityFiltered
	}),
	"dedup_conversation": conversationDedup,
}

// dropDuplicates keeps the first occurrence of each candidate id.
func dropDuplicates(live []feed.Candidate, _ feed.Context) ([]feed.Candidate, []verdict, int) {
	seen := make(map[string]struct{}, len(live))
	passed := make([]feed.Candidate, 0, len(live))
	var dropped []verdict
	for _, c := range live {
		if _, dup := seen[c.ID]; dup {
			dropped = append(dropped, verdict{cand: c, reason: "duplicate candidate id"})
			continue
		}
		seen[c.ID] = struct{}{}
		passed = append(passed, c)
	}
	return passed, dropped, 0
}

// ageFilter drops candidates older than the context limit. Candidates whose
// id cannot be parsed fail closed and are counted as anomalies.
func ageFilter(live []feed.Candidate, ctx feed.Context) ([]feed.Candidate, []verdict, int) {
	passed := make([]feed.Candidate, 0, len(live))
	var dropped []verdict
	anomalies := 0
	for _, c := range live {
		age, err := snowflake.AgeHours(c.ID, ctx.CurrentTime)
		if err != nil {
			dropped = append(dropped, verdict{cand: c, reason: "unparseable post id"})
			anomalies++
			continue
		}
		if age > ctx.MaxTweetAgeHours {
			dropped = append(dropped, verdict{cand: c})
			continue
		}
		passed = append(passed, c)
	}
	return passed, dropped, anomalies
}

// retweetDedup keeps only the first appearance of each original post: a
// retweet is dropped when its original, or an earlier retweet of it, has
// already passed through.
func retweetDedup(live []feed.Candidate, _ feed.Context) ([]feed.Candidate, []verdict, int) {
	seen := make(map[string]struct{}, len(live))
	passed := make([]feed.Candidate, 0, len(live))
	var dropped []verdict
	for _, c := range live {
		if c.IsRetweet && c.OriginalTweetID != "" {
			if _, dup := seen[c.OriginalTweetID]; dup {
				dropped = append(dropped, verdict{cand: c, reason: "repeated retweet of " + c.OriginalTweetID})
				continue
			}
			seen[c.OriginalTweetID] = struct{}{}
		} else {
			seen[c.ID] = struct{}{}
		}
		passed = append(passed, c)
	}
	return passed, dropped, 0
}

// notSeen rejects a candidate when its own id, its original or conversation
// id, or any ancestor intersects the seen sets. The probabilistic set is
// allowed to over-report: a false positive costs one candidate, a false
// negative shows the user a repeat.
func notSeen(c feed.Candidate, ctx feed.Context) bool {
	if ctx.Seen(c.ID) {
		return false
	}
	if c.OriginalTweetID != "" && ctx.Seen(c.OriginalTweetID) {
		return false
	}
	if c.ConversationID != "" && ctx.Seen(c.ConversationID) {
		return false
	}
	for _, ancestor := range c.Ancestors {
		if ctx.Seen(ancestor) {
			return false
		}
	}
	return true
}

// servedTweets only applies on pagination requests; a fresh timeline load
// passes everything through.
func servedTweets(live []feed.Candidate, ctx feed.Context) ([]feed.Candidate, []verdict, int) {
	if !ctx.IsBottomRequest {
		return live, nil, 0
	}
	return predicate(func(c feed.Candidate, ctx feed.Context) bool {
		return !ctx.ServedAlready(c.ID)
	})(live, ctx)
}

// mutedKeyword does a normalized substring match against the muted keyword
// list. An empty list means no restriction.
func mutedKeyword(live []feed.Candidate, ctx feed.Context) ([]feed.Candidate, []verdict, int) {
	keywords := make([]string, 0, len(ctx.MutedKeywords))
	for _, kw := range ctx.MutedKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		return live, nil, 0
	}

	passed := make([]feed.Candidate, 0, len(live))
	var dropped []verdict
	for _, c := range live {
		content := strings.ToLower(c.Content)
		hit := ""
		for _, kw := range keywords {
			if strings.Contains(content, kw) {
				hit = kw
				break
			}
		}
		if hit != "" {
			dropped = append(dropped, verdict{cand: c, reason: "matched muted keyword " + hit})
		} else {
			passed = append(passed, c)
		}
	}
	return passed, dropped, 0
}

// conversationDedup keeps the highest-scored candidate per conversation
// root. When a later candidate in the same conversation outscores the one
// currently kept, they swap: the new one takes the kept slot and the old
// one is dropped.
func conversationDedup(live []feed.Candidate, _ feed.Context) ([]feed.Candidate, []verdict, int) {
	passed := make([]feed.Candidate, 0, len(live))
	slot := make(map[string]int, len(live)) // conversation root -> index in passed
	var dropped []verdict

	for _, c := range live {
		root := c.ConversationRoot()
		i, exists := slot[root]
		if !exists {
			slot[root] = len(passed)
			passed = append(passed, c)
			continue
		}
		kept := passed[i]
		if c.Final() > kept.Final() {
			passed[i] = c
			dropped = append(dropped, verdict{cand: kept, reason: "outscored within conversation " + root})
		} else {
			dropped = append(dropped, verdict{cand: c, reason: "duplicate conversation " + root})
		}
	}
	return passed, dropped, 0
}
