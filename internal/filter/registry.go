// Package filter holds the ordered catalog of candidate filters and the
// evaluator that applies them. Filters run in two phases: pre-scoring
// (before any scores exist) and post-selection (after top-K selection).
// Each filter partitions its input into passed and dropped candidates;
// a candidate dropped once stays dropped for the rest of the run.
package filter

// Phase says where in the pipeline a filter runs.
type Phase string

const (
	PreScoring    Phase = "pre_scoring"
	PostSelection Phase = "post_selection"
)

// Config is the metadata for one filter stage.
type Config struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Phase       Phase  `json:"phase"`
}

// Registry is the ordered filter catalog. Order matters: chains run
// registry order, and the dedup filters assume they see candidates before
// the cheaper per-candidate checks have thinned the set.
//
// The upstream system also carries a conversation-depth filter, but its
// reference behavior is a flat random rejection with no depth input, so it
// is not reproduced here.
var Registry = []Config{
	{ID: "drop_duplicates", Name: "DropDuplicatesFilter", Description: "Remove candidates with duplicate ids", Phase: PreScoring},
	{ID: "core_data", Name: "CoreDataFilter", Description: "Remove candidates missing author id or content", Phase: PreScoring},
	{ID: "age", Name: "AgeFilter", Description: "Remove candidates older than the context age limit", Phase: PreScoring},
	{ID: "self_tweet", Name: "SelfTweetFilter", Description: "Remove the user's own posts from the timeline", Phase: PreScoring},
	{ID: "retweet_dedup", Name: "RetweetDedupFilter", Description: "Remove repeated retweets of the same original post", Phase: PreScoring},
	{ID: "subscription", Name: "SubscriptionFilter", Description: "Remove subscription-only content the user is not subscribed to", Phase: PreScoring},
	{ID: "seen_tweets", Name: "SeenTweetsFilter", Description: "Remove posts the user has already seen", Phase: PreScoring},
	{ID: "served_tweets", Name: "ServedTweetsFilter", Description: "Remove posts already served this session on pagination requests", Phase: PreScoring},
	{ID: "muted_keyword", Name: "MutedKeywordFilter", Description: "Remove posts matching a muted keyword", Phase: PreScoring},
	{ID: "blocked_author", Name: "BlockedAuthorFilter", Description: "Remove posts from blocked authors", Phase: PreScoring},
	{ID: "muted_author", Name: "MutedAuthorFilter", Description: "Remove posts from muted authors", Phase: PreScoring},

	{ID: "visibility", Name: "VisibilityFilter", Description: "Remove posts flagged by visibility filtering", Phase: PostSelection},
	{ID: "dedup_conversation", Name: "ConversationDedupFilter", Description: "Keep only the best-scored post per conversation", Phase: PostSelection},
}

// ByPhase returns the registry entries for one phase, in registry order.
func ByPhase(phase Phase) []Config {
	var out []Config
	for _, cfg := range Registry {
		if cfg.Phase == phase {
			out = append(out, cfg)
		}
	}
	return out
}

// Lookup finds a filter config by id.
func Lookup(id string) (Config, bool) {
	for _, cfg := range Registry {
		if cfg.ID == id {
			return cfg, true
		}
	}
	return Config{}, false
}

// AllIDs returns every registered filter id in order.
func AllIDs() []string {
	ids := make([]string, 0, len(Registry))
	for _, cfg := range Registry {
		ids = append(ids, cfg.ID)
	}
	return ids
}
