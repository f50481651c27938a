// Package feed defines the data model shared by the ranking pipeline:
// candidates, their simulated behavior scores, the per-run filter context,
// and the step/result records every stage emits for inspection.
package feed

import "time"

type MediaType string

const (
	MediaNone  MediaType = "none"
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

type AuthorType string

const (
	AuthorNormal     AuthorType = "normal"
	AuthorVerified   AuthorType = "verified"
	AuthorInfluencer AuthorType = "influencer"
)

// ServedType records which retrieval source produced a candidate.
type ServedType string

const (
	ServedInNetwork        ServedType = "for_you_in_network"
	ServedPhoenixRetrieval ServedType = "for_you_phoenix_retrieval"
)

// StepCategory classifies a pipeline stage.
type StepCategory string

const (
	StepSource        StepCategory = "source"
	StepQueryHydrator StepCategory = "query_hydrator"
	StepHydrator      StepCategory = "hydrator"
	StepFilter        StepCategory = "filter"
	StepScorer        StepCategory = "scorer"
	StepSelector      StepCategory = "selector"
	StepRanker        StepCategory = "ranker"
)

// PostInput is the feature bundle the scoring simulator reads for a single
// post, used both by the standalone analyzer and by mock candidate generation.
type PostInput struct {
	Content         string     `json:"content"`
	Media           MediaType  `json:"media"`
	VideoDurationMs int64      `json:"video_duration_ms,omitempty"`
	AuthorType      AuthorType `json:"author_type"`
	FollowerCount   int64      `json:"follower_count"`
}

// BehaviorScores holds the 18 simulated behavior probabilities plus the
// expected dwell time. All probability fields are in [0,1]; DwellTimeMs is
// unbounded. Generated once per candidate and immutable afterwards.
type BehaviorScores struct {
	// Positive predictors
	Favorite         float64 `json:"favorite_score"`
	Reply            float64 `json:"reply_score"`
	Retweet          float64 `json:"retweet_score"`
	PhotoExpand      float64 `json:"photo_expand_score"`
	Click            float64 `json:"click_score"`
	ProfileClick     float64 `json:"profile_click_score"`
	VQV              float64 `json:"vqv_score"`
	Share            float64 `json:"share_score"`
	ShareViaDM       float64 `json:"share_via_dm_score"`
	ShareViaCopyLink float64 `json:"share_via_copy_link_score"`
	Dwell            float64 `json:"dwell_score"`
	Quote            float64 `json:"quote_score"`
	QuotedClick      float64 `json:"quoted_click_score"`
	FollowAuthor     float64 `json:"follow_author_score"`

	// Negative predictors
	NotInterested float64 `json:"not_interested_score"`
	BlockAuthor   float64 `json:"block_author_score"`
	MuteAuthor    float64 `json:"mute_author_score"`
	Report        float64 `json:"report_score"`

	// Continuous value
	DwellTimeMs float64 `json:"dwell_time"`
}

// Mean returns the unweighted mean over all 19 fields, a display-only
// aggregate used by the phoenix scorer stage.
func (s BehaviorScores) Mean() float64 {
	sum := s.Favorite + s.Reply + s.Retweet + s.PhotoExpand + s.Click +
		s.ProfileClick + s.VQV + s.Share + s.ShareViaDM + s.ShareViaCopyLink +
		s.Dwell + s.Quote + s.QuotedClick + s.FollowAuthor +
		s.NotInterested + s.BlockAuthor + s.MuteAuthor + s.Report +
		s.DwellTimeMs
	return sum / 19
}

// Candidate is one post flowing through the pipeline. Candidates are value
// types: stages derive new values and assign fresh score pointers, they
// never write through a pointer an earlier step may still hold.
type Candidate struct {
	ID              string `json:"id"`
	Content         string `json:"content"`
	AuthorID        string `json:"author_id"`
	AuthorName      string `json:"author_name,omitempty"`
	AuthorFollowers int64  `json:"author_followers"`
	AuthorVerified  bool   `json:"author_verified"`

	HasImage        bool  `json:"has_image"`
	HasVideo        bool  `json:"has_video"`
	VideoDurationMs int64 `json:"video_duration_ms,omitempty"`

	InNetwork  bool       `json:"in_network"`
	ServedType ServedType `json:"served_type,omitempty"`

	ConversationID  string   `json:"conversation_id,omitempty"`
	Ancestors       []string `json:"ancestors,omitempty"`
	IsRetweet       bool     `json:"is_retweet"`
	OriginalTweetID string   `json:"original_tweet_id,omitempty"`

	SubscriptionAuthorID string `json:"subscription_author_id,omitempty"`
	VisibilityFiltered   bool   `json:"visibility_filtered"`

	Scores BehaviorScores `json:"phoenix_scores"`

	// Derived scores, nil until the corresponding stage has run.
	WeightedScore          *float64 `json:"weighted_score,omitempty"`
	DiversityAdjustedScore *float64 `json:"diversity_adjusted_score,omitempty"`
	FinalScore             *float64 `json:"final_score,omitempty"`

	Filtered     bool   `json:"filtered"`
	FilteredBy   string `json:"filtered_by,omitempty"`
	FilterReason string `json:"filter_reason,omitempty"`
}

// Media reports the candidate's media type for scoring purposes.
func (c Candidate) Media() MediaType {
	switch {
	case c.HasVideo:
		return MediaVideo
	case c.HasImage:
		return MediaImage
	default:
		return MediaNone
	}
}

// Final returns the final score, or zero when the OON stage has not run.
func (c Candidate) Final() float64 {
	if c.FinalScore == nil {
		return 0
	}
	return *c.FinalScore
}

// Weighted returns the weighted score, or zero before the weighted stage.
func (c Candidate) Weighted() float64 {
	if c.WeightedScore == nil {
		return 0
	}
	return *c.WeightedScore
}

// BaseScore is what the OON stage multiplies: the diversity-adjusted score
// when present, otherwise the weighted score.
func (c Candidate) BaseScore() float64 {
	if c.DiversityAdjustedScore != nil {
		return *c.DiversityAdjustedScore
	}
	return c.Weighted()
}

// ConversationRoot identifies the thread a candidate belongs to: the first
// ancestor when known, else the conversation id, else the candidate itself.
func (c Candidate) ConversationRoot() string {
	if len(c.Ancestors) > 0 {
		return c.Ancestors[0]
	}
	if c.ConversationID != "" {
		return c.ConversationID
	}
	return c.ID
}

// Context carries the per-run user state filters read. All lists may be
// empty, which means no restriction. Read-only during a run.
type Context struct {
	CurrentUserID       string   `json:"current_user_id"`
	BlockedUsers        []string `json:"blocked_users,omitempty"`
	MutedUsers          []string `json:"muted_users,omitempty"`
	MutedKeywords       []string `json:"muted_keywords,omitempty"`
	FollowedAuthorIDs   []string `json:"followed_author_ids,omitempty"`
	SubscribedAuthorIDs []string `json:"subscribed_author_ids,omitempty"`

	SeenTweetIDs      []string `json:"seen_tweet_ids,omitempty"`
	BloomSeenTweetIDs []string `json:"bloom_seen_tweet_ids,omitempty"`
	ServedTweetIDs    []string `json:"served_tweet_ids,omitempty"`

	InNetworkOnly   bool `json:"in_network_only"`
	IsBottomRequest bool `json:"is_bottom_request"`

	CurrentTime      time.Time `json:"current_time"`
	MaxTweetAgeHours float64   `json:"max_tweet_age_hours"`
}

// Follows reports whether the current user follows the author.
func (ctx Context) Follows(authorID string) bool {
	return contains(ctx.FollowedAuthorIDs, authorID)
}

// Blocked reports whether the author is on the block list.
func (ctx Context) Blocked(authorID string) bool {
	return contains(ctx.BlockedUsers, authorID)
}

// Muted reports whether the author is on the mute list.
func (ctx Context) Muted(authorID string) bool {
	return contains(ctx.MutedUsers, authorID)
}

// SubscribedTo reports whether the user is subscribed to the author.
func (ctx Context) SubscribedTo(authorID string) bool {
	return contains(ctx.SubscribedAuthorIDs, authorID)
}

// Seen reports whether an id is in the exact-seen or probabilistic-seen set.
// The probabilistic set may produce false positives; that is acceptable for
// a seen filter, false negatives are not.
func (ctx Context) Seen(id string) bool {
	return contains(ctx.SeenTweetIDs, id) || contains(ctx.BloomSeenTweetIDs, id)
}

// ServedAlready reports whether an id was served earlier in this session.
func (ctx Context) ServedAlready(id string) bool {
	return contains(ctx.ServedTweetIDs, id)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// FilterResult records one filter stage's partition of its input.
type FilterResult struct {
	FilterID           string      `json:"filter_id"`
	FilterName         string      `json:"filter_name"`
	InputCount         int         `json:"input_count"`
	OutputCount        int         `json:"output_count"`
	Anomalies          int         `json:"anomalies,omitempty"`
	FilteredCandidates []Candidate `json:"filtered_candidates"`
	PassedCandidates   []Candidate `json:"passed_candidates"`
}

// CandidateScore is one candidate's entry in a ScorerResult. The named
// component breakdown differs per scorer stage.
type CandidateScore struct {
	CandidateID string             `json:"candidate_id"`
	Scores      map[string]float64 `json:"scores"`
	FinalScore  float64            `json:"final_score"`
}

// ScorerResult records one scorer stage's per-candidate output.
type ScorerResult struct {
	ScorerID        string           `json:"scorer_id"`
	ScorerName      string           `json:"scorer_name"`
	CandidateScores []CandidateScore `json:"candidate_scores"`
}

// PipelineStep is one record in the append-only run history.
type PipelineStep struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Category    StepCategory `json:"category"`
	InputCount  int          `json:"input_count"`
	OutputCount int          `json:"output_count"`

	// At most one of these is set, depending on the category.
	Filter *FilterResult `json:"filter,omitempty"`
	Scorer *ScorerResult `json:"scorer,omitempty"`
}

// Float64 returns a fresh pointer for derived score fields.
func Float64(v float64) *float64 { return &v }
