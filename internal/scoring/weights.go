package scoring

import "fmt"

// WeightConfig defines how the 18 behavior probabilities and the dwell-time
// estimate combine into a single weighted score, plus the diversity and
// network-balance parameters the later scorer stages read. Negative weights
// are stored as negative numbers.
type WeightConfig struct {
	// Positive weights
	Favorite         float64 `json:"favorite_weight" yaml:"favorite"`
	Reply            float64 `json:"reply_weight" yaml:"reply"`
	Retweet          float64 `json:"retweet_weight" yaml:"retweet"`
	PhotoExpand      float64 `json:"photo_expand_weight" yaml:"photo_expand"`
	Click            float64 `json:"click_weight" yaml:"click"`
	ProfileClick     float64 `json:"profile_click_weight" yaml:"profile_click"`
	VQV              float64 `json:"vqv_weight" yaml:"vqv"`
	Share            float64 `json:"share_weight" yaml:"share"`
	ShareViaDM       float64 `json:"share_via_dm_weight" yaml:"share_via_dm"`
	ShareViaCopyLink float64 `json:"share_via_copy_link_weight" yaml:"share_via_copy_link"`
	Dwell            float64 `json:"dwell_weight" yaml:"dwell"`
	Quote            float64 `json:"quote_weight" yaml:"quote"`
	QuotedClick      float64 `json:"quoted_click_weight" yaml:"quoted_click"`
	FollowAuthor     float64 `json:"follow_author_weight" yaml:"follow_author"`

	// Negative weights (penalties, expressed as negative numbers)
	NotInterested float64 `json:"not_interested_weight" yaml:"not_interested"`
	BlockAuthor   float64 `json:"block_author_weight" yaml:"block_author"`
	MuteAuthor    float64 `json:"mute_author_weight" yaml:"mute_author"`
	Report        float64 `json:"report_weight" yaml:"report"`

	// Per-millisecond dwell time weight
	DwellTime float64 `json:"dwell_time_weight" yaml:"dwell_time"`

	// Weighted scorer controls
	MinVideoDurationMs   int64   `json:"min_video_duration_ms" yaml:"min_video_duration_ms"`
	NegativeScoresOffset float64 `json:"negative_scores_offset" yaml:"negative_scores_offset"`

	// Author diversity parameters
	AuthorDiversityDecay float64 `json:"author_diversity_decay" yaml:"author_diversity_decay"`
	AuthorDiversityFloor float64 `json:"author_diversity_floor" yaml:"author_diversity_floor"`

	// In/out-of-network balance
	OONWeightFactor float64 `json:"oon_weight_factor" yaml:"oon_weight_factor"`
}

// DefaultWeights returns the stock weight distribution.
func DefaultWeights() WeightConfig {
	return WeightConfig{
		Favorite:         1.0,
		Reply:            0.5,
		Retweet:          2.0,
		PhotoExpand:      0.3,
		Click:            0.3,
		ProfileClick:     0.5,
		VQV:              1.5,
		Share:            1.0,
		ShareViaDM:       0.8,
		ShareViaCopyLink: 0.6,
		Dwell:            0.5,
		Quote:            1.5,
		QuotedClick:      0.4,
		FollowAuthor:     3.0,

		NotInterested: -2.0,
		BlockAuthor:   -5.0,
		MuteAuthor:    -3.0,
		Report:        -10.0,
		DwellTime:     0.0003,

		MinVideoDurationMs:   15000,
		NegativeScoresOffset: 1.0,

		AuthorDiversityDecay: 0.8,
		AuthorDiversityFloor: 0.2,

		OONWeightFactor: 0.7,
	}
}

// Validate checks the structural parameters. Individual behavior weights are
// deliberately unvalidated: callers may experiment with any real values,
// including zero and negative.
func (w WeightConfig) Validate() error {
	if w.AuthorDiversityDecay <= 0 || w.AuthorDiversityDecay > 1 {
		return fmt.Errorf("author diversity decay %.4f out of range (0, 1]", w.AuthorDiversityDecay)
	}
	if w.AuthorDiversityFloor < 0 || w.AuthorDiversityFloor >= 1 {
		return fmt.Errorf("author diversity floor %.4f out of range [0, 1)", w.AuthorDiversityFloor)
	}
	if w.OONWeightFactor <= 0 {
		return fmt.Errorf("oon weight factor %.4f must be positive", w.OONWeightFactor)
	}
	return nil
}

// positiveSum returns the sum of positive weights with the effective VQV
// weight substituted, plus the dwell-time weight magnitude.
func (w WeightConfig) positiveSum(vqvWeight float64) float64 {
	return w.Favorite + w.Reply + w.Retweet + w.PhotoExpand + w.Click +
		w.ProfileClick + vqvWeight + w.Share + w.ShareViaDM +
		w.ShareViaCopyLink + w.Dwell + w.Quote + w.QuotedClick +
		w.FollowAuthor + abs(w.DwellTime)
}

// negativeMagnitude returns the combined magnitude of the negative weights.
func (w WeightConfig) negativeMagnitude() float64 {
	return abs(w.NotInterested) + abs(w.BlockAuthor) + abs(w.MuteAuthor) + abs(w.Report)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
