// Package pipeline orchestrates a full ranking run: source retrieval,
// hydration, the pre-scoring filter chain, the scorer chain, top-K
// selection, post-selection filters, and the final sort. A run is a pure
// function of (candidates, context, config); the only state lives in the
// Runner, which advances one stage at a time so callers can replay a run
// incrementally. Draining a Runner is exactly what Run does, so eager and
// step-by-step execution cannot diverge.
package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/featherlab/rankline/internal/feed"
	"github.com/featherlab/rankline/internal/filter"
	"github.com/featherlab/rankline/internal/scorer"
	"github.com/featherlab/rankline/internal/scoring"
)

// Config selects which filters run, the scoring weights, and how many
// candidates survive selection. Filter ids that match nothing in the
// registry are silently ignored; scorers always run.
type Config struct {
	EnabledFilters []string             `json:"enabled_filters"`
	Weights        scoring.WeightConfig `json:"weights"`
	TopK           int                  `json:"top_k"`
}

// DefaultConfig enables every registered filter with stock weights.
func DefaultConfig() Config {
	return Config{
		EnabledFilters: filter.AllIDs(),
		Weights:        scoring.DefaultWeights(),
		TopK:           20,
	}
}

// StepResult is one stage's record plus the working candidate set at that
// stage boundary.
type StepResult struct {
	Step       feed.PipelineStep `json:"step"`
	Candidates []feed.Candidate  `json:"candidates"`
}

// Result is the outcome of a complete run.
type Result struct {
	Steps            []feed.PipelineStep `json:"steps"`
	InitialCount     int                 `json:"initial_count"`
	AfterFilterCount int                 `json:"after_filter_count"`
	FinalCount       int                 `json:"final_count"`
	FinalCandidates  []feed.Candidate    `json:"final_candidates"`
	// AllCandidates is the final ranking plus everything dropped along the
	// way, for inspection: ranked, then post-selection drops, pre-scoring
	// drops, and scored candidates that missed the top-K cut.
	AllCandidates []feed.Candidate `json:"all_candidates"`
}

// blockedTerms drive the visibility hydrator's content scan.
var blockedTerms = []string{"gore", "violence", "graphic", "explicit scam"}

type stage struct {
	id  string
	run func(r *Runner) StepResult
}

// Runner executes a pipeline one stage at a time. It is single-use and not
// safe for concurrent use; run each scenario on its own Runner.
type Runner struct {
	ctx feed.Context
	cfg Config

	stages []stage
	pos    int
	steps  []feed.PipelineStep

	raw     []feed.Candidate
	current []feed.Candidate

	thunder []feed.Candidate
	phoenix []feed.Candidate

	droppedPre  []feed.Candidate
	droppedPost []feed.Candidate
	scored      []feed.Candidate
	selected    []feed.Candidate

	afterFilterCount int
}

// NewRunner validates the inputs and lays out the fixed stage sequence.
func NewRunner(candidates []feed.Candidate, ctx feed.Context, cfg Config) (*Runner, error) {
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("pipeline config: top_k must be positive, got %d", cfg.TopK)
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}
	if ctx.CurrentTime.IsZero() {
		return nil, fmt.Errorf("filter context: current time is required")
	}

	enabled := make(map[string]struct{}, len(cfg.EnabledFilters))
	for _, id := range cfg.EnabledFilters {
		enabled[id] = struct{}{}
	}
	if _, ok := enabled["age"]; ok && ctx.MaxTweetAgeHours <= 0 {
		return nil, fmt.Errorf("filter context: max tweet age must be positive when the age filter is enabled")
	}

	raw := make([]feed.Candidate, len(candidates))
	copy(raw, candidates)

	r := &Runner{
		ctx:     ctx,
		cfg:     cfg,
		raw:     raw,
		current: raw,
	}
	r.buildStages(enabled)
	return r, nil
}

func (r *Runner) buildStages(enabled map[string]struct{}) {
	r.stages = []stage{
		{id: "candidate_pool", run: (*Runner).stageCandidatePool},
		{id: "query_hydrator_user_action_seq", run: func(r *Runner) StepResult {
			return r.queryHydratorStep("query_hydrator_user_action_seq", "UserActionSeqQueryHydrator",
				"Hydrate the user action sequence for retrieval and ranking")
		}},
		{id: "query_hydrator_user_features", run: func(r *Runner) StepResult {
			return r.queryHydratorStep("query_hydrator_user_features", "UserFeaturesQueryHydrator",
				"Hydrate user features: follow graph, mute/block lists, subscriptions")
		}},
		{id: "source_thunder", run: (*Runner).stageSourceThunder},
		{id: "source_phoenix", run: (*Runner).stageSourcePhoenix},
		{id: "source_merge", run: (*Runner).stageSourceMerge},
		{id: "hydrator_in_network", run: (*Runner).stageHydrateInNetwork},
		{id: "hydrator_core_data", run: (*Runner).stageHydrateCoreData},
		{id: "hydrator_video_duration", run: (*Runner).stageHydrateVideoDuration},
		{id: "hydrator_subscription", run: (*Runner).stageHydrateSubscription},
		{id: "hydrator_vf", run: (*Runner).stageHydrateVisibility},
	}

	for _, cfg := range filter.ByPhase(filter.PreScoring) {
		if _, ok := enabled[cfg.ID]; !ok {
			continue
		}
		cfg := cfg
		r.stages = append(r.stages, stage{id: cfg.ID, run: func(r *Runner) StepResult {
			return r.filterStep(cfg, &r.droppedPre)
		}})
	}

	r.stages = append(r.stages,
		stage{id: "phoenix", run: (*Runner).stagePhoenixScorer},
		stage{id: "weighted", run: (*Runner).stageWeightedScorer},
		stage{id: "author_diversity", run: (*Runner).stageDiversityScorer},
		stage{id: "oon", run: (*Runner).stageOONScorer},
		stage{id: "selector_top_k", run: (*Runner).stageSelector},
	)

	for _, cfg := range filter.ByPhase(filter.PostSelection) {
		if _, ok := enabled[cfg.ID]; !ok {
			continue
		}
		cfg := cfg
		r.stages = append(r.stages, stage{id: cfg.ID, run: func(r *Runner) StepResult {
			return r.filterStep(cfg, &r.droppedPost)
		}})
	}

	r.stages = append(r.stages, stage{id: "final_ranking", run: (*Runner).stageFinalRanking})
}

// Step advances exactly one stage. The second return is false once the
// pipeline is exhausted. Abandoning a Runner mid-run needs no cleanup.
func (r *Runner) Step() (StepResult, bool) {
	if r.pos >= len(r.stages) {
		return StepResult{}, false
	}
	res := r.stages[r.pos].run(r)
	r.pos++
	r.steps = append(r.steps, res.Step)
	return res, true
}

// Done reports whether every stage has run.
func (r *Runner) Done() bool { return r.pos >= len(r.stages) }

// Result assembles the run outcome. Valid once Done.
func (r *Runner) Result() Result {
	selectedIDs := make(map[string]struct{}, len(r.selected))
	for _, c := range r.selected {
		selectedIDs[c.ID] = struct{}{}
	}

	all := make([]feed.Candidate, 0, len(r.raw))
	all = append(all, r.current...)
	all = append(all, r.droppedPost...)
	all = append(all, r.droppedPre...)
	for _, c := range r.scored {
		if _, ok := selectedIDs[c.ID]; !ok {
			all = append(all, c)
		}
	}

	return Result{
		Steps:            r.steps,
		InitialCount:     len(r.raw),
		AfterFilterCount: r.afterFilterCount,
		FinalCount:       len(r.current),
		FinalCandidates:  r.current,
		AllCandidates:    all,
	}
}

// Run executes the whole pipeline eagerly by draining a fresh Runner.
func Run(candidates []feed.Candidate, ctx feed.Context, cfg Config) (Result, error) {
	r, err := NewRunner(candidates, ctx, cfg)
	if err != nil {
		return Result{}, err
	}
	for {
		if _, ok := r.Step(); !ok {
			break
		}
	}
	return r.Result(), nil
}

// --- stage implementations ---

func (r *Runner) stageCandidatePool() StepResult {
	return r.stepResult(feed.PipelineStep{
		ID:          "candidate_pool",
		Name:        "Candidate Pool",
		Description: "Initial raw candidate corpus",
		Category:    feed.StepSource,
		InputCount:  len(r.raw),
		OutputCount: len(r.raw),
	}, r.current)
}

// Query hydrators enrich only the request context; the candidate set flows
// through untouched.
func (r *Runner) queryHydratorStep(id, name, description string) StepResult {
	return r.stepResult(feed.PipelineStep{
		ID:          id,
		Name:        name,
		Description: description,
		Category:    feed.StepQueryHydrator,
		InputCount:  len(r.current),
		OutputCount: len(r.current),
	}, r.current)
}

// stageSourceThunder retrieves the in-network slice of the pool: posts
// already flagged in-network, the user's own, or those from followed
// authors. Both sources read the raw pool; merge reconciles them.
func (r *Runner) stageSourceThunder() StepResult {
	r.thunder = nil
	for _, c := range r.current {
		if !c.InNetwork && c.AuthorID != r.ctx.CurrentUserID && !r.ctx.Follows(c.AuthorID) {
			continue
		}
		c.InNetwork = true
		c.ServedType = feed.ServedInNetwork
		c.Filtered = false
		c.FilteredBy = ""
		c.FilterReason = ""
		r.thunder = append(r.thunder, c)
	}
	return r.stepResult(feed.PipelineStep{
		ID:          "source_thunder",
		Name:        "ThunderSource",
		Description: "Retrieve in-network posts",
		Category:    feed.StepSource,
		InputCount:  len(r.current),
		OutputCount: len(r.thunder),
	}, r.thunder)
}

// stageSourcePhoenix retrieves the exploratory out-of-network slice, or
// nothing when the context restricts the run to in-network content.
func (r *Runner) stageSourcePhoenix() StepResult {
	r.phoenix = nil
	if !r.ctx.InNetworkOnly {
		for _, c := range r.current {
			if c.InNetwork {
				continue
			}
			c.ServedType = feed.ServedPhoenixRetrieval
			c.Filtered = false
			c.FilteredBy = ""
			c.FilterReason = ""
			r.phoenix = append(r.phoenix, c)
		}
	}
	return r.stepResult(feed.PipelineStep{
		ID:          "source_phoenix",
		Name:        "PhoenixSource",
		Description: "Retrieve out-of-network posts",
		Category:    feed.StepSource,
		InputCount:  len(r.current),
		OutputCount: len(r.phoenix),
	}, r.phoenix)
}

// stageSourceMerge concatenates the sources and dedupes by id, first
// occurrence winning.
func (r *Runner) stageSourceMerge() StepResult {
	inputCount := len(r.thunder) + len(r.phoenix)
	seen := make(map[string]struct{}, inputCount)
	merged := make([]feed.Candidate, 0, inputCount)
	for _, c := range append(append([]feed.Candidate{}, r.thunder...), r.phoenix...) {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		merged = append(merged, c)
	}
	r.current = merged
	return r.stepResult(feed.PipelineStep{
		ID:          "source_merge",
		Name:        "Source Merge",
		Description: "Merge source outputs and deduplicate ids",
		Category:    feed.StepSource,
		InputCount:  inputCount,
		OutputCount: len(merged),
	}, r.current)
}

func (r *Runner) stageHydrateInNetwork() StepResult {
	updated := make([]feed.Candidate, 0, len(r.current))
	for _, c := range r.current {
		c.InNetwork = c.AuthorID == r.ctx.CurrentUserID ||
			r.ctx.Follows(c.AuthorID) ||
			c.ServedType == feed.ServedInNetwork
		updated = append(updated, c)
	}
	r.current = updated
	return r.hydratorStep("hydrator_in_network", "InNetworkCandidateHydrator",
		"Hydrate the in-network flag per candidate")
}

// stageHydrateCoreData normalizes the core text fields. With value-typed
// candidates the zero values are already in place, so this stage only trims
// stray whitespace-only content down to empty for the core-data filter.
func (r *Runner) stageHydrateCoreData() StepResult {
	updated := make([]feed.Candidate, 0, len(r.current))
	for _, c := range r.current {
		if strings.TrimSpace(c.Content) == "" {
			c.Content = ""
		}
		if strings.TrimSpace(c.AuthorID) == "" {
			c.AuthorID = ""
		}
		updated = append(updated, c)
	}
	r.current = updated
	return r.hydratorStep("hydrator_core_data", "CoreDataCandidateHydrator",
		"Hydrate core post metadata")
}

func (r *Runner) stageHydrateVideoDuration() StepResult {
	updated := make([]feed.Candidate, 0, len(r.current))
	for _, c := range r.current {
		if c.HasVideo && c.VideoDurationMs <= 0 {
			c.VideoDurationMs = 15000
		}
		updated = append(updated, c)
	}
	r.current = updated
	return r.hydratorStep("hydrator_video_duration", "VideoDurationCandidateHydrator",
		"Hydrate video duration for VQV gating")
}

// stageHydrateSubscription marks a small deterministic subset of candidates
// as subscription-only, standing in for the real paywall metadata service.
func (r *Runner) stageHydrateSubscription() StepResult {
	updated := make([]feed.Candidate, 0, len(r.current))
	for i, c := range r.current {
		if c.SubscriptionAuthorID == "" && i%11 == 0 {
			c.SubscriptionAuthorID = c.AuthorID
		}
		updated = append(updated, c)
	}
	r.current = updated
	return r.hydratorStep("hydrator_subscription", "SubscriptionHydrator",
		"Hydrate subscription-only author metadata")
}

func (r *Runner) stageHydrateVisibility() StepResult {
	updated := make([]feed.Candidate, 0, len(r.current))
	for _, c := range r.current {
		if !c.VisibilityFiltered {
			content := strings.ToLower(c.Content)
			for _, term := range blockedTerms {
				if strings.Contains(content, term) {
					c.VisibilityFiltered = true
					break
				}
			}
		}
		updated = append(updated, c)
	}
	r.current = updated
	return r.hydratorStep("hydrator_vf", "VFCandidateHydrator",
		"Hydrate visibility filtering hints")
}

func (r *Runner) filterStep(cfg filter.Config, droppedInto *[]feed.Candidate) StepResult {
	result := filter.Run(cfg.ID, r.current, r.ctx)
	r.current = result.PassedCandidates
	*droppedInto = append(*droppedInto, result.FilteredCandidates...)

	res := result
	return r.stepResult(feed.PipelineStep{
		ID:          cfg.ID,
		Name:        cfg.Name,
		Description: cfg.Description,
		Category:    feed.StepFilter,
		InputCount:  result.InputCount,
		OutputCount: result.OutputCount,
		Filter:      &res,
	}, r.current)
}

func (r *Runner) stagePhoenixScorer() StepResult {
	r.afterFilterCount = len(r.current)
	result := scorer.RunPhoenix(r.current)
	return r.scorerStep("phoenix", result)
}

func (r *Runner) stageWeightedScorer() StepResult {
	updated, result := scorer.RunWeighted(r.current, r.cfg.Weights)
	r.current = updated
	return r.scorerStep("weighted", result)
}

func (r *Runner) stageDiversityScorer() StepResult {
	updated, result := scorer.RunAuthorDiversity(r.current,
		r.cfg.Weights.AuthorDiversityDecay, r.cfg.Weights.AuthorDiversityFloor)
	r.current = updated
	return r.scorerStep("author_diversity", result)
}

func (r *Runner) stageOONScorer() StepResult {
	updated, result := scorer.RunOON(r.current, r.cfg.Weights.OONWeightFactor)
	r.current = updated
	return r.scorerStep("oon", result)
}

func (r *Runner) stageSelector() StepResult {
	r.scored = sortByFinalScore(r.current)
	k := r.cfg.TopK
	if k > len(r.scored) {
		k = len(r.scored)
	}
	r.selected = r.scored[:k]
	r.current = r.selected
	return r.stepResult(feed.PipelineStep{
		ID:          "selector_top_k",
		Name:        "TopKScoreSelector",
		Description: fmt.Sprintf("Select top %d by final score", r.cfg.TopK),
		Category:    feed.StepSelector,
		InputCount:  len(r.scored),
		OutputCount: len(r.selected),
	}, r.current)
}

func (r *Runner) stageFinalRanking() StepResult {
	inputCount := len(r.current)
	r.current = sortByFinalScore(r.current)
	return r.stepResult(feed.PipelineStep{
		ID:          "final_ranking",
		Name:        "Final Ranking",
		Description: "Final ranked timeline after post-selection filters",
		Category:    feed.StepRanker,
		InputCount:  inputCount,
		OutputCount: len(r.current),
	}, r.current)
}

// --- helpers ---

func (r *Runner) hydratorStep(id, name, description string) StepResult {
	return r.stepResult(feed.PipelineStep{
		ID:          id,
		Name:        name,
		Description: description,
		Category:    feed.StepHydrator,
		InputCount:  len(r.current),
		OutputCount: len(r.current),
	}, r.current)
}

func (r *Runner) scorerStep(id string, result feed.ScorerResult) StepResult {
	cfg, _ := scorer.Lookup(id)
	res := result
	return r.stepResult(feed.PipelineStep{
		ID:          id,
		Name:        cfg.Name,
		Description: cfg.Description,
		Category:    feed.StepScorer,
		InputCount:  len(r.current),
		OutputCount: len(r.current),
		Scorer:      &res,
	}, r.current)
}

func (r *Runner) stepResult(step feed.PipelineStep, candidates []feed.Candidate) StepResult {
	return StepResult{Step: step, Candidates: candidates}
}

// sortByFinalScore returns a stable descending copy; ties keep their
// original relative order.
func sortByFinalScore(candidates []feed.Candidate) []feed.Candidate {
	out := make([]feed.Candidate, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Final() > out[j].Final()
	})
	return out
}
