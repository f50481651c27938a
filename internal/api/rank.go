package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/featherlab/rankline/internal/config"
	"github.com/featherlab/rankline/internal/events"
	"github.com/featherlab/rankline/internal/feed"
	"github.com/featherlab/rankline/internal/pipeline"
	"github.com/featherlab/rankline/internal/sample"
	"github.com/featherlab/rankline/internal/scoring"
	"github.com/featherlab/rankline/internal/store"
)

type RankHandler struct {
	store  store.Store
	events events.Client
	cfg    *config.Config
	logger *slog.Logger
}

func NewRankHandler(s store.Store, e events.Client, cfg *config.Config, logger *slog.Logger) *RankHandler {
	return &RankHandler{store: s, events: e, cfg: cfg, logger: logger}
}

// RankRequest runs the pipeline over either a named scenario's generated
// corpus or an explicit candidate list. All overrides are optional and fall
// back to the service configuration.
type RankRequest struct {
	Scenario   string           `json:"scenario,omitempty"`
	Seed       *int64           `json:"seed,omitempty"`
	Candidates []feed.Candidate `json:"candidates,omitempty"`
	Context    *feed.Context    `json:"context,omitempty"`

	Weights        *scoring.WeightConfig `json:"weights,omitempty"`
	TopK           *int                  `json:"top_k,omitempty"`
	EnabledFilters []string              `json:"enabled_filters,omitempty"`

	Persist *bool `json:"persist,omitempty"`
}

type RankResponse struct {
	RunID  string          `json:"run_id,omitempty"`
	Result pipeline.Result `json:"result"`
}

func (h *RankHandler) Rank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	now := time.Now()

	candidates := req.Candidates
	if len(candidates) == 0 {
		if req.Scenario == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scenario or candidates required"})
			return
		}
		scenario, ok := sample.ScenarioByID(req.Scenario)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown scenario " + req.Scenario})
			return
		}
		seed := h.cfg.Pipeline.DefaultSeed
		if req.Seed != nil {
			seed = *req.Seed
		}
		candidates = sample.ForScenario(scenario, seed, now)
	}

	ctx := sample.DefaultContext(now)
	if req.Context != nil {
		ctx = *req.Context
		if ctx.CurrentTime.IsZero() {
			ctx.CurrentTime = now
		}
	}
	if ctx.MaxTweetAgeHours <= 0 {
		ctx.MaxTweetAgeHours = h.cfg.Pipeline.MaxTweetAgeHours
	}

	cfg := pipeline.Config{
		EnabledFilters: h.cfg.Pipeline.EnabledFilters,
		Weights:        h.cfg.Weights,
		TopK:           h.cfg.Pipeline.TopK,
	}
	if req.EnabledFilters != nil {
		cfg.EnabledFilters = req.EnabledFilters
	}
	if req.Weights != nil {
		cfg.Weights = *req.Weights
	}
	if req.TopK != nil {
		cfg.TopK = *req.TopK
	}

	start := time.Now()
	result, err := pipeline.Run(candidates, ctx, cfg)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	elapsed := time.Since(start)

	runsTotal.Inc()
	runDuration.Observe(elapsed.Seconds())
	for _, step := range result.Steps {
		if step.Filter != nil && len(step.Filter.FilteredCandidates) > 0 {
			dropped := step.Filter.InputCount - step.Filter.OutputCount
			candidatesFiltered.WithLabelValues(step.ID).Add(float64(dropped))
		}
	}

	resp := RankResponse{Result: result}

	persist := req.Persist == nil || *req.Persist
	if persist && h.store != nil {
		run := &store.RankingRun{
			Scenario:        req.Scenario,
			TopK:            cfg.TopK,
			CandidateCount:  result.InitialCount,
			FinalCount:      result.FinalCount,
			Weights:         cfg.Weights,
			Steps:           result.Steps,
			FinalCandidates: result.FinalCandidates,
		}
		if err := h.store.CreateRun(r.Context(), run); err != nil {
			h.logger.Error("persist run", "error", err)
		} else {
			resp.RunID = run.ID.String()
		}
	}

	if h.events != nil {
		_ = h.events.Publish(events.SubjectRunCompleted, events.RunCompletedEvent{
			RunID:          resp.RunID,
			Scenario:       req.Scenario,
			CandidateCount: result.InitialCount,
			FinalCount:     result.FinalCount,
			TopK:           cfg.TopK,
			DurationMs:     float64(elapsed.Microseconds()) / 1000,
			Timestamp:      time.Now(),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
