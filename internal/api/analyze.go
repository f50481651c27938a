package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/featherlab/rankline/internal/config"
	"github.com/featherlab/rankline/internal/events"
	"github.com/featherlab/rankline/internal/feed"
	"github.com/featherlab/rankline/internal/scoring"
)

type AnalyzeHandler struct {
	events events.Client
	cfg    *config.Config
}

func NewAnalyzeHandler(e events.Client, cfg *config.Config) *AnalyzeHandler {
	return &AnalyzeHandler{events: e, cfg: cfg}
}

type AnalyzeRequest struct {
	Post    feed.PostInput        `json:"post"`
	Weights *scoring.WeightConfig `json:"weights,omitempty"`
}

type AnalyzeResponse struct {
	Scores        feed.BehaviorScores  `json:"scores"`
	WeightedScore float64              `json:"weighted_score"`
	HeatScore     float64              `json:"heat_score"`
	HeatLevel     string               `json:"heat_level"`
	Suggestions   []scoring.Suggestion `json:"suggestions"`
	FilterRisks   []scoring.FilterRisk `json:"filter_risks"`
}

// Analyze scores a single hypothetical post: simulated behavior predictions,
// the weighted aggregate under the given (or configured) weights, the heat
// score, and content advice.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Post.Media == "" {
		req.Post.Media = feed.MediaNone
	}
	if req.Post.AuthorType == "" {
		req.Post.AuthorType = feed.AuthorNormal
	}

	weights := h.cfg.Weights
	if req.Weights != nil {
		if err := req.Weights.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		weights = *req.Weights
	}

	scores := scoring.Simulate(req.Post)
	heat := scoring.HeatScore(scores)

	resp := AnalyzeResponse{
		Scores:        scores,
		WeightedScore: scoring.Aggregate(scores, weights, req.Post.VideoDurationMs),
		HeatScore:     heat,
		HeatLevel:     scoring.HeatLevel(heat),
		Suggestions:   scoring.Suggestions(req.Post),
		FilterRisks:   scoring.FilterRisks(req.Post),
	}

	analysesTotal.Inc()
	if h.events != nil {
		_ = h.events.Publish(events.SubjectAnalysisCompleted, events.AnalysisCompletedEvent{
			HeatScore: resp.HeatScore,
			HeatLevel: resp.HeatLevel,
			Timestamp: time.Now(),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
