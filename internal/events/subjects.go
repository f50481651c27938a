package events

import "time"

const (
	SubjectRunCompleted      = "rankline.run.completed"
	SubjectAnalysisCompleted = "rankline.analysis.completed"
	SubjectPresetChanged     = "rankline.preset.changed"

	StreamName   = "RANKLINE_EVENTS"
	StreamMaxAge = "168h" // 7 days
)

// RunCompletedEvent announces a persisted pipeline run.
type RunCompletedEvent struct {
	RunID          string    `json:"run_id"`
	Scenario       string    `json:"scenario,omitempty"`
	CandidateCount int       `json:"candidate_count"`
	FinalCount     int       `json:"final_count"`
	TopK           int       `json:"top_k"`
	DurationMs     float64   `json:"duration_ms"`
	Timestamp      time.Time `json:"timestamp"`
}

// AnalysisCompletedEvent announces a single-post analysis.
type AnalysisCompletedEvent struct {
	HeatScore float64   `json:"heat_score"`
	HeatLevel string    `json:"heat_level"`
	Timestamp time.Time `json:"timestamp"`
}

// PresetChangedEvent announces a created, updated, or deleted weight preset.
type PresetChangedEvent struct {
	PresetID  string    `json:"preset_id"`
	Name      string    `json:"name,omitempty"`
	Action    string    `json:"action"` // created, updated, deleted
	Timestamp time.Time `json:"timestamp"`
}
