package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/featherlab/rankline/internal/feed"
	"github.com/featherlab/rankline/internal/scoring"
)

// RankingRun is a persisted pipeline execution: its configuration, the full
// step history, and the final ranked timeline.
type RankingRun struct {
	ID             uuid.UUID `json:"id"`
	Scenario       string    `json:"scenario,omitempty"`
	TopK           int       `json:"top_k"`
	CandidateCount int       `json:"candidate_count"`
	FinalCount     int       `json:"final_count"`

	Weights         scoring.WeightConfig `json:"weights"`
	Steps           []feed.PipelineStep  `json:"steps"`
	FinalCandidates []feed.Candidate     `json:"final_candidates"`

	CreatedAt time.Time `json:"created_at"`
}

type RunFilter struct {
	Scenario string
	Limit    int
	Offset   int
}

// WeightPreset is a named, saved weight configuration.
type WeightPreset struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	Weights   scoring.WeightConfig `json:"weights"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Store persists run history and weight presets. Get methods return
// (nil, nil) when the row does not exist.
type Store interface {
	CreateRun(ctx context.Context, run *RankingRun) error
	GetRun(ctx context.Context, id uuid.UUID) (*RankingRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*RankingRun, error)
	DeleteRun(ctx context.Context, id uuid.UUID) error

	CreatePreset(ctx context.Context, preset *WeightPreset) error
	GetPreset(ctx context.Context, id uuid.UUID) (*WeightPreset, error)
	ListPresets(ctx context.Context) ([]*WeightPreset, error)
	UpdatePreset(ctx context.Context, preset *WeightPreset) error
	DeletePreset(ctx context.Context, id uuid.UUID) error

	Close() error
}
