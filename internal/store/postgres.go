package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps runs and presets in the ranking_runs and
// weight_presets tables. Steps, candidates, and weights are JSONB.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const runColumns = `id, scenario, top_k, candidate_count, final_count,
	weights, steps, final_candidates, created_at`

func (s *PostgresStore) CreateRun(ctx context.Context, run *RankingRun) error {
	weightsJSON, _ := json.Marshal(run.Weights)
	stepsJSON, _ := json.Marshal(run.Steps)
	candidatesJSON, _ := json.Marshal(run.FinalCandidates)

	return s.pool.QueryRow(ctx, `
		INSERT INTO ranking_runs (scenario, top_k, candidate_count, final_count,
			weights, steps, final_candidates)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		run.Scenario, run.TopK, run.CandidateCount, run.FinalCount,
		weightsJSON, stepsJSON, candidatesJSON,
	).Scan(&run.ID, &run.CreatedAt)
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*RankingRun, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+runColumns+`
		FROM ranking_runs WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]*RankingRun, error) {
	query := `SELECT ` + runColumns + ` FROM ranking_runs WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Scenario != "" {
		n++
		query += fmt.Sprintf(" AND scenario = $%d", n)
		args = append(args, filter.Scenario)
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRuns(rows)
}

func (s *PostgresStore) DeleteRun(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM ranking_runs WHERE id = $1`, id)
	return err
}

func (s *PostgresStore) CreatePreset(ctx context.Context, preset *WeightPreset) error {
	weightsJSON, _ := json.Marshal(preset.Weights)
	return s.pool.QueryRow(ctx, `
		INSERT INTO weight_presets (name, weights)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`,
		preset.Name, weightsJSON,
	).Scan(&preset.ID, &preset.CreatedAt, &preset.UpdatedAt)
}

func (s *PostgresStore) GetPreset(ctx context.Context, id uuid.UUID) (*WeightPreset, error) {
	p := &WeightPreset{}
	var weightsJSON []byte
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, weights, created_at, updated_at
		FROM weight_presets WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &weightsJSON, &p.CreatedAt, &p.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(weightsJSON, &p.Weights); err != nil {
		return nil, fmt.Errorf("decode preset weights: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListPresets(ctx context.Context) ([]*WeightPreset, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, weights, created_at, updated_at
		FROM weight_presets ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []*WeightPreset
	for rows.Next() {
		p := &WeightPreset{}
		var weightsJSON []byte
		if err := rows.Scan(&p.ID, &p.Name, &weightsJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(weightsJSON, &p.Weights); err != nil {
			return nil, fmt.Errorf("decode preset weights: %w", err)
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

func (s *PostgresStore) UpdatePreset(ctx context.Context, preset *WeightPreset) error {
	weightsJSON, _ := json.Marshal(preset.Weights)
	return s.pool.QueryRow(ctx, `
		UPDATE weight_presets SET name = $2, weights = $3, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		preset.ID, preset.Name, weightsJSON,
	).Scan(&preset.UpdatedAt)
}

func (s *PostgresStore) DeletePreset(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM weight_presets WHERE id = $1`, id)
	return err
}

func scanRuns(rows pgx.Rows) ([]*RankingRun, error) {
	var runs []*RankingRun
	for rows.Next() {
		r := &RankingRun{}
		var weightsJSON, stepsJSON, candidatesJSON []byte
		if err := rows.Scan(
			&r.ID, &r.Scenario, &r.TopK, &r.CandidateCount, &r.FinalCount,
			&weightsJSON, &stepsJSON, &candidatesJSON, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(weightsJSON, &r.Weights); err != nil {
			return nil, fmt.Errorf("decode run weights: %w", err)
		}
		if stepsJSON != nil {
			if err := json.Unmarshal(stepsJSON, &r.Steps); err != nil {
				return nil, fmt.Errorf("decode run steps: %w", err)
			}
		}
		if candidatesJSON != nil {
			if err := json.Unmarshal(candidatesJSON, &r.FinalCandidates); err != nil {
				return nil, fmt.Errorf("decode run candidates: %w", err)
			}
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

var _ Store = (*PostgresStore)(nil)
