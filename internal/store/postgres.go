package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

const lakeColumns = `lake_id, name, basin, latitude, longitude, elevation_m,
	measurements, source, created_at, updated_at`

func (s *PostgresStore) CreateLake(ctx context.Context, lake *GlacialLake) error {
	measurementsJSON, _ := json.Marshal(lake.Measurements)

	return s.pool.QueryRow(ctx, `
		INSERT INTO glacial_lakes (name, basin, latitude, longitude, elevation_m, measurements, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING lake_id, created_at, updated_at`,
		lake.Name, lake.Basin, lake.Latitude, lake.Longitude, lake.Elevation,
		measurementsJSON, lake.Source,
	).Scan(&lake.ID, &lake.CreatedAt, &lake.UpdatedAt)
}

func (s *PostgresStore) GetLake(ctx context.Context, id uuid.UUID) (*GlacialLake, error) {
	lake := &GlacialLake{}
	var measurementsJSON []byte
	var basin, source sql.NullString
	err := s.pool.QueryRow(ctx, `
		SELECT `+lakeColumns+`
		FROM glacial_lakes WHERE lake_id = $1`, id,
	).Scan(
		&lake.ID, &lake.Name, &basin, &lake.Latitude, &lake.Longitude, &lake.Elevation,
		&measurementsJSON, &source, &lake.CreatedAt, &lake.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if basin.Valid {
		lake.Basin = basin.String
	}
	if source.Valid {
		lake.Source = source.String
	}
	if measurementsJSON != nil {
		_ = json.Unmarshal(measurementsJSON, &lake.Measurements)
	}
	return lake, nil
}

func (s *PostgresStore) ListLakes(ctx context.Context, filter LakeFilter) ([]*GlacialLake, error) {
	query := `SELECT ` + lakeColumns + ` FROM glacial_lakes WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Basin != "" {
		n++
		query += fmt.Sprintf(" AND basin = $%d", n)
		args = append(args, filter.Basin)
	}
	if filter.Source != "" {
		n++
		query += fmt.Sprintf(" AND source = $%d", n)
		args = append(args, filter.Source)
	}
	query += " ORDER BY name"
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}
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

	var lakes []*GlacialLake
	for rows.Next() {
		lake := &GlacialLake{}
		var measurementsJSON []byte
		var basin, source sql.NullString
		if err := rows.Scan(
			&lake.ID, &lake.Name, &basin, &lake.Latitude, &lake.Longitude, &lake.Elevation,
			&measurementsJSON, &source, &lake.CreatedAt, &lake.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if basin.Valid {
			lake.Basin = basin.String
		}
		if source.Valid {
			lake.Source = source.String
		}
		if measurementsJSON != nil {
			_ = json.Unmarshal(measurementsJSON, &lake.Measurements)
		}
		lakes = append(lakes, lake)
	}
	return lakes, rows.Err()
}

func (s *PostgresStore) UpdateLake(ctx context.Context, lake *GlacialLake) error {
	measurementsJSON, _ := json.Marshal(lake.Measurements)
	_, err := s.pool.Exec(ctx, `
		UPDATE glacial_lakes
		SET name = $2, basin = $3, latitude = $4, longitude = $5, elevation_m = $6,
			measurements = $7, source = $8, updated_at = now()
		WHERE lake_id = $1`,
		lake.ID, lake.Name, lake.Basin, lake.Latitude, lake.Longitude, lake.Elevation,
		measurementsJSON, lake.Source,
	)
	return err
}

const runColumns = `run_id, status, classes, lake_count, cr, lambda_max,
	weights, breaks, advisories, error, created_at, completed_at`

func (s *PostgresStore) CreateRun(ctx context.Context, run *ScoringRun) error {
	weightsJSON, _ := json.Marshal(run.Weights)
	breaksJSON, _ := json.Marshal(run.Breaks)
	advisoriesJSON, _ := json.Marshal(run.Advisories)

	return s.pool.QueryRow(ctx, `
		INSERT INTO scoring_runs (status, classes, lake_count, cr, lambda_max, weights, breaks, advisories, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING run_id, created_at`,
		run.Status, run.Classes, run.LakeCount, run.CR, run.LambdaMax,
		weightsJSON, breaksJSON, advisoriesJSON, run.Error,
	).Scan(&run.ID, &run.CreatedAt)
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*ScoringRun, error) {
	run := &ScoringRun{}
	var weightsJSON, breaksJSON, advisoriesJSON []byte
	var runError sql.NullString
	err := s.pool.QueryRow(ctx, `
		SELECT `+runColumns+`
		FROM scoring_runs WHERE run_id = $1`, id,
	).Scan(
		&run.ID, &run.Status, &run.Classes, &run.LakeCount, &run.CR, &run.LambdaMax,
		&weightsJSON, &breaksJSON, &advisoriesJSON, &runError,
		&run.CreatedAt, &run.CompletedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if runError.Valid {
		run.Error = runError.String
	}
	if weightsJSON != nil {
		_ = json.Unmarshal(weightsJSON, &run.Weights)
	}
	if breaksJSON != nil {
		_ = json.Unmarshal(breaksJSON, &run.Breaks)
	}
	if advisoriesJSON != nil {
		_ = json.Unmarshal(advisoriesJSON, &run.Advisories)
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]*ScoringRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+runColumns+`
		FROM scoring_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*ScoringRun
	for rows.Next() {
		run := &ScoringRun{}
		var weightsJSON, breaksJSON, advisoriesJSON []byte
		var runError sql.NullString
		if err := rows.Scan(
			&run.ID, &run.Status, &run.Classes, &run.LakeCount, &run.CR, &run.LambdaMax,
			&weightsJSON, &breaksJSON, &advisoriesJSON, &runError,
			&run.CreatedAt, &run.CompletedAt,
		); err != nil {
			return nil, err
		}
		if runError.Valid {
			run.Error = runError.String
		}
		if weightsJSON != nil {
			_ = json.Unmarshal(weightsJSON, &run.Weights)
		}
		if breaksJSON != nil {
			_ = json.Unmarshal(breaksJSON, &run.Breaks)
		}
		if advisoriesJSON != nil {
			_ = json.Unmarshal(advisoriesJSON, &run.Advisories)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *PostgresStore) UpdateRun(ctx context.Context, run *ScoringRun) error {
	weightsJSON, _ := json.Marshal(run.Weights)
	breaksJSON, _ := json.Marshal(run.Breaks)
	advisoriesJSON, _ := json.Marshal(run.Advisories)
	_, err := s.pool.Exec(ctx, `
		UPDATE scoring_runs
		SET status = $2, lake_count = $3, cr = $4, lambda_max = $5,
			weights = $6, breaks = $7, advisories = $8, error = $9, completed_at = $10
		WHERE run_id = $1`,
		run.ID, run.Status, run.LakeCount, run.CR, run.LambdaMax,
		weightsJSON, breaksJSON, advisoriesJSON, run.Error, run.CompletedAt,
	)
	return err
}

// InsertResults writes the ranked table atomically: a reader never observes
// a partially inserted run.
func (s *PostgresStore) InsertResults(ctx context.Context, runID uuid.UUID, results []*RunResult) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, r := range results {
		if _, err := tx.Exec(ctx, `
			INSERT INTO scoring_results (run_id, lake_id, lake_name, index, class, rank)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			runID, r.LakeID, r.LakeName, r.Index, r.Class, r.Rank,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) ListResults(ctx context.Context, runID uuid.UUID) ([]*RunResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT run_id, lake_id, lake_name, index, class, rank
		FROM scoring_results WHERE run_id = $1 ORDER BY rank`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*RunResult
	for rows.Next() {
		r := &RunResult{}
		if err := rows.Scan(&r.RunID, &r.LakeID, &r.LakeName, &r.Index, &r.Class, &r.Rank); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *PostgresStore) GetStats(ctx context.Context) (*InventoryStats, error) {
	stats := &InventoryStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM glacial_lakes),
			(SELECT count(*) FROM scoring_runs),
			(SELECT count(*) FROM scoring_runs WHERE status = 'completed'),
			(SELECT count(*) FROM scoring_runs WHERE status = 'failed'),
			(SELECT max(created_at) FROM scoring_runs)`,
	).Scan(&stats.TotalLakes, &stats.TotalRuns, &stats.CompletedRuns, &stats.FailedRuns, &stats.LastRunAt)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
