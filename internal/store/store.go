package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// GlacialLake is one inventory entry: identity, location, and the raw factor
// measurements supplied by the upstream delineation/DEM collaborators.
type GlacialLake struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Basin     string    `json:"basin,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Elevation *float64  `json:"elevation_m,omitempty"`

	// Measurements maps factor name to raw value in the factor's unit.
	Measurements map[string]float64 `json:"measurements"`

	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LakeFilter struct {
	Basin  string
	Source string
	Limit  int
	Offset int
}

// ClassBreak is one labelled class interval persisted with a run.
type ClassBreak struct {
	Label string  `json:"label"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// ScoringRun records one execution of the susceptibility pipeline: its
// configuration, the derived weight/CR audit artifact, and any advisories.
type ScoringRun struct {
	ID         uuid.UUID          `json:"id"`
	Status     RunStatus          `json:"status"`
	Classes    int                `json:"classes"`
	LakeCount  int                `json:"lake_count"`
	CR         *float64           `json:"cr,omitempty"`
	LambdaMax  *float64           `json:"lambda_max,omitempty"`
	Weights    map[string]float64 `json:"weights,omitempty"`
	Breaks     []ClassBreak       `json:"breaks,omitempty"`
	Advisories []string           `json:"advisories,omitempty"`
	Error      string             `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunResult is one ranked row of a completed run.
type RunResult struct {
	RunID    uuid.UUID `json:"run_id"`
	LakeID   uuid.UUID `json:"lake_id"`
	LakeName string    `json:"lake_name"`
	Index    float64   `json:"index"`
	Class    string    `json:"class"`
	Rank     int       `json:"rank"`
}

type InventoryStats struct {
	TotalLakes    int        `json:"total_lakes"`
	TotalRuns     int        `json:"total_runs"`
	CompletedRuns int        `json:"completed_runs"`
	FailedRuns    int        `json:"failed_runs"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
}

type Store interface {
	CreateLake(ctx context.Context, lake *GlacialLake) error
	GetLake(ctx context.Context, id uuid.UUID) (*GlacialLake, error)
	ListLakes(ctx context.Context, filter LakeFilter) ([]*GlacialLake, error)
	UpdateLake(ctx context.Context, lake *GlacialLake) error

	CreateRun(ctx context.Context, run *ScoringRun) error
	GetRun(ctx context.Context, id uuid.UUID) (*ScoringRun, error)
	ListRuns(ctx context.Context, limit int) ([]*ScoringRun, error)
	UpdateRun(ctx context.Context, run *ScoringRun) error

	InsertResults(ctx context.Context, runID uuid.UUID, results []*RunResult) error
	ListResults(ctx context.Context, runID uuid.UUID) ([]*RunResult, error)

	GetStats(ctx context.Context) (*InventoryStats, error)

	Close() error
}
