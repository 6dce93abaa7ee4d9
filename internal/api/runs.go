package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/malothro-m/koshi-glof-ahp/internal/ahp"
	"github.com/malothro-m/koshi-glof-ahp/internal/config"
	"github.com/malothro-m/koshi-glof-ahp/internal/events"
	"github.com/malothro-m/koshi-glof-ahp/internal/pipeline"
	"github.com/malothro-m/koshi-glof-ahp/internal/scoring"
	"github.com/malothro-m/koshi-glof-ahp/internal/store"
)

type RunsHandler struct {
	store  store.Store
	events events.Client
	cfg    *config.Config
	logger *slog.Logger
}

func NewRunsHandler(s store.Store, ev events.Client, cfg *config.Config, logger *slog.Logger) *RunsHandler {
	return &RunsHandler{store: s, events: ev, cfg: cfg, logger: logger}
}

type CreateRunRequest struct {
	Classes     int               `json:"classes,omitempty"`
	ClassLabels []string          `json:"class_labels,omitempty"`
	Basin       string            `json:"basin,omitempty"`
	Judgments   []config.Judgment `json:"judgments,omitempty"`
}

// RunResponse couples the persisted run record with its ranked table so a
// caller gets the whole artifact in one round trip.
type RunResponse struct {
	Run     *store.ScoringRun  `json:"run"`
	Results []*store.RunResult `json:"results,omitempty"`
}

func (h *RunsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	classes := h.cfg.Scoring.Classes
	if req.Classes > 0 {
		classes = req.Classes
	}
	labels := h.cfg.Scoring.ClassLabels
	if len(req.ClassLabels) > 0 {
		labels = req.ClassLabels
	}

	matrix, err := h.buildMatrix(req.Judgments)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	lakes, err := h.store.ListLakes(r.Context(), store.LakeFilter{Basin: req.Basin})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(lakes) == 0 {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no lakes in inventory"})
		return
	}

	run := &store.ScoringRun{
		Status:    store.RunPending,
		Classes:   classes,
		LakeCount: len(lakes),
	}
	if err := h.store.CreateRun(r.Context(), run); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	runsTotal.Inc()

	if h.events != nil {
		_ = h.events.Publish(events.SubjectRunStarted(run.ID.String()), events.RunStartedEvent{
			RunID:     run.ID.String(),
			LakeCount: len(lakes),
			Classes:   classes,
			StartedAt: run.CreatedAt,
		})
	}

	table, byName, err := h.buildTable(lakes)
	if err == nil {
		solver := ahp.NewSolver()
		solver.CRThreshold = h.cfg.Scoring.CRThreshold
		p := pipeline.New(solver, nil, classes, labels, h.logger)

		var res *pipeline.Result
		res, err = p.Run(matrix, table)
		if err == nil {
			h.persistCompleted(r.Context(), run, res, byName)
			writeJSON(w, http.StatusCreated, RunResponse{Run: run, Results: resultRows(run, res, byName)})
			return
		}
	}

	h.persistFailed(r.Context(), run, err)
	writeJSON(w, engineStatus(err), map[string]string{"error": err.Error()})
}

// buildMatrix uses the configured judgments unless the request overrides them.
func (h *RunsHandler) buildMatrix(override []config.Judgment) (*ahp.PairwiseMatrix, error) {
	if len(override) == 0 {
		return h.cfg.BuildMatrix()
	}
	names := make([]string, 0, len(h.cfg.Scoring.Factors))
	for _, f := range h.cfg.Scoring.Factors {
		names = append(names, f.Name)
	}
	m, err := ahp.New(names)
	if err != nil {
		return nil, err
	}
	for _, j := range override {
		if err := m.Set(j.Left, j.Right, j.Value); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// buildTable projects each lake's measurements onto the configured factor
// set. A lake missing a declared factor fails the run.
func (h *RunsHandler) buildTable(lakes []*store.GlacialLake) (*scoring.FactorTable, map[string]*store.GlacialLake, error) {
	table, err := scoring.NewFactorTable(h.cfg.Factors())
	if err != nil {
		return nil, nil, err
	}
	byName := make(map[string]*store.GlacialLake, len(lakes))
	for _, lake := range lakes {
		values := make(map[string]float64, len(h.cfg.Scoring.Factors))
		for _, f := range h.cfg.Scoring.Factors {
			if v, ok := lake.Measurements[f.Name]; ok {
				values[f.Name] = v
			}
		}
		if err := table.Append(lake.Name, values); err != nil {
			return nil, nil, err
		}
		byName[lake.Name] = lake
	}
	return table, byName, nil
}

func (h *RunsHandler) persistCompleted(ctx context.Context, run *store.ScoringRun, res *pipeline.Result, byName map[string]*store.GlacialLake) {
	now := time.Now()
	cr := res.Weights.CR
	lambda := res.Weights.LambdaMax
	run.Status = store.RunCompleted
	run.CR = &cr
	run.LambdaMax = &lambda
	run.Weights = res.Weights.Values
	run.CompletedAt = &now
	run.Breaks = make([]store.ClassBreak, len(res.Breaks))
	for i, b := range res.Breaks {
		run.Breaks[i] = store.ClassBreak{Label: b.Label, Lower: b.Lower, Upper: b.Upper}
	}
	for _, a := range res.Advisories {
		run.Advisories = append(run.Advisories, a.Code+": "+a.Message)
	}

	if err := h.store.UpdateRun(ctx, run); err != nil {
		h.logger.Error("failed to persist completed run", "run_id", run.ID, "error", err)
	}
	if err := h.store.InsertResults(ctx, run.ID, resultRows(run, res, byName)); err != nil {
		h.logger.Error("failed to persist run results", "run_id", run.ID, "error", err)
	}

	if h.events != nil {
		ev := events.RunCompletedEvent{
			RunID:       run.ID.String(),
			LakeCount:   run.LakeCount,
			CR:          cr,
			Weights:     res.Weights.Values,
			CompletedAt: now,
		}
		if len(res.Lakes) > 0 {
			ev.TopLake = res.Lakes[0].Lake
			ev.TopIndex = res.Lakes[0].Index
		}
		_ = h.events.Publish(events.SubjectRunCompleted(run.ID.String()), ev)

		if res.Weights.Inconsistent {
			runsInconsistent.Inc()
			_ = h.events.Publish(events.SubjectRunInconsistent(run.ID.String()), events.RunInconsistentEvent{
				RunID:     run.ID.String(),
				CR:        cr,
				Threshold: h.cfg.Scoring.CRThreshold,
			})
		}
	}
}

func (h *RunsHandler) persistFailed(ctx context.Context, run *store.ScoringRun, runErr error) {
	runsFailed.Inc()
	now := time.Now()
	run.Status = store.RunFailed
	run.Error = runErr.Error()
	run.CompletedAt = &now
	if err := h.store.UpdateRun(ctx, run); err != nil {
		h.logger.Error("failed to persist failed run", "run_id", run.ID, "error", err)
	}
	if h.events != nil {
		_ = h.events.Publish(events.SubjectRunFailed(run.ID.String()), events.RunFailedEvent{
			RunID: run.ID.String(),
			Error: runErr.Error(),
		})
	}
}

func resultRows(run *store.ScoringRun, res *pipeline.Result, byName map[string]*store.GlacialLake) []*store.RunResult {
	rows := make([]*store.RunResult, len(res.Lakes))
	for i, l := range res.Lakes {
		row := &store.RunResult{
			RunID:    run.ID,
			LakeName: l.Lake,
			Index:    l.Index,
			Class:    l.Class,
			Rank:     l.Rank,
		}
		if lake, ok := byName[l.Lake]; ok {
			row.LakeID = lake.ID
		}
		rows[i] = row
	}
	return rows
}

// engineStatus maps fatal engine errors to 422 and everything else to 500.
func engineStatus(err error) int {
	var malformed *ahp.MalformedMatrixError
	var mismatch *scoring.FactorSetMismatchError
	var incomplete *scoring.IncompleteRowError
	if errors.As(err, &malformed) || errors.As(err, &mismatch) || errors.As(err, &incomplete) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	runs, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []*store.ScoringRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid run id"})
		return
	}
	run, err := h.store.GetRun(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if run == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// RunWeightsReport is the persisted weight/CR audit artifact of one run.
type RunWeightsReport struct {
	RunID      uuid.UUID          `json:"run_id"`
	Weights    map[string]float64 `json:"weights"`
	LambdaMax  *float64           `json:"lambda_max,omitempty"`
	CR         *float64           `json:"cr,omitempty"`
	Threshold  float64            `json:"threshold"`
	Advisories []string           `json:"advisories,omitempty"`
}

func (h *RunsHandler) Weights(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid run id"})
		return
	}
	run, err := h.store.GetRun(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if run == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}
	if run.Status != store.RunCompleted {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "run has no derived weights"})
		return
	}
	writeJSON(w, http.StatusOK, RunWeightsReport{
		RunID:      run.ID,
		Weights:    run.Weights,
		LambdaMax:  run.LambdaMax,
		CR:         run.CR,
		Threshold:  h.cfg.Scoring.CRThreshold,
		Advisories: run.Advisories,
	})
}

func (h *RunsHandler) Results(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid run id"})
		return
	}
	run, err := h.store.GetRun(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if run == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}

	results, err := h.store.ListResults(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if results == nil {
		results = []*store.RunResult{}
	}
	writeJSON(w, http.StatusOK, results)
}
