package api

import (
	"encoding/json"
	"net/http"

	"github.com/malothro-m/koshi-glof-ahp/internal/ahp"
	"github.com/malothro-m/koshi-glof-ahp/internal/config"
)

// WeightsHandler exposes weight derivation on its own so judgment sets can be
// audited before committing to a scoring run.
type WeightsHandler struct {
	cfg *config.Config
}

func NewWeightsHandler(cfg *config.Config) *WeightsHandler {
	return &WeightsHandler{cfg: cfg}
}

type WeightsResponse struct {
	Factors      []string           `json:"factors"`
	Weights      map[string]float64 `json:"weights"`
	LambdaMax    float64            `json:"lambda_max"`
	CI           float64            `json:"ci"`
	CR           float64            `json:"cr"`
	Inconsistent bool               `json:"inconsistent"`
}

// Get derives weights from the configured judgments.
func (h *WeightsHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.cfg.BuildMatrix()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.solve(w, m)
}

type PreviewWeightsRequest struct {
	Factors   []string          `json:"factors,omitempty"`
	Judgments []config.Judgment `json:"judgments"`
}

// Preview derives weights from caller-supplied judgments without touching
// stored state.
func (h *WeightsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewWeightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	names := req.Factors
	if len(names) == 0 {
		for _, f := range h.cfg.Scoring.Factors {
			names = append(names, f.Name)
		}
	}

	m, err := ahp.New(names)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	for _, j := range req.Judgments {
		if err := m.Set(j.Left, j.Right, j.Value); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
	}
	h.solve(w, m)
}

func (h *WeightsHandler) solve(w http.ResponseWriter, m *ahp.PairwiseMatrix) {
	solver := ahp.NewSolver()
	solver.CRThreshold = h.cfg.Scoring.CRThreshold
	weights, err := solver.Solve(m)
	if err != nil {
		writeJSON(w, engineStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, WeightsResponse{
		Factors:      weights.Factors,
		Weights:      weights.Values,
		LambdaMax:    weights.LambdaMax,
		CI:           weights.CI,
		CR:           weights.CR,
		Inconsistent: weights.Inconsistent,
	})
}
