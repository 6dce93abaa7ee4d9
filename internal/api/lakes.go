package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/malothro-m/koshi-glof-ahp/internal/events"
	"github.com/malothro-m/koshi-glof-ahp/internal/store"
)

type LakesHandler struct {
	store  store.Store
	events events.Client
}

func NewLakesHandler(s store.Store, ev events.Client) *LakesHandler {
	return &LakesHandler{store: s, events: ev}
}

type CreateLakeRequest struct {
	Name         string             `json:"name"`
	Basin        string             `json:"basin,omitempty"`
	Latitude     float64            `json:"latitude"`
	Longitude    float64            `json:"longitude"`
	Elevation    *float64           `json:"elevation_m,omitempty"`
	Measurements map[string]float64 `json:"measurements"`
	Source       string             `json:"source,omitempty"`
}

func (h *LakesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}

	lake := &store.GlacialLake{
		Name:         req.Name,
		Basin:        req.Basin,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Elevation:    req.Elevation,
		Measurements: req.Measurements,
		Source:       req.Source,
	}
	if lake.Measurements == nil {
		lake.Measurements = map[string]float64{}
	}

	if err := h.store.CreateLake(r.Context(), lake); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	lakesRegistered.Inc()

	if h.events != nil {
		_ = h.events.Publish(events.SubjectLakeRegistered(lake.ID.String()), events.LakeRegisteredEvent{
			LakeID: lake.ID.String(),
			Name:   lake.Name,
			Basin:  lake.Basin,
			Source: lake.Source,
		})
	}

	writeJSON(w, http.StatusCreated, lake)
}

func (h *LakesHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.LakeFilter{
		Basin:  r.URL.Query().Get("basin"),
		Source: r.URL.Query().Get("source"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	lakes, err := h.store.ListLakes(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if lakes == nil {
		lakes = []*store.GlacialLake{}
	}
	writeJSON(w, http.StatusOK, lakes)
}

func (h *LakesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lake id"})
		return
	}

	lake, err := h.store.GetLake(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if lake == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lake not found"})
		return
	}
	writeJSON(w, http.StatusOK, lake)
}

func (h *LakesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lake id"})
		return
	}

	lake, err := h.store.GetLake(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if lake == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lake not found"})
		return
	}

	var req CreateLakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name != "" {
		lake.Name = req.Name
	}
	if req.Basin != "" {
		lake.Basin = req.Basin
	}
	if req.Latitude != 0 {
		lake.Latitude = req.Latitude
	}
	if req.Longitude != 0 {
		lake.Longitude = req.Longitude
	}
	if req.Elevation != nil {
		lake.Elevation = req.Elevation
	}
	if req.Source != "" {
		lake.Source = req.Source
	}
	// Measurement updates merge so a single refreshed factor does not wipe the
	// rest of the record.
	for k, v := range req.Measurements {
		if lake.Measurements == nil {
			lake.Measurements = map[string]float64{}
		}
		lake.Measurements[k] = v
	}

	if err := h.store.UpdateLake(r.Context(), lake); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if h.events != nil {
		_ = h.events.Publish(events.SubjectLakeUpdated(lake.ID.String()), events.LakeRegisteredEvent{
			LakeID: lake.ID.String(),
			Name:   lake.Name,
			Basin:  lake.Basin,
			Source: lake.Source,
		})
	}

	writeJSON(w, http.StatusOK, lake)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
