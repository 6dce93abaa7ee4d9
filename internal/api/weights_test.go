package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsGetDerivesConfiguredJudgments(t *testing.T) {
	h := NewWeightsHandler(testConfig())

	req := httptest.NewRequest("GET", "/api/v1/weights", nil)
	w := httptest.NewRecorder()
	h.Get(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp WeightsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.Equal(t, []string{"lake_area", "area_growth", "glacier_distance"}, resp.Factors)
	// the configured chain 2/4/2 is perfectly consistent
	assert.InDelta(t, 4.0/7.0, resp.Weights["lake_area"], 1e-9)
	assert.InDelta(t, 2.0/7.0, resp.Weights["area_growth"], 1e-9)
	assert.InDelta(t, 1.0/7.0, resp.Weights["glacier_distance"], 1e-9)
	assert.InDelta(t, 0, resp.CR, 1e-9)
	assert.False(t, resp.Inconsistent)
}

func TestWeightsPreviewFlagsInconsistency(t *testing.T) {
	h := NewWeightsHandler(testConfig())

	body := `{"judgments":[
		{"left":"lake_area","right":"area_growth","value":3},
		{"left":"area_growth","right":"glacier_distance","value":3},
		{"left":"lake_area","right":"glacier_distance","value":0.3333333333}
	]}`
	req := httptest.NewRequest("POST", "/api/v1/weights/preview", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.Preview(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp WeightsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.True(t, resp.Inconsistent)
	assert.GreaterOrEqual(t, resp.CR, 0.10)

	var sum float64
	for _, v := range resp.Weights {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestWeightsPreviewRejectsIncompleteJudgments(t *testing.T) {
	h := NewWeightsHandler(testConfig())

	// only one of three pairs judged
	body := `{"judgments":[{"left":"lake_area","right":"area_growth","value":2}]}`
	req := httptest.NewRequest("POST", "/api/v1/weights/preview", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.Preview(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestWeightsPreviewRejectsOffScaleJudgment(t *testing.T) {
	h := NewWeightsHandler(testConfig())

	body := `{"judgments":[{"left":"lake_area","right":"area_growth","value":12}]}`
	req := httptest.NewRequest("POST", "/api/v1/weights/preview", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.Preview(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
