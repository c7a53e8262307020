package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitflow/busalloc/core/allocation"
	"github.com/transitflow/busalloc/core/counts"
	"github.com/transitflow/busalloc/core/history"
	"github.com/transitflow/busalloc/core/model"
	"github.com/transitflow/busalloc/core/topology"
)

func testEngine(t *testing.T) *allocation.Engine {
	t.Helper()
	topo := topology.Topology{Routes: []model.Route{
		{ID: 1, Name: "north", Path: []string{"S1"}},
		{ID: 2, Name: "south", Path: []string{"S2"}},
	}}
	eng, err := allocation.NewEngine(topo, allocation.DefaultTunables(), nil)
	require.NoError(t, err)
	return eng
}

func postJSON(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/allocation", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAllocate_JSON(t *testing.T) {
	srv := NewServer(testEngine(t), nil, nil, nil, nil, "", nil)
	router := srv.Router()

	w := postJSON(t, router, `{"total_buses":6,"cycle_seconds":120,"stop_counts":{"S1":40}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp allocationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	require.Len(t, resp.Routes, 2)
	assert.Equal(t, 1, resp.Routes[0].RouteID)
	assert.GreaterOrEqual(t, resp.Routes[0].Buses, 2) // 40 people need two buses
	assert.Equal(t, 1, resp.Routes[1].Buses)
	assert.Equal(t, 0, resp.StopCounts["S2"])
}

func TestAllocate_InsufficientFleet(t *testing.T) {
	srv := NewServer(testEngine(t), nil, nil, nil, nil, "", nil)
	w := postJSON(t, srv.Router(), `{"total_buses":1,"cycle_seconds":60}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["required_minimum"])
	assert.Equal(t, float64(1), resp["provided"])
}

func TestAllocate_NegativeFleet(t *testing.T) {
	srv := NewServer(testEngine(t), nil, nil, nil, nil, "", nil)
	w := postJSON(t, srv.Router(), `{"total_buses":-1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "non-negative")
}

func TestAllocate_UnparsableNumbersCoerceToZero(t *testing.T) {
	srv := NewServer(testEngine(t), nil, nil, nil, nil, "", nil)
	// "abc" buses coerce to 0, which is below the two-route minimum.
	w := postJSON(t, srv.Router(), `{"total_buses":"abc","cycle_seconds":"xyz"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "required_minimum")
}

func TestAllocate_FallsBackToCountsSource(t *testing.T) {
	source := counts.StaticSource{"S1": 100}
	srv := NewServer(testEngine(t), source, nil, nil, nil, "", nil)
	w := postJSON(t, srv.Router(), `{"total_buses":10,"cycle_seconds":600}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp allocationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 100, resp.StopCounts["S1"])
}

func TestAllocate_FormRequest(t *testing.T) {
	srv := NewServer(testEngine(t), nil, nil, nil, nil, "", nil)
	form := url.Values{"total_buses": {"5"}, "cycle_seconds": {"60"}, "S1": {"30"}}
	req := httptest.NewRequest(http.MethodPost, "/api/allocation", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp allocationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 30, resp.StopCounts["S1"])
}

func TestRoutesEndpoint(t *testing.T) {
	srv := NewServer(testEngine(t), nil, nil, nil, nil, "", nil)
	req := httptest.NewRequest(http.MethodGet, "/api/routes", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "north")
}

func TestAllocationsEndpoint_AuthAndHistory(t *testing.T) {
	store, err := history.NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	require.NoError(t, err)
	srv := NewServer(testEngine(t), nil, store, nil, nil, "secret", nil)
	router := srv.Router()

	// A successful allocation is recorded.
	w := postJSON(t, router, `{"total_buses":4,"cycle_seconds":60,"stop_counts":{"S1":10}}`)
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/allocations", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/allocations", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Allocations []history.Record `json:"allocations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Allocations, 1)
	assert.Equal(t, 4, resp.Allocations[0].TotalBuses)
}

func TestHealth(t *testing.T) {
	srv := NewServer(testEngine(t), nil, nil, nil, nil, "", nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
