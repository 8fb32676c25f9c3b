/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Sheet upload and readback through the HTTP surface
- Pipeline run endpoint (success, empty sources, concurrent run)
- Output table endpoints
*/
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metas/incentive-engine/api"
	"github.com/metas/incentive-engine/calc"
	"github.com/metas/incentive-engine/table"
	"github.com/metas/incentive-engine/table/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestServer(m *store.Memory) *httptest.Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := api.NewHandler(m, &calc.Pipeline{Store: m, Log: log}, log)
	return httptest.NewServer(api.NewRouter(h))
}

func putSheet(t *testing.T, srv *httptest.Server, name string, dto api.TableDTO) *http.Response {
	t.Helper()
	body, err := json.Marshal(dto)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/sheets/"+name, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func getTable(t *testing.T, srv *httptest.Server, path string) (api.TableDTO, int) {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var dto api.TableDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dto))
	return dto, resp.StatusCode
}

func seedSources(t *testing.T, m *store.Memory) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, m.WriteTable(ctx, calc.SheetRosterTrier, table.FromRows([][]string{
		{"Código", "Funcionário"},
		{"342", "MARIA SILVA"},
	})))
	require.NoError(t, m.WriteTable(ctx, calc.SheetRosterSCI, table.FromRows([][]string{
		{"Nome", "Filial", "Cargo atual"},
		{"Maria Silva", "F01", "10 - Farmaceutico"},
	})))
}

// =============================================================================
// SHEET ENDPOINTS
// =============================================================================

func TestPutSheet_RoundTrip(t *testing.T) {
	// GIVEN: A running server with an empty store
	m := store.NewMemory()
	srv := newTestServer(m)
	defer srv.Close()

	// WHEN: Uploading a table and reading it back
	resp := putSheet(t, srv, "2_META", api.TableDTO{
		Columns: []string{"Filial", "Colaborador"},
		Rows:    [][]string{{"1", "MARIA SILVA"}},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got, status := getTable(t, srv, "/api/sheets/2_META")

	// THEN: The table comes back unchanged
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"Filial", "Colaborador"}, got.Columns)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, []string{"1", "MARIA SILVA"}, got.Rows[0])
}

func TestPutSheet_RejectsInvalidPayload(t *testing.T) {
	m := store.NewMemory()
	srv := newTestServer(m)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/sheets/2_META", bytes.NewReader([]byte("not json")))
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPutSheet_RejectsMissingColumns(t *testing.T) {
	m := store.NewMemory()
	srv := newTestServer(m)
	defer srv.Close()

	resp := putSheet(t, srv, "2_META", api.TableDTO{Rows: [][]string{{"1"}}})
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSheet_AbsentSheetReadsEmpty(t *testing.T) {
	m := store.NewMemory()
	srv := newTestServer(m)
	defer srv.Close()

	got, status := getTable(t, srv, "/api/sheets/nope")

	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, got.Columns)
	assert.Empty(t, got.Rows)
}

// =============================================================================
// RUN ENDPOINT
// =============================================================================

func TestRunPipeline_Success(t *testing.T) {
	// GIVEN: Both roster sources uploaded
	m := store.NewMemory()
	seedSources(t, m)
	srv := newTestServer(m)
	defer srv.Close()

	// WHEN: Triggering a run
	resp, err := srv.Client().Post(srv.URL+"/api/runs", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	// THEN: The run reports its record count and the calc sheet exists
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var run api.RunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.Equal(t, 1, run.Records)

	got, status := getTable(t, srv, "/api/calc")
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, got.Rows, 1)
}

func TestRunPipeline_MissingSourcesIsUnprocessable(t *testing.T) {
	// GIVEN: No roster sources at all
	m := store.NewMemory()
	srv := newTestServer(m)
	defer srv.Close()

	// WHEN: Triggering a run
	resp, err := srv.Client().Post(srv.URL+"/api/runs", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	// THEN: The run is rejected and nothing is written
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var e api.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.NotEmpty(t, e.Error)

	got, status := getTable(t, srv, "/api/calc")
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, got.Rows)
}

// =============================================================================
// OUTPUT ENDPOINTS
// =============================================================================

func TestGetRollup_EmptyBeforeAnyRun(t *testing.T) {
	m := store.NewMemory()
	srv := newTestServer(m)
	defer srv.Close()

	got, status := getTable(t, srv, "/api/rollup")

	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, got.Rows)
}

func TestHealth(t *testing.T) {
	m := store.NewMemory()
	srv := newTestServer(m)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
