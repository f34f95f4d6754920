package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inventory-store/internal/adapter/storage"
	"github.com/rl1809/inventory-store/internal/core/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	svc := service.NewInventoryService(storage.NewMemoryAdapter(), nil, nil)
	mux := http.NewServeMux()
	NewHTTPHandler(svc).Routes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body == "" {
		req.Body = http.NoBody
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusCreated {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func TestHTTP_Lifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodPost, "/api/inventory/sku", `{"total":100}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := do(t, srv, http.MethodPost, "/api/inventory/sku", `{"total":5}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["message"], "exists")

	resp, body = do(t, srv, http.MethodPost, "/api/inventory/sku/deduct", `{"count":30}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(70), body["current"])

	resp, body = do(t, srv, http.MethodPost, "/api/inventory/sku/deduct", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(69), body["current"], "count defaults to one")

	resp, _ = do(t, srv, http.MethodPost, "/api/inventory/sku/deduct", `{"count":1000}`)
	assert.Equal(t, http.StatusGone, resp.StatusCode)

	resp, body = do(t, srv, http.MethodPost, "/api/inventory/sku/return", `{"amount":11}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(80), body["current"])

	resp, _ = do(t, srv, http.MethodPost, "/api/inventory/sku/return", `{"amount":21}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = do(t, srv, http.MethodPost, "/api/inventory/sku/increase", `{"by":20}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(120), body["total"])
	assert.Equal(t, float64(100), body["current"])

	resp, body = do(t, srv, http.MethodGet, "/api/inventory/sku/memory", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(8), body["bytes"])

	resp, body = do(t, srv, http.MethodDelete, "/api/inventory/sku", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(120), body["total"])
	assert.Equal(t, float64(100), body["current"])

	resp, _ = do(t, srv, http.MethodGet, "/api/inventory/sku", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTP_SetResets(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodPut, "/api/inventory/sku", `{"total":10}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	do(t, srv, http.MethodPost, "/api/inventory/sku/deduct", `{"count":4}`)

	resp, _ = do(t, srv, http.MethodPut, "/api/inventory/sku", `{"total":3}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := do(t, srv, http.MethodGet, "/api/inventory/sku", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, float64(3), body["current"])
}

func TestHTTP_OutOfRange(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodPut, "/api/inventory/sku", `{"total":4294967296}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "out of range, max = 4294967295", body["message"])
}

func TestHTTP_AbsentKey(t *testing.T) {
	srv := newTestServer(t)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/inventory/nope", ""},
		{http.MethodDelete, "/api/inventory/nope", ""},
		{http.MethodPost, "/api/inventory/nope/deduct", `{"count":1}`},
		{http.MethodPost, "/api/inventory/nope/increase", `{"by":1}`},
		{http.MethodPost, "/api/inventory/nope/return", `{"amount":1}`},
		{http.MethodGet, "/api/inventory/nope/memory", ""},
	} {
		resp, body := do(t, srv, tc.method, tc.path, tc.body)
		assert.Equalf(t, http.StatusNotFound, resp.StatusCode, "%s %s", tc.method, tc.path)
		assert.Equal(t, "no value", body["message"])
	}
}

func TestHTTP_InvalidBody(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodPut, "/api/inventory/sku", `{"total":-1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTP_MissingArgumentLeavesRecord(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodPut, "/api/inventory/sku", `{"total":5}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	for _, tc := range []struct{ method, path, body, message string }{
		{http.MethodPut, "/api/inventory/sku", `{"totl":5}`, "missing total"},
		{http.MethodPut, "/api/inventory/sku", `{}`, "missing total"},
		{http.MethodPost, "/api/inventory/fresh", `{}`, "missing total"},
		{http.MethodPost, "/api/inventory/sku/increase", `{}`, "missing by"},
		{http.MethodPost, "/api/inventory/sku/increase", `{"bye":3}`, "missing by"},
		{http.MethodPost, "/api/inventory/sku/return", `{}`, "missing amount"},
		{http.MethodPost, "/api/inventory/sku/return", `{"amt":1}`, "missing amount"},
	} {
		resp, body := do(t, srv, tc.method, tc.path, tc.body)
		assert.Equalf(t, http.StatusBadRequest, resp.StatusCode, "%s %s %s", tc.method, tc.path, tc.body)
		assert.Equal(t, tc.message, body["message"])
	}

	resp, body := do(t, srv, http.MethodGet, "/api/inventory/sku", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(5), body["total"])
	assert.Equal(t, float64(5), body["current"])

	resp, _ = do(t, srv, http.MethodGet, "/api/inventory/fresh", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTP_SnapshotWithoutStore(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodPost, "/api/snapshot", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHTTP_Health(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}
