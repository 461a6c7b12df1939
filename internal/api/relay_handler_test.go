package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/netric-solutions/quote-bridge/internal/rate"
	"github.com/netric-solutions/quote-bridge/internal/relay"
)

func newRelayTestApp(t *testing.T, downstreamURL string) (*fiber.App, relay.Store) {
	t.Helper()
	logger := zap.NewNop()
	st := relay.NewMemoryStore()
	mgr := rate.NewManager(rate.Config{RequestsPerSecond: 100, Burst: 100})
	fwd := relay.NewForwarder(logger, mgr, downstreamURL, 2*time.Second)
	handler := NewRelayHandler(logger, st, fwd, nil)

	app := fiber.New()
	app.Post("/webhook", handler.HandleWebhook)
	app.Get("/stored-data", handler.HandleStoredData)
	app.Post("/retry-share/:position", handler.HandleRetryShare)
	return app, st
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestHandleWebhook_ForwardSuccess(t *testing.T) {
	var forwarded map[string]any
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&forwarded)
		w.WriteHeader(http.StatusOK)
	}))
	defer downstream.Close()

	app, st := newRelayTestApp(t, downstream.URL)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"order":"A-1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "Data forwarded successfully", body["message"])
	assert.Equal(t, float64(0), body["data_position"])

	// Stored and forwarded payloads both carry the intake timestamp.
	stored, err := st.Get(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "A-1", stored["order"])
	assert.Contains(t, stored, "received_at")
	assert.Contains(t, forwarded, "received_at")
}

func TestHandleWebhook_EmptyBody(t *testing.T) {
	app, st := newRelayTestApp(t, "http://localhost:1")

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Invalid JSON data", body["message"])

	n, err := st.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n, "rejected payloads must not be stored")
}

func TestHandleWebhook_ForwardFailureStillStores(t *testing.T) {
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer downstream.Close()

	app, st := newRelayTestApp(t, downstream.URL)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"order":"A-2"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "partial_success", body["status"])
	assert.Equal(t, float64(0), body["data_position"])

	n, err := st.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestHandleStoredData(t *testing.T) {
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer downstream.Close()

	app, _ := newRelayTestApp(t, downstream.URL)

	for _, payload := range []string{`{"order":"A-1"}`, `{"order":"A-2"}`} {
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		_, err := app.Test(req, 5000)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/stored-data", nil)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(2), body["count"])
	data, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 2)
	first, ok := data[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "A-1", first["order"])
}

func TestHandleRetryShare(t *testing.T) {
	var hits int
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer downstream.Close()

	app, _ := newRelayTestApp(t, downstream.URL)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"order":"A-1"}`))
	req.Header.Set("Content-Type", "application/json")
	_, err := app.Test(req, 5000)
	require.NoError(t, err)

	retry := httptest.NewRequest(http.MethodPost, "/retry-share/0", nil)
	resp, err := app.Test(retry, 5000)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, 2, hits)
}

func TestHandleRetryShare_InvalidPosition(t *testing.T) {
	app, _ := newRelayTestApp(t, "http://localhost:1")

	for _, path := range []string{"/retry-share/99", "/retry-share/-1", "/retry-share/abc"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		resp, err := app.Test(req, 5000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "path %s", path)
	}
}
