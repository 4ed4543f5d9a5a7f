package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Harshitk-cp/trustmind/internal/belief"
	"github.com/Harshitk-cp/trustmind/internal/service"
	"github.com/Harshitk-cp/trustmind/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func newTestApp(t *testing.T) *App {
	t.Helper()
	t.Setenv("API_KEY", "")
	t.Setenv("RATE_LIMIT_RPS", "1000")
	t.Setenv("RATE_LIMIT_BURST", "1000")

	dir := t.TempDir()
	svc := service.NewTrustService(
		store.NewFileDatasetStore(filepath.Join(dir, "datasets")),
		store.NewFileClockStore(filepath.Join(dir, "current_time.csv")),
		store.NewMemoryProfileStore(),
		belief.NewEpisodicBuilder(belief.NewSource(3), zap.NewNop()),
		service.DefaultTrustOptions(),
		zap.NewNop(),
	)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewApp(ctx, svc, nil, zap.NewNop())
}

func do(t *testing.T, app *App, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/health", nil).Code)

	down := NewApp(context.Background(), app.Trust, stubPinger{err: errors.New("connection refused")}, zap.NewNop())
	assert.Equal(t, http.StatusServiceUnavailable, do(t, down, http.MethodGet, "/health", nil).Code)
}

func TestExperimentFlow(t *testing.T) {
	app := newTestApp(t)

	trials := map[string]any{"trials": []map[string]any{
		{"hint": "A", "found": true},
		{"hint": "A", "found": true},
		{"hint": "B", "found": true},
	}}
	rec := do(t, app, http.MethodPost, "/v1/informants", trials)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(0), decode(t, rec)["index"])

	rec = do(t, app, http.MethodPost, "/v1/informants/0/decide", map[string]string{"hint": "A"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A", decode(t, rec)["choice"])

	rec = do(t, app, http.MethodPost, "/v1/informants/0/outcome", map[string]any{"hint": "A", "choice": "A", "found": true})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "trusted_correct", out["verdict"])
	assert.Equal(t, true, out["updated"])

	rec = do(t, app, http.MethodPost, "/v1/informants/0/estimate", map[string]string{"sticker": "B"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, app, http.MethodGet, "/v1/clock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), decode(t, rec)["time"])

	rec = do(t, app, http.MethodPost, "/v1/informants/unknown", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), decode(t, rec)["index"])

	rec = do(t, app, http.MethodGet, "/v1/informants", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["count"])

	rec = do(t, app, http.MethodGet, "/v1/informants/1/similar?k=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])

	rec = do(t, app, http.MethodPost, "/v1/episodic/full", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, belief.FullEpisodicName, decode(t, rec)["name"])

	assert.Equal(t, http.StatusOK, do(t, app, http.MethodPost, "/v1/save", nil).Code)

	rec = do(t, app, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["informants"])
}

func TestErrorMapping(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusConflict, do(t, app, http.MethodPost, "/v1/informants/unknown", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodPost, "/v1/informants", map[string]any{"trials": []any{}}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodPost, "/v1/informants", map[string]any{
		"trials": []map[string]any{{"hint": "C", "found": true}},
	}).Code)
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/v1/informants/4", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodGet, "/v1/informants/x", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodPost, "/v1/informants/0/decide", map[string]string{"hint": "left"}).Code)
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodPost, "/v1/informants/0/decide", map[string]string{"hint": "A"}).Code)
}

func TestAuthRequiredWhenKeyConfigured(t *testing.T) {
	app := newTestApp(t)
	t.Setenv("API_KEY", "k")
	secured := NewApp(context.Background(), app.Trust, nil, zap.NewNop())

	assert.Equal(t, http.StatusUnauthorized, do(t, secured, http.MethodGet, "/v1/clock", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, secured, http.MethodGet, "/health", nil).Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/clock", nil)
	req.Header.Set("Authorization", "Bearer k")
	rec := httptest.NewRecorder()
	secured.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
