package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fyrsmithlabs/intentd/internal/category"
	"github.com/fyrsmithlabs/intentd/internal/classifier"
	"github.com/fyrsmithlabs/intentd/internal/fusion"
)

type stubEngine struct {
	result  classifier.Result
	err     error
	trained bool
	got     string
}

func (s *stubEngine) Classify(_ context.Context, query string) (classifier.Result, error) {
	s.got = query
	return s.result, s.err
}

func (s *stubEngine) Trained() bool { return s.trained }

func newTestServer(t *testing.T, engine *stubEngine) *Server {
	t.Helper()
	srv, err := NewServer(engine, zaptest.NewLogger(t), nil)
	require.NoError(t, err)
	return srv
}

func TestHandleClassify(t *testing.T) {
	engine := &stubEngine{
		trained: true,
		result: classifier.Result{
			Query:      "নামজারি ফি কত",
			Category:   category.NamjariFee,
			Confidence: 0.9,
			Method:     fusion.MethodPattern,
		},
	}
	srv := newTestServer(t, engine)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify",
		strings.NewReader(`{"query":"নামজারি ফি কত"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "নামজারি ফি কত", engine.got)

	var result classifier.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, category.NamjariFee, result.Category)
	assert.Equal(t, fusion.MethodPattern, result.Method)
	assert.Equal(t, 0.9, result.Confidence)
}

func TestHandleClassifyMissingQuery(t *testing.T) {
	srv := newTestServer(t, &stubEngine{trained: true})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleClassifyNotTrained(t *testing.T) {
	srv := newTestServer(t, &stubEngine{err: classifier.ErrNotTrained})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify",
		strings.NewReader(`{"query":"কিছু"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &stubEngine{trained: true})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Trained)
}

func TestHandleHealthUntrained(t *testing.T) {
	srv := newTestServer(t, &stubEngine{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "training", resp.Status)
	assert.False(t, resp.Trained)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubEngine{trained: true})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
