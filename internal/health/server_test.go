package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func serve(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRootKeepAlive(t *testing.T) {
	rec := serve(t, NewServer(":0", nil, zap.NewNop()), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, OnlineMessage, rec.Body.String())
}

func TestHealthReportsChecks(t *testing.T) {
	s := NewServer(":0", map[string]Check{
		"discord": func(context.Context) error { return nil },
	}, zap.NewNop())
	rec := serve(t, s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Checks["discord"])
}

func TestHealthDegraded(t *testing.T) {
	s := NewServer(":0", map[string]Check{
		"discord":  func(context.Context) error { return nil },
		"database": func(context.Context) error { return errors.New("connection refused") },
	}, zap.NewNop())
	rec := serve(t, s, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(t, NewServer(":0", nil, zap.NewNop()), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
