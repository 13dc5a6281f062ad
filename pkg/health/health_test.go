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
)

func up(context.Context) error { return nil }

func down(msg string) Checker {
	return func(context.Context) error { return errors.New(msg) }
}

// readiness runs the readiness handler once and decodes the body.
func readiness(t *testing.T, h *Handler) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler().LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusUp, resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestReadiness_OverallStatus(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(h *Handler)
		wantCode   int
		wantStatus Status
	}{
		{
			name:       "no checkers registered",
			setup:      func(*Handler) {},
			wantCode:   http.StatusOK,
			wantStatus: StatusUp,
		},
		{
			name: "all dependencies up",
			setup: func(h *Handler) {
				h.RegisterCritical("postgres", up)
				h.RegisterNonCritical("kafka", up)
				h.RegisterNonCritical("redis", up)
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusUp,
		},
		{
			name: "non-critical failure degrades but stays ready",
			setup: func(h *Handler) {
				h.RegisterCritical("postgres", up)
				h.RegisterNonCritical("kafka", down("broker unreachable"))
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusDegraded,
		},
		{
			name: "several non-critical failures still degraded",
			setup: func(h *Handler) {
				h.RegisterCritical("postgres", up)
				h.RegisterNonCritical("kafka", down("broker unreachable"))
				h.RegisterNonCritical("redis", down("connection refused"))
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusDegraded,
		},
		{
			name: "critical failure makes service not ready",
			setup: func(h *Handler) {
				h.RegisterCritical("postgres", down("connection refused"))
				h.RegisterNonCritical("kafka", up)
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusDown,
		},
		{
			name: "critical failure wins over degraded",
			setup: func(h *Handler) {
				h.RegisterNonCritical("kafka", down("broker unreachable"))
				h.RegisterCritical("postgres", down("connection refused"))
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusDown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler()
			tt.setup(h)

			code, resp := readiness(t, h)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, resp.Status)
		})
	}
}

func TestReadiness_ReportsPerCheckDetail(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("postgres", up)
	h.RegisterNonCritical("kafka", down("broker unreachable"))

	_, resp := readiness(t, h)

	pg := resp.Checks["postgres"]
	assert.Equal(t, StatusUp, pg.Status)
	assert.True(t, pg.Critical)
	assert.Empty(t, pg.Error)

	kafka := resp.Checks["kafka"]
	assert.Equal(t, StatusDown, kafka.Status)
	assert.False(t, kafka.Critical)
	assert.Equal(t, "broker unreachable", kafka.Error)
}

func TestRegister_DefaultsToCritical(t *testing.T) {
	h := NewHandler()
	h.Register("postgres", down("connection refused"))

	code, resp := readiness(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.True(t, resp.Checks["postgres"].Critical)
}

func TestRegister_SameNameReplacesChecker(t *testing.T) {
	h := NewHandler()
	h.Register("postgres", down("stale checker"))
	h.Register("postgres", up)

	code, resp := readiness(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Checks["postgres"].Status)
}
