package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/safetrail/server/internal/domain/providers"
	apperrors "github.com/safetrail/server/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMatcher struct {
	route *providers.MatchedRoute
	err   error
	got   []providers.TracePoint
}

func (m *stubMatcher) Match(_ context.Context, points []providers.TracePoint) (*providers.MatchedRoute, error) {
	m.got = points
	if m.err != nil {
		return nil, m.err
	}
	return m.route, nil
}

func TestRouteHandler_Match(t *testing.T) {
	t.Run("returns matched route", func(t *testing.T) {
		matcher := &stubMatcher{route: &providers.MatchedRoute{
			Geometry:   [][]float64{{3.3, 6.5}, {3.4, 6.6}},
			Confidence: 0.92,
		}}
		handler := NewRouteHandler(matcher)

		body := `{"points": [{"latitude": 6.5, "longitude": 3.3}, {"latitude": 6.6, "longitude": 3.4}]}`
		req := httptest.NewRequest(http.MethodPost, "/api/routes/match", strings.NewReader(body))
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()

		handler.Match(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, matcher.got, 2)
		assert.Contains(t, rec.Body.String(), "0.92")
	})

	t.Run("requires user identity", func(t *testing.T) {
		handler := NewRouteHandler(&stubMatcher{})
		req := httptest.NewRequest(http.MethodPost, "/api/routes/match", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		handler.Match(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects traces with fewer than two points", func(t *testing.T) {
		handler := NewRouteHandler(&stubMatcher{})
		req := httptest.NewRequest(http.MethodPost, "/api/routes/match",
			strings.NewReader(`{"points": [{"latitude": 6.5, "longitude": 3.3}]}`))
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()

		handler.Match(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps matcher failures to bad gateway", func(t *testing.T) {
		handler := NewRouteHandler(&stubMatcher{err: apperrors.NewExternalError("osrm unreachable", nil)})
		req := httptest.NewRequest(http.MethodPost, "/api/routes/match",
			strings.NewReader(`{"points": [{"latitude": 6.5, "longitude": 3.3}, {"latitude": 6.6, "longitude": 3.4}]}`))
		req.Header.Set("X-User-ID", "user-1")
		rec := httptest.NewRecorder()

		handler.Match(rec, req)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
