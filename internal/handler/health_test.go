package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

func TestHealthHandler(t *testing.T) {
	h := New(nil, nil, nil, testConfig())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	h.Health(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestReadyHandler(t *testing.T) {
	t.Run("all backends up", func(t *testing.T) {
		h := New(nil, nil, nil, testConfig(), &mockPinger{}, &mockPinger{})

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)

		h.Ready(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("one backend down", func(t *testing.T) {
		h := New(nil, nil, nil, testConfig(), &mockPinger{}, &mockPinger{err: assert.AnError})

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)

		h.Ready(rr, req)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, "storage unavailable", rr.Body.String())
	})
}
