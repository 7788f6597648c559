package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpsRouter_Health(t *testing.T) {
	h := OpsRouter()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestOpsRouter_ReadyReportsFailingCheck(t *testing.T) {
	h := OpsRouter(
		Check{Name: "db", Fn: func(context.Context) error { return nil }},
		Check{Name: "redis", Fn: func(context.Context) error { return errors.New("connection refused") }},
	)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"db":"ok","redis":"connection refused"}`, w.Body.String())
}

func TestOpsRouter_Metrics(t *testing.T) {
	RealtimeEvents.WithLabelValues("chat_messages", "INSERT").Inc()

	w := httptest.NewRecorder()
	OpsRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "housie_realtime_events_total")
}
