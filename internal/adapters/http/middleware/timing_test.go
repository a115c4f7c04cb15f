package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type requestLog struct {
	mu      sync.Mutex
	entries []string
	status  []int
}

func (l *requestLog) ObserveRequest(route string, status int, _ time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, route)
	l.status = append(l.status, status)
}

func timedRouter(obs RequestObserver, log *zap.Logger, threshold time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(Timing(log, obs, threshold))
	r.Get("/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return r
}

// TestTimingMiddleware_UsesRoutePattern verifies requests are grouped by route, not path.
func TestTimingMiddleware_UsesRoutePattern(t *testing.T) {
	obs := &requestLog{}
	h := timedRouter(obs, nil, time.Hour)

	for _, path := range []string{"/sessions/a", "/sessions/b"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rr.Code)
		}
	}

	if len(obs.entries) != 2 {
		t.Fatalf("observed %d requests, want 2", len(obs.entries))
	}
	for i, route := range obs.entries {
		if route != "GET /sessions/{id}" {
			t.Errorf("route = %q, want GET /sessions/{id}", route)
		}
		if obs.status[i] != http.StatusNotFound {
			t.Errorf("observed status = %d, want 404", obs.status[i])
		}
	}
}

// TestTimingMiddleware_UnmatchedRoute verifies unknown paths share one series.
func TestTimingMiddleware_UnmatchedRoute(t *testing.T) {
	obs := &requestLog{}
	h := timedRouter(obs, nil, time.Hour)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nowhere/123", nil))

	if len(obs.entries) != 1 || obs.entries[0] != "GET unmatched" {
		t.Errorf("entries = %v, want [GET unmatched]", obs.entries)
	}
}

// TestTimingMiddleware_WarnsWhenSlow verifies the slow-request warning.
func TestTimingMiddleware_WarnsWhenSlow(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	h := timedRouter(nil, zap.New(core), time.Nanosecond)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sessions/a", nil))

	if n := logs.FilterField(zap.String("event", "slow_request")).Len(); n != 1 {
		t.Errorf("slow_request logs = %d, want 1", n)
	}
}
