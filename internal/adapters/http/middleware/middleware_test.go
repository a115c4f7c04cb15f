package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clubhouse/internal/domain/person"
	"clubhouse/internal/domain/schedule"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// TestRateLimit_PerIP verifies each client gets its own bucket.
func TestRateLimit_PerIP(t *testing.T) {
	limiter := NewRateLimiter(1, 2, nil)
	defer limiter.Stop()
	h := RateLimit(limiter)(okHandler)

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1:5000"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, code)
		}
	}
	if code := send("10.0.0.1:5001"); code != http.StatusTooManyRequests {
		t.Errorf("third request from same IP: status = %d, want 429", code)
	}
	if code := send("10.0.0.2:5000"); code != http.StatusOK {
		t.Errorf("other IP: status = %d, want 200", code)
	}
}

// TestRateLimiter_Evict verifies idle visitors are dropped.
func TestRateLimiter_Evict(t *testing.T) {
	limiter := NewRateLimiter(10, 10, nil)
	defer limiter.Stop()
	limiter.Allow("10.0.0.1")

	limiter.evict(time.Now().Add(time.Minute))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if len(limiter.visitors) != 0 {
		t.Errorf("visitors = %d, want 0", len(limiter.visitors))
	}
}

// TestSecurityHeaders verifies the OWASP headers are set.
func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, h := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
}

// TestCSRF_ExemptsJSON verifies JSON requests pass while form posts need a token.
func TestCSRF_ExemptsJSON(t *testing.T) {
	h := CSRF([]byte(strings.Repeat("k", 32)), false, nil)(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("JSON post: status = %d, want 200", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("form post without token: status = %d, want 403", rr.Code)
	}
}

func lookupFrom(people ...person.Person) ActorLookup {
	return func(_ context.Context, id string) (person.Person, error) {
		for _, p := range people {
			if p.ID == id {
				return p, nil
			}
		}
		if id == "broken" {
			return person.Person{}, errors.New("directory down")
		}
		return person.Person{}, schedule.NotFound("person", id)
	}
}

// TestRequireRole verifies the actor guard outcomes.
func TestRequireRole(t *testing.T) {
	lookup := lookupFrom(
		person.Person{ID: "m1", Name: "Morgan", Role: person.RoleManager},
		person.Person{ID: "a1", Name: "Alex", Role: person.RoleAthlete},
	)
	var seen person.Person
	h := RequireRole(lookup, person.RoleManager, person.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name  string
		actor string
		want  int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"unknown actor", "ghost", http.StatusUnauthorized},
		{"directory failure", "broken", http.StatusInternalServerError},
		{"athlete forbidden", "a1", http.StatusForbidden},
		{"manager allowed", "m1", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
			if tt.actor != "" {
				req.Header.Set(ActorHeader, tt.actor)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
	if seen.ID != "m1" {
		t.Errorf("actor in context = %q, want m1", seen.ID)
	}
}

// TestRecover verifies a panic becomes a 500 and is reported.
func TestRecover(t *testing.T) {
	var reported error
	h := Recover(nil, func(err error, tags map[string]string) {
		reported = err
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
	if reported == nil || !strings.Contains(reported.Error(), "boom") {
		t.Errorf("reported = %v, want panic error", reported)
	}
}
