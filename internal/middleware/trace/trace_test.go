package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type observation struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	mu   sync.Mutex
	seen []observation
}

func (f *fakeRecorder) ObserveRequest(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, observation{method, route, status})
}

func TestMiddleware_GeneratesRequestID(t *testing.T) {
	var seenID string
	h := NewMiddleware(nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/expenses", nil))

	if _, err := uuid.Parse(seenID); err != nil {
		t.Fatalf("request id %q is not a uuid: %v", seenID, err)
	}
	if got := rec.Header().Get(HeaderRequestID); got != seenID {
		t.Errorf("response header = %q, want %q", got, seenID)
	}
}

func TestMiddleware_InboundRequestID(t *testing.T) {
	tests := []struct {
		name    string
		inbound string
		keep    bool
	}{
		{"accepted", "client-abc-123", true},
		{"too long", strings.Repeat("x", 200), false},
		{"control characters", "bad\nid", false},
		{"spaces", "has space", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMiddleware(nil).Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(HeaderRequestID, tt.inbound)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(HeaderRequestID)
			if (got == tt.inbound) != tt.keep {
				t.Errorf("inbound %q kept = %v, want %v", tt.inbound, got == tt.inbound, tt.keep)
			}
		})
	}
}

func TestMiddleware_RecordsStatusAndRoute(t *testing.T) {
	rec := &fakeRecorder{}
	m := NewMiddleware(
		func(*http.Request) string { return "10.0.0.1" },
		WithRecorder(rec),
		WithRouteResolver(func(r *http.Request) string { return "GET /expenses/{id}" }),
	)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.WriteHeader(http.StatusInternalServerError) // superfluous, ignored
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/expenses/9", nil))

	if len(rec.seen) != 1 {
		t.Fatalf("expected one observation, got %d", len(rec.seen))
	}
	want := observation{http.MethodGet, "GET /expenses/{id}", http.StatusNotFound}
	if rec.seen[0] != want {
		t.Errorf("observation = %+v, want %+v", rec.seen[0], want)
	}
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	rec := &fakeRecorder{}
	h := NewMiddleware(nil, WithRecorder(rec)).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.seen[0].status != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.seen[0].status)
	}
}
