package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/dealdesk/internal/auth"
	"github.com/mmynk/dealdesk/internal/storage/sqlite"
)

// TestMetricsPathLabelBehindSessionGate wires Metrics around a session
// gate the same way cmd/server does and checks that the counter is
// labeled with the route the inner mux matched, not the /api/ prefix
// the outer mux saw.
func TestMetricsPathLabelBehindSessionGate(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	sessions := auth.NewSessionManager("metrics-test-secret-32-bytes!!!!", time.Hour, store)
	token, err := sessions.Start(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	inner := http.NewServeMux()
	inner.HandleFunc("/api/boards/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	outer := http.NewServeMux()
	outer.Handle("/api/", RequireSession(sessions)(inner))
	handler := Metrics(outer)

	req := httptest.NewRequest(http.MethodGet, "/api/boards/b-1", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	matched := testutil.ToFloat64(requestsTotal.WithLabelValues(http.MethodGet, "/api/boards/{id}", "200"))
	if matched != 1 {
		t.Errorf("requests_total{path=\"/api/boards/{id}\"} = %v, want 1", matched)
	}
	leaked := testutil.ToFloat64(requestsTotal.WithLabelValues(http.MethodGet, "/api/", "200"))
	if leaked != 0 {
		t.Errorf("requests_total{path=\"/api/\"} = %v, want 0", leaked)
	}
}

// A request the gate rejects never reaches the inner mux, so the
// counter falls back to the outer pattern.
func TestMetricsPathLabelUnauthenticated(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	sessions := auth.NewSessionManager("metrics-test-secret-32-bytes!!!!", time.Hour, store)

	inner := http.NewServeMux()
	inner.HandleFunc("/api/boards/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	outer := http.NewServeMux()
	outer.Handle("/api/", RequireSession(sessions)(inner))
	handler := Metrics(outer)

	req := httptest.NewRequest(http.MethodGet, "/api/boards/b-1", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	rejected := testutil.ToFloat64(requestsTotal.WithLabelValues(http.MethodGet, "/api/", "401"))
	if rejected != 1 {
		t.Errorf("requests_total{path=\"/api/\",status=\"401\"} = %v, want 1", rejected)
	}
}
