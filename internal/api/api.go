// Package api implements the HTTP JSON surface of dealdesk.
//
// Conventions: every response body is JSON; error bodies are
// {"error": "..."} with the status carrying the failure kind (400
// validation, 401 unauthorized, 404 not found, 405 method, 429 rate
// limited, 500 unexpected). Timestamps render as ISO-8601 strings and
// monetary values as plain JSON numbers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmynk/dealdesk/internal/auth"
	"github.com/mmynk/dealdesk/internal/middleware"
	"github.com/mmynk/dealdesk/internal/ratelimit"
	"github.com/mmynk/dealdesk/internal/storage"
)

// API holds the handler dependencies.
type API struct {
	store    storage.Store
	sessions *auth.SessionManager
	admin    *auth.AdminVerifier
	limiter  *ratelimit.Limiter
}

// New creates the API with its collaborators.
func New(store storage.Store, sessions *auth.SessionManager, admin *auth.AdminVerifier, limiter *ratelimit.Limiter) *API {
	return &API{
		store:    store,
		sessions: sessions,
		admin:    admin,
		limiter:  limiter,
	}
}

// Routes builds the full route table. Login and health are public;
// everything else under /api/ sits behind the session gate.
func (a *API) Routes() http.Handler {
	protected := http.NewServeMux()
	protected.HandleFunc("/api/auth/logout", a.handleLogout)
	protected.HandleFunc("/api/auth/me", a.handleMe)
	protected.HandleFunc("/api/pipelines", a.handlePipelines)
	protected.HandleFunc("/api/pipelines/{id}", a.handlePipelineByID)
	protected.HandleFunc("/api/pipelines/{id}/stages", a.handleStages)
	protected.HandleFunc("/api/pipelines/{id}/cards", a.handlePipelineCards)
	protected.HandleFunc("/api/cards/{id}", a.handleCardByID)
	protected.HandleFunc("/api/leads", a.handleLeads)
	protected.HandleFunc("/api/leads/{id}", a.handleLeadByID)
	protected.HandleFunc("/api/contacts", a.handleContacts)
	protected.HandleFunc("/api/contacts/{id}", a.handleContactByID)
	protected.HandleFunc("/api/invoices", a.handleInvoices)
	protected.HandleFunc("/api/invoices/export", a.handleInvoiceExport)
	protected.HandleFunc("/api/invoices/{id}", a.handleInvoiceByID)
	protected.HandleFunc("/api/finances/salaries", a.handleSalaries)
	protected.HandleFunc("/api/finances/salaries/{id}", a.handleSalaryByID)
	protected.HandleFunc("/api/finances/fixed", a.handleFixedExpenses)
	protected.HandleFunc("/api/finances/fixed/{id}", a.handleFixedExpenseByID)
	protected.HandleFunc("/api/finances/settings", a.handleSettings)
	protected.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", a.handleLogin)
	mux.HandleFunc("/api/health", a.handleHealth)
	mux.Handle("/api/", middleware.RequireSession(a.sessions)(protected))
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// serverError logs the real failure and sends a generic 500; the body
// never carries internal detail.
func serverError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// storeError translates storage failures: absent entity → 404,
// anything else → logged 500.
func storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	serverError(w, r, err)
}

// decode parses a JSON request body; malformed input is a validation
// failure.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// isoTime renders a Unix timestamp as an ISO-8601 UTC string.
func isoTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

func isoTimePtr(unix *int64) *string {
	if unix == nil {
		return nil
	}
	s := isoTime(*unix)
	return &s
}

// parseDate accepts an ISO-8601 timestamp or a bare YYYY-MM-DD date.
func parseDate(s string) (int64, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Unix(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Unix(), nil
	}
	return 0, fmt.Errorf("invalid date %q", s)
}

// monthRange computes the inclusive calendar-month window for a
// YYYY-MM value: day 1 00:00:00 through the last second of the month.
func monthRange(month string) (from, to int64, err error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, want YYYY-MM", month)
	}
	return start.Unix(), start.AddDate(0, 1, 0).Unix() - 1, nil
}
