// Package middleware provides the HTTP middleware chain: session gate,
// request logging, and metrics.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mmynk/dealdesk/internal/auth"
	"github.com/mmynk/dealdesk/internal/models"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "dealdesk_session"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const sessionKey contextKey = "session"

// SessionFromContext extracts the validated session from the context.
// Returns nil if the request did not pass the session gate.
func SessionFromContext(ctx context.Context) *models.Session {
	session, _ := ctx.Value(sessionKey).(*models.Session)
	return session
}

// RequireSession returns a middleware that validates the session cookie
// and rejects unauthenticated requests with 401 before any handler
// runs. Handlers behind it never send their own auth failures.
func RequireSession(sessions *auth.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			session, err := sessions.Validate(r.Context(), cookie.Value)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			gated := r.WithContext(ctx)
			next.ServeHTTP(w, gated)

			// The inner mux stamps its matched pattern on the copy, not
			// on r. Carry it back so Metrics labels the route the request
			// actually hit instead of the outer /api/ prefix.
			if gated.Pattern != "" {
				r.Pattern = gated.Pattern
			}
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
