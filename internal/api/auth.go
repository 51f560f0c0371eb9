package api

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mmynk/dealdesk/internal/auth"
	"github.com/mmynk/dealdesk/internal/middleware"
)

const (
	loginMaxAttempts = 5
	loginWindow      = 15 * time.Minute
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin authenticates the admin. Throttled per client identifier
// before credentials are even read, so password guessing burns the
// window whether or not the body parses.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	key := clientKey(r)
	res := a.limiter.Check(key, loginMaxAttempts, loginWindow)
	if !res.Allowed {
		retry := res.RetryAfterSeconds(time.Now())
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		writeError(w, http.StatusTooManyRequests, "too many login attempts, try again later")
		return
	}

	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if err := a.admin.Verify(req.Email, req.Password); err != nil {
		if errors.Is(err, auth.ErrNotConfigured) {
			// Deliberately generic: the body must not reveal that the
			// deployment is missing credentials.
			slog.Error("Login rejected: admin credentials not configured")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		slog.Warn("Login failed", "client", key)
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := a.sessions.Start(r.Context(), req.Email)
	if err != nil {
		serverError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.sessions.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	slog.Info("Admin logged in", "client", key)
	writeJSON(w, http.StatusOK, map[string]string{"email": req.Email})
}

// handleLogout deletes the session row named by the cookie and clears
// the cookie.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		if err := a.sessions.End(r.Context(), cookie.Value); err != nil && !errors.Is(err, auth.ErrInvalidSession) {
			serverError(w, r, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMe returns the identity behind the current session.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"email":      session.Email,
		"expires_at": isoTime(session.ExpiresAt),
	})
}

// clientKey identifies the caller for rate limiting: first hop of
// X-Forwarded-For when present, otherwise the connection address.
func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
