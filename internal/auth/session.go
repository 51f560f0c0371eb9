package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmynk/dealdesk/internal/models"
	"github.com/mmynk/dealdesk/internal/storage"
)

var (
	ErrInvalidSession = errors.New("invalid or expired session")
	ErrMissingSession = errors.New("session cookie required")
)

// SessionManager issues and validates login sessions. The cookie value
// is a signed JWT carrying only the session id; the session row in
// storage is authoritative, so deleting it revokes the login even while
// the token is still within its signature lifetime.
type SessionManager struct {
	secretKey []byte
	ttl       time.Duration
	store     storage.Store
}

// sessionClaims is the JWT payload: session id plus standard expiry.
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewSessionManager creates a session manager. secretKey should be a
// strong random string (e.g., 32 bytes); ttl is how long a login lasts.
func NewSessionManager(secretKey string, ttl time.Duration, store storage.Store) *SessionManager {
	return &SessionManager{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		store:     store,
	}
}

// TTL reports how long issued sessions live, for cookie expiry.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Start creates a session row for the admin identity and returns the
// signed token to set as the cookie value.
func (m *SessionManager) Start(ctx context.Context, email string) (string, error) {
	now := time.Now()
	session := &models.Session{
		Email:     email,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(m.ttl).Unix(),
	}
	if err := m.store.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	claims := &sessionClaims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Validate parses the token, verifies the signature, and loads the
// session row. A missing or expired row invalidates the login.
func (m *SessionManager) Validate(ctx context.Context, token string) (*models.Session, error) {
	claims, err := m.parse(token)
	if err != nil {
		return nil, err
	}

	session, err := m.store.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if time.Now().Unix() >= session.ExpiresAt {
		return nil, ErrInvalidSession
	}
	return session, nil
}

// End deletes the session row named by the token. Ending an already
// dead session is not an error.
func (m *SessionManager) End(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return err
	}
	if err := m.store.DeleteSession(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (m *SessionManager) parse(token string) (*sessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(
		token,
		&sessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			// Verify the signing method
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
