// Package auth implements the single-admin login: credential
// verification against environment-configured values and revocable
// cookie sessions.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotConfigured      = errors.New("admin credentials not configured")
)

// AdminVerifier checks a login attempt against the configured admin
// identity. There is no user table; the credentials come from the
// environment at startup.
type AdminVerifier struct {
	email        string
	password     string
	passwordHash string
}

// NewAdminVerifier builds a verifier. passwordHash (bcrypt) takes
// precedence over the plaintext password when both are set.
func NewAdminVerifier(email, password, passwordHash string) *AdminVerifier {
	return &AdminVerifier{
		email:        email,
		password:     password,
		passwordHash: passwordHash,
	}
}

// Verify checks the attempt. Every failure returns the same
// ErrInvalidCredentials so the response cannot disclose which field was
// wrong, and both fields are always compared so the timing shape does
// not depend on which one mismatched.
func (v *AdminVerifier) Verify(email, password string) error {
	if v.email == "" || (v.password == "" && v.passwordHash == "") {
		return ErrNotConfigured
	}

	emailOK := constantTimeEqual(email, v.email)

	var passwordOK bool
	if v.passwordHash != "" {
		passwordOK = bcrypt.CompareHashAndPassword([]byte(v.passwordHash), []byte(password)) == nil
	} else {
		passwordOK = constantTimeEqual(password, v.password)
	}

	if !emailOK || !passwordOK {
		return ErrInvalidCredentials
	}
	return nil
}

// constantTimeEqual compares two strings without leaking where they
// diverge. Hashing first keeps the comparison length-independent.
func constantTimeEqual(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
