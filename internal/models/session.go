package models

// Session is a server-side login session for the admin user. The
// session id travels in an HttpOnly cookie; deleting the row revokes
// the login regardless of what the client still holds.
type Session struct {
	// ID is the unique identifier for the session (UUID format).
	ID string

	// Email is the admin identity the session was issued for.
	Email string

	// CreatedAt is the Unix timestamp when the session was created.
	CreatedAt int64

	// ExpiresAt is the Unix timestamp after which the session is dead.
	ExpiresAt int64
}
