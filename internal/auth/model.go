package auth

import "time"

// User represents a row in the remote users table. The portal only reads
// these records; they are owned by the hosted store.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string // bcrypt hash, or a legacy cleartext demo row
	CreatedAt time.Time
}

// Session is the authenticated identity embedded in the signed token and
// re-derived from it on every protected request.
type Session struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}
