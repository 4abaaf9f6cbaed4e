package core

import "time"

// Session is the decoded content of a signed session token.
//
// Sessions are never persisted; the token carried by the client cookie is
// the only copy.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"name"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at t.
func (s *Session) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// SignInResult is returned by a successful login.
// The token goes into the session cookie and is never echoed in a response body.
type SignInResult struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
	Token   string   `json:"-"`
}

// CreateSessionResult pairs a session with its signed token.
type CreateSessionResult struct {
	Session *Session `json:"session"`
	Token   string   `json:"token"`
}

// VendorScore is one row of the average-score-by-vendor analytics.
type VendorScore struct {
	VendorID     string  `json:"vendorId"`
	AverageScore float64 `json:"averageScore"`
}
