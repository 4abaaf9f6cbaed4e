package core

import "time"

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"createdAt"`
}

// CredentialsInput is the body of the register and login requests.
type CredentialsInput struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Credential length limits, counted in runes after sanitization.
const (
	MinNameLength     = 3
	MaxNameLength     = 30
	MinPasswordLength = 6
)
