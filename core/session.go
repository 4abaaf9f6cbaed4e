package core

import "time"

// SessionConfig controls session lifetime and the cookie carrying the token.
type SessionConfig struct {
	MaxAge       time.Duration
	CookieName   string
	CookiePath   string
	CookieSecure bool
}

const DefaultCookieName = "apothecary_token"

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxAge:     24 * time.Hour,
		CookieName: DefaultCookieName,
		CookiePath: "/",
	}
}
