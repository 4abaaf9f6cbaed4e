package core

import (
	"log/slog"
	"time"
)

type Config struct {
	Secret string

	Storage Storage

	HTTP HTTPAdapter

	// Optional config
	SessionConfig  *SessionConfig
	PasswordHasher PasswordHandler
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// App is the assembled application handed to the HTTP adapter.
type App struct {
	Auth      AuthHandler
	Potions   PotionHandler
	Endpoints []Endpoint
	Session   SessionConfig

	// RequestTimeout bounds every store call made while serving a request.
	RequestTimeout time.Duration
	Logger         *slog.Logger
}
