// Package apothecary assembles the potion catalog and user authentication
// services and hands them to an HTTP adapter.
package apothecary

import (
	"fmt"
	"time"

	"github.com/lborres/apothecary/core"
	"github.com/lborres/apothecary/pkg/crypto"
	"github.com/lborres/apothecary/services"
)

// interfaces
type (
	Storage         = core.Storage
	HTTPAdapter     = core.HTTPAdapter
	PasswordHandler = core.PasswordHandler
)

// structs
type (
	App           = core.App
	Config        = core.Config
	SessionConfig = core.SessionConfig
)

type (
	User     = core.User
	Session  = core.Session
	Potion   = core.Potion
	Document = core.Document
)

const (
	defaultSecretLen      = 32
	defaultRequestTimeout = 10 * time.Second
)

// Constructors & helpers (convenience re-exports)
var (
	NewArgon2            = crypto.NewArgon2
	DefaultSessionConfig = core.DefaultSessionConfig
)

var (
	ErrUserExists         = core.ErrUserExists
	ErrUserNotFound       = core.ErrUserNotFound
	ErrInvalidCredentials = core.ErrInvalidCredentials
)

var (
	ErrMissingToken   = core.ErrMissingToken
	ErrInvalidToken   = core.ErrInvalidToken
	ErrSessionExpired = core.ErrSessionExpired
)

var (
	ErrPotionNotFound = core.ErrPotionNotFound
	ErrValidation     = core.ErrValidation
	ErrInvalidBody    = core.ErrInvalidBody
)

var (
	ErrStorageRequired     = core.ErrStorageRequired
	ErrHTTPAdapterRequired = core.ErrHTTPAdapterRequired
	ErrSecretRequired      = core.ErrSecretRequired
	ErrSecretTooShort      = core.ErrSecretTooShort
)

func New(config Config) (*App, error) {
	if config.Secret == "" {
		return nil, ErrSecretRequired
	}
	if len(config.Secret) < defaultSecretLen {
		return nil, fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, defaultSecretLen)
	}
	if config.Storage == nil {
		return nil, ErrStorageRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}

	// Set Defaults

	sessionConfig := DefaultSessionConfig()
	if config.SessionConfig != nil {
		if config.SessionConfig.MaxAge > 0 {
			sessionConfig.MaxAge = config.SessionConfig.MaxAge
		}
		if config.SessionConfig.CookieName != "" {
			sessionConfig.CookieName = config.SessionConfig.CookieName
		}
		if config.SessionConfig.CookiePath != "" {
			sessionConfig.CookiePath = config.SessionConfig.CookiePath
		}
		sessionConfig.CookieSecure = config.SessionConfig.CookieSecure
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = crypto.NewArgon2()
	}

	requestTimeout := config.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	sessionManager := services.NewSessionManager(sessionConfig, crypto.NewJWTIssuer(config.Secret))

	app := &App{
		Auth:           services.NewAuthService(config.Storage, passwordHasher, sessionManager, config.Logger),
		Potions:        services.NewPotionService(config.Storage, config.Logger),
		Endpoints:      services.NewEndpointRegistry().Endpoints(),
		Session:        sessionConfig,
		RequestTimeout: requestTimeout,
		Logger:         config.Logger,
	}

	if err := config.HTTP.RegisterRoutes(app); err != nil {
		return nil, err
	}

	return app, nil
}
