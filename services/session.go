package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/lborres/apothecary/core"
)

// SessionManager turns authenticated users into signed, stateless session
// tokens and verifies tokens presented by clients.
type SessionManager struct {
	config core.SessionConfig
	issuer core.TokenIssuer
	now    func() time.Time
}

func NewSessionManager(config core.SessionConfig, issuer core.TokenIssuer) *SessionManager {
	if config.MaxAge <= 0 {
		config.MaxAge = core.DefaultSessionConfig().MaxAge
	}
	return &SessionManager{config: config, issuer: issuer, now: time.Now}
}

func (sm *SessionManager) Create(user *core.User) (*core.CreateSessionResult, error) {
	// JWT timestamps have second precision
	now := sm.now().UTC().Truncate(time.Second)
	session := &core.Session{
		ID:        ulid.Make().String(),
		UserID:    user.ID,
		UserName:  user.Name,
		IssuedAt:  now,
		ExpiresAt: now.Add(sm.config.MaxAge),
	}

	token, err := sm.issuer.Issue(session)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}

	return &core.CreateSessionResult{Session: session, Token: token}, nil
}

func (sm *SessionManager) Verify(token string) (*core.Session, error) {
	if token == "" {
		return nil, core.ErrMissingToken
	}

	session, err := sm.issuer.Parse(token)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrSessionExpired), errors.Is(err, core.ErrMissingToken):
			return nil, err
		default:
			return nil, core.ErrInvalidToken
		}
	}

	if session.Expired(sm.now()) {
		return nil, core.ErrSessionExpired
	}

	return session, nil
}
