package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lborres/apothecary/core"
)

// dummyPassword is hashed once so logins for unknown users still pay for a
// full verification.
const dummyPassword = "apothecary-timing-equalizer"

type AuthService struct {
	users          core.UserStorage
	passwordHasher core.PasswordHandler
	sessionManager *SessionManager
	logger         *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// Ensure AuthService implements AuthHandler
var _ core.AuthHandler = (*AuthService)(nil)

func NewAuthService(users core.UserStorage, passwordHasher core.PasswordHandler, sessionManager *SessionManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:          users,
		passwordHasher: passwordHasher,
		sessionManager: sessionManager,
		logger:         logger,
	}
}

// Register creates a user from sanitized, validated credentials.
func (s *AuthService) Register(ctx context.Context, input core.CredentialsInput) (*core.User, error) {
	creds, err := core.ValidateCredentials(input)
	if err != nil {
		return nil, err
	}

	hash, err := s.passwordHasher.Hash(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &core.User{
		Name:         creds.Name,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, core.ErrUserExists) {
			s.logger.InfoContext(ctx, "registration rejected: duplicate name")
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and issues a session token. An unknown name and
// a wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input core.CredentialsInput) (*core.SignInResult, error) {
	creds, err := core.ValidateCredentials(input)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByName(ctx, creds.Name)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			s.verifyDummy(creds.Password)
			s.logger.DebugContext(ctx, "login failed")
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	valid, err := s.passwordHasher.Verify(creds.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		s.logger.DebugContext(ctx, "login failed")
		return nil, core.ErrInvalidCredentials
	}

	sessionResult, err := s.sessionManager.Create(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID, "session_id", sessionResult.Session.ID)
	return &core.SignInResult{
		User:    user,
		Session: sessionResult.Session,
		Token:   sessionResult.Token,
	}, nil
}

// Session decodes and checks a session token.
func (s *AuthService) Session(_ context.Context, token string) (*core.Session, error) {
	return s.sessionManager.Verify(token)
}

func (s *AuthService) verifyDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.passwordHasher.Hash(dummyPassword)
		if err != nil {
			s.logger.Warn("failed to prepare dummy password hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash == "" {
		return
	}
	_, _ = s.passwordHasher.Verify(password, s.dummyHash)
}
