package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	"github.com/lborres/apothecary/core"
)

var _ core.TokenIssuer = (*JWTIssuer)(nil)

// sessionClaims is the JWT payload of a session token.
type sessionClaims struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// JWTIssuer signs sessions as HS256 JSON Web Tokens.
type JWTIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewJWTIssuer(secret string) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), now: time.Now}
}

// Issue signs s. The session's ID becomes the token's jti.
func (i *JWTIssuer) Issue(s *core.Session) (string, error) {
	claims := sessionClaims{
		UserID: s.UserID,
		Name:   s.UserName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").With("user_id", s.UserID).Wrap(err)
	}
	return token, nil
}

// Parse verifies the signature, algorithm and expiry of token.
func (i *JWTIssuer) Parse(token string) (*core.Session, error) {
	if token == "" {
		return nil, core.ErrMissingToken
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrSessionExpired
		}
		return nil, core.ErrInvalidToken
	}
	if claims.UserID == "" || claims.IssuedAt == nil {
		return nil, core.ErrInvalidToken
	}

	return &core.Session{
		ID:        claims.ID,
		UserID:    claims.UserID,
		UserName:  claims.Name,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
