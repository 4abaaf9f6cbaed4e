package core

import "errors"

// User errors
var (
	ErrUserExists         = errors.New("user already exists")  // 500, reported like any other store failure
	ErrUserNotFound       = errors.New("user not found")       // 401, collapsed into ErrInvalidCredentials
	ErrInvalidCredentials = errors.New("invalid credentials") // 401 Unauthorized
)

// Session errors
var (
	ErrMissingToken   = errors.New("missing session token") // 401
	ErrInvalidToken   = errors.New("invalid session token") // 401
	ErrSessionExpired = errors.New("session expired")       // 401
)

// Potion errors
var (
	ErrPotionNotFound = errors.New("potion not found") // 404 Not Found
)

// Validation errors (client input)
var (
	ErrValidation  = errors.New("validation failed")    // 400, see ValidationError
	ErrInvalidBody = errors.New("invalid request body") // 400
)

// Config errors (server-side configuration)
var (
	ErrStorageRequired     = errors.New("storage adapter is required") // 500
	ErrHTTPAdapterRequired = errors.New("http adapter is required")    // 500
	ErrSecretRequired      = errors.New("secret is required")          // 500
	ErrSecretTooShort      = errors.New("secret too short")            // 500
)
