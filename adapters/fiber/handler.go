package fiber

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"github.com/lborres/apothecary/core"
	"github.com/lborres/apothecary/internal/logging"
)

const localsSession = "session"

// handleRegister returns a handler for the register endpoint
func handleRegister(app *core.App) fiber.Handler {
	return func(c fiber.Ctx) error {
		input, err := bindCredentials(c)
		if err != nil {
			return writeError(c, app, err)
		}

		ctx, cancel := storeContext(c, app)
		defer cancel()

		if _, err := app.Auth.Register(ctx, input); err != nil {
			// duplicates are reported like any other store failure
			return writeErrorMessage(c, app, err, "system error")
		}

		return c.Status(http.StatusCreated).JSON(core.MessageResponse{Message: "User created"})
	}
}

// handleLogin returns a handler for the login endpoint
func handleLogin(app *core.App) fiber.Handler {
	return func(c fiber.Ctx) error {
		input, err := bindCredentials(c)
		if err != nil {
			return writeError(c, app, err)
		}

		ctx, cancel := storeContext(c, app)
		defer cancel()

		result, err := app.Auth.Login(ctx, input)
		if err != nil {
			return writeError(c, app, err)
		}

		c.Cookie(&fiber.Cookie{
			Name:     app.Session.CookieName,
			Value:    result.Token,
			Path:     app.Session.CookiePath,
			MaxAge:   int(app.Session.MaxAge / time.Second),
			Secure:   app.Session.CookieSecure,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteStrictMode,
		})

		return c.Status(http.StatusOK).JSON(core.MessageResponse{Message: "Logged in successfully"})
	}
}

// handleLogout clears the session cookie. It never fails.
func handleLogout(app *core.App) fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     app.Session.CookieName,
			Value:    "",
			Path:     app.Session.CookiePath,
			Expires:  time.Unix(0, 0),
			Secure:   app.Session.CookieSecure,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteStrictMode,
		})

		return c.Status(http.StatusOK).JSON(core.MessageResponse{Message: "Logged out"})
	}
}

// handleGetSession returns the session stored by RequireSession.
func handleGetSession() fiber.Handler {
	return func(c fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return c.Status(http.StatusUnauthorized).JSON(core.ErrorResponse{Error: "unauthorized"})
		}
		return c.Status(http.StatusOK).JSON(session)
	}
}

// bindCredentials decodes a register or login body. An empty body decodes
// to empty credentials so validation can report the missing fields.
func bindCredentials(c fiber.Ctx) (core.CredentialsInput, error) {
	var input core.CredentialsInput
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return input, nil
	}
	if err := c.Bind().Body(&input); err != nil {
		return core.CredentialsInput{}, core.ErrInvalidBody
	}
	return input, nil
}

// extractToken extracts the session token from the request.
// Checks Authorization header (Bearer token) first, then falls back to cookie.
func extractToken(c fiber.Ctx, cookieName string) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok && token != "" {
		return token
	}
	return c.Cookies(cookieName)
}

// storeContext bounds the store calls of one request and tags their log
// records with the request id.
func storeContext(c fiber.Ctx, app *core.App) (context.Context, context.CancelFunc) {
	ctx := logging.WithRequestID(c.Context(), requestid.FromContext(c))
	if app.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, app.RequestTimeout)
}
