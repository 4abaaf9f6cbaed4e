package fiber

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"github.com/lborres/apothecary/core"
	"github.com/lborres/apothecary/internal/logging"
)

// RequireSession creates a Fiber middleware that validates the session token
// and stores the decoded session in the context for downstream handlers.
func RequireSession(app *core.App) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := extractToken(c, app.Session.CookieName)

		ctx := logging.WithRequestID(c.Context(), requestid.FromContext(c))
		session, err := app.Auth.Session(ctx, token)
		if err != nil {
			return writeError(c, app, err)
		}

		c.Locals(localsSession, session)
		return c.Next()
	}
}

// SessionFromContext returns the session stored by RequireSession.
func SessionFromContext(c fiber.Ctx) (*core.Session, bool) {
	session, ok := c.Locals(localsSession).(*core.Session)
	return session, ok
}

// requestLogger logs one line per request and reports it to observer.
func requestLogger(logger *slog.Logger, observer RequestObserver) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			status = http.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		route := c.Route().Path
		if observer != nil {
			observer.ObserveRequest(c.Method(), route, status, elapsed)
		}

		logger.LogAttrs(c.Context(), slog.LevelInfo, "request",
			slog.String("method", c.Method()),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("latency", elapsed),
			slog.String("request_id", requestid.FromContext(c)),
		)
		return err
	}
}
