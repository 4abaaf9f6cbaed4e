package fiber

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"github.com/lborres/apothecary/core"
	"github.com/lborres/apothecary/pkg/errutil"
)

// writeError maps err to a status and a JSON body. Server-side failures
// are logged and answered with a generic message.
func writeError(c fiber.Ctx, app *core.App, err error) error {
	return writeErrorMessage(c, app, err, "internal server error")
}

// writeErrorMessage is writeError with a custom message for 500 responses.
func writeErrorMessage(c fiber.Ctx, app *core.App, err error, internalMsg string) error {
	status := mapErrorToStatus(err)

	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		if verr.Resource == core.ResourceCredentials {
			return c.Status(status).JSON(core.ValidationResponse{Errors: verr.Errors})
		}
		return c.Status(status).JSON(core.ErrorResponse{Error: verr.Error(), Errors: verr.Errors})

	case status == http.StatusInternalServerError:
		if !errors.Is(err, core.ErrUserExists) {
			errutil.LogError(c.Context(), loggerOf(app), "request failed", err,
				"method", c.Method(),
				"path", c.Path(),
				"request_id", requestid.FromContext(c),
			)
		}
		return c.Status(status).JSON(core.ErrorResponse{Error: internalMsg})
	}

	return c.Status(status).JSON(core.ErrorResponse{Error: publicMessage(err)})
}

// mapErrorToStatus maps core errors to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrInvalidBody):
		return http.StatusBadRequest

	case errors.Is(err, core.ErrInvalidCredentials),
		errors.Is(err, core.ErrUserNotFound),
		errors.Is(err, core.ErrMissingToken),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrSessionExpired):
		return http.StatusUnauthorized

	case errors.Is(err, core.ErrPotionNotFound):
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the client-facing text for 4xx errors.
func publicMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidBody):
		return "invalid request body"
	case errors.Is(err, core.ErrInvalidCredentials), errors.Is(err, core.ErrUserNotFound):
		return "invalid credentials"
	case errors.Is(err, core.ErrPotionNotFound):
		return "Potion not found"
	default:
		return "unauthorized"
	}
}

// ErrorHandler renders errors that escape route handlers, such as unknown
// routes and recovered panics, as JSON.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(core.ErrorResponse{Error: fe.Message})
		}
		errutil.LogError(c.Context(), logger, "unhandled error", err,
			"method", c.Method(),
			"path", c.Path(),
			"request_id", requestid.FromContext(c),
		)
		return c.Status(http.StatusInternalServerError).JSON(core.ErrorResponse{Error: "internal server error"})
	}
}

func loggerOf(app *core.App) *slog.Logger {
	if app.Logger != nil {
		return app.Logger
	}
	return slog.Default()
}
