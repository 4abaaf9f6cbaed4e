package fiber

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"github.com/lborres/apothecary/core"
	"github.com/lborres/apothecary/services"
)

// RequestObserver receives one call per served request.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

type Adapter struct {
	app      *fiber.App
	observer RequestObserver
}

var _ core.HTTPAdapter = (*Adapter)(nil)

type Option func(*Adapter)

// WithObserver reports every request to o, typically a metrics collector.
func WithObserver(o RequestObserver) Option {
	return func(a *Adapter) { a.observer = o }
}

func New(app *fiber.App, opts ...Option) *Adapter {
	a := &Adapter{app: app}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RegisterRoutes installs the common middleware and mounts every endpoint
// of app.Endpoints in order. Endpoints flagged RequiresAuth get the
// session middleware in front of their handler.
func (a *Adapter) RegisterRoutes(app *core.App) error {
	logger := app.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handlers := map[string]fiber.Handler{
		services.OpRegister:   handleRegister(app),
		services.OpLogin:      handleLogin(app),
		services.OpLogout:     handleLogout(app),
		services.OpGetSession: handleGetSession(),

		services.OpListPotionNames:     handleListPotionNames(app),
		services.OpListPotionsByVendor: handleListPotionsByVendor(app),
		services.OpListPotions:         handleListPotions(app),
		services.OpCreatePotion:        handleCreatePotion(app),
		services.OpUpdatePotion:        handleUpdatePotion(app),
		services.OpDeletePotion:        handleDeletePotion(app),

		services.OpAverageScore:         handleAverageScore(app),
		services.OpTotalPrice:           handleTotalPrice(app),
		services.OpTotalPotions:         handleTotalPotions(app),
		services.OpDistinctCategories:   handleDistinctCategories(app),
		services.OpAverageScoreByVendor: handleAverageScoreByVendor(app),
	}

	// resolve everything before mounting so a bad table leaves the app untouched
	routes := make([]fiber.Handler, len(app.Endpoints))
	for i, ep := range app.Endpoints {
		h, ok := handlers[ep.Metadata.OperationID]
		if !ok {
			return fmt.Errorf("no handler for operation %q (%s %s)", ep.Metadata.OperationID, ep.Method, ep.Path)
		}
		routes[i] = h
	}

	a.app.Use(recover.New())
	a.app.Use(requestid.New())
	a.app.Use(requestLogger(logger, a.observer))

	requireSession := RequireSession(app)
	for i, ep := range app.Endpoints {
		if ep.Metadata.RequiresAuth {
			a.app.Add([]string{ep.Method}, ep.Path, requireSession, routes[i])
			continue
		}
		a.app.Add([]string{ep.Method}, ep.Path, routes[i])
	}

	return nil
}
