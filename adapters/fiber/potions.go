package fiber

import (
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/apothecary/core"
)

type potionResponse struct {
	Message string       `json:"message"`
	Potion  *core.Potion `json:"potion"`
}

func handleListPotionNames(app *core.App) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, cancel := storeContext(c, app)
		defer cancel()

		names, err := app.Potions.ListNames(ctx)
		if err != nil {
			return writeError(c, app, err)
		}
		return c.Status(http.StatusOK).JSON(names)
	}
}

func handleListPotionsByVendor(app *core.App) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, cancel := storeContext(c, app)
		defer cancel()

		potions, err := app.Potions.ListByVendor(ctx, c.Params("vendorId"))
		if err != nil {
			return writeError(c, app, err)
		}
		return c.Status(http.StatusOK).JSON(potions)
	}
}

func handleListPotions(app *core.App) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, cancel := storeContext(c, app)
		defer cancel()

		potions, err := app.Potions.ListAll(ctx)
		if err != nil {
			return writeError(c, app, err)
		}
		return c.Status(http.StatusOK).JSON(potions)
	}
}

func handleCreatePotion(app *core.App) fiber.Handler {
	return func(c fiber.Ctx) error {
		doc, err := core.ParseDocument(c.Body())
		if err != nil {
			return writeError(c, app, core.ErrInvalidBody)
		}

		ctx, cancel := storeContext(c, app)
		defer cancel()

		potion, err := app.Potions.Create(ctx, doc)
		if err != nil {
			return writeError(c, app, err)
		}
		return c.Status(http.StatusCreated).JSON(potionResponse{Message: "Potion created", Potion: potion})
	}
}

func handleUpdatePotion(app *core.App) fiber.Handler {
	return func(c fiber.Ctx) error {
		doc, err := core.ParseDocument(c.Body())
		if err != nil {
			return writeError(c, app, core.ErrInvalidBody)
		}

		ctx, cancel := storeContext(c, app)
		defer cancel()

		potion, err := app.Potions.Update(ctx, c.Params("id"), doc)
		if err != nil {
			return writeError(c, app, err)
		}
		return c.Status(http.StatusOK).JSON(potionResponse{Message: "Potion updated", Potion: potion})
	}
}

func handleDeletePotion(app *core.App) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, cancel := storeContext(c, app)
		defer cancel()

		if err := app.Potions.Delete(ctx, c.Params("id")); err != nil {
			return writeError(c, app, err)
		}
		return c.Status(http.StatusOK).JSON(core.MessageResponse{Message: "Potion deleted"})
	}
}

func handleAverageScore(app *core.App) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, cancel := storeContext(c, app)
		defer cancel()

		avg, err := app.Potions.AverageScore(ctx)
		if err != nil {
			return writeError(c, app, err)
		}
		return c.Status(http.StatusOK).JSON(avg)
	}
}

func handleTotalPrice(app *core.App) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, cancel := storeContext(c, app)
		defer cancel()

		total, err := app.Potions.TotalPrice(ctx)
		if err != nil {
			return writeError(c, app, err)
		}
		return c.Status(http.StatusOK).JSON(total)
	}
}

func handleTotalPotions(app *core.App) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, cancel := storeContext(c, app)
		defer cancel()

		n, err := app.Potions.TotalCount(ctx)
		if err != nil {
			return writeError(c, app, err)
		}
		return c.Status(http.StatusOK).JSON(n)
	}
}

func handleDistinctCategories(app *core.App) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, cancel := storeContext(c, app)
		defer cancel()

		categories, err := app.Potions.DistinctCategories(ctx)
		if err != nil {
			return writeError(c, app, err)
		}
		return c.Status(http.StatusOK).JSON(categories)
	}
}

func handleAverageScoreByVendor(app *core.App) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, cancel := storeContext(c, app)
		defer cancel()

		scores, err := app.Potions.AverageScoreByVendor(ctx)
		if err != nil {
			return writeError(c, app, err)
		}
		return c.Status(http.StatusOK).JSON(scores)
	}
}
