// handlers/user_routes.go
package handlers

import (
	"strconv"

	"job-tracker-system/middleware"
	"job-tracker-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService, gamification *services.GamificationService) {
	secured := app.Group("/user", middleware.UserContextMiddleware())

	secured.Get("/", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		user, err := userService.Get(userID)
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(user)
	})

	secured.Put("/", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		var patch services.UserPatch
		if err := c.BodyParser(&patch); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		updated, err := userService.Update(userID, patch)
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(updated)
	})

	secured.Get("/points/history", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "20"))
		rows, total, err := userService.PointLedger(userID, page, size)
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(fiber.Map{
			"items":       rows,
			"page":        page,
			"size":        size,
			"total_items": total,
		})
	})

	// Level table is static config; useful for rendering progress bars.
	secured.Get("/levels", func(c *fiber.Ctx) error {
		return c.JSON(services.Levels)
	})

	// Recompute points from the ledger on demand (the hourly scheduler does
	// the same sweep for all users).
	secured.Post("/points/reconcile", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		repaired, err := gamification.Reconcile(userID)
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(fiber.Map{"repaired": repaired})
	})
}
