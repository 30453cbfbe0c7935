// handlers/network_routes.go
package handlers

import (
	"strconv"

	"job-tracker-system/middleware"
	"job-tracker-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupNetworkRoutes(app *fiber.App, networkService *services.NetworkService) {
	secured := app.Group("/network", middleware.UserContextMiddleware())

	secured.Get("/", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		offset, _ := strconv.Atoi(c.Query("skip", "0"))
		limit, _ := strconv.Atoi(c.Query("limit", "100"))
		contacts, err := networkService.List(userID, offset, limit)
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(contacts)
	})

	secured.Post("/", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		var in services.ContactInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		created, err := networkService.Create(userID, in)
		if err != nil {
			return respondErr(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	secured.Get("/:id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		contact, err := networkService.Get(userID, c.Params("id"))
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(contact)
	})

	secured.Put("/:id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		var patch services.ContactPatch
		if err := c.BodyParser(&patch); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		updated, err := networkService.Update(userID, c.Params("id"), patch)
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(updated)
	})

	secured.Delete("/:id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		if err := networkService.Delete(userID, c.Params("id")); err != nil {
			return respondErr(c, err)
		}
		return c.JSON(fiber.Map{"message": "contact deleted"})
	})
}
