// handlers/application_routes.go
package handlers

import (
	"path/filepath"
	"strconv"

	"job-tracker-system/middleware"
	"job-tracker-system/models"
	"job-tracker-system/services"
	"job-tracker-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupApplicationRoutes(app *fiber.App, appService *services.ApplicationService) {
	secured := app.Group("/applications", middleware.UserContextMiddleware())

	secured.Get("/", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		offset, _ := strconv.Atoi(c.Query("skip", "0"))
		limit, _ := strconv.Atoi(c.Query("limit", "100"))
		apps, err := appService.List(userID, offset, limit)
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(apps)
	})

	secured.Post("/", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		var in services.ApplicationInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		created, err := appService.Create(userID, in)
		if err != nil {
			return respondErr(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	secured.Get("/:id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		found, err := appService.Get(userID, c.Params("id"))
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(found)
	})

	secured.Put("/:id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		var patch services.ApplicationPatch
		if err := c.BodyParser(&patch); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		updated, err := appService.Update(userID, c.Params("id"), patch)
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(updated)
	})

	secured.Patch("/:id/status", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		var req struct {
			NewStatus models.ApplicationStatus `json:"new_status"`
			Notes     *string                  `json:"notes"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		updated, entry, err := appService.UpdateStatus(userID, c.Params("id"), req.NewStatus, req.Notes)
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(fiber.Map{
			"application": updated,
			"history":     entry,
		})
	})

	secured.Get("/:id/history", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		rows, err := appService.History(userID, c.Params("id"))
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(rows)
	})

	secured.Delete("/:id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		if err := appService.Delete(userID, c.Params("id")); err != nil {
			return respondErr(c, err)
		}
		return c.JSON(fiber.Map{"message": "application deleted"})
	})

	// Attachment upload (offer letter, tailored resume). R2 when configured,
	// local uploads dir otherwise.
	secured.Post("/:id/attachment", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
		}
		if fileHeader.Size > 25*1024*1024 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file too large (max 25MB)"})
		}

		ext := filepath.Ext(fileHeader.Filename)
		if ext == "" {
			ext = ".bin"
		}
		key := "attachments/" + uuid.NewString() + ext

		var url string
		if utils.R2Enabled() {
			url, err = utils.UploadAttachmentToR2(fileHeader, key)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload attachment", "cause": err.Error()})
			}
		} else {
			localPath := utils.GetUploadPath(key)
			if err := utils.SaveFile(fileHeader, localPath); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save attachment", "cause": err.Error()})
			}
			url = "/" + localPath
		}

		updated, err := appService.SetAttachment(userID, c.Params("id"), url)
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(updated)
	})
}
