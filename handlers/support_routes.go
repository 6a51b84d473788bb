// handlers/support_routes.go
package handlers

import (
	"support-exchange-system/middleware"
	"support-exchange-system/models"
	"support-exchange-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSupportRoutes(app *fiber.App, accounts *services.AccountService, catalog *services.CatalogService, interactions *services.InteractionService) {
	items := app.Group("/items", middleware.UserContextMiddleware())

	items.Post("/", func(c *fiber.Ctx) error {
		var req struct {
			Kind    models.SupportKind      `json:"kind"`
			Content services.PublishContent `json:"content"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		acct, err := requireAccount(c, accounts)
		if acct == nil {
			return err
		}

		item, err := catalog.Publish(acct.ID, req.Kind, req.Content)
		if err != nil {
			return failDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	})

	items.Get("/", func(c *fiber.Ctx) error {
		acct, err := requireAccount(c, accounts)
		if acct == nil {
			return err
		}

		kind := models.SupportKind(c.Query("kind", string(models.SupportKindFollow)))
		list, err := catalog.ListAvailable(kind, acct.ID)
		if err != nil {
			return failDomain(c, err)
		}
		return c.JSON(list)
	})

	group := app.Group("/interactions", middleware.UserContextMiddleware())

	group.Post("/claim", func(c *fiber.Ctx) error {
		var req struct {
			ItemID string `json:"item_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		acct, err := requireAccount(c, accounts)
		if acct == nil {
			return err
		}

		inter, err := interactions.Claim(acct.ID, req.ItemID)
		if err != nil {
			return failDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(inter)
	})

	group.Post("/:id/resolve", func(c *fiber.Ctx) error {
		var req struct {
			Outcome models.ApprovalStatus `json:"outcome"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.Outcome != models.StatusAccepted && req.Outcome != models.StatusRejected {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "outcome must be accepted or rejected",
			})
		}

		acct, err := requireAccount(c, accounts)
		if acct == nil {
			return err
		}

		inter, err := interactions.Resolve(c.Params("id"), req.Outcome, acct.ID)
		if err != nil {
			return failDomain(c, err)
		}
		return c.JSON(inter)
	})
}
