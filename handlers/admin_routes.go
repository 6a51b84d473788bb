// handlers/admin_routes.go
package handlers

import (
	"support-exchange-system/middleware"
	"support-exchange-system/models"
	"support-exchange-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes wires the moderator-proposal workflow. The gateway
// asserts the moderator role; whether a resolver is the primary approver is
// enforced inside AdminService.
func SetupAdminRoutes(app *fiber.App, accounts *services.AccountService, admin *services.AdminService) {
	group := app.Group("/admin/actions",
		middleware.UserContextMiddleware(),
		middleware.RequireRole("moderator"),
	)

	group.Post("/", func(c *fiber.Ctx) error {
		var req services.ProposalInput
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		acct, err := requireAccount(c, accounts)
		if acct == nil {
			return err
		}

		action, err := admin.Propose(acct.ID, req)
		if err != nil {
			return failDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(action)
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

		action, err := admin.Resolve(c.Params("id"), req.Outcome, acct.ID)
		if err != nil {
			return failDomain(c, err)
		}
		return c.JSON(action)
	})

	group.Get("/", func(c *fiber.Ctx) error {
		actions, err := admin.ListPending()
		if err != nil {
			return failDomain(c, err)
		}
		return c.JSON(actions)
	})
}
