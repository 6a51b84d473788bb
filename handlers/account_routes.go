// handlers/account_routes.go
package handlers

import (
	"strconv"

	"support-exchange-system/middleware"
	"support-exchange-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAccountRoutes(app *fiber.App, accounts *services.AccountService, ledger *services.LedgerService) {
	group := app.Group("/accounts", middleware.UserContextMiddleware())

	// First contact — the gateway calls this on /start. Idempotent.
	group.Post("/ensure", func(c *fiber.Ctx) error {
		var req struct {
			ReferralToken string `json:"referral_token"`
		}
		// Body is optional; a bare POST registers without a referrer.
		_ = c.BodyParser(&req)

		userID, _ := c.Locals("user_id").(string)
		acct, created, err := accounts.EnsureAccount(userID, req.ReferralToken)
		if err != nil {
			return failDomain(c, err)
		}

		status := fiber.StatusOK
		if created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(fiber.Map{
			"account": acct,
			"created": created,
		})
	})

	group.Post("/handle", func(c *fiber.Ctx) error {
		var req struct {
			Handle string `json:"handle"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		userID, _ := c.Locals("user_id").(string)
		acct, err := accounts.SetHandle(userID, req.Handle)
		if err != nil {
			return failDomain(c, err)
		}
		return c.JSON(acct)
	})

	balance := app.Group("/balance", middleware.UserContextMiddleware())

	balance.Get("/", func(c *fiber.Ctx) error {
		acct, err := requireAccount(c, accounts)
		if acct == nil {
			return err
		}

		limit, _ := strconv.Atoi(c.Query("limit", "10"))
		history, err := ledger.History(acct.ID, limit)
		if err != nil {
			return failDomain(c, err)
		}
		return c.JSON(fiber.Map{
			"balance": acct.Balance,
			"history": history,
		})
	})
}
