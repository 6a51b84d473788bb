package handlers

import (
	"errors"
	"log"

	"support-exchange-system/models"
	"support-exchange-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// requireAccount resolves the gateway-forwarded user id to a registered
// account. Unregistered users get a hint pointing at the registration route.
func requireAccount(c *fiber.Ctx, accounts *services.AccountService) (*models.Account, error) {
	userID, _ := c.Locals("user_id").(string)
	acct, err := accounts.GetByExternalID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "not registered — call /accounts/ensure first",
			})
		}
		log.Printf("DB error resolving account %s: %v", userID, err)
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return acct, nil
}

// failDomain maps a workflow error to its HTTP response. AlreadyResolved is
// informational, not a failure: the caller learns the terminal state that won.
func failDomain(c *fiber.Ctx, err error) error {
	var already *models.AlreadyResolvedError
	if errors.As(err, &already) {
		return c.JSON(fiber.Map{
			"message": "already resolved",
			"status":  already.Status,
		})
	}

	switch {
	case errors.Is(err, models.ErrInsufficientFunds):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "not enough points"})
	case errors.Is(err, models.ErrSelfSupportNotAllowed):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot claim support on your own item"})
	case errors.Is(err, models.ErrDuplicateClaim):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "support already claimed for this item"})
	case errors.Is(err, models.ErrNotAuthorized):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not authorized to resolve this request"})
	case errors.Is(err, models.ErrHandleTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "handle already taken"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}

	log.Printf("Unhandled workflow error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
