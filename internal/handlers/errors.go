package handlers

import (
	"errors"

	"belanja/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respondServiceError maps the checkout/cart error taxonomy onto HTTP
// responses. Every known kind gets its own status and payload so callers
// never see a specific failure reported generically.
func respondServiceError(c *fiber.Ctx, err error) error {
	var (
		unavailable  *models.ProductUnavailableError
		insufficient *models.InsufficientStockError
		negative     *models.NegativeStockError
	)

	switch {
	case errors.Is(err, models.ErrEmptyCart):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Cart is empty, nothing to order",
		})
	case errors.As(err, &unavailable):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message":    "Product is unavailable or does not exist",
			"product_id": unavailable.ProductID,
		})
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":    "Insufficient stock",
			"product_id": insufficient.ProductID,
			"product":    insufficient.ProductName,
			"requested":  insufficient.Requested,
			"available":  insufficient.Available,
		})
	case errors.As(err, &negative), errors.Is(err, models.ErrOrderCreationFailed):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not complete the order",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal error",
		"error":   err.Error(),
	})
}

// shopperID extracts the authenticated shopper identity set by the JWT
// middleware.
func shopperID(c *fiber.Ctx) (string, bool) {
	userID, ok := c.Locals("user_id").(string)
	return userID, ok && userID != ""
}
