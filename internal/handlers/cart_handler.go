package handlers

import (
	"log"

	"belanja/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the shopper's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Get("/total", h.HandleGetTotal)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:id", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
	cartRoutes.Delete("/", h.HandleClearCart)
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// HandleGetCart returns the shopper's cart lines.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	userID, ok := shopperID(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	items, err := h.service.GetCart(userID)
	if err != nil {
		log.Printf("Error getting cart for user %s: %v", userID, err)
		return respondServiceError(c, err)
	}
	return c.JSON(items)
}

// HandleGetTotal returns the cart total at current catalog prices.
func (h *CartHandler) HandleGetTotal(c *fiber.Ctx) error {
	userID, ok := shopperID(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	total, err := h.service.GetTotal(userID)
	if err != nil {
		log.Printf("Error getting cart total for user %s: %v", userID, err)
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"total": total})
}

// HandleAddItem adds a product to the shopper's cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	userID, ok := shopperID(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if err := h.service.AddItem(userID, req.ProductID, req.Quantity); err != nil {
		log.Printf("Error adding item to cart for user %s: %v", userID, err)
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

// HandleUpdateItem sets a cart line's quantity; zero or less removes it.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	if _, ok := shopperID(c); !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	lineID := c.Params("id")
	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.service.SetQuantity(lineID, req.Quantity); err != nil {
		log.Printf("Error updating cart item %s: %v", lineID, err)
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleRemoveItem removes a cart line; removing an absent line succeeds.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	if _, ok := shopperID(c); !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	lineID := c.Params("id")
	if err := h.service.RemoveLine(lineID); err != nil {
		log.Printf("Error removing cart item %s: %v", lineID, err)
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleClearCart removes every line of the shopper's cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	userID, ok := shopperID(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	if err := h.service.ClearCart(userID); err != nil {
		log.Printf("Error clearing cart for user %s: %v", userID, err)
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
