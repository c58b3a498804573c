package handlers

import (
	"log"
	"strings"

	"belanja/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for checkout and orders.
type OrderHandler struct {
	service  *services.CheckoutService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.CheckoutService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/checkout", h.HandleCheckout)
	orderRoutes.Get("/", h.HandleGetMyOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id/status", h.HandleUpdateStatus)
}

type checkoutRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required,min=5,max=500"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleCheckout converts the shopper's cart into an order.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	userID, ok := shopperID(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	var req checkoutRequest
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

	order, err := h.service.PlaceOrder(userID, req.ShippingAddress)
	if err != nil {
		log.Printf("Checkout failed for user %s: %v", userID, err)
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetMyOrders returns the shopper's order history, newest first.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	userID, ok := shopperID(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	orders, err := h.service.GetOrdersByUser(userID)
	if err != nil {
		log.Printf("Error getting orders for user %s: %v", userID, err)
		return respondServiceError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID returns a single order.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrderByID(orderID)
	if err != nil {
		log.Printf("Error getting order %s: %v", orderID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		return respondServiceError(c, err)
	}
	return c.JSON(order)
}

// HandleUpdateStatus sets an order's status.
func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")

	var req updateStatusRequest
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

	if err := h.service.UpdateOrderStatus(orderID, req.Status); err != nil {
		log.Printf("Error updating status for order %s: %v", orderID, err)
		if strings.Contains(err.Error(), "invalid order status") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Order status updated",
		"status":  req.Status,
	})
}
