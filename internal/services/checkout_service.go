package services

import (
	"encoding/json"
	"fmt"
	"log"

	"belanja/internal/models"
	"belanja/internal/repositories"

	"github.com/shopspring/decimal"
)

// EventPublisher publishes order events to the message broker. Satisfied by
// *rabbitmq.Client; a nil publisher disables publishing.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// CheckoutService converts a shopper's cart into a committed order. All of
// PlaceOrder's reads and writes run inside a single transaction supplied by
// the CheckoutStore chosen at construction; which store backs it makes no
// difference to the contract.
type CheckoutService struct {
	store     repositories.CheckoutStore
	orderRepo repositories.OrderRepository
	publisher EventPublisher
}

// NewCheckoutService creates a new CheckoutService. publisher may be nil.
func NewCheckoutService(store repositories.CheckoutStore, orderRepo repositories.OrderRepository, publisher EventPublisher) *CheckoutService {
	return &CheckoutService{
		store:     store,
		orderRepo: orderRepo,
		publisher: publisher,
	}
}

// PlaceOrder atomically creates an order from the shopper's cart:
// load cart -> re-validate stock per product under lock -> snapshot prices
// and compute the total -> create order and items -> decrement stock ->
// clear the cart. Any failure aborts the whole transaction; no partial
// state is ever observable. Returns the committed order.
//
// The stock re-check is mandatory even though AddItem already checked at
// insertion time, because a concurrent checkout may have consumed stock
// since the cart line was created.
func (s *CheckoutService) PlaceOrder(userID, shippingAddress string) (*models.Order, error) {
	var order *models.Order

	err := s.store.RunInTransaction(func(tx repositories.CheckoutTx) error {
		items, err := tx.CartItemsForUser(userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return models.ErrEmptyCart
		}

		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			// Locked read: concurrent checkouts for this product
			// serialize here, so the stock we see stays true until
			// commit and the price we snapshot is the one charged.
			product, err := tx.ProductForUpdate(item.ProductID)
			if err != nil {
				return err
			}
			if product.Stock < item.Quantity {
				return &models.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   item.Quantity,
					Available:   product.Stock,
				}
			}

			subtotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(subtotal)
			orderItems = append(orderItems, models.OrderItem{
				ProductID:       item.ProductID,
				Quantity:        item.Quantity,
				PriceAtPurchase: product.Price,
			})
		}

		order = &models.Order{
			UserID:          userID,
			Items:           orderItems,
			TotalAmount:     total,
			Status:          models.OrderStatusPending,
			ShippingAddress: shippingAddress,
		}
		if err := tx.CreateOrder(order); err != nil {
			return err
		}

		for _, item := range items {
			if err := tx.DecrementStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		return tx.ClearCart(userID)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent("order.created", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"status":   order.Status,
		"total":    order.TotalAmount,
	})

	return order, nil
}

// UpdateOrderStatus sets an order's status. The status must be one of the
// known values, but transitions are not guarded: the original system
// accepted any status at any time and we keep that permissive behavior.
func (s *CheckoutService) UpdateOrderStatus(orderID, status string) error {
	if !models.ValidOrderStatus(status) {
		return fmt.Errorf("invalid order status: %s", status)
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", orderID, err)
	}

	s.publishEvent("order.status_updated", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})

	return nil
}

// GetOrderByID retrieves a single order with its items.
func (s *CheckoutService) GetOrderByID(orderID string) (*models.Order, error) {
	return s.orderRepo.GetByID(orderID)
}

// GetOrdersByUser retrieves a shopper's order history, newest first.
func (s *CheckoutService) GetOrdersByUser(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(userID)
}

// GetOrdersByStatus retrieves all orders currently in the given status.
func (s *CheckoutService) GetOrdersByStatus(status string) ([]models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("invalid order status: %s", status)
	}
	return s.orderRepo.GetByStatus(status)
}

// GetAllOrders retrieves all orders.
func (s *CheckoutService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// publishEvent publishes best-effort: a commit is never failed or rolled
// back because the broker is down.
func (s *CheckoutService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.publisher.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
