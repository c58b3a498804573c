package models

import (
	"errors"
	"fmt"
)

// Checkout and cart mutation error taxonomy. Handlers match these with
// errors.Is / errors.As so callers always see the specific failure, never a
// generic one.
var (
	// ErrEmptyCart is returned when checkout is attempted with no cart lines.
	ErrEmptyCart = errors.New("cart is empty, cannot place order")

	// ErrOrderCreationFailed wraps an underlying write failure while
	// persisting the order or its items.
	ErrOrderCreationFailed = errors.New("failed to create order")
)

// ProductUnavailableError reports an inactive or missing product.
type ProductUnavailableError struct {
	ProductID string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is unavailable or does not exist", e.ProductID)
}

// InsufficientStockError reports a request that exceeds the available stock,
// naming the product and the shortfall so callers can render an actionable
// message.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (requested: %d, available: %d)",
		e.ProductName, e.Requested, e.Available)
}

// NegativeStockError signals that a decrement would have driven a product's
// stock below zero. Under correct locking the checkout re-check makes this
// unreachable; observing it is a bug, not a user error.
type NegativeStockError struct {
	ProductID string
	Requested int
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("stock decrement of %d for product %s would go negative", e.Requested, e.ProductID)
}
