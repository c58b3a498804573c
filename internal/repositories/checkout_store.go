package repositories

import (
	"belanja/internal/models"
)

// CheckoutTx is the handle a checkout runs against inside one atomic unit of
// work. Stock decrements are deliberately only reachable through this handle
// so they cannot happen outside a transaction.
type CheckoutTx interface {
	// CartItemsForUser loads the shopper's cart lines with their products.
	CartItemsForUser(userID string) ([]models.CartItem, error)

	// ProductForUpdate reads a product's authoritative row, locked (or
	// otherwise serialized) against concurrent checkouts touching the same
	// product until the transaction ends. Returns ProductUnavailableError
	// if the product does not exist.
	ProductForUpdate(productID string) (*models.Product, error)

	// CreateOrder persists the order and all of its items.
	CreateOrder(order *models.Order) error

	// DecrementStock reduces a product's stock by quantity. It must be a
	// guarded write: if the product's stock is below quantity it returns
	// NegativeStockError and writes nothing.
	DecrementStock(productID string, quantity int) error

	// ClearCart removes every cart line belonging to the shopper.
	ClearCart(userID string) error
}

// CheckoutStore supplies the atomic unit of work for checkout. fn returning
// an error aborts the transaction; every write made through the CheckoutTx
// is discarded and never observable by concurrent operations.
//
// This is the single consistency strategy: all stock invariants are enforced
// here in application code, never split with database triggers or stored
// routines. Which store implementation a CheckoutService uses is decided by
// its constructor argument, not by any process-wide switch.
type CheckoutStore interface {
	RunInTransaction(fn func(tx CheckoutTx) error) error
}
