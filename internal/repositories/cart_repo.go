package repositories

import (
	"belanja/internal/models"
)

// CartRepository defines the interface for cart line data access. Reads
// return lines with their Product populated.
type CartRepository interface {
	GetByUserID(userID string) ([]models.CartItem, error)
	GetByID(id string) (*models.CartItem, error)
	// GetByUserAndProduct returns (nil, nil) when the shopper has no line
	// for the product; an error is only a real data-access failure.
	GetByUserAndProduct(userID, productID string) (*models.CartItem, error)
	Create(item *models.CartItem) error
	UpdateQuantity(id string, quantity int) error
	// Delete and DeleteByUserID are idempotent; deleting what is not there
	// is a no-op.
	Delete(id string) error
	DeleteByUserID(userID string) error
}
