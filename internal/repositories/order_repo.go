package repositories

import (
	"belanja/internal/models"
)

// OrderRepository defines the interface for order reads and the single
// permitted post-commit mutation (status). Order creation happens only
// through a CheckoutTx so it cannot escape the checkout transaction.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	GetByStatus(status string) ([]models.Order, error)
	UpdateStatus(id string, status string) error
}
