package services

import (
	"errors"

	"belanja/internal/models"
	"belanja/internal/repositories"
)

// InventoryService exposes the cheap, non-transactional stock reads used by
// cart mutations. These observe the currently visible stock only; the
// authoritative check happens inside the checkout transaction, where stock
// decrements also live (see repositories.CheckoutTx).
type InventoryService struct {
	productRepo repositories.ProductRepository
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(productRepo repositories.ProductRepository) *InventoryService {
	return &InventoryService{
		productRepo: productRepo,
	}
}

// CurrentStock returns the product's currently visible stock quantity.
func (s *InventoryService) CurrentStock(productID string) (int, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return 0, err
	}
	return product.Stock, nil
}

// IsAvailable reports whether the product is active and has at least the
// requested quantity in stock.
func (s *InventoryService) IsAvailable(productID string, quantity int) (bool, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		var unavailable *models.ProductUnavailableError
		if errors.As(err, &unavailable) {
			return false, nil
		}
		return false, err
	}
	return product.IsActive && product.Stock >= quantity, nil
}
