package services

import (
	"errors"
	"fmt"

	"belanja/internal/models"
	"belanja/internal/repositories"

	"github.com/shopspring/decimal"
)

// CartService handles add/update/remove operations on a shopper's cart.
//
// AddItem validates against the currently visible stock, a deliberately
// weaker check than checkout's: two concurrent adds can very occasionally
// let the summed cart quantity exceed physical stock, which is acceptable
// because PlaceOrder re-validates every line inside its transaction.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
	inventory   *InventoryService
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository, inventory *InventoryService) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		inventory:   inventory,
	}
}

// GetCart returns the shopper's cart lines with their products.
func (s *CartService) GetCart(userID string) ([]models.CartItem, error) {
	return s.cartRepo.GetByUserID(userID)
}

// AddItem adds quantity of a product to the shopper's cart, merging into an
// existing line if one exists. The merged quantity must not exceed the
// product's currently visible stock.
func (s *CartService) AddItem(userID, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		var unavailable *models.ProductUnavailableError
		if errors.As(err, &unavailable) {
			return unavailable
		}
		return fmt.Errorf("failed to load product %s: %w", productID, err)
	}
	if !product.IsActive {
		return &models.ProductUnavailableError{ProductID: productID}
	}

	existing, err := s.cartRepo.GetByUserAndProduct(userID, productID)
	if err != nil {
		return fmt.Errorf("failed to check existing cart line: %w", err)
	}

	requested := quantity
	if existing != nil {
		requested += existing.Quantity
	}

	stock, err := s.inventory.CurrentStock(productID)
	if err != nil {
		return err
	}
	if requested > stock {
		return &models.InsufficientStockError{
			ProductID:   productID,
			ProductName: product.Name,
			Requested:   requested,
			Available:   stock,
		}
	}

	if existing != nil {
		return s.cartRepo.UpdateQuantity(existing.ID, requested)
	}
	return s.cartRepo.Create(&models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
}

// SetQuantity updates a cart line's quantity. A quantity of zero or less
// deletes the line. No stock re-check happens here; callers needing the
// stock guard should route through AddItem's delta semantics, and checkout
// re-validates regardless.
func (s *CartService) SetQuantity(lineID string, quantity int) error {
	if quantity <= 0 {
		return s.cartRepo.Delete(lineID)
	}
	return s.cartRepo.UpdateQuantity(lineID, quantity)
}

// RemoveLine deletes a cart line. Removing an absent line is a no-op.
func (s *CartService) RemoveLine(lineID string) error {
	return s.cartRepo.Delete(lineID)
}

// ClearCart removes every cart line of the shopper.
func (s *CartService) ClearCart(userID string) error {
	return s.cartRepo.DeleteByUserID(userID)
}

// GetTotal sums quantity x current product price across the shopper's cart.
// This is the current catalog price, not the price-at-purchase an order
// would capture.
func (s *CartService) GetTotal(userID string) (decimal.Decimal, error) {
	items, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, item := range items {
		subtotal := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(subtotal)
	}
	return total, nil
}
