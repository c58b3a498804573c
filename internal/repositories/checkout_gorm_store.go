package repositories

import (
	"errors"
	"fmt"

	"belanja/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCheckoutStore runs checkouts inside a single database transaction.
// Stock rows are read with SELECT ... FOR UPDATE so that two concurrent
// checkouts for the same product serialize on that product's row, and the
// decrement itself is a conditional UPDATE guarded by "stock >= ?" so a
// lost update can never drive stock negative.
type GORMCheckoutStore struct {
	db *gorm.DB
}

// NewGORMCheckoutStore creates a new instance of GORMCheckoutStore.
func NewGORMCheckoutStore(db *gorm.DB) *GORMCheckoutStore {
	return &GORMCheckoutStore{
		db: db,
	}
}

// RunInTransaction executes fn within one transaction. Any error from fn
// rolls back every write made through the handle.
func (s *GORMCheckoutStore) RunInTransaction(fn func(tx CheckoutTx) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormCheckoutTx{db: tx})
	})
}

// gormCheckoutTx is the transaction-scoped handle handed to the checkout.
type gormCheckoutTx struct {
	db *gorm.DB
}

func (t *gormCheckoutTx) CartItemsForUser(userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := t.db.Preload("Product").Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart for user %s: %w", userID, err)
	}
	return items, nil
}

func (t *gormCheckoutTx) ProductForUpdate(productID string) (*models.Product, error) {
	var product models.Product
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.ProductUnavailableError{ProductID: productID}
		}
		return nil, fmt.Errorf("failed to lock product %s: %w", productID, err)
	}
	return &product, nil
}

func (t *gormCheckoutTx) CreateOrder(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	if err := t.db.Create(order).Error; err != nil {
		return fmt.Errorf("%w: %v", models.ErrOrderCreationFailed, err)
	}
	return nil
}

func (t *gormCheckoutTx) DecrementStock(productID string, quantity int) error {
	res := t.db.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock for product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return &models.NegativeStockError{ProductID: productID, Requested: quantity}
	}
	return nil
}

func (t *gormCheckoutTx) ClearCart(userID string) error {
	if err := t.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
