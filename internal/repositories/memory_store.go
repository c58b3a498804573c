package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"belanja/internal/models"

	"github.com/google/uuid"
)

// MemoryStore keeps products, cart lines and orders in mutex-guarded maps.
// Its Products(), Carts() and Orders() views implement the repository
// interfaces, and the store itself implements CheckoutStore: transactions
// serialize on the store mutex and snapshot the maps, so a failing checkout
// restores them untouched. That gives the same all-or-nothing observability
// as the database-backed store. Used by tests and as the no-database
// fallback wiring.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]models.Product
	items    map[string]models.CartItem
	orders   map[string]models.Order
}

// NewMemoryStore creates a new, empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]models.Product),
		items:    make(map[string]models.CartItem),
		orders:   make(map[string]models.Order),
	}
}

// Products returns the store's ProductRepository view.
func (s *MemoryStore) Products() ProductRepository { return &memoryProductRepo{store: s} }

// Carts returns the store's CartRepository view.
func (s *MemoryStore) Carts() CartRepository { return &memoryCartRepo{store: s} }

// Orders returns the store's OrderRepository view.
func (s *MemoryStore) Orders() OrderRepository { return &memoryOrderRepo{store: s} }

// --- ProductRepository view ---

type memoryProductRepo struct {
	store *MemoryStore
}

func (r *memoryProductRepo) GetAll() ([]models.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	products := make([]models.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		products = append(products, p)
	}
	return products, nil
}

func (r *memoryProductRepo) GetByID(id string) (*models.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.getProduct(id)
}

func (r *memoryProductRepo) Create(product *models.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.store.products[product.ID] = *product
	return nil
}

func (r *memoryProductRepo) Update(product *models.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.products[product.ID]; !ok {
		return fmt.Errorf("product with ID %s not found for update", product.ID)
	}
	r.store.products[product.ID] = *product
	return nil
}

func (r *memoryProductRepo) Delete(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.products[id]; !ok {
		return fmt.Errorf("product with ID %s not found for deletion", id)
	}
	delete(r.store.products, id)
	return nil
}

// --- CartRepository view ---

type memoryCartRepo struct {
	store *MemoryStore
}

func (r *memoryCartRepo) GetByUserID(userID string) ([]models.CartItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.cartLines(userID), nil
}

func (r *memoryCartRepo) GetByID(id string) (*models.CartItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.items[id]
	if !ok {
		return nil, fmt.Errorf("cart item with ID %s not found", id)
	}
	if p, ok := r.store.products[item.ProductID]; ok {
		item.Product = p
	}
	return &item, nil
}

func (r *memoryCartRepo) GetByUserAndProduct(userID, productID string) (*models.CartItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, item := range r.store.items {
		if item.UserID == userID && item.ProductID == productID {
			found := item
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memoryCartRepo) Create(item *models.CartItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	r.store.items[item.ID] = *item
	return nil
}

func (r *memoryCartRepo) UpdateQuantity(id string, quantity int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.items[id]
	if !ok {
		return fmt.Errorf("cart item with ID %s not found for update", id)
	}
	item.Quantity = quantity
	r.store.items[id] = item
	return nil
}

func (r *memoryCartRepo) Delete(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	// Removing an absent line is a no-op.
	delete(r.store.items, id)
	return nil
}

func (r *memoryCartRepo) DeleteByUserID(userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.clearCart(userID)
	return nil
}

// --- OrderRepository view ---

type memoryOrderRepo struct {
	store *MemoryStore
}

func (r *memoryOrderRepo) GetAll() ([]models.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	orders := make([]models.Order, 0, len(r.store.orders))
	for _, o := range r.store.orders {
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *memoryOrderRepo) GetByID(id string) (*models.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	order, ok := r.store.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s not found", id)
	}
	return &order, nil
}

func (r *memoryOrderRepo) GetByUserID(userID string) ([]models.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var orders []models.Order
	for _, o := range r.store.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *memoryOrderRepo) GetByStatus(status string) ([]models.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var orders []models.Order
	for _, o := range r.store.orders {
		if o.Status == status {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (r *memoryOrderRepo) UpdateStatus(id string, status string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	order, ok := r.store.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s not found for status update", id)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.store.orders[id] = order
	return nil
}

// --- CheckoutStore ---

// RunInTransaction serializes checkouts on the store mutex and runs fn
// against a transaction handle. On error the pre-transaction snapshot is
// restored, so no partial write is ever observable.
func (s *MemoryStore) RunInTransaction(fn func(tx CheckoutTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapProducts, snapItems, snapOrders := s.snapshot()
	if err := fn(&memoryCheckoutTx{store: s}); err != nil {
		s.products, s.items, s.orders = snapProducts, snapItems, snapOrders
		return err
	}
	return nil
}

func (s *MemoryStore) snapshot() (map[string]models.Product, map[string]models.CartItem, map[string]models.Order) {
	products := make(map[string]models.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	items := make(map[string]models.CartItem, len(s.items))
	for k, v := range s.items {
		items[k] = v
	}
	orders := make(map[string]models.Order, len(s.orders))
	for k, v := range s.orders {
		orders[k] = v
	}
	return products, items, orders
}

// Unlocked internals shared by the repository views and the transaction
// handle, which already holds the store mutex.

func (s *MemoryStore) getProduct(id string) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, &models.ProductUnavailableError{ProductID: id}
	}
	return &product, nil
}

func (s *MemoryStore) cartLines(userID string) []models.CartItem {
	var lines []models.CartItem
	for _, item := range s.items {
		if item.UserID != userID {
			continue
		}
		if p, ok := s.products[item.ProductID]; ok {
			item.Product = p
		}
		lines = append(lines, item)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines
}

func (s *MemoryStore) clearCart(userID string) {
	for id, item := range s.items {
		if item.UserID == userID {
			delete(s.items, id)
		}
	}
}

// memoryCheckoutTx operates on the store directly; the surrounding
// RunInTransaction holds the lock and owns rollback.
type memoryCheckoutTx struct {
	store *MemoryStore
}

func (t *memoryCheckoutTx) CartItemsForUser(userID string) ([]models.CartItem, error) {
	return t.store.cartLines(userID), nil
}

func (t *memoryCheckoutTx) ProductForUpdate(productID string) (*models.Product, error) {
	return t.store.getProduct(productID)
}

func (t *memoryCheckoutTx) CreateOrder(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	t.store.orders[order.ID] = *order
	return nil
}

func (t *memoryCheckoutTx) DecrementStock(productID string, quantity int) error {
	product, ok := t.store.products[productID]
	if !ok {
		return &models.ProductUnavailableError{ProductID: productID}
	}
	if product.Stock < quantity {
		return &models.NegativeStockError{ProductID: productID, Requested: quantity}
	}
	product.Stock -= quantity
	t.store.products[productID] = product
	return nil
}

func (t *memoryCheckoutTx) ClearCart(userID string) error {
	t.store.clearCart(userID)
	return nil
}
