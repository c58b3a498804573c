package services_test

import (
	"sync"
	"testing"

	"belanja/internal/models"
	"belanja/internal/repositories"
	"belanja/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}

func seedProduct(t *testing.T, store *repositories.MemoryStore, id, price string, stock int) {
	t.Helper()
	err := store.Products().Create(&models.Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	})
	require.NoError(t, err)
}

func seedCartLine(t *testing.T, store *repositories.MemoryStore, userID, productID string, quantity int) {
	t.Helper()
	err := store.Carts().Create(&models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
	require.NoError(t, err)
}

func TestCheckoutService_PlaceOrder_Succeeds(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedProduct(t, store, "p1", "10.00", 5)
	seedCartLine(t, store, "u1", "p1", 3)

	publisher := new(MockPublisher)
	publisher.On("Publish", "order.created", mock.Anything).Return(nil).Once()

	service := services.NewCheckoutService(store, store.Orders(), publisher)
	order, err := service.PlaceOrder("u1", "Jl. Merdeka 17, Jakarta")

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "u1", order.UserID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("30.00")),
		"expected total 30.00, got %s", order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.True(t, order.Items[0].PriceAtPurchase.Equal(decimal.RequireFromString("10.00")))

	// Stock decremented, cart emptied.
	product, err := store.Products().GetByID("p1")
	require.NoError(t, err)
	assert.Equal(t, 2, product.Stock)

	lines, err := store.Carts().GetByUserID("u1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	publisher.AssertExpectations(t)
}

func TestCheckoutService_PlaceOrder_TotalMatchesItems(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedProduct(t, store, "p1", "12.50", 10)
	seedProduct(t, store, "p2", "3.99", 10)
	seedCartLine(t, store, "u1", "p1", 2)
	seedCartLine(t, store, "u1", "p2", 4)

	service := services.NewCheckoutService(store, store.Orders(), nil)
	order, err := service.PlaceOrder("u1", "Jl. Sudirman 5, Bandung")

	require.NoError(t, err)
	sum := decimal.Zero
	for _, item := range order.Items {
		sum = sum.Add(item.PriceAtPurchase.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	assert.True(t, order.TotalAmount.Equal(sum),
		"order total %s must equal item sum %s", order.TotalAmount, sum)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("40.96")))
}

func TestCheckoutService_PlaceOrder_EmptyCart(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedProduct(t, store, "p1", "10.00", 5)

	service := services.NewCheckoutService(store, store.Orders(), nil)
	order, err := service.PlaceOrder("u1", "Jl. Merdeka 17, Jakarta")

	assert.ErrorIs(t, err, models.ErrEmptyCart)
	assert.Nil(t, order)

	// No order row may exist after an aborted checkout.
	orders, err := store.Orders().GetAll()
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckoutService_PlaceOrder_InsufficientStockAborts(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedProduct(t, store, "p1", "10.00", 2)
	seedCartLine(t, store, "u1", "p1", 2)
	// Another shopper consumed the stock after u1 filled their cart.
	seedCartLine(t, store, "u2", "p1", 2)

	service := services.NewCheckoutService(store, store.Orders(), nil)

	_, err := service.PlaceOrder("u2", "Jl. Gatot Subroto 9, Surabaya")
	require.NoError(t, err)

	_, err = service.PlaceOrder("u1", "Jl. Merdeka 17, Jakarta")
	var insufficient *models.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "p1", insufficient.ProductID)
	assert.Equal(t, 2, insufficient.Requested)
	assert.Equal(t, 0, insufficient.Available)

	// The failed checkout left no trace: stock stays at 0, u1's cart line
	// is intact, and only u2's order exists.
	product, err := store.Products().GetByID("p1")
	require.NoError(t, err)
	assert.Equal(t, 0, product.Stock)

	lines, err := store.Carts().GetByUserID("u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)

	orders, err := store.Orders().GetAll()
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCheckoutService_PlaceOrder_MultiLineFailureRollsBackAll(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedProduct(t, store, "p1", "10.00", 5)
	seedProduct(t, store, "p2", "4.00", 1)
	seedCartLine(t, store, "u1", "p1", 2)
	seedCartLine(t, store, "u1", "p2", 3) // exceeds stock of p2

	service := services.NewCheckoutService(store, store.Orders(), nil)
	_, err := service.PlaceOrder("u1", "Jl. Merdeka 17, Jakarta")

	var insufficient *models.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "p2", insufficient.ProductID)

	// p1 must not be decremented even though its line validated first.
	p1, err := store.Products().GetByID("p1")
	require.NoError(t, err)
	assert.Equal(t, 5, p1.Stock)

	lines, err := store.Carts().GetByUserID("u1")
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestCheckoutService_PlaceOrder_PriceAtPurchaseIsImmune(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedProduct(t, store, "p1", "10.00", 5)
	seedCartLine(t, store, "u1", "p1", 1)

	service := services.NewCheckoutService(store, store.Orders(), nil)
	order, err := service.PlaceOrder("u1", "Jl. Merdeka 17, Jakarta")
	require.NoError(t, err)

	// A later catalog price change must not touch the committed order.
	product, err := store.Products().GetByID("p1")
	require.NoError(t, err)
	product.Price = decimal.RequireFromString("99.00")
	require.NoError(t, store.Products().Update(product))

	stored, err := store.Orders().GetByID(order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Items[0].PriceAtPurchase.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, stored.TotalAmount.Equal(decimal.RequireFromString("10.00")))
}

func TestCheckoutService_ConcurrentCheckouts_NeverOversell(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedProduct(t, store, "p1", "10.00", 5)
	seedCartLine(t, store, "shopper-a", "p1", 3)
	seedCartLine(t, store, "shopper-b", "p1", 3)

	service := services.NewCheckoutService(store, store.Orders(), nil)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, shopper := range []string{"shopper-a", "shopper-b"} {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := service.PlaceOrder(userID, "Jl. Merdeka 17, Jakarta")
			results <- err
		}(shopper)
	}
	wg.Wait()
	close(results)

	var succeeded, failed int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			var insufficient *models.InsufficientStockError
			require.ErrorAs(t, err, &insufficient)
			failed++
		}
	}

	// Together they request 6 of 5: exactly one may win.
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)

	product, err := store.Products().GetByID("p1")
	require.NoError(t, err)
	assert.Equal(t, 2, product.Stock, "stock must be initial 5 minus the single winning order")
	assert.GreaterOrEqual(t, product.Stock, 0)

	orders, err := store.Orders().GetAll()
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCheckoutService_UpdateOrderStatus(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedProduct(t, store, "p1", "10.00", 5)
	seedCartLine(t, store, "u1", "p1", 1)

	publisher := new(MockPublisher)
	publisher.On("Publish", "order.created", mock.Anything).Return(nil).Once()
	publisher.On("Publish", "order.status_updated", mock.Anything).Return(nil).Once()

	service := services.NewCheckoutService(store, store.Orders(), publisher)
	order, err := service.PlaceOrder("u1", "Jl. Merdeka 17, Jakarta")
	require.NoError(t, err)

	err = service.UpdateOrderStatus(order.ID, models.OrderStatusShipped)
	require.NoError(t, err)

	stored, err := store.Orders().GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, stored.Status)
	publisher.AssertExpectations(t)
}

func TestCheckoutService_UpdateOrderStatus_RejectsUnknownStatus(t *testing.T) {
	store := repositories.NewMemoryStore()
	service := services.NewCheckoutService(store, store.Orders(), nil)

	err := service.UpdateOrderStatus("some-order", "teleported")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid order status")
}

func TestCheckoutService_GetOrdersByStatus(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedProduct(t, store, "p1", "10.00", 10)
	seedCartLine(t, store, "u1", "p1", 1)
	seedCartLine(t, store, "u2", "p1", 2)

	service := services.NewCheckoutService(store, store.Orders(), nil)
	first, err := service.PlaceOrder("u1", "Jl. Merdeka 17, Jakarta")
	require.NoError(t, err)
	_, err = service.PlaceOrder("u2", "Jl. Sudirman 5, Bandung")
	require.NoError(t, err)

	require.NoError(t, service.UpdateOrderStatus(first.ID, models.OrderStatusShipped))

	pending, err := service.GetOrdersByStatus(models.OrderStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	shipped, err := service.GetOrdersByStatus(models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Len(t, shipped, 1)

	_, err = service.GetOrdersByStatus("bogus")
	assert.Error(t, err)
}

func TestCheckoutService_PublishFailureDoesNotFailCheckout(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedProduct(t, store, "p1", "10.00", 5)
	seedCartLine(t, store, "u1", "p1", 1)

	publisher := new(MockPublisher)
	publisher.On("Publish", "order.created", mock.Anything).
		Return(assert.AnError).Once()

	service := services.NewCheckoutService(store, store.Orders(), publisher)
	order, err := service.PlaceOrder("u1", "Jl. Merdeka 17, Jakarta")

	require.NoError(t, err)
	require.NotNil(t, order)
	publisher.AssertExpectations(t)
}
