package services_test

import (
	"errors"
	"testing"

	"belanja/internal/models"
	"belanja/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockCartRepository is a mock implementation of repositories.CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetByUserID(userID string) ([]models.CartItem, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CartItem), args.Error(1)
}

func (m *MockCartRepository) GetByID(id string) (*models.CartItem, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartRepository) GetByUserAndProduct(userID, productID string) (*models.CartItem, error) {
	args := m.Called(userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartRepository) Create(item *models.CartItem) error {
	args := m.Called(item)
	return args.Error(0)
}

func (m *MockCartRepository) UpdateQuantity(id string, quantity int) error {
	args := m.Called(id, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteByUserID(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func newCartService(cartRepo *MockCartRepository, productRepo *MockProductRepository) *services.CartService {
	inventory := services.NewInventoryService(productRepo)
	return services.NewCartService(cartRepo, productRepo, inventory)
}

func activeProduct(id string, price string, stock int) *models.Product {
	return &models.Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
}

func TestCartService_AddItem_NewLine(t *testing.T) {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	service := newCartService(cartRepo, productRepo)

	product := activeProduct("p1", "10.00", 5)
	productRepo.On("GetByID", "p1").Return(product, nil)
	cartRepo.On("GetByUserAndProduct", "u1", "p1").Return(nil, nil).Once()
	cartRepo.On("Create", mock.MatchedBy(func(item *models.CartItem) bool {
		return item.UserID == "u1" && item.ProductID == "p1" && item.Quantity == 3
	})).Return(nil).Once()

	err := service.AddItem("u1", "p1", 3)

	assert.NoError(t, err)
	cartRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

func TestCartService_AddItem_MergesExistingLine(t *testing.T) {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	service := newCartService(cartRepo, productRepo)

	product := activeProduct("p1", "10.00", 5)
	existing := &models.CartItem{ID: "line-1", UserID: "u1", ProductID: "p1", Quantity: 2}

	productRepo.On("GetByID", "p1").Return(product, nil)
	cartRepo.On("GetByUserAndProduct", "u1", "p1").Return(existing, nil).Once()
	cartRepo.On("UpdateQuantity", "line-1", 5).Return(nil).Once()

	err := service.AddItem("u1", "p1", 3)

	assert.NoError(t, err)
	cartRepo.AssertExpectations(t)
}

func TestCartService_AddItem_InsufficientStock(t *testing.T) {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	service := newCartService(cartRepo, productRepo)

	product := activeProduct("p1", "10.00", 4)
	existing := &models.CartItem{ID: "line-1", UserID: "u1", ProductID: "p1", Quantity: 2}

	productRepo.On("GetByID", "p1").Return(product, nil)
	cartRepo.On("GetByUserAndProduct", "u1", "p1").Return(existing, nil).Once()

	err := service.AddItem("u1", "p1", 3)

	var insufficient *models.InsufficientStockError
	assert.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 5, insufficient.Requested)
	assert.Equal(t, 4, insufficient.Available)
	assert.Equal(t, "p1", insufficient.ProductID)
	cartRepo.AssertNotCalled(t, "Create", mock.Anything)
	cartRepo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything)
}

func TestCartService_AddItem_InactiveProduct(t *testing.T) {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	service := newCartService(cartRepo, productRepo)

	inactive := activeProduct("p1", "10.00", 5)
	inactive.IsActive = false
	productRepo.On("GetByID", "p1").Return(inactive, nil)

	err := service.AddItem("u1", "p1", 1)

	var unavailable *models.ProductUnavailableError
	assert.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "p1", unavailable.ProductID)
	cartRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCartService_AddItem_MissingProduct(t *testing.T) {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	service := newCartService(cartRepo, productRepo)

	productRepo.On("GetByID", "nope").Return(nil, &models.ProductUnavailableError{ProductID: "nope"})

	err := service.AddItem("u1", "nope", 1)

	var unavailable *models.ProductUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestCartService_AddItem_RejectsNonPositiveQuantity(t *testing.T) {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	service := newCartService(cartRepo, productRepo)

	err := service.AddItem("u1", "p1", 0)
	assert.Error(t, err)
	err = service.AddItem("u1", "p1", -2)
	assert.Error(t, err)
	productRepo.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestCartService_SetQuantity_ZeroDeletesLine(t *testing.T) {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	service := newCartService(cartRepo, productRepo)

	cartRepo.On("Delete", "line-1").Return(nil).Once()

	err := service.SetQuantity("line-1", 0)

	assert.NoError(t, err)
	cartRepo.AssertExpectations(t)
	cartRepo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything)
}

func TestCartService_SetQuantity_UpdatesWithoutStockCheck(t *testing.T) {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	service := newCartService(cartRepo, productRepo)

	cartRepo.On("UpdateQuantity", "line-1", 7).Return(nil).Once()

	err := service.SetQuantity("line-1", 7)

	assert.NoError(t, err)
	cartRepo.AssertExpectations(t)
	productRepo.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestCartService_RemoveLine_Idempotent(t *testing.T) {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	service := newCartService(cartRepo, productRepo)

	// Absent lines delete as a no-op, not an error.
	cartRepo.On("Delete", "ghost").Return(nil).Twice()

	assert.NoError(t, service.RemoveLine("ghost"))
	assert.NoError(t, service.RemoveLine("ghost"))
	cartRepo.AssertExpectations(t)
}

func TestCartService_GetTotal_UsesCurrentPrices(t *testing.T) {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	service := newCartService(cartRepo, productRepo)

	items := []models.CartItem{
		{ID: "l1", UserID: "u1", ProductID: "p1", Quantity: 3, Product: *activeProduct("p1", "10.00", 5)},
		{ID: "l2", UserID: "u1", ProductID: "p2", Quantity: 2, Product: *activeProduct("p2", "2.50", 9)},
	}
	cartRepo.On("GetByUserID", "u1").Return(items, nil).Once()

	total, err := service.GetTotal("u1")

	assert.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("35.00")),
		"expected 35.00, got %s", total)
}

func TestCartService_GetTotal_PropagatesRepoError(t *testing.T) {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	service := newCartService(cartRepo, productRepo)

	cartRepo.On("GetByUserID", "u1").Return(nil, errors.New("database error")).Once()

	_, err := service.GetTotal("u1")
	assert.Error(t, err)
}
