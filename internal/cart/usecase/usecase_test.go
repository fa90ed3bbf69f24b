package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/cetus-shop/cetus-catalog-service/internal/cart"
	"github.com/cetus-shop/cetus-catalog-service/internal/cart/dto"
	"github.com/cetus-shop/cetus-catalog-service/internal/cart/repository"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) FindByID(ctx context.Context, merchantID, id string) (*model.Product, error) {
	args := m.Called(ctx, merchantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalog) FindVariantByID(ctx context.Context, merchantID, variantID string) (*model.ProductVariant, error) {
	args := m.Called(ctx, merchantID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductVariant), args.Error(1)
}

func (m *MockCatalog) StockByVariantIDs(ctx context.Context, merchantID string, variantIDs []string) (map[string]int, error) {
	args := m.Called(ctx, merchantID, variantIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func newUseCase(catalog cart.CatalogReader) (cart.UseCase, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	return NewCartUseCase(store, catalog, time.Hour, logger.NewNop()), store
}

func shirt() *model.Product {
	p := &model.Product{MerchantID: "m-1", Slug: "shirt", Name: "Shirt", IsActive: true}
	p.ID = "p-1"
	return p
}

func shirtVariant(id string, stock int) *model.ProductVariant {
	v := &model.ProductVariant{
		ProductID: "p-1",
		SKU:       "shir-" + id,
		Price:     decimal.RequireFromString("19.99"),
		Stock:     stock,
		IsEnabled: true,
		Images:    []model.VariantImage{{ID: "img-1", VariantID: id, URL: "https://cdn.example.com/" + id + ".jpg"}},
		OptionValues: []model.OptionValue{
			{ID: "red", OptionTypeID: "color", OptionTypeName: "Color", Value: "Red"},
		},
	}
	v.ID = id
	return v
}

func TestAddItem_DenormalisesVariant(t *testing.T) {
	ctx := context.Background()
	catalog := new(MockCatalog)
	catalog.On("FindVariantByID", ctx, "m-1", "v-1").Return(shirtVariant("v-1", 3), nil)
	catalog.On("FindByID", ctx, "m-1", "p-1").Return(shirt(), nil)
	uc, store := newUseCase(catalog)

	c, err := uc.AddItem(ctx, &dto.AddItemInput{MerchantID: "m-1", CartID: "c-1", VariantID: "v-1", Quantity: 2})
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	line := c.Items[0]
	assert.Equal(t, "Shirt", line.ProductName)
	assert.Equal(t, "shirt", line.ProductSlug)
	assert.Equal(t, "https://cdn.example.com/v-1.jpg", line.ImageURL)
	assert.Equal(t, 3, line.Stock)
	assert.Equal(t, 2, line.Quantity)

	stored, err := store.Load(ctx, "c-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	catalog.AssertExpectations(t)
}

func TestAddItem_AboveStockLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	catalog := new(MockCatalog)
	catalog.On("FindVariantByID", ctx, "m-1", "v-1").Return(shirtVariant("v-1", 3), nil)
	catalog.On("FindByID", ctx, "m-1", "p-1").Return(shirt(), nil)
	uc, store := newUseCase(catalog)

	_, err := uc.AddItem(ctx, &dto.AddItemInput{MerchantID: "m-1", CartID: "c-1", VariantID: "v-1", Quantity: 5})
	assert.ErrorIs(t, err, model.ErrInsufficientStock)

	stored, err := store.Load(ctx, "c-1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestAddItem_UnknownOrDisabledVariant(t *testing.T) {
	ctx := context.Background()
	disabled := shirtVariant("v-2", 3)
	disabled.IsEnabled = false

	catalog := new(MockCatalog)
	catalog.On("FindVariantByID", ctx, "m-1", "v-x").Return(nil, nil)
	catalog.On("FindVariantByID", ctx, "m-1", "v-2").Return(disabled, nil)
	uc, _ := newUseCase(catalog)

	_, err := uc.AddItem(ctx, &dto.AddItemInput{MerchantID: "m-1", CartID: "c-1", VariantID: "v-x", Quantity: 1})
	assert.ErrorIs(t, err, model.ErrVariantNotFound)

	_, err = uc.AddItem(ctx, &dto.AddItemInput{MerchantID: "m-1", CartID: "c-1", VariantID: "v-2", Quantity: 1})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestGetCart_MissingReturnsEmpty(t *testing.T) {
	uc, _ := newUseCase(new(MockCatalog))

	c, err := uc.GetCart(context.Background(), "m-1", "c-new")

	require.NoError(t, err)
	assert.Equal(t, "c-new", c.ID)
	assert.True(t, c.IsEmpty())
}

func TestGetCart_OtherMerchantIsHidden(t *testing.T) {
	ctx := context.Background()
	uc, store := newUseCase(new(MockCatalog))
	require.NoError(t, store.Save(ctx, cart.New("c-1", "m-2", time.Now()), time.Hour))

	_, err := uc.GetCart(ctx, "m-1", "c-1")

	assert.ErrorIs(t, err, model.ErrCartNotFound)
}

func TestUpdateQuantity_ClampsToStock(t *testing.T) {
	ctx := context.Background()
	catalog := new(MockCatalog)
	catalog.On("FindVariantByID", ctx, "m-1", "v-1").Return(shirtVariant("v-1", 3), nil)
	catalog.On("FindByID", ctx, "m-1", "p-1").Return(shirt(), nil)
	uc, _ := newUseCase(catalog)
	_, err := uc.AddItem(ctx, &dto.AddItemInput{MerchantID: "m-1", CartID: "c-1", VariantID: "v-1", Quantity: 1})
	require.NoError(t, err)

	c, err := uc.UpdateQuantity(ctx, &dto.UpdateQuantityInput{MerchantID: "m-1", CartID: "c-1", VariantID: "v-1", Quantity: 8})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Items[0].Quantity)

	_, err = uc.UpdateQuantity(ctx, &dto.UpdateQuantityInput{MerchantID: "m-1", CartID: "missing", VariantID: "v-1", Quantity: 1})
	assert.ErrorIs(t, err, model.ErrCartNotFound)
}

func TestRemoveItemAndClear(t *testing.T) {
	ctx := context.Background()
	catalog := new(MockCatalog)
	catalog.On("FindVariantByID", ctx, "m-1", "v-1").Return(shirtVariant("v-1", 3), nil)
	catalog.On("FindByID", ctx, "m-1", "p-1").Return(shirt(), nil)
	uc, store := newUseCase(catalog)
	_, err := uc.AddItem(ctx, &dto.AddItemInput{MerchantID: "m-1", CartID: "c-1", VariantID: "v-1", Quantity: 1})
	require.NoError(t, err)

	_, err = uc.RemoveItem(ctx, "m-1", "c-1", "v-9")
	assert.ErrorIs(t, err, cart.ErrItemNotFound)

	c, err := uc.RemoveItem(ctx, "m-1", "c-1", "v-1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	require.NoError(t, uc.ClearCart(ctx, "m-1", "c-1"))
	stored, err := store.Load(ctx, "c-1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestReconcileCart(t *testing.T) {
	ctx := context.Background()
	catalog := new(MockCatalog)
	catalog.On("FindVariantByID", ctx, "m-1", "v-1").Return(shirtVariant("v-1", 5), nil)
	catalog.On("FindVariantByID", ctx, "m-1", "v-2").Return(shirtVariant("v-2", 5), nil)
	catalog.On("FindByID", ctx, "m-1", "p-1").Return(shirt(), nil)
	catalog.On("StockByVariantIDs", ctx, "m-1", []string{"v-1", "v-2"}).Return(map[string]int{"v-1": 2}, nil)
	uc, store := newUseCase(catalog)
	_, err := uc.AddItem(ctx, &dto.AddItemInput{MerchantID: "m-1", CartID: "c-1", VariantID: "v-1", Quantity: 4})
	require.NoError(t, err)
	_, err = uc.AddItem(ctx, &dto.AddItemInput{MerchantID: "m-1", CartID: "c-1", VariantID: "v-2", Quantity: 1})
	require.NoError(t, err)

	c, changes, err := uc.ReconcileCart(ctx, "m-1", "c-1")
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Len(t, changes, 2)

	stored, err := store.Load(ctx, "c-1")
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 2, stored.Items[0].Quantity)
}
