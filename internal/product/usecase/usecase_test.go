package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/internal/product"
	"github.com/cetus-shop/cetus-catalog-service/internal/product/dto"
	"github.com/cetus-shop/cetus-catalog-service/internal/sku"
	"github.com/cetus-shop/cetus-catalog-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, merchantID, id string) (*model.Product, error) {
	args := m.Called(ctx, merchantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockRepository) FindBySlug(ctx context.Context, merchantID, slug string) (*model.Product, error) {
	args := m.Called(ctx, merchantID, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockRepository) FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.Product), args.Int(1), args.Error(2)
}

func (m *MockRepository) Update(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, merchantID, id string) error {
	return m.Called(ctx, merchantID, id).Error(0)
}

func (m *MockRepository) ListVariants(ctx context.Context, productID string) ([]model.ProductVariant, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProductVariant), args.Error(1)
}

func (m *MockRepository) FindVariantByID(ctx context.Context, merchantID, variantID string) (*model.ProductVariant, error) {
	args := m.Called(ctx, merchantID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductVariant), args.Error(1)
}

func (m *MockRepository) CreateVariant(ctx context.Context, v *model.ProductVariant) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockRepository) ListOptionTypes(ctx context.Context, productID string) ([]model.OptionType, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OptionType), args.Error(1)
}

func (m *MockRepository) FindOptionValues(ctx context.Context, productID string, ids []string) ([]model.OptionValue, error) {
	args := m.Called(ctx, productID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OptionValue), args.Error(1)
}

func (m *MockRepository) IsSKUUnique(ctx context.Context, merchantID, code, excludeID string) (bool, error) {
	args := m.Called(ctx, merchantID, code, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) StockByVariantIDs(ctx context.Context, merchantID string, ids []string) (map[string]int, error) {
	args := m.Called(ctx, merchantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

var (
	red   = model.OptionValue{ID: "red", OptionTypeID: "color", OptionTypeName: "Color", Value: "Red"}
	blue  = model.OptionValue{ID: "blue", OptionTypeID: "color", OptionTypeName: "Color", Value: "Blue"}
	small = model.OptionValue{ID: "s", OptionTypeID: "size", OptionTypeName: "Size", Value: "S"}
	large = model.OptionValue{ID: "l", OptionTypeID: "size", OptionTypeName: "Size", Value: "L"}
)

func mkVariant(id string, stock int, values ...model.OptionValue) model.ProductVariant {
	v := model.ProductVariant{ProductID: "p-1", SKU: id, Stock: stock, IsEnabled: true, OptionValues: values}
	v.ID = id
	return v
}

func tShirt() *model.Product {
	p := &model.Product{MerchantID: "m-1", Name: "Classic T-Shirt", Slug: "classic-t-shirt", IsActive: true}
	p.ID = "p-1"
	return p
}

func shirtVariants() []model.ProductVariant {
	return []model.ProductVariant{
		mkVariant("red-s", 0, red, small),
		mkVariant("red-l", 4, red, large),
		mkVariant("blue-s", 2, blue, small),
		mkVariant("blue-l", 0, blue, large),
	}
}

func newTestUseCase(repo product.Repository) product.UseCase {
	gen := &sku.Generator{NewSuffix: func() string { return "0a1b2c3d" }}
	return NewProductUseCase(repo, nil, nil, gen, logger.NewNop())
}

func TestCreateProduct_DerivesSlug(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
		return p.Slug == "classic-t-shirt" && p.CategoryID == nil && p.IsActive
	})).Return(nil)

	p, err := uc.CreateProduct(context.Background(), &dto.CreateProductInput{
		MerchantID: "m-1",
		Name:       "Classic T-Shirt!",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "m-1", p.MerchantID)
	repo.AssertExpectations(t)
}

func TestGetProduct_NotFound(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)

	repo.On("FindByID", mock.Anything, "m-1", "missing").Return(nil, nil)

	_, err := uc.GetProduct(context.Background(), "m-1", "missing")

	assert.ErrorIs(t, err, model.ErrProductNotFound)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestGetProductBySlug_LoadsVariants(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)

	repo.On("FindBySlug", mock.Anything, "m-1", "classic-t-shirt").Return(tShirt(), nil)
	repo.On("ListVariants", mock.Anything, "p-1").Return(shirtVariants(), nil)

	p, err := uc.GetProductBySlug(context.Background(), "m-1", "classic-t-shirt")

	require.NoError(t, err)
	assert.Len(t, p.Variants, 4)
}

func TestListProducts_GoesToRepositoryWithoutCache(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	filters := &dto.ProductFilters{MerchantID: "m-1", SearchQuery: "shirt", Page: 1, PageSize: 10}

	repo.On("FindAll", mock.Anything, filters).Return([]model.Product{*tShirt()}, 1, nil)

	products, total, err := uc.ListProducts(context.Background(), filters)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "p-1", products[0].ID)
}

func TestUpdateProduct_ClearsCategory(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)

	existing := tShirt()
	cat := "c-1"
	existing.CategoryID = &cat

	repo.On("FindByID", mock.Anything, "m-1", "p-1").Return(existing, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
		return p.CategoryID == nil && p.Name == "Tee" && !p.IsActive
	})).Return(nil)
	repo.On("ListVariants", mock.Anything, "p-1").Return([]model.ProductVariant{}, nil)

	p, err := uc.UpdateProduct(context.Background(), &dto.UpdateProductInput{
		ID: "p-1", MerchantID: "m-1", Name: "Tee", IsActive: false,
	})

	require.NoError(t, err)
	assert.Equal(t, "classic-t-shirt", p.Slug, "slug kept when not supplied")
	repo.AssertExpectations(t)
}

func TestDeleteProduct(t *testing.T) {
	t.Run("missing product", func(t *testing.T) {
		repo := new(MockRepository)
		uc := newTestUseCase(repo)
		repo.On("FindByID", mock.Anything, "m-1", "p-1").Return(nil, nil)

		err := uc.DeleteProduct(context.Background(), "m-1", "p-1")

		assert.ErrorIs(t, err, model.ErrProductNotFound)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deletes", func(t *testing.T) {
		repo := new(MockRepository)
		uc := newTestUseCase(repo)
		repo.On("FindByID", mock.Anything, "m-1", "p-1").Return(tShirt(), nil)
		repo.On("Delete", mock.Anything, "m-1", "p-1").Return(nil)

		require.NoError(t, uc.DeleteProduct(context.Background(), "m-1", "p-1"))
		repo.AssertExpectations(t)
	})
}

func TestCreateVariant_GeneratesSKU(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)

	repo.On("FindByID", mock.Anything, "m-1", "p-1").Return(tShirt(), nil)
	repo.On("ListVariants", mock.Anything, "p-1").Return([]model.ProductVariant{}, nil)
	repo.On("FindOptionValues", mock.Anything, "p-1", []string{"red", "l"}).
		Return([]model.OptionValue{red, large}, nil)
	repo.On("IsSKUUnique", mock.Anything, "m-1", "clas-color-red-size-l-0a1b2c3d", "").Return(true, nil)
	repo.On("CreateVariant", mock.Anything, mock.AnythingOfType("*model.ProductVariant")).Return(nil)

	v, err := uc.CreateVariant(context.Background(), &dto.CreateVariantInput{
		MerchantID:     "m-1",
		ProductID:      "p-1",
		Price:          decimal.RequireFromString("19.99"),
		Stock:          3,
		IsEnabled:      true,
		OptionValueIDs: []string{"red", " l ", "red"},
		ImageURLs:      []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
	})

	require.NoError(t, err)
	assert.Equal(t, "clas-color-red-size-l-0a1b2c3d", v.SKU)
	assert.Len(t, v.OptionValues, 2)
	require.Len(t, v.Images, 2)
	assert.Equal(t, 1, v.Images[1].Position)
	assert.Equal(t, v.ID, v.Images[0].VariantID)
	repo.AssertExpectations(t)
}

func TestCreateVariant_LongOptionNames(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)

	values := []model.OptionValue{
		{ID: "azul", OptionTypeID: "color", OptionTypeName: "Color", Value: "Azulmarino"},
		{ID: "xg", OptionTypeID: "talla", OptionTypeName: "Talla", Value: "Extragrande"},
		{ID: "alg", OptionTypeID: "material", OptionTypeName: "Material", Value: "Algodonorganico"},
	}
	want := "clas-color-azulmarino-talla-extragrande-material-algodonorganico-0a1b2c3d"

	repo.On("FindByID", mock.Anything, "m-1", "p-1").Return(tShirt(), nil)
	repo.On("ListVariants", mock.Anything, "p-1").Return([]model.ProductVariant{}, nil)
	repo.On("FindOptionValues", mock.Anything, "p-1", []string{"azul", "xg", "alg"}).Return(values, nil)
	repo.On("IsSKUUnique", mock.Anything, "m-1", want, "").Return(true, nil)
	repo.On("CreateVariant", mock.Anything, mock.AnythingOfType("*model.ProductVariant")).Return(nil)

	v, err := uc.CreateVariant(context.Background(), &dto.CreateVariantInput{
		MerchantID:     "m-1",
		ProductID:      "p-1",
		OptionValueIDs: []string{"azul", "xg", "alg"},
	})

	require.NoError(t, err)
	assert.Equal(t, want, v.SKU)
	assert.LessOrEqual(t, len(v.SKU), sku.MaxLength)
}

func TestCreateVariant_SKUTooLong(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)

	long := strings.Repeat("x", 95)
	values := []model.OptionValue{
		{ID: "a", OptionTypeID: "t1", OptionTypeName: "Pattern", Value: long},
		{ID: "b", OptionTypeID: "t2", OptionTypeName: "Finish", Value: long},
		{ID: "c", OptionTypeID: "t3", OptionTypeName: "Engraving", Value: long},
	}

	repo.On("FindByID", mock.Anything, "m-1", "p-1").Return(tShirt(), nil)
	repo.On("ListVariants", mock.Anything, "p-1").Return([]model.ProductVariant{}, nil)
	repo.On("FindOptionValues", mock.Anything, "p-1", []string{"a", "b", "c"}).Return(values, nil)

	_, err := uc.CreateVariant(context.Background(), &dto.CreateVariantInput{
		MerchantID:     "m-1",
		ProductID:      "p-1",
		OptionValueIDs: []string{"a", "b", "c"},
	})

	assert.ErrorIs(t, err, model.ErrValidation)
	repo.AssertNotCalled(t, "IsSKUUnique", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "CreateVariant", mock.Anything, mock.Anything)
}

func TestCreateVariant_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		input   dto.CreateVariantInput
		setup   func(repo *MockRepository)
		wantErr error
	}{
		{
			name:    "negative price",
			input:   dto.CreateVariantInput{Price: decimal.NewFromInt(-1)},
			setup:   func(repo *MockRepository) {},
			wantErr: model.ErrValidation,
		},
		{
			name:    "negative stock",
			input:   dto.CreateVariantInput{Stock: -2},
			setup:   func(repo *MockRepository) {},
			wantErr: model.ErrValidation,
		},
		{
			name:  "unknown option value",
			input: dto.CreateVariantInput{OptionValueIDs: []string{"red", "green"}},
			setup: func(repo *MockRepository) {
				repo.On("FindOptionValues", mock.Anything, "p-1", []string{"red", "green"}).
					Return([]model.OptionValue{red}, nil)
			},
			wantErr: model.ErrValidation,
		},
		{
			name:  "two values of one option type",
			input: dto.CreateVariantInput{OptionValueIDs: []string{"red", "blue"}},
			setup: func(repo *MockRepository) {
				repo.On("FindOptionValues", mock.Anything, "p-1", []string{"red", "blue"}).
					Return([]model.OptionValue{red, blue}, nil)
			},
			wantErr: model.ErrValidation,
		},
		{
			name:  "combination exists",
			input: dto.CreateVariantInput{OptionValueIDs: []string{"l", "blue"}},
			setup: func(repo *MockRepository) {
				repo.On("FindOptionValues", mock.Anything, "p-1", []string{"l", "blue"}).
					Return([]model.OptionValue{large, blue}, nil)
			},
			wantErr: model.ErrDuplicateCombination,
		},
		{
			name:  "sku taken",
			input: dto.CreateVariantInput{SKU: "TEE-001"},
			setup: func(repo *MockRepository) {
				repo.On("FindOptionValues", mock.Anything, "p-1", []string{}).Return([]model.OptionValue{}, nil)
				repo.On("IsSKUUnique", mock.Anything, "m-1", "TEE-001", "").Return(false, nil)
			},
			wantErr: model.ErrSKUExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			uc := newTestUseCase(repo)
			repo.On("FindByID", mock.Anything, "m-1", "p-1").Return(tShirt(), nil).Maybe()
			repo.On("ListVariants", mock.Anything, "p-1").Return(shirtVariants(), nil).Maybe()
			tt.setup(repo)

			in := tt.input
			in.MerchantID = "m-1"
			in.ProductID = "p-1"
			_, err := uc.CreateVariant(context.Background(), &in)

			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "CreateVariant", mock.Anything, mock.Anything)
		})
	}
}

func TestSuggestSKU(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)

	repo.On("FindByID", mock.Anything, "m-1", "p-1").Return(tShirt(), nil)
	repo.On("FindOptionValues", mock.Anything, "p-1", []string{}).Return([]model.OptionValue{}, nil)

	code, err := uc.SuggestSKU(context.Background(), &dto.SuggestSKUInput{MerchantID: "m-1", ProductID: "p-1"})

	require.NoError(t, err)
	assert.Equal(t, "clas-0a1b2c3d", code)
}

func TestListOptions_UnknownProduct(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	repo.On("FindByID", mock.Anything, "m-1", "p-9").Return(nil, nil)

	_, err := uc.ListOptions(context.Background(), "m-1", "p-9")

	assert.ErrorIs(t, err, model.ErrProductNotFound)
	repo.AssertNotCalled(t, "ListOptionTypes", mock.Anything, mock.Anything)
}

func TestGetSelector(t *testing.T) {
	t.Run("defaults to first purchasable variant", func(t *testing.T) {
		repo := new(MockRepository)
		uc := newTestUseCase(repo)
		repo.On("FindByID", mock.Anything, "m-1", "p-1").Return(tShirt(), nil)
		repo.On("ListVariants", mock.Anything, "p-1").Return(shirtVariants(), nil)

		sel, err := uc.GetSelector(context.Background(), "m-1", "p-1", "")

		require.NoError(t, err)
		require.NotNil(t, sel.Variant)
		assert.Equal(t, "red-l", sel.Variant.ID)
		assert.True(t, sel.Purchasable)
		assert.Equal(t, []string{"red", "l"}, sel.Selected)
		require.Len(t, sel.Groups, 2)
		assert.Equal(t, "Color", sel.Groups[0].OptionTypeName)
	})

	t.Run("explicit out of stock variant", func(t *testing.T) {
		repo := new(MockRepository)
		uc := newTestUseCase(repo)
		repo.On("FindByID", mock.Anything, "m-1", "p-1").Return(tShirt(), nil)
		repo.On("ListVariants", mock.Anything, "p-1").Return(shirtVariants(), nil)

		sel, err := uc.GetSelector(context.Background(), "m-1", "p-1", "blue-l")

		require.NoError(t, err)
		assert.Equal(t, "blue-l", sel.Variant.ID)
		assert.False(t, sel.Purchasable)
	})

	t.Run("unknown variant", func(t *testing.T) {
		repo := new(MockRepository)
		uc := newTestUseCase(repo)
		repo.On("FindByID", mock.Anything, "m-1", "p-1").Return(tShirt(), nil)
		repo.On("ListVariants", mock.Anything, "p-1").Return(shirtVariants(), nil)

		_, err := uc.GetSelector(context.Background(), "m-1", "p-1", "ghost")

		assert.ErrorIs(t, err, model.ErrVariantNotFound)
	})

	t.Run("no variants", func(t *testing.T) {
		repo := new(MockRepository)
		uc := newTestUseCase(repo)
		repo.On("FindByID", mock.Anything, "m-1", "p-1").Return(tShirt(), nil)
		repo.On("ListVariants", mock.Anything, "p-1").Return([]model.ProductVariant{}, nil)

		sel, err := uc.GetSelector(context.Background(), "m-1", "p-1", "")

		require.NoError(t, err)
		assert.Nil(t, sel.Variant)
		assert.Empty(t, sel.Groups)
		assert.False(t, sel.Purchasable)
	})
}

func TestResolveVariant(t *testing.T) {
	tests := []struct {
		name        string
		current     string
		value       string
		want        string
		purchasable bool
	}{
		{name: "keeps other options when in stock", current: "red-l", value: "l", want: "red-l", purchasable: true},
		{name: "relaxes other options when out of stock", current: "red-l", value: "blue", want: "blue-s", purchasable: true},
		{name: "switches to any in stock", current: "blue-s", value: "l", want: "red-l", purchasable: true},
		{name: "no current variant", current: "", value: "s", want: "blue-s", purchasable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			uc := newTestUseCase(repo)
			repo.On("FindByID", mock.Anything, "m-1", "p-1").Return(tShirt(), nil)
			repo.On("ListVariants", mock.Anything, "p-1").Return(shirtVariants(), nil)

			res, err := uc.ResolveVariant(context.Background(), "m-1", "p-1", tt.current, tt.value)

			require.NoError(t, err)
			assert.Equal(t, tt.want, res.VariantID)
			require.NotNil(t, res.Variant)
			assert.Equal(t, tt.purchasable, res.Purchasable)
		})
	}
}

func TestResolveVariant_UnknownValue(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	repo.On("FindByID", mock.Anything, "m-1", "p-1").Return(tShirt(), nil)
	repo.On("ListVariants", mock.Anything, "p-1").Return(shirtVariants(), nil)

	_, err := uc.ResolveVariant(context.Background(), "m-1", "p-1", "red-l", "green")

	assert.ErrorIs(t, err, model.ErrOptionNotFound)
}

func TestGetProduct_RepositoryError(t *testing.T) {
	repo := new(MockRepository)
	uc := newTestUseCase(repo)
	boom := errors.New("connection reset")
	repo.On("FindByID", mock.Anything, "m-1", "p-1").Return(tShirt(), nil)
	repo.On("ListVariants", mock.Anything, "p-1").Return(nil, boom)

	_, err := uc.GetProduct(context.Background(), "m-1", "p-1")

	assert.ErrorIs(t, err, boom)
}
