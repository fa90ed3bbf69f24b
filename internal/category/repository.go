package category

import (
	"context"

	"github.com/cetus-shop/cetus-catalog-service/internal/category/dto"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, merchantID, id string) (*model.Category, error)
	FindBySlug(ctx context.Context, merchantID, slug string) (*model.Category, error)
	FindAll(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, merchantID, id string) error
}
