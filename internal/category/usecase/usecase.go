package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/cetus-shop/cetus-catalog-service/internal/category"
	"github.com/cetus-shop/cetus-catalog-service/internal/category/dto"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/internal/slug"
	"github.com/cetus-shop/cetus-catalog-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type categoryUseCase struct {
	repo   category.Repository
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	parentID := normalizeParent(input.ParentID)
	if parentID != nil {
		if _, err := uc.GetCategory(ctx, input.MerchantID, *parentID); err != nil {
			return nil, err
		}
	}

	s := input.Slug
	if s == "" {
		s = slug.Make(input.Name)
	}
	if err := uc.ensureSlugFree(ctx, input.MerchantID, s, ""); err != nil {
		return nil, err
	}

	now := time.Now()
	cat := &model.Category{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		MerchantID:  input.MerchantID,
		ParentID:    parentID,
		Slug:        s,
		Name:        input.Name,
		Description: &input.Description,
		ImageURL:    &input.ImageURL,
		SortOrder:   input.SortOrder,
		IsActive:    true,
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, err
	}
	uc.logger.Info("category created", zap.String("category_id", cat.ID), zap.String("slug", cat.Slug))
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, merchantID, id string) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, model.ErrCategoryNotFound
	}
	return cat, nil
}

func (uc *categoryUseCase) GetCategoryBySlug(ctx context.Context, merchantID, s string) (*model.Category, error) {
	cat, err := uc.repo.FindBySlug(ctx, merchantID, s)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, model.ErrCategoryNotFound
	}
	return cat, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	if !filters.AsTree {
		return uc.repo.FindAll(ctx, filters)
	}

	all, count, err := uc.repo.FindAll(ctx, &dto.CategoryFilters{
		MerchantID: filters.MerchantID,
		IsActive:   filters.IsActive,
	})
	if err != nil {
		return nil, 0, err
	}
	return BuildTree(all), count, nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	cat, err := uc.GetCategory(ctx, input.MerchantID, input.ID)
	if err != nil {
		return nil, err
	}

	parentID := normalizeParent(input.ParentID)
	if parentID != nil {
		if err := uc.checkParent(ctx, input.MerchantID, input.ID, *parentID); err != nil {
			return nil, err
		}
	}
	if input.Slug != "" && input.Slug != cat.Slug {
		if err := uc.ensureSlugFree(ctx, input.MerchantID, input.Slug, cat.ID); err != nil {
			return nil, err
		}
		cat.Slug = input.Slug
	}

	cat.Name = input.Name
	cat.Description = &input.Description
	cat.ImageURL = &input.ImageURL
	cat.SortOrder = input.SortOrder
	cat.IsActive = input.IsActive
	cat.ParentID = parentID
	cat.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, merchantID, id string) error {
	if _, err := uc.GetCategory(ctx, merchantID, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, merchantID, id)
}

// checkParent rejects a parent that is the category itself or one of its
// descendants.
func (uc *categoryUseCase) checkParent(ctx context.Context, merchantID, id, parentID string) error {
	seen := map[string]bool{}
	for current := parentID; current != ""; {
		if current == id {
			return fmt.Errorf("%w: a category cannot be its own ancestor", model.ErrValidation)
		}
		if seen[current] {
			break
		}
		seen[current] = true

		parent, err := uc.GetCategory(ctx, merchantID, current)
		if err != nil {
			return err
		}
		if parent.ParentID == nil {
			break
		}
		current = *parent.ParentID
	}
	return nil
}

func (uc *categoryUseCase) ensureSlugFree(ctx context.Context, merchantID, s, selfID string) error {
	if s == "" {
		return fmt.Errorf("%w: slug is required", model.ErrValidation)
	}
	existing, err := uc.repo.FindBySlug(ctx, merchantID, s)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return model.ErrSlugExists
	}
	return nil
}

func normalizeParent(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}

// BuildTree nests categories under their parents, keeping input order among
// siblings. Categories whose parent is missing from the list become roots.
func BuildTree(flat []model.Category) []model.Category {
	byID := make(map[string]int, len(flat))
	for i := range flat {
		byID[flat[i].ID] = i
	}
	children := make(map[string][]int, len(flat))
	roots := []int{}
	for i := range flat {
		p := flat[i].ParentID
		if p != nil {
			if _, ok := byID[*p]; ok && *p != flat[i].ID {
				children[*p] = append(children[*p], i)
				continue
			}
		}
		roots = append(roots, i)
	}

	var build func(i int, depth int) model.Category
	build = func(i int, depth int) model.Category {
		node := flat[i]
		node.Children = nil
		if depth > len(flat) {
			return node
		}
		for _, c := range children[node.ID] {
			node.Children = append(node.Children, build(c, depth+1))
		}
		return node
	}

	tree := make([]model.Category, 0, len(roots))
	for _, i := range roots {
		tree = append(tree, build(i, 0))
	}
	return tree
}
