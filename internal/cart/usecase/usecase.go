package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/cetus-shop/cetus-catalog-service/internal/cart"
	"github.com/cetus-shop/cetus-catalog-service/internal/cart/dto"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/pkg/logger"
	"go.uber.org/zap"
)

type cartUseCase struct {
	store   cart.Store
	catalog cart.CatalogReader
	ttl     time.Duration
	logger  logger.ZapLogger
	now     func() time.Time
}

func NewCartUseCase(store cart.Store, catalog cart.CatalogReader, ttl time.Duration, log logger.ZapLogger) cart.UseCase {
	if ttl <= 0 {
		ttl = cart.DefaultTTL
	}
	return &cartUseCase{
		store:   store,
		catalog: catalog,
		ttl:     ttl,
		logger:  log,
		now:     time.Now,
	}
}

// GetCart returns the stored cart, or a fresh empty one that is not saved
// until something is added to it.
func (uc *cartUseCase) GetCart(ctx context.Context, merchantID, cartID string) (*cart.Cart, error) {
	c, err := uc.load(ctx, merchantID, cartID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return cart.New(cartID, merchantID, uc.now()), nil
	}
	return c, nil
}

func (uc *cartUseCase) AddItem(ctx context.Context, input *dto.AddItemInput) (*cart.Cart, error) {
	if input.Quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}

	v, err := uc.catalog.FindVariantByID(ctx, input.MerchantID, input.VariantID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, model.ErrVariantNotFound
	}
	if !v.IsEnabled {
		return nil, fmt.Errorf("%w: variant %s is not for sale", model.ErrValidation, v.ID)
	}
	p, err := uc.catalog.FindByID(ctx, input.MerchantID, v.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, model.ErrProductNotFound
	}

	item := model.CartItem{
		VariantID:    v.ID,
		ProductID:    p.ID,
		ProductName:  p.Name,
		ProductSlug:  p.Slug,
		Price:        v.Price,
		Stock:        v.Stock,
		OptionValues: v.OptionValues,
	}
	if len(v.Images) > 0 {
		item.ImageURL = v.Images[0].URL
	}

	c, err := uc.GetCart(ctx, input.MerchantID, input.CartID)
	if err != nil {
		return nil, err
	}
	if err := c.Add(item, input.Quantity, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *cartUseCase) UpdateQuantity(ctx context.Context, input *dto.UpdateQuantityInput) (*cart.Cart, error) {
	c, err := uc.mustLoad(ctx, input.MerchantID, input.CartID)
	if err != nil {
		return nil, err
	}
	if _, err := c.SetQuantity(input.VariantID, input.Quantity, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *cartUseCase) RemoveItem(ctx context.Context, merchantID, cartID, variantID string) (*cart.Cart, error) {
	c, err := uc.mustLoad(ctx, merchantID, cartID)
	if err != nil {
		return nil, err
	}
	if !c.Remove(variantID, uc.now()) {
		return nil, cart.ErrItemNotFound
	}
	if err := uc.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *cartUseCase) ClearCart(ctx context.Context, merchantID, cartID string) error {
	c, err := uc.load(ctx, merchantID, cartID)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}
	return uc.store.Delete(ctx, cartID)
}

// ReconcileCart re-reads live stock and clamps or drops lines. The cart is
// only written back when something changed.
func (uc *cartUseCase) ReconcileCart(ctx context.Context, merchantID, cartID string) (*cart.Cart, []cart.LineChange, error) {
	c, err := uc.mustLoad(ctx, merchantID, cartID)
	if err != nil {
		return nil, nil, err
	}
	if c.IsEmpty() {
		return c, []cart.LineChange{}, nil
	}

	live, err := uc.catalog.StockByVariantIDs(ctx, merchantID, c.VariantIDs())
	if err != nil {
		return nil, nil, err
	}
	changes := c.Revalidate(live, uc.now())
	if len(changes) > 0 {
		uc.logger.Info("cart reconciled",
			zap.String("cart_id", cartID),
			zap.Int("changed_lines", len(changes)),
		)
		if err := uc.save(ctx, c); err != nil {
			return nil, nil, err
		}
	}
	return c, changes, nil
}

// load returns nil, nil for a missing cart and hides carts that belong to
// another merchant.
func (uc *cartUseCase) load(ctx context.Context, merchantID, cartID string) (*cart.Cart, error) {
	c, err := uc.store.Load(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", cartID, err)
	}
	if c == nil {
		return nil, nil
	}
	if c.MerchantID != merchantID {
		return nil, model.ErrCartNotFound
	}
	return c, nil
}

func (uc *cartUseCase) mustLoad(ctx context.Context, merchantID, cartID string) (*cart.Cart, error) {
	c, err := uc.load(ctx, merchantID, cartID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, model.ErrCartNotFound
	}
	return c, nil
}

func (uc *cartUseCase) save(ctx context.Context, c *cart.Cart) error {
	c.ExpiresAt = c.UpdatedAt.Add(uc.ttl)
	if err := uc.store.Save(ctx, c, uc.ttl); err != nil {
		uc.logger.Error("failed to save cart", zap.String("cart_id", c.ID), zap.Error(err))
		return fmt.Errorf("failed to save cart %s: %w", c.ID, err)
	}
	return nil
}
