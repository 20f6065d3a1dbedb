package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tasheen2002/Security-Project/internal/cache"
	"github.com/Tasheen2002/Security-Project/internal/domain"
	"github.com/Tasheen2002/Security-Project/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CartService owns all cart mutations. None of them touch inventory;
// stock is checked again at checkout since time may have elapsed.
type CartService struct {
	repo     repository.CartRepository
	products repository.ProductRepository
	cache    cache.CartCache
	logger   *zap.Logger
	sfg      singleflight.Group // prevents cache stampede on cart reads
}

func NewCartService(repo repository.CartRepository, products repository.ProductRepository, cartCache cache.CartCache, logger *zap.Logger) *CartService {
	return &CartService{
		repo:     repo,
		products: products,
		cache:    cartCache,
		logger:   logger,
	}
}

// GetCart returns the user's cart, or an empty virtual cart that is
// not persisted until the first mutation.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cart cache get failed", zap.String("user_id", userID), zap.Error(err))
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errors.Is(errGet, repository.ErrCartNotFound) {
			now := time.Now()
			return &domain.Cart{
				UserID:    userID,
				Items:     nil,
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, cart); errSet != nil {
				s.logger.Warn("cart cache set failed", zap.String("user_id", userID), zap.Error(errSet))
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddLine validates the quantity bounds and the product's existence,
// then appends a line snapshot. Name, price and image are captured
// here and not re-validated until checkout.
func (s *CartService) AddLine(ctx context.Context, userID, productID string, quantity int64) (*domain.Cart, error) {
	if productID == "" {
		return nil, ValidationError{Field: "productId", Message: "Product ID is required"}
	}
	if quantity < domain.MinLineQuantity || quantity > domain.MaxLineQuantity {
		return nil, ValidationError{Field: "quantity", Message: "Quantity must be between 1 and 100"}
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	line := domain.CartLine{
		ID:          uuid.NewString(),
		ProductID:   product.ID.Hex(),
		ProductName: product.Name,
		Price:       product.Price,
		Quantity:    quantity,
		Image:       product.Image,
	}

	cart, err := s.repo.AddLine(ctx, userID, line)
	if err != nil {
		if errors.Is(err, repository.ErrLineCapacity) {
			return nil, ValidationError{Field: "quantity", Message: "Maximum quantity per item is 100"}
		}
		return nil, fmt.Errorf("failed to add cart line: %w", err)
	}

	s.invalidateCache(userID)
	return cart, nil
}

// UpdateLine changes a line's quantity. A quantity below one removes
// the line; a line is never retained at quantity zero.
func (s *CartService) UpdateLine(ctx context.Context, userID, lineID string, quantity int64) (*domain.Cart, error) {
	if quantity > domain.MaxLineQuantity {
		return nil, ValidationError{Field: "quantity", Message: "Quantity must be between 1 and 100"}
	}
	if quantity < domain.MinLineQuantity {
		return s.RemoveLine(ctx, userID, lineID)
	}

	cart, err := s.repo.UpdateLineQuantity(ctx, userID, lineID, quantity)
	if err != nil {
		return nil, err
	}

	s.invalidateCache(userID)
	return cart, nil
}

func (s *CartService) RemoveLine(ctx context.Context, userID, lineID string) (*domain.Cart, error) {
	cart, err := s.repo.RemoveLine(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}

	s.invalidateCache(userID)
	return cart, nil
}

func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.repo.ClearCart(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil // nothing to clear
		}
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("cart cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}
