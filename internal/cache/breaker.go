package cache

import (
	"context"
	"errors"

	"github.com/Tasheen2002/Security-Project/internal/domain"
	"github.com/sony/gobreaker/v2"
)

// BreakerCache wraps a CartCache with a circuit breaker so an
// unreachable redis degrades into cache misses instead of adding a
// failing round trip to every cart read.
type BreakerCache struct {
	inner CartCache
	reads *gobreaker.CircuitBreaker[*domain.Cart]
	write *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerCache(inner CartCache) *BreakerCache {
	settings := gobreaker.Settings{
		Name:        "cart-cache",
		MaxRequests: 3,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// A miss is a healthy answer, not a redis failure
			return err == nil || errors.Is(err, ErrCacheMiss)
		},
	}

	return &BreakerCache{
		inner: inner,
		reads: gobreaker.NewCircuitBreaker[*domain.Cart](settings),
		write: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (b *BreakerCache) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := b.reads.Execute(func() (*domain.Cart, error) {
		return b.inner.Get(ctx, userID)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCacheMiss
	}
	return cart, err
}

func (b *BreakerCache) Set(ctx context.Context, userID string, cart *domain.Cart) error {
	_, err := b.write.Execute(func() (struct{}, error) {
		return struct{}{}, b.inner.Set(ctx, userID, cart)
	})
	return err
}

func (b *BreakerCache) Delete(ctx context.Context, userID string) error {
	_, err := b.write.Execute(func() (struct{}, error) {
		return struct{}{}, b.inner.Delete(ctx, userID)
	})
	return err
}
