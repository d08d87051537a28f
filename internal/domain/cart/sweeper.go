// internal/domain/cart/sweeper.go
package cart

import (
	"context"
	"time"
)

// ExpireStale abandons one batch of active carts past their expiry.
// Concurrent or repeated runs converge; only the single status flip per
// cart counts toward the total.
func (s *Service) ExpireStale(ctx context.Context) (int64, error) {
	return s.repo.ExpireStale(ctx, time.Now().UTC(), s.config.Cart.SweepBatchSize)
}

// RunSweeper periodically expires stale carts until ctx is cancelled.
// Run it in its own goroutine.
func (s *Service) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.config.Cart.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := s.ExpireStale(ctx)
			if err != nil {
				s.logger.WithError(err).Error("Cart sweep failed")
				continue
			}
			if swept > 0 {
				s.logger.WithField("carts", swept).Info("Expired stale carts")
			}
		}
	}
}
