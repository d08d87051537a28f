// internal/domain/checkout/redis_store.go
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists checkout sessions in Redis as JSON blobs. The
// compare-and-swap in Save runs under WATCH, so a concurrent transition
// on the same cart fails the transaction instead of clobbering it.
type RedisStore struct {
	redisClient *redis.Client
}

// NewRedisStore creates a new Redis-backed checkout session store
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
	}
}

func checkoutKey(cartID uint) string {
	return fmt.Sprintf("checkout:cart:%d", cartID)
}

// Get retrieves the checkout session for a cart
func (s *RedisStore) Get(ctx context.Context, cartID uint) (*CheckoutSession, error) {
	data, err := s.redisClient.Get(ctx, checkoutKey(cartID)).Result()
	if err == redis.Nil {
		return nil, ErrCheckoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}

	var session CheckoutSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	return &session, nil
}

// Save stores the session if its stored Version still matches
// expectedVersion
func (s *RedisStore) Save(ctx context.Context, session *CheckoutSession, expectedVersion int, ttl time.Duration) error {
	key := checkoutKey(session.CartID)

	err := s.redisClient.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		switch {
		case err == redis.Nil:
			if expectedVersion != 0 {
				return ErrConcurrentModification
			}
		case err != nil:
			return fmt.Errorf("failed to read checkout session: %w", err)
		default:
			if expectedVersion == 0 {
				return ErrConcurrentModification
			}
			var stored CheckoutSession
			if err := json.Unmarshal([]byte(data), &stored); err != nil {
				return fmt.Errorf("failed to unmarshal checkout session: %w", err)
			}
			if stored.Version != expectedVersion {
				return ErrConcurrentModification
			}
		}

		session.Version = expectedVersion + 1
		session.UpdatedAt = time.Now()

		payload, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to marshal checkout session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrConcurrentModification
	}
	return err
}

// Delete removes the checkout session for a cart
func (s *RedisStore) Delete(ctx context.Context, cartID uint) error {
	if err := s.redisClient.Del(ctx, checkoutKey(cartID)).Err(); err != nil {
		return fmt.Errorf("failed to delete checkout session: %w", err)
	}
	return nil
}
