// internal/domain/order/claim.go
package order

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Claim links an account-claim token to the guest order it can redeem
type Claim struct {
	OrderID uint   `json:"order_id"`
	Email   string `json:"email"`
}

// ClaimStore holds short-lived account-claim tokens minted for guest
// orders. Redeem is one-shot: a token is consumed on first use.
type ClaimStore interface {
	Issue(ctx context.Context, orderID uint, email string, ttl time.Duration) (string, error)
	Redeem(ctx context.Context, token string) (*Claim, error)
}

// RedisClaimStore keeps claims in Redis under account-claim:<token>
type RedisClaimStore struct {
	redisClient *redis.Client
}

// NewRedisClaimStore creates a new Redis-backed claim store
func NewRedisClaimStore(redisClient *redis.Client) *RedisClaimStore {
	return &RedisClaimStore{redisClient: redisClient}
}

func claimKey(token string) string {
	return fmt.Sprintf("account-claim:%s", token)
}

// Issue mints a token for the order
func (s *RedisClaimStore) Issue(ctx context.Context, orderID uint, email string, ttl time.Duration) (string, error) {
	token := uuid.New().String()
	data, err := json.Marshal(Claim{OrderID: orderID, Email: email})
	if err != nil {
		return "", fmt.Errorf("failed to marshal claim: %w", err)
	}
	if err := s.redisClient.Set(ctx, claimKey(token), data, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store claim: %w", err)
	}
	return token, nil
}

// Redeem consumes the token and returns its claim
func (s *RedisClaimStore) Redeem(ctx context.Context, token string) (*Claim, error) {
	data, err := s.redisClient.GetDel(ctx, claimKey(token)).Result()
	if err == redis.Nil {
		return nil, ErrClaimNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to redeem claim: %w", err)
	}

	var claim Claim
	if err := json.Unmarshal([]byte(data), &claim); err != nil {
		return nil, fmt.Errorf("failed to unmarshal claim: %w", err)
	}
	return &claim, nil
}

// MemoryClaimStore implements ClaimStore in memory, for tests and
// single-node development runs
type MemoryClaimStore struct {
	mu     sync.Mutex
	claims map[string]memoryClaim
}

type memoryClaim struct {
	claim     Claim
	expiresAt time.Time
}

// NewMemoryClaimStore creates a new in-memory claim store
func NewMemoryClaimStore() *MemoryClaimStore {
	return &MemoryClaimStore{claims: make(map[string]memoryClaim)}
}

// Issue mints a token for the order
func (s *MemoryClaimStore) Issue(ctx context.Context, orderID uint, email string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.New().String()
	s.claims[token] = memoryClaim{
		claim:     Claim{OrderID: orderID, Email: email},
		expiresAt: time.Now().Add(ttl),
	}
	return token, nil
}

// Redeem consumes the token and returns its claim
func (s *MemoryClaimStore) Redeem(ctx context.Context, token string) (*Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.claims[token]
	if !exists || time.Now().After(entry.expiresAt) {
		return nil, ErrClaimNotFound
	}
	delete(s.claims, token)

	claim := entry.claim
	return &claim, nil
}
