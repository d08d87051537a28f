// internal/domain/order/sequence.go
package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sequence allocates human-legible order numbers. Numbers are unique
// and roughly monotonic within a year; the orders table's unique index
// is the final guard.
type Sequence interface {
	Next(ctx context.Context) (string, error)
}

// RedisSequence allocates numbers from a year-scoped Redis counter, so
// numbering restarts every January and numbers stay short
type RedisSequence struct {
	redisClient *redis.Client
	prefix      string
}

// NewRedisSequence creates a new Redis-backed order number sequence
func NewRedisSequence(redisClient *redis.Client, prefix string) *RedisSequence {
	return &RedisSequence{
		redisClient: redisClient,
		prefix:      prefix,
	}
}

// Next allocates the next order number, e.g. ORD-2026-000042
func (s *RedisSequence) Next(ctx context.Context) (string, error) {
	year := time.Now().Year()
	n, err := s.redisClient.Incr(ctx, fmt.Sprintf("order:seq:%d", year)).Result()
	if err != nil {
		return "", fmt.Errorf("failed to allocate order number: %w", err)
	}
	return fmt.Sprintf("%s-%d-%06d", s.prefix, year, n), nil
}

// MemorySequence allocates numbers from an in-process counter, for
// tests and single-node development runs
type MemorySequence struct {
	mu     sync.Mutex
	prefix string
	counts map[int]int64
}

// NewMemorySequence creates a new in-memory order number sequence
func NewMemorySequence(prefix string) *MemorySequence {
	return &MemorySequence{
		prefix: prefix,
		counts: make(map[int]int64),
	}
}

// Next allocates the next order number
func (s *MemorySequence) Next(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	year := time.Now().Year()
	s.counts[year]++
	return fmt.Sprintf("%s-%d-%06d", s.prefix, year, s.counts[year]), nil
}
