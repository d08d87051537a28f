// internal/domain/session/binder.go
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Binder manages session lifecycle: creation on first contact, sliding
// expiry renewal on every resolution, and destruction on logout
type Binder struct {
	store Store
	ttl   time.Duration
}

// NewBinder creates a new session binder
func NewBinder(store Store, ttl time.Duration) *Binder {
	return &Binder{
		store: store,
		ttl:   ttl,
	}
}

// ResolveOrCreate returns the session for the given ID, renewing its
// expiry window. A blank, unknown, or expired ID yields a fresh session
// instead of an error; anonymous access must not fail on session state.
// Infrastructure failures still propagate.
func (b *Binder) ResolveOrCreate(ctx context.Context, id, deviceFingerprint string) (*Session, error) {
	if id != "" {
		sess, err := b.store.Get(ctx, id)
		switch {
		case err == nil:
			if !sess.IsExpired(time.Now().UTC()) {
				return b.touch(ctx, sess)
			}
			// Expired entries are replaced, not resurrected
			if err := b.store.Delete(ctx, id); err != nil {
				return nil, fmt.Errorf("failed to discard expired session: %w", err)
			}
		case errors.Is(err, ErrNotFound):
			// fall through to creation
		default:
			return nil, fmt.Errorf("failed to resolve session: %w", err)
		}
	}

	return b.create(ctx, deviceFingerprint)
}

// Destroy removes a session, typically on logout
func (b *Binder) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return b.store.Delete(ctx, id)
}

func (b *Binder) create(ctx context.Context, deviceFingerprint string) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		ID:                uuid.New().String(),
		DeviceFingerprint: deviceFingerprint,
		CreatedAt:         now,
		LastSeenAt:        now,
		ExpiresAt:         now.Add(b.ttl),
	}

	if err := b.store.Save(ctx, sess, b.ttl); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sess, nil
}

func (b *Binder) touch(ctx context.Context, sess *Session) (*Session, error) {
	now := time.Now().UTC()
	sess.LastSeenAt = now
	sess.ExpiresAt = now.Add(b.ttl)

	if err := b.store.Save(ctx, sess, b.ttl); err != nil {
		return nil, fmt.Errorf("failed to renew session: %w", err)
	}

	return sess, nil
}
