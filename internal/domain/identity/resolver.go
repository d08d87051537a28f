// internal/domain/identity/resolver.go
package identity

import (
	"context"
	"fmt"

	"github.com/your-org/commerce-core/internal/domain/session"
	"github.com/your-org/commerce-core/internal/pkg/auth"
)

// Resolver turns request credentials into principals. Bearer tokens
// resolve to customer or admin principals; session IDs resolve to guest
// principals, minting a session when none exists.
type Resolver struct {
	jwtManager *auth.JWTManager
	sessions   *session.Binder
}

// NewResolver creates a new identity resolver
func NewResolver(jwtManager *auth.JWTManager, sessions *session.Binder) *Resolver {
	return &Resolver{
		jwtManager: jwtManager,
		sessions:   sessions,
	}
}

// ResolveBearer validates an access token and returns the principal it
// represents. requiredScope narrows acceptance: auth.ScopeCustomer admits
// customer and admin tokens, auth.ScopeAdmin admits admin tokens only.
func (r *Resolver) ResolveBearer(tokenString, requiredScope string) (*Principal, error) {
	claims, err := r.jwtManager.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	switch claims.Scope {
	case auth.ScopeCustomer:
		if requiredScope == auth.ScopeAdmin {
			return nil, ErrScopeMismatch
		}
		return &Principal{
			Kind:      KindCustomer,
			AccountID: claims.AccountID,
			Email:     claims.Email,
		}, nil
	case auth.ScopeAdmin:
		permissions := make([]Permission, 0, len(claims.Permissions))
		for _, perm := range claims.Permissions {
			permissions = append(permissions, Permission(perm))
		}
		return &Principal{
			Kind:        KindAdmin,
			AccountID:   claims.AccountID,
			Email:       claims.Email,
			Permissions: permissions,
		}, nil
	default:
		return nil, ErrScopeMismatch
	}
}

// ResolveSession returns a guest principal for the given session ID,
// creating a session when the ID is blank, unknown, or expired. The
// returned principal carries the possibly-new session ID; callers are
// responsible for echoing it back to the client.
func (r *Resolver) ResolveSession(ctx context.Context, sessionID, deviceFingerprint string) (*Principal, error) {
	sess, err := r.sessions.ResolveOrCreate(ctx, sessionID, deviceFingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve guest session: %w", err)
	}
	return Guest(sess.ID), nil
}
