// internal/domain/identity/principal.go
package identity

import "slices"

// Kind discriminates the three principal variants
type Kind string

const (
	KindGuest    Kind = "guest"
	KindCustomer Kind = "customer"
	KindAdmin    Kind = "admin"
)

// Permission represents an authorized admin action
type Permission string

const (
	PermOrdersRead   Permission = "admin.orders.read"
	PermOrdersWrite  Permission = "admin.orders.write"
	PermCartsSweep   Permission = "admin.carts.sweep"
	PermInvoicesRead Permission = "admin.invoices.read"
)

// AllPermissions lists every known admin permission, used when seeding
// the initial admin account
var AllPermissions = []Permission{
	PermOrdersRead,
	PermOrdersWrite,
	PermCartsSweep,
	PermInvoicesRead,
}

// Principal is the resolved caller of a request. Exactly one variant
// applies: guests carry a session ID, customers an account ID, admins an
// account ID plus granted permissions. Principals are derived per request
// and never persisted.
type Principal struct {
	Kind        Kind
	SessionID   string
	AccountID   uint
	Email       string
	Permissions []Permission
}

// Guest constructs a guest principal for the given session
func Guest(sessionID string) *Principal {
	return &Principal{
		Kind:      KindGuest,
		SessionID: sessionID,
	}
}

// IsGuest checks whether the principal is anonymous
func (p *Principal) IsGuest() bool {
	return p.Kind == KindGuest
}

// Can checks whether the principal holds the given admin permission
func (p *Principal) Can(perm Permission) bool {
	if p.Kind != KindAdmin {
		return false
	}
	return slices.Contains(p.Permissions, perm)
}

// RequirePermission checks that the principal may perform an admin action.
// Guests are unauthenticated, customers are out of scope, and admins must
// hold the specific permission.
func RequirePermission(p *Principal, perm Permission) error {
	if p == nil || p.Kind == KindGuest {
		return ErrUnauthenticated
	}
	if p.Kind != KindAdmin {
		return ErrScopeMismatch
	}
	if !p.Can(perm) {
		return ErrInsufficientPermissions
	}
	return nil
}
