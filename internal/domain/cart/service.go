// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/commerce-core/internal/config"
	"github.com/your-org/commerce-core/internal/domain/catalog"
)

// maxMutationAttempts bounds the internal retry loop for item mutations.
// Item operations are commutative, so losing a version race is resolved
// by reloading and reapplying rather than surfacing a conflict.
const maxMutationAttempts = 5

// Service handles cart business logic
type Service struct {
	repo    Repository
	catalog catalog.Service
	config  *config.Config
	logger  *logrus.Logger
}

// NewService creates a new cart service
func NewService(repo Repository, catalogSvc catalog.Service, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalogSvc,
		config:  cfg,
		logger:  logger,
	}
}

// AddItemRequest represents an add-to-cart request
type AddItemRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	VariantID *uint `json:"variant_id"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest represents a set-quantity request; zero removes the line
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// SetEmailRequest represents a guest contact email update
type SetEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Get retrieves a cart by ID
func (s *Service) Get(ctx context.Context, cartID uint) (*Cart, error) {
	return s.repo.GetByID(ctx, cartID)
}

// EnsureForSession returns the session's active cart, provisioning one
// when none exists. A session holds at most one active cart.
func (s *Service) EnsureForSession(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required to provision a cart")
	}

	existing, err := s.repo.ActiveBySession(ctx, sessionID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrCartNotFound) {
		return nil, err
	}

	fresh := &Cart{
		SessionID: &sessionID,
		Status:    CartStatusActive,
		Version:   1,
		ExpiresAt: time.Now().UTC().Add(s.config.Cart.TTL),
	}
	if err := s.repo.Create(ctx, fresh); err != nil {
		// A concurrent request may have provisioned first; prefer its cart
		if existing, lookupErr := s.repo.ActiveBySession(ctx, sessionID); lookupErr == nil {
			return existing, nil
		}
		return nil, err
	}

	return fresh, nil
}

// EnsureForCustomer returns the customer's active cart, provisioning one
// bound to both the account and the current session when none exists
func (s *Service) EnsureForCustomer(ctx context.Context, customerID uint, sessionID string) (*Cart, error) {
	existing, err := s.repo.ActiveByCustomer(ctx, customerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrCartNotFound) {
		return nil, err
	}

	fresh := &Cart{
		CustomerID: &customerID,
		Status:     CartStatusActive,
		Version:    1,
		ExpiresAt:  time.Now().UTC().Add(s.config.Cart.TTL),
	}
	if sessionID != "" {
		fresh.SessionID = &sessionID
	}
	if err := s.repo.Create(ctx, fresh); err != nil {
		if existing, lookupErr := s.repo.ActiveByCustomer(ctx, customerID); lookupErr == nil {
			return existing, nil
		}
		return nil, err
	}

	return fresh, nil
}

// AddItem adds a product line to the cart, snapshotting its current
// catalog price. Adding an existing line bumps its quantity and keeps
// the original snapshot.
func (s *Service) AddItem(ctx context.Context, cartID uint, req *AddItemRequest) (*Cart, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.Product(ctx, req.ProductID, req.VariantID)
	if err != nil {
		return nil, err
	}
	maxPerLine := s.maxPerLine(product)

	return s.mutate(ctx, cartID, func(cart *Cart) error {
		if !cart.IsActive() {
			return ErrCartNotActive
		}

		if line := cart.FindItem(req.ProductID, req.VariantID); line != nil {
			newQuantity := line.Quantity + req.Quantity
			if newQuantity > maxPerLine {
				return ErrMaxQuantityExceeded
			}
			line.Quantity = newQuantity
			return nil
		}

		if req.Quantity > maxPerLine {
			return ErrMaxQuantityExceeded
		}
		cart.Items = append(cart.Items, CartItem{
			ProductID: req.ProductID,
			VariantID: req.VariantID,
			Name:      product.Name,
			Quantity:  req.Quantity,
			UnitPrice: product.UnitPrice,
		})
		return nil
	})
}

// UpdateItemQuantity sets a line's quantity; zero removes the line
func (s *Service) UpdateItemQuantity(ctx context.Context, cartID, productID uint, variantID *uint, quantity int) (*Cart, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	maxPerLine := s.config.Cart.MaxItemQuantity
	if quantity > 0 {
		// The line's product may have left the catalog since it was added;
		// fall back to the global cap in that case
		if product, err := s.catalog.Product(ctx, productID, variantID); err == nil {
			maxPerLine = s.maxPerLine(product)
		}
	}

	return s.mutate(ctx, cartID, func(cart *Cart) error {
		if !cart.IsActive() {
			return ErrCartNotActive
		}

		if quantity == 0 {
			if !cart.DropItem(productID, variantID) {
				return ErrItemNotFound
			}
			return nil
		}

		line := cart.FindItem(productID, variantID)
		if line == nil {
			return ErrItemNotFound
		}
		if quantity > maxPerLine {
			return ErrMaxQuantityExceeded
		}
		line.Quantity = quantity
		return nil
	})
}

// RemoveItem removes a line from the cart
func (s *Service) RemoveItem(ctx context.Context, cartID, productID uint, variantID *uint) (*Cart, error) {
	return s.UpdateItemQuantity(ctx, cartID, productID, variantID, 0)
}

// SetEmail records the contact email on the cart, required before a
// guest checkout can complete
func (s *Service) SetEmail(ctx context.Context, cartID uint, email string) (*Cart, error) {
	return s.mutate(ctx, cartID, func(cart *Cart) error {
		if cart.Status == CartStatusCompleted || cart.Status == CartStatusAbandoned {
			return ErrCartNotActive
		}
		cart.Email = &email
		return nil
	})
}

// Reprice re-snapshots every line from the catalog. Lines whose product
// is gone or inactive are dropped.
func (s *Service) Reprice(ctx context.Context, cartID uint) (*Cart, error) {
	return s.mutate(ctx, cartID, func(cart *Cart) error {
		if !cart.IsActive() {
			return ErrCartNotActive
		}

		kept := cart.Items[:0]
		for _, item := range cart.Items {
			product, err := s.catalog.Product(ctx, item.ProductID, item.VariantID)
			if errors.Is(err, catalog.ErrProductNotFound) || errors.Is(err, catalog.ErrProductInactive) {
				continue
			}
			if err != nil {
				return err
			}
			item.UnitPrice = product.UnitPrice
			item.Name = product.Name
			kept = append(kept, item)
		}
		cart.Items = kept
		return nil
	})
}

// BeginCheckout moves an active, non-empty cart into checkout. Calling
// it on a cart already in checkout is a no-op, so checkout can be
// resumed safely.
func (s *Service) BeginCheckout(ctx context.Context, cartID uint) (*Cart, error) {
	return s.mutate(ctx, cartID, func(cart *Cart) error {
		if cart.Status == CartStatusCheckoutInProgress {
			return errNoChange
		}
		if !cart.IsActive() {
			return ErrCartNotActive
		}
		if cart.IsEmpty() {
			return ErrEmptyCart
		}
		cart.Status = CartStatusCheckoutInProgress
		return nil
	})
}

// CompleteCheckout marks a cart, and with it the purchase, as completed
func (s *Service) CompleteCheckout(ctx context.Context, cartID uint) (*Cart, error) {
	return s.mutate(ctx, cartID, func(cart *Cart) error {
		if cart.Status == CartStatusCompleted {
			return errNoChange
		}
		if cart.Status != CartStatusCheckoutInProgress {
			return ErrCartNotInCheckout
		}
		cart.Status = CartStatusCompleted
		return nil
	})
}

// ReleaseCheckout returns a mid-checkout cart to active after a cancel
// or abandonment, so the shopper keeps their items
func (s *Service) ReleaseCheckout(ctx context.Context, cartID uint) (*Cart, error) {
	return s.mutate(ctx, cartID, func(cart *Cart) error {
		if cart.Status == CartStatusActive {
			return errNoChange
		}
		if cart.Status != CartStatusCheckoutInProgress {
			return ErrCartNotInCheckout
		}
		cart.Status = CartStatusActive
		return nil
	})
}

// errNoChange short-circuits mutate when the cart is already in the
// desired state; the current cart is returned without a version bump
var errNoChange = errors.New("no change")

// mutate loads the cart, applies fn, and persists it, retrying version
// races a bounded number of times
func (s *Service) mutate(ctx context.Context, cartID uint, fn func(*Cart) error) (*Cart, error) {
	for attempt := 0; attempt < maxMutationAttempts; attempt++ {
		cart, err := s.repo.GetByID(ctx, cartID)
		if err != nil {
			return nil, err
		}

		if err := fn(cart); err != nil {
			if errors.Is(err, errNoChange) {
				return cart, nil
			}
			return nil, err
		}

		err = s.repo.Update(ctx, cart)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, err
		}
		// Another writer landed first; reload and reapply
	}
	return nil, ErrVersionConflict
}

func (s *Service) maxPerLine(product *catalog.Product) int {
	maxPerLine := s.config.Cart.MaxItemQuantity
	if product.MaxPerLine > 0 && product.MaxPerLine < maxPerLine {
		maxPerLine = product.MaxPerLine
	}
	return maxPerLine
}
