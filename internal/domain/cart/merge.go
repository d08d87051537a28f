// internal/domain/cart/merge.go
package cart

import (
	"context"
	"errors"
)

// CappedLine reports a merged line whose summed quantity hit the
// per-line cap. Capping is an outcome, not an error.
type CappedLine struct {
	ProductID uint  `json:"product_id"`
	VariantID *uint `json:"variant_id,omitempty"`
	Requested int   `json:"requested"`
	Kept      int   `json:"kept"`
}

// MergeResult describes the outcome of a login merge
type MergeResult struct {
	Cart   *Cart        `json:"cart"`
	Merged bool         `json:"merged"`
	Capped []CappedLine `json:"capped,omitempty"`
}

// MergeOnLogin folds the session's guest cart into the customer's cart.
// Replaying the same login is a no-op: once merged, the guest cart is
// either abandoned or already bound to the customer.
//
// With no customer cart, the guest cart is rebound to the customer and
// keeps its session link. With both present, lines are united keyed by
// (product, variant), equal keys sum quantities capped per line, the
// customer cart keeps its identity, and the guest cart is abandoned.
func (s *Service) MergeOnLogin(ctx context.Context, sessionID string, customerID uint) (*MergeResult, error) {
	if sessionID == "" {
		cart, err := s.EnsureForCustomer(ctx, customerID, "")
		if err != nil {
			return nil, err
		}
		return &MergeResult{Cart: cart}, nil
	}

	for attempt := 0; attempt < maxMutationAttempts; attempt++ {
		result, err := s.mergeOnce(ctx, sessionID, customerID)
		if errors.Is(err, ErrVersionConflict) {
			// A concurrent cart mutation won; reload and fold again
			continue
		}
		return result, err
	}
	return nil, ErrVersionConflict
}

func (s *Service) mergeOnce(ctx context.Context, sessionID string, customerID uint) (*MergeResult, error) {
	guest, err := s.repo.ActiveBySession(ctx, sessionID)
	if errors.Is(err, ErrCartNotFound) {
		// Nothing to merge; the customer keeps (or gets) their own cart
		cart, err := s.EnsureForCustomer(ctx, customerID, sessionID)
		if err != nil {
			return nil, err
		}
		return &MergeResult{Cart: cart}, nil
	}
	if err != nil {
		return nil, err
	}

	if guest.CustomerID != nil {
		if *guest.CustomerID == customerID {
			// Replayed login; the earlier merge already bound this cart
			return &MergeResult{Cart: guest}, nil
		}
		// The session's cart belongs to a different account; leave it alone
		cart, err := s.EnsureForCustomer(ctx, customerID, "")
		if err != nil {
			return nil, err
		}
		return &MergeResult{Cart: cart}, nil
	}

	if guest.IsEmpty() {
		// Abandon the empty shell first; a session holds one active cart
		guest.Status = CartStatusAbandoned
		if err := s.repo.Update(ctx, guest); err != nil {
			return nil, err
		}
		cart, err := s.EnsureForCustomer(ctx, customerID, sessionID)
		if err != nil {
			return nil, err
		}
		return &MergeResult{Cart: cart}, nil
	}

	customerCart, err := s.repo.ActiveByCustomer(ctx, customerID)
	if errors.Is(err, ErrCartNotFound) {
		// Rebind: the guest cart becomes the customer's, session link kept
		guest.CustomerID = &customerID
		if err := s.repo.Update(ctx, guest); err != nil {
			return nil, err
		}
		return &MergeResult{Cart: guest, Merged: true}, nil
	}
	if err != nil {
		return nil, err
	}

	capped := s.unionInto(ctx, customerCart, guest)
	guest.Status = CartStatusAbandoned

	// Both carts move in one write so a replay can never double-count
	if err := s.repo.Update(ctx, customerCart, guest); err != nil {
		return nil, err
	}

	return &MergeResult{Cart: customerCart, Merged: true, Capped: capped}, nil
}

// unionInto folds guest lines into the customer cart and returns the
// lines whose quantity was capped
func (s *Service) unionInto(ctx context.Context, customerCart, guest *Cart) []CappedLine {
	var capped []CappedLine

	for _, guestItem := range guest.Items {
		maxPerLine := s.config.Cart.MaxItemQuantity
		if product, err := s.catalog.Product(ctx, guestItem.ProductID, guestItem.VariantID); err == nil {
			maxPerLine = s.maxPerLine(product)
		}

		line := customerCart.FindItem(guestItem.ProductID, guestItem.VariantID)
		if line == nil {
			quantity := guestItem.Quantity
			if quantity > maxPerLine {
				capped = append(capped, CappedLine{
					ProductID: guestItem.ProductID,
					VariantID: guestItem.VariantID,
					Requested: quantity,
					Kept:      maxPerLine,
				})
				quantity = maxPerLine
			}
			customerCart.Items = append(customerCart.Items, CartItem{
				ProductID: guestItem.ProductID,
				VariantID: guestItem.VariantID,
				Name:      guestItem.Name,
				Quantity:  quantity,
				UnitPrice: guestItem.UnitPrice,
			})
			continue
		}

		// Equal keys sum; the customer cart's price snapshot wins
		requested := line.Quantity + guestItem.Quantity
		if requested > maxPerLine {
			capped = append(capped, CappedLine{
				ProductID: guestItem.ProductID,
				VariantID: guestItem.VariantID,
				Requested: requested,
				Kept:      maxPerLine,
			})
			line.Quantity = maxPerLine
			continue
		}
		line.Quantity = requested
	}

	return capped
}
