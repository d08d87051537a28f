// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Service answers order queries and drives fulfillment status changes.
// Materialization is the Materializer's job; after it runs, orders only
// change through UpdateStatus and AttachCustomer.
type Service struct {
	repo   Repository
	logger *logrus.Logger
}

// NewService creates a new order service
func NewService(repo Repository, logger *logrus.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetByID retrieves an order
func (s *Service) GetByID(ctx context.Context, id uint) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByNumber retrieves an order by its order number
func (s *Service) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return s.repo.GetByNumber(ctx, strings.TrimSpace(number))
}

// GetForCustomer retrieves an order, refusing to return one that does
// not belong to the customer. The denial is indistinguishable from a
// missing order.
func (s *Service) GetForCustomer(ctx context.Context, id, customerID uint) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CustomerID == nil || *o.CustomerID != customerID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// GuestLookup is the only guest-accessible order index: both the email
// and the order number must match
func (s *Service) GuestLookup(ctx context.Context, email, number string) (*Order, error) {
	email = strings.TrimSpace(email)
	number = strings.TrimSpace(number)
	if email == "" || number == "" {
		return nil, ErrOrderNotFound
	}
	return s.repo.FindByEmailAndNumber(ctx, email, number)
}

// ListForCustomer returns a page of the customer's orders
func (s *Service) ListForCustomer(ctx context.Context, customerID uint, p *Pagination) ([]Order, int64, error) {
	return s.repo.ListByCustomer(ctx, customerID, p)
}

// List returns a page of all orders, for back office use
func (s *Service) List(ctx context.Context, p *Pagination) ([]Order, int64, error) {
	return s.repo.List(ctx, p)
}

// UpdateStatus moves an order through the fulfillment transition table
// and records the change in its history
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, status OrderStatus, note string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !o.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, o.Status, status)
	}

	now := time.Now()
	previous := o.Status
	o.Status = status
	switch status {
	case OrderStatusShipped:
		o.ShippedAt = &now
	case OrderStatusDelivered:
		o.DeliveredAt = &now
	}

	history := &OrderStatusHistory{
		OrderID:   o.ID,
		Status:    status,
		Note:      note,
		CreatedAt: now,
	}
	if err := s.repo.UpdateStatus(ctx, o, history); err != nil {
		return nil, err
	}
	o.StatusHistory = append(o.StatusHistory, *history)

	s.logger.WithFields(logrus.Fields{
		"order_number": o.OrderNumber,
		"from":         previous,
		"to":           status,
	}).Info("Order status updated")
	return o, nil
}

// Cancel cancels an order that has not shipped yet
func (s *Service) Cancel(ctx context.Context, orderID uint, note string) (*Order, error) {
	if note == "" {
		note = "Order cancelled"
	}
	return s.UpdateStatus(ctx, orderID, OrderStatusCancelled, note)
}

// AttachCustomer binds a guest order to an account after a successful
// claim redemption
func (s *Service) AttachCustomer(ctx context.Context, orderID, customerID uint) error {
	if err := s.repo.AttachCustomer(ctx, orderID, customerID); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"order_id":    orderID,
		"customer_id": customerID,
	}).Info("Guest order claimed")
	return nil
}
