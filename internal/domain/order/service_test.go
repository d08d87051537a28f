// internal/domain/order/service_test.go
package order

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, repo *MemoryRepository, customerID *uint, email string) *Order {
	t.Helper()

	o := &Order{
		OrderNumber: "ORD-2026-" + gofakeit.DigitN(6),
		CartID:      uint(gofakeit.Number(1, 1_000_000)),
		CustomerID:  customerID,
		Email:       email,
		Status:      OrderStatusPending,
		Subtotal:    15998,
		TotalAmount: 16597,
		Items: []OrderItem{
			{ProductID: 1, Name: "Trail Running Shoes", Quantity: 2, UnitPrice: 7999, TotalPrice: 15998},
		},
	}
	o.AddStatusHistory(OrderStatusPending, "Order placed")
	require.NoError(t, repo.Create(context.Background(), o))
	return o
}

func TestGuestLookupRequiresBothParts(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, testLogger())
	o := seedOrder(t, repo, nil, "guest@example.test")

	found, err := svc.GuestLookup(context.Background(), "GUEST@example.test", o.OrderNumber)
	require.NoError(t, err, "email match is case-insensitive")
	assert.Equal(t, o.ID, found.ID)

	_, err = svc.GuestLookup(context.Background(), "other@example.test", o.OrderNumber)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = svc.GuestLookup(context.Background(), "guest@example.test", "ORD-2026-999999")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = svc.GuestLookup(context.Background(), "", o.OrderNumber)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetForCustomerHidesForeignOrders(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, testLogger())

	owner := uint(7)
	o := seedOrder(t, repo, &owner, "owner@example.test")

	found, err := svc.GetForCustomer(context.Background(), o.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, found.OrderNumber)

	_, err = svc.GetForCustomer(context.Background(), o.ID, 8)
	assert.ErrorIs(t, err, ErrOrderNotFound, "foreign orders look like missing orders")
}

func TestUpdateStatusFollowsTransitionTable(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, testLogger())
	o := seedOrder(t, repo, nil, "guest@example.test")

	updated, err := svc.UpdateStatus(context.Background(), o.ID, OrderStatusProcessing, "picked")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusProcessing, updated.Status)

	updated, err = svc.UpdateStatus(context.Background(), o.ID, OrderStatusShipped, "handed to carrier")
	require.NoError(t, err)
	require.NotNil(t, updated.ShippedAt)

	_, err = svc.UpdateStatus(context.Background(), o.ID, OrderStatusPending, "rewind")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	updated, err = svc.UpdateStatus(context.Background(), o.ID, OrderStatusDelivered, "")
	require.NoError(t, err)
	require.NotNil(t, updated.DeliveredAt)

	stored, err := svc.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, stored.StatusHistory, 4, "placed, processing, shipped, delivered")
	assert.Equal(t, OrderStatusDelivered, stored.StatusHistory[3].Status)
}

func TestCancelOnlyBeforeShipment(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, testLogger())

	pending := seedOrder(t, repo, nil, gofakeit.Email())
	cancelled, err := svc.Cancel(context.Background(), pending.ID, "customer request")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, cancelled.Status)

	shipped := seedOrder(t, repo, nil, gofakeit.Email())
	_, err = svc.UpdateStatus(context.Background(), shipped.ID, OrderStatusProcessing, "")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), shipped.ID, OrderStatusShipped, "")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), shipped.ID, "")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestAttachCustomerClaimsGuestOrderOnce(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, testLogger())
	o := seedOrder(t, repo, nil, "guest@example.test")

	require.NoError(t, svc.AttachCustomer(context.Background(), o.ID, 31))

	stored, err := svc.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CustomerID)
	assert.Equal(t, uint(31), *stored.CustomerID)

	err = svc.AttachCustomer(context.Background(), o.ID, 32)
	assert.ErrorIs(t, err, ErrOrderAlreadyClaimed)
}

func TestListForCustomerPaginates(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, testLogger())

	customerID := uint(5)
	for i := 0; i < 25; i++ {
		seedOrder(t, repo, &customerID, gofakeit.Email())
	}
	seedOrder(t, repo, nil, gofakeit.Email()) // someone else's

	page, total, err := svc.ListForCustomer(context.Background(), customerID, &Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, page, 10)

	last, total, err := svc.ListForCustomer(context.Background(), customerID, &Pagination{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, last, 5)
}
