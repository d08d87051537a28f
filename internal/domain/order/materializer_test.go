// internal/domain/order/materializer_test.go
package order

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/commerce-core/internal/config"
	"github.com/your-org/commerce-core/internal/domain/cart"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Order.NumberPrefix = "ORD"
	cfg.Order.ClaimTokenTTL = 48 * time.Hour
	return cfg
}

func guestCart() *cart.Cart {
	email := gofakeit.Email()
	return &cart.Cart{
		ID:     42,
		Email:  &email,
		Status: cart.CartStatusCheckoutInProgress,
		Items: []cart.CartItem{
			{ProductID: 1, Name: "Trail Running Shoes", Quantity: 2, UnitPrice: 7999},
			{ProductID: 3, Name: "Wool Socks", Quantity: 1, UnitPrice: 1299},
		},
	}
}

func materializeInput(c *cart.Cart) MaterializeInput {
	return MaterializeInput{
		Cart:             c,
		ShippingAddress:  Address{FirstName: "Ada", LastName: "Lovelace", Line1: "1 Main St", City: "New York", State: "NY", PostalCode: "10001", Country: "US"},
		BillingAddress:   Address{FirstName: "Ada", LastName: "Lovelace", Line1: "1 Main St", City: "New York", State: "NY", PostalCode: "10001", Country: "US"},
		ShippingMethodID: "standard", ShippingMethodName: "Standard Shipping",
		ShippingCost:     599,
		TaxAmount:        0,
		AuthorizationRef: "auth_abc",
		CaptureRef:       "cap_abc",
	}
}

// stubSequence hands out a scripted series of numbers.
type stubSequence struct {
	numbers []string
	calls   int
}

func (s *stubSequence) Next(ctx context.Context) (string, error) {
	n := s.numbers[s.calls]
	if s.calls < len(s.numbers)-1 {
		s.calls++
	}
	return n, nil
}

func TestMaterializeRecomputesTotalsFromSnapshots(t *testing.T) {
	repo := NewMemoryRepository()
	m := NewMaterializer(repo, NewMemorySequence("ORD"), NewMemoryClaimStore(), testConfig(), testLogger())

	c := guestCart()
	result, err := m.Materialize(context.Background(), materializeInput(c))
	require.NoError(t, err)

	o := result.Order
	assert.Equal(t, int64(2*7999+1299), o.Subtotal)
	assert.Equal(t, int64(2*7999+1299+599), o.TotalAmount)
	assert.Equal(t, OrderStatusPending, o.Status)
	require.Len(t, o.Items, 2)
	assert.Equal(t, int64(15998), o.Items[0].TotalPrice)

	wantNumber := fmt.Sprintf("ORD-%d-000001", time.Now().Year())
	assert.Equal(t, wantNumber, o.OrderNumber)

	require.Len(t, o.StatusHistory, 1)
	assert.Equal(t, OrderStatusPending, o.StatusHistory[0].Status)
}

func TestMaterializeIsIdempotentPerCart(t *testing.T) {
	repo := NewMemoryRepository()
	m := NewMaterializer(repo, NewMemorySequence("ORD"), NewMemoryClaimStore(), testConfig(), testLogger())

	c := guestCart()
	first, err := m.Materialize(context.Background(), materializeInput(c))
	require.NoError(t, err)

	second, err := m.Materialize(context.Background(), materializeInput(c))
	require.NoError(t, err)

	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Equal(t, first.Order.OrderNumber, second.Order.OrderNumber)

	_, total, err := repo.List(context.Background(), &Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "replay must not create a second order")
}

func TestMaterializeRetriesNumberCollision(t *testing.T) {
	repo := NewMemoryRepository()
	year := time.Now().Year()
	taken := fmt.Sprintf("ORD-%d-000007", year)
	fresh := fmt.Sprintf("ORD-%d-000008", year)

	// occupy the colliding number
	other := guestCart()
	other.ID = 7
	seeded := NewMaterializer(repo, &stubSequence{numbers: []string{taken}}, NewMemoryClaimStore(), testConfig(), testLogger())
	_, err := seeded.Materialize(context.Background(), materializeInput(other))
	require.NoError(t, err)

	m := NewMaterializer(repo, &stubSequence{numbers: []string{taken, fresh}}, NewMemoryClaimStore(), testConfig(), testLogger())
	result, err := m.Materialize(context.Background(), materializeInput(guestCart()))
	require.NoError(t, err)
	assert.Equal(t, fresh, result.Order.OrderNumber, "collision should reallocate, not drop the captured payment")
}

func TestMaterializeGuestGetsClaimToken(t *testing.T) {
	claims := NewMemoryClaimStore()
	m := NewMaterializer(NewMemoryRepository(), NewMemorySequence("ORD"), claims, testConfig(), testLogger())

	result, err := m.Materialize(context.Background(), materializeInput(guestCart()))
	require.NoError(t, err)
	require.NotEmpty(t, result.ClaimToken)

	claim, err := claims.Redeem(context.Background(), result.ClaimToken)
	require.NoError(t, err)
	assert.Equal(t, result.Order.ID, claim.OrderID)
	assert.Equal(t, result.Order.Email, claim.Email)

	_, err = claims.Redeem(context.Background(), result.ClaimToken)
	assert.ErrorIs(t, err, ErrClaimNotFound, "claim tokens are one-shot")
}

func TestMaterializeCustomerGetsNoClaimToken(t *testing.T) {
	m := NewMaterializer(NewMemoryRepository(), NewMemorySequence("ORD"), NewMemoryClaimStore(), testConfig(), testLogger())

	c := guestCart()
	customerID := uint(9)
	c.CustomerID = &customerID

	result, err := m.Materialize(context.Background(), materializeInput(c))
	require.NoError(t, err)
	assert.Empty(t, result.ClaimToken)
	assert.False(t, result.Order.IsGuest())
}

func TestMaterializeSnapshotsAddresses(t *testing.T) {
	m := NewMaterializer(NewMemoryRepository(), NewMemorySequence("ORD"), NewMemoryClaimStore(), testConfig(), testLogger())

	in := materializeInput(guestCart())
	result, err := m.Materialize(context.Background(), in)
	require.NoError(t, err)

	if diff := cmp.Diff(in.ShippingAddress, result.Order.ShippingAddress); diff != "" {
		t.Errorf("shipping address mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "auth_abc", result.Order.AuthorizationRef)
	assert.Equal(t, "cap_abc", result.Order.CaptureRef)
}
