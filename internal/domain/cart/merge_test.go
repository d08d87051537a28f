// internal/domain/cart/merge_test.go
package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/commerce-core/internal/domain/catalog"
)

func (env *testEnv) seedGuestCart(t *testing.T, sessionID string, lines ...AddItemRequest) *Cart {
	t.Helper()
	ctx := context.Background()

	c, err := env.svc.EnsureForSession(ctx, sessionID)
	require.NoError(t, err)
	for i := range lines {
		c, err = env.svc.AddItem(ctx, c.ID, &lines[i])
		require.NoError(t, err)
	}
	return c
}

func (env *testEnv) seedCustomerCart(t *testing.T, customerID uint, lines ...AddItemRequest) *Cart {
	t.Helper()
	ctx := context.Background()

	c, err := env.svc.EnsureForCustomer(ctx, customerID, "")
	require.NoError(t, err)
	for i := range lines {
		c, err = env.svc.AddItem(ctx, c.ID, &lines[i])
		require.NoError(t, err)
	}
	return c
}

func TestMergeRebindsGuestCartWhenCustomerHasNone(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	guest := env.seedGuestCart(t, "sess-login", AddItemRequest{ProductID: 1, Quantity: 2})

	result, err := env.svc.MergeOnLogin(ctx, "sess-login", 9)
	require.NoError(t, err)

	assert.True(t, result.Merged)
	assert.Equal(t, guest.ID, result.Cart.ID)
	require.NotNil(t, result.Cart.CustomerID)
	assert.Equal(t, uint(9), *result.Cart.CustomerID)
	// the session link survives the rebind
	require.NotNil(t, result.Cart.SessionID)
	assert.Equal(t, "sess-login", *result.Cart.SessionID)
	assert.Equal(t, int64(15998), result.Cart.Subtotal())
}

func TestMergeUnionsLinesAndAbandonsGuestCart(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	customerCart := env.seedCustomerCart(t, 9,
		AddItemRequest{ProductID: 1, Quantity: 2},
		AddItemRequest{ProductID: 2, Quantity: 1},
	)
	guest := env.seedGuestCart(t, "sess-login",
		AddItemRequest{ProductID: 1, Quantity: 1},
		AddItemRequest{ProductID: 3, Quantity: 1},
	)

	result, err := env.svc.MergeOnLogin(ctx, "sess-login", 9)
	require.NoError(t, err)

	assert.True(t, result.Merged)
	assert.Empty(t, result.Capped)
	// the customer cart keeps its identity
	assert.Equal(t, customerCart.ID, result.Cart.ID)

	require.Len(t, result.Cart.Items, 3)
	assert.Equal(t, 3, result.Cart.FindItem(1, nil).Quantity)
	assert.Equal(t, 1, result.Cart.FindItem(2, nil).Quantity)
	assert.Equal(t, 1, result.Cart.FindItem(3, nil).Quantity)

	// the guest cart is gone as an active cart
	abandoned, err := env.repo.GetByID(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, CartStatusAbandoned, abandoned.Status)
	_, err = env.repo.ActiveBySession(ctx, "sess-login")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestMergeReplayDoesNotDoubleCount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedCustomerCart(t, 9, AddItemRequest{ProductID: 1, Quantity: 2})
	env.seedGuestCart(t, "sess-login", AddItemRequest{ProductID: 1, Quantity: 1})

	first, err := env.svc.MergeOnLogin(ctx, "sess-login", 9)
	require.NoError(t, err)
	require.True(t, first.Merged)
	require.Equal(t, 3, first.Cart.FindItem(1, nil).Quantity)

	// a token refresh or double-submitted login replays the merge
	second, err := env.svc.MergeOnLogin(ctx, "sess-login", 9)
	require.NoError(t, err)
	assert.False(t, second.Merged)
	assert.Equal(t, first.Cart.ID, second.Cart.ID)
	assert.Equal(t, 3, second.Cart.FindItem(1, nil).Quantity)
}

func TestMergeRebindReplayIsStable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedGuestCart(t, "sess-login", AddItemRequest{ProductID: 1, Quantity: 2})

	first, err := env.svc.MergeOnLogin(ctx, "sess-login", 9)
	require.NoError(t, err)
	require.True(t, first.Merged)

	second, err := env.svc.MergeOnLogin(ctx, "sess-login", 9)
	require.NoError(t, err)
	assert.False(t, second.Merged)
	assert.Equal(t, first.Cart.ID, second.Cart.ID)
	assert.Equal(t, 2, second.Cart.FindItem(1, nil).Quantity)
}

func TestMergeCapsSummedQuantities(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedCustomerCart(t, 9,
		AddItemRequest{ProductID: 2, Quantity: 7},
		AddItemRequest{ProductID: 4, Quantity: 2},
	)
	env.seedGuestCart(t, "sess-login",
		AddItemRequest{ProductID: 2, Quantity: 6},
		AddItemRequest{ProductID: 4, Quantity: 1},
	)

	result, err := env.svc.MergeOnLogin(ctx, "sess-login", 9)
	require.NoError(t, err)
	require.True(t, result.Merged)

	// 7+6 hits the global cap of 10; 2+1 hits the product cap of 2
	assert.Equal(t, 10, result.Cart.FindItem(2, nil).Quantity)
	assert.Equal(t, 2, result.Cart.FindItem(4, nil).Quantity)

	require.Len(t, result.Capped, 2)
	byProduct := map[uint]CappedLine{}
	for _, line := range result.Capped {
		byProduct[line.ProductID] = line
	}
	assert.Equal(t, CappedLine{ProductID: 2, Requested: 13, Kept: 10}, byProduct[2])
	assert.Equal(t, CappedLine{ProductID: 4, Requested: 3, Kept: 2}, byProduct[4])
}

func TestMergeKeepsCustomerPriceSnapshot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedCustomerCart(t, 9, AddItemRequest{ProductID: 1, Quantity: 1})

	// the catalog price moved between the two carts' snapshots
	env.catalog.Add(catalog.Product{ProductID: 1, Name: "Trail Running Shoes", SKU: "SHOE-TRL-42", UnitPrice: 8999, Active: true})
	env.seedGuestCart(t, "sess-login", AddItemRequest{ProductID: 1, Quantity: 1})

	result, err := env.svc.MergeOnLogin(ctx, "sess-login", 9)
	require.NoError(t, err)

	line := result.Cart.FindItem(1, nil)
	require.NotNil(t, line)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, int64(7999), line.UnitPrice)
}

func TestMergeEmptyGuestCartIsDiscarded(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	guest := env.seedGuestCart(t, "sess-login")

	result, err := env.svc.MergeOnLogin(ctx, "sess-login", 9)
	require.NoError(t, err)
	assert.False(t, result.Merged)
	require.NotNil(t, result.Cart.CustomerID)
	assert.Equal(t, uint(9), *result.Cart.CustomerID)

	abandoned, err := env.repo.GetByID(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, CartStatusAbandoned, abandoned.Status)

	// the customer cart takes over the session
	bySession, err := env.repo.ActiveBySession(ctx, "sess-login")
	require.NoError(t, err)
	assert.Equal(t, result.Cart.ID, bySession.ID)
}

func TestMergeLeavesForeignCartsAlone(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedGuestCart(t, "sess-shared", AddItemRequest{ProductID: 1, Quantity: 1})

	// account A claims the session's cart
	first, err := env.svc.MergeOnLogin(ctx, "sess-shared", 1)
	require.NoError(t, err)
	require.True(t, first.Merged)

	// account B logs in on the same browser session
	second, err := env.svc.MergeOnLogin(ctx, "sess-shared", 2)
	require.NoError(t, err)
	assert.False(t, second.Merged)
	assert.NotEqual(t, first.Cart.ID, second.Cart.ID)
	assert.True(t, second.Cart.IsEmpty())

	// A's cart is untouched
	aCart, err := env.repo.GetByID(ctx, first.Cart.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, aCart.FindItem(1, nil).Quantity)
}

func TestMergeWithoutSessionEnsuresCustomerCart(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	result, err := env.svc.MergeOnLogin(ctx, "", 9)
	require.NoError(t, err)
	assert.False(t, result.Merged)
	require.NotNil(t, result.Cart.CustomerID)
	assert.Equal(t, uint(9), *result.Cart.CustomerID)
}
