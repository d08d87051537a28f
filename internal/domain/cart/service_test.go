// internal/domain/cart/service_test.go
package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/commerce-core/internal/config"
	"github.com/your-org/commerce-core/internal/domain/catalog"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testConfig() *config.Config {
	return &config.Config{
		Cart: config.CartConfig{
			TTL:             time.Hour,
			MaxItemQuantity: 10,
			SweepInterval:   10 * time.Millisecond,
			SweepBatchSize:  100,
		},
	}
}

func testCatalog() *catalog.StaticCatalog {
	return catalog.NewStaticCatalog(
		catalog.Product{ProductID: 1, Name: "Trail Running Shoes", SKU: "SHOE-TRL-42", UnitPrice: 7999, WeightGrams: 900, Active: true},
		catalog.Product{ProductID: 2, Name: "Wool Hiking Socks", SKU: "SOCK-WOL-M", UnitPrice: 1299, WeightGrams: 80, Active: true},
		catalog.Product{ProductID: 3, Name: "Cast Iron Kettlebell", SKU: "KB-24KG", UnitPrice: 10999, WeightGrams: 24000, Active: true},
		catalog.Product{ProductID: 4, Name: "Limited Print", SKU: "ART-LTD-01", UnitPrice: 4999, MaxPerLine: 2, Active: true},
		catalog.Product{ProductID: 5, Name: "Retired Lamp", SKU: "LAMP-OLD", UnitPrice: 2599, Active: false},
	)
}

type testEnv struct {
	svc     *Service
	repo    *MemoryRepository
	catalog *catalog.StaticCatalog
	cfg     *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:    NewMemoryRepository(),
		catalog: testCatalog(),
		cfg:     testConfig(),
	}
	env.svc = NewService(env.repo, env.catalog, env.cfg, testLogger())
	return env
}

func (env *testEnv) guestCart(t *testing.T) *Cart {
	t.Helper()
	c, err := env.svc.EnsureForSession(context.Background(), fmt.Sprintf("sess-%s", t.Name()))
	require.NoError(t, err)
	return c
}

func TestEnsureForSessionProvisionsOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	first, err := env.svc.EnsureForSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, CartStatusActive, first.Status)
	assert.Equal(t, "sess-1", *first.SessionID)
	assert.True(t, first.ExpiresAt.After(time.Now()))

	second, err := env.svc.EnsureForSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := env.svc.EnsureForSession(ctx, "sess-2")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	_, err = env.svc.EnsureForSession(ctx, "")
	assert.Error(t, err)
}

func TestAddItemSnapshotsCatalogPrice(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.guestCart(t)

	c, err := env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 1, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Trail Running Shoes", c.Items[0].Name)
	assert.Equal(t, int64(7999), c.Items[0].UnitPrice)
	assert.Equal(t, int64(15998), c.Subtotal())

	// adding the same product grows the line instead of duplicating it
	c, err = env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)

	totals := c.Totals()
	assert.Equal(t, 1, totals.ItemCount)
	assert.Equal(t, 3, totals.TotalQuantity)
	assert.Equal(t, int64(23997), totals.Subtotal)
}

func TestAddItemDistinguishesVariants(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	variant := uint(7)
	env.catalog.Add(catalog.Product{ProductID: 1, VariantID: &variant, Name: "Trail Running Shoes (wide)", SKU: "SHOE-TRL-42W", UnitPrice: 8499, Active: true})
	c := env.guestCart(t)

	c, err := env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	c, err = env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 1, VariantID: &variant, Quantity: 1})
	require.NoError(t, err)

	require.Len(t, c.Items, 2)
	assert.Equal(t, int64(7999+8499), c.Subtotal())
}

func TestAddItemValidatesProduct(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.guestCart(t)

	_, err := env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 404, Quantity: 1})
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	_, err = env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 5, Quantity: 1})
	assert.ErrorIs(t, err, catalog.ErrProductInactive)

	_, err = env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 1, Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAddItemEnforcesQuantityCaps(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.guestCart(t)

	// product cap below the global cap
	_, err := env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 4, Quantity: 3})
	assert.ErrorIs(t, err, ErrMaxQuantityExceeded)

	c, err = env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 4, Quantity: 2})
	require.NoError(t, err)

	_, err = env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 4, Quantity: 1})
	assert.ErrorIs(t, err, ErrMaxQuantityExceeded)

	// global cap applies when the product declares none
	_, err = env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 2, Quantity: 11})
	assert.ErrorIs(t, err, ErrMaxQuantityExceeded)

	c, err = env.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Totals().TotalQuantity)
}

func TestUpdateItemQuantity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.guestCart(t)
	c, err := env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 1, Quantity: 2})
	require.NoError(t, err)

	c, err = env.svc.UpdateItemQuantity(ctx, c.ID, 1, nil, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Items[0].Quantity)

	_, err = env.svc.UpdateItemQuantity(ctx, c.ID, 1, nil, 11)
	assert.ErrorIs(t, err, ErrMaxQuantityExceeded)

	_, err = env.svc.UpdateItemQuantity(ctx, c.ID, 2, nil, 1)
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = env.svc.UpdateItemQuantity(ctx, c.ID, 1, nil, -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	// zero removes the line
	c, err = env.svc.UpdateItemQuantity(ctx, c.ID, 1, nil, 0)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	_, err = env.svc.RemoveItem(ctx, c.ID, 1, nil)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestSnapshotsSurviveCatalogPriceChanges(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.guestCart(t)
	c, err := env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 1, Quantity: 2})
	require.NoError(t, err)

	env.catalog.Add(catalog.Product{ProductID: 1, Name: "Trail Running Shoes", SKU: "SHOE-TRL-42", UnitPrice: 8999, WeightGrams: 900, Active: true})

	// the line keeps the price it was added at, even when it grows
	c, err = env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(7999), c.Items[0].UnitPrice)
	assert.Equal(t, int64(23997), c.Subtotal())

	// repricing is an explicit operation
	c, err = env.svc.Reprice(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8999), c.Items[0].UnitPrice)
	assert.Equal(t, int64(26997), c.Subtotal())
}

func TestRepriceDropsRetiredProducts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.guestCart(t)
	c, err := env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	c, err = env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 2, Quantity: 1})
	require.NoError(t, err)

	env.catalog.Add(catalog.Product{ProductID: 2, Name: "Wool Hiking Socks", SKU: "SOCK-WOL-M", UnitPrice: 1299, Active: false})

	c, err = env.svc.Reprice(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, uint(1), c.Items[0].ProductID)
}

func TestCartFrozenDuringCheckout(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.guestCart(t)
	_, err := env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	frozen, err := env.svc.BeginCheckout(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, CartStatusCheckoutInProgress, frozen.Status)

	_, err = env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 2, Quantity: 1})
	assert.ErrorIs(t, err, ErrCartNotActive)
	_, err = env.svc.UpdateItemQuantity(ctx, c.ID, 1, nil, 3)
	assert.ErrorIs(t, err, ErrCartNotActive)
	_, err = env.svc.RemoveItem(ctx, c.ID, 1, nil)
	assert.ErrorIs(t, err, ErrCartNotActive)
	_, err = env.svc.Reprice(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCartNotActive)

	// contact email may still be collected mid-checkout
	withEmail, err := env.svc.SetEmail(ctx, c.ID, "avery@example.com")
	require.NoError(t, err)
	assert.Equal(t, "avery@example.com", *withEmail.Email)
}

func TestCheckoutStatusTransitions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.guestCart(t)

	// empty carts cannot enter checkout
	_, err := env.svc.BeginCheckout(ctx, c.ID)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	// completing or releasing requires being in checkout
	_, err = env.svc.CompleteCheckout(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCartNotInCheckout)

	_, err = env.svc.BeginCheckout(ctx, c.ID)
	require.NoError(t, err)

	// entering twice is a resume, not an error
	again, err := env.svc.BeginCheckout(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, CartStatusCheckoutInProgress, again.Status)

	released, err := env.svc.ReleaseCheckout(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, CartStatusActive, released.Status)

	_, err = env.svc.BeginCheckout(ctx, c.ID)
	require.NoError(t, err)
	done, err := env.svc.CompleteCheckout(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, CartStatusCompleted, done.Status)

	// a completed cart is settled history
	_, err = env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 2, Quantity: 1})
	assert.ErrorIs(t, err, ErrCartNotActive)
	_, err = env.svc.BeginCheckout(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCartNotActive)
}

func TestConcurrentAddsRetryVersionRaces(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := env.guestCart(t)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				if _, err := env.svc.AddItem(ctx, c.ID, &AddItemRequest{ProductID: 1, Quantity: 1}); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent add failed: %v", err)
	}

	final, err := env.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, final.Items, 1)
	assert.Equal(t, 10, final.Items[0].Quantity)
}
