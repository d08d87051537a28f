// internal/domain/checkout/mocks_test.go
package checkout

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/commerce-core/internal/config"
	"github.com/your-org/commerce-core/internal/domain/cart"
	"github.com/your-org/commerce-core/internal/domain/catalog"
	"github.com/your-org/commerce-core/internal/domain/order"
	"github.com/your-org/commerce-core/internal/domain/payment"
	"github.com/your-org/commerce-core/internal/pkg/notification"
)

// Hold lifecycle on the mock gateway.
const (
	holdAuthorized = "authorized"
	holdCaptured   = "captured"
	holdVoided     = "voided"
)

// mockGateway implements payment.Gateway in memory and records every
// call, so tests can verify that no authorization is left hanging after
// a failure path.
type mockGateway struct {
	mu      sync.Mutex
	seq     int
	holds   map[string]string // auth ref -> hold status
	amounts map[string]int64

	// Scripted failures. The queues are popped one entry per call and
	// may hold nil for calls that should succeed; the sticky fields
	// apply once the queue is drained.
	authorizeErrs []error
	authorizeErr  error
	captureErrs   []error
	captureErr    error
	voidErrs      []error
	voidErr       error

	// onAuthorize runs inside Authorize after the request is recorded,
	// simulating work that happens while the call is in flight.
	onAuthorize func()

	authorizeCalls []payment.AuthorizationRequest
	captureCalls   []string
	captureKeys    []string
	voidCalls      []string
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		holds:   make(map[string]string),
		amounts: make(map[string]int64),
	}
}

func (m *mockGateway) nextErr(queue *[]error, sticky error) error {
	if len(*queue) > 0 {
		err := (*queue)[0]
		*queue = (*queue)[1:]
		return err
	}
	return sticky
}

func (m *mockGateway) Authorize(_ context.Context, req payment.AuthorizationRequest) (*payment.Authorization, error) {
	m.mu.Lock()
	m.authorizeCalls = append(m.authorizeCalls, req)
	err := m.nextErr(&m.authorizeErrs, m.authorizeErr)
	hook := m.onAuthorize
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	ref := fmt.Sprintf("auth_%04d", m.seq)
	m.holds[ref] = holdAuthorized
	m.amounts[ref] = req.Amount
	return &payment.Authorization{
		Ref:       ref,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Status:    holdAuthorized,
		CreatedAt: time.Now(),
	}, nil
}

func (m *mockGateway) Capture(_ context.Context, authRef string, amount int64, idempotencyKey string) (*payment.Capture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.captureCalls = append(m.captureCalls, authRef)
	m.captureKeys = append(m.captureKeys, idempotencyKey)
	if err := m.nextErr(&m.captureErrs, m.captureErr); err != nil {
		return nil, err
	}
	if m.holds[authRef] != holdAuthorized {
		return nil, payment.ErrAuthorizationNotFound
	}

	m.holds[authRef] = holdCaptured
	return &payment.Capture{
		Ref:       fmt.Sprintf("cap_%s", authRef),
		AuthRef:   authRef,
		Amount:    amount,
		Status:    holdCaptured,
		CreatedAt: time.Now(),
	}, nil
}

func (m *mockGateway) Void(_ context.Context, authRef string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.voidCalls = append(m.voidCalls, authRef)
	if err := m.nextErr(&m.voidErrs, m.voidErr); err != nil {
		return err
	}
	if m.holds[authRef] != holdAuthorized {
		return payment.ErrAuthorizationNotFound
	}

	m.holds[authRef] = holdVoided
	return nil
}

// outstanding returns the refs of holds that were neither captured nor
// voided. Failure-path tests assert this comes back empty.
func (m *mockGateway) outstanding() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var refs []string
	for ref, status := range m.holds {
		if status == holdAuthorized {
			refs = append(refs, ref)
		}
	}
	return refs
}

func (m *mockGateway) holdStatus(ref string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.holds[ref]
}

// failingOrders implements Orders with a scripted Materialize failure
type failingOrders struct {
	materializeErr error
	calls          int
}

func (f *failingOrders) Materialize(_ context.Context, _ order.MaterializeInput) (*order.MaterializeResult, error) {
	f.calls++
	return nil, f.materializeErr
}

func (f *failingOrders) ForCart(_ context.Context, _ uint) (*order.Order, error) {
	return nil, order.ErrOrderNotFound
}

// mockNotifier records confirmations instead of delivering them
type mockNotifier struct {
	mu   sync.Mutex
	sent []notification.OrderConfirmation
	err  error
}

func (m *mockNotifier) NotifyOrderConfirmation(_ context.Context, msg notification.OrderConfirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *mockNotifier) confirmations() []notification.OrderConfirmation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notification.OrderConfirmation, len(m.sent))
	copy(out, m.sent)
	return out
}

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
		},
		Checkout: config.CheckoutConfig{
			TTL:                   2 * time.Hour,
			FreeShippingThreshold: 20000,
		},
		Payment: config.PaymentConfig{
			RequestTimeout: time.Second,
			MaxRetryWait:   2 * time.Second,
		},
		Order: config.OrderConfig{
			NumberPrefix:  "ORD",
			ClaimTokenTTL: 48 * time.Hour,
		},
	}
}

func testCatalog() *catalog.StaticCatalog {
	return catalog.NewStaticCatalog(
		catalog.Product{ProductID: 1, Name: "Trail Running Shoes", SKU: "SHOE-TRL-42", UnitPrice: 7999, WeightGrams: 900, Active: true},
		catalog.Product{ProductID: 2, Name: "Wool Hiking Socks", SKU: "SOCK-WOL-M", UnitPrice: 1299, WeightGrams: 80, Active: true},
		catalog.Product{ProductID: 3, Name: "Cast Iron Kettlebell", SKU: "KB-24KG", UnitPrice: 10999, WeightGrams: 24000, Active: true},
	)
}

// testEnv wires a checkout service over in-memory stores, a real cart
// service, and the mock gateway, mirroring the production wiring
type testEnv struct {
	svc       *Service
	store     *MemoryStore
	carts     *cart.Service
	gateway   *mockGateway
	orderRepo *order.MemoryRepository
	notifier  *mockNotifier
	cfg       *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testConfig()
	logger := testLogger()
	carts := cart.NewService(cart.NewMemoryRepository(), testCatalog(), cfg, logger)

	orderRepo := order.NewMemoryRepository()
	materializer := order.NewMaterializer(orderRepo, order.NewMemorySequence(cfg.Order.NumberPrefix), order.NewMemoryClaimStore(), cfg, logger)

	env := &testEnv{
		store:     NewMemoryStore(),
		carts:     carts,
		gateway:   newMockGateway(),
		orderRepo: orderRepo,
		notifier:  &mockNotifier{},
		cfg:       cfg,
	}
	env.svc = NewService(env.store, carts, testCatalog(), env.gateway, materializer, env.notifier, cfg, logger)
	return env
}

// newCart provisions a guest cart with the given lines. Quantities map
// onto the seeded catalog: product 1 is $79.99, product 2 is $12.99.
func (env *testEnv) newCart(t *testing.T, email string, lines ...cart.AddItemRequest) *cart.Cart {
	t.Helper()
	ctx := context.Background()

	sessionID := fmt.Sprintf("sess-%s", t.Name())
	c, err := env.carts.EnsureForSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("provisioning cart: %v", err)
	}
	for i := range lines {
		if c, err = env.carts.AddItem(ctx, c.ID, &lines[i]); err != nil {
			t.Fatalf("adding line %d: %v", i, err)
		}
	}
	if email != "" {
		if c, err = env.carts.SetEmail(ctx, c.ID, email); err != nil {
			t.Fatalf("setting cart email: %v", err)
		}
	}
	return c
}

// toShippingSet walks a cart through begin, address, and shipping
// selection, the common preamble of the payment tests
func (env *testEnv) toShippingSet(t *testing.T, cartID uint) *CheckoutSession {
	t.Helper()
	ctx := context.Background()

	if _, err := env.svc.Begin(ctx, cartID); err != nil {
		t.Fatalf("beginning checkout: %v", err)
	}
	if _, err := env.svc.SetAddress(ctx, cartID, &SetAddressRequest{
		ShippingAddress:       usAddress(),
		BillingSameAsShipping: true,
	}); err != nil {
		t.Fatalf("setting address: %v", err)
	}
	session, err := env.svc.SetShipping(ctx, cartID, "standard")
	if err != nil {
		t.Fatalf("setting shipping: %v", err)
	}
	return session
}

// toAuthorized continues from toShippingSet through a successful hold
func (env *testEnv) toAuthorized(t *testing.T, cartID uint) *CheckoutSession {
	t.Helper()

	env.toShippingSet(t, cartID)
	session, err := env.svc.AuthorizePayment(context.Background(), cartID, &AuthorizePaymentRequest{MethodToken: "tok_visa"})
	if err != nil {
		t.Fatalf("authorizing payment: %v", err)
	}
	return session
}

func usAddress() Address {
	return Address{
		FirstName:  "Avery",
		LastName:   "Stone",
		Line1:      "1 Liberty Plaza",
		City:       "New York",
		State:      "NY",
		PostalCode: "10006",
		Country:    "US",
		Phone:      "+1 212 555 0100",
	}
}

func gbAddress() Address {
	return Address{
		FirstName:  "Nila",
		LastName:   "Patel",
		Line1:      "221B Baker Street",
		City:       "London",
		PostalCode: "NW1 6XE",
		Country:    "GB",
	}
}
