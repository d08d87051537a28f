// internal/interfaces/http/middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/commerce-core/internal/config"
	"github.com/your-org/commerce-core/internal/domain/identity"
	"github.com/your-org/commerce-core/internal/domain/session"
	"github.com/your-org/commerce-core/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "commerce-core-test"},
		JWT: config.JWTConfig{
			Secret:             "0123456789abcdef0123456789abcdef",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
		Session: config.SessionConfig{
			CookieName:   "guest_session",
			CookieSecure: false,
			TTL:          30 * 24 * time.Hour,
		},
	}
}

type testHarness struct {
	cfg        *config.Config
	jwtManager *auth.JWTManager
	resolver   *identity.Resolver
}

func newHarness() *testHarness {
	cfg := testConfig()
	jwtManager := auth.NewJWTManager(cfg)
	binder := session.NewBinder(session.NewMemoryStore(), cfg.Session.TTL)
	return &testHarness{
		cfg:        cfg,
		jwtManager: jwtManager,
		resolver:   identity.NewResolver(jwtManager, binder),
	}
}

// seen records what the terminal handler observed in the context
type seen struct {
	principal *identity.Principal
	hasPrin   bool
	sessionID string
}

func capture(out *seen) gin.HandlerFunc {
	return func(c *gin.Context) {
		out.principal, out.hasPrin = GetPrincipal(c)
		out.sessionID = GetSessionID(c)
		c.Status(http.StatusOK)
	}
}

func perform(router *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuth_MissingHeader(t *testing.T) {
	h := newHarness()
	var got seen

	router := gin.New()
	router.GET("/probe", Auth(h.resolver, auth.ScopeCustomer), capture(&got))

	w := perform(router, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, got.hasPrin)
}

func TestAuth_SetsPrincipal(t *testing.T) {
	h := newHarness()
	var got seen

	token, err := h.jwtManager.GenerateAccessToken(42, "jane@example.com", auth.ScopeCustomer, nil)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/probe", Auth(h.resolver, auth.ScopeCustomer), capture(&got))

	w := perform(router, map[string]string{"Authorization": "Bearer " + token})

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, got.hasPrin)
	assert.Equal(t, identity.KindCustomer, got.principal.Kind)
	assert.Equal(t, uint(42), got.principal.AccountID)
}

func TestAuth_ScopeMismatchIsForbidden(t *testing.T) {
	h := newHarness()
	var got seen

	token, err := h.jwtManager.GenerateAccessToken(42, "jane@example.com", auth.ScopeCustomer, nil)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/probe", Auth(h.resolver, auth.ScopeAdmin), capture(&got))

	w := perform(router, map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, got.hasPrin)
}

func TestAuth_GarbageTokenIsUnauthorized(t *testing.T) {
	h := newHarness()
	var got seen

	router := gin.New()
	router.GET("/probe", Auth(h.resolver, auth.ScopeCustomer), capture(&got))

	w := perform(router, map[string]string{"Authorization": "Bearer garbage"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth_InvalidTokenContinuesAnonymous(t *testing.T) {
	h := newHarness()
	var got seen

	router := gin.New()
	router.GET("/probe", OptionalAuth(h.resolver), capture(&got))

	w := perform(router, map[string]string{"Authorization": "Bearer expired-or-garbage"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, got.hasPrin)
}

func TestOptionalAuth_ValidTokenSetsPrincipal(t *testing.T) {
	h := newHarness()
	var got seen

	token, err := h.jwtManager.GenerateAccessToken(7, "jane@example.com", auth.ScopeCustomer, nil)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/probe", OptionalAuth(h.resolver), capture(&got))

	w := perform(router, map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, got.hasPrin)
	assert.Equal(t, uint(7), got.principal.AccountID)
}

func TestSession_MintsGuestSession(t *testing.T) {
	h := newHarness()
	var got seen

	router := gin.New()
	router.GET("/probe", Session(h.resolver, h.cfg), capture(&got))

	w := perform(router, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, got.sessionID)
	require.True(t, got.hasPrin)
	assert.True(t, got.principal.IsGuest())
	assert.Equal(t, got.sessionID, got.principal.SessionID)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, h.cfg.Session.CookieName, cookies[0].Name)
	assert.Equal(t, got.sessionID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSession_KeepsExistingSession(t *testing.T) {
	h := newHarness()
	var first, second seen

	router := gin.New()
	router.GET("/probe", Session(h.resolver, h.cfg), capture(&first))

	w := perform(router, nil)
	require.Equal(t, http.StatusOK, w.Code)
	minted := w.Result().Cookies()[0]

	router2 := gin.New()
	router2.GET("/probe", Session(h.resolver, h.cfg), capture(&second))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(minted)
	w2 := httptest.NewRecorder()
	router2.ServeHTTP(w2, req)

	require.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, first.sessionID, second.sessionID)
	// The cookie already matches, so nothing is re-set
	assert.Empty(t, w2.Result().Cookies())
}

func TestSession_BearerPrincipalTakesPrecedence(t *testing.T) {
	h := newHarness()
	var got seen

	token, err := h.jwtManager.GenerateAccessToken(42, "jane@example.com", auth.ScopeCustomer, nil)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/probe", OptionalAuth(h.resolver), Session(h.resolver, h.cfg), capture(&got))

	w := perform(router, map[string]string{"Authorization": "Bearer " + token})

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, got.hasPrin)
	assert.Equal(t, identity.KindCustomer, got.principal.Kind)
	assert.Equal(t, uint(42), got.principal.AccountID)
	// The guest session still rides along for cart merging
	assert.NotEmpty(t, got.sessionID)
}

func TestAdminPermission_Granted(t *testing.T) {
	h := newHarness()
	var got seen

	token, err := h.jwtManager.GenerateAccessToken(7, "ops@example.com", auth.ScopeAdmin,
		[]string{string(identity.PermOrdersRead)})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/probe",
		Auth(h.resolver, auth.ScopeAdmin),
		AdminPermission(identity.PermOrdersRead),
		capture(&got))

	w := perform(router, map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, got.hasPrin)
}

func TestAdminPermission_MissingPermission(t *testing.T) {
	h := newHarness()
	var got seen

	token, err := h.jwtManager.GenerateAccessToken(7, "ops@example.com", auth.ScopeAdmin,
		[]string{string(identity.PermOrdersRead)})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/probe",
		Auth(h.resolver, auth.ScopeAdmin),
		AdminPermission(identity.PermOrdersWrite),
		capture(&got))

	w := perform(router, map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, got.hasPrin)
}
