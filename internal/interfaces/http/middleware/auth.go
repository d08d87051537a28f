// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/commerce-core/internal/config"
	"github.com/your-org/commerce-core/internal/domain/identity"
	"github.com/your-org/commerce-core/internal/pkg/auth"
)

// Context keys for the resolved caller
const (
	ContextPrincipal = "principal"
	ContextSessionID = "session_id"
)

// Auth requires a bearer token of the given scope and stores the
// resolved principal in the context
func Auth(resolver *identity.Resolver, requiredScope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		principal, err := resolver.ResolveBearer(tokenString, requiredScope)
		if err != nil {
			if errors.Is(err, identity.ErrScopeMismatch) {
				c.JSON(http.StatusForbidden, gin.H{
					"error": "Token scope does not permit this operation",
				})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid or expired token",
				})
			}
			c.Abort()
			return
		}

		c.Set(ContextPrincipal, principal)
		c.Next()
	}
}

// OptionalAuth resolves a bearer token when one is present and valid,
// and lets the request through anonymously otherwise
func OptionalAuth(resolver *identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.Next()
			return
		}

		principal, err := resolver.ResolveBearer(tokenString, auth.ScopeCustomer)
		if err != nil {
			// Invalid token, continue without authentication
			c.Next()
			return
		}

		c.Set(ContextPrincipal, principal)
		c.Next()
	}
}

// Session guarantees the request carries a guest session: the cookie is
// resolved or minted, touched, and echoed back to the client. Anonymous
// callers become guest principals; authenticated callers keep the
// principal a bearer middleware already set.
func Session(resolver *identity.Resolver, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(cfg.Session.CookieName)

		guest, err := resolver.ResolveSession(c.Request.Context(), cookie, c.GetHeader("User-Agent"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to establish session",
			})
			c.Abort()
			return
		}

		if guest.SessionID != cookie {
			c.SetCookie(cfg.Session.CookieName, guest.SessionID,
				int(cfg.Session.TTL.Seconds()), "/", "", cfg.Session.CookieSecure, true)
		}
		c.Set(ContextSessionID, guest.SessionID)

		if _, exists := c.Get(ContextPrincipal); !exists {
			c.Set(ContextPrincipal, guest)
		}
		c.Next()
	}
}

// AdminPermission gates a route on a single admin permission. It runs
// after Auth with the admin scope.
func AdminPermission(perm identity.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if err := identity.RequirePermission(principal, perm); err != nil {
			switch {
			case errors.Is(err, identity.ErrUnauthenticated):
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Authentication required",
				})
			case errors.Is(err, identity.ErrScopeMismatch):
				c.JSON(http.StatusForbidden, gin.H{
					"error": "Admin access required",
				})
			default:
				c.JSON(http.StatusForbidden, gin.H{
					"error": "Missing permission: " + string(perm),
				})
			}
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetPrincipal extracts the resolved principal from gin context
func GetPrincipal(c *gin.Context) (*identity.Principal, bool) {
	value, exists := c.Get(ContextPrincipal)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*identity.Principal)
	return principal, ok
}

// GetSessionID extracts the guest session ID from gin context. It is
// empty on routes that do not run the Session middleware.
func GetSessionID(c *gin.Context) string {
	return c.GetString(ContextSessionID)
}
