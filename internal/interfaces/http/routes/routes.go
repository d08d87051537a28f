// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/commerce-core/internal/config"
	"github.com/your-org/commerce-core/internal/domain/account"
	"github.com/your-org/commerce-core/internal/domain/cart"
	"github.com/your-org/commerce-core/internal/domain/checkout"
	"github.com/your-org/commerce-core/internal/domain/identity"
	"github.com/your-org/commerce-core/internal/domain/order"
	"github.com/your-org/commerce-core/internal/domain/session"
	"github.com/your-org/commerce-core/internal/interfaces/http/handlers"
	"github.com/your-org/commerce-core/internal/interfaces/http/middleware"
	"github.com/your-org/commerce-core/internal/pkg/auth"
	"github.com/your-org/commerce-core/internal/pkg/invoice"
)

// Services carries the wired application services the HTTP layer exposes
type Services struct {
	Accounts  *account.Service
	Carts     *cart.Service
	Checkouts *checkout.Service
	Orders    *order.Service
	Invoices  *invoice.Service
	Resolver  *identity.Resolver
	Sessions  *session.Binder
}

// SetupRoutes wires all API v1 routes onto the given router group
func SetupRoutes(rg *gin.RouterGroup, svcs *Services, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(svcs.Carts)
	checkoutHandler := handlers.NewCheckoutHandler(svcs.Checkouts, svcs.Carts)
	orderHandler := handlers.NewOrderHandler(svcs.Orders)
	authHandler := handlers.NewAuthHandler(svcs.Accounts, svcs.Sessions)
	adminHandler := handlers.NewAdminHandler(svcs.Orders, svcs.Carts)
	invoiceHandler := handlers.NewInvoiceHandler(svcs.Orders, svcs.Invoices)

	optionalAuth := middleware.OptionalAuth(svcs.Resolver)
	guestSession := middleware.Session(svcs.Resolver, cfg)

	// Storefront routes serve guests and customers alike. The bearer
	// middleware runs first so a logged-in caller acts under their
	// account while the session cookie stays alive for cart merging.
	storefront := rg.Group("")
	storefront.Use(optionalAuth, guestSession)
	{
		carts := storefront.Group("/cart")
		{
			carts.GET("", cartHandler.GetCart)
			carts.POST("/items", cartHandler.AddItem)
			carts.PUT("/items/:productID", cartHandler.UpdateItem)
			carts.DELETE("/items/:productID", cartHandler.RemoveItem)
			carts.PUT("/email", cartHandler.SetEmail)
			carts.POST("/reprice", cartHandler.Reprice)
			carts.POST("/merge", cartHandler.Merge)
		}

		co := storefront.Group("/checkout")
		{
			co.POST("", checkoutHandler.Begin)
			co.GET("", checkoutHandler.Get)
			co.DELETE("", checkoutHandler.Cancel)
			co.PUT("/address", checkoutHandler.SetAddress)
			co.GET("/shipping-options", checkoutHandler.ShippingOptions)
			co.PUT("/shipping", checkoutHandler.SetShipping)
			co.POST("/payment", checkoutHandler.AuthorizePayment)
			co.POST("/complete", checkoutHandler.Complete)
		}

		// Guest order tracking by number and email
		storefront.GET("/orders/track", orderHandler.Track)

		authGroup := storefront.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.RefreshToken)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.POST("/claim-order", authHandler.ClaimOrder)

			protected := authGroup.Group("")
			protected.Use(middleware.Auth(svcs.Resolver, auth.ScopeCustomer))
			{
				protected.GET("/profile", authHandler.Profile)
			}
		}
	}

	// Customer order history requires a customer bearer token
	orders := rg.Group("/orders")
	orders.Use(middleware.Auth(svcs.Resolver, auth.ScopeCustomer))
	{
		orders.GET("", orderHandler.List)
		orders.GET("/:id", orderHandler.Get)
	}

	// Back office routes require the admin scope plus a per-route permission
	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(svcs.Resolver, auth.ScopeAdmin))
	{
		adminOrders := admin.Group("/orders")
		{
			adminOrders.GET("", middleware.AdminPermission(identity.PermOrdersRead), adminHandler.ListOrders)
			adminOrders.GET("/:id", middleware.AdminPermission(identity.PermOrdersRead), adminHandler.GetOrder)
			adminOrders.PUT("/:id/status", middleware.AdminPermission(identity.PermOrdersWrite), adminHandler.UpdateOrderStatus)
			adminOrders.GET("/:id/invoice", middleware.AdminPermission(identity.PermInvoicesRead), invoiceHandler.Download)
		}

		admin.POST("/carts/sweep", middleware.AdminPermission(identity.PermCartsSweep), adminHandler.SweepCarts)
	}
}
