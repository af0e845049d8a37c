// Package router registers the HTTP routes and their middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/kit-rental/internal/config"
	"github.com/iliyamo/kit-rental/internal/handler"
	"github.com/iliyamo/kit-rental/internal/middleware"
	"github.com/iliyamo/kit-rental/internal/model"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Draft    *handler.DraftHandler
	Checkout *handler.CheckoutHandler
	Admin    *handler.AdminHandler
}

// Options carries the cross-cutting settings applied to the API.  A nil
// Redis disables caching and rate limiting.
type Options struct {
	JWTSecret     string
	SecureCookies bool
	Cache         config.CacheConfig
	RateLimit     config.RateLimitConfig
	Redis         *redis.Client
	Logger        *logrus.Logger
}

// Register mounts every route on e.
func Register(e *echo.Echo, h Handlers, o Options) {
	if o.Logger != nil {
		e.Use(middleware.RequestLogger(o.Logger))
	}
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1", middleware.Session(o.SecureCookies), middleware.NewTokenBucket(o.RateLimit, o.Redis, o.Logger))
	RegisterPublic(v1, h, o)
	RegisterAuth(v1, h.Auth, o.JWTSecret)
	RegisterCustomer(v1, h, o.JWTSecret)
	RegisterAdmin(v1, h.Admin, o.JWTSecret)
}

// RegisterPublic mounts the catalog, quote and draft endpoints.  They need
// no account; drafts are keyed by the session cookie.
func RegisterPublic(g *echo.Group, h Handlers, o Options) {
	cache := middleware.NewRedisCache(o.Cache, o.Redis)
	g.GET("/kits", h.Catalog.ListKits, cache)
	g.GET("/kits/:id", h.Catalog.GetKit, cache)
	g.GET("/addons", h.Catalog.ListAddOns, cache)
	g.GET("/banks", h.Catalog.ListBanks, cache)
	g.POST("/quote", h.Catalog.Quote)

	g.PUT("/draft", h.Draft.Put)
	g.GET("/draft", h.Draft.Get)
	g.DELETE("/draft", h.Draft.Delete)
}

// RegisterAuth mounts sign-up, login and logout under /auth and the
// profile endpoint under /me.
func RegisterAuth(g *echo.Group, a *handler.AuthHandler, jwtSecret string) {
	auth := g.Group("/auth")
	auth.POST("/register", a.Register)
	auth.POST("/login", a.Login)
	auth.POST("/logout", a.Logout)

	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterCustomer mounts checkout, payment and booking history.  Any
// signed-in role may book.
func RegisterCustomer(g *echo.Group, h Handlers, jwtSecret string) {
	mw := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	}
	g.POST("/checkout", h.Checkout.Checkout, mw...)
	g.POST("/payments", h.Checkout.Pay, mw...)
	g.POST("/payments/bank", h.Checkout.BeginBank, mw...)
	g.POST("/payments/bank/confirm", h.Checkout.ConfirmBank, mw...)
	g.POST("/bookings/manual", h.Checkout.Manual, mw...)
	g.GET("/my-bookings", h.Checkout.MyBookings, mw...)
}

// RegisterAdmin mounts booking administration for the ADMIN role.
func RegisterAdmin(g *echo.Group, a *handler.AdminHandler, jwtSecret string) {
	admin := g.Group("/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	admin.GET("/bookings", a.List)
	admin.PATCH("/bookings/:id/status", a.UpdateStatus)
}
