package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/lumenhair/storefront-api/docs"
	"github.com/lumenhair/storefront-api/internal/api/handler"
	"github.com/lumenhair/storefront-api/internal/api/metrics"
	"github.com/lumenhair/storefront-api/internal/api/middleware"
	"github.com/lumenhair/storefront-api/internal/api/session"
	"github.com/lumenhair/storefront-api/internal/core/ports"
)

// Deps holds everything the router wires into handlers.
type Deps struct {
	Log          zerolog.Logger
	CORSOrigins  []string
	Cookies      *session.Cookies
	MergeOnLogin bool

	Tokens   ports.TokenService
	Auth     ports.AuthService
	Catalog  ports.CatalogService
	Carts    ports.CartService
	Wishlist ports.WishlistService

	// Readiness lists the dependencies checked by GET /health/ready.
	Readiness map[string]handler.Pinger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.CORSOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(metrics.HTTPMiddleware())

	requireSession := middleware.RequireSession(d.Tokens, d.Log)
	optionalSession := middleware.OptionalSession(d.Tokens, d.Log)
	guestSession := middleware.GuestSession(d.Cookies)

	authHandler := handler.NewAuthHandler(d.Auth, d.Tokens, d.Carts, d.Cookies, d.MergeOnLogin, d.Log)
	productHandler := handler.NewProductHandler(d.Catalog)
	cartHandler := handler.NewCartHandler(d.Carts, d.Catalog)
	wishlistHandler := handler.NewWishlistHandler(d.Wishlist)
	healthHandler := handler.NewHealthHandler(d.Readiness)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/user", authHandler.CurrentUser, requireSession)
	auth.POST("/user", authHandler.CurrentUser, requireSession)
	auth.GET("/getUser", authHandler.CurrentUser, requireSession)
	auth.PUT("/password", authHandler.ChangePassword, requireSession)
	auth.POST("/password/forgot", authHandler.ForgotPassword)
	auth.POST("/password/reset", authHandler.ResetPassword)

	// --- Catalog routes ---
	e.GET("/api/products", productHandler.List)
	e.GET("/api/products/:id", productHandler.Get)

	// --- Cart routes ---
	cart := e.Group("/api/cart")
	cart.POST("/merge", cartHandler.Merge, requireSession)
	cart.POST("/product-snapshot", cartHandler.ProductSnapshot, requireSession)

	guestOrUser := cart.Group("", optionalSession, guestSession)
	guestOrUser.GET("", cartHandler.Get)
	guestOrUser.POST("", cartHandler.Add)
	guestOrUser.PUT("/:itemId", cartHandler.Update)
	guestOrUser.DELETE("/:itemId", cartHandler.Remove)

	// --- Wishlist routes ---
	wishlist := e.Group("/api/wishlist", requireSession)
	wishlist.GET("", wishlistHandler.List)
	wishlist.POST("", wishlistHandler.Add)
	wishlist.DELETE("/:productId", wishlistHandler.Remove)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Metrics & docs ---
	e.GET("/metrics", metrics.Handler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
