package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pati-platform/pati-backend/api/controllers"
	"github.com/pati-platform/pati-backend/api/middleware"
	affsvc "github.com/pati-platform/pati-backend/internal/affiliates"
	authsvc "github.com/pati-platform/pati-backend/internal/auth"
	cartsvc "github.com/pati-platform/pati-backend/internal/cart"
	checkoutsvc "github.com/pati-platform/pati-backend/internal/checkout"
	ordersvc "github.com/pati-platform/pati-backend/internal/orders"
	productsvc "github.com/pati-platform/pati-backend/internal/products"
	storesvc "github.com/pati-platform/pati-backend/internal/stores"
	"github.com/pati-platform/pati-backend/pkg/auth/session"
	"github.com/pati-platform/pati-backend/pkg/config"
	"github.com/pati-platform/pati-backend/pkg/db"
	"github.com/pati-platform/pati-backend/pkg/enums"
	"github.com/pati-platform/pati-backend/pkg/logger"
	"github.com/pati-platform/pati-backend/pkg/metrics"
	"github.com/pati-platform/pati-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *db.Client
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	HTTPMetrics *metrics.HTTPMetrics
	// MetricsHandler serves the Prometheus scrape endpoint.
	MetricsHandler http.Handler

	Auth       authsvc.Service
	Stores     storesvc.Service
	Products   productsvc.Service
	Cart       cartsvc.Service
	Checkout   checkoutsvc.Service
	Orders     ordersvc.Service
	Affiliates affsvc.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	// Assign through a nil check so a missing client stays a nil interface
	// and the middlewares fall back to pass-through.
	var idemStore redis.IdempotencyStore
	var rateStore middleware.RateLimiterStore
	if d.Redis != nil {
		idemStore = d.Redis
		rateStore = d.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB, d.Redis, logg))
	})

	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.Idempotency(idemStore, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.Login(d.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, rateStore, logg)).Post("/register", controllers.Register(d.Auth, logg))
		r.Post("/refresh", controllers.Refresh(d.Auth, logg))
		r.Post("/logout", controllers.Logout(d.Auth, logg))
	})

	// Public storefront: browsing needs no session.
	r.Route("/api/v1/stores", func(r chi.Router) {
		r.Get("/", controllers.StoreList(d.Stores, logg))
		r.Get("/{storeID}", controllers.StoreGet(d.Stores, logg))
	})
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(d.Products, logg))
		r.Get("/{productID}", controllers.ProductGet(d.Products, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(d.Cart, logg))
			r.Post("/lines", controllers.CartAddLine(d.Cart, logg))
			r.Delete("/lines/{productID}", controllers.CartRemoveLine(d.Cart, logg))
			r.Delete("/", controllers.CartClear(d.Cart, logg))
		})

		r.Post("/checkout", controllers.Checkout(d.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(d.Orders, logg))
			r.Get("/{orderID}", controllers.OrderGet(d.Orders, logg))
		})

		r.With(middleware.RequireRole(enums.UserRoleOwner.String(), logg)).
			Post("/stores", controllers.StoreCreate(d.Stores, logg))
		r.With(middleware.RequireAnyRole([]string{
			enums.UserRoleOwner.String(),
			enums.UserRoleAdmin.String(),
		}, logg)).Patch("/stores/{storeID}", controllers.StoreUpdate(d.Stores, logg))

		r.Route("/vendor", func(r chi.Router) {
			r.Use(middleware.RequireAnyRole([]string{
				enums.UserRoleOwner.String(),
				enums.UserRoleAdmin.String(),
				enums.UserRoleClerk.String(),
			}, logg))
			r.Get("/products", controllers.VendorProductList(d.Products, logg))
			r.Post("/products", controllers.VendorProductCreate(d.Products, logg))
			r.Patch("/products/{productID}", controllers.VendorProductUpdate(d.Products, logg))
			r.Delete("/products/{productID}", controllers.VendorProductDelete(d.Products, logg))
			r.Get("/orders", controllers.VendorOrderList(d.Orders, logg))
		})

		r.Route("/affiliate", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleAffiliate.String(), logg))
			r.Get("/orders", controllers.AffiliateOrderList(d.Orders, logg))
			r.Get("/commissions", controllers.AffiliateSummary(d.Affiliates, logg))
		})
	})

	return r
}
