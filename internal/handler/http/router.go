package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NSBM-SE-Projects/atelier/internal/auth"
	"github.com/NSBM-SE-Projects/atelier/internal/domain"
	"github.com/NSBM-SE-Projects/atelier/internal/service"
	"github.com/NSBM-SE-Projects/atelier/pkg/health"
	"github.com/NSBM-SE-Projects/atelier/pkg/middleware"
)

// Services bundles the service layer for route registration.
type Services struct {
	Cart      *service.CartService
	Catalog   *service.CatalogService
	Users     *service.UserService
	Orders    *service.OrderService
	Activity  *service.ActivityService
	Dashboard *service.DashboardService
	Sales     *service.SalesService
}

// RouterConfig holds router-level settings.
type RouterConfig struct {
	CORS          middleware.CORSConfig
	AuthRateRPS   int
	AuthRateBurst int

	// CatalogCacheMaxAge sets Cache-Control on public catalog reads.
	// Zero disables the header.
	CatalogCacheMaxAge int

	// PprofEnabled registers /debug/pprof behind the CIDR allowlist.
	PprofEnabled      bool
	PprofAllowedCIDRs []string
}

// NewRouter creates a chi router with all storefront routes registered.
// Cart, catalog, and auth endpoints are public; orders and profile require a
// bearer token; /api/admin requires the ADMIN role.
func NewRouter(
	svcs Services,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))

	// Health check and metrics endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator that bridges to our internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.Validate(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}
	requireAuth := middleware.Auth(tokenValidator)
	requireAdmin := middleware.RequireRole(domain.UserTypeAdmin)

	// Auth endpoints (public, rate limited)
	authHandler := NewAuthHandler(svcs.Users, logger)
	r.Route("/api/auth", func(r chi.Router) {
		if cfg.AuthRateRPS > 0 {
			r.Use(middleware.RateLimit(cfg.AuthRateRPS, cfg.AuthRateBurst, logger))
		}

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Session cart endpoints (public; anonymous carts)
	cartHandler := NewCartHandler(svcs.Cart, logger)
	r.Route("/api/cart/{sessionId}", func(r chi.Router) {
		r.Get("/", cartHandler.GetCart)
		r.Post("/add", cartHandler.AddItem)
		r.Delete("/remove/{productId}", cartHandler.RemoveItem)
		r.Put("/update/{productId}", cartHandler.UpdateQuantity)
		r.Delete("/clear", cartHandler.ClearCart)
	})

	// Catalog endpoints (public reads, admin writes)
	productHandler := NewProductHandler(svcs.Catalog, logger)
	r.Route("/api/products", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.CatalogCacheMaxAge > 0 {
				r.Use(middleware.CacheControl(cfg.CatalogCacheMaxAge))
			}

			r.Get("/", productHandler.List)
			r.Get("/featured", productHandler.ListFeatured)
			r.Get("/category/{categoryId}", productHandler.ListByCategory)
			r.Get("/gender/{gender}", productHandler.ListByGender)
			r.Get("/{id}", productHandler.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(requireAdmin)

			r.Post("/", productHandler.Create)
			r.Put("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Delete)
		})
	})

	// Order endpoints (auth required; list and status changes are admin only)
	orderHandler := NewOrderHandler(svcs.Orders, logger)
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/", orderHandler.Create)
		r.Get("/number/{orderNumber}", orderHandler.GetByNumber)
		r.Get("/customer/{customerId}", orderHandler.ListByCustomer)
		r.Get("/{id}", orderHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)

			r.Get("/", orderHandler.List)
			r.Put("/{id}/status", orderHandler.UpdateStatus)
		})
	})

	// Profile endpoints (auth required)
	userHandler := NewUserHandler(svcs.Users, logger)
	r.Route("/api/users", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/me", userHandler.GetProfile)
		r.Put("/me", userHandler.UpdateProfile)
	})

	// Admin endpoints
	adminHandler := NewAdminHandler(svcs.Users, svcs.Orders, svcs.Dashboard, logger)
	activityHandler := NewActivityHandler(svcs.Activity, logger)
	salesHandler := NewSalesHandler(svcs.Sales, logger)
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(requireAdmin)

		r.Get("/customers", adminHandler.ListCustomers)
		r.Get("/customers/{id}/orders", adminHandler.ListCustomerOrders)

		r.Get("/dashboard/stats", adminHandler.DashboardStats)
		r.Get("/dashboard/top-spenders", adminHandler.TopSpenders)

		r.Get("/sales/by-category", salesHandler.ByCategory)

		r.Get("/activities", activityHandler.List)
		r.Get("/activities/notifications", activityHandler.Notifications)
		r.Get("/activities/notifications/count", activityHandler.UnreadCount)
		r.Post("/activities/notifications/mark-all-read", activityHandler.MarkAllRead)
	})

	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)
	}

	return r
}
