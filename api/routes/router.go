package routes

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/poojakit/poojakit-backend/api/controllers"
	"github.com/poojakit/poojakit-backend/api/middleware"
	"github.com/poojakit/poojakit-backend/internal/auth"
	"github.com/poojakit/poojakit-backend/internal/catalog"
	"github.com/poojakit/poojakit-backend/internal/orders"
	"github.com/poojakit/poojakit-backend/pkg/config"
	"github.com/poojakit/poojakit-backend/pkg/db"
	"github.com/poojakit/poojakit-backend/pkg/logger"
	"github.com/poojakit/poojakit-backend/pkg/metrics"
	"github.com/poojakit/poojakit-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Cfg     *config.Config
	Logger  *logger.Logger
	Metrics *metrics.HTTPMetrics
	// Registry, when set, exposes /metrics for scraping.
	Registry *prometheus.Registry

	AuthService    auth.Service
	CatalogService catalog.Service
	OrderService   orders.Service

	// RateLimitStore may be nil; the auth endpoints then run unthrottled.
	RateLimitStore *redis.Client
	// HealthDeps are pinged by the readiness endpoint, keyed by name.
	HealthDeps map[string]db.Pinger
}

// NewRouter wires middleware, public routes and the admin subtree.
func NewRouter(params RouterParams) (chi.Router, error) {
	if params.Cfg == nil || params.Logger == nil {
		return nil, fmt.Errorf("config and logger are required")
	}
	if params.AuthService == nil || params.CatalogService == nil || params.OrderService == nil {
		return nil, fmt.Errorf("auth, catalog and order services are required")
	}

	logg := params.Logger

	r := chi.NewRouter()
	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg, params.Metrics))
	r.Use(middleware.CORS())

	r.Get("/health/live", controllers.Liveness())
	r.Get("/health/ready", controllers.Readiness(logg, params.HealthDeps))
	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	authParams := controllers.AuthControllerParams{
		Service:       params.AuthService,
		JWTCfg:        params.Cfg.JWT,
		SecureCookies: params.Cfg.App.IsProd(),
		Logger:        logg,
	}

	rl := params.Cfg.AuthRateLimit
	loginPolicy := middleware.NewAuthRateLimitPolicy("login", rl.LoginWindow, rl.LoginIPLimit, rl.LoginEmailLimit)
	signupPolicy := middleware.NewAuthRateLimitPolicy("signup", rl.SignupWindow, rl.SignupIPLimit, rl.SignupEmailLimit)

	r.Route("/api", func(api chi.Router) {
		api.Get("/products", controllers.ListProducts(params.CatalogService, logg))

		api.Group(func(g chi.Router) {
			if params.RateLimitStore != nil {
				g.Use(middleware.AuthRateLimit(signupPolicy, params.RateLimitStore, logg))
			}
			g.Post("/signup", controllers.Signup(authParams))
		})
		api.Group(func(g chi.Router) {
			if params.RateLimitStore != nil {
				g.Use(middleware.AuthRateLimit(loginPolicy, params.RateLimitStore, logg))
			}
			g.Post("/login", controllers.Login(authParams))
		})
		api.Post("/logout", controllers.Logout(authParams))

		api.Post("/order", controllers.PlaceOrder(params.OrderService, params.AuthService, logg))
		api.Get("/track/{id}", controllers.TrackOrder(params.OrderService, logg))

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.Auth(params.AuthService, logg))
			admin.Use(middleware.RequireAdmin(logg))

			admin.Get("/orders", controllers.ListOrders(params.OrderService, logg))
			admin.Put("/order/{id}/status", controllers.UpdateOrderStatus(params.OrderService, logg))
			admin.Get("/export", controllers.ExportOrders(params.OrderService, logg))
		})
	})

	return r, nil
}
