package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thouesa/thouesa-backend/api/controllers"
	"github.com/thouesa/thouesa-backend/api/middleware"
	"github.com/thouesa/thouesa-backend/internal/finance"
	"github.com/thouesa/thouesa-backend/internal/orders"
	"github.com/thouesa/thouesa-backend/internal/payments"
	"github.com/thouesa/thouesa-backend/internal/pricing"
	"github.com/thouesa/thouesa-backend/internal/settings"
	"github.com/thouesa/thouesa-backend/pkg/config"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	"github.com/thouesa/thouesa-backend/pkg/logger"
	"github.com/thouesa/thouesa-backend/pkg/metrics"
	pkgredis "github.com/thouesa/thouesa-backend/pkg/redis"
)

// Dependencies carries everything the HTTP surface needs.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	Redis       *pkgredis.Client
	Readiness   []controllers.Dependency
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	Orders   orders.Service
	Payments payments.Service
	Pricing  *pricing.Engine
	Rules    pricing.RuleService
	Settings settings.Service
	Finance  finance.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	publicPolicy := middleware.RateLimitPolicy{
		Name:   "public",
		Window: cfg.RateLimit.PublicWindow,
		Limit:  cfg.RateLimit.PublicIPLimit,
	}
	var idempotencyStore pkgredis.IdempotencyStore
	publicLimit := func(next http.Handler) http.Handler { return next }
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
		publicLimit = middleware.RateLimit(publicPolicy, deps.Redis, logg)
	}

	idempotent := middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL, logg)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Logging(logg, deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness...))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(publicLimit)
			r.Get("/pricing/estimate", controllers.PricingEstimate(deps.Pricing, logg))
			r.Get("/track/{orderNumber}", controllers.TrackOrder(deps.Orders, logg))
			r.Get("/settings/public", controllers.PublicSettings(deps.Settings, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/orders", func(r chi.Router) {
				r.With(idempotent).Post("/", controllers.CreateOrder(deps.Orders, logg))
				r.Get("/", controllers.ListOrders(deps.Orders, logg))
				r.Get("/{id}", controllers.GetOrder(deps.Orders, logg))
				r.With(idempotent).Post("/{id}/receipt", controllers.SubmitReceipt(deps.Payments, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))

				r.Get("/dashboard/summary", controllers.AdminDashboardSummary(deps.Finance, logg))
				r.Get("/finance/report", controllers.AdminFinanceReport(deps.Finance, logg))

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", controllers.ListOrders(deps.Orders, logg))
					r.Get("/{id}", controllers.GetOrder(deps.Orders, logg))
					r.Patch("/{id}/status", controllers.AdminUpdateOrderStatus(deps.Orders, logg))
					r.With(idempotent).Post("/{id}/review-payment", controllers.AdminReviewPayment(deps.Payments, logg))
					r.With(idempotent).Post("/{id}/confirm-payment", controllers.AdminConfirmPayment(deps.Payments, logg))
					r.Post("/{id}/ship", controllers.AdminShipOrder(deps.Orders, logg))
					r.Get("/{id}/logs", controllers.AdminOrderLogs(deps.Orders, logg))
					r.Get("/{id}/payments", controllers.AdminOrderPayments(deps.Payments, logg))
				})

				r.Get("/settings", controllers.AdminGetSettings(deps.Settings, logg))
				r.Put("/settings", controllers.AdminUpdateSettings(deps.Settings, logg))

				r.Route("/pricing-rules", func(r chi.Router) {
					r.Get("/", controllers.AdminListPricingRules(deps.Rules, logg))
					r.Post("/", controllers.AdminCreatePricingRule(deps.Rules, logg))
					r.Put("/{id}", controllers.AdminUpdatePricingRule(deps.Rules, logg))
					r.Delete("/{id}", controllers.AdminDeletePricingRule(deps.Rules, logg))
				})
			})
		})
	})

	return r
}
