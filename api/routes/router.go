package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopkart-labs/shopkart-backend/api/controllers"
	"github.com/shopkart-labs/shopkart-backend/api/middleware"
	"github.com/shopkart-labs/shopkart-backend/internal/accounts"
	cartsvc "github.com/shopkart-labs/shopkart-backend/internal/cart"
	"github.com/shopkart-labs/shopkart-backend/internal/catalog"
	"github.com/shopkart-labs/shopkart-backend/internal/coupons"
	"github.com/shopkart-labs/shopkart-backend/internal/maintenance"
	"github.com/shopkart-labs/shopkart-backend/internal/payments"
	"github.com/shopkart-labs/shopkart-backend/pkg/auth/session"
	"github.com/shopkart-labs/shopkart-backend/pkg/config"
	"github.com/shopkart-labs/shopkart-backend/pkg/logger"
	"github.com/shopkart-labs/shopkart-backend/pkg/metrics"
	"github.com/shopkart-labs/shopkart-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             controllers.Pinger
	Redis          *redis.Client
	SessionManager session.AccessSessionChecker
	HTTPMetrics    *metrics.HTTPMetrics

	Accounts    accounts.Service
	Catalog     catalog.Service
	Cart        cartsvc.Service
	Coupons     coupons.Service
	Payments    payments.Service
	Maintenance maintenance.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(nil),
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

	authRequired := middleware.Auth(cfg.JWT, deps.SessionManager, logg)
	shopper := middleware.CartIdentity(cfg.JWT, deps.SessionManager, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.Accounts, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.Accounts, logg))
		r.Get("/activate/{token}", controllers.AuthActivate(deps.Accounts, logg))

		r.Group(func(r chi.Router) {
			r.Use(authRequired)
			r.Post("/logout", controllers.AuthLogout(deps.Accounts, logg))
			r.Get("/me", controllers.AuthMe(deps.Accounts, logg))
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.Catalog, logg))
		r.Get("/{slug}", controllers.GetProduct(deps.Catalog, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(shopper)
		r.Get("/", controllers.GetCart(deps.Cart, logg))
		r.Get("/count", controllers.GetCartCount(deps.Cart, logg))
		r.Post("/items", controllers.AddCartItem(deps.Cart, logg))
		r.Patch("/items/{itemID}", controllers.UpdateCartItem(deps.Cart, logg))
		r.Delete("/items/{itemID}", controllers.RemoveCartItem(deps.Cart, logg))
		r.Post("/coupon", controllers.ApplyCartCoupon(deps.Cart, logg))
		r.Delete("/coupon", controllers.RemoveCartCoupon(deps.Cart, logg))
	})

	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Use(shopper)
		r.Post("/initiate", controllers.InitiatePayment(deps.Payments, logg))
		r.Post("/verify", controllers.VerifyPayment(deps.Payments, logg))
		r.Get("/{paymentID}", controllers.GetPayment(deps.Payments, logg))
		r.Get("/{paymentID}/invoice", controllers.DownloadInvoice(deps.Payments, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(authRequired, middleware.RequireAdmin(logg))
		r.Post("/products", controllers.AdminCreateProduct(deps.Catalog, logg))
		r.Post("/coupons", controllers.AdminCreateCoupon(deps.Coupons, logg))
		r.Post("/maintenance/flush", controllers.AdminFlush(deps.Maintenance, logg))
	})

	return r
}
