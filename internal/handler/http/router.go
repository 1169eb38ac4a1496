package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/EhsanAfzal005/Shopify-Review-App/internal/shopify"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/health"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/middleware"
)

// RouterConfig carries the wiring the router needs beyond the handlers.
type RouterConfig struct {
	APISecret   string
	ServiceName string
	CORS        middleware.CORSConfig
}

// NewRouter creates a chi router with all review service routes registered.
func NewRouter(
	public *PublicHandler,
	admin *AdminHandler,
	webhooks *WebhookHandler,
	verifier *shopify.SessionTokenVerifier,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	// Health and metrics endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Storefront endpoints, reached through the Shopify app proxy.
	// CORS answers the preflight before auth runs.
	r.Route("/apps/reviews", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORS))
		r.Use(ProxyAuth(cfg.APISecret, logger))
		r.Use(ContentTypeJSON)

		r.Get("/", public.ListReviews)
		r.Post("/", public.SubmitReview)
		r.Options("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	// Embedded admin endpoints, session-token authenticated
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(SessionAuth(verifier, logger))
		r.Use(ContentTypeJSON)

		r.Get("/reviews", admin.ListReviews)
		r.Post("/reviews", admin.Action)
		r.Get("/reviews/{id}", admin.GetReview)
		r.Get("/dashboard", admin.Dashboard)
	})

	// Webhooks verify their own HMAC over the raw body
	r.Post("/webhooks/products/delete", webhooks.ProductsDelete)

	return r
}
