package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/EhsanAfzal005/Shopify-Review-App/internal/service"
	"github.com/EhsanAfzal005/Shopify-Review-App/internal/shopify"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/httputil"
)

// WebhookHandler processes Shopify webhook deliveries.
type WebhookHandler struct {
	reviews   *service.ReviewService
	tokens    service.TokenSource
	apiSecret string
	logger    *slog.Logger
}

// NewWebhookHandler creates a new webhook HTTP handler.
func NewWebhookHandler(reviews *service.ReviewService, tokens service.TokenSource, apiSecret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		reviews:   reviews,
		tokens:    tokens,
		apiSecret: apiSecret,
		logger:    logger,
	}
}

// productDeletePayload is the body Shopify sends for products/delete.
type productDeletePayload struct {
	ID json.Number `json:"id"`
}

// ProductsDelete handles POST /webhooks/products/delete. When a product is
// removed from the catalog its reviews are cascaded away.
//
// Shopify retries deliveries that do not return 2xx. A shop without an
// offline session has uninstalled the app, so that case still returns 200 to
// stop redelivery.
func (h *WebhookHandler) ProductsDelete(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "unreadable body"})
		return
	}

	if !shopify.VerifyWebhookHMAC(body, r.Header.Get(shopify.HeaderWebhookHMAC), h.apiSecret) {
		h.logger.WarnContext(r.Context(), "rejected webhook with bad hmac",
			slog.String("topic", r.Header.Get(shopify.HeaderWebhookTopic)),
		)
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "Unauthorized"})
		return
	}

	if topic := r.Header.Get(shopify.HeaderWebhookTopic); topic != "products/delete" {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "unhandled topic: " + topic})
		return
	}

	shop := r.Header.Get(shopify.HeaderWebhookShop)
	if _, err := h.tokens.OfflineAccessToken(r.Context(), shop); err != nil {
		h.logger.InfoContext(r.Context(), "webhook for uninstalled shop, skipping",
			slog.String("shop", shop),
		)
		w.WriteHeader(http.StatusOK)
		return
	}

	var payload productDeletePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid payload"})
		return
	}

	// A payload without an id has nothing to cascade. Returning non-2xx
	// would only make Shopify redeliver it.
	if payload.ID.String() == "" {
		h.logger.WarnContext(r.Context(), "product delete webhook without product id",
			slog.String("shop", shop),
		)
		w.WriteHeader(http.StatusOK)
		return
	}

	deleted, err := h.reviews.DeleteForProduct(r.Context(), payload.ID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "product delete webhook processed",
		slog.String("shop", shop),
		slog.String("product_id", payload.ID.String()),
		slog.Int64("reviews_deleted", deleted),
	)

	w.WriteHeader(http.StatusOK)
}
