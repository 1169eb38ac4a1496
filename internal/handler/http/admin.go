package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/EhsanAfzal005/Shopify-Review-App/internal/service"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/httputil"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/logger"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/validator"
)

// AdminHandler handles the embedded admin moderation endpoints.
type AdminHandler struct {
	reviews   *service.ReviewService
	dashboard *service.DashboardService
	logger    *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(reviews *service.ReviewService, dashboard *service.DashboardService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		reviews:   reviews,
		dashboard: dashboard,
		logger:    logger,
	}
}

// Moderation action types.
const (
	ActionDelete  = "delete"
	ActionApprove = "approve"
	ActionReply   = "reply"
)

// ActionRequest is the JSON request body for moderation actions.
type ActionRequest struct {
	ActionType string `json:"actionType" validate:"required"`
	ID         string `json:"id" validate:"required"`

	// Approved applies to the approve action; omitted means approve.
	Approved *bool `json:"approved"`

	// Reply applies to the reply action.
	Reply string `json:"reply"`
}

// ListReviews handles GET /api/admin/reviews. Every review is returned,
// pending ones included, twenty per page.
func (h *AdminHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	result, err := h.reviews.ListAllReviews(r.Context(), pageParam(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetReview handles GET /api/admin/reviews/{id}. The detail view includes the
// resolved product, with a placeholder when the product is gone or the
// catalog lookup fails.
func (h *AdminHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	review, err := h.reviews.GetReview(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product := h.dashboard.ResolveProduct(r.Context(), logger.ShopFromContext(r.Context()), review.ProductID)

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"review":  review,
		"product": product,
	})
}

// Action handles POST /api/admin/reviews, dispatching on actionType.
func (h *AdminHandler) Action(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := validator.Validate(&req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	id, ok := httputil.ParseUUID(w, req.ID)
	if !ok {
		return
	}

	var (
		err     error
		message string
	)

	switch req.ActionType {
	case ActionDelete:
		err = h.reviews.Delete(r.Context(), id)
		message = "Review deleted successfully"
	case ActionApprove:
		approved := true
		if req.Approved != nil {
			approved = *req.Approved
		}
		err = h.reviews.SetApproved(r.Context(), id, approved)
		message = "Review approval updated"
	case ActionReply:
		err = h.reviews.Reply(r.Context(), id, req.Reply)
		message = "Reply saved successfully"
	default:
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "Invalid action type"})
		return
	}

	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Success: true, Message: message})
}

// Dashboard handles GET /api/admin/dashboard. It returns shop-wide aggregates
// alongside one page of recent reviews with their products resolved.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	shop := logger.ShopFromContext(r.Context())

	overview, err := h.dashboard.Overview(r.Context(), shop, pageParam(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, overview)
}

func pageParam(r *http.Request) int {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	return page
}
