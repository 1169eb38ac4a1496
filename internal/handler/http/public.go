package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/EhsanAfzal005/Shopify-Review-App/internal/domain"
	"github.com/EhsanAfzal005/Shopify-Review-App/internal/service"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/httputil"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/pagination"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/validator"
)

// PublicHandler handles the storefront review endpoints served through the
// Shopify app proxy.
type PublicHandler struct {
	reviews *service.ReviewService
	logger  *slog.Logger
}

// NewPublicHandler creates a new storefront HTTP handler.
func NewPublicHandler(reviews *service.ReviewService, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{
		reviews: reviews,
		logger:  logger,
	}
}

// --- Request DTOs ---

// flexibleInt accepts a JSON number or a numeric string. Storefront forms
// submit ratings as strings.
type flexibleInt int

func (f *flexibleInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*f = 0
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		*f = flexibleInt(v)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexibleInt(int(v))
	return nil
}

// SubmitReviewRequest is the JSON request body for submitting a review. The
// widget posts customerName/email while older integrations post
// username/userEmail; both key sets are accepted.
type SubmitReviewRequest struct {
	ProductID    string      `json:"productId" validate:"required"`
	Rating       flexibleInt `json:"rating" validate:"required"`
	Comment      string      `json:"comment" validate:"required"`
	Email        string      `json:"email" validate:"required_without=UserEmail"`
	UserEmail    string      `json:"userEmail"`
	Username     string      `json:"username"`
	CustomerName string      `json:"customerName"`
	OrderID      *string     `json:"orderId"`
	Photos       []string    `json:"photos"`
}

func (r *SubmitReviewRequest) name() string {
	if r.Username != "" {
		return r.Username
	}
	return r.CustomerName
}

func (r *SubmitReviewRequest) email() string {
	if r.UserEmail != "" {
		return r.UserEmail
	}
	return r.Email
}

func (r *SubmitReviewRequest) fromForm(form url.Values) {
	r.ProductID = form.Get("productId")
	r.Username = form.Get("username")
	r.CustomerName = form.Get("customerName")
	r.UserEmail = form.Get("userEmail")
	r.Email = form.Get("email")
	r.Comment = form.Get("comment")
	if v := form.Get("orderId"); v != "" {
		r.OrderID = &v
	}
	r.Photos = form["photos"]
	if v := form.Get("rating"); v != "" {
		// same leniency as the JSON path; an unparseable rating is
		// treated as absent
		_ = r.Rating.UnmarshalJSON([]byte(v))
	}
}

// --- Handlers ---

// ListReviews handles GET /apps/reviews. It returns a page of a product's
// approved reviews with aggregate stats. A missing productId yields an empty
// result set rather than an error, so a misconfigured widget renders "no
// reviews" instead of breaking the storefront.
func (h *PublicHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("productId")
	if productID == "" {
		httputil.WriteJSON(w, http.StatusOK, service.ProductReviewsResult{Reviews: []domain.Review{}})
		return
	}

	result, err := h.reviews.ListProductReviews(r.Context(), productID, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// maxSubmitBody caps the submission payload. Photo batches dominate its
// size; the cap sits well above what a full set of valid photos can occupy
// so oversized entries are dropped by the filter, not rejected at the door.
const maxSubmitBody = 32 << 20

// SubmitReview handles POST /apps/reviews. Theme app blocks submit JSON;
// plain storefront forms post urlencoded or multipart bodies. Both are
// accepted.
func (h *PublicHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubmitBody)

	var req SubmitReviewRequest
	switch ct := r.Header.Get("Content-Type"); {
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid request body"})
			return
		}
		req.fromForm(r.PostForm)
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxSubmitBody); err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid request body"})
			return
		}
		req.fromForm(r.PostForm)
	default:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid request body"})
			return
		}
	}

	if err := validator.Validate(&req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.SubmitReviewInput{
		ProductID: req.ProductID,
		Username:  req.name(),
		UserEmail: req.email(),
		Rating:    int(req.Rating),
		Comment:   req.Comment,
		OrderID:   req.OrderID,
		Photos:    req.Photos,
	}

	if _, err := h.reviews.SubmitReview(r.Context(), input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	// approval state is not exposed beyond the pending message
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{
		Success: true,
		Message: "Review submitted for approval",
	})
}
