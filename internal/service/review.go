package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/EhsanAfzal005/Shopify-Review-App/internal/domain"
	"github.com/EhsanAfzal005/Shopify-Review-App/internal/repository"
	apperrors "github.com/EhsanAfzal005/Shopify-Review-App/pkg/errors"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/pagination"
)

// AdminPageSize is the fixed page size for the moderation list.
const AdminPageSize = 20

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	ProductID string
	Username  string
	UserEmail string
	Rating    int
	Comment   string
	OrderID   *string
	Photos    []string
}

// ProductReviewsResult is the storefront view of a product's approved reviews.
type ProductReviewsResult struct {
	Reviews    []domain.Review     `json:"reviews"`
	Stats      *domain.RatingStats `json:"stats"`
	Pagination *pagination.Meta    `json:"pagination"`
}

// AdminReviewsResult is the moderation view of all reviews.
type AdminReviewsResult struct {
	Reviews    []domain.Review  `json:"reviews"`
	Pagination *pagination.Meta `json:"pagination"`
}

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	repo   repository.ReviewRepository
	logger *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ReviewRepository, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:   repo,
		logger: logger,
	}
}

// SubmitReview stores a new customer review. Reviews start unapproved; a blank
// username becomes Anonymous; photos are filtered and capped. The rating and
// email are stored as submitted, without range or format checks.
func (s *ReviewService) SubmitReview(ctx context.Context, input *SubmitReviewInput) (*domain.Review, error) {
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("productId is required")
	}
	if input.Comment == "" {
		return nil, apperrors.InvalidInput("comment is required")
	}
	if input.UserEmail == "" {
		return nil, apperrors.InvalidInput("email is required")
	}

	username := input.Username
	if username == "" {
		username = domain.AnonymousUsername
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:        uuid.New(),
		ProductID: input.ProductID,
		Username:  username,
		UserEmail: input.UserEmail,
		Rating:    input.Rating,
		Comment:   input.Comment,
		OrderID:   input.OrderID,
		Photos:    domain.FilterPhotos(input.Photos),
		Approved:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("submit review: %w", err)
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", review.ID.String()),
		slog.String("product_id", review.ProductID),
		slog.Int("rating", review.Rating),
		slog.Int("photos", len(review.Photos)),
	)

	return review, nil
}

// ListProductReviews returns a page of a product's approved reviews along with
// aggregate rating statistics.
func (s *ReviewService) ListProductReviews(ctx context.Context, productID string, params pagination.Params) (*ProductReviewsResult, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("productId is required")
	}

	approved := true
	reviews, total, err := s.repo.List(ctx, repository.ReviewFilter{
		ProductID: &productID,
		Approved:  &approved,
		Page:      params.Page,
		Limit:     params.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list product reviews: %w", err)
	}

	raw, err := s.repo.ProductStats(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product stats: %w", err)
	}

	stats := &domain.RatingStats{
		TotalReviews:  raw.TotalReviews,
		AverageRating: domain.FormatAverage(raw.AverageRating, raw.TotalReviews),
		Distribution:  raw.Distribution,
	}

	meta := pagination.NewMeta(total, params)

	return &ProductReviewsResult{
		Reviews:    reviews,
		Stats:      stats,
		Pagination: &meta,
	}, nil
}

// ListAllReviews returns one moderation page of every review, newest first.
func (s *ReviewService) ListAllReviews(ctx context.Context, page int) (*AdminReviewsResult, error) {
	if page <= 0 {
		page = 1
	}

	reviews, total, err := s.repo.List(ctx, repository.ReviewFilter{
		Page:  page,
		Limit: AdminPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	meta := pagination.NewMeta(total, pagination.Params{Page: page, Limit: AdminPageSize})

	return &AdminReviewsResult{
		Reviews:    reviews,
		Pagination: &meta,
	}, nil
}

// GetReview returns a single review by ID.
func (s *ReviewService) GetReview(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return review, nil
}

// SetApproved sets the approval flag on a review. Re-approving an approved
// review is a no-op with the same outcome.
func (s *ReviewService) SetApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	if err := s.repo.SetApproved(ctx, id, approved); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "review approval updated",
		slog.String("review_id", id.String()),
		slog.Bool("approved", approved),
	)

	return nil
}

// Reply records a merchant reply on a review.
func (s *ReviewService) Reply(ctx context.Context, id uuid.UUID, reply string) error {
	if reply == "" {
		return apperrors.InvalidInput("reply is required")
	}

	if err := s.repo.SetReply(ctx, id, reply, time.Now().UTC()); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "review reply recorded", slog.String("review_id", id.String()))

	return nil
}

// Delete removes a single review.
func (s *ReviewService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "review deleted", slog.String("review_id", id.String()))

	return nil
}

// DeleteForProduct removes every review of a deleted product, whichever ID
// form the rows were stored with.
func (s *ReviewService) DeleteForProduct(ctx context.Context, productID string) (int64, error) {
	if productID == "" {
		return 0, apperrors.InvalidInput("productId is required")
	}

	deleted, err := s.repo.DeleteByProductID(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("delete reviews for product: %w", err)
	}

	s.logger.InfoContext(ctx, "product reviews deleted",
		slog.String("product_id", productID),
		slog.Int64("deleted", deleted),
	)

	return deleted, nil
}
