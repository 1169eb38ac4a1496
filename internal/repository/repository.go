package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/EhsanAfzal005/Shopify-Review-App/internal/domain"
)

// ReviewFilter defines filter criteria for listing reviews.
type ReviewFilter struct {
	// ProductID matches either ID form (bare numeric or gid://).
	ProductID *string
	Approved  *bool
	Page      int
	Limit     int
}

// ProductRatingStats holds raw per-product aggregates for approved reviews.
type ProductRatingStats struct {
	TotalReviews  int
	AverageRating float64
	Distribution  map[int]int
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review into the store.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)

	// List returns reviews matching the given filter along with the total count.
	List(ctx context.Context, filter ReviewFilter) ([]domain.Review, int, error)

	// SetApproved updates the approval flag of a review.
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) error

	// SetReply records a merchant reply on a review.
	SetReply(ctx context.Context, id uuid.UUID, reply string, repliedAt time.Time) error

	// Delete removes a review from the store by its identifier.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByProductID removes every review for a product, matching both ID
	// forms. It returns the number of rows removed.
	DeleteByProductID(ctx context.Context, productID string) (int64, error)

	// ProductStats returns aggregates over a product's approved reviews.
	ProductStats(ctx context.Context, productID string) (*ProductRatingStats, error)

	// GlobalCounts returns the total, approved, and replied review counts.
	GlobalCounts(ctx context.Context) (total, approved, replied int, err error)

	// AverageRating returns the average rating across all reviews.
	AverageRating(ctx context.Context) (float64, error)

	// RatingDistribution returns review counts bucketed by rating.
	RatingDistribution(ctx context.Context) (map[int]int, error)

	// TopProducts returns the most-reviewed products.
	TopProducts(ctx context.Context, limit int) ([]domain.ProductReviewCount, error)

	// DailyCounts returns per-day submission counts since the given time,
	// keyed by YYYY-MM-DD date.
	DailyCounts(ctx context.Context, since time.Time) (map[string]int, error)
}
