package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/EhsanAfzal005/Shopify-Review-App/internal/domain"
	"github.com/EhsanAfzal005/Shopify-Review-App/internal/repository"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/database"
	apperrors "github.com/EhsanAfzal005/Shopify-Review-App/pkg/errors"
)

// ReviewRepository implements review persistence operations using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review into the database.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	photosJSON, err := json.Marshal(review.Photos)
	if err != nil {
		return fmt.Errorf("marshal photos: %w", err)
	}

	query := `
		INSERT INTO reviews (id, product_id, username, user_email, rating, comment, order_id, photos, approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.pool.Exec(ctx, query,
		review.ID,
		review.ProductID,
		review.Username,
		review.UserEmail,
		review.Rating,
		review.Comment,
		review.OrderID,
		photosJSON,
		review.Approved,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

const reviewColumns = `id, product_id, username, user_email, rating, comment, order_id, photos, approved, reply, reply_at, created_at, updated_at`

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1`, reviewColumns)

	var (
		rv         domain.Review
		photosJSON []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rv.ID,
		&rv.ProductID,
		&rv.Username,
		&rv.UserEmail,
		&rv.Rating,
		&rv.Comment,
		&rv.OrderID,
		&photosJSON,
		&rv.Approved,
		&rv.Reply,
		&rv.ReplyAt,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id.String())
		}
		return nil, fmt.Errorf("get review: %w", err)
	}

	if err := unmarshalPhotos(photosJSON, &rv); err != nil {
		return nil, err
	}

	return &rv, nil
}

// List returns reviews matching the filter, newest first, with the total count.
func (r *ReviewRepository) List(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.ProductID != nil {
		bare, gid := domain.ProductIDForms(*filter.ProductID)
		conditions = append(conditions, fmt.Sprintf("(product_id = $%d OR product_id = $%d)", argIndex, argIndex+1))
		args = append(args, bare, gid)
		argIndex += 2
	}

	if filter.Approved != nil {
		conditions = append(conditions, fmt.Sprintf("approved = $%d", argIndex))
		args = append(args, *filter.Approved)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s,
			   count(*) OVER() AS total_count
		FROM reviews
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		reviewColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var (
			rv         domain.Review
			photosJSON []byte
		)

		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.Username,
			&rv.UserEmail,
			&rv.Rating,
			&rv.Comment,
			&rv.OrderID,
			&photosJSON,
			&rv.Approved,
			&rv.Reply,
			&rv.ReplyAt,
			&rv.CreatedAt,
			&rv.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}

		if err := unmarshalPhotos(photosJSON, &rv); err != nil {
			return nil, 0, err
		}

		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

// SetApproved updates the approval flag of a review.
func (r *ReviewRepository) SetApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	query := `UPDATE reviews SET approved = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, approved)
	if err != nil {
		return fmt.Errorf("update review approval: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("review", id.String())
	}

	return nil
}

// SetReply records a merchant reply on a review.
func (r *ReviewRepository) SetReply(ctx context.Context, id uuid.UUID, reply string, repliedAt time.Time) error {
	query := `UPDATE reviews SET reply = $2, reply_at = $3, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, reply, repliedAt)
	if err != nil {
		return fmt.Errorf("update review reply: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("review", id.String())
	}

	return nil
}

// Delete removes a review by its ID.
func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("review", id.String())
	}

	return nil
}

// DeleteByProductID removes every review for a product. Stored rows may carry
// either ID form, so both are matched.
func (r *ReviewRepository) DeleteByProductID(ctx context.Context, productID string) (int64, error) {
	bare, gid := domain.ProductIDForms(productID)

	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE product_id = $1 OR product_id = $2`, bare, gid)
	if err != nil {
		return 0, fmt.Errorf("delete reviews for product: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ProductStats returns aggregates over a product's approved reviews.
func (r *ReviewRepository) ProductStats(ctx context.Context, productID string) (*repository.ProductRatingStats, error) {
	bare, gid := domain.ProductIDForms(productID)

	stats := &repository.ProductRatingStats{Distribution: domain.NewDistribution()}

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(AVG(rating), 0)
		FROM reviews
		WHERE (product_id = $1 OR product_id = $2) AND approved = TRUE`,
		bare, gid,
	).Scan(&stats.TotalReviews, &stats.AverageRating)
	if err != nil {
		return nil, fmt.Errorf("get product review summary: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT rating, COUNT(*)
		FROM reviews
		WHERE (product_id = $1 OR product_id = $2) AND approved = TRUE
		GROUP BY rating`,
		bare, gid,
	)
	if err != nil {
		return nil, fmt.Errorf("get product rating distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, fmt.Errorf("scan distribution row: %w", err)
		}
		if rating >= 1 && rating <= 5 {
			stats.Distribution[rating] = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate distribution rows: %w", err)
	}

	return stats, nil
}

// GlobalCounts returns the total, approved, and replied review counts.
func (r *ReviewRepository) GlobalCounts(ctx context.Context) (total, approved, replied int, err error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE approved),
		       COUNT(*) FILTER (WHERE reply IS NOT NULL)
		FROM reviews`

	if err := r.pool.QueryRow(ctx, query).Scan(&total, &approved, &replied); err != nil {
		return 0, 0, 0, fmt.Errorf("count reviews: %w", err)
	}

	return total, approved, replied, nil
}

// AverageRating returns the average rating across all reviews.
func (r *ReviewRepository) AverageRating(ctx context.Context) (float64, error) {
	var avg float64
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(AVG(rating), 0) FROM reviews`).Scan(&avg); err != nil {
		return 0, fmt.Errorf("average rating: %w", err)
	}
	return avg, nil
}

// RatingDistribution returns review counts bucketed by rating, with every
// bucket present.
func (r *ReviewRepository) RatingDistribution(ctx context.Context) (map[int]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT rating, COUNT(*) FROM reviews GROUP BY rating`)
	if err != nil {
		return nil, fmt.Errorf("rating distribution: %w", err)
	}
	defer rows.Close()

	dist := domain.NewDistribution()
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, fmt.Errorf("scan distribution row: %w", err)
		}
		if rating >= 1 && rating <= 5 {
			dist[rating] = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate distribution rows: %w", err)
	}

	return dist, nil
}

// TopProducts returns the most-reviewed products. Titles are resolved by the
// caller; only IDs and counts come from the store.
func (r *ReviewRepository) TopProducts(ctx context.Context, limit int) ([]domain.ProductReviewCount, error) {
	query := `
		SELECT product_id, COUNT(*) AS review_count
		FROM reviews
		GROUP BY product_id
		ORDER BY review_count DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	var top []domain.ProductReviewCount
	for rows.Next() {
		var p domain.ProductReviewCount
		if err := rows.Scan(&p.ProductID, &p.ReviewCount); err != nil {
			return nil, fmt.Errorf("scan top product row: %w", err)
		}
		top = append(top, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top product rows: %w", err)
	}

	if top == nil {
		top = []domain.ProductReviewCount{}
	}

	return top, nil
}

// DailyCounts returns per-day submission counts since the given time.
func (r *ReviewRepository) DailyCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	query := `
		SELECT TO_CHAR(created_at, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM reviews
		WHERE created_at >= $1
		GROUP BY day`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			day   string
			count int
		)
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("scan daily count row: %w", err)
		}
		counts[day] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily count rows: %w", err)
	}

	return counts, nil
}

func unmarshalPhotos(photosJSON []byte, rv *domain.Review) error {
	if photosJSON != nil {
		if err := json.Unmarshal(photosJSON, &rv.Photos); err != nil {
			return fmt.Errorf("unmarshal photos: %w", err)
		}
	}
	if rv.Photos == nil {
		rv.Photos = []string{}
	}
	return nil
}
