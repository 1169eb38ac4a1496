package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxPhotosPerReview is the number of photos kept per review; extra
	// entries are silently dropped.
	MaxPhotosPerReview = 5

	// MaxPhotoEncodedBytes is the size cap for a single encoded photo data URL.
	MaxPhotoEncodedBytes = 2 << 20 // 2 MiB

	// AnonymousUsername is used when a reviewer leaves the name blank.
	AnonymousUsername = "Anonymous"
)

// Review is a customer product review. New reviews start unapproved and only
// become storefront-visible after a merchant approves them.
type Review struct {
	ID        uuid.UUID  `json:"id"`
	ProductID string     `json:"productId"`
	Username  string     `json:"username"`
	UserEmail string     `json:"userEmail"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment"`
	OrderID   *string    `json:"orderId"`
	Photos    []string   `json:"photos"`
	Approved  bool       `json:"approved"`
	Reply     *string    `json:"reply"`
	ReplyAt   *time.Time `json:"replyAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// FilterPhotos keeps only well-formed, size-bounded photo data URLs and caps
// the result at MaxPhotosPerReview. Invalid and oversized entries are dropped
// without error.
func FilterPhotos(photos []string) []string {
	kept := make([]string, 0, MaxPhotosPerReview)
	for _, p := range photos {
		if !strings.HasPrefix(p, "data:image/") {
			continue
		}
		if len(p) > MaxPhotoEncodedBytes {
			continue
		}
		kept = append(kept, p)
		if len(kept) == MaxPhotosPerReview {
			break
		}
	}
	return kept
}

// RatingStats holds the aggregate statistics shown alongside a product's
// approved reviews. Distribution always carries all five buckets.
type RatingStats struct {
	TotalReviews  int         `json:"totalReviews"`
	AverageRating string      `json:"averageRating"`
	Distribution  map[int]int `json:"distribution"`
}

// FormatAverage renders an average rating with one decimal place. An empty
// review set renders as "0.0".
func FormatAverage(avg float64, total int) string {
	if total == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", avg)
}

// NewDistribution returns a rating distribution with every bucket present.
func NewDistribution() map[int]int {
	return map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
}
