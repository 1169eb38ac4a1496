package domain

import "time"

// ProductDetails is the catalog view of a product. Image is nil when the
// product has no featured image or could not be resolved.
type ProductDetails struct {
	Title string  `json:"title"`
	Image *string `json:"image"`
}

// ProductReviewCount pairs a product with how many reviews it has received.
type ProductReviewCount struct {
	ProductID    string  `json:"productId"`
	ProductTitle string  `json:"productTitle"`
	ProductImage *string `json:"productImage"`
	ReviewCount  int     `json:"reviewCount"`
}

// ReviewWithProduct is a review enriched with its resolved product details,
// as shown in the moderation table.
type ReviewWithProduct struct {
	Review
	ProductTitle string  `json:"productTitle"`
	ProductImage *string `json:"productImage"`
}

// DailyReviewCount is one day of review submissions.
type DailyReviewCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DashboardStats is the aggregate view shown on the merchant dashboard.
type DashboardStats struct {
	TotalReviews    int                `json:"totalReviews"`
	ApprovedReviews int                `json:"approvedReviews"`
	PendingReviews  int                `json:"pendingReviews"`
	AverageRating   string             `json:"averageRating"`
	ResponseRate    int                `json:"responseRate"`
	Distribution    map[int]int        `json:"distribution"`
	TopProducts     []ProductReviewCount `json:"topProducts"`
	ReviewsOverTime []DailyReviewCount `json:"reviewsOverTime"`
}

// DashboardTrendDays is the window of the reviews-over-time series.
const DashboardTrendDays = 30

// ZeroFilledSeries expands sparse daily counts into a contiguous series ending
// at the given day, with zeroes for days that saw no submissions. Dates use
// the YYYY-MM-DD form.
func ZeroFilledSeries(counts map[string]int, end time.Time, days int) []DailyReviewCount {
	series := make([]DailyReviewCount, 0, days)
	start := end.AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		series = append(series, DailyReviewCount{Date: date, Count: counts[date]})
	}
	return series
}
