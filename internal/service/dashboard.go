package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/EhsanAfzal005/Shopify-Review-App/internal/domain"
	"github.com/EhsanAfzal005/Shopify-Review-App/internal/repository"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/pagination"
)

// TopProductsLimit is how many most-reviewed products the dashboard shows.
const TopProductsLimit = 5

// UnknownProductTitle is the placeholder used when a product cannot be
// resolved, either because it was deleted or the catalog lookup failed.
const UnknownProductTitle = "Unknown Product"

// CatalogResolver looks up product titles and images in the shop's catalog.
type CatalogResolver interface {
	ProductDetails(ctx context.Context, shop, accessToken string, productIDs []string) (map[string]domain.ProductDetails, error)
}

// TokenSource provides the offline Admin API access token for a shop.
type TokenSource interface {
	OfflineAccessToken(ctx context.Context, shop string) (string, error)
}

// DashboardOverview is one dashboard load: shop-wide aggregates plus a page
// of recent reviews with their products resolved.
type DashboardOverview struct {
	Stats      *domain.DashboardStats     `json:"stats"`
	Reviews    []domain.ReviewWithProduct `json:"reviews"`
	Pagination *pagination.Meta           `json:"pagination"`
}

// DashboardService assembles the merchant dashboard aggregates. Each aggregate
// comes from its own query; the dashboard tolerates slight skew between them
// rather than paying for a snapshot.
type DashboardService struct {
	repo    repository.ReviewRepository
	catalog CatalogResolver
	tokens  TokenSource
	logger  *slog.Logger

	now func() time.Time
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(repo repository.ReviewRepository, catalog CatalogResolver, tokens TokenSource, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		repo:    repo,
		catalog: catalog,
		tokens:  tokens,
		logger:  logger,
		now:     time.Now,
	}
}

// Overview computes the dashboard for a shop. Product resolution covers the
// recent-review page and the top products in one batch lookup; a failing
// lookup degrades to placeholders instead of failing the dashboard.
func (s *DashboardService) Overview(ctx context.Context, shop string, page int) (*DashboardOverview, error) {
	if page <= 0 {
		page = 1
	}

	total, approved, replied, err := s.repo.GlobalCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}

	avg, err := s.repo.AverageRating(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard average rating: %w", err)
	}

	dist, err := s.repo.RatingDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard distribution: %w", err)
	}

	top, err := s.repo.TopProducts(ctx, TopProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("dashboard top products: %w", err)
	}

	reviews, totalRows, err := s.repo.List(ctx, repository.ReviewFilter{
		Page:  page,
		Limit: AdminPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard reviews: %w", err)
	}

	end := s.now().UTC()
	daily, err := s.repo.DailyCounts(ctx, end.AddDate(0, 0, -(domain.DashboardTrendDays-1)).Truncate(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("dashboard daily counts: %w", err)
	}

	// One batch lookup covers the review page and the top products.
	ids := make([]string, 0, len(reviews)+len(top))
	for _, r := range reviews {
		ids = append(ids, r.ProductID)
	}
	for _, p := range top {
		ids = append(ids, p.ProductID)
	}
	products := s.resolveProducts(ctx, shop, ids)

	for i := range top {
		d := productOrPlaceholder(products, top[i].ProductID)
		top[i].ProductTitle = d.Title
		top[i].ProductImage = d.Image
	}

	enriched := make([]domain.ReviewWithProduct, 0, len(reviews))
	for _, r := range reviews {
		d := productOrPlaceholder(products, r.ProductID)
		enriched = append(enriched, domain.ReviewWithProduct{
			Review:       r,
			ProductTitle: d.Title,
			ProductImage: d.Image,
		})
	}

	responseRate := 0
	if total > 0 {
		responseRate = int(math.Round(float64(replied) / float64(total) * 100))
	}

	meta := pagination.NewMeta(totalRows, pagination.Params{Page: page, Limit: AdminPageSize})

	return &DashboardOverview{
		Stats: &domain.DashboardStats{
			TotalReviews:    total,
			ApprovedReviews: approved,
			PendingReviews:  total - approved,
			AverageRating:   domain.FormatAverage(avg, total),
			ResponseRate:    responseRate,
			Distribution:    dist,
			TopProducts:     top,
			ReviewsOverTime: domain.ZeroFilledSeries(daily, end, domain.DashboardTrendDays),
		},
		Reviews:    enriched,
		Pagination: &meta,
	}, nil
}

// ResolveProduct looks up a single product for the review detail view,
// degrading to the placeholder on any failure.
func (s *DashboardService) ResolveProduct(ctx context.Context, shop, productID string) domain.ProductDetails {
	products := s.resolveProducts(ctx, shop, []string{productID})
	return productOrPlaceholder(products, productID)
}

// resolveProducts batch-resolves product details, keyed by bare numeric ID.
// Missing sessions and catalog failures return an empty map so callers fall
// back to placeholders.
func (s *DashboardService) resolveProducts(ctx context.Context, shop string, productIDs []string) map[string]domain.ProductDetails {
	if len(productIDs) == 0 {
		return map[string]domain.ProductDetails{}
	}

	seen := make(map[string]struct{}, len(productIDs))
	unique := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		key := domain.NumericProductID(id)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, id)
	}

	token, err := s.tokens.OfflineAccessToken(ctx, shop)
	if err != nil {
		s.logger.WarnContext(ctx, "no offline session for catalog lookup",
			slog.String("shop", shop),
			slog.String("error", err.Error()),
		)
		return map[string]domain.ProductDetails{}
	}

	products, err := s.catalog.ProductDetails(ctx, shop, token, unique)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog lookup failed",
			slog.String("shop", shop),
			slog.String("error", err.Error()),
		)
		return map[string]domain.ProductDetails{}
	}

	return products
}

func productOrPlaceholder(products map[string]domain.ProductDetails, productID string) domain.ProductDetails {
	if d, ok := products[domain.NumericProductID(productID)]; ok {
		return d
	}
	return domain.ProductDetails{Title: UnknownProductTitle}
}
