package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/EhsanAfzal005/Shopify-Review-App/internal/domain"
	"github.com/EhsanAfzal005/Shopify-Review-App/internal/repository"
	"github.com/EhsanAfzal005/Shopify-Review-App/internal/service"
	"github.com/EhsanAfzal005/Shopify-Review-App/internal/shopify"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/health"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/middleware"
)

const (
	testAPIKey    = "test-api-key"
	testAPISecret = "test-api-secret"
	testShop      = "demo-shop.myshopify.com"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// ─── mocks ───────────────────────────────────────────────────────────────────

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) List(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) SetApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	args := m.Called(ctx, id, approved)
	return args.Error(0)
}

func (m *mockReviewRepository) SetReply(ctx context.Context, id uuid.UUID, reply string, repliedAt time.Time) error {
	args := m.Called(ctx, id, reply, repliedAt)
	return args.Error(0)
}

func (m *mockReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockReviewRepository) DeleteByProductID(ctx context.Context, productID string) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReviewRepository) ProductStats(ctx context.Context, productID string) (*repository.ProductRatingStats, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ProductRatingStats), args.Error(1)
}

func (m *mockReviewRepository) GlobalCounts(ctx context.Context) (int, int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Int(2), args.Error(3)
}

func (m *mockReviewRepository) AverageRating(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockReviewRepository) RatingDistribution(ctx context.Context) (map[int]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]int), args.Error(1)
}

func (m *mockReviewRepository) TopProducts(ctx context.Context, limit int) ([]domain.ProductReviewCount, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProductReviewCount), args.Error(1)
}

func (m *mockReviewRepository) DailyCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

type mockTokens struct {
	mock.Mock
}

func (m *mockTokens) OfflineAccessToken(ctx context.Context, shop string) (string, error) {
	args := m.Called(ctx, shop)
	return args.String(0), args.Error(1)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) ProductDetails(ctx context.Context, shop, accessToken string, productIDs []string) (map[string]domain.ProductDetails, error) {
	args := m.Called(ctx, shop, accessToken, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.ProductDetails), args.Error(1)
}

// ─── fixtures ────────────────────────────────────────────────────────────────

type testEnv struct {
	router  http.Handler
	repo    *mockReviewRepository
	tokens  *mockTokens
	catalog *mockCatalog
}

// newTestEnv wires the full router over mocked persistence. An empty
// apiSecret disables proxy signature verification, matching local dev.
func newTestEnv(apiSecret string) *testEnv {
	l := slog.New(slog.NewJSONHandler(io.Discard, nil))

	repo := &mockReviewRepository{}
	tokens := &mockTokens{}
	catalog := &mockCatalog{}

	reviews := service.NewReviewService(repo, l)
	dashboard := service.NewDashboardService(repo, catalog, tokens, l)

	router := NewRouter(
		NewPublicHandler(reviews, l),
		NewAdminHandler(reviews, dashboard, l),
		NewWebhookHandler(reviews, tokens, apiSecret, l),
		shopify.NewSessionTokenVerifier(testAPIKey, testAPISecret),
		health.NewHandler(),
		RouterConfig{
			APISecret:   apiSecret,
			ServiceName: "reviews-test",
			CORS:        middleware.DefaultCORSConfig(),
		},
		l,
	)

	return &testEnv{router: router, repo: repo, tokens: tokens, catalog: catalog}
}

func sampleReview() domain.Review {
	return domain.Review{
		ID:        uuid.MustParse("0b9f9361-2a63-4bb8-8a27-1a1d0864a332"),
		ProductID: "123456",
		Username:  "Jane",
		UserEmail: "jane@example.com",
		Rating:    5,
		Comment:   "Great fit",
		Photos:    []string{},
		Approved:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
