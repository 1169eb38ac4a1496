package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/EhsanAfzal005/Shopify-Review-App/internal/domain"
	"github.com/EhsanAfzal005/Shopify-Review-App/internal/repository"
	apperrors "github.com/EhsanAfzal005/Shopify-Review-App/pkg/errors"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/pagination"
)

// --- Mock Review Repository ---

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

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestReviewService(repo *mockReviewRepository) *ReviewService {
	return NewReviewService(repo, newTestLogger())
}

// --- Tests ---

func TestSubmitReview_Success(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)

	input := SubmitReviewInput{
		ProductID: "123456",
		Username:  "Jordan",
		UserEmail: "jordan@example.com",
		Rating:    5,
		Comment:   "Works great",
	}

	review, err := svc.SubmitReview(ctx, &input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, review.ID)
	assert.Equal(t, "123456", review.ProductID)
	assert.Equal(t, "Jordan", review.Username)
	assert.False(t, review.Approved, "new reviews must await moderation")
	assert.NotZero(t, review.CreatedAt)

	repo.AssertExpectations(t)
}

func TestSubmitReview_BlankUsernameBecomesAnonymous(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)

	review, err := svc.SubmitReview(ctx, &SubmitReviewInput{
		ProductID: "123456",
		UserEmail: "anon@example.com",
		Rating:    4,
		Comment:   "Fine",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.AnonymousUsername, review.Username)
	repo.AssertExpectations(t)
}

func TestSubmitReview_PhotosFilteredAndCapped(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)

	photos := make([]string, 0, 8)
	for i := 0; i < 7; i++ {
		photos = append(photos, "data:image/png;base64,AAA")
	}
	photos = append(photos, "https://example.com/not-a-data-url.jpg")

	review, err := svc.SubmitReview(ctx, &SubmitReviewInput{
		ProductID: "123456",
		UserEmail: "jordan@example.com",
		Rating:    5,
		Comment:   "With photos",
		Photos:    photos,
	})

	require.NoError(t, err)
	assert.Len(t, review.Photos, domain.MaxPhotosPerReview)
	repo.AssertExpectations(t)
}

func TestSubmitReview_MissingProductID(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)

	_, err := svc.SubmitReview(context.Background(), &SubmitReviewInput{Rating: 5, Comment: "x", UserEmail: "a@b.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create")
}

func TestSubmitReview_MissingEmail(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)

	_, err := svc.SubmitReview(context.Background(), &SubmitReviewInput{ProductID: "1", Rating: 5, Comment: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create")
}

func TestSubmitReview_MissingComment(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)

	_, err := svc.SubmitReview(context.Background(), &SubmitReviewInput{ProductID: "1", Rating: 5})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSubmitReview_LooseEmailStored(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)

	review, err := svc.SubmitReview(ctx, &SubmitReviewInput{
		ProductID: "1",
		Rating:    5,
		Comment:   "x",
		UserEmail: "john.doe",
	})
	require.NoError(t, err)
	assert.Equal(t, "john.doe", review.UserEmail)
}

func TestSubmitReview_OutOfRangeRatingStored(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)

	review, err := svc.SubmitReview(ctx, &SubmitReviewInput{
		ProductID: "123456",
		UserEmail: "jordan@example.com",
		Rating:    7,
		Comment:   "off the scale",
	})

	require.NoError(t, err)
	assert.Equal(t, 7, review.Rating)
	repo.AssertExpectations(t)
}

func TestListProductReviews_LastPartialPage(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)
	ctx := context.Background()

	approved := true
	productID := "123456"
	filter := repository.ReviewFilter{ProductID: &productID, Approved: &approved, Page: 3, Limit: 3}

	// 7 approved reviews at limit 3: page 3 has the single remaining review
	repo.On("List", ctx, filter).Return([]domain.Review{{ProductID: productID}}, 7, nil)
	repo.On("ProductStats", ctx, productID).Return(&repository.ProductRatingStats{
		TotalReviews:  7,
		AverageRating: 4.1,
		Distribution:  map[int]int{1: 0, 2: 0, 3: 2, 4: 2, 5: 3},
	}, nil)

	result, err := svc.ListProductReviews(ctx, productID, pagination.Params{Page: 3, Limit: 3, Offset: 6})

	require.NoError(t, err)
	assert.Len(t, result.Reviews, 1)
	assert.Equal(t, 3, result.Pagination.TotalPages)
	assert.Equal(t, 3, result.Pagination.CurrentPage)
	assert.Equal(t, 7, result.Pagination.TotalReviews)
	assert.Equal(t, "4.1", result.Stats.AverageRating)
	repo.AssertExpectations(t)
}

func TestListProductReviews_EmptyProductStats(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)
	ctx := context.Background()

	approved := true
	productID := "999"
	filter := repository.ReviewFilter{ProductID: &productID, Approved: &approved, Page: 1, Limit: 10}

	repo.On("List", ctx, filter).Return([]domain.Review{}, 0, nil)
	repo.On("ProductStats", ctx, productID).Return(&repository.ProductRatingStats{
		Distribution: domain.NewDistribution(),
	}, nil)

	result, err := svc.ListProductReviews(ctx, productID, pagination.Params{Page: 1, Limit: 10})

	require.NoError(t, err)
	assert.Empty(t, result.Reviews)
	assert.Equal(t, "0.0", result.Stats.AverageRating)
	assert.Equal(t, 0, result.Pagination.TotalPages)
	repo.AssertExpectations(t)
}

func TestListProductReviews_MissingProductID(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)

	_, err := svc.ListProductReviews(context.Background(), "", pagination.DefaultParams())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestListAllReviews_FixedPageSize(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)
	ctx := context.Background()

	filter := repository.ReviewFilter{Page: 2, Limit: AdminPageSize}
	repo.On("List", ctx, filter).Return([]domain.Review{}, 45, nil)

	result, err := svc.ListAllReviews(ctx, 2)

	require.NoError(t, err)
	assert.Equal(t, 3, result.Pagination.TotalPages)
	assert.Equal(t, AdminPageSize, result.Pagination.Limit)
	repo.AssertExpectations(t)
}

func TestSetApproved_Propagates(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)
	ctx := context.Background()

	id := uuid.New()
	repo.On("SetApproved", ctx, id, true).Return(nil)

	assert.NoError(t, svc.SetApproved(ctx, id, true))
	repo.AssertExpectations(t)
}

func TestSetApproved_NotFound(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)
	ctx := context.Background()

	id := uuid.New()
	repo.On("SetApproved", ctx, id, true).Return(apperrors.NotFound("review", id.String()))

	err := svc.SetApproved(ctx, id, true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertExpectations(t)
}

func TestReply_EmptyRejected(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)

	err := svc.Reply(context.Background(), uuid.New(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "SetReply")
}

func TestReply_Success(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)
	ctx := context.Background()

	id := uuid.New()
	repo.On("SetReply", ctx, id, "Thanks!", mock.AnythingOfType("time.Time")).Return(nil)

	assert.NoError(t, svc.Reply(ctx, id, "Thanks!"))
	repo.AssertExpectations(t)
}

func TestDeleteForProduct_BothIDForms(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)
	ctx := context.Background()

	repo.On("DeleteByProductID", ctx, "gid://shopify/Product/123").Return(int64(4), nil)

	deleted, err := svc.DeleteForProduct(ctx, "gid://shopify/Product/123")
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
	repo.AssertExpectations(t)
}
