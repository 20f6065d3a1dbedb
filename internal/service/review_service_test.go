package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Tasheen2002/Security-Project/internal/auth"
	"github.com/Tasheen2002/Security-Project/internal/domain"
	"github.com/Tasheen2002/Security-Project/internal/repository"
)

type memReviewRepo struct {
	reviews map[string]*domain.Review
	nextID  int
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{reviews: make(map[string]*domain.Review)}
}

func (m *memReviewRepo) InsertReview(_ context.Context, review *domain.Review) error {
	for _, r := range m.reviews {
		if r.ProductID == review.ProductID && r.UserID == review.UserID {
			return repository.ErrDuplicateReview
		}
	}
	m.nextID++
	review.ID = primitive.ObjectID{byte(m.nextID)}
	m.reviews[review.ID.Hex()] = review
	return nil
}

func (m *memReviewRepo) GetReview(_ context.Context, id string) (*domain.Review, error) {
	r, ok := m.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memReviewRepo) ListReviewsByProduct(_ context.Context, productID string, _ repository.ListOptions) ([]domain.Review, int64, error) {
	var out []domain.Review
	for _, r := range m.reviews {
		if r.ProductID == productID {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memReviewRepo) ProductReviewStats(_ context.Context, productID string) (*domain.ReviewStats, error) {
	stats := &domain.ReviewStats{}
	var sum int
	for _, r := range m.reviews {
		if r.ProductID == productID {
			stats.TotalReviews++
			sum += r.Rating
		}
	}
	if stats.TotalReviews > 0 {
		stats.AverageRating = float64(sum) / float64(stats.TotalReviews)
	}
	return stats, nil
}

func (m *memReviewRepo) UpdateReview(_ context.Context, id string, rating int, comment string) (*domain.Review, error) {
	r, ok := m.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	r.Rating = rating
	r.Comment = comment
	cp := *r
	return &cp, nil
}

func (m *memReviewRepo) DeleteReview(_ context.Context, id string) error {
	if _, ok := m.reviews[id]; !ok {
		return repository.ErrReviewNotFound
	}
	delete(m.reviews, id)
	return nil
}

func reviewFixture() (*ReviewService, *memReviewRepo, string) {
	inventory := newMemInventory()
	inventory.addProduct("prod-a", "Widget", 10.00, 5)
	reviews := newMemReviewRepo()
	svc := NewReviewService(reviews, inventory, zap.NewNop())
	return svc, reviews, "prod-a"
}

func TestCreateReview_OK(t *testing.T) {
	svc, _, productID := reviewFixture()

	review, err := svc.CreateReview(context.Background(), testPrincipal, productID, 4, "solid widget")

	require.NoError(t, err)
	assert.Equal(t, 4, review.Rating)
	assert.Equal(t, "user-1", review.UserID)
	assert.Equal(t, "Test Buyer", review.Username)
}

func TestCreateReview_DuplicateRejected(t *testing.T) {
	svc, _, productID := reviewFixture()

	_, err := svc.CreateReview(context.Background(), testPrincipal, productID, 4, "solid widget")
	require.NoError(t, err)

	_, err = svc.CreateReview(context.Background(), testPrincipal, productID, 5, "even better")
	assert.ErrorIs(t, err, repository.ErrDuplicateReview)
}

func TestCreateReview_RatingBounds(t *testing.T) {
	svc, _, productID := reviewFixture()

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.CreateReview(context.Background(), testPrincipal, productID, rating, "text")
		var errs ValidationErrors
		assert.ErrorAs(t, err, &errs, "rating %d must be rejected", rating)
	}
}

func TestCreateReview_CommentTooLong(t *testing.T) {
	svc, _, productID := reviewFixture()

	_, err := svc.CreateReview(context.Background(), testPrincipal, productID, 3, strings.Repeat("x", 501))

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "comment", errs[0].Field)
}

func TestCreateReview_UnknownProduct(t *testing.T) {
	svc, _, _ := reviewFixture()

	_, err := svc.CreateReview(context.Background(), testPrincipal, "nope", 3, "text")

	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestUpdateReview_OwnerOnly(t *testing.T) {
	svc, _, productID := reviewFixture()

	created, err := svc.CreateReview(context.Background(), testPrincipal, productID, 4, "solid")
	require.NoError(t, err)

	intruder := auth.Principal{Subject: "user-2", Roles: []string{auth.RoleUser}}
	_, err = svc.UpdateReview(context.Background(), intruder, created.ID.Hex(), 1, "sabotage")
	assert.ErrorIs(t, err, auth.ErrForbidden)

	updated, err := svc.UpdateReview(context.Background(), testPrincipal, created.ID.Hex(), 5, "great after a week")
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
}

func TestDeleteReview_AdminBypass(t *testing.T) {
	svc, reviews, productID := reviewFixture()

	created, err := svc.CreateReview(context.Background(), testPrincipal, productID, 4, "solid")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteReview(context.Background(), adminPrincipal, created.ID.Hex()))
	assert.Empty(t, reviews.reviews)
}

func TestListReviews_Stats(t *testing.T) {
	svc, _, productID := reviewFixture()

	_, err := svc.CreateReview(context.Background(), testPrincipal, productID, 4, "solid")
	require.NoError(t, err)
	other := auth.Principal{Subject: "user-2", Name: "Other", Roles: []string{auth.RoleUser}}
	_, err = svc.CreateReview(context.Background(), other, productID, 2, "meh")
	require.NoError(t, err)

	page, err := svc.ListReviews(context.Background(), productID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 3.0, page.Stats.AverageRating)
	assert.Equal(t, int64(2), page.Stats.TotalReviews)
}
