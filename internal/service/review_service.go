package service

import (
	"context"

	"github.com/Tasheen2002/Security-Project/internal/auth"
	"github.com/Tasheen2002/Security-Project/internal/domain"
	"github.com/Tasheen2002/Security-Project/internal/repository"
	"go.uber.org/zap"
)

type ReviewPage struct {
	Reviews     []domain.Review
	Stats       domain.ReviewStats
	CurrentPage int64
	TotalPages  int64
	Total       int64
}

type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	logger   *zap.Logger
}

func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository, logger *zap.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, products: products, logger: logger}
}

func (s *ReviewService) ListReviews(ctx context.Context, productID string, page, limit int64) (*ReviewPage, error) {
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	opts := normalizePage(page, limit, 10)

	reviews, total, err := s.reviews.ListReviewsByProduct(ctx, productID, opts)
	if err != nil {
		return nil, err
	}

	stats, err := s.reviews.ProductReviewStats(ctx, productID)
	if err != nil {
		return nil, err
	}

	totalPages := total / opts.Limit
	if total%opts.Limit != 0 {
		totalPages++
	}

	return &ReviewPage{
		Reviews:     reviews,
		Stats:       *stats,
		CurrentPage: opts.Page,
		TotalPages:  totalPages,
		Total:       total,
	}, nil
}

// CreateReview enforces one review per user per product; the duplicate
// is rejected as a conflict by the unique index underneath.
func (s *ReviewService) CreateReview(ctx context.Context, principal auth.Principal, productID string, rating int, comment string) (*domain.Review, error) {
	if err := validateReviewInput(rating, comment); err != nil {
		return nil, err
	}

	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	review := &domain.Review{
		ProductID: productID,
		UserID:    principal.Subject,
		Username:  principal.Username(),
		Rating:    rating,
		Comment:   comment,
	}

	if err := s.reviews.InsertReview(ctx, review); err != nil {
		return nil, err
	}

	s.logger.Info("review created",
		zap.String("product_id", productID),
		zap.String("user_id", principal.Subject),
		zap.Int("rating", rating))

	return review, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, principal auth.Principal, reviewID string, rating int, comment string) (*domain.Review, error) {
	if err := validateReviewInput(rating, comment); err != nil {
		return nil, err
	}

	review, err := s.reviews.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(principal, auth.ResourceReview, auth.ActionWrite, review.UserID); err != nil {
		return nil, err
	}

	return s.reviews.UpdateReview(ctx, reviewID, rating, comment)
}

func (s *ReviewService) DeleteReview(ctx context.Context, principal auth.Principal, reviewID string) error {
	review, err := s.reviews.GetReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := auth.Authorize(principal, auth.ResourceReview, auth.ActionWrite, review.UserID); err != nil {
		return err
	}

	return s.reviews.DeleteReview(ctx, reviewID)
}

func validateReviewInput(rating int, comment string) error {
	var errs ValidationErrors
	if rating < domain.MinRating || rating > domain.MaxRating {
		errs = append(errs, ValidationError{Field: "rating", Message: "Rating must be between 1 and 5"})
	}
	if comment == "" {
		errs = append(errs, ValidationError{Field: "comment", Message: "is required"})
	} else if len(comment) > domain.MaxCommentLength {
		errs = append(errs, ValidationError{Field: "comment", Message: "Comment must be 500 characters or less"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
