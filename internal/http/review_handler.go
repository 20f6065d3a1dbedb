package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Tasheen2002/Security-Project/internal/auth"
	"github.com/Tasheen2002/Security-Project/internal/domain"
	"github.com/Tasheen2002/Security-Project/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReviewService interface {
	ListReviews(ctx context.Context, productID string, page, limit int64) (*service.ReviewPage, error)
	CreateReview(ctx context.Context, principal auth.Principal, productID string, rating int, comment string) (*domain.Review, error)
	UpdateReview(ctx context.Context, principal auth.Principal, reviewID string, rating int, comment string) (*domain.Review, error)
	DeleteReview(ctx context.Context, principal auth.Principal, reviewID string) error
}

type ReviewHandler struct {
	errorMapper
	reviews ReviewService
}

func NewReviewHandler(reviews ReviewService, logger *zap.Logger, dev bool) *ReviewHandler {
	return &ReviewHandler{
		errorMapper: errorMapper{logger: logger, dev: dev},
		reviews:     reviews,
	}
}

type ReviewRequestDTO struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	reviewPage, err := h.reviews.ListReviews(r.Context(), chi.URLParam(r, "id"), page, limit)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"reviews": reviewPage.Reviews,
		"stats": envelope{
			"averageRating": reviewPage.Stats.AverageRating,
			"totalReviews":  reviewPage.Stats.TotalReviews,
		},
		"pagination": envelope{
			"currentPage":  reviewPage.CurrentPage,
			"totalPages":   reviewPage.TotalPages,
			"totalReviews": reviewPage.Total,
			"hasNext":      reviewPage.CurrentPage < reviewPage.TotalPages,
			"hasPrev":      reviewPage.CurrentPage > 1,
		},
	})
}

func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	review, err := h.reviews.CreateReview(r.Context(), principal, chi.URLParam(r, "id"), req.Rating, req.Comment)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "Review created successfully",
		"review":  review,
	})
}

func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	review, err := h.reviews.UpdateReview(r.Context(), principal, chi.URLParam(r, "reviewId"), req.Rating, req.Comment)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Review updated successfully",
		"review":  review,
	})
}

func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.reviews.DeleteReview(r.Context(), principal, chi.URLParam(r, "reviewId")); err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Review deleted successfully",
	})
}
