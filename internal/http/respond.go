package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Tasheen2002/Security-Project/internal/auth"
	"github.com/Tasheen2002/Security-Project/internal/repository"
	"github.com/Tasheen2002/Security-Project/internal/service"
	"go.uber.org/zap"
)

type envelope map[string]interface{}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{
		"success": false,
		"message": message,
	})
}

func respondValidation(w http.ResponseWriter, errs service.ValidationErrors) {
	fields := make([]fieldError, len(errs))
	for i, e := range errs {
		fields[i] = fieldError{Field: e.Field, Message: e.Message}
	}
	respondJSON(w, http.StatusBadRequest, envelope{
		"success": false,
		"message": "Validation failed",
		"errors":  fields,
	})
}

// errorMapper translates service and repository errors into the stable
// response envelope. Internal messages cross the boundary only in
// development mode.
type errorMapper struct {
	logger *zap.Logger
	dev    bool
}

func (m errorMapper) serviceError(w http.ResponseWriter, err error) {
	var (
		validationErr  service.ValidationError
		validationErrs service.ValidationErrors
		stockErr       *service.InsufficientStockError
		cancelErr      *service.NotCancellableError
	)

	switch {
	case errors.As(err, &validationErrs):
		respondValidation(w, validationErrs)
	case errors.As(err, &validationErr):
		respondValidation(w, service.ValidationErrors{validationErr})
	case errors.As(err, &stockErr):
		respondError(w, http.StatusBadRequest, stockErr.Error())
	case errors.As(err, &cancelErr):
		respondError(w, http.StatusBadRequest, cancelErr.Error())
	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "Order must contain at least one item")
	case errors.Is(err, repository.ErrInsufficientStock):
		respondError(w, http.StatusBadRequest, "Insufficient stock")
	case errors.Is(err, repository.ErrDuplicateReview):
		respondError(w, http.StatusConflict, "You have already reviewed this product")
	case errors.Is(err, repository.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "Cart not found")
	case errors.Is(err, repository.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "Item not found in cart")
	case errors.Is(err, repository.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, repository.ErrReviewNotFound):
		respondError(w, http.StatusNotFound, "Review not found")
	case errors.Is(err, repository.ErrPurchaseNotFound):
		respondError(w, http.StatusNotFound, "Purchase not found")
	case errors.Is(err, repository.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, auth.ErrForbidden):
		respondError(w, http.StatusForbidden, "Access denied")
	default:
		m.logger.Error("request failed", zap.Error(err))
		message := "Internal server error"
		if m.dev {
			message = err.Error()
		}
		respondError(w, http.StatusInternalServerError, message)
	}
}
