package service

import (
	"context"

	"github.com/Tasheen2002/Security-Project/internal/auth"
	"github.com/Tasheen2002/Security-Project/internal/domain"
	"github.com/Tasheen2002/Security-Project/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PurchaseInput struct {
	Date             string
	DeliveryTime     string
	DeliveryLocation string
	ProductName      string
	Quantity         int64
	Message          string
}

// PurchaseService handles the legacy purchase-request flow, kept
// alongside cart checkout for manual delivery requests.
type PurchaseService struct {
	repo   repository.PurchaseRepository
	logger *zap.Logger
}

func NewPurchaseService(repo repository.PurchaseRepository, logger *zap.Logger) *PurchaseService {
	return &PurchaseService{repo: repo, logger: logger}
}

func (s *PurchaseService) CreatePurchase(ctx context.Context, principal auth.Principal, input PurchaseInput) (*domain.Purchase, error) {
	var errs ValidationErrors
	if input.ProductName == "" {
		errs = append(errs, ValidationError{Field: "productName", Message: "is required"})
	}
	if input.Quantity < 1 {
		errs = append(errs, ValidationError{Field: "quantity", Message: "must be at least 1"})
	}
	if input.DeliveryLocation == "" {
		errs = append(errs, ValidationError{Field: "deliveryLocation", Message: "is required"})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	purchase := &domain.Purchase{
		ID:               uuid.NewString(),
		UserID:           principal.Subject,
		Username:         principal.Username(),
		Date:             input.Date,
		DeliveryTime:     input.DeliveryTime,
		DeliveryLocation: input.DeliveryLocation,
		ProductName:      input.ProductName,
		Quantity:         input.Quantity,
		Message:          input.Message,
		Status:           domain.PurchaseStatusPending,
	}

	if err := s.repo.InsertPurchase(ctx, purchase); err != nil {
		return nil, err
	}

	s.logger.Info("purchase request created",
		zap.String("purchase_id", purchase.ID),
		zap.String("user_id", principal.Subject))

	return purchase, nil
}

func (s *PurchaseService) ListOwnPurchases(ctx context.Context, principal auth.Principal) ([]domain.Purchase, error) {
	return s.repo.ListPurchasesByUser(ctx, principal.Subject)
}

func (s *PurchaseService) ListAllPurchases(ctx context.Context, principal auth.Principal) ([]domain.Purchase, error) {
	if err := auth.Authorize(principal, auth.ResourcePurchase, auth.ActionManage, ""); err != nil {
		return nil, err
	}
	return s.repo.ListAllPurchases(ctx)
}

func (s *PurchaseService) UpdatePurchaseStatus(ctx context.Context, principal auth.Principal, id string, status domain.PurchaseStatus) (*domain.Purchase, error) {
	if err := auth.Authorize(principal, auth.ResourcePurchase, auth.ActionManage, ""); err != nil {
		return nil, err
	}
	if !domain.ValidPurchaseStatus(status) {
		return nil, ValidationError{Field: "status", Message: "Invalid purchase status"}
	}
	return s.repo.UpdatePurchaseStatus(ctx, id, status)
}
