package service

import (
	"context"

	"github.com/Tasheen2002/Security-Project/internal/auth"
	"github.com/Tasheen2002/Security-Project/internal/domain"
	"github.com/Tasheen2002/Security-Project/internal/repository"
	"go.uber.org/zap"
)

type ProductList struct {
	Products    []domain.Product
	CurrentPage int64
	TotalPages  int64
	Total       int64
}

type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Image       string
	Category    string
	Stock       int64
	Featured    bool
}

type ProductService struct {
	repo   repository.ProductRepository
	logger *zap.Logger
}

func NewProductService(repo repository.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger}
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *ProductService) ListProducts(ctx context.Context, category string, page, limit int64) (*ProductList, error) {
	opts := normalizePage(page, limit, 12)

	products, total, err := s.repo.ListProducts(ctx, category, opts)
	if err != nil {
		return nil, err
	}

	totalPages := total / opts.Limit
	if total%opts.Limit != 0 {
		totalPages++
	}

	return &ProductList{
		Products:    products,
		CurrentPage: opts.Page,
		TotalPages:  totalPages,
		Total:       total,
	}, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, principal auth.Principal, input ProductInput) (*domain.Product, error) {
	if err := auth.Authorize(principal, auth.ResourceProduct, auth.ActionManage, ""); err != nil {
		return nil, err
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Image:       input.Image,
		Category:    input.Category,
		Stock:       input.Stock,
		Featured:    input.Featured,
	}

	if err := s.repo.InsertProduct(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.Hex()),
		zap.String("name", product.Name))

	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, principal auth.Principal, id string, input ProductInput) (*domain.Product, error) {
	if err := auth.Authorize(principal, auth.ResourceProduct, auth.ActionManage, ""); err != nil {
		return nil, err
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Image = input.Image
	product.Category = input.Category
	product.Featured = input.Featured

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, principal auth.Principal, id string) error {
	if err := auth.Authorize(principal, auth.ResourceProduct, auth.ActionManage, ""); err != nil {
		return err
	}
	return s.repo.DeleteProduct(ctx, id)
}

// RestockProduct adds units through the inventory ledger rather than
// overwriting the stock field, so it composes with in-flight checkouts.
func (s *ProductService) RestockProduct(ctx context.Context, principal auth.Principal, id string, qty int64) error {
	if err := auth.Authorize(principal, auth.ResourceProduct, auth.ActionManage, ""); err != nil {
		return err
	}
	if qty < 1 {
		return ValidationError{Field: "quantity", Message: "must be at least 1"}
	}
	return s.repo.IncrementStock(ctx, id, qty)
}

func validateProductInput(input ProductInput) error {
	var errs ValidationErrors
	if input.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "is required"})
	}
	if input.Price < 0 {
		errs = append(errs, ValidationError{Field: "price", Message: "must not be negative"})
	}
	if input.Stock < 0 {
		errs = append(errs, ValidationError{Field: "stock", Message: "must not be negative"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
