package service

import (
	"context"
	"errors"
	"net/mail"

	"github.com/Tasheen2002/Security-Project/internal/auth"
	"github.com/Tasheen2002/Security-Project/internal/domain"
	"github.com/Tasheen2002/Security-Project/internal/repository"
	"go.uber.org/zap"
)

type ProfileInput struct {
	Username string
	Email    string
	Phone    string
	Address  string
}

type UserService struct {
	repo   repository.UserRepository
	logger *zap.Logger
}

func NewUserService(repo repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// GetProfile returns the stored profile, creating it from the identity
// provider's claims on first sight of this subject.
func (s *UserService) GetProfile(ctx context.Context, principal auth.Principal) (*domain.User, error) {
	user, err := s.repo.GetUser(ctx, principal.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	role := auth.RoleUser
	if principal.IsAdmin() {
		role = auth.RoleAdmin
	}
	user = &domain.User{
		Subject:  principal.Subject,
		Username: principal.Username(),
		Email:    principal.Email,
		Role:     role,
	}
	if err := s.repo.UpsertUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, principal auth.Principal, input ProfileInput) (*domain.User, error) {
	var errs ValidationErrors
	if input.Username == "" {
		errs = append(errs, ValidationError{Field: "username", Message: "is required"})
	}
	if input.Email == "" {
		errs = append(errs, ValidationError{Field: "email", Message: "is required"})
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		errs = append(errs, ValidationError{Field: "email", Message: "Invalid email format"})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	// Ensure the profile exists before patching it
	if _, err := s.GetProfile(ctx, principal); err != nil {
		return nil, err
	}

	return s.repo.UpdateProfile(ctx, principal.Subject, input.Username, input.Email, input.Phone, input.Address)
}

func (s *UserService) ListUsers(ctx context.Context, principal auth.Principal, page, limit int64) ([]domain.User, int64, error) {
	if err := auth.Authorize(principal, auth.ResourceUser, auth.ActionManage, ""); err != nil {
		return nil, 0, err
	}
	opts := normalizePage(page, limit, 20)
	return s.repo.ListUsers(ctx, opts)
}
