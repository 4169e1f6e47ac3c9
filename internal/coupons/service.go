package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shopkart-labs/shopkart-backend/pkg/db"
	"github.com/shopkart-labs/shopkart-backend/pkg/db/models"
	pkgerrors "github.com/shopkart-labs/shopkart-backend/pkg/errors"
)

type couponStore interface {
	Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error)
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// CreateCouponInput carries the admin payload for a new coupon.
type CreateCouponInput struct {
	Code               string
	DiscountPaise      int64
	MinimumAmountPaise int64
	IsExpired          bool
}

// Service exposes coupon operations.
type Service interface {
	Create(ctx context.Context, input CreateCouponInput) (*models.Coupon, error)
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type service struct {
	repo couponStore
}

// NewService builds a coupon service backed by the provided repository.
func NewService(repo couponStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo}, nil
}

// Create inserts a coupon. Codes are stored uppercased and matched
// case-insensitively.
func (s *service) Create(ctx context.Context, input CreateCouponInput) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if input.DiscountPaise < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must be non-negative")
	}
	if input.MinimumAmountPaise < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum amount must be non-negative")
	}

	coupon := &models.Coupon{
		Code:               code,
		DiscountPaise:      input.DiscountPaise,
		MinimumAmountPaise: input.MinimumAmountPaise,
		IsExpired:          input.IsExpired,
	}
	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return created, nil
}

// GetByCode loads a coupon by its case-insensitive code.
func (s *service) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	return coupon, nil
}
