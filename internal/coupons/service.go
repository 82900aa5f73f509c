package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
	pkgerrors "github.com/Dansouza2211/app-ifruits-sub000/pkg/errors"
)

// Service resolves coupon codes into active coupon rules. Codes are matched
// case-insensitively; any unknown, disabled or expired code yields the same
// rejection so callers cannot probe the coupon table.
type Service interface {
	Validate(ctx context.Context, code string) (*models.Coupon, error)
}

type service struct {
	repo CouponRepository
	now  func() time.Time
}

// NewService builds a coupon service backed by the provided repository.
func NewService(repo CouponRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Canonicalize normalizes user input to the stored coupon form.
func Canonicalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate resolves the code to an applicable coupon.
func (s *service) Validate(ctx context.Context, code string) (*models.Coupon, error) {
	canonical := Canonicalize(code)
	if canonical == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	coupon, err := s.repo.FindByCode(ctx, canonical)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCoupon()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	if !coupon.Active {
		return nil, invalidCoupon()
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(s.now()) {
		return nil, invalidCoupon()
	}
	return coupon, nil
}

func invalidCoupon() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon code")
}
