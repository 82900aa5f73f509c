package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/enums"
	pkgerrors "github.com/Dansouza2211/app-ifruits-sub000/pkg/errors"
)

type stubCouponRepo struct {
	coupons map[string]*models.Coupon
}

func (s *stubCouponRepo) WithTx(tx *gorm.DB) CouponRepository { return s }

func (s *stubCouponRepo) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if coupon, ok := s.coupons[code]; ok {
		return coupon, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newCouponTestService(t *testing.T, now time.Time, coupons ...*models.Coupon) Service {
	t.Helper()

	repo := &stubCouponRepo{coupons: map[string]*models.Coupon{}}
	for _, coupon := range coupons {
		repo.coupons[coupon.Code] = coupon
	}
	svc, err := NewService(repo)
	require.NoError(t, err)
	svc.(*service).now = func() time.Time { return now }
	return svc
}

func TestValidate_CaseInsensitive(t *testing.T) {
	t.Parallel()

	svc := newCouponTestService(t, time.Now(), &models.Coupon{
		Code: "IFRUITS10", Kind: enums.CouponKindPercentageOff, ValueBps: 1000, Active: true,
	})

	for _, input := range []string{"IFRUITS10", "ifruits10", "  iFrUiTs10 "} {
		coupon, err := svc.Validate(context.Background(), input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, enums.CouponKindPercentageOff, coupon.Kind)
		assert.Equal(t, int64(1000), coupon.ValueBps)
	}
}

func TestValidate_FreeDeliveryCoupon(t *testing.T) {
	t.Parallel()

	svc := newCouponTestService(t, time.Now(), &models.Coupon{
		Code: "FRETE", Kind: enums.CouponKindFreeDelivery, Active: true,
	})

	coupon, err := svc.Validate(context.Background(), "frete")
	require.NoError(t, err)
	assert.Equal(t, enums.CouponKindFreeDelivery, coupon.Kind)
}

func TestValidate_RejectsUnknownInactiveAndExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)
	svc := newCouponTestService(t, now,
		&models.Coupon{Code: "DESATIVADO", Kind: enums.CouponKindPercentageOff, ValueBps: 500},
		&models.Coupon{Code: "VENCIDO", Kind: enums.CouponKindPercentageOff, ValueBps: 500, Active: true, ExpiresAt: &yesterday},
	)

	for _, input := range []string{"NADA", "DESATIVADO", "VENCIDO"} {
		_, err := svc.Validate(context.Background(), input)
		require.Error(t, err, "input %q", input)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		assert.Equal(t, "invalid coupon code", typed.Message())
	}
}

func TestValidate_EmptyCode(t *testing.T) {
	t.Parallel()

	svc := newCouponTestService(t, time.Now())
	_, err := svc.Validate(context.Background(), "   ")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
