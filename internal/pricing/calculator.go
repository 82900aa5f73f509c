package pricing

import (
	"fmt"

	"github.com/Dansouza2211/app-ifruits-sub000/pkg/db/models"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/enums"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/types"
)

// Input carries everything a quote depends on. The calculator never reads
// state beyond this struct, so identical inputs always price identically.
type Input struct {
	Subtotal    types.Cents
	DeliveryFee types.Cents
	Coupon      *models.Coupon
}

// Calculator computes quotes. The service fee is a fixed platform charge
// applied to any non-empty cart.
type Calculator struct {
	serviceFee types.Cents
}

// NewCalculator builds a calculator with the configured service fee.
func NewCalculator(serviceFeeCents int64) (*Calculator, error) {
	if serviceFeeCents < 0 {
		return nil, fmt.Errorf("service fee must be non-negative")
	}
	return &Calculator{serviceFee: types.Cents(serviceFeeCents)}, nil
}

// ComputeQuote prices the cart from scratch. Callers re-invoke it whenever
// any input changes; quotes are never patched incrementally.
func (c *Calculator) ComputeQuote(input Input) types.Quote {
	subtotal := input.Subtotal
	if subtotal < 0 {
		subtotal = 0
	}

	deliveryFee := input.DeliveryFee
	if deliveryFee < 0 {
		deliveryFee = 0
	}
	originalDeliveryFee := deliveryFee

	serviceFee := types.Cents(0)
	if subtotal > 0 {
		serviceFee = c.serviceFee
	}

	var discount types.Cents
	if input.Coupon != nil {
		switch input.Coupon.Kind {
		case enums.CouponKindFreeDelivery:
			deliveryFee = 0
			discount = originalDeliveryFee
		case enums.CouponKindPercentageOff:
			discount = types.PercentOf(subtotal, input.Coupon.ValueBps)
		}
	}

	if max := subtotal + originalDeliveryFee; discount > max {
		discount = max
	}

	total := subtotal + deliveryFee + serviceFee - discount
	if total < 0 {
		total = 0
	}

	return types.Quote{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		ServiceFee:  serviceFee,
		Discount:    discount,
		Total:       total,
	}
}
