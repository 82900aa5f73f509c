package enums

import "fmt"

// CouponKind distinguishes the promotional rules the pricing engine knows.
type CouponKind string

const (
	CouponKindPercentageOff CouponKind = "percentage_off"
	CouponKindFreeDelivery  CouponKind = "free_delivery"
)

var validCouponKinds = []CouponKind{
	CouponKindPercentageOff,
	CouponKindFreeDelivery,
}

func (k CouponKind) String() string {
	return string(k)
}

func (k CouponKind) IsValid() bool {
	for _, candidate := range validCouponKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseCouponKind converts raw input into a CouponKind.
func ParseCouponKind(value string) (CouponKind, error) {
	for _, candidate := range validCouponKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon kind %q", value)
}
