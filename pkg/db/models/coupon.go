package models

import (
	"time"

	"github.com/Dansouza2211/app-ifruits-sub000/pkg/enums"
	"github.com/google/uuid"
)

// Coupon is a promotional rule looked up by its uppercase code. ValueBps is
// the discount in basis points for percentage coupons; free-delivery coupons
// compute their value from the selected delivery option at quote time.
type Coupon struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code      string           `gorm:"column:code;uniqueIndex:ux_coupons_code;not null"`
	Kind      enums.CouponKind `gorm:"column:kind;type:text;not null"`
	ValueBps  int64            `gorm:"column:value_bps;not null;default:0"`
	Active    bool             `gorm:"column:active;not null;default:true"`
	ExpiresAt *time.Time       `gorm:"column:expires_at"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
