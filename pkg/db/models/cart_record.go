package models

import (
	"time"

	"github.com/Dansouza2211/app-ifruits-sub000/pkg/enums"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/types"
	"github.com/google/uuid"
)

// CartRecord is the single active cart per customer. The checkout draft
// (delivery option, address, payment method, coupon) accumulates on the
// record; the quote itself is derived and never persisted here.
type CartRecord struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID       uuid.UUID            `gorm:"column:customer_id;type:uuid;not null"`
	StoreID          *uuid.UUID           `gorm:"column:store_id;type:uuid"`
	Status           enums.CartStatus     `gorm:"column:status;type:text;not null;default:'active'"`
	Currency         enums.Currency       `gorm:"column:currency;not null;default:'BRL'"`
	DeliveryOptionID *string              `gorm:"column:delivery_option_id"`
	DeliveryAddress  *types.Address       `gorm:"column:delivery_address;type:jsonb;serializer:json"`
	PaymentMethod    *enums.PaymentMethod `gorm:"column:payment_method;type:text"`
	CouponCode       *string              `gorm:"column:coupon_code"`
	ValidUntil       time.Time            `gorm:"column:valid_until;not null"`
	ConvertedAt      *time.Time           `gorm:"column:converted_at"`
	Items            []CartItem           `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// SubtotalCents sums the line subtotals; zero for an empty cart.
func (c *CartRecord) SubtotalCents() int64 {
	var sum int64
	for _, item := range c.Items {
		sum += item.LineSubtotalCents
	}
	return sum
}
