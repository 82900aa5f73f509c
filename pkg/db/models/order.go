package models

import (
	"time"

	"github.com/Dansouza2211/app-ifruits-sub000/pkg/enums"
	"github.com/Dansouza2211/app-ifruits-sub000/pkg/types"
	"github.com/google/uuid"
)

// Order is the frozen record produced at placement. Everything except Status
// and the lifecycle timestamps is immutable once written; Status moves only
// through the lifecycle service.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber string            `gorm:"column:order_number;uniqueIndex:ux_orders_order_number;not null"`
	CustomerID  uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	StoreID     uuid.UUID         `gorm:"column:store_id;type:uuid;not null"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'placed'"`
	Currency    enums.Currency    `gorm:"column:currency;not null;default:'BRL'"`

	DeliveryOptionID string        `gorm:"column:delivery_option_id;not null"`
	DeliveryLabel    string        `gorm:"column:delivery_label;not null"`
	DeliveryAddress  types.Address `gorm:"column:delivery_address;type:jsonb;serializer:json;not null"`

	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	CouponCode    *string             `gorm:"column:coupon_code"`

	SubtotalCents    int64 `gorm:"column:subtotal_cents;not null"`
	DeliveryFeeCents int64 `gorm:"column:delivery_fee_cents;not null"`
	ServiceFeeCents  int64 `gorm:"column:service_fee_cents;not null"`
	DiscountCents    int64 `gorm:"column:discount_cents;not null;default:0"`
	TotalCents       int64 `gorm:"column:total_cents;not null"`

	DeliveryCode string `gorm:"column:delivery_code;not null"`

	PlacedAt    time.Time  `gorm:"column:placed_at;not null"`
	DeliveredAt *time.Time `gorm:"column:delivered_at"`
	CanceledAt  *time.Time `gorm:"column:canceled_at"`

	Items     []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Quote reassembles the frozen price breakdown.
func (o *Order) Quote() types.Quote {
	return types.Quote{
		Subtotal:    types.Cents(o.SubtotalCents),
		DeliveryFee: types.Cents(o.DeliveryFeeCents),
		ServiceFee:  types.Cents(o.ServiceFeeCents),
		Discount:    types.Cents(o.DiscountCents),
		Total:       types.Cents(o.TotalCents),
	}
}
