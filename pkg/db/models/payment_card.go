package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentCard is a registered card reference. The engine never stores PANs or
// talks to a gateway; it only counts cards when validating a card-based
// payment method at placement.
type PaymentCard struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index"`
	Brand      string    `gorm:"column:brand;not null"`
	Last4      string    `gorm:"column:last4;not null"`
	Holder     string    `gorm:"column:holder;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
