package models

import "time"

// DeliveryOption is an immutable shipping tier ("standard", "fast") seeded by
// migration and selected, never owned, by the checkout draft.
type DeliveryOption struct {
	ID            string    `gorm:"column:id;primaryKey"`
	Label         string    `gorm:"column:label;not null"`
	EtaMinutesMin int       `gorm:"column:eta_minutes_min;not null"`
	EtaMinutesMax int       `gorm:"column:eta_minutes_max;not null"`
	FeeCents      int64     `gorm:"column:fee_cents;not null"`
	Active        bool      `gorm:"column:active;not null;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
