package models

import "time"

// CreditPackage is a purchasable bundle of credits. Static reference data,
// seeded by migration and toggled via the active flag.
type CreditPackage struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Credits      int64     `gorm:"column:credits;not null" json:"credits"`
	BonusCredits int64     `gorm:"column:bonus_credits;not null;default:0" json:"bonus_credits"`
	PriceCents   int64     `gorm:"column:price_cents;not null" json:"price_cents"`
	Currency     string    `gorm:"column:currency;not null;default:'USD'" json:"currency"`
	Active       bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName overrides gorm's pluralization.
func (CreditPackage) TableName() string {
	return "credit_packages"
}
