package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Equipment struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index"`

	Name     string `gorm:"not null"`
	Category string `gorm:"index;default:'General'"`

	PurchasePrice    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	RentalPercentage decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	// Derived from PurchasePrice and RentalPercentage, kept in sync by
	// RecalculateRentalPrice whenever either input changes.
	RentalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	StockTotal int `gorm:"default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *Equipment) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}

// RecalculateRentalPrice derives the rental price as
// purchasePrice * rentalPercentage / 100, rounded to currency precision.
func (e *Equipment) RecalculateRentalPrice() {
	e.RentalPrice = e.PurchasePrice.
		Mul(e.RentalPercentage).
		Div(decimal.NewFromInt(100)).
		Round(2)
}
