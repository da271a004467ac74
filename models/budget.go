package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	BudgetStatusDraft     = "DRAFT"
	BudgetStatusConfirmed = "CONFIRMED"
)

type Budget struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index"`

	ClientName  string    `gorm:"not null"`
	ClientPhone string
	EventDate   time.Time `gorm:"not null"`

	Status string `gorm:"type:varchar(20);default:'DRAFT';index"`

	// TotalValue is the sum of every item subtotal across all sections.
	// FinalValue = TotalValue + LaborCost + TransportCost - Discount.
	TotalValue    decimal.Decimal `gorm:"type:decimal(10,2);default:0.0"`
	Discount      decimal.Decimal `gorm:"type:decimal(10,2);default:0.0"`
	LaborCost     decimal.Decimal `gorm:"type:decimal(10,2);default:0.0"`
	TransportCost decimal.Decimal `gorm:"type:decimal(10,2);default:0.0"`
	FinalValue    decimal.Decimal `gorm:"type:decimal(10,2);default:0.0"`

	Sections  []BudgetSection `gorm:"foreignKey:BudgetID"`
	CreatedBy User            `gorm:"foreignKey:CreatedByUserID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b *Budget) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

// ComputeFinalValue applies the fixed formula for the derived final value.
func (b *Budget) ComputeFinalValue() {
	b.FinalValue = b.TotalValue.Add(b.LaborCost).Add(b.TransportCost).Sub(b.Discount)
}

type BudgetSection struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	BudgetID uuid.UUID `gorm:"type:uuid;index;not null"`
	Name     string    `gorm:"not null"`

	Items []BudgetItem `gorm:"foreignKey:SectionID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *BudgetSection) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

type BudgetItem struct {
	ID          uuid.UUID `gorm:"type:uuid;index;primary_key"`
	SectionID   uuid.UUID `gorm:"type:uuid;index;not null"`
	EquipmentID uuid.UUID `gorm:"type:uuid;index;not null"`

	Quantity int `gorm:"not null"`

	// UnitPrice is a snapshot of the equipment rental price at creation
	// time (or an explicit override). Later catalog changes never touch it.
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	ShowInBudgetPrint bool `gorm:"default:true"`

	Equipment Equipment `gorm:"foreignKey:EquipmentID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i *BudgetItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
