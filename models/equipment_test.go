package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRecalculateRentalPrice(t *testing.T) {
	equipment := Equipment{
		PurchasePrice:    decimal.RequireFromString("8000.00"),
		RentalPercentage: decimal.RequireFromString("4.00"),
	}
	equipment.RecalculateRentalPrice()
	assert.Equal(t, "320.00", equipment.RentalPrice.StringFixed(2))

	// Fractional results round to currency precision
	equipment.PurchasePrice = decimal.RequireFromString("333.33")
	equipment.RentalPercentage = decimal.RequireFromString("7.00")
	equipment.RecalculateRentalPrice()
	assert.Equal(t, "23.33", equipment.RentalPrice.StringFixed(2))
}

func TestComputeFinalValue(t *testing.T) {
	budget := Budget{
		TotalValue:    decimal.RequireFromString("250.00"),
		LaborCost:     decimal.RequireFromString("800.00"),
		TransportCost: decimal.RequireFromString("250.00"),
		Discount:      decimal.RequireFromString("100.00"),
	}
	budget.ComputeFinalValue()
	assert.Equal(t, "1200.00", budget.FinalValue.StringFixed(2))

	budget = Budget{TotalValue: decimal.RequireFromString("250.00")}
	budget.ComputeFinalValue()
	assert.Equal(t, "250.00", budget.FinalValue.StringFixed(2))
}
