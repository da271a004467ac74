// services/ledger.go
package services

import (
	"errors"
	"time"

	"github.com/andreghisleni/gestao-som-back/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBudgetNotFound    = errors.New("budget not found")
	ErrSectionNotFound   = errors.New("budget section not found")
	ErrItemNotFound      = errors.New("budget item not found")
	ErrEquipmentNotFound = errors.New("equipment not found")
	ErrOwnershipMismatch = errors.New("item does not belong to this budget")
	ErrBudgetNotDraft    = errors.New("budget is no longer a draft")
	ErrInvalidTransition = errors.New("invalid budget status transition")
)

// BudgetLedger owns the arithmetic and consistency rules for a budget's
// monetary state. Every mutating operation runs inside one database
// transaction: either all rows land, or none do. Increments on the
// denormalized totals are issued as single atomic UPDATE statements so
// that concurrent writers on the same budget never lose a delta.
type BudgetLedger struct {
	db *gorm.DB
}

func NewBudgetLedger(db *gorm.DB) *BudgetLedger {
	return &BudgetLedger{db: db}
}

type ItemInput struct {
	EquipmentID uuid.UUID
	Quantity    int
}

type SectionInput struct {
	Name  string
	Items []ItemInput
}

type UpdateBudgetInput struct {
	ClientName    *string
	ClientPhone   *string
	EventDate     *time.Time
	Discount      *decimal.Decimal
	LaborCost     *decimal.Decimal
	TransportCost *decimal.Decimal
	Status        *string
}

// snapshotPrice picks the unit price captured into an item at budget
// creation: the equipment's rental price, else its purchase price, else
// zero. Items added to an existing budget never fall back to the
// purchase price; see AddItem.
func snapshotPrice(equipment *models.Equipment) decimal.Decimal {
	if !equipment.RentalPrice.IsZero() {
		return equipment.RentalPrice
	}
	if !equipment.PurchasePrice.IsZero() {
		return equipment.PurchasePrice
	}
	return decimal.Zero
}

// CreateBudget creates a budget with its nested sections and items in one
// transaction. Unit prices are snapshotted from the equipment catalog at
// this moment; a missing equipment id rolls the whole creation back.
func (l *BudgetLedger) CreateBudget(createdBy uuid.UUID, clientName, clientPhone string, eventDate time.Time, sections []SectionInput) (uuid.UUID, error) {
	budget := models.Budget{
		CreatedByUserID: createdBy,
		ClientName:      clientName,
		ClientPhone:     clientPhone,
		EventDate:       eventDate,
		Status:          models.BudgetStatusDraft,
		TotalValue:      decimal.Zero,
		Discount:        decimal.Zero,
		LaborCost:       decimal.Zero,
		TransportCost:   decimal.Zero,
		FinalValue:      decimal.Zero,
	}

	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&budget).Error; err != nil {
			return err
		}

		// Resolve every referenced equipment in a single query
		equipmentIDs := make([]uuid.UUID, 0)
		for _, section := range sections {
			for _, item := range section.Items {
				equipmentIDs = append(equipmentIDs, item.EquipmentID)
			}
		}

		equipmentByID := make(map[uuid.UUID]models.Equipment)
		if len(equipmentIDs) > 0 {
			var equipments []models.Equipment
			if err := tx.Where("id IN ?", equipmentIDs).Find(&equipments).Error; err != nil {
				return err
			}
			for _, e := range equipments {
				equipmentByID[e.ID] = e
			}
		}

		total := decimal.Zero

		for _, sectionInput := range sections {
			section := models.BudgetSection{
				BudgetID: budget.ID,
				Name:     sectionInput.Name,
			}
			if err := tx.Create(&section).Error; err != nil {
				return err
			}

			for _, itemInput := range sectionInput.Items {
				equipment, ok := equipmentByID[itemInput.EquipmentID]
				if !ok {
					return ErrEquipmentNotFound
				}

				unitPrice := snapshotPrice(&equipment)
				subtotal := unitPrice.Mul(decimal.NewFromInt(int64(itemInput.Quantity)))
				total = total.Add(subtotal)

				item := models.BudgetItem{
					SectionID:         section.ID,
					EquipmentID:       itemInput.EquipmentID,
					Quantity:          itemInput.Quantity,
					UnitPrice:         unitPrice,
					Subtotal:          subtotal,
					ShowInBudgetPrint: true,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
			}
		}

		// No discount or service costs exist at creation time
		return tx.Model(&models.Budget{}).Where("id = ?", budget.ID).
			Updates(map[string]interface{}{
				"total_value": total,
				"final_value": total,
			}).Error
	})
	if err != nil {
		return uuid.Nil, err
	}

	return budget.ID, nil
}

// AddItem inserts an item into a section and increments the parent
// budget's totals by the item subtotal in the same transaction.
func (l *BudgetLedger) AddItem(sectionID, equipmentID uuid.UUID, quantity int, customUnitPrice *decimal.Decimal) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		var section models.BudgetSection
		if err := tx.First(&section, "id = ?", sectionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSectionNotFound
			}
			return err
		}

		if err := requireDraft(tx, section.BudgetID); err != nil {
			return err
		}

		var equipment models.Equipment
		if err := tx.First(&equipment, "id = ?", equipmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEquipmentNotFound
			}
			return err
		}

		// The override wins, else the live rental price, else zero. The
		// purchase-price fallback applies only at budget creation.
		unitPrice := equipment.RentalPrice
		if customUnitPrice != nil {
			unitPrice = customUnitPrice.Round(2)
		}
		subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))

		item := models.BudgetItem{
			SectionID:         sectionID,
			EquipmentID:       equipmentID,
			Quantity:          quantity,
			UnitPrice:         unitPrice,
			Subtotal:          subtotal,
			ShowInBudgetPrint: true,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}

		return applyTotalsDelta(tx, section.BudgetID, subtotal)
	})
}

// UpdateItem changes an item's quantity and/or unit price, recomputes its
// subtotal, and applies the delta against the previous subtotal to the
// parent budget atomically with the item update. The item row is locked
// for the duration of the transaction so two concurrent updates cannot
// compute their deltas from the same stale subtotal.
func (l *BudgetLedger) UpdateItem(itemID uuid.UUID, quantity *int, unitPrice *decimal.Decimal) (*models.BudgetItem, error) {
	var item models.BudgetItem

	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		var section models.BudgetSection
		if err := tx.First(&section, "id = ?", item.SectionID).Error; err != nil {
			return err
		}

		if err := requireDraft(tx, section.BudgetID); err != nil {
			return err
		}

		previousSubtotal := item.Subtotal

		if quantity != nil {
			item.Quantity = *quantity
		}
		if unitPrice != nil {
			item.UnitPrice = unitPrice.Round(2)
		}
		item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))

		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		delta := item.Subtotal.Sub(previousSubtotal)
		return applyTotalsDelta(tx, section.BudgetID, delta)
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// DeleteItem removes an item and subtracts its subtotal from the parent
// budget in the same transaction.
func (l *BudgetLedger) DeleteItem(itemID uuid.UUID) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		var item models.BudgetItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		var section models.BudgetSection
		if err := tx.First(&section, "id = ?", item.SectionID).Error; err != nil {
			return err
		}

		if err := requireDraft(tx, section.BudgetID); err != nil {
			return err
		}

		// A delete that raced us to the row must not decrement twice
		result := tx.Delete(&item)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrItemNotFound
		}

		return applyTotalsDelta(tx, section.BudgetID, item.Subtotal.Neg())
	})
}

// ToggleShowInBudgetPrint flips the display flag of an item. Pure metadata
// mutation, totals are never touched. The owning budget id is required so
// an item cannot be toggled through another budget's URL.
func (l *BudgetLedger) ToggleShowInBudgetPrint(budgetID, itemID uuid.UUID) error {
	var item models.BudgetItem
	if err := l.db.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}

	var section models.BudgetSection
	if err := l.db.First(&section, "id = ?", item.SectionID).Error; err != nil {
		return err
	}

	if section.BudgetID != budgetID {
		return ErrOwnershipMismatch
	}

	return l.db.Model(&item).
		Update("show_in_budget_print", !item.ShowInBudgetPrint).Error
}

// CloneBudget deep-copies a budget with all its sections and items under
// fresh ids, status reset to DRAFT. Price snapshots are preserved
// verbatim, so the totals are copied rather than recomputed.
func (l *BudgetLedger) CloneBudget(budgetID, createdBy uuid.UUID) (uuid.UUID, error) {
	var cloneID uuid.UUID

	err := l.db.Transaction(func(tx *gorm.DB) error {
		var source models.Budget
		if err := tx.Preload("Sections.Items").First(&source, "id = ?", budgetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBudgetNotFound
			}
			return err
		}

		clone := models.Budget{
			CreatedByUserID: createdBy,
			ClientName:      source.ClientName,
			ClientPhone:     source.ClientPhone,
			EventDate:       source.EventDate,
			Status:          models.BudgetStatusDraft,
			TotalValue:      source.TotalValue,
			Discount:        source.Discount,
			LaborCost:       source.LaborCost,
			TransportCost:   source.TransportCost,
			FinalValue:      source.FinalValue,
		}
		if err := tx.Create(&clone).Error; err != nil {
			return err
		}

		for _, section := range source.Sections {
			sectionClone := models.BudgetSection{
				BudgetID: clone.ID,
				Name:     section.Name,
			}
			if err := tx.Create(&sectionClone).Error; err != nil {
				return err
			}

			for _, item := range section.Items {
				itemClone := models.BudgetItem{
					SectionID:         sectionClone.ID,
					EquipmentID:       item.EquipmentID,
					Quantity:          item.Quantity,
					UnitPrice:         item.UnitPrice,
					Subtotal:          item.Subtotal,
					ShowInBudgetPrint: item.ShowInBudgetPrint,
				}
				if err := tx.Create(&itemClone).Error; err != nil {
					return err
				}
			}
		}

		cloneID = clone.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return cloneID, nil
}

// CreateSection adds a named section to a draft budget.
func (l *BudgetLedger) CreateSection(budgetID uuid.UUID, name string) (uuid.UUID, error) {
	if err := requireDraft(l.db, budgetID); err != nil {
		return uuid.Nil, err
	}

	section := models.BudgetSection{
		BudgetID: budgetID,
		Name:     name,
	}
	if err := l.db.Create(&section).Error; err != nil {
		return uuid.Nil, err
	}

	return section.ID, nil
}

// UpdateSection renames a section.
func (l *BudgetLedger) UpdateSection(sectionID uuid.UUID, name string) error {
	var section models.BudgetSection
	if err := l.db.First(&section, "id = ?", sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSectionNotFound
		}
		return err
	}

	return l.db.Model(&section).Update("name", name).Error
}

// DeleteSection removes a section with its items, decrementing the budget
// totals by the sum of the removed subtotals before the delete commits.
func (l *BudgetLedger) DeleteSection(sectionID uuid.UUID) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		var section models.BudgetSection
		if err := tx.First(&section, "id = ?", sectionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSectionNotFound
			}
			return err
		}

		if err := requireDraft(tx, section.BudgetID); err != nil {
			return err
		}

		var items []models.BudgetItem
		if err := tx.Where("section_id = ?", sectionID).Find(&items).Error; err != nil {
			return err
		}

		removed := decimal.Zero
		for _, item := range items {
			removed = removed.Add(item.Subtotal)
		}

		// Children first, then the section itself
		if err := tx.Where("section_id = ?", sectionID).Delete(&models.BudgetItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&section).Error; err != nil {
			return err
		}

		return applyTotalsDelta(tx, section.BudgetID, removed.Neg())
	})
}

// budgetHeaderUpdates applies the edited header fields to the loaded
// budget and returns the column set to persist. total_value is never
// among them: the totals belong to the item delta path and must not be
// rewritten from a header edit.
func budgetHeaderUpdates(budget *models.Budget, input UpdateBudgetInput) (map[string]interface{}, error) {
	updates := map[string]interface{}{}

	if input.Status != nil && *input.Status != budget.Status {
		if budget.Status != models.BudgetStatusDraft || *input.Status != models.BudgetStatusConfirmed {
			return nil, ErrInvalidTransition
		}
		budget.Status = models.BudgetStatusConfirmed
		updates["status"] = budget.Status
	}

	if input.ClientName != nil {
		budget.ClientName = *input.ClientName
		updates["client_name"] = budget.ClientName
	}
	if input.ClientPhone != nil {
		budget.ClientPhone = *input.ClientPhone
		updates["client_phone"] = budget.ClientPhone
	}
	if input.EventDate != nil {
		budget.EventDate = *input.EventDate
		updates["event_date"] = budget.EventDate
	}
	if input.Discount != nil {
		budget.Discount = input.Discount.Round(2)
		updates["discount"] = budget.Discount
	}
	if input.LaborCost != nil {
		budget.LaborCost = input.LaborCost.Round(2)
		updates["labor_cost"] = budget.LaborCost
	}
	if input.TransportCost != nil {
		budget.TransportCost = input.TransportCost.Round(2)
		updates["transport_cost"] = budget.TransportCost
	}

	budget.ComputeFinalValue()
	updates["final_value"] = budget.FinalValue

	return updates, nil
}

// UpdateBudget edits header fields. Any change to discount or service
// costs recomputes the final value from the fixed formula; the status
// transition is one-way DRAFT -> CONFIRMED. The budget row is locked
// and only the edited columns are written, so a concurrent item
// increment on total_value is never clobbered.
func (l *BudgetLedger) UpdateBudget(budgetID uuid.UUID, input UpdateBudgetInput) (*models.Budget, error) {
	var budget models.Budget

	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&budget, "id = ?", budgetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBudgetNotFound
			}
			return err
		}

		updates, err := budgetHeaderUpdates(&budget, input)
		if err != nil {
			return err
		}

		return tx.Model(&models.Budget{}).Where("id = ?", budgetID).
			Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return &budget, nil
}

// RecomputeTotals rebuilds a budget's total from its item rows and the
// final value from the formula. The incremental updates keep the totals
// correct on their own; this is the repair path for denormalization
// drift. Reports whether anything had to change.
func (l *BudgetLedger) RecomputeTotals(budgetID uuid.UUID) (bool, error) {
	changed := false

	err := l.db.Transaction(func(tx *gorm.DB) error {
		var budget models.Budget
		if err := tx.First(&budget, "id = ?", budgetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBudgetNotFound
			}
			return err
		}

		var sectionIDs []uuid.UUID
		if err := tx.Model(&models.BudgetSection{}).
			Where("budget_id = ?", budgetID).
			Pluck("id", &sectionIDs).Error; err != nil {
			return err
		}

		total := decimal.Zero
		if len(sectionIDs) > 0 {
			var items []models.BudgetItem
			if err := tx.Where("section_id IN ?", sectionIDs).Find(&items).Error; err != nil {
				return err
			}
			for _, item := range items {
				total = total.Add(item.Subtotal)
			}
		}

		previousTotal := budget.TotalValue
		previousFinal := budget.FinalValue

		budget.TotalValue = total
		budget.ComputeFinalValue()

		if budget.TotalValue.Equal(previousTotal) && budget.FinalValue.Equal(previousFinal) {
			return nil
		}

		changed = true
		return tx.Model(&models.Budget{}).Where("id = ?", budgetID).
			Updates(map[string]interface{}{
				"total_value": budget.TotalValue,
				"final_value": budget.FinalValue,
			}).Error
	})

	return changed, err
}

// DeleteBudget removes a budget with everything it owns: items first,
// then sections, then the budget row, all in one transaction.
func (l *BudgetLedger) DeleteBudget(budgetID uuid.UUID) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		var budget models.Budget
		if err := tx.First(&budget, "id = ?", budgetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBudgetNotFound
			}
			return err
		}

		var sectionIDs []uuid.UUID
		if err := tx.Model(&models.BudgetSection{}).
			Where("budget_id = ?", budgetID).
			Pluck("id", &sectionIDs).Error; err != nil {
			return err
		}

		if len(sectionIDs) > 0 {
			if err := tx.Where("section_id IN ?", sectionIDs).Delete(&models.BudgetItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("budget_id = ?", budgetID).Delete(&models.BudgetSection{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&budget).Error
	})
}

// requireDraft loads the budget and rejects mutating operations once it
// has been confirmed. The row is taken FOR UPDATE so the draft check
// cannot race a concurrent confirmation.
func requireDraft(tx *gorm.DB, budgetID uuid.UUID) error {
	var budget models.Budget
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&budget, "id = ?", budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBudgetNotFound
		}
		return err
	}
	if budget.Status != models.BudgetStatusDraft {
		return ErrBudgetNotDraft
	}
	return nil
}

// applyTotalsDelta lands a delta on both denormalized totals as a single
// UPDATE so concurrent writers on the same budget serialize at the
// storage layer instead of clobbering each other.
func applyTotalsDelta(tx *gorm.DB, budgetID uuid.UUID, delta decimal.Decimal) error {
	return tx.Model(&models.Budget{}).Where("id = ?", budgetID).
		Updates(map[string]interface{}{
			"total_value": gorm.Expr("total_value + ?", delta),
			"final_value": gorm.Expr("final_value + ?", delta),
		}).Error
}
