// controllers/item.go
package controllers

import (
	"net/http"

	"github.com/andreghisleni/gestao-som-back/services"
	"github.com/andreghisleni/gestao-som-back/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ItemController struct {
	db     *gorm.DB
	ledger *services.BudgetLedger
}

func NewItemController(db *gorm.DB, ledger *services.BudgetLedger) *ItemController {
	return &ItemController{db: db, ledger: ledger}
}

// AddItemInput defines the expected JSON structure for adding an item to a section
type AddItemInput struct {
	EquipmentID     uuid.UUID        `json:"equipmentId" binding:"required"`
	Quantity        int              `json:"quantity" binding:"required,min=1"`
	CustomUnitPrice *decimal.Decimal `json:"customUnitPrice"`
}

// UpdateItemInput defines the expected JSON structure for updating an item
type UpdateItemInput struct {
	Quantity  *int             `json:"quantity" binding:"omitempty,min=1"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
}

// AddItem inserts an item into a section, snapshotting the unit price and
// incrementing the parent budget totals atomically.
func (ic *ItemController) AddItem(c *gin.Context) {
	sectionUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid section ID format")
		return
	}

	var input AddItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if err := ic.ledger.AddItem(sectionUUID, input.EquipmentID, input.Quantity, input.CustomUnitPrice); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Item added and budget updated"})
}

// UpdateItem changes an item's quantity and/or unit price and applies the
// subtotal delta to the parent budget.
func (ic *ItemController) UpdateItem(c *gin.Context) {
	itemUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var input UpdateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	item, err := ic.ledger.UpdateItem(itemUUID, input.Quantity, input.UnitPrice)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteItem removes an item and subtracts its subtotal from the budget
func (ic *ItemController) DeleteItem(c *gin.Context) {
	itemUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	if err := ic.ledger.DeleteItem(itemUUID); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}
