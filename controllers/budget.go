// controllers/budget.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/andreghisleni/gestao-som-back/models"
	"github.com/andreghisleni/gestao-som-back/services"
	"github.com/andreghisleni/gestao-som-back/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BudgetController struct {
	db       *gorm.DB
	ledger   *services.BudgetLedger
	notifier *services.NotificationService
}

func NewBudgetController(db *gorm.DB, ledger *services.BudgetLedger, notifier *services.NotificationService) *BudgetController {
	return &BudgetController{db: db, ledger: ledger, notifier: notifier}
}

// BudgetItemInput defines one line of a section at budget creation
type BudgetItemInput struct {
	EquipmentID uuid.UUID `json:"equipmentId" binding:"required"`
	Quantity    int       `json:"quantity" binding:"required,min=1"`
}

// BudgetSectionInput defines one named section at budget creation
type BudgetSectionInput struct {
	Name  string            `json:"name" binding:"required"`
	Items []BudgetItemInput `json:"items"`
}

// CreateBudgetInput defines the expected JSON structure for creating a budget
type CreateBudgetInput struct {
	ClientName  string               `json:"clientName" binding:"required"`
	ClientPhone string               `json:"clientPhone"`
	EventDate   time.Time            `json:"eventDate" binding:"required"`
	Sections    []BudgetSectionInput `json:"sections"`
}

// UpdateBudgetInput defines the expected JSON structure for updating a budget
type UpdateBudgetInput struct {
	ClientName    *string          `json:"clientName"`
	ClientPhone   *string          `json:"clientPhone"`
	EventDate     *time.Time       `json:"eventDate"`
	Discount      *decimal.Decimal `json:"discount"`
	LaborCost     *decimal.Decimal `json:"laborCost"`
	TransportCost *decimal.Decimal `json:"transportCost"`
	Status        *string          `json:"status" binding:"omitempty,oneof=DRAFT CONFIRMED"`
}

var budgetSortColumns = map[string]string{
	"clientName": "client_name",
	"finalValue": "final_value",
	"createdAt":  "created_at",
}

// respondLedgerError maps the ledger's sentinel errors onto HTTP statuses.
func respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrBudgetNotFound),
		errors.Is(err, services.ErrSectionNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrEquipmentNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrOwnershipMismatch):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrBudgetNotDraft),
		errors.Is(err, services.ErrInvalidTransition):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
	}
}

// CreateBudget creates a budget with nested sections and items in one
// transaction, snapshotting prices from the equipment catalog.
func (bc *BudgetController) CreateBudget(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	userUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return
	}

	var input CreateBudgetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	sections := make([]services.SectionInput, 0, len(input.Sections))
	for _, s := range input.Sections {
		section := services.SectionInput{Name: s.Name}
		for _, it := range s.Items {
			section.Items = append(section.Items, services.ItemInput{
				EquipmentID: it.EquipmentID,
				Quantity:    it.Quantity,
			})
		}
		sections = append(sections, section)
	}

	budgetID, err := bc.ledger.CreateBudget(userUUID, input.ClientName, input.ClientPhone, input.EventDate, sections)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": budgetID})
}

// GetBudgets retrieves a page of budget summaries, filterable by client
// name and status, sortable by client name, final value, or creation date.
func (bc *BudgetController) GetBudgets(c *gin.Context) {
	query := bc.db.Model(&models.Budget{})

	if filter := c.Query("filter"); filter != "" {
		query = query.Where("client_name ILIKE ?", "%"+filter+"%")
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count budgets")
		return
	}

	var budgets []models.Budget
	if err := query.
		Order(utils.OrderClause(c, budgetSortColumns, "created_at desc")).
		Scopes(utils.Paginate(c)).
		Find(&budgets).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve budgets")
		return
	}

	c.JSON(http.StatusOK, utils.CreatePaginatedResponse(c, budgets, totalRows))
}

// GetBudget retrieves a full budget with sections, items, the equipment
// each item points at, and the creator.
func (bc *BudgetController) GetBudget(c *gin.Context) {
	budgetUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid budget ID format")
		return
	}

	var budget models.Budget
	if err := bc.db.
		Preload("Sections.Items.Equipment").
		Preload("CreatedBy").
		First(&budget, "id = ?", budgetUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Budget not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, budget)
}

// UpdateBudget edits budget header fields and handles the one-way
// DRAFT -> CONFIRMED transition, notifying the client on confirmation.
func (bc *BudgetController) UpdateBudget(c *gin.Context) {
	budgetUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid budget ID format")
		return
	}

	var input UpdateBudgetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	wasConfirmation := input.Status != nil && *input.Status == models.BudgetStatusConfirmed

	budget, err := bc.ledger.UpdateBudget(budgetUUID, services.UpdateBudgetInput{
		ClientName:    input.ClientName,
		ClientPhone:   input.ClientPhone,
		EventDate:     input.EventDate,
		Discount:      input.Discount,
		LaborCost:     input.LaborCost,
		TransportCost: input.TransportCost,
		Status:        input.Status,
	})
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	if wasConfirmation && bc.notifier != nil {
		go bc.notifier.SendBudgetConfirmed(budget)
	}

	c.JSON(http.StatusOK, budget)
}

// DeleteBudget removes a budget with all its sections and items
func (bc *BudgetController) DeleteBudget(c *gin.Context) {
	budgetUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid budget ID format")
		return
	}

	if err := bc.ledger.DeleteBudget(budgetUUID); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// CloneBudget deep-copies a budget as a new draft
func (bc *BudgetController) CloneBudget(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	userUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return
	}

	budgetUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid budget ID format")
		return
	}

	cloneID, err := bc.ledger.CloneBudget(budgetUUID, userUUID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": cloneID})
}

// RecalculateBudget rebuilds the budget totals from its item rows
func (bc *BudgetController) RecalculateBudget(c *gin.Context) {
	budgetUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid budget ID format")
		return
	}

	changed, err := bc.ledger.RecomputeTotals(budgetUUID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"repaired": changed})
}

// ToggleShowInBudgetPrint flips an item's print flag without touching totals
func (bc *BudgetController) ToggleShowInBudgetPrint(c *gin.Context) {
	budgetUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid budget ID format")
		return
	}

	itemUUID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	if err := bc.ledger.ToggleShowInBudgetPrint(budgetUUID, itemUUID); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item updated"})
}
