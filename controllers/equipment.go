// controllers/equipment.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/andreghisleni/gestao-som-back/models"
	"github.com/andreghisleni/gestao-som-back/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EquipmentController struct {
	db *gorm.DB
}

func NewEquipmentController(db *gorm.DB) *EquipmentController {
	return &EquipmentController{db: db}
}

// CreateEquipmentInput defines the expected JSON structure for creating equipment
type CreateEquipmentInput struct {
	Name             string          `json:"name" binding:"required"`
	Category         string          `json:"category" binding:"required"`
	PurchasePrice    decimal.Decimal `json:"purchasePrice" binding:"required"`
	RentalPercentage decimal.Decimal `json:"rentalPercentage" binding:"required"`
	StockTotal       *int            `json:"stockTotal"`
}

// UpdateEquipmentInput defines the expected JSON structure for updating equipment
type UpdateEquipmentInput struct {
	Name             *string          `json:"name"`
	Category         *string          `json:"category"`
	PurchasePrice    *decimal.Decimal `json:"purchasePrice"`
	RentalPercentage *decimal.Decimal `json:"rentalPercentage"`
	StockTotal       *int             `json:"stockTotal"`
}

var equipmentSortColumns = map[string]string{
	"name":          "name",
	"category":      "category",
	"purchasePrice": "purchase_price",
}

// CreateEquipment creates a new catalog equipment
func (ec *EquipmentController) CreateEquipment(c *gin.Context) {
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

	var input CreateEquipmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	equipment := models.Equipment{
		CreatedByUserID:  userUUID,
		Name:             input.Name,
		Category:         input.Category,
		PurchasePrice:    input.PurchasePrice.Round(2),
		RentalPercentage: input.RentalPercentage,
	}
	if input.StockTotal != nil {
		equipment.StockTotal = *input.StockTotal
	}
	equipment.RecalculateRentalPrice()

	if err := ec.db.Create(&equipment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create equipment")
		return
	}

	c.JSON(http.StatusCreated, equipment)
}

// GetEquipments retrieves a page of equipment, filterable by name or
// category and sortable by name, category, or purchase price.
func (ec *EquipmentController) GetEquipments(c *gin.Context) {
	query := ec.db.Model(&models.Equipment{})

	if filter := c.Query("filter"); filter != "" {
		pattern := "%" + filter + "%"
		query = query.Where("name ILIKE ? OR category ILIKE ?", pattern, pattern)
	}

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count equipment")
		return
	}

	var equipments []models.Equipment
	if err := query.
		Order(utils.OrderClause(c, equipmentSortColumns, "name asc")).
		Scopes(utils.Paginate(c)).
		Find(&equipments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve equipment")
		return
	}

	c.JSON(http.StatusOK, utils.CreatePaginatedResponse(c, equipments, totalRows))
}

// GetEquipment retrieves a specific equipment by ID
func (ec *EquipmentController) GetEquipment(c *gin.Context) {
	equipmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid equipment ID format")
		return
	}

	var equipment models.Equipment
	if err := ec.db.First(&equipment, "id = ?", equipmentUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Equipment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, equipment)
}

// UpdateEquipment updates an existing equipment. Changing the purchase
// price or rental percentage rederives the rental price; budgets created
// earlier keep their snapshotted prices.
func (ec *EquipmentController) UpdateEquipment(c *gin.Context) {
	equipmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid equipment ID format")
		return
	}

	var input UpdateEquipmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var equipment models.Equipment
	if err := ec.db.First(&equipment, "id = ?", equipmentUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Equipment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		equipment.Name = *input.Name
	}
	if input.Category != nil {
		equipment.Category = *input.Category
	}
	if input.PurchasePrice != nil {
		equipment.PurchasePrice = input.PurchasePrice.Round(2)
	}
	if input.RentalPercentage != nil {
		equipment.RentalPercentage = *input.RentalPercentage
	}
	if input.StockTotal != nil {
		equipment.StockTotal = *input.StockTotal
	}

	if input.PurchasePrice != nil || input.RentalPercentage != nil {
		equipment.RecalculateRentalPrice()
	}

	if err := ec.db.Save(&equipment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update equipment")
		return
	}

	c.JSON(http.StatusOK, equipment)
}

// DeleteEquipment deletes a catalog equipment. Existing budget items keep
// their snapshotted prices and simply point at a gone record.
func (ec *EquipmentController) DeleteEquipment(c *gin.Context) {
	equipmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid equipment ID format")
		return
	}

	result := ec.db.Delete(&models.Equipment{}, "id = ?", equipmentUUID)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete equipment")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Equipment not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Equipment deleted successfully"})
}
