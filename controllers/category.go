// controllers/category.go
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

type CategoryController struct {
	db *gorm.DB
}

func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{db: db}
}

// CreateCategoryInput defines the expected JSON structure for creating a category
type CreateCategoryInput struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	RentalPercent decimal.Decimal `json:"rentalPercent"`
}

// UpdateCategoryInput defines the expected JSON structure for updating a category
type UpdateCategoryInput struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	RentalPercent *decimal.Decimal `json:"rentalPercent"`
}

// CreateCategory creates a new equipment category
func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var input CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Category names are unique
	var existing models.Category
	if err := cc.db.Where("name = ?", input.Name).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Category with this name already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	category := models.Category{
		Name:          input.Name,
		Description:   input.Description,
		RentalPercent: input.RentalPercent,
	}

	if err := cc.db.Create(&category).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create category")
		return
	}

	c.JSON(http.StatusCreated, category)
}

// GetCategories retrieves all categories
func (cc *CategoryController) GetCategories(c *gin.Context) {
	var categories []models.Category
	if err := cc.db.Order("name asc").Find(&categories).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}

	c.JSON(http.StatusOK, categories)
}

// GetCategory retrieves a specific category by ID
func (cc *CategoryController) GetCategory(c *gin.Context) {
	categoryUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	var category models.Category
	if err := cc.db.First(&category, "id = ?", categoryUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Category not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, category)
}

// UpdateCategory updates an existing category
func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	categoryUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	var input UpdateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var category models.Category
	if err := cc.db.First(&category, "id = ?", categoryUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Category not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		category.Name = *input.Name
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.RentalPercent != nil {
		category.RentalPercent = *input.RentalPercent
	}

	if err := cc.db.Save(&category).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update category")
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory deletes a category
func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	categoryUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	result := cc.db.Delete(&models.Category{}, "id = ?", categoryUUID)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete category")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Category not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
