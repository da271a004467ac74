// controllers/section.go
package controllers

import (
	"net/http"

	"github.com/andreghisleni/gestao-som-back/services"
	"github.com/andreghisleni/gestao-som-back/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SectionController struct {
	db     *gorm.DB
	ledger *services.BudgetLedger
}

func NewSectionController(db *gorm.DB, ledger *services.BudgetLedger) *SectionController {
	return &SectionController{db: db, ledger: ledger}
}

// CreateSectionInput defines the expected JSON structure for creating a section
type CreateSectionInput struct {
	Name string `json:"name" binding:"required"`
}

// UpdateSectionInput defines the expected JSON structure for renaming a section
type UpdateSectionInput struct {
	Name string `json:"name" binding:"required"`
}

// CreateSection adds a named section to a draft budget
func (sc *SectionController) CreateSection(c *gin.Context) {
	budgetUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid budget ID format")
		return
	}

	var input CreateSectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	sectionID, err := sc.ledger.CreateSection(budgetUUID, input.Name)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": sectionID})
}

// UpdateSection renames a section
func (sc *SectionController) UpdateSection(c *gin.Context) {
	sectionUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid section ID format")
		return
	}

	var input UpdateSectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if err := sc.ledger.UpdateSection(sectionUUID, input.Name); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Section updated successfully"})
}

// DeleteSection removes a section and its items, keeping budget totals in sync
func (sc *SectionController) DeleteSection(c *gin.Context) {
	sectionUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid section ID format")
		return
	}

	if err := sc.ledger.DeleteSection(sectionUUID); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Section deleted successfully"})
}
