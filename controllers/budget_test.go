package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andreghisleni/gestao-som-back/models"
	"github.com/andreghisleni/gestao-som-back/routes"
	"github.com/andreghisleni/gestao-som-back/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiTest struct {
	router *gin.Engine
	db     *gorm.DB
	token  string
}

func newAPITest(t *testing.T) *apiTest {
	t.Helper()

	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Equipment{},
		&models.Budget{},
		&models.BudgetSection{},
		&models.BudgetItem{},
		&models.NotificationLog{},
	))

	user := models.User{
		Email:    "operator@example.com",
		Name:     "Operator",
		Password: "super-secret-pw",
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(user.ID.String())
	require.NoError(t, err)

	return &apiTest{
		router: routes.SetupRouter(db, nil),
		db:     db,
		token:  token,
	}
}

func (a *apiTest) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func requireMoney(t *testing.T, expected string, raw interface{}) {
	t.Helper()
	str, ok := raw.(string)
	require.True(t, ok, "expected decimal string, got %T", raw)
	require.True(t, decimal.RequireFromString(str).Equal(decimal.RequireFromString(expected)),
		"expected %s, got %s", expected, str)
}

func (a *apiTest) createEquipment(t *testing.T, name, purchasePrice string, rentalPercentage string) string {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/equipments", gin.H{
		"name":             name,
		"category":         "Som (Principal)",
		"purchasePrice":    purchasePrice,
		"rentalPercentage": rentalPercentage,
		"stockTotal":       5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody(t, w)["ID"].(string)
}

func TestBudgetEndpointsFlow(t *testing.T) {
	a := newAPITest(t)

	// 2500 * 4% = 100, 1250 * 4% = 50
	speakersID := a.createEquipment(t, "PA Sub 12", "2500.00", "4.00")
	micsID := a.createEquipment(t, "Wireless Mics", "1250.00", "4.00")

	w := a.do(t, http.MethodPost, "/api/budgets", gin.H{
		"clientName": "Casamento Silva",
		"eventDate":  time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
		"sections": []gin.H{
			{"name": "Cerimônia", "items": []gin.H{{"equipmentId": speakersID, "quantity": 2}}},
			{"name": "Recepção", "items": []gin.H{{"equipmentId": micsID, "quantity": 1}}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	budgetID := decodeBody(t, w)["id"].(string)

	// Full read includes sections, items, and totals
	w = a.do(t, http.MethodGet, "/api/budgets/"+budgetID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	budget := decodeBody(t, w)
	requireMoney(t, "250", budget["TotalValue"])
	requireMoney(t, "250", budget["FinalValue"])
	sections := budget["Sections"].([]interface{})
	require.Len(t, sections, 2)
	sectionID := sections[0].(map[string]interface{})["ID"].(string)

	// Adding an item moves the totals
	w = a.do(t, http.MethodPost, "/api/sections/"+sectionID+"/items", gin.H{
		"equipmentId":     micsID,
		"quantity":        1,
		"customUnitPrice": "30.00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(t, http.MethodGet, "/api/budgets/"+budgetID, nil)
	budget = decodeBody(t, w)
	requireMoney(t, "280", budget["TotalValue"])

	// List shows the budget with pagination metadata
	w = a.do(t, http.MethodGet, "/api/budgets?page=1&pageSize=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody(t, w)
	assert.Equal(t, float64(1), list["totalRows"])

	// Clone keeps values, resets nothing else
	w = a.do(t, http.MethodPost, "/api/budgets/"+budgetID+"/clone", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	cloneID := decodeBody(t, w)["id"].(string)
	require.NotEqual(t, budgetID, cloneID)

	w = a.do(t, http.MethodGet, "/api/budgets/"+cloneID, nil)
	requireMoney(t, "280", decodeBody(t, w)["TotalValue"])
}

func TestBudgetConfirmationLocksItems(t *testing.T) {
	a := newAPITest(t)

	equipmentID := a.createEquipment(t, "Par Leds", "1500.00", "7.00")

	w := a.do(t, http.MethodPost, "/api/budgets", gin.H{
		"clientName": "Formatura",
		"eventDate":  time.Now().AddDate(0, 2, 0).Format(time.RFC3339),
		"sections": []gin.H{
			{"name": "Pista", "items": []gin.H{{"equipmentId": equipmentID, "quantity": 1}}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	budgetID := decodeBody(t, w)["id"].(string)

	w = a.do(t, http.MethodGet, "/api/budgets/"+budgetID, nil)
	sectionID := decodeBody(t, w)["Sections"].([]interface{})[0].(map[string]interface{})["ID"].(string)

	w = a.do(t, http.MethodPut, "/api/budgets/"+budgetID, gin.H{"status": "CONFIRMED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/api/sections/"+sectionID+"/items", gin.H{
		"equipmentId": equipmentID,
		"quantity":    1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Discount edits stay open after confirmation
	w = a.do(t, http.MethodPut, "/api/budgets/"+budgetID, gin.H{"discount": "5.00"})
	require.Equal(t, http.StatusOK, w.Code)
	requireMoney(t, "100", decodeBody(t, w)["FinalValue"])
}

func TestToggleShowInBudgetPrintOwnership(t *testing.T) {
	a := newAPITest(t)

	equipmentID := a.createEquipment(t, "Máquina Fumaça", "800.00", "7.00")

	w := a.do(t, http.MethodPost, "/api/budgets", gin.H{
		"clientName": "Aniversário",
		"eventDate":  time.Now().AddDate(0, 0, 10).Format(time.RFC3339),
		"sections": []gin.H{
			{"name": "Salão", "items": []gin.H{{"equipmentId": equipmentID, "quantity": 1}}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	budgetID := decodeBody(t, w)["id"].(string)

	w = a.do(t, http.MethodPost, "/api/budgets/"+budgetID+"/clone", nil)
	otherBudgetID := decodeBody(t, w)["id"].(string)

	w = a.do(t, http.MethodGet, "/api/budgets/"+budgetID, nil)
	section := decodeBody(t, w)["Sections"].([]interface{})[0].(map[string]interface{})
	itemID := section["Items"].([]interface{})[0].(map[string]interface{})["ID"].(string)

	// Toggling through the owning budget works
	w = a.do(t, http.MethodPut, "/api/budgets/"+budgetID+"/items/"+itemID+"/toggle-show-in-budget-print", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Toggling through another budget's URL is rejected
	w = a.do(t, http.MethodPut, "/api/budgets/"+otherBudgetID+"/items/"+itemID+"/toggle-show-in-budget-print", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBudgetEndpointsRequireAuth(t *testing.T) {
	a := newAPITest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/budgets", nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateBudgetUnknownEquipmentRollsBack(t *testing.T) {
	a := newAPITest(t)

	w := a.do(t, http.MethodPost, "/api/budgets", gin.H{
		"clientName": "Evento Fantasma",
		"eventDate":  time.Now().AddDate(0, 0, 5).Format(time.RFC3339),
		"sections": []gin.H{
			{"name": "Palco", "items": []gin.H{
				{"equipmentId": "1b671a64-40d5-491e-99b0-da01ff1f3341", "quantity": 2},
			}},
		},
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	var budgets int64
	require.NoError(t, a.db.Model(&models.Budget{}).Count(&budgets).Error)
	assert.Zero(t, budgets)
}
