package routes

import (
	"github.com/andreghisleni/gestao-som-back/config"
	"github.com/andreghisleni/gestao-som-back/controllers"
	"github.com/andreghisleni/gestao-som-back/services"
	"github.com/andreghisleni/gestao-som-back/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, notifier *services.NotificationService) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	ledger := services.NewBudgetLedger(db)

	authController := controllers.NewAuthController(db)
	categoryController := controllers.NewCategoryController(db)
	equipmentController := controllers.NewEquipmentController(db)
	budgetController := controllers.NewBudgetController(db, ledger, notifier)
	sectionController := controllers.NewSectionController(db, ledger)
	itemController := controllers.NewItemController(db, ledger)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", authController.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Category routes
		categories := api.Group("/categories")
		{
			categories.POST("", categoryController.CreateCategory)
			categories.GET("", categoryController.GetCategories)
			categories.GET("/:id", categoryController.GetCategory)
			categories.PUT("/:id", categoryController.UpdateCategory)
			categories.DELETE("/:id", categoryController.DeleteCategory)
		}

		// Equipment catalog routes
		equipments := api.Group("/equipments")
		{
			equipments.POST("", equipmentController.CreateEquipment)
			equipments.GET("", equipmentController.GetEquipments)
			equipments.GET("/:id", equipmentController.GetEquipment)
			equipments.PUT("/:id", equipmentController.UpdateEquipment)
			equipments.DELETE("/:id", equipmentController.DeleteEquipment)
		}

		// Budget routes
		budgets := api.Group("/budgets")
		{
			budgets.POST("", budgetController.CreateBudget)
			budgets.GET("", budgetController.GetBudgets)
			budgets.GET("/:id", budgetController.GetBudget)
			budgets.PUT("/:id", budgetController.UpdateBudget)
			budgets.DELETE("/:id", budgetController.DeleteBudget)
			budgets.POST("/:id/clone", budgetController.CloneBudget)
			budgets.POST("/:id/recalculate", budgetController.RecalculateBudget)
			budgets.PUT("/:id/items/:itemId/toggle-show-in-budget-print", budgetController.ToggleShowInBudgetPrint)

			budgets.POST("/:id/sections", sectionController.CreateSection)
		}

		// Section routes
		sections := api.Group("/sections")
		{
			sections.PUT("/:id", sectionController.UpdateSection)
			sections.DELETE("/:id", sectionController.DeleteSection)
			sections.POST("/:id/items", itemController.AddItem)
		}

		// Item routes
		items := api.Group("/items")
		{
			items.PUT("/:id", itemController.UpdateItem)
			items.DELETE("/:id", itemController.DeleteItem)
		}
	}

	return r
}
