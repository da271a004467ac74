package main

import (
	"fmt"
	"log"
	"os"

	"github.com/andreghisleni/gestao-som-back/config"
	"github.com/andreghisleni/gestao-som-back/models"
	"github.com/andreghisleni/gestao-som-back/routes"
	"github.com/andreghisleni/gestao-som-back/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	db := config.ConnectDB()

	db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Equipment{},
		&models.Budget{},
		&models.BudgetSection{},
		&models.BudgetItem{},
		&models.NotificationLog{},
	)

	ledger := services.NewBudgetLedger(db)
	notifier := services.NewNotificationService(db)
	notifier.StartScheduler()

	reconciler := services.NewReconciler(db, ledger)
	reconciler.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	r := routes.SetupRouter(db, notifier)
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
