// services/notification_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/andreghisleni/gestao-som-back/models"

	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// NotificationService sends WhatsApp/SMS messages to budget clients: a
// confirmation when a budget is approved, and a reminder a few days
// before the event date. When the Twilio credentials are absent the
// service logs and skips, so local setups run without an account.
type NotificationService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	var client *twilio.RestClient
	if accountSid != "" && authToken != "" {
		client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		})
	}

	return &NotificationService{db: db, client: client}
}

func (s *NotificationService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	c.AddFunc("0 9 * * *", s.SendEventReminders)

	c.Start()
	log.Println("Event reminder scheduler started")
}

// SendEventReminders notifies clients of confirmed budgets whose event
// happens within the next 7 days.
func (s *NotificationService) SendEventReminders() {
	log.Println("Starting event reminder processing...")

	now := time.Now()
	windowEnd := now.AddDate(0, 0, 7)

	var budgets []models.Budget
	if err := s.db.
		Where("status = ? AND event_date BETWEEN ? AND ?", models.BudgetStatusConfirmed, now, windowEnd).
		Find(&budgets).Error; err != nil {
		log.Printf("Failed to fetch upcoming budgets: %v", err)
		return
	}

	for _, budget := range budgets {
		message := fmt.Sprintf(
			"Olá %s! Lembrete: seu evento está agendado para %s. Qualquer ajuste no orçamento, fale com a gente.",
			budget.ClientName, budget.EventDate.Format("02/01/2006"))
		s.send(&budget, "event_reminder", message)
	}

	log.Println("Event reminder processing completed")
}

// SendBudgetConfirmed notifies the client that their budget was approved.
func (s *NotificationService) SendBudgetConfirmed(budget *models.Budget) {
	message := fmt.Sprintf(
		"Olá %s! Seu orçamento foi confirmado no valor de R$ %s para o evento de %s.",
		budget.ClientName, budget.FinalValue.StringFixed(2), budget.EventDate.Format("02/01/2006"))
	s.send(budget, "confirmation", message)
}

func (s *NotificationService) send(budget *models.Budget, notificationType, message string) {
	if budget.ClientPhone == "" {
		return
	}
	if s.client == nil {
		log.Printf("Twilio not configured, skipping %s for budget %s", notificationType, budget.ID)
		return
	}

	// WhatsApp for E.164 numbers, plain SMS otherwise
	channel := "sms"
	to := budget.ClientPhone
	if strings.HasPrefix(budget.ClientPhone, "+") {
		to = "whatsapp:" + budget.ClientPhone
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)

	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, err := s.client.Api.CreateMessage(params)
	status := "sent"
	errorMsg := ""

	if err != nil {
		log.Printf("Failed to send %s to %s: %v", notificationType, budget.ClientPhone, err)
		status = "failed"
		errorMsg = err.Error()
	} else if resp.Sid != nil {
		log.Printf("Sent %s to %s, SID: %s", notificationType, budget.ClientPhone, *resp.Sid)
	}

	notificationLog := models.NotificationLog{
		BudgetID:     budget.ID,
		Type:         notificationType,
		Message:      message,
		Status:       status,
		ErrorMessage: errorMsg,
		Channel:      channel,
		SentAt:       time.Now(),
	}

	if err := s.db.Create(&notificationLog).Error; err != nil {
		log.Printf("Failed to log notification for budget %s: %v", budget.ID, err)
	}
}
