// services/reconciler.go
package services

import (
	"log"

	"github.com/andreghisleni/gestao-som-back/models"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Reconciler periodically rebuilds every budget's totals from its item
// rows. The per-operation increments are the hot path; this job exists
// to catch and repair denormalization drift.
type Reconciler struct {
	db     *gorm.DB
	ledger *BudgetLedger
}

func NewReconciler(db *gorm.DB, ledger *BudgetLedger) *Reconciler {
	return &Reconciler{db: db, ledger: ledger}
}

func (r *Reconciler) StartScheduler() {
	c := cron.New()

	// Run nightly at 3:30 AM
	c.AddFunc("30 3 * * *", func() {
		if err := r.ReconcileAll(); err != nil {
			log.Printf("Totals reconciliation failed: %v", err)
		}
	})

	c.Start()
	log.Println("Totals reconciliation scheduler started")
}

// ReconcileAll recomputes totals for every budget and logs the ones that
// needed repair.
func (r *Reconciler) ReconcileAll() error {
	var budgetIDs []uuid.UUID
	if err := r.db.Model(&models.Budget{}).Pluck("id", &budgetIDs).Error; err != nil {
		return err
	}

	repaired := 0
	for _, id := range budgetIDs {
		changed, err := r.ledger.RecomputeTotals(id)
		if err != nil {
			log.Printf("Failed to recompute totals for budget %s: %v", id, err)
			continue
		}
		if changed {
			repaired++
			log.Printf("Repaired drifted totals for budget %s", id)
		}
	}

	log.Printf("Totals reconciliation completed, %d of %d budgets repaired", repaired, len(budgetIDs))
	return nil
}
