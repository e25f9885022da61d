package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solardesk/internal/config"
	"solardesk/internal/database"
	"solardesk/internal/models"
	"solardesk/internal/workflow"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Syncer keeps projects and the billing provider in step: projects marked
// send_invoice get an invoice created and sent, and sent invoices are polled
// until the provider reports them paid. Failures are logged and retried on
// the next tick; the sync never surfaces errors to users.
type Syncer struct {
	DB       *gorm.DB
	Client   *Client
	Logger   *logrus.Logger
	Interval time.Duration
}

func NewSyncer(db *gorm.DB, client *Client, logger *logrus.Logger) *Syncer {
	return &Syncer{
		DB:       db,
		Client:   client,
		Logger:   logger,
		Interval: time.Minute,
	}
}

func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SyncOnce(ctx)
		}
	}
}

func (s *Syncer) SyncOnce(ctx context.Context) {
	s.pushInvoices(ctx)
	s.pollPayments(ctx)
}

func (s *Syncer) pushInvoices(ctx context.Context) {
	var projects []models.Project
	err := s.DB.Preload("Client").
		Where("status = ?", models.StatusSendInvoice).
		Find(&projects).Error
	if err != nil {
		config.LogError(s.Logger, "sync.go", "pushInvoices", "load projects", nil, err)
		return
	}

	for i := range projects {
		if err := s.pushOne(ctx, &projects[i]); err != nil {
			config.LogError(s.Logger, "sync.go", "pushInvoices", "push invoice", projects[i].ID, err)
		}
	}
}

func (s *Syncer) pushOne(ctx context.Context, project *models.Project) error {
	// The mirror row doubles as an idempotency record: a retry after a
	// partial failure reuses the provider document instead of creating a
	// duplicate.
	var mirror models.Invoice
	err := s.DB.Where("project_id = ?", project.ID).First(&mirror).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if mirror.ExternalID == "" {
		doc, err := s.Client.CreateInvoice(ctx, InvoiceRequest{
			ProjectRef:    fmt.Sprintf("project-%d", project.ID),
			CustomerName:  project.Client.Name,
			CustomerEmail: project.Client.ContactEmail,
			Title:         project.Title,
			Amount:        project.ContractAmount,
			Currency:      "EUR",
		})
		if err != nil {
			return err
		}

		mirror.ProjectID = project.ID
		mirror.ExternalID = doc.ID
		mirror.Number = doc.Number
		mirror.Amount = project.ContractAmount
		mirror.Status = models.InvoiceDraft
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&mirror).Error; err != nil {
				return err
			}
			return database.AppendProjectHistory(tx, &models.ProjectHistoryEntry{
				ProjectID:   project.ID,
				UserName:    "System",
				ChangeType:  models.ChangeInvoice,
				NewValue:    doc.Number,
				Description: fmt.Sprintf("Invoice %s created at billing provider", doc.Number),
			})
		})
		if err != nil {
			return err
		}
	}

	if mirror.Status == models.InvoiceDraft {
		if err := s.Client.SendInvoice(ctx, mirror.ExternalID); err != nil {
			return err
		}
		now := time.Now()
		err := s.DB.Model(&models.Invoice{}).Where("id = ?", mirror.ID).
			Updates(map[string]interface{}{"status": models.InvoiceSent, "sent_at": now}).Error
		if err != nil {
			return err
		}
	}

	desc := fmt.Sprintf("Invoice %s sent via billing provider", mirror.Number)
	_, err = workflow.ChangeProjectStatus(s.DB, workflow.SystemActor(), project.ID,
		models.StatusInvoiceSent, nil, desc)
	if errors.Is(err, workflow.ErrVersionConflict) {
		// Someone touched the project mid-sync; next tick sees the new state.
		return nil
	}
	return err
}

func (s *Syncer) pollPayments(ctx context.Context) {
	var mirrors []models.Invoice
	err := s.DB.Where("status = ?", models.InvoiceSent).Find(&mirrors).Error
	if err != nil {
		config.LogError(s.Logger, "sync.go", "pollPayments", "load invoices", nil, err)
		return
	}

	for i := range mirrors {
		if err := s.pollOne(ctx, &mirrors[i]); err != nil {
			config.LogError(s.Logger, "sync.go", "pollPayments", "poll invoice", mirrors[i].ID, err)
		}
	}
}

func (s *Syncer) pollOne(ctx context.Context, mirror *models.Invoice) error {
	doc, err := s.Client.GetInvoice(ctx, mirror.ExternalID)
	if err != nil {
		return err
	}
	if doc.Status != "paid" {
		return nil
	}

	now := time.Now()
	err = s.DB.Model(&models.Invoice{}).Where("id = ?", mirror.ID).
		Updates(map[string]interface{}{"status": models.InvoicePaid, "paid_at": now}).Error
	if err != nil {
		return err
	}

	var project models.Project
	if err := s.DB.First(&project, mirror.ProjectID).Error; err != nil {
		return err
	}
	if project.Status != models.StatusInvoiceSent {
		return nil
	}

	desc := fmt.Sprintf("Invoice %s paid", mirror.Number)
	_, err = workflow.ChangeProjectStatus(s.DB, workflow.SystemActor(), project.ID,
		models.StatusPaid, nil, desc)
	if errors.Is(err, workflow.ErrVersionConflict) {
		return nil
	}
	return err
}
