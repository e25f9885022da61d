package workflow

import (
	"errors"
	"fmt"
	"time"

	"solardesk/internal/database"
	"solardesk/internal/models"
	"solardesk/internal/notify"

	"gorm.io/gorm"
)

type CreateReclamationInput struct {
	ProjectID   uint
	CrewID      uint
	Description string
	Deadline    *time.Time
}

// CreateReclamation opens a defect report on a completed project: it inserts
// the reclamation, flips the project into the reclamation status and writes
// both audit logs, all in one transaction. Crew notifications go through the
// outbox so a mail/calendar outage cannot fail the request.
func CreateReclamation(db *gorm.DB, actor Actor, in CreateReclamationInput) (*models.Reclamation, error) {
	var rec models.Reclamation

	err := db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, in.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !actor.CanAccessFirm(project.FirmID) {
			return ErrForbidden
		}
		if !models.IsCompletedStatus(project.Status) {
			return &StatusConflictError{Current: string(project.Status)}
		}

		var crew models.Crew
		if err := tx.Where("id = ? AND firm_id = ?", in.CrewID, project.FirmID).First(&crew).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCrewNotFound
			}
			return err
		}

		rec = models.Reclamation{
			ProjectID:   project.ID,
			CrewID:      crew.ID,
			Description: in.Description,
			Deadline:    in.Deadline,
			Status:      models.ReclamationPending,
			CreatedByID: actor.UserID,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}

		desc := fmt.Sprintf("Reclamation opened for crew %s: %s", crew.Name, in.Description)
		if err := changeStatusTx(tx, actor, &project, models.StatusReclamation, desc); err != nil {
			return err
		}

		err := database.AppendReclamationHistory(tx, &models.ReclamationHistoryEntry{
			ReclamationID: rec.ID,
			UserID:        actor.UserID,
			UserName:      actor.Name,
			Action:        models.ReclamationActionCreated,
			Details:       in.Description,
		})
		if err != nil {
			return err
		}

		return enqueueReclamationNotices(tx, &project, &crew, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func enqueueReclamationNotices(tx *gorm.DB, project *models.Project, crew *models.Crew, rec *models.Reclamation) error {
	var recipients []string
	err := tx.Model(&models.CrewMember{}).
		Where("crew_id = ? AND archived = ? AND email <> ''", crew.ID, false).
		Pluck("email", &recipients).Error
	if err != nil {
		return err
	}

	err = notify.EnqueueEmail(tx, notify.EmailPayload{
		To:      recipients,
		Subject: fmt.Sprintf("Reclamation: %s", project.Title),
		Body:    rec.Description,
	})
	if err != nil {
		return err
	}

	if rec.Deadline == nil {
		return nil
	}
	return notify.EnqueueCalendarEvent(tx, notify.CalendarPayload{
		Title:       fmt.Sprintf("Reclamation: %s", project.Title),
		Description: rec.Description,
		Start:       rec.Deadline,
		CrewName:    crew.Name,
		CrewColor:   crew.Color,
	})
}

type ReassignReclamationInput struct {
	CrewID      *uint
	Deadline    *time.Time
	Description *string
}

// ReassignReclamation updates the mutable fields of an open reclamation.
// A crew change resets the status to pending and is logged in the sub-log.
func ReassignReclamation(db *gorm.DB, actor Actor, id uint, in ReassignReclamationInput) (*models.Reclamation, error) {
	var rec models.Reclamation

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Project").First(&rec, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !actor.CanAccessFirm(rec.Project.FirmID) {
			return ErrForbidden
		}
		if rec.Status.Terminal() {
			return ErrNotFound
		}

		updates := map[string]interface{}{}
		if in.Deadline != nil {
			updates["deadline"] = in.Deadline
			rec.Deadline = in.Deadline
		}
		if in.Description != nil {
			updates["description"] = *in.Description
			rec.Description = *in.Description
		}

		crewChanged := in.CrewID != nil && *in.CrewID != rec.CrewID
		crewName := ""
		if crewChanged {
			var crew models.Crew
			if err := tx.Where("id = ? AND firm_id = ?", *in.CrewID, rec.Project.FirmID).First(&crew).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCrewNotFound
				}
				return err
			}
			updates["crew_id"] = crew.ID
			updates["status"] = models.ReclamationPending
			rec.CrewID = crew.ID
			rec.Status = models.ReclamationPending
			crewName = crew.Name
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.Reclamation{}).Where("id = ?", rec.ID).Updates(updates).Error; err != nil {
			return err
		}

		if !crewChanged {
			return nil
		}
		err := database.AppendReclamationHistory(tx, &models.ReclamationHistoryEntry{
			ReclamationID: rec.ID,
			UserID:        actor.UserID,
			UserName:      actor.Name,
			Action:        models.ReclamationActionReassigned,
			Details:       fmt.Sprintf("reassigned to crew %s", crewName),
		})
		if err != nil {
			return err
		}
		// The office timeline shows the handover too, without a status change.
		return database.AppendProjectHistory(tx, &models.ProjectHistoryEntry{
			ProjectID:   rec.ProjectID,
			UserID:      actor.UserID,
			UserName:    actor.Name,
			ChangeType:  models.ChangeReclamation,
			NewValue:    crewName,
			Description: fmt.Sprintf("Reclamation reassigned to crew %s", crewName),
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CancelReclamation closes a reclamation without the work being done and
// moves the project back to work_completed. Cancelling an already terminal
// reclamation reports not-found; the guarded single-row update means two
// racing cancels cannot both succeed.
func CancelReclamation(db *gorm.DB, actor Actor, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var rec models.Reclamation
		if err := tx.Preload("Project").First(&rec, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !actor.CanAccessFirm(rec.Project.FirmID) {
			return ErrForbidden
		}

		res := tx.Model(&models.Reclamation{}).
			Where("id = ? AND status NOT IN ?", rec.ID,
				[]models.ReclamationStatus{models.ReclamationCompleted, models.ReclamationCancelled}).
			Update("status", models.ReclamationCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if rec.Project.Status == models.StatusReclamation {
			err := changeStatusTx(tx, actor, &rec.Project, models.StatusWorkCompleted, "Reclamation cancelled")
			if err != nil {
				return err
			}
		}

		return database.AppendReclamationHistory(tx, &models.ReclamationHistoryEntry{
			ReclamationID: rec.ID,
			UserID:        actor.UserID,
			UserName:      actor.Name,
			Action:        models.ReclamationActionCancelled,
		})
	})
}

// Worker-side transitions on a reclamation.
const (
	AdvanceAccept   = "accept"
	AdvanceStart    = "start"
	AdvanceComplete = "complete"
)

// AdvanceReclamation applies a worker transition: accept (pending→accepted),
// start (accepted→in_progress) or complete (accepted/in_progress→completed).
// Completion moves the parent project back to work_completed. The member
// must belong to the assigned crew.
func AdvanceReclamation(db *gorm.DB, member *models.CrewMember, id uint, action string) (*models.Reclamation, error) {
	var rec models.Reclamation

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Project").First(&rec, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if member.CrewID != rec.CrewID {
			return ErrForbidden
		}

		var (
			from      []models.ReclamationStatus
			to        models.ReclamationStatus
			logAction string
		)
		switch action {
		case AdvanceAccept:
			from = []models.ReclamationStatus{models.ReclamationPending}
			to = models.ReclamationAccepted
			logAction = models.ReclamationActionAccepted
		case AdvanceStart:
			from = []models.ReclamationStatus{models.ReclamationAccepted}
			to = models.ReclamationInProgress
			logAction = models.ReclamationActionStarted
		case AdvanceComplete:
			from = []models.ReclamationStatus{models.ReclamationAccepted, models.ReclamationInProgress}
			to = models.ReclamationCompleted
			logAction = models.ReclamationActionCompleted
		default:
			return ErrInvalidStatus
		}

		res := tx.Model(&models.Reclamation{}).
			Where("id = ? AND status IN ?", rec.ID, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &StatusConflictError{Current: string(rec.Status)}
		}
		rec.Status = to

		if to == models.ReclamationCompleted && rec.Project.Status == models.StatusReclamation {
			actor := Actor{UserID: member.ID, Name: member.Name}
			err := changeStatusTx(tx, actor, &rec.Project, models.StatusWorkCompleted, "Reclamation completed")
			if err != nil {
				return err
			}
		}

		return database.AppendReclamationHistory(tx, &models.ReclamationHistoryEntry{
			ReclamationID: rec.ID,
			UserID:        member.ID,
			UserName:      member.Name,
			Action:        logAction,
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
