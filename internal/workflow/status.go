package workflow

import (
	"errors"

	"solardesk/internal/database"
	"solardesk/internal/models"

	"gorm.io/gorm"
)

// ChangeProjectStatus moves a project to a new status. The status write is
// compare-and-swap on the row version and the history append happens in the
// same transaction, so the audit trail can never drift from the row.
//
// expectedVersion, when non-nil, must match the stored version (clients send
// the version they last saw); nil checks only against the version read
// inside the transaction.
func ChangeProjectStatus(db *gorm.DB, actor Actor, projectID uint, newStatus models.ProjectStatus, expectedVersion *uint, description string) (*models.Project, error) {
	if !models.IsValidProjectStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	var project models.Project
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&project, projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !actor.CanAccessFirm(project.FirmID) {
			return ErrForbidden
		}
		if expectedVersion != nil && *expectedVersion != project.Version {
			return ErrVersionConflict
		}
		if project.Status == newStatus {
			return nil
		}
		return changeStatusTx(tx, actor, &project, newStatus, description)
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// changeStatusTx performs the CAS write and history append for an already
// loaded project. Callers hold the transaction. On success project.Status
// and project.Version reflect the new row state.
func changeStatusTx(tx *gorm.DB, actor Actor, project *models.Project, newStatus models.ProjectStatus, description string) error {
	oldStatus := project.Status

	res := tx.Model(&models.Project{}).
		Where("id = ? AND version = ?", project.ID, project.Version).
		Updates(map[string]interface{}{
			"status":  newStatus,
			"version": project.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}

	project.Status = newStatus
	project.Version++

	return database.AppendProjectHistory(tx, &models.ProjectHistoryEntry{
		ProjectID:   project.ID,
		UserID:      actor.UserID,
		UserName:    actor.Name,
		ChangeType:  models.ChangeStatus,
		FieldName:   "status",
		OldValue:    string(oldStatus),
		NewValue:    string(newStatus),
		Description: description,
	})
}
