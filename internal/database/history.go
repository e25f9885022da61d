package database

import (
	"regexp"
	"strings"

	"solardesk/internal/models"

	"gorm.io/gorm"
)

// AppendProjectHistory inserts one immutable audit row inside the caller's
// transaction, so a failed append rolls the parent mutation back with it.
func AppendProjectHistory(tx *gorm.DB, entry *models.ProjectHistoryEntry) error {
	return tx.Create(entry).Error
}

// AppendReclamationHistory is the same for the reclamation sub-log.
func AppendReclamationHistory(tx *gorm.DB, entry *models.ReclamationHistoryEntry) error {
	return tx.Create(entry).Error
}

// Older clients stored a note's priority as a textual suffix, e.g.
// "Check inverter wiring (priority: high)".
var legacyPriorityRe = regexp.MustCompile(`\s*\(priority:\s*(low|normal|high)\)\s*$`)

// backfillHistoryPriority moves the legacy description suffix into the
// structured Priority column, once. Rows written after the column existed
// already carry it and are left alone.
func backfillHistoryPriority(db *gorm.DB) error {
	var entries []models.ProjectHistoryEntry
	err := db.
		Where("priority IS NULL").
		Where("description LIKE ?", "%(priority:%").
		Find(&entries).Error
	if err != nil {
		return err
	}

	for _, e := range entries {
		m := legacyPriorityRe.FindStringSubmatch(e.Description)
		if m == nil {
			continue
		}
		priority := strings.ToLower(m[1])
		cleaned := strings.TrimSpace(legacyPriorityRe.ReplaceAllString(e.Description, ""))

		// The only place a history row is ever updated: a one-time schema
		// backfill, not a business mutation.
		err := db.Model(&models.ProjectHistoryEntry{}).
			Where("id = ?", e.ID).
			Updates(map[string]interface{}{
				"priority":    priority,
				"description": cleaned,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
