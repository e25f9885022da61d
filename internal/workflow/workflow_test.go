package workflow

import (
	"testing"

	"solardesk/internal/database"
	"solardesk/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	firm    models.Firm
	client  models.Client
	crew    models.Crew
	member  models.CrewMember
	project models.Project
	actor   Actor
}

// seed builds a firm with one crew, one member and one project in the given
// status, plus an admin actor.
func seed(t *testing.T, db *gorm.DB, status models.ProjectStatus) *fixture {
	t.Helper()

	f := &fixture{}
	f.firm = models.Firm{Name: "Solar Nord GmbH"}
	require.NoError(t, db.Create(&f.firm).Error)

	f.client = models.Client{FirmID: f.firm.ID, Name: "Haus Müller"}
	require.NoError(t, db.Create(&f.client).Error)

	f.crew = models.Crew{FirmID: f.firm.ID, Name: "Crew A", Color: "#ff8800"}
	require.NoError(t, db.Create(&f.crew).Error)

	f.member = models.CrewMember{
		CrewID: f.crew.ID,
		Name:   "Jonas Weber",
		Email:  "jonas@example.com",
		Role:   models.MemberWorker,
	}
	require.NoError(t, db.Create(&f.member).Error)

	f.project = models.Project{
		FirmID:   f.firm.ID,
		ClientID: f.client.ID,
		Title:    "Dachanlage Müller",
		Status:   status,
	}
	require.NoError(t, db.Create(&f.project).Error)

	f.actor = Actor{UserID: 1, Name: "Admin", Role: models.RoleAdmin}
	return f
}

func projectHistory(t *testing.T, db *gorm.DB, projectID uint) []models.ProjectHistoryEntry {
	t.Helper()
	var entries []models.ProjectHistoryEntry
	require.NoError(t, db.Where("project_id = ?", projectID).Order("id asc").Find(&entries).Error)
	return entries
}

func reclamationHistory(t *testing.T, db *gorm.DB, recID uint) []models.ReclamationHistoryEntry {
	t.Helper()
	var entries []models.ReclamationHistoryEntry
	require.NoError(t, db.Where("reclamation_id = ?", recID).Order("id asc").Find(&entries).Error)
	return entries
}
