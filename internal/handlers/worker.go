package handlers

import (
	"net/http"
	"time"

	"solardesk/internal/database"
	"solardesk/internal/middleware"
	"solardesk/internal/models"
	"solardesk/internal/workflow"

	"github.com/gin-gonic/gin"
)

// Handlers under /api/worker; middleware.WorkerAuth has already resolved
// the crew member from the bearer token.

func WorkerMe(c *gin.Context) {
	member := middleware.CurrentMember(c)
	c.JSON(http.StatusOK, workerProfileResponse{
		ID:       member.ID,
		Name:     member.Name,
		Email:    member.Email,
		Role:     "worker",
		CrewID:   member.CrewID,
		CrewName: member.Crew.Name,
	})
}

// workerProjectSummary is the slice of the project a field worker needs on
// site. The full project row stays office-only.
type workerProjectSummary struct {
	ID                  uint   `json:"id"`
	Title               string `json:"title"`
	InstallAddress      string `json:"installAddress"`
	InstallContactName  string `json:"installContactName"`
	InstallContactPhone string `json:"installContactPhone"`
}

type workerReclamationItem struct {
	ID          uint                     `json:"id"`
	Status      models.ReclamationStatus `json:"status"`
	Description string                   `json:"description"`
	Deadline    *time.Time               `json:"deadline"`
	Project     workerProjectSummary     `json:"project"`
}

// WorkerListReclamations shows the member's crew queue, open items first.
func WorkerListReclamations(c *gin.Context) {
	member := middleware.CurrentMember(c)

	var recs []models.Reclamation
	err := database.DB.Preload("Project").
		Where("crew_id = ?", member.CrewID).
		Order("status asc, deadline asc").
		Find(&recs).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load reclamations")
		return
	}

	items := make([]workerReclamationItem, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		items = append(items, workerReclamationItem{
			ID:          rec.ID,
			Status:      rec.Status,
			Description: rec.Description,
			Deadline:    rec.Deadline,
			Project: workerProjectSummary{
				ID:                  rec.Project.ID,
				Title:               rec.Project.Title,
				InstallAddress:      rec.Project.InstallAddress,
				InstallContactName:  rec.Project.InstallContactName,
				InstallContactPhone: rec.Project.InstallContactPhone,
			},
		})
	}
	c.JSON(http.StatusOK, items)
}

func workerAdvance(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		member := middleware.CurrentMember(c)
		rec, err := workflow.AdvanceReclamation(database.DB, member, id, action)
		if err != nil {
			respondWorkflowError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func WorkerAcceptReclamation() gin.HandlerFunc   { return workerAdvance(workflow.AdvanceAccept) }
func WorkerStartReclamation() gin.HandlerFunc    { return workerAdvance(workflow.AdvanceStart) }
func WorkerCompleteReclamation() gin.HandlerFunc { return workerAdvance(workflow.AdvanceComplete) }
