package handlers

import (
	"net/http"

	"solardesk/internal/database"
	"solardesk/internal/middleware"
	"solardesk/internal/models"
	"solardesk/internal/workflow"

	"github.com/gin-gonic/gin"
)

type createReclamationRequest struct {
	Description string `json:"description" binding:"required"`
	Deadline    string `json:"deadline"`
	CrewID      uint   `json:"crewId" binding:"required"`
}

func CreateReclamation(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req createReclamationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	deadline, ok := parseDate(req.Deadline)
	if !ok {
		respondError(c, http.StatusBadRequest, "deadline must be YYYY-MM-DD")
		return
	}

	user := middleware.CurrentUser(c)
	rec, err := workflow.CreateReclamation(database.DB, workflow.ActorFromUser(user), workflow.CreateReclamationInput{
		ProjectID:   projectID,
		CrewID:      req.CrewID,
		Description: req.Description,
		Deadline:    deadline,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func ListProjectReclamations(c *gin.Context) {
	project, ok := loadProjectChecked(c, "id")
	if !ok {
		return
	}

	var recs []models.Reclamation
	err := database.DB.Preload("Crew").
		Where("project_id = ?", project.ID).Order("created_at desc").Find(&recs).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load reclamations")
		return
	}
	c.JSON(http.StatusOK, recs)
}

// ListFirmReclamations lists all reclamations for a firm's projects.
func ListFirmReclamations(c *gin.Context) {
	firmID, ok := firmIDFromQuery(c)
	if !ok {
		return
	}

	var recs []models.Reclamation
	err := database.DB.Preload("Crew").
		Joins("JOIN projects ON projects.id = reclamations.project_id").
		Where("projects.firm_id = ?", firmID).
		Order("reclamations.created_at desc").
		Find(&recs).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load reclamations")
		return
	}
	c.JSON(http.StatusOK, recs)
}

func loadReclamationChecked(c *gin.Context) (*models.Reclamation, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}

	var rec models.Reclamation
	err := database.DB.Preload("Project").Preload("Crew").First(&rec, id).Error
	if err != nil {
		respondError(c, http.StatusNotFound, "reclamation not found")
		return nil, false
	}
	user := middleware.CurrentUser(c)
	if !user.CanAccessFirm(rec.Project.FirmID) {
		respondError(c, http.StatusForbidden, "no access to this firm")
		return nil, false
	}
	return &rec, true
}

func GetReclamation(c *gin.Context) {
	rec, ok := loadReclamationChecked(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rec)
}

func GetReclamationHistory(c *gin.Context) {
	rec, ok := loadReclamationChecked(c)
	if !ok {
		return
	}

	var entries []models.ReclamationHistoryEntry
	err := database.DB.Where("reclamation_id = ?", rec.ID).
		Order("created_at desc, id desc").Find(&entries).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load history")
		return
	}
	c.JSON(http.StatusOK, entries)
}

type reassignReclamationRequest struct {
	CrewID      *uint   `json:"crewId"`
	Deadline    *string `json:"deadline"`
	Description *string `json:"description"`
}

func UpdateReclamation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req reassignReclamationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	in := workflow.ReassignReclamationInput{
		CrewID:      req.CrewID,
		Description: req.Description,
	}
	if req.Deadline != nil {
		deadline, ok := parseDate(*req.Deadline)
		if !ok {
			respondError(c, http.StatusBadRequest, "deadline must be YYYY-MM-DD")
			return
		}
		in.Deadline = deadline
	}

	user := middleware.CurrentUser(c)
	rec, err := workflow.ReassignReclamation(database.DB, workflow.ActorFromUser(user), id, in)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func CancelReclamation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	user := middleware.CurrentUser(c)
	err := workflow.CancelReclamation(database.DB, workflow.ActorFromUser(user), id)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
