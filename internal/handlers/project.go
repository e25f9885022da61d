package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"solardesk/internal/database"
	"solardesk/internal/middleware"
	"solardesk/internal/models"
	"solardesk/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func ListProjects(c *gin.Context) {
	firmID, ok := firmIDFromQuery(c)
	if !ok {
		return
	}

	dbq := database.DB.Preload("Client").Preload("Crew").
		Where("firm_id = ?", firmID).Order("created_at desc")

	if status := c.Query("status"); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	if clientIDStr := c.Query("clientId"); clientIDStr != "" {
		if cid, err := strconv.Atoi(clientIDStr); err == nil && cid > 0 {
			dbq = dbq.Where("client_id = ?", cid)
		}
	}

	var projects []models.Project
	if err := dbq.Find(&projects).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load projects")
		return
	}
	c.JSON(http.StatusOK, projects)
}

type projectRequest struct {
	FirmID      uint   `json:"firmId" binding:"required"`
	ClientID    uint   `json:"clientId" binding:"required"`
	CrewID      *uint  `json:"crewId"`
	Title       string `json:"title" binding:"required,min=3"`
	Description string `json:"description"`

	ScheduledStart string `json:"scheduledStart"`
	ScheduledEnd   string `json:"scheduledEnd"`

	InstallContactName  string `json:"installContactName"`
	InstallContactPhone string `json:"installContactPhone"`
	InstallAddress      string `json:"installAddress"`

	ContractAmount string `json:"contractAmount"`
}

func CreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	if !user.CanAccessFirm(req.FirmID) {
		respondError(c, http.StatusForbidden, "no access to this firm")
		return
	}

	var client models.Client
	err := database.DB.Where("id = ? AND firm_id = ?", req.ClientID, req.FirmID).First(&client).Error
	if err != nil {
		respondError(c, http.StatusNotFound, "client not found")
		return
	}

	if req.CrewID != nil {
		var crew models.Crew
		err := database.DB.Where("id = ? AND firm_id = ?", *req.CrewID, req.FirmID).First(&crew).Error
		if err != nil {
			respondError(c, http.StatusNotFound, "crew not found")
			return
		}
	}

	start, ok := parseDate(req.ScheduledStart)
	if !ok {
		respondError(c, http.StatusBadRequest, "scheduledStart must be YYYY-MM-DD")
		return
	}
	end, ok := parseDate(req.ScheduledEnd)
	if !ok {
		respondError(c, http.StatusBadRequest, "scheduledEnd must be YYYY-MM-DD")
		return
	}

	amount := decimal.Zero
	if req.ContractAmount != "" {
		parsed, err := decimal.NewFromString(req.ContractAmount)
		if err != nil {
			respondError(c, http.StatusBadRequest, "contractAmount must be a decimal number")
			return
		}
		amount = parsed
	}

	project := models.Project{
		FirmID:              req.FirmID,
		ClientID:            req.ClientID,
		CrewID:              req.CrewID,
		Title:               req.Title,
		Description:         req.Description,
		Status:              models.StatusNew,
		ScheduledStart:      start,
		ScheduledEnd:        end,
		InstallContactName:  req.InstallContactName,
		InstallContactPhone: req.InstallContactPhone,
		InstallAddress:      req.InstallAddress,
		ContractAmount:      amount,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		return database.AppendProjectHistory(tx, &models.ProjectHistoryEntry{
			ProjectID:   project.ID,
			UserID:      user.ID,
			UserName:    user.Name,
			ChangeType:  models.ChangeCreate,
			Description: "Project created: " + project.Title,
		})
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to create project")
		return
	}
	c.JSON(http.StatusCreated, project)
}

func loadProjectChecked(c *gin.Context, param string) (*models.Project, bool) {
	id, ok := idParam(c, param)
	if !ok {
		return nil, false
	}

	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil {
		respondError(c, http.StatusNotFound, "project not found")
		return nil, false
	}
	user := middleware.CurrentUser(c)
	if !user.CanAccessFirm(project.FirmID) {
		respondError(c, http.StatusForbidden, "no access to this firm")
		return nil, false
	}
	return &project, true
}

func GetProject(c *gin.Context) {
	project, ok := loadProjectChecked(c, "id")
	if !ok {
		return
	}
	err := database.DB.Preload("Client").Preload("Crew").First(project, project.ID).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load project")
		return
	}
	c.JSON(http.StatusOK, project)
}

type projectUpdateRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=3"`
	Description *string `json:"description"`
	CrewID      *uint   `json:"crewId"`

	ScheduledStart *string `json:"scheduledStart"`
	ScheduledEnd   *string `json:"scheduledEnd"`

	InstallContactName  *string `json:"installContactName"`
	InstallContactPhone *string `json:"installContactPhone"`
	InstallAddress      *string `json:"installAddress"`

	ContractAmount *string `json:"contractAmount"`
}

// UpdateProject applies a partial update; every tracked field that changed
// produces its own history entry, all in one transaction with the write.
func UpdateProject(c *gin.Context) {
	project, ok := loadProjectChecked(c, "id")
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)

	var req projectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	type fieldChange struct {
		changeType string
		field      string
		oldValue   string
		newValue   string
	}
	var changes []fieldChange

	// Only changed columns are written. status and version are never part of
	// a PATCH, so a status change landing between the load above and the
	// update below cannot be overwritten or have its version rolled back.
	updates := map[string]interface{}{}

	track := func(changeType, field, column string, oldV, newV string, value interface{}) {
		if oldV == newV {
			return
		}
		changes = append(changes, fieldChange{changeType, field, oldV, newV})
		updates[column] = value
	}

	if req.Title != nil {
		track(models.ChangeFieldUpdate, "title", "title", project.Title, *req.Title, *req.Title)
		project.Title = *req.Title
	}
	if req.Description != nil {
		track(models.ChangeFieldUpdate, "description", "description", project.Description, *req.Description, *req.Description)
		project.Description = *req.Description
	}
	if req.InstallContactName != nil {
		track(models.ChangeFieldUpdate, "installContactName", "install_contact_name", project.InstallContactName, *req.InstallContactName, *req.InstallContactName)
		project.InstallContactName = *req.InstallContactName
	}
	if req.InstallContactPhone != nil {
		track(models.ChangeFieldUpdate, "installContactPhone", "install_contact_phone", project.InstallContactPhone, *req.InstallContactPhone, *req.InstallContactPhone)
		project.InstallContactPhone = *req.InstallContactPhone
	}
	if req.InstallAddress != nil {
		track(models.ChangeFieldUpdate, "installAddress", "install_address", project.InstallAddress, *req.InstallAddress, *req.InstallAddress)
		project.InstallAddress = *req.InstallAddress
	}

	if req.CrewID != nil {
		var crew models.Crew
		err := database.DB.Where("id = ? AND firm_id = ?", *req.CrewID, project.FirmID).First(&crew).Error
		if err != nil {
			respondError(c, http.StatusNotFound, "crew not found")
			return
		}
		oldCrew := ""
		if project.CrewID != nil {
			oldCrew = strconv.Itoa(int(*project.CrewID))
		}
		track(models.ChangeCrewAssign, "crewId", "crew_id", oldCrew, strconv.Itoa(int(crew.ID)), crew.ID)
		project.CrewID = req.CrewID
	}

	if req.ScheduledStart != nil {
		t, ok := parseDate(*req.ScheduledStart)
		if !ok {
			respondError(c, http.StatusBadRequest, "scheduledStart must be YYYY-MM-DD")
			return
		}
		track(models.ChangeSchedule, "scheduledStart", "scheduled_start", formatDate(project.ScheduledStart), formatDate(t), t)
		project.ScheduledStart = t
	}
	if req.ScheduledEnd != nil {
		t, ok := parseDate(*req.ScheduledEnd)
		if !ok {
			respondError(c, http.StatusBadRequest, "scheduledEnd must be YYYY-MM-DD")
			return
		}
		track(models.ChangeSchedule, "scheduledEnd", "scheduled_end", formatDate(project.ScheduledEnd), formatDate(t), t)
		project.ScheduledEnd = t
	}

	if req.ContractAmount != nil {
		parsed, err := decimal.NewFromString(*req.ContractAmount)
		if err != nil {
			respondError(c, http.StatusBadRequest, "contractAmount must be a decimal number")
			return
		}
		track(models.ChangeFieldUpdate, "contractAmount", "contract_amount", project.ContractAmount.String(), parsed.String(), parsed)
		project.ContractAmount = parsed
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, project)
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Project{}).Where("id = ?", project.ID).Updates(updates).Error
		if err != nil {
			return err
		}
		for _, ch := range changes {
			err := database.AppendProjectHistory(tx, &models.ProjectHistoryEntry{
				ProjectID:  project.ID,
				UserID:     user.ID,
				UserName:   user.Name,
				ChangeType: ch.changeType,
				FieldName:  ch.field,
				OldValue:   ch.oldValue,
				NewValue:   ch.newValue,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update project")
		return
	}
	c.JSON(http.StatusOK, project)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

type statusChangeRequest struct {
	Status  models.ProjectStatus `json:"status" binding:"required"`
	Version *uint                `json:"version"`
}

func ChangeProjectStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req statusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	actor := workflow.ActorFromUser(user)

	project, err := workflow.ChangeProjectStatus(database.DB, actor, id, req.Status, req.Version,
		fmt.Sprintf("Status changed by %s", user.Name))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// ListProjectHistory returns the audit trail, most recent first. The worker
// and admin clients poll this endpoint; limit trims it for preview views.
func ListProjectHistory(c *gin.Context) {
	project, ok := loadProjectChecked(c, "id")
	if !ok {
		return
	}

	dbq := database.DB.Where("project_id = ?", project.ID).
		Order("created_at desc, id desc")

	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			dbq = dbq.Limit(limit)
		}
	}

	var entries []models.ProjectHistoryEntry
	if err := dbq.Find(&entries).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load history")
		return
	}
	c.JSON(http.StatusOK, entries)
}

type noteRequest struct {
	Description string `json:"description" binding:"required"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low normal high"`
}

// AddProjectNote appends a free-text note to the project timeline, with an
// optional importance flag.
func AddProjectNote(c *gin.Context) {
	project, ok := loadProjectChecked(c, "id")
	if !ok {
		return
	}

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	entry := models.ProjectHistoryEntry{
		ProjectID:   project.ID,
		UserID:      user.ID,
		UserName:    user.Name,
		ChangeType:  models.ChangeNote,
		Description: req.Description,
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	entry.Priority = &priority

	if err := database.AppendProjectHistory(database.DB, &entry); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to add note")
		return
	}
	c.JSON(http.StatusCreated, entry)
}
