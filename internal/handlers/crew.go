package handlers

import (
	"net/http"

	"solardesk/internal/database"
	"solardesk/internal/middleware"
	"solardesk/internal/models"

	"github.com/gin-gonic/gin"
)

func ListCrews(c *gin.Context) {
	firmID, ok := firmIDFromQuery(c)
	if !ok {
		return
	}

	var crews []models.Crew
	err := database.DB.Preload("Members", "archived = ?", false).
		Where("firm_id = ?", firmID).Order("name asc").Find(&crews).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load crews")
		return
	}
	c.JSON(http.StatusOK, crews)
}

type crewRequest struct {
	FirmID uint   `json:"firmId" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Color  string `json:"color"`
}

func CreateCrew(c *gin.Context) {
	var req crewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	if !user.CanAccessFirm(req.FirmID) {
		respondError(c, http.StatusForbidden, "no access to this firm")
		return
	}

	crew := models.Crew{FirmID: req.FirmID, Name: req.Name, Color: req.Color}
	if err := database.DB.Create(&crew).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to create crew")
		return
	}
	c.JSON(http.StatusCreated, crew)
}

func loadCrewChecked(c *gin.Context) (*models.Crew, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}

	var crew models.Crew
	if err := database.DB.First(&crew, id).Error; err != nil {
		respondError(c, http.StatusNotFound, "crew not found")
		return nil, false
	}
	user := middleware.CurrentUser(c)
	if !user.CanAccessFirm(crew.FirmID) {
		respondError(c, http.StatusForbidden, "no access to this firm")
		return nil, false
	}
	return &crew, true
}

func GetCrew(c *gin.Context) {
	crew, ok := loadCrewChecked(c)
	if !ok {
		return
	}
	if err := database.DB.Preload("Members").First(crew, crew.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load crew")
		return
	}
	c.JSON(http.StatusOK, crew)
}

type crewUpdateRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func UpdateCrew(c *gin.Context) {
	crew, ok := loadCrewChecked(c)
	if !ok {
		return
	}

	var req crewUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Name != nil {
		crew.Name = *req.Name
	}
	if req.Color != nil {
		crew.Color = *req.Color
	}
	if err := database.DB.Save(crew).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update crew")
		return
	}
	c.JSON(http.StatusOK, crew)
}

type crewMemberRequest struct {
	Name  string                `json:"name" binding:"required"`
	Email string                `json:"email" binding:"omitempty,email"`
	Phone string                `json:"phone"`
	Role  models.CrewMemberRole `json:"role" binding:"omitempty,oneof=worker foreman"`
}

func CreateCrewMember(c *gin.Context) {
	crew, ok := loadCrewChecked(c)
	if !ok {
		return
	}

	var req crewMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	role := req.Role
	if role == "" {
		role = models.MemberWorker
	}

	member := models.CrewMember{
		CrewID: crew.ID,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Role:   role,
	}
	if err := database.DB.Create(&member).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to create crew member")
		return
	}
	c.JSON(http.StatusCreated, member)
}

type crewMemberUpdateRequest struct {
	Name     *string                `json:"name"`
	Email    *string                `json:"email" binding:"omitempty,email"`
	Phone    *string                `json:"phone"`
	Role     *models.CrewMemberRole `json:"role" binding:"omitempty,oneof=worker foreman"`
	Archived *bool                  `json:"archived"`
}

func UpdateCrewMember(c *gin.Context) {
	memberID, ok := idParam(c, "memberId")
	if !ok {
		return
	}

	var member models.CrewMember
	if err := database.DB.Preload("Crew").First(&member, memberID).Error; err != nil {
		respondError(c, http.StatusNotFound, "crew member not found")
		return
	}
	user := middleware.CurrentUser(c)
	if !user.CanAccessFirm(member.Crew.FirmID) {
		respondError(c, http.StatusForbidden, "no access to this firm")
		return
	}

	var req crewMemberUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.Email != nil {
		member.Email = *req.Email
	}
	if req.Phone != nil {
		member.Phone = *req.Phone
	}
	if req.Role != nil {
		member.Role = *req.Role
	}
	if req.Archived != nil {
		member.Archived = *req.Archived
		// Archiving a member also kills their worker login.
		if member.Archived {
			member.PinCode = nil
			member.PinGeneratedAt = nil
		}
	}

	if err := database.DB.Save(&member).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update crew member")
		return
	}
	c.JSON(http.StatusOK, member)
}
