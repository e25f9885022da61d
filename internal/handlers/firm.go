package handlers

import (
	"net/http"
	"strconv"

	"solardesk/internal/database"
	"solardesk/internal/middleware"
	"solardesk/internal/models"

	"github.com/gin-gonic/gin"
)

// firmIDParam parses a firm id from the query or path and checks the caller
// may act on that firm. Returns 0 and writes the response on failure.
func firmIDFromQuery(c *gin.Context) (uint, bool) {
	firmIDStr := c.Query("firmId")
	if firmIDStr == "" {
		respondError(c, http.StatusBadRequest, "firmId is required")
		return 0, false
	}
	id, err := strconv.Atoi(firmIDStr)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "firmId must be a positive integer")
		return 0, false
	}
	user := middleware.CurrentUser(c)
	if user == nil || !user.CanAccessFirm(uint(id)) {
		respondError(c, http.StatusForbidden, "no access to this firm")
		return 0, false
	}
	return uint(id), true
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

func ListFirms(c *gin.Context) {
	user := middleware.CurrentUser(c)

	dbq := database.DB.Order("name asc")
	if user.Role != models.RoleAdmin {
		dbq = dbq.Where("id = ?", user.FirmID)
	}

	var firms []models.Firm
	if err := dbq.Find(&firms).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load firms")
		return
	}
	c.JSON(http.StatusOK, firms)
}

type firmRequest struct {
	Name         string `json:"name" binding:"required"`
	Address      string `json:"address"`
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone string `json:"contactPhone"`
}

func CreateFirm(c *gin.Context) {
	var req firmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	firm := models.Firm{
		Name:         req.Name,
		Address:      req.Address,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	}
	if err := database.DB.Create(&firm).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to create firm")
		return
	}
	c.JSON(http.StatusCreated, firm)
}

func GetFirm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)
	if !user.CanAccessFirm(id) {
		respondError(c, http.StatusForbidden, "no access to this firm")
		return
	}

	var firm models.Firm
	if err := database.DB.First(&firm, id).Error; err != nil {
		respondError(c, http.StatusNotFound, "firm not found")
		return
	}
	c.JSON(http.StatusOK, firm)
}

func UpdateFirm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var firm models.Firm
	if err := database.DB.First(&firm, id).Error; err != nil {
		respondError(c, http.StatusNotFound, "firm not found")
		return
	}

	var req firmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	firm.Name = req.Name
	firm.Address = req.Address
	firm.ContactName = req.ContactName
	firm.ContactEmail = req.ContactEmail
	firm.ContactPhone = req.ContactPhone
	if err := database.DB.Save(&firm).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update firm")
		return
	}
	c.JSON(http.StatusOK, firm)
}
