package handlers

import (
	"net/http"

	"solardesk/internal/database"
	"solardesk/internal/middleware"
	"solardesk/internal/models"

	"github.com/gin-gonic/gin"
)

func ListClients(c *gin.Context) {
	firmID, ok := firmIDFromQuery(c)
	if !ok {
		return
	}

	var clients []models.Client
	err := database.DB.Where("firm_id = ?", firmID).Order("name asc").Find(&clients).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load clients")
		return
	}
	c.JSON(http.StatusOK, clients)
}

type clientRequest struct {
	FirmID       uint   `json:"firmId" binding:"required"`
	Name         string `json:"name" binding:"required"`
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone string `json:"contactPhone"`
	Address      string `json:"address"`
	Notes        string `json:"notes"`
}

func CreateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	if !user.CanAccessFirm(req.FirmID) {
		respondError(c, http.StatusForbidden, "no access to this firm")
		return
	}

	var firm models.Firm
	if err := database.DB.First(&firm, req.FirmID).Error; err != nil {
		respondError(c, http.StatusNotFound, "firm not found")
		return
	}

	client := models.Client{
		FirmID:       req.FirmID,
		Name:         req.Name,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
		Notes:        req.Notes,
	}
	if err := database.DB.Create(&client).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to create client")
		return
	}
	c.JSON(http.StatusCreated, client)
}

// loadClientChecked loads a client and verifies firm access.
func loadClientChecked(c *gin.Context) (*models.Client, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}

	var client models.Client
	if err := database.DB.First(&client, id).Error; err != nil {
		respondError(c, http.StatusNotFound, "client not found")
		return nil, false
	}
	user := middleware.CurrentUser(c)
	if !user.CanAccessFirm(client.FirmID) {
		respondError(c, http.StatusForbidden, "no access to this firm")
		return nil, false
	}
	return &client, true
}

func GetClient(c *gin.Context) {
	client, ok := loadClientChecked(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, client)
}

type clientUpdateRequest struct {
	Name         *string `json:"name"`
	ContactName  *string `json:"contactName"`
	ContactEmail *string `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone *string `json:"contactPhone"`
	Address      *string `json:"address"`
	Notes        *string `json:"notes"`
}

func UpdateClient(c *gin.Context) {
	client, ok := loadClientChecked(c)
	if !ok {
		return
	}

	var req clientUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.ContactName != nil {
		client.ContactName = *req.ContactName
	}
	if req.ContactEmail != nil {
		client.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		client.ContactPhone = *req.ContactPhone
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}

	if err := database.DB.Save(client).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update client")
		return
	}
	c.JSON(http.StatusOK, client)
}

func DeleteClient(c *gin.Context) {
	client, ok := loadClientChecked(c)
	if !ok {
		return
	}

	var projectCount int64
	err := database.DB.Model(&models.Project{}).Where("client_id = ?", client.ID).Count(&projectCount).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to check projects")
		return
	}
	if projectCount > 0 {
		respondError(c, http.StatusConflict, "client has projects and cannot be deleted")
		return
	}

	if err := database.DB.Delete(client).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to delete client")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
