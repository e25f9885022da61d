package handlers

import (
	"errors"
	"net/http"

	"solardesk/internal/config"
	"solardesk/internal/database"
	"solardesk/internal/identity"
	"solardesk/internal/middleware"
	"solardesk/internal/models"
	"solardesk/internal/workflow"

	"github.com/gin-gonic/gin"
)

type workerLoginRequest struct {
	Email string `json:"email" binding:"required,email"`
	Pin   string `json:"pin" binding:"required,pincode"`
}

type workerProfileResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	CrewID   uint   `json:"crewId"`
	CrewName string `json:"crewName"`
}

// WorkerLogin exchanges email+PIN for a session at the identity provider.
// The provider account is provisioned lazily on first login.
func WorkerLogin(idp *identity.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req workerLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		member, err := workflow.ValidatePin(database.DB, req.Email, req.Pin)
		if err != nil {
			if errors.Is(err, workflow.ErrNotFound) {
				respondError(c, http.StatusUnauthorized, "invalid email or pin")
				return
			}
			respondWorkflowError(c, err)
			return
		}

		session, err := idp.Login(c.Request.Context(), identity.WorkerProfile{
			Email:  member.Email,
			Name:   member.Name,
			CrewID: member.CrewID,
		})
		if err != nil {
			config.LogError(config.GetLogger(), "workerauth.go", "WorkerLogin", "identity login", member.ID, err)
			respondError(c, http.StatusBadGateway, "identity provider unavailable")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"accessToken":  session.AccessToken,
			"refreshToken": session.RefreshToken,
			"user": workerProfileResponse{
				ID:       member.ID,
				Name:     member.Name,
				Email:    member.Email,
				Role:     "worker",
				CrewID:   member.CrewID,
				CrewName: member.Crew.Name,
			},
		})
	}
}

type memberIDRequest struct {
	MemberID uint `json:"memberId" binding:"required"`
}

// GeneratePin issues a new login code for a crew member. The code is
// returned exactly once; it is communicated to the worker out-of-band.
func GeneratePin(c *gin.Context) {
	var req memberIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	pin, member, err := workflow.GeneratePin(database.DB, workflow.ActorFromUser(user), req.MemberID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pin":         pin,
		"memberEmail": member.Email,
	})
}

func RevokePin(c *gin.Context) {
	var req memberIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	if _, err := workflow.RevokePin(database.DB, workflow.ActorFromUser(user), req.MemberID); err != nil {
		respondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MemberPinStatus reports whether a member holds an active PIN, without
// ever revealing the code itself.
func MemberPinStatus(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{
		"memberId":       member.ID,
		"email":          member.Email,
		"hasPin":         member.HasActivePin(),
		"pinGeneratedAt": member.PinGeneratedAt,
	})
}
