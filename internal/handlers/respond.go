package handlers

import (
	"errors"
	"net/http"

	"solardesk/internal/config"
	"solardesk/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError answers the structured JSON error shape the admin and worker
// clients render.
func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// respondBindError turns a gin binding failure into a 400 with per-field
// details where the validator provides them.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": details})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}

// respondWorkflowError maps workflow errors onto the HTTP taxonomy:
// not-found, forbidden, conflict (with current status), validation, 500.
func respondWorkflowError(c *gin.Context, err error) {
	var conflict *workflow.StatusConflictError
	switch {
	case errors.Is(err, workflow.ErrNotFound), errors.Is(err, workflow.ErrCrewNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, workflow.ErrForbidden):
		respondError(c, http.StatusForbidden, "access denied")
	case errors.Is(err, workflow.ErrVersionConflict):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, workflow.ErrNoEmail), errors.Is(err, workflow.ErrInvalidStatus):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &conflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": conflict.Error(), "currentStatus": conflict.Current})
	default:
		config.LogError(config.GetLogger(), "respond.go", "respondWorkflowError", c.FullPath(), nil, err)
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}
