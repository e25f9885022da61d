package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"solardesk/internal/database"
	"solardesk/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const currentMemberKey = "CurrentMember"

// WorkerClaims mirrors the identity provider's HS256 access token payload;
// the email claim links the token back to a crew member row.
type WorkerClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.StandardClaims
}

// WorkerAuth validates the identity provider's bearer token with the shared
// JWT secret and resolves the crew member it belongs to. Archived members
// and members without an active PIN are rejected even with a valid token.
func WorkerAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		const bearer = "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		claims := &WorkerClaims{}
		token, err := jwt.ParseWithClaims(auth[len(bearer):], claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid || claims.Email == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		var member models.CrewMember
		err = database.DB.Preload("Crew").
			Where("email = ? AND archived = ?", claims.Email, false).
			First(&member).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			c.Abort()
			return
		}
		if !member.HasActivePin() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Set(currentMemberKey, &member)
		c.Next()
	}
}

// CurrentMember returns the authenticated crew member, or nil.
func CurrentMember(c *gin.Context) *models.CrewMember {
	if v, ok := c.Get(currentMemberKey); ok {
		if m, ok := v.(*models.CrewMember); ok {
			return m
		}
	}
	return nil
}
