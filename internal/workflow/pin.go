package workflow

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"solardesk/internal/models"

	"gorm.io/gorm"
)

// GeneratePin issues a fresh 6-digit login code for a crew member and
// returns it once; there is no retrieval endpoint, the code is handed to the
// worker out-of-band. A new code overwrites any previous one.
func GeneratePin(db *gorm.DB, actor Actor, memberID uint) (string, *models.CrewMember, error) {
	var member models.CrewMember
	if err := db.Preload("Crew").First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrNotFound
		}
		return "", nil, err
	}
	if member.Archived {
		return "", nil, ErrNotFound
	}
	if !actor.CanAccessFirm(member.Crew.FirmID) {
		return "", nil, ErrForbidden
	}
	if member.Email == "" {
		return "", nil, ErrNoEmail
	}

	pin, err := randomPin()
	if err != nil {
		return "", nil, err
	}
	now := time.Now()

	err = db.Model(&models.CrewMember{}).
		Where("id = ?", member.ID).
		Updates(map[string]interface{}{
			"pin_code":         pin,
			"pin_generated_at": now,
		}).Error
	if err != nil {
		return "", nil, err
	}

	member.PinCode = &pin
	member.PinGeneratedAt = &now
	return pin, &member, nil
}

// RevokePin clears the stored code; the member cannot log in again until a
// new one is generated.
func RevokePin(db *gorm.DB, actor Actor, memberID uint) (*models.CrewMember, error) {
	var member models.CrewMember
	if err := db.Preload("Crew").First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !actor.CanAccessFirm(member.Crew.FirmID) {
		return nil, ErrForbidden
	}

	err := db.Model(&models.CrewMember{}).
		Where("id = ?", member.ID).
		Updates(map[string]interface{}{
			"pin_code":         nil,
			"pin_generated_at": nil,
		}).Error
	if err != nil {
		return nil, err
	}

	member.PinCode = nil
	member.PinGeneratedAt = nil
	return &member, nil
}

// ValidatePin looks up a non-archived crew member by exact email and code
// match. The code is a long-lived shared secret: no expiry, no single-use
// invalidation, no lockout.
func ValidatePin(db *gorm.DB, email, pin string) (*models.CrewMember, error) {
	if email == "" || pin == "" {
		return nil, ErrNotFound
	}

	var member models.CrewMember
	err := db.Preload("Crew").
		Where("email = ? AND pin_code = ? AND archived = ?", email, pin, false).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

// randomPin draws a uniform 6-digit decimal code from crypto/rand.
func randomPin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
