package workflow

import "solardesk/internal/models"

// Actor is whoever performs a mutation: a staff user, a crew member acting
// through the worker surface, or the system itself (background workers).
type Actor struct {
	UserID uint
	Name   string
	Role   models.UserRole
	FirmID uint
	system bool
}

func ActorFromUser(u *models.User) Actor {
	return Actor{
		UserID: u.ID,
		Name:   u.Name,
		Role:   u.Role,
		FirmID: u.FirmID,
	}
}

// SystemActor is used by the billing sync worker; it bypasses firm checks
// and shows up as "System" in the audit trail.
func SystemActor() Actor {
	return Actor{Name: "System", system: true}
}

func (a Actor) CanAccessFirm(firmID uint) bool {
	if a.system || a.Role == models.RoleAdmin {
		return true
	}
	return a.FirmID != 0 && a.FirmID == firmID
}
