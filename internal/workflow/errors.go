package workflow

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrCrewNotFound    = errors.New("crew not found")
	ErrForbidden       = errors.New("forbidden")
	ErrVersionConflict = errors.New("project was modified concurrently")
	ErrNoEmail         = errors.New("crew member has no email on file")
	ErrInvalidStatus   = errors.New("invalid status")
)

// StatusConflictError reports that a project or reclamation is not in an
// eligible status for the requested operation; Current is returned to the
// caller for diagnostics.
type StatusConflictError struct {
	Current string
}

func (e *StatusConflictError) Error() string {
	return fmt.Sprintf("operation not valid for current status %q", e.Current)
}
