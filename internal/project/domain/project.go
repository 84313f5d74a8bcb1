package domain

import (
	"time"

	"github.com/ShodmonX/taskflow-backend/internal/platform/apperr"
)

// Project groups tasks inside an organization. Description and CreatedBy may
// be empty; the creator reference is cleared when that user is deleted.
type Project struct {
	ID          string
	OrgID       string
	Name        string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
}

var (
	ErrProjectNotFound = apperr.NotFound("Project not found")
	// ErrProjectNotInOrg is returned when a project id names a project in a
	// different organization than the one in the request.
	ErrProjectNotInOrg = apperr.NotFound("Project not found in this organization")
)
