package domain

import (
	"time"

	"github.com/ShodmonX/taskflow-backend/internal/platform/apperr"
)

// Task is a unit of work in a project. OrgID duplicates the project's org so
// org-wide listing needs no join.
type Task struct {
	ID          string
	OrgID       string
	ProjectID   string
	Title       string
	Description string
	Status      Status
	CreatedBy   string
	CreatedAt   time.Time
}

type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Valid reports whether s is a known status. Matching is exact.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Filter selects tasks in one org. Empty ProjectID and Status match all.
type Filter struct {
	OrgID     string
	ProjectID string
	Status    Status
	Limit     int
	Offset    int
}

// Page is one slice of a filtered listing. Total counts all matches.
type Page struct {
	Items  []*Task
	Total  int
	Limit  int
	Offset int
}

// Page bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var ErrInvalidStatus = apperr.Invalid("Invalid status")
