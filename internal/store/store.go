package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no employee matches the requested ID.
var ErrNotFound = errors.New("employee not found")

// Employee is one roster row: the subject's descriptive attributes plus the
// most recently computed churn assessment.
type Employee struct {
	EmployeeID        string  `json:"employee_id"`
	Name              string  `json:"name"`
	Department        string  `json:"department"`
	Tenure            int     `json:"tenure"`
	SatisfactionLevel float64 `json:"satisfaction_level"`
	ChurnProbability  float64 `json:"churn_probability"`
	Status            string  `json:"status"`
}

// Filter narrows and paginates a roster listing. Zero values mean "no
// filter"; Page and Limit are normalized by the store.
type Filter struct {
	Department string
	RiskLevel  string
	Search     string
	Page       int
	Limit      int
}

// Page is one page of a filtered roster listing.
type Page struct {
	Employees  []Employee `json:"employees"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}

// Store is the roster persistence interface. Implementations must be safe for
// concurrent use.
type Store interface {
	// ListEmployees returns a filtered, paginated roster page.
	ListEmployees(ctx context.Context, filter Filter) (*Page, error)

	// GetEmployee returns a single employee, or ErrNotFound.
	GetEmployee(ctx context.Context, employeeID string) (*Employee, error)

	// UpsertEmployee creates or replaces a roster row.
	UpsertEmployee(ctx context.Context, emp Employee) error

	// Close releases any resources held by the store.
	Close() error
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

// normalize clamps pagination parameters to sane values.
func (f Filter) normalize() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	return f
}
