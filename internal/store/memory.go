package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory implementation of the Store interface, suitable
// for development, testing and CSV-seeded single-instance deployments.
type MemoryStore struct {
	mu        sync.RWMutex
	employees map[string]Employee // employee_id -> Employee
}

// NewMemoryStore creates an empty in-memory roster.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{employees: make(map[string]Employee)}
}

// ListEmployees returns a filtered, paginated roster page. Results are sorted
// by employee ID so pagination is stable across calls.
func (m *MemoryStore) ListEmployees(ctx context.Context, filter Filter) (*Page, error) {
	filter = filter.normalize()

	m.mu.RLock()
	matched := make([]Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		if matches(emp, filter) {
			matched = append(matched, emp)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].EmployeeID < matched[j].EmployeeID
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}

	return &Page{
		Employees:  matched[start:end],
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
	}, nil
}

// GetEmployee returns a single employee by ID.
func (m *MemoryStore) GetEmployee(ctx context.Context, employeeID string) (*Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[employeeID]
	if !ok {
		return nil, ErrNotFound
	}
	return &emp, nil
}

// UpsertEmployee creates or replaces a roster row.
func (m *MemoryStore) UpsertEmployee(ctx context.Context, emp Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.employees[emp.EmployeeID] = emp
	return nil
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error {
	return nil
}

func matches(emp Employee, f Filter) bool {
	if f.Department != "" && !strings.EqualFold(emp.Department, f.Department) {
		return false
	}
	if f.RiskLevel != "" && !strings.EqualFold(emp.Status, f.RiskLevel) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(emp.Name), q) &&
			!strings.Contains(strings.ToLower(emp.EmployeeID), q) {
			return false
		}
	}
	return true
}
