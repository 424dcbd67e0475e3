package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a PostgreSQL implementation of the Store interface.
//
// Expected table:
//
//	CREATE TABLE employees (
//	    employee_id        TEXT PRIMARY KEY,
//	    name               TEXT NOT NULL,
//	    department         TEXT NOT NULL,
//	    tenure             INT NOT NULL DEFAULT 0,
//	    satisfaction_level DOUBLE PRECISION NOT NULL DEFAULT 0,
//	    churn_probability  DOUBLE PRECISION NOT NULL DEFAULT 0,
//	    status             TEXT NOT NULL DEFAULT ''
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed roster store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const employeeColumns = "employee_id, name, department, tenure, satisfaction_level, churn_probability, status"

// ListEmployees returns a filtered, paginated roster page.
func (p *PostgresStore) ListEmployees(ctx context.Context, filter Filter) (*Page, error) {
	filter = filter.normalize()

	where, args := buildWhere(filter)

	var total int
	countSQL := "SELECT count(*) FROM employees" + where
	if err := p.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count employees: %w", err)
	}

	listSQL := fmt.Sprintf(
		"SELECT %s FROM employees%s ORDER BY employee_id LIMIT $%d OFFSET $%d",
		employeeColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := p.pool.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]Employee, 0, filter.Limit)
	for rows.Next() {
		var emp Employee
		if err := rows.Scan(&emp.EmployeeID, &emp.Name, &emp.Department, &emp.Tenure,
			&emp.SatisfactionLevel, &emp.ChurnProbability, &emp.Status); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Page{
		Employees:  employees,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
	}, nil
}

// GetEmployee returns a single employee by ID.
func (p *PostgresStore) GetEmployee(ctx context.Context, employeeID string) (*Employee, error) {
	var emp Employee
	err := p.pool.QueryRow(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE employee_id = $1", employeeID,
	).Scan(&emp.EmployeeID, &emp.Name, &emp.Department, &emp.Tenure,
		&emp.SatisfactionLevel, &emp.ChurnProbability, &emp.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &emp, nil
}

// UpsertEmployee creates or replaces a roster row.
func (p *PostgresStore) UpsertEmployee(ctx context.Context, emp Employee) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO employees (`+employeeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id) DO UPDATE SET
			name = EXCLUDED.name,
			department = EXCLUDED.department,
			tenure = EXCLUDED.tenure,
			satisfaction_level = EXCLUDED.satisfaction_level,
			churn_probability = EXCLUDED.churn_probability,
			status = EXCLUDED.status`,
		emp.EmployeeID, emp.Name, emp.Department, emp.Tenure,
		emp.SatisfactionLevel, emp.ChurnProbability, emp.Status)
	return err
}

// Close releases the connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

// buildWhere assembles the WHERE clause and positional args for a filter.
func buildWhere(f Filter) (string, []any) {
	var clauses []string
	var args []any
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.Department != "" {
		add("lower(department) = lower($%d)", f.Department)
	}
	if f.RiskLevel != "" {
		add("lower(status) = lower($%d)", f.RiskLevel)
	}
	if f.Search != "" {
		add("(name ILIKE $%d OR employee_id ILIKE $%[1]d)", "%"+f.Search+"%")
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
