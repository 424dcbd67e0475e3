package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// LoadCSV reads roster rows from a CSV file with a header row. Expected
// columns: employee_id, name, department, tenure, satisfaction_level,
// churn_probability, status. Extra columns are ignored.
func LoadCSV(path string) ([]Employee, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"employee_id", "name", "department"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("CSV %s is missing required column %q", path, required)
		}
	}

	var employees []Employee
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", line, err)
		}
		line++

		emp := Employee{
			EmployeeID: cell(row, col, "employee_id"),
			Name:       cell(row, col, "name"),
			Department: cell(row, col, "department"),
			Status:     cell(row, col, "status"),
		}
		if v := cell(row, col, "tenure"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("CSV row %d: tenure %q: %w", line, v, err)
			}
			emp.Tenure = n
		}
		if v := cell(row, col, "satisfaction_level"); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("CSV row %d: satisfaction_level %q: %w", line, v, err)
			}
			emp.SatisfactionLevel = n
		}
		if v := cell(row, col, "churn_probability"); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("CSV row %d: churn_probability %q: %w", line, v, err)
			}
			emp.ChurnProbability = n
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

// SeedFromCSV loads a roster CSV into a store. Missing files are not an
// error: the roster endpoints simply serve an empty list until data arrives.
func SeedFromCSV(ctx context.Context, st Store, path string) (int, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, nil
	}
	employees, err := LoadCSV(path)
	if err != nil {
		return 0, err
	}
	for _, emp := range employees {
		if err := st.UpsertEmployee(ctx, emp); err != nil {
			return 0, err
		}
	}
	return len(employees), nil
}

func cell(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
