// Package schema defines the two scoring schema variants and the feature
// vector builder. Each variant fixes the exact training-time field order; the
// vector, scaler parameters and classifier input all share that order. The
// variants are kept as a tagged type and never merged: mixing a record of one
// shape with artifacts fitted on the other produces silently wrong
// predictions, which is exactly what this package guards against.
package schema

import (
	"fmt"

	"github.com/insightportal/attrition/internal/encode"
)

// Variant selects which schema (and therefore which artifact set and
// suggestion rule set) a request is scored against.
type Variant string

const (
	// Employee is the 12-feature HR attrition schema.
	Employee Variant = "employee"
	// Customer is the reduced 5-feature telecom churn schema.
	Customer Variant = "customer"
)

// ParseVariant validates a variant name from config or a request path.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case Employee, Customer:
		return Variant(s), nil
	default:
		return "", fmt.Errorf("unknown schema variant %q", s)
	}
}

// Field describes one feature of a schema.
type Field struct {
	Name        string
	Categorical bool
	// Default, when non-nil, is substituted for a missing value. Only
	// salary_level carries a default; every other field is required.
	Default any
}

// Schema is the ordered feature list for one variant.
type Schema struct {
	Variant Variant
	Fields  []Field
}

// Record holds the raw attribute values for one subject, keyed by canonical
// field name. Values are strings for categorical fields and numbers for
// everything else.
type Record map[string]any

// FieldError reports a single invalid or missing field in a record.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Message)
}

// employeeFields matches the training order of the 12-feature model.
var employeeFields = []Field{
	{Name: "tenure"},
	{Name: "monthly_salary"},
	{Name: "performance_score"},
	{Name: "satisfaction_level"},
	{Name: "last_evaluation"},
	{Name: "number_project"},
	{Name: "average_monthly_hours"},
	{Name: "time_spend_company"},
	{Name: "work_accident"},
	{Name: "promotion_last_5years"},
	{Name: "department", Categorical: true},
	{Name: "salary_level", Categorical: true, Default: "medium"},
}

// customerFields matches the training order of the 5-feature model.
var customerFields = []Field{
	{Name: "tenure"},
	{Name: "monthly_charges"},
	{Name: "total_charges"},
	{Name: "contract", Categorical: true},
	{Name: "internet_service", Categorical: true},
}

// For returns the schema for a variant.
func For(v Variant) (Schema, error) {
	switch v {
	case Employee:
		return Schema{Variant: Employee, Fields: employeeFields}, nil
	case Customer:
		return Schema{Variant: Customer, Fields: customerFields}, nil
	default:
		return Schema{}, fmt.Errorf("unknown schema variant %q", v)
	}
}

// FeatureCount returns the fixed vector length of the schema.
func (s Schema) FeatureCount() int {
	return len(s.Fields)
}

// CategoricalFields returns the names of the schema's categorical fields in
// schema order.
func (s Schema) CategoricalFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Categorical {
			names = append(names, f.Name)
		}
	}
	return names
}

// Normalize validates a raw record against the schema and returns a copy with
// defaults applied. Every field without a default is required; a missing or
// mistyped field fails before any artifact is touched.
func (s Schema) Normalize(rec Record) (Record, error) {
	out := make(Record, len(s.Fields))
	for _, f := range s.Fields {
		v, ok := rec[f.Name]
		if !ok || v == nil {
			if f.Default != nil {
				out[f.Name] = f.Default
				continue
			}
			return nil, &FieldError{Field: f.Name, Message: "required field is missing"}
		}
		if f.Categorical {
			str, ok := v.(string)
			if !ok {
				return nil, &FieldError{Field: f.Name, Message: fmt.Sprintf("expected string, got %T", v)}
			}
			out[f.Name] = str
			continue
		}
		num, err := toFloat(v)
		if err != nil {
			return nil, &FieldError{Field: f.Name, Message: err.Error()}
		}
		out[f.Name] = num
	}
	return out, nil
}

// BuildVector assembles the ordered numeric feature vector for a normalized
// record. Categorical values are replaced by their encoded integer code,
// promoted to float. The output order is fixed by the schema, never by the
// input.
func (s Schema) BuildVector(rec Record, tables encode.Tables) ([]float64, error) {
	vector := make([]float64, 0, len(s.Fields))
	for _, f := range s.Fields {
		v, ok := rec[f.Name]
		if !ok {
			return nil, &FieldError{Field: f.Name, Message: "required field is missing"}
		}
		if f.Categorical {
			str, ok := v.(string)
			if !ok {
				return nil, &FieldError{Field: f.Name, Message: fmt.Sprintf("expected string, got %T", v)}
			}
			vector = append(vector, float64(tables.Code(f.Name, str)))
			continue
		}
		num, err := toFloat(v)
		if err != nil {
			return nil, &FieldError{Field: f.Name, Message: err.Error()}
		}
		vector = append(vector, num)
	}
	return vector, nil
}

// Number returns a numeric field from a normalized record, with a fallback
// when absent. Used by the suggestion rules, which tolerate partial records.
func (r Record) Number(field string, fallback float64) float64 {
	v, ok := r[field]
	if !ok {
		return fallback
	}
	num, err := toFloat(v)
	if err != nil {
		return fallback
	}
	return num
}

// String returns a string field from a normalized record, or "" when absent.
func (r Record) String(field string) string {
	if v, ok := r[field]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// toFloat accepts the numeric types that JSON decoding and Go callers
// produce. Anything else is a type mismatch.
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
