package scoring

import (
	"errors"
	"fmt"

	"github.com/insightportal/attrition/internal/schema"
)

// ConfigError means a required artifact was absent or unreadable. It is a
// server-side condition: the request fails, the process stays up, and the
// next request re-attempts the load.
type ConfigError struct {
	Variant schema.Variant
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("artifact set %s unavailable: %v", e.Variant, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ValidationError means the request record did not match the schema. It is a
// client error, raised before any artifact is touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record: field %s: %s", e.Field, e.Message)
}

// Error wraps any other failure during vector assembly, scaling or inference.
// Callers surface it with a generic message; internal details stay in logs.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("scoring failed at %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// asValidation converts a schema field error into the pipeline's validation
// error type.
func asValidation(err error) error {
	var fe *schema.FieldError
	if errors.As(err, &fe) {
		return &ValidationError{Field: fe.Field, Message: fe.Message}
	}
	return &ValidationError{Field: "", Message: err.Error()}
}
