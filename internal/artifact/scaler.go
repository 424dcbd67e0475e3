package artifact

import (
	"encoding/json"
	"fmt"
	"os"
)

// StandardScaler holds the fitted per-feature z-score parameters, in the same
// fixed order as the schema's feature vector.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadScaler reads and validates a scaler artifact file. A zero scale entry
// or a mean/scale length mismatch fails here, at load time.
func LoadScaler(path string) (*StandardScaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s StandardScaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid scaler artifact %s: %w", path, err)
	}
	return &s, nil
}

func (s *StandardScaler) validate() error {
	if len(s.Mean) == 0 {
		return fmt.Errorf("no scaling parameters")
	}
	if len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("mean has %d entries, scale has %d", len(s.Mean), len(s.Scale))
	}
	for i, sc := range s.Scale {
		if sc == 0 {
			return fmt.Errorf("scale[%d] is zero", i)
		}
	}
	return nil
}

// Transform implements Scaler.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("expected %d features, got %d", len(s.Mean), len(x))
	}
	out := make([]float64, len(x))
	for i := range x {
		out[i] = (x[i] - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}
