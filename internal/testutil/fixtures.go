// Package testutil writes small, hand-built artifact fixtures for tests. The
// fixture forests use an identity scaler so tree thresholds read directly as
// raw feature values, which keeps expected probabilities easy to verify by
// hand.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// WriteCustomerArtifacts writes a 5-feature artifact set under dir/customer.
//
// The forest has two stump trees: one splitting on tenure<=12 (short tenure
// leaf p1=0.9), one on contract<=0.5 (month-to-month leaf p1=0.7). The
// resulting averaged probabilities:
//
//	tenure<=12 and month-to-month  -> 0.8 (High)
//	tenure>12  and month-to-month  -> 0.4 (Medium)
//	tenure<=12 and longer contract -> 0.5 (Medium)
//	tenure>12  and longer contract -> 0.1 (Low)
func WriteCustomerArtifacts(t testing.TB, dir string) {
	t.Helper()

	model := map[string]any{
		"version":    "test-customer-1",
		"n_features": 5,
		"trees": []map[string]any{
			stump(0, 12.0, [2]float64{1, 9}, [2]float64{9, 1}),
			stump(3, 0.5, [2]float64{3, 7}, [2]float64{9, 1}),
		},
	}
	scaler := map[string]any{
		"mean":  []float64{0, 0, 0, 0, 0},
		"scale": []float64{1, 1, 1, 1, 1},
	}
	encoders := map[string]any{
		"contract":         map[string]any{"classes": []string{"Month-to-month", "One year", "Two year"}},
		"internet_service": map[string]any{"classes": []string{"DSL", "Fiber optic", "No"}},
	}
	writeSet(t, filepath.Join(dir, "customer"), model, scaler, encoders)
}

// WriteEmployeeArtifacts writes a 12-feature artifact set under dir/employee.
//
// The forest is a single stump on satisfaction_level<=0.465: dissatisfied
// employees score p1=0.9, satisfied ones p1=0.1.
func WriteEmployeeArtifacts(t testing.TB, dir string) {
	t.Helper()

	model := map[string]any{
		"version":    "test-employee-1",
		"n_features": 12,
		"trees": []map[string]any{
			stump(3, 0.465, [2]float64{1, 9}, [2]float64{9, 1}),
		},
	}
	mean := make([]float64, 12)
	scale := make([]float64, 12)
	for i := range scale {
		scale[i] = 1
	}
	scaler := map[string]any{"mean": mean, "scale": scale}
	encoders := map[string]any{
		"department":   map[string]any{"classes": []string{"accounting", "hr", "it", "management", "marketing", "sales", "support", "technical"}},
		"salary_level": map[string]any{"classes": []string{"high", "low", "medium"}},
	}
	writeSet(t, filepath.Join(dir, "employee"), model, scaler, encoders)
}

// stump builds a single-split tree: node 0 tests feature<=threshold, the left
// leaf holds leftCounts and the right leaf rightCounts.
func stump(feature int, threshold float64, leftCounts, rightCounts [2]float64) map[string]any {
	return map[string]any{
		"children_left":  []int{1, -1, -1},
		"children_right": []int{2, -1, -1},
		"feature":        []int{feature, -2, -2},
		"threshold":      []float64{threshold, -2, -2},
		"value":          [][2]float64{{0, 0}, leftCounts, rightCounts},
	}
}

func writeSet(t testing.TB, dir string, model, scaler, encoders any) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	writeJSON(t, filepath.Join(dir, "model.json"), model)
	writeJSON(t, filepath.Join(dir, "scaler.json"), scaler)
	writeJSON(t, filepath.Join(dir, "encoders.json"), encoders)
}

func writeJSON(t testing.TB, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
