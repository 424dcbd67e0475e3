package artifact

import (
	"encoding/json"
	"fmt"
	"os"
)

// Tree is one decision tree in sklearn's flattened node-array form. A node i
// is internal when ChildrenLeft[i] >= 0; leaves carry per-class sample counts
// in Value[i].
type Tree struct {
	ChildrenLeft  []int        `json:"children_left"`
	ChildrenRight []int        `json:"children_right"`
	Feature       []int        `json:"feature"`
	Threshold     []float64    `json:"threshold"`
	Value         [][2]float64 `json:"value"`
}

// Forest is a random-forest churn classifier loaded from a JSON export of the
// fitted estimator. Probabilities are the mean of the normalized leaf class
// counts across all trees, matching the training library's predict_proba.
type Forest struct {
	Version   string `json:"version"`
	NFeatures int    `json:"n_features"`
	Trees     []Tree `json:"trees"`
}

// LoadForest reads and validates a forest artifact file.
func LoadForest(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f Forest
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid forest artifact %s: %w", path, err)
	}
	return &f, nil
}

// validate fails fast on structurally broken exports so that a corrupt
// artifact surfaces at load time, not mid-prediction.
func (f *Forest) validate() error {
	if f.NFeatures <= 0 {
		return fmt.Errorf("n_features must be positive, got %d", f.NFeatures)
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	for ti, t := range f.Trees {
		n := len(t.ChildrenLeft)
		if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
			return fmt.Errorf("tree %d: node arrays have inconsistent lengths", ti)
		}
		if n == 0 {
			return fmt.Errorf("tree %d: empty", ti)
		}
		for i := 0; i < n; i++ {
			if t.ChildrenLeft[i] < 0 {
				continue // leaf
			}
			if t.ChildrenLeft[i] >= n || t.ChildrenRight[i] < 0 || t.ChildrenRight[i] >= n {
				return fmt.Errorf("tree %d node %d: child index out of range", ti, i)
			}
			if t.Feature[i] < 0 || t.Feature[i] >= f.NFeatures {
				return fmt.Errorf("tree %d node %d: feature index %d out of range", ti, i, t.Feature[i])
			}
		}
	}
	return nil
}

// PredictProba implements Classifier.
func (f *Forest) PredictProba(x []float64) ([2]float64, error) {
	if len(x) != f.NFeatures {
		return [2]float64{}, fmt.Errorf("expected %d features, got %d", f.NFeatures, len(x))
	}
	var sum [2]float64
	for i := range f.Trees {
		p := f.Trees[i].proba(x)
		sum[0] += p[0]
		sum[1] += p[1]
	}
	n := float64(len(f.Trees))
	return [2]float64{sum[0] / n, sum[1] / n}, nil
}

// Predict implements Classifier. The label is the argmax of the averaged
// probabilities; ties resolve to the negative class, as at training time.
func (f *Forest) Predict(x []float64) (int, error) {
	p, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if p[1] > p[0] {
		return 1, nil
	}
	return 0, nil
}

// proba walks a single tree to its leaf and returns the normalized class
// distribution there.
func (t *Tree) proba(x []float64) [2]float64 {
	i := 0
	for t.ChildrenLeft[i] >= 0 {
		if x[t.Feature[i]] <= t.Threshold[i] {
			i = t.ChildrenLeft[i]
		} else {
			i = t.ChildrenRight[i]
		}
	}
	counts := t.Value[i]
	total := counts[0] + counts[1]
	if total <= 0 {
		return [2]float64{0.5, 0.5}
	}
	return [2]float64{counts[0] / total, counts[1] / total}
}
