// Package artifact loads the fitted model artifacts the scoring pipeline
// consumes: a tree-ensemble classifier, a standard scaler and one label
// encoder per categorical field. Artifacts are exported to JSON by the
// training process and treated here as opaque, versioned inputs with a fixed
// contract. A loaded set is immutable and shared read-only across requests.
package artifact

// Classifier is the inference contract of the trained binary classifier.
// Implementations must be deterministic: identical input vectors always yield
// identical output.
type Classifier interface {
	// Predict returns the class label (0 or 1) for a scaled feature vector.
	Predict(x []float64) (int, error)
	// PredictProba returns [p(class 0), p(class 1)] for a scaled vector.
	PredictProba(x []float64) ([2]float64, error)
}

// Scaler applies the fixed per-feature affine transform fitted at training
// time.
type Scaler interface {
	// Transform returns (x[i]-mean[i])/scale[i] for each feature.
	Transform(x []float64) ([]float64, error)
}

// Standard artifact file names within a variant directory.
const (
	ModelFile    = "model.json"
	ScalerFile   = "scaler.json"
	EncodersFile = "encoders.json"
)
