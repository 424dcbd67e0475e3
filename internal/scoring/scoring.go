// Package scoring runs the churn pipeline for one subject: validate the raw
// record, encode categoricals, assemble the ordered feature vector, scale it,
// run the classifier, then derive the risk tier and retention suggestions.
// The whole path is pure computation over an immutable artifact set, so
// concurrent requests need no locking.
package scoring

import (
	"context"

	"github.com/insightportal/attrition/internal/artifact"
	"github.com/insightportal/attrition/internal/risk"
	"github.com/insightportal/attrition/internal/schema"
	"github.com/insightportal/attrition/internal/suggest"
)

// Result is the scored, explained decision for one subject. Created fresh per
// request, never persisted.
type Result struct {
	SubjectID   string
	Prediction  int
	Probability float64
	Tier        risk.Tier
	Suggestions []string
	// Inputs is the normalized record (defaults applied), echoed back on the
	// customer endpoint.
	Inputs schema.Record
}

// Pipeline scores records against lazily loaded artifact sets.
type Pipeline struct {
	registry *artifact.Registry
	engine   *suggest.Engine
}

// NewPipeline wires the pipeline to its artifact registry and suggestion
// engine.
func NewPipeline(registry *artifact.Registry, engine *suggest.Engine) *Pipeline {
	return &Pipeline{registry: registry, engine: engine}
}

// Score runs the full pipeline for one subject. Validation happens before the
// artifact set is touched; an unseen category is not an error and falls back
// to code 0 inside the vector builder.
func (p *Pipeline) Score(ctx context.Context, variant schema.Variant, subjectID string, rec schema.Record) (*Result, error) {
	sch, err := schema.For(variant)
	if err != nil {
		return nil, &ValidationError{Field: "variant", Message: err.Error()}
	}

	normalized, err := sch.Normalize(rec)
	if err != nil {
		return nil, asValidation(err)
	}

	set, err := p.registry.Get(variant)
	if err != nil {
		return nil, &ConfigError{Variant: variant, Err: err}
	}

	vector, err := sch.BuildVector(normalized, set.Tables)
	if err != nil {
		return nil, &Error{Stage: "vector assembly", Err: err}
	}

	scaled, err := set.Scaler.Transform(vector)
	if err != nil {
		return nil, &Error{Stage: "scaling", Err: err}
	}

	label, err := set.Classifier.Predict(scaled)
	if err != nil {
		return nil, &Error{Stage: "inference", Err: err}
	}
	proba, err := set.Classifier.PredictProba(scaled)
	if err != nil {
		return nil, &Error{Stage: "inference", Err: err}
	}
	probability := proba[1]

	return &Result{
		SubjectID:   subjectID,
		Prediction:  label,
		Probability: probability,
		Tier:        risk.Classify(probability),
		Suggestions: p.engine.Suggest(variant, normalized, probability),
		Inputs:      normalized,
	}, nil
}
