package artifact

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/insightportal/attrition/internal/encode"
	"github.com/insightportal/attrition/internal/schema"
	"github.com/insightportal/attrition/internal/telemetry"
)

// Set is the full artifact set for one schema variant. It is immutable after
// load and safe for concurrent readers without locking.
type Set struct {
	Variant     schema.Variant
	Classifier  Classifier
	Scaler      Scaler
	Tables      encode.Tables
	Fingerprint string
}

// Registry loads artifact sets lazily, one per variant, from
// <dir>/<variant>/{model.json,scaler.json,encoders.json}.
//
// Load policy: a successful load is cached for the process lifetime; a failed
// load is NOT memoized, so every request re-attempts until the artifacts
// become available. This keeps the process up through a misconfigured deploy
// and recovers without a restart once the files appear.
type Registry struct {
	dir  string
	mu   sync.Mutex
	sets map[schema.Variant]*Set
}

// NewRegistry creates a registry over the artifact directory.
func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir, sets: make(map[schema.Variant]*Set)}
}

// Get returns the cached artifact set for a variant, loading it on first use.
func (r *Registry) Get(v schema.Variant) (*Set, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if set, ok := r.sets[v]; ok {
		return set, nil
	}
	set, err := r.load(v)
	if err != nil {
		telemetry.ArtifactLoads.WithLabelValues(string(v), "failure").Inc()
		return nil, err
	}
	telemetry.ArtifactLoads.WithLabelValues(string(v), "success").Inc()
	r.sets[v] = set
	log.Printf("[artifact] loaded %s set from %s (fingerprint=%s)", v, filepath.Join(r.dir, string(v)), set.Fingerprint)
	return set, nil
}

// Reload drops the cached set for a variant and loads it afresh, swapping the
// cache only on success. Used by the admin reload endpoint after new
// artifacts are deployed.
func (r *Registry) Reload(v schema.Variant) (*Set, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, err := r.load(v)
	if err != nil {
		telemetry.ArtifactLoads.WithLabelValues(string(v), "failure").Inc()
		return nil, err
	}
	telemetry.ArtifactLoads.WithLabelValues(string(v), "success").Inc()
	r.sets[v] = set
	log.Printf("[artifact] reloaded %s set (fingerprint=%s)", v, set.Fingerprint)
	return set, nil
}

// Status describes the load state of one variant for the artifacts endpoint.
type Status struct {
	Variant     schema.Variant `json:"variant"`
	Loaded      bool           `json:"loaded"`
	Fingerprint string         `json:"fingerprint,omitempty"`
}

// StatusAll reports the cached state of both variants without triggering a
// load.
func (r *Registry) StatusAll() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	statuses := make([]Status, 0, 2)
	for _, v := range []schema.Variant{schema.Employee, schema.Customer} {
		st := Status{Variant: v}
		if set, ok := r.sets[v]; ok {
			st.Loaded = true
			st.Fingerprint = set.Fingerprint
		}
		statuses = append(statuses, st)
	}
	return statuses
}

func (r *Registry) load(v schema.Variant) (*Set, error) {
	sch, err := schema.For(v)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(r.dir, string(v))

	forest, err := LoadForest(filepath.Join(dir, ModelFile))
	if err != nil {
		return nil, fmt.Errorf("classifier artifact: %w", err)
	}
	scaler, err := LoadScaler(filepath.Join(dir, ScalerFile))
	if err != nil {
		return nil, fmt.Errorf("scaler artifact: %w", err)
	}
	tables, err := LoadEncoders(filepath.Join(dir, EncodersFile))
	if err != nil {
		return nil, fmt.Errorf("encoder artifact: %w", err)
	}

	// Shape guard: artifacts fitted on one schema variant must never be
	// paired with the other variant's vector.
	if forest.NFeatures != sch.FeatureCount() {
		return nil, fmt.Errorf("classifier expects %d features, schema %s has %d", forest.NFeatures, v, sch.FeatureCount())
	}
	if len(scaler.Mean) != sch.FeatureCount() {
		return nil, fmt.Errorf("scaler has %d parameters, schema %s has %d features", len(scaler.Mean), v, sch.FeatureCount())
	}

	fp, err := fingerprint(dir)
	if err != nil {
		return nil, err
	}

	return &Set{
		Variant:     v,
		Classifier:  forest,
		Scaler:      scaler,
		Tables:      tables,
		Fingerprint: fp,
	}, nil
}

// fingerprint hashes the artifact files so deployments can verify which
// version a running process is serving.
func fingerprint(dir string) (string, error) {
	h := xxhash.New()
	for _, name := range []string{ModelFile, ScalerFile, EncodersFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return "", err
		}
		_, _ = h.Write(data)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
