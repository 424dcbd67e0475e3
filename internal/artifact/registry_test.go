package artifact_test

import (
	"testing"

	"github.com/insightportal/attrition/internal/artifact"
	"github.com/insightportal/attrition/internal/schema"
	"github.com/insightportal/attrition/internal/testutil"
)

func TestRegistry_LoadAndCache(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCustomerArtifacts(t, dir)
	reg := artifact.NewRegistry(dir)

	set, err := reg.Get(schema.Customer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Fingerprint == "" {
		t.Error("expected non-empty fingerprint")
	}

	again, err := reg.Get(schema.Customer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set != again {
		t.Error("expected cached set on second Get")
	}
}

func TestRegistry_MissingArtifactsNotMemoized(t *testing.T) {
	dir := t.TempDir()
	reg := artifact.NewRegistry(dir)

	if _, err := reg.Get(schema.Customer); err == nil {
		t.Fatal("expected error with no artifacts on disk")
	}

	// Drop the artifacts in after the first failure; the next Get must
	// succeed without a process restart.
	testutil.WriteCustomerArtifacts(t, dir)
	if _, err := reg.Get(schema.Customer); err != nil {
		t.Fatalf("expected recovery after artifacts appear, got %v", err)
	}
}

func TestRegistry_ShapeMismatchRejected(t *testing.T) {
	dir := t.TempDir()
	// Customer artifacts (5 features) placed in the employee directory must
	// fail the shape guard rather than silently scoring garbage.
	testutil.WriteCustomerArtifacts(t, dir)
	reg := artifact.NewRegistry(dir)

	if _, err := reg.Get(schema.Employee); err == nil {
		t.Error("expected error loading 5-feature artifacts for the 12-feature schema")
	}
}

func TestRegistry_StatusAll(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCustomerArtifacts(t, dir)
	reg := artifact.NewRegistry(dir)

	if _, err := reg.Get(schema.Customer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	statuses := reg.StatusAll()
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	for _, st := range statuses {
		switch st.Variant {
		case schema.Customer:
			if !st.Loaded || st.Fingerprint == "" {
				t.Errorf("customer set should be loaded with a fingerprint, got %+v", st)
			}
		case schema.Employee:
			if st.Loaded {
				t.Errorf("employee set should not be loaded, got %+v", st)
			}
		}
	}
}

func TestRegistry_Reload(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCustomerArtifacts(t, dir)
	reg := artifact.NewRegistry(dir)

	first, err := reg.Get(schema.Customer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reloaded, err := reg.Reload(schema.Customer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloaded == first {
		t.Error("Reload should produce a fresh set")
	}
	if reloaded.Fingerprint != first.Fingerprint {
		t.Errorf("unchanged files should keep the fingerprint: %s vs %s", reloaded.Fingerprint, first.Fingerprint)
	}
}
