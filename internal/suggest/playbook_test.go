package suggest

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/insightportal/attrition/internal/schema"
)

func writePlaybook(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "playbook.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write playbook: %v", err)
	}
	return path
}

func TestLoadPlaybook_CustomRuleFires(t *testing.T) {
	e := NewEngine()
	path := writePlaybook(t, `
rules:
  - name: premium-at-risk
    variant: customer
    when: '{"and":[{">=":[{"var":"probability"},0.5]},{">":[{"var":"monthly_charges"},100]}]}'
    suggest:
      - "Escalate to the premium retention desk"
`)
	if err := e.LoadPlaybook(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := schema.Record{
		"tenure":           3.0,
		"monthly_charges":  120.0,
		"contract":         "Two year",
		"internet_service": "DSL",
	}
	got := e.Suggest(schema.Customer, rec, 0.6)

	// Built-in onboarding + proactive rules fire first, then the playbook.
	want := []string{custOnboarding, custCheckIn, "Escalate to the premium retention desk"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest = %v, want %v", got, want)
	}
}

func TestLoadPlaybook_VariantIsolation(t *testing.T) {
	e := NewEngine()
	path := writePlaybook(t, `
rules:
  - name: always
    variant: employee
    when: '{"==":[1,1]}'
    suggest: ["employee only"]
`)
	if err := e.LoadPlaybook(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := e.Suggest(schema.Customer, schema.Record{
		"tenure":           48.0,
		"monthly_charges":  45.0,
		"contract":         "Two year",
		"internet_service": "DSL",
	}, 0.1)
	if !reflect.DeepEqual(got, []string{CustomerStable}) {
		t.Errorf("employee playbook rule leaked into customer variant: %v", got)
	}
}

func TestLoadPlaybook_RejectsBadRules(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad expression", "rules:\n  - name: x\n    variant: customer\n    when: 'not json'\n    suggest: [\"y\"]\n"},
		{"empty expression", "rules:\n  - name: x\n    variant: customer\n    when: '  '\n    suggest: [\"y\"]\n"},
		{"unknown variant", "rules:\n  - name: x\n    variant: merged\n    when: '{\"==\":[1,1]}'\n    suggest: [\"y\"]\n"},
		{"no suggestions", "rules:\n  - name: x\n    variant: customer\n    when: '{\"==\":[1,1]}'\n    suggest: []\n"},
		{"no name", "rules:\n  - variant: customer\n    when: '{\"==\":[1,1]}'\n    suggest: [\"y\"]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine()
			if err := e.LoadPlaybook(writePlaybook(t, tt.body)); err == nil {
				t.Error("expected load error, got nil")
			}
		})
	}
}
