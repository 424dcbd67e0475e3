package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/insightportal/attrition/internal/store"
)

type fakeLLM struct {
	lastPrompt string
	reply      string
	err        error
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

func newTestService(t *testing.T, llm LLMClient) *Service {
	t.Helper()
	st := store.NewMemoryStore()
	emp := store.Employee{
		EmployeeID: "EMP-100", Name: "Dee", Department: "Engineering",
		SatisfactionLevel: 0.4, ChurnProbability: 0.75, Status: "High Risk",
	}
	if err := st.UpsertEmployee(context.Background(), emp); err != nil {
		t.Fatal(err)
	}
	svc, err := NewService(t.TempDir(), st, llm)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestService_CannedReplyWithoutKey(t *testing.T) {
	svc := newTestService(t, nil)
	reply, err := svc.Ask(context.Background(), "who is at risk?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply.Response != NoKeyReply {
		t.Errorf("response = %q, want canned reply", reply.Response)
	}
	if reply.Sources == nil || len(reply.Sources) != 0 {
		t.Errorf("sources should be an empty list, got %v", reply.Sources)
	}
}

func TestService_EmptyMessage(t *testing.T) {
	svc := newTestService(t, &fakeLLM{reply: "hi"})
	if _, err := svc.Ask(context.Background(), "   "); err == nil {
		t.Error("expected error for blank message")
	}
}

func TestService_RetrievesRosterContext(t *testing.T) {
	llm := &fakeLLM{reply: "One employee is high risk."}
	svc := newTestService(t, llm)

	reply, err := svc.Ask(context.Background(), "how many employees are high risk?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply.Response != llm.reply {
		t.Errorf("response = %q, want model reply", reply.Response)
	}
	if !strings.Contains(llm.lastPrompt, "how many employees are high risk?") {
		t.Error("prompt missing user question")
	}
	if !strings.Contains(llm.lastPrompt, "Employee Statistics") {
		t.Errorf("prompt missing roster context:\n%s", llm.lastPrompt)
	}
	if len(reply.Sources) == 0 {
		t.Fatal("expected at least one source")
	}
	if reply.Sources[0].Source != "roster" {
		t.Errorf("source = %q, want roster", reply.Sources[0].Source)
	}
}

func TestService_PropagatesModelError(t *testing.T) {
	llm := &fakeLLM{err: context.DeadlineExceeded}
	svc := newTestService(t, llm)
	if _, err := svc.Ask(context.Background(), "high risk employees"); err == nil {
		t.Error("expected error when model fails")
	}
}
