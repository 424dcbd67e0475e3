package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatcher_DeliversSignedEvent(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !VerifySignature(body, r.Header.Get("X-Attrition-Signature"), "s3cret") {
			t.Error("bad signature on delivered event")
		}
		if r.Header.Get("X-Attrition-Event") != EventHighRiskPrediction {
			t.Errorf("event header = %q", r.Header.Get("X-Attrition-Event"))
		}
		var ev Event
		if err := json.Unmarshal(body, &ev); err != nil {
			t.Errorf("unmarshal payload: %v", err)
		}
		got.Store(ev)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, "s3cret")
	d.Start()
	d.Dispatch(Event{
		Type:        EventHighRiskPrediction,
		Timestamp:   time.Now().UTC(),
		Variant:     "customer",
		SubjectID:   "TEST-001",
		Probability: 0.8,
		Status:      "High Risk",
	})
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	ev, ok := got.Load().(Event)
	if !ok {
		t.Fatal("no event delivered")
	}
	if ev.SubjectID != "TEST-001" || ev.ID == "" {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestDispatcher_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, "s3cret")
	d.Start()
	d.Dispatch(Event{Type: EventHighRiskPrediction, SubjectID: "TEST-002"})
	_ = d.Close()

	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("expected 2 delivery attempts, got %d", n)
	}
}

func TestDispatcher_DisabledWithoutURL(t *testing.T) {
	d := NewDispatcher("", "")
	if d.Enabled() {
		t.Error("dispatcher with empty URL should be disabled")
	}
	// Dispatch on a disabled dispatcher must not block or panic, even
	// without Start.
	d.Dispatch(Event{Type: EventHighRiskPrediction})
}

func TestDispatcher_CloseIsIdempotent(t *testing.T) {
	d := NewDispatcher("http://127.0.0.1:0", "x")
	d.Start()
	if err := d.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
