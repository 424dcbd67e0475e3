package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/insightportal/attrition/internal/artifact"
	"github.com/insightportal/attrition/internal/chat"
	"github.com/insightportal/attrition/internal/scoring"
	"github.com/insightportal/attrition/internal/store"
	"github.com/insightportal/attrition/internal/suggest"
	"github.com/insightportal/attrition/internal/testutil"
	"github.com/insightportal/attrition/internal/webhook"
)

const testAdminKey = "test-admin-key"

type serverOpts struct {
	artifactDir string
	dispatcher  *webhook.Dispatcher
}

func newTestServer(t *testing.T, opts serverOpts) (*Server, store.Store) {
	t.Helper()

	dir := opts.artifactDir
	if dir == "" {
		dir = t.TempDir()
		testutil.WriteCustomerArtifacts(t, dir)
		testutil.WriteEmployeeArtifacts(t, dir)
	}
	registry := artifact.NewRegistry(dir)
	st := store.NewMemoryStore()
	chatSvc, err := chat.NewService(t.TempDir(), st, nil)
	if err != nil {
		t.Fatalf("chat service: %v", err)
	}

	srv := NewServer(Options{
		Pipeline:    scoring.NewPipeline(registry, suggest.NewEngine()),
		Store:       st,
		Registry:    registry,
		Chat:        chatSvc,
		Dispatcher:  opts.dispatcher,
		AdminAPIKey: testAdminKey,
		RateLimit:   1000,
	})
	return srv, st
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func highRiskCustomer() map[string]any {
	return map[string]any{
		"customer_id":      "TEST-001",
		"tenure":           2,
		"monthly_charges":  85.0,
		"total_charges":    170.0,
		"contract":         "Month-to-month",
		"internet_service": "Fiber optic",
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, serverOpts{})
	rec := doJSON(t, srv.Router(), http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestRoot(t *testing.T) {
	srv, _ := newTestServer(t, serverOpts{})
	rec := doJSON(t, srv.Router(), http.MethodGet, "/", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	if body["message"] != "Employee Insight Portal API" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestPredictCustomer_HighRisk(t *testing.T) {
	srv, _ := newTestServer(t, serverOpts{})
	rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/predict/customer", highRiskCustomer(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		CustomerID      string         `json:"customer_id"`
		Prediction      int            `json:"prediction"`
		PredictionLabel string         `json:"prediction_label"`
		Probability     float64        `json:"probability"`
		Status          string         `json:"status"`
		Suggestions     []string       `json:"suggestions"`
		InputFeatures   map[string]any `json:"input_features"`
	}
	decodeBody(t, rec, &resp)

	if resp.CustomerID != "TEST-001" {
		t.Errorf("customer_id = %q", resp.CustomerID)
	}
	if resp.Prediction != 1 || resp.PredictionLabel != "Churn" {
		t.Errorf("prediction = %d label = %q, want 1 Churn", resp.Prediction, resp.PredictionLabel)
	}
	if resp.Probability != 0.8 {
		t.Errorf("probability = %v, want 0.8", resp.Probability)
	}
	if resp.Status != "High Risk" {
		t.Errorf("status = %q, want High Risk", resp.Status)
	}
	if len(resp.Suggestions) == 0 {
		t.Error("expected suggestions")
	}
	if resp.InputFeatures["contract"] != "Month-to-month" {
		t.Errorf("input_features not echoed: %v", resp.InputFeatures)
	}
	if _, ok := resp.InputFeatures["customer_id"]; ok {
		t.Error("customer_id should not appear in input_features")
	}
}

func TestPredictCustomer_LowRisk(t *testing.T) {
	srv, _ := newTestServer(t, serverOpts{})
	body := map[string]any{
		"customer_id":      "TEST-002",
		"tenure":           48,
		"monthly_charges":  45.0,
		"total_charges":    2160.0,
		"contract":         "Two year",
		"internet_service": "DSL",
	}
	rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/predict/customer", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Prediction      int     `json:"prediction"`
		PredictionLabel string  `json:"prediction_label"`
		Probability     float64 `json:"probability"`
		Status          string  `json:"status"`
	}
	decodeBody(t, rec, &resp)
	if resp.Prediction != 0 || resp.PredictionLabel != "No Churn" {
		t.Errorf("prediction = %d label = %q, want 0 No Churn", resp.Prediction, resp.PredictionLabel)
	}
	if resp.Status != "Low Risk" {
		t.Errorf("status = %q, want Low Risk", resp.Status)
	}
}

func TestPredictEmployee_Stable(t *testing.T) {
	srv, _ := newTestServer(t, serverOpts{})
	body := map[string]any{
		"employee_id":           "EMP-001",
		"tenure":                36,
		"monthly_salary":        6000.0,
		"performance_score":     3.0,
		"satisfaction_level":    0.9,
		"last_evaluation":       0.85,
		"number_project":        4,
		"average_monthly_hours": 180,
		"time_spend_company":    5,
		"work_accident":         0,
		"promotion_last_5years": 1,
		"department":            "it",
	}
	rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/predict/employee", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		EmployeeID  string   `json:"employee_id"`
		Prediction  int      `json:"prediction"`
		Status      string   `json:"status"`
		Suggestions []string `json:"suggestions"`
	}
	decodeBody(t, rec, &resp)
	if resp.EmployeeID != "EMP-001" || resp.Prediction != 0 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Status != "Low Risk" {
		t.Errorf("status = %q, want Low Risk", resp.Status)
	}
	if len(resp.Suggestions) != 1 || !strings.Contains(resp.Suggestions[0], "appears stable") {
		t.Errorf("suggestions = %v", resp.Suggestions)
	}
}

func TestPredictEmployee_MissingField(t *testing.T) {
	srv, _ := newTestServer(t, serverOpts{})
	body := map[string]any{
		"employee_id": "EMP-002",
		"tenure":      5,
	}
	rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/predict/employee", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Code != ErrCodeValidation {
		t.Errorf("code = %q, want %q", resp.Code, ErrCodeValidation)
	}
	if len(resp.Fields) == 0 {
		t.Error("expected field-level errors")
	}
	if resp.RequestID == "" {
		t.Error("expected request ID in error response")
	}
}

func TestPredict_MissingSubjectID(t *testing.T) {
	srv, _ := newTestServer(t, serverOpts{})
	body := highRiskCustomer()
	delete(body, "customer_id")
	rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/predict/customer", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Fields["customer_id"] != "required" {
		t.Errorf("fields = %v", resp.Fields)
	}
}

func TestPredict_InvalidJSON(t *testing.T) {
	srv, _ := newTestServer(t, serverOpts{})
	req := httptest.NewRequest(http.MethodPost, "/v1/predict/customer", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Code != ErrCodeInvalidJSON {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestPredict_ArtifactsMissing(t *testing.T) {
	srv, _ := newTestServer(t, serverOpts{artifactDir: t.TempDir()})
	rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/predict/customer", highRiskCustomer(), nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Code != ErrCodeArtifactUnavailable {
		t.Errorf("code = %q, want %q", resp.Code, ErrCodeArtifactUnavailable)
	}
}

func TestListEmployees(t *testing.T) {
	srv, st := newTestServer(t, serverOpts{})
	ctx := context.Background()
	for _, e := range []store.Employee{
		{EmployeeID: "EMP-001", Name: "Ada", Department: "Engineering", Status: "Low Risk"},
		{EmployeeID: "EMP-002", Name: "Bob", Department: "Sales", Status: "High Risk"},
	} {
		if err := st.UpsertEmployee(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	rec := doJSON(t, srv.Router(), http.MethodGet, "/v1/employees?risk_level=high+risk", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var page store.Page
	decodeBody(t, rec, &page)
	if page.Total != 1 || len(page.Employees) != 1 || page.Employees[0].EmployeeID != "EMP-002" {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestListEmployees_BadPage(t *testing.T) {
	srv, _ := newTestServer(t, serverOpts{})
	rec := doJSON(t, srv.Router(), http.MethodGet, "/v1/employees?page=zero", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetEmployee(t *testing.T) {
	srv, st := newTestServer(t, serverOpts{})
	if err := st.UpsertEmployee(context.Background(), store.Employee{EmployeeID: "EMP-007", Name: "Greta"}); err != nil {
		t.Fatal(err)
	}
	router := srv.Router()

	rec := doJSON(t, router, http.MethodGet, "/v1/employees/EMP-007", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var emp store.Employee
	decodeBody(t, rec, &emp)
	if emp.Name != "Greta" {
		t.Errorf("name = %q", emp.Name)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/employees/EMP-404", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestChat_CannedReplyWithoutKey(t *testing.T) {
	srv, _ := newTestServer(t, serverOpts{})
	rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/chat", map[string]string{"message": "who is at risk?"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var reply chat.Reply
	decodeBody(t, rec, &reply)
	if reply.Response != chat.NoKeyReply {
		t.Errorf("response = %q", reply.Response)
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	srv, _ := newTestServer(t, serverOpts{})
	rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/chat", map[string]string{"message": "  "}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestArtifactStatus(t *testing.T) {
	srv, _ := newTestServer(t, serverOpts{})
	router := srv.Router()

	// Nothing loaded yet.
	rec := doJSON(t, router, http.MethodGet, "/v1/artifacts", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp artifactStatusResponse
	decodeBody(t, rec, &resp)
	if len(resp.Artifacts) != 2 {
		t.Fatalf("got %d variants, want 2", len(resp.Artifacts))
	}
	for _, st := range resp.Artifacts {
		if st.Loaded {
			t.Errorf("variant %s should not be loaded before first prediction", st.Variant)
		}
	}

	// A prediction loads the customer set lazily.
	doJSON(t, router, http.MethodPost, "/v1/predict/customer", highRiskCustomer(), nil)
	rec = doJSON(t, router, http.MethodGet, "/v1/artifacts", nil, nil)
	decodeBody(t, rec, &resp)
	var loaded bool
	for _, st := range resp.Artifacts {
		if st.Variant == "customer" && st.Loaded && st.Fingerprint != "" {
			loaded = true
		}
	}
	if !loaded {
		t.Errorf("customer set should be loaded: %+v", resp.Artifacts)
	}
}

func TestArtifactReload_Auth(t *testing.T) {
	srv, _ := newTestServer(t, serverOpts{})
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/v1/artifacts/reload", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/artifacts/reload", nil, map[string]string{"Authorization": "Bearer wrong"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong token: status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/artifacts/reload", nil, map[string]string{"Authorization": "Bearer " + testAdminKey})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Results []reloadResult `json:"results"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results", len(resp.Results))
	}
	for _, res := range resp.Results {
		if !res.Reloaded || res.Fingerprint == "" {
			t.Errorf("variant %s not reloaded: %+v", res.Variant, res)
		}
	}
}

func TestPredict_HighRiskFiresWebhook(t *testing.T) {
	received := make(chan webhook.Event, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev webhook.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Errorf("decode event: %v", err)
		}
		received <- ev
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	d := webhook.NewDispatcher(hook.URL, "secret")
	d.Start()
	srv, _ := newTestServer(t, serverOpts{dispatcher: d})

	rec := doJSON(t, srv.Router(), http.MethodPost, "/v1/predict/customer", highRiskCustomer(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-received:
		if ev.Type != webhook.EventHighRiskPrediction || ev.SubjectID != "TEST-001" {
			t.Errorf("unexpected event: %+v", ev)
		}
		if ev.Status != "High Risk" {
			t.Errorf("status = %q", ev.Status)
		}
	default:
		t.Fatal("no webhook event delivered")
	}
}
