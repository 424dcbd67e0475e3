package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/insightportal/attrition/internal/risk"
	"github.com/insightportal/attrition/internal/schema"
	"github.com/insightportal/attrition/internal/scoring"
	"github.com/insightportal/attrition/internal/telemetry"
	"github.com/insightportal/attrition/internal/webhook"
)

type employeePredictResponse struct {
	EmployeeID  string   `json:"employee_id"`
	Prediction  int      `json:"prediction"`
	Probability float64  `json:"probability"`
	Status      string   `json:"status"`
	Suggestions []string `json:"suggestions"`
}

type customerPredictResponse struct {
	CustomerID      string        `json:"customer_id"`
	Prediction      int           `json:"prediction"`
	PredictionLabel string        `json:"prediction_label"`
	Probability     float64       `json:"probability"`
	Status          string        `json:"status"`
	Suggestions     []string      `json:"suggestions"`
	InputFeatures   schema.Record `json:"input_features"`
}

func (s *Server) handlePredictEmployee(w http.ResponseWriter, r *http.Request) {
	subjectID, rec, ok := s.decodePredictRequest(w, r, "employee_id")
	if !ok {
		return
	}

	result, ok := s.score(w, r, schema.Employee, subjectID, rec)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, employeePredictResponse{
		EmployeeID:  result.SubjectID,
		Prediction:  result.Prediction,
		Probability: round3(result.Probability),
		Status:      result.Tier.String(),
		Suggestions: result.Suggestions,
	})
}

func (s *Server) handlePredictCustomer(w http.ResponseWriter, r *http.Request) {
	subjectID, rec, ok := s.decodePredictRequest(w, r, "customer_id")
	if !ok {
		return
	}

	result, ok := s.score(w, r, schema.Customer, subjectID, rec)
	if !ok {
		return
	}

	label := "No Churn"
	if result.Prediction == 1 {
		label = "Churn"
	}
	writeJSON(w, http.StatusOK, customerPredictResponse{
		CustomerID:      result.SubjectID,
		Prediction:      result.Prediction,
		PredictionLabel: label,
		Probability:     round3(result.Probability),
		Status:          result.Tier.String(),
		Suggestions:     result.Suggestions,
		InputFeatures:   result.Inputs,
	})
}

// decodePredictRequest parses the body into a raw record and extracts the
// subject identifier field.
func (s *Server) decodePredictRequest(w http.ResponseWriter, r *http.Request, idField string) (string, schema.Record, bool) {
	var rec schema.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		BadRequestError(w, r, ErrCodeInvalidJSON, "invalid JSON")
		return "", nil, false
	}

	subjectID, _ := rec[idField].(string)
	if subjectID == "" {
		ValidationError(w, r, "invalid record", map[string]string{idField: "required"})
		return "", nil, false
	}
	delete(rec, idField)
	return subjectID, rec, true
}

// score runs the pipeline and maps failures onto the HTTP error taxonomy:
// validation failures are client errors, missing artifacts are a server-side
// 503 so callers can retry after a deploy, anything else is a generic 500.
func (s *Server) score(w http.ResponseWriter, r *http.Request, variant schema.Variant, subjectID string, rec schema.Record) (*scoring.Result, bool) {
	result, err := s.pipeline.Score(r.Context(), variant, subjectID, rec)
	if err != nil {
		var verr *scoring.ValidationError
		var cerr *scoring.ConfigError
		switch {
		case errors.As(err, &verr):
			telemetry.ScoringErrors.WithLabelValues(string(variant), "validation").Inc()
			ValidationError(w, r, "invalid record", map[string]string{verr.Field: verr.Message})
		case errors.As(err, &cerr):
			telemetry.ScoringErrors.WithLabelValues(string(variant), "config").Inc()
			log.Printf("[api] artifact set unavailable: variant=%s error=%v", variant, err)
			ServiceUnavailableError(w, r, ErrCodeArtifactUnavailable, "model artifacts unavailable")
		default:
			telemetry.ScoringErrors.WithLabelValues(string(variant), "scoring").Inc()
			log.Printf("[api] scoring failed: variant=%s subject=%s error=%v", variant, subjectID, err)
			InternalError(w, r, ErrCodeScoringFailed, "prediction failed")
		}
		return nil, false
	}

	telemetry.Predictions.WithLabelValues(string(variant), result.Tier.String()).Inc()
	s.notifyHighRisk(variant, result)
	return result, true
}

// notifyHighRisk fires the alert webhook for High Risk predictions.
func (s *Server) notifyHighRisk(variant schema.Variant, result *scoring.Result) {
	if s.dispatcher == nil || result.Tier != risk.High {
		return
	}
	s.dispatcher.Dispatch(webhook.Event{
		Type:        webhook.EventHighRiskPrediction,
		Timestamp:   time.Now().UTC(),
		Variant:     string(variant),
		SubjectID:   result.SubjectID,
		Probability: round3(result.Probability),
		Status:      result.Tier.String(),
		Suggestions: result.Suggestions,
	})
}
