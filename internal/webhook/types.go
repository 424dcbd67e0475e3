package webhook

import "time"

// Event types delivered to the alert webhook.
const (
	EventHighRiskPrediction = "prediction.high_risk"
)

// Event is the alert payload sent when a prediction lands in the High Risk
// tier.
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"event"`
	Timestamp   time.Time `json:"timestamp"`
	Variant     string    `json:"variant"`
	SubjectID   string    `json:"subject_id"`
	Probability float64   `json:"probability"`
	Status      string    `json:"status"`
	Suggestions []string  `json:"suggestions"`
}
