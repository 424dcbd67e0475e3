package api

import (
	"encoding/json"
	"math"
	"net/http"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// round3 rounds a probability to three decimal places for response payloads.
func round3(p float64) float64 {
	return math.Round(p*1000) / 1000
}
