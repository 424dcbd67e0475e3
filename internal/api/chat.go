package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/insightportal/attrition/internal/telemetry"
)

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequestError(w, r, ErrCodeInvalidJSON, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		telemetry.ChatRequests.WithLabelValues("invalid").Inc()
		ValidationError(w, r, "invalid request", map[string]string{"message": "cannot be empty"})
		return
	}

	reply, err := s.chat.Ask(r.Context(), req.Message)
	if err != nil {
		telemetry.ChatRequests.WithLabelValues("failure").Inc()
		log.Printf("[api] chat request failed: %v", err)
		InternalError(w, r, ErrCodeChatFailed, "assistant is unavailable")
		return
	}
	telemetry.ChatRequests.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, reply)
}
