package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/insightportal/attrition/internal/store"
)

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.Filter{
		Department: q.Get("department"),
		RiskLevel:  q.Get("risk_level"),
		Search:     q.Get("search"),
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			ValidationError(w, r, "invalid query", map[string]string{"page": "must be a positive integer"})
			return
		}
		filter.Page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			ValidationError(w, r, "invalid query", map[string]string{"limit": "must be a positive integer"})
			return
		}
		filter.Limit = n
	}

	page, err := s.store.ListEmployees(r.Context(), filter)
	if err != nil {
		log.Printf("[api] listing employees failed: %v", err)
		InternalError(w, r, ErrCodeInternal, "failed to list employees")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	emp, err := s.store.GetEmployee(r.Context(), employeeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFoundError(w, r, "employee not found")
			return
		}
		log.Printf("[api] fetching employee failed: id=%s error=%v", employeeID, err)
		InternalError(w, r, ErrCodeInternal, "failed to fetch employee")
		return
	}
	writeJSON(w, http.StatusOK, emp)
}
