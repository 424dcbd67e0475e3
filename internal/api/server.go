// Package api exposes the scoring pipeline, employee roster, artifact
// registry and chat assistant over HTTP.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/insightportal/attrition/internal/artifact"
	"github.com/insightportal/attrition/internal/chat"
	"github.com/insightportal/attrition/internal/scoring"
	"github.com/insightportal/attrition/internal/store"
	"github.com/insightportal/attrition/internal/telemetry"
	"github.com/insightportal/attrition/internal/webhook"
)

const requestTimeout = 30 * time.Second

// Server holds the handler dependencies.
type Server struct {
	pipeline    *scoring.Pipeline
	store       store.Store
	registry    *artifact.Registry
	chat        *chat.Service
	dispatcher  *webhook.Dispatcher
	adminAPIKey string
	rateLimit   int
	corsOrigins []string
}

// Options configures a Server.
type Options struct {
	Pipeline    *scoring.Pipeline
	Store       store.Store
	Registry    *artifact.Registry
	Chat        *chat.Service
	Dispatcher  *webhook.Dispatcher
	AdminAPIKey string
	RateLimit   int
	CORSOrigins []string
}

// NewServer creates a server from its dependencies.
func NewServer(opts Options) *Server {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 100
	}
	return &Server{
		pipeline:    opts.Pipeline,
		store:       opts.Store,
		registry:    opts.Registry,
		chat:        opts.Chat,
		dispatcher:  opts.Dispatcher,
		adminAPIKey: opts.AdminAPIKey,
		rateLimit:   opts.RateLimit,
		corsOrigins: opts.CORSOrigins,
	}
}

// Router builds the HTTP handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(telemetry.Middleware)

	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	r.Get("/", s.handleRoot)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1", func(r chi.Router) {
		// Scoring and chat do real work per request; rate limit them per IP.
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(s.rateLimit, time.Minute))
			r.Post("/predict/employee", s.handlePredictEmployee)
			r.Post("/predict/customer", s.handlePredictCustomer)
			r.Post("/chat", s.handleChat)
		})

		r.Get("/employees", s.handleListEmployees)
		r.Get("/employees/{employeeID}", s.handleGetEmployee)

		r.Get("/artifacts", s.handleArtifactStatus)
		r.Post("/artifacts/reload", s.authAdmin(s.handleArtifactReload))
	})

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Employee Insight Portal API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"predict_employee": "/v1/predict/employee",
			"predict_customer": "/v1/predict/customer",
			"employees":        "/v1/employees",
			"employee_detail":  "/v1/employees/{id}",
			"chat":             "/v1/chat",
			"artifacts":        "/v1/artifacts",
		},
	})
}

// authAdmin guards admin operations with a bearer token compared in constant
// time.
func (s *Server) authAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		got := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer"))
		if got == "" {
			UnauthorizedError(w, r, "missing bearer token")
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.adminAPIKey)) != 1 {
			ForbiddenError(w, r, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	}
}
