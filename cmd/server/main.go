package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/insightportal/attrition/internal/api"
	"github.com/insightportal/attrition/internal/artifact"
	"github.com/insightportal/attrition/internal/chat"
	"github.com/insightportal/attrition/internal/config"
	"github.com/insightportal/attrition/internal/scoring"
	"github.com/insightportal/attrition/internal/store"
	"github.com/insightportal/attrition/internal/suggest"
	"github.com/insightportal/attrition/internal/telemetry"
	"github.com/insightportal/attrition/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	telemetry.Init()

	ctx := context.Background()
	st, err := store.NewStore(ctx, cfg.StoreType, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	if cfg.EmployeeCSV != "" {
		n, err := store.SeedFromCSV(ctx, st, cfg.EmployeeCSV)
		if err != nil {
			log.Fatalf("seeding roster: %v", err)
		}
		if n > 0 {
			log.Printf("seeded %d employees from %s", n, cfg.EmployeeCSV)
		}
	}

	registry := artifact.NewRegistry(cfg.ArtifactDir)

	engine := suggest.NewEngine()
	if cfg.PlaybookPath != "" {
		if err := engine.LoadPlaybook(cfg.PlaybookPath); err != nil {
			log.Fatalf("playbook: %v", err)
		}
		log.Printf("loaded suggestion playbook from %s", cfg.PlaybookPath)
	}

	var llm chat.LLMClient
	if cfg.LLMAPIKey != "" {
		llm = chat.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	}
	chatSvc, err := chat.NewService(cfg.KBDir, st, llm)
	if err != nil {
		log.Fatalf("chat: %v", err)
	}

	dispatcher := webhook.NewDispatcher(cfg.WebhookURL, cfg.WebhookSecret)
	dispatcher.Start()
	defer dispatcher.Close()
	if dispatcher.Enabled() {
		log.Printf("high-risk alerts enabled: %s", cfg.WebhookURL)
	}

	srvAPI := api.NewServer(api.Options{
		Pipeline:    scoring.NewPipeline(registry, engine),
		Store:       st,
		Registry:    registry,
		Chat:        chatSvc,
		Dispatcher:  dispatcher,
		AdminAPIKey: cfg.AdminAPIKey,
		RateLimit:   cfg.RateLimitPerIP,
		CORSOrigins: cfg.CORSOrigins,
	})

	// metrics server
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Printf("metrics on %s", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srvAPI.Router(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Printf("listening on %s (env=%s store=%s)", cfg.HTTPAddr, cfg.AppEnv, cfg.StoreType)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShut)
	log.Println("stopped")
}
