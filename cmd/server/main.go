package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"healthpass/internal/audit"
	"healthpass/internal/credential/codec"
	"healthpass/internal/credential/metrics"
	"healthpass/internal/credential/service"
	"healthpass/internal/credential/tracer"
	"healthpass/internal/operatortoken"
	"healthpass/internal/platform/config"
	"healthpass/internal/platform/health"
	"healthpass/internal/platform/logger"
	"healthpass/internal/records"
	httptransport "healthpass/internal/transport/http"
	"healthpass/pkg/secrets"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing healthpass",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	master, err := secrets.ParseMaster(cfg.MasterKey)
	if err != nil {
		log.Error("invalid master key", "error", err)
		os.Exit(1)
	}
	credCodec, err := codec.New(master)
	if err != nil {
		log.Error("could not initialize codec", "error", err)
		os.Exit(1)
	}

	healthHandler := health.New(cfg.Environment)

	var auditStore audit.Store
	if cfg.AuditDSN != "" {
		pgStore, err := audit.OpenPostgres(cfg.AuditDSN)
		if err != nil {
			log.Error("could not open audit store", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		auditStore = pgStore
		log.Info("audit sink: postgres")
	} else {
		auditStore = audit.NewInMemoryStore()
		log.Warn("audit sink: in-memory (events lost on restart)")
	}
	auditor := audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(cfg.AuditBuffer),
		audit.WithPublisherLogger(log),
	)
	defer auditor.Close()

	// The demo record store stands in for the hospital record system until
	// the real adapter is wired.
	recordStore := records.NewInMemoryStore()

	m := metrics.New()
	svc := service.New(credCodec, recordStore, auditor,
		service.WithMetrics(m),
		service.WithLogger(log),
		service.WithTracer(tracer.NewOTel()),
	)

	tokens := operatortoken.NewService(cfg.TokenSigningKey, cfg.TokenIssuer, cfg.TokenTTL)
	handler := httptransport.NewCredentialHandler(svc, auditor, log)
	router := httptransport.NewRouter(handler, healthHandler, tokens, m, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
