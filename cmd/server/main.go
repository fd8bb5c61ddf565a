package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/racha/internal/api"
	"github.com/mmynk/racha/internal/auth"
	"github.com/mmynk/racha/internal/calculator"
	"github.com/mmynk/racha/internal/config"
	"github.com/mmynk/racha/internal/metrics"
	"github.com/mmynk/racha/internal/middleware"
	"github.com/mmynk/racha/internal/service"
	"github.com/mmynk/racha/internal/storage/sqlite"
	"github.com/mmynk/racha/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("load config: %v", err)
	}
	logging.Setup(cfg.LogLevel)

	policy, err := cfg.StatusPolicy()
	if err != nil {
		config.Exitf("load config: %v", err)
	}

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	// Logging runs outermost so rejected calls are logged with their request id.
	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.RequireAuth(jwtManager),
	)

	locks := service.NewEventLocks()
	settlementOpts := service.SettlementOptions{
		Ledger:     calculator.LedgerOptions{IncludeIdle: cfg.IncludeIdleParticipants},
		Match:      calculator.MatchOptions{Policy: policy},
		PruneStale: cfg.PruneStaleConfirmations,
	}

	mux := http.NewServeMux()

	// Register Connect services
	eventPath, eventHandler := api.NewEventServiceHandler(service.NewEventService(store, locks), interceptors)
	mux.Handle(eventPath, eventHandler)

	settlementSvc := service.NewSettlementService(store, locks, settlementOpts, metrics.NewSettlementMetrics(registry))
	settlementPath, settlementHandler := api.NewSettlementServiceHandler(settlementSvc, interceptors)
	mux.Handle(settlementPath, settlementHandler)

	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(corsMiddleware(mux), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Connect server starting",
			"address", server.Addr,
			"status_policy", policy,
			"include_idle", cfg.IncludeIdleParticipants,
			"prune_stale", cfg.PruneStaleConfirmations,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms, X-Request-Id")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, X-Request-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
