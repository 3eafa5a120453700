package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/cli"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
	"github.com/mmynk/splitledger/pkg/logging"
)

func main() {
	cli.LoadEnvFile()
	logger := logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	store, err := cli.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("Storage initialized", "backend", cfg.DataBackend)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	inbox, notifier, closeNotifier := cli.Notifier(logger, cfg, store)
	defer closeNotifier()

	engine := ledger.New(store,
		ledger.WithNotifier(notifier),
		ledger.WithMetrics(m),
		ledger.WithLogger(logger),
		ledger.WithDefaultCurrency(cfg.DefaultCurrency),
	)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(m),
		middleware.RequireAuth(jwtManager),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewLedgerServiceHandler(service.NewLedgerService(engine), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(service.NewGroupService(engine), interceptors))
	mux.Handle(apiconnect.NewNotificationServiceHandler(service.NewNotificationService(inbox), interceptors))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// h2c serves HTTP/2 without TLS for Connect and gRPC clients.
	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: h2c.NewHandler(corsMiddleware(mux), &http2.Server{}),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Shutdown timeout reached", "error", err)
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}

// corsMiddleware adds CORS headers for browser access.
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
