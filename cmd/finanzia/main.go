package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"finanzia/internal/auth"
	"finanzia/internal/backend"
	"finanzia/internal/cli"
	"finanzia/internal/dashboard"
	apphttp "finanzia/internal/http"
	"finanzia/internal/ledger"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	factory := backend.NewFactory(logger)
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	authSvc := auth.NewService(result.Backend)
	ledgerSvc := ledger.NewService(result.Backend)

	srv := apphttp.NewServer(":"+cfg.Port, authSvc, ledgerSvc, apphttp.Options{
		SessionTTL: cfg.SessionTTL,
		Dashboard: dashboard.Options{
			SavingsPercent: cfg.SavingsPercent,
			MonthlyLimit:   cfg.MonthlyLimitMoney(),
		},
	})

	// Server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	})

	logger.Info("Starting finanzia server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	<-done
	slog.Info("Server stopped gracefully")
}
