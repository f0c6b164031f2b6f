// Command server starts the ReadySetHire GenAI HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpserver "github.com/readysethire/genai-server/internal/adapter/httpserver"
	"github.com/readysethire/genai-server/internal/adapter/observability"
	"github.com/readysethire/genai-server/internal/app"
	"github.com/readysethire/genai-server/internal/config"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	svcs, err := app.BuildServices(cfg)
	if err != nil {
		slog.Error("service wiring failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := svcs.Close(); err != nil {
			slog.Error("failed to release resources", slog.Any("error", err))
		}
	}()
	if cfg.OpenAIAPIKey == "" {
		slog.Warn("OPENAI_API_KEY is not set; model-backed routes will return config_error")
	}
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	svcs.Ping(pingCtx)
	cancelPing()

	srv := httpserver.NewServer(cfg, svcs.GenAI, svcs.Applicants, svcs.Transcribe, svcs.Checks...)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting",
			slog.Int("port", cfg.Port),
			slog.String("model", cfg.LLMModel),
			slog.Bool("require_auth", cfg.RequireAuth),
			slog.Bool("stub_transcribe", cfg.UseStubTranscribe))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	if err := srvHTTP.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", slog.Any("error", err))
	}
}
