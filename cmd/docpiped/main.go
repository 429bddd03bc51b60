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

	"doc-llm-pipeline/internal/common"
	"doc-llm-pipeline/internal/detect"
	"doc-llm-pipeline/internal/export"
	"doc-llm-pipeline/internal/jobs"
	"doc-llm-pipeline/internal/llm"
	"doc-llm-pipeline/internal/pipeline"
	"doc-llm-pipeline/internal/server"
	"doc-llm-pipeline/internal/ws"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("main.config_invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := jobs.NewMemoryStore()
	runner := jobs.NewRunner(logger)
	hub := ws.NewHub(logger)
	detector := detect.NewDetector(cfg.Detect, logger)
	router := llm.NewRouter(cfg.LLM, logger)
	proc := pipeline.NewProcessor(logger, cfg, detector, router, store, hub)
	exporter := export.NewService(logger)

	srv := server.New(cfg, store, runner, proc, exporter, hub.Handle, logger)

	httpSrv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: srv.Routes(),
	}

	go func() {
		logger.Info("main.http_listen", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("main.http_serve_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("main.shutdown_start")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main.http_shutdown_failed", "error", err)
	}

	// let in-flight jobs reach a terminal state before exiting
	runner.Wait()
	logger.Info("main.shutdown_done")
}
