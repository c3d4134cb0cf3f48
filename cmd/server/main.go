package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/meetreminder/meetreminder/internal/app"
	"github.com/meetreminder/meetreminder/internal/config"
	"github.com/meetreminder/meetreminder/internal/handler"
	"github.com/meetreminder/meetreminder/internal/logger"
	"github.com/meetreminder/meetreminder/internal/middleware"
	"github.com/meetreminder/meetreminder/internal/router"
	"github.com/meetreminder/meetreminder/internal/service"
	"github.com/meetreminder/meetreminder/internal/trigger"
)

func main() {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", "0.1.0").Msg("starting meetreminder server")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize services")
	}
	defer a.Close()

	// Trigger runner
	runner := trigger.NewRunner(a.Triggers, cfg.Reminder.RunnerTick, log)
	runner.Handle(service.DispatchHandler, func(ctx context.Context) error {
		_, err := a.Dispatcher.Dispatch(ctx)
		return err
	})
	if pending, err := a.Scheduler.Resume(ctx); err != nil {
		log.Error().Err(err).Msg("failed to resume pending reminders")
	} else {
		log.Info().Int("pending", pending).Msg("pending reminders loaded")
	}
	go runner.Run(ctx)

	h := handler.New(a.DB, a.Redis, log, cfg, a.Scheduler, a.Dispatcher, a.Mail)
	mw := middleware.New(a.Redis, log, cfg)
	r := router.New(h, mw, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stop()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
