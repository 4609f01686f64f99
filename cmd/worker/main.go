package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/applicant-screening/internal/jobs"
	"github.com/dvloznov/applicant-screening/internal/jobs/inmemory"
	"github.com/dvloznov/applicant-screening/internal/logger"
)

func main() {
	// Load .env if present; real environment wins
	_ = godotenv.Load()

	workers := flag.Int("workers", inmemory.DefaultWorkers, "Concurrent batch job workers")
	flag.Parse()

	// Initialize logger
	log := logger.New()

	// Initialize job store and queue
	// The in-memory queue only sees jobs published in this process; a
	// brokered queue would replace it for multi-instance deployments.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, *workers, jobStore)

	log.Info().Int("workers", *workers).Msg("Starting worker service")

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Add logger to context
	ctx = logger.WithContext(ctx, log)

	runner := jobs.NewRunner(log, *workers)

	// Start consuming jobs
	if err := jobQueue.Start(ctx, runner.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	// Cancel context to stop workers
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	// Close the queue
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Worker service exited")
}
