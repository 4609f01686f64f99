package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/applicant-screening/internal/api/handlers"
	"github.com/dvloznov/applicant-screening/internal/api/middleware"
	"github.com/dvloznov/applicant-screening/internal/jobs"
	"github.com/dvloznov/applicant-screening/internal/jobs/inmemory"
	"github.com/dvloznov/applicant-screening/internal/logger"
	"github.com/dvloznov/applicant-screening/internal/payments"
	"github.com/dvloznov/applicant-screening/internal/transfers"
)

func main() {
	// Load .env if present; real environment wins
	_ = godotenv.Load()

	portDefault := os.Getenv("PORT")
	if portDefault == "" {
		portDefault = "8080"
	}

	// Parse command-line flags
	var (
		port    = flag.String("port", portDefault, "HTTP server port (or set PORT env)")
		workers = flag.Int("workers", inmemory.DefaultWorkers, "Concurrent batch job workers")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, *workers, jobStore)

	// Start worker in background to process jobs
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()

	// Add logger to context
	workerCtx = logger.WithContext(workerCtx, log)

	runner := jobs.NewRunner(log, *workers)

	go func() {
		log.Info().Int("workers", *workers).Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, runner.Handle); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Initialize handlers
	transfersHandler := handlers.NewTransfersHandler(transfers.NewProcessor(log), log)
	paymentsHandler := handlers.NewPaymentsHandler(payments.NewCalculator(log), log)
	jobsHandler := handlers.NewJobsHandler(jobStore, jobQueue, log)

	// Create router
	mux := http.NewServeMux()

	// Transfer grouping endpoint
	mux.HandleFunc("/api/transfers/group", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			transfersHandler.GroupTransfers(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Payment aggregation endpoint
	mux.HandleFunc("/api/payments/aggregate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			paymentsHandler.AggregatePayments(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			jobsHandler.ListJobs(w, r)
		case http.MethodPost:
			jobsHandler.EnqueueBatch(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// Extract job ID from path
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware; RequestID sits outside Logger so access logs carry
	// the id it assigns
	handler := middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Cancel worker context
	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	// Close job queue
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
