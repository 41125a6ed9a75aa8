package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mizanhq/mizan/internal/api/handlers"
	"github.com/mizanhq/mizan/internal/api/middleware"
	"github.com/mizanhq/mizan/internal/config"
	"github.com/mizanhq/mizan/internal/currency"
	infrabq "github.com/mizanhq/mizan/internal/infra/bigquery"
	"github.com/mizanhq/mizan/internal/ingest"
	"github.com/mizanhq/mizan/internal/jobs"
	"github.com/mizanhq/mizan/internal/jobs/inmemory"
	"github.com/mizanhq/mizan/internal/logger"
	"github.com/mizanhq/mizan/internal/notion"
	"github.com/mizanhq/mizan/internal/pipeline"
	"github.com/mizanhq/mizan/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Name+"-api", cfg.App.LogLevel, cfg.App.LogFormat)

	if cfg.GCP.Bucket == "" {
		log.Fatal().Msg("GCS_BUCKET is required")
	}

	ctx := context.Background()

	store, err := storage.NewGCSStore(ctx, cfg.GCP.Bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create document store")
	}
	defer store.Close()

	var repo *infrabq.Repository
	if cfg.GCP.ProjectID != "" {
		repo, err = infrabq.NewRepository(ctx, cfg.GCP.ProjectID, cfg.GCP.Dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create metadata repository")
		}
		defer repo.Close()
	} else {
		log.Warn().Msg("No GCP project configured - report history disabled")
	}

	var extractor ingest.TransactionExtractor
	if cfg.Gemini.APIKey != "" {
		ext, err := ingest.NewExtractor(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create document extractor")
		}
		extractor = ext
	} else {
		log.Warn().Msg("No Gemini API key configured - only CSV and JSON uploads will parse")
	}
	parser := ingest.NewParser(extractor)

	var publisher pipeline.SummaryPublisher
	if cfg.Notion.Token != "" && cfg.Notion.DatabaseID != "" {
		publisher = notion.NewPublisher(notion.NewClient(cfg.Notion.Token), cfg.Notion.DatabaseID)
	}

	rates := currency.NewManager(cfg.Report.Currency)

	var metaRepo pipeline.MetadataRepository
	var handlerRepo handlers.ReportMetadataRepository
	if repo != nil {
		metaRepo = repo
		handlerRepo = repo
	}

	pipe := pipeline.New(store, parser, metaRepo, publisher, rates, pipeline.Options{
		Currency: cfg.Report.Currency,
		VATRate:  cfg.Report.VATRate,
	}, log)

	// Job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Jobs.BufferSize, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		reportJob, ok := job.(*jobs.GenerateReportJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", reportJob.JobID).
			Str("report_id", reportJob.ReportID).
			Str("key", reportJob.S3Key).
			Msg("Processing report job")

		if _, err := pipe.Run(ctx, reportJob); err != nil {
			log.Error().Err(err).
				Str("job_id", reportJob.JobID).
				Msg("Report generation failed")
			return err
		}

		log.Info().
			Str("job_id", reportJob.JobID).
			Str("report_id", reportJob.ReportID).
			Msg("Report generated")
		return nil
	}

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Handlers
	reportsHandler := handlers.NewReportsHandler(pipe, store, handlerRepo, log)
	documentsHandler := handlers.NewDocumentsHandler(store, jobQueue, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/reports/generate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			reportsHandler.GenerateReport(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/reports", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			reportsHandler.ListReports(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/reports/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			reportID := strings.TrimPrefix(r.URL.Path, "/api/reports/")
			if reportID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Report ID is required")
				return
			}
			reportsHandler.GetReport(w, r, reportID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/documents/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			documentsHandler.UploadDocument(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
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

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.UserID(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.App.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
