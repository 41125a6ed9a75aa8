package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

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

	log := logger.New(cfg.App.Name+"-worker", cfg.App.LogLevel, cfg.App.LogFormat)

	if cfg.GCP.Bucket == "" {
		log.Fatal().Msg("GCS_BUCKET is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.NewGCSStore(ctx, cfg.GCP.Bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create document store")
	}
	defer store.Close()

	var metaRepo pipeline.MetadataRepository
	if cfg.GCP.ProjectID != "" {
		repo, err := infrabq.NewRepository(ctx, cfg.GCP.ProjectID, cfg.GCP.Dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create metadata repository")
		}
		defer repo.Close()
		metaRepo = repo
	}

	var extractor ingest.TransactionExtractor
	if cfg.Gemini.APIKey != "" {
		ext, err := ingest.NewExtractor(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create document extractor")
		}
		extractor = ext
	}
	parser := ingest.NewParser(extractor)

	var publisher pipeline.SummaryPublisher
	if cfg.Notion.Token != "" && cfg.Notion.DatabaseID != "" {
		publisher = notion.NewPublisher(notion.NewClient(cfg.Notion.Token), cfg.Notion.DatabaseID)
	}

	pipe := pipeline.New(store, parser, metaRepo, publisher, currency.NewManager(cfg.Report.Currency), pipeline.Options{
		Currency: cfg.Report.Currency,
		VATRate:  cfg.Report.VATRate,
	}, log)

	// In production, this would be replaced with Cloud Tasks or Pub/Sub
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Jobs.BufferSize, jobStore)

	log.Info().Msg("Starting worker service")

	handler := func(ctx context.Context, job jobs.Job) error {
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

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}
