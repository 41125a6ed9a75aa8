// Package handlers implements the HTTP endpoints: report generation
// and retrieval, document upload, and job polling.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mizanhq/mizan/internal/api/middleware"
	infrabq "github.com/mizanhq/mizan/internal/infra/bigquery"
	"github.com/mizanhq/mizan/internal/jobs"
	"github.com/mizanhq/mizan/internal/report"
	"github.com/mizanhq/mizan/internal/schema"
	"github.com/mizanhq/mizan/internal/storage"
)

// maxUploadBytes bounds document uploads.
const maxUploadBytes = 32 << 20 // 32 MiB

// ReportGenerator derives a report from wire transactions. Satisfied by
// *pipeline.Pipeline.
type ReportGenerator interface {
	GenerateReport(txs []schema.Transaction, currency, source string) *report.Report
}

// ReportMetadataRepository reads report metadata. Satisfied by
// *bigquery.Repository; nil disables listing.
type ReportMetadataRepository interface {
	InsertReport(ctx context.Context, row *infrabq.ReportRow) error
	ListReportsByUser(ctx context.Context, userID string, limit int) ([]*infrabq.ReportRow, error)
	GetReport(ctx context.Context, userID, reportID string) (*infrabq.ReportRow, error)
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	generator ReportGenerator
	store     storage.DocumentStore
	repo      ReportMetadataRepository
	log       zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(generator ReportGenerator, store storage.DocumentStore, repo ReportMetadataRepository, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{
		generator: generator,
		store:     store,
		repo:      repo,
		log:       log,
	}
}

// GenerateReport handles POST /api/reports/generate. The caller posts
// transactions directly; the report comes back in the same response and
// is persisted for later retrieval.
func (h *ReportsHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	var req struct {
		Transactions []schema.Transaction `json:"transactions"`
		Currency     string               `json:"currency"`
		Source       string               `json:"source"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Transactions) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "transactions are required")
		return
	}

	rep := h.generator.GenerateReport(req.Transactions, req.Currency, req.Source)
	reportID := uuid.New().String()

	gcsKey, err := h.store.SaveReport(ctx, userID, reportID, rep)
	if err != nil {
		h.log.Error().Err(err).Str("report_id", reportID).Msg("Failed to persist report")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to persist report")
		return
	}

	if h.repo != nil {
		row := &infrabq.ReportRow{
			ReportID:          reportID,
			UserID:            userID,
			Currency:          req.Currency,
			GCSURI:            gcsKey,
			ConfidenceScore:   rep.Metadata.Confidence,
			TransactionsTotal: int64(len(req.Transactions)),
			GeneratedAt:       time.Now(),
			CreatedTS:         time.Now(),
		}
		if summary := rep.Sections.ExecutiveSummary; summary != nil {
			row.OverallHealth = summary.OverallHealth
			row.AlertsTotal = int64(summary.AlertCount)
		}
		if err := h.repo.InsertReport(ctx, row); err != nil {
			h.log.Error().Err(err).Str("report_id", reportID).Msg("Failed to save report metadata")
		}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"reportId": reportID,
		"report":   rep,
	})
}

// GetReport handles GET /api/reports/{id}, streaming the stored report
// body.
func (h *ReportsHandler) GetReport(w http.ResponseWriter, r *http.Request, reportID string) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	data, err := h.store.FetchReport(ctx, userID, reportID)
	if err != nil {
		h.log.Warn().Err(err).Str("report_id", reportID).Msg("Report not found")
		middleware.WriteError(w, http.StatusNotFound, "Report not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ListReports handles GET /api/reports.
func (h *ReportsHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	if h.repo == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Report listing is not configured")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	reports, err := h.repo.ListReportsByUser(ctx, userID, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list reports")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}

	if reports == nil {
		reports = []*infrabq.ReportRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
	})
}

// DocumentsHandler handles document upload endpoints.
type DocumentsHandler struct {
	store     storage.DocumentStore
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(store storage.DocumentStore, publisher jobs.Publisher, log zerolog.Logger) *DocumentsHandler {
	return &DocumentsHandler{
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

// UploadDocument handles POST /api/documents/upload. The multipart file
// is stored and a report-generation job enqueued; the response carries
// the job and report IDs for polling.
func (h *DocumentsHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	filename := filepath.Base(header.Filename)

	jobID := uuid.New().String()
	key := storage.DocumentKey(userID, jobID, filename)

	if err := h.store.SaveDocument(ctx, key, data); err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to store document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store document")
		return
	}

	job := &jobs.GenerateReportJob{
		Job: schema.Job{
			JobID:        jobID,
			S3Key:        key,
			Mime:         mimeType,
			OriginalName: filename,
			UserID:       userID,
			CreatedAt:    time.Now(),
		},
		ReportID: uuid.New().String(),
		Currency: r.FormValue("currency"),
	}

	if err := h.publisher.PublishGenerateReport(ctx, job); err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to enqueue report job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue report job")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("report_id", job.ReportID).
		Str("key", key).
		Int("bytes", len(data)).
		Msg("Document uploaded and job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"jobId":    job.JobID,
		"reportId": job.ReportID,
		"status":   string(jobs.JobStatusPending),
	})
}

// JobsHandler handles job polling endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}.
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs, scoped to the calling user.
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		UserID: middleware.UserIDFromContext(ctx),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
