// Package pipeline orchestrates one report-generation run: fetch the
// uploaded document, extract transactions, derive the report, and
// persist everything.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	infrabq "github.com/mizanhq/mizan/internal/infra/bigquery"
	"github.com/mizanhq/mizan/internal/jobs"
	"github.com/mizanhq/mizan/internal/report"
	"github.com/mizanhq/mizan/internal/schema"
	"github.com/mizanhq/mizan/internal/storage"
)

// DocumentParser extracts transactions from raw document bytes.
// Satisfied by *ingest.Parser.
type DocumentParser interface {
	Parse(ctx context.Context, data []byte, mimeType string) ([]schema.Transaction, error)
}

// MetadataRepository persists extracted transactions and report
// metadata. Satisfied by *bigquery.Repository; nil disables
// persistence for local runs.
type MetadataRepository interface {
	InsertTransactions(ctx context.Context, rows []*infrabq.TransactionRow) error
	InsertReport(ctx context.Context, row *infrabq.ReportRow) error
}

// SummaryPublisher pushes a finished report's executive summary to an
// external surface. Failures are logged, never fatal.
type SummaryPublisher interface {
	PublishSummary(ctx context.Context, userID, reportID string, rep *report.Report) error
}

// Converter normalizes transaction amounts into the report currency.
// Satisfied by *currency.Manager.
type Converter interface {
	Convert(amount float64, from, to string) (float64, error)
}

// Options configures the derivation step of every run.
type Options struct {
	Currency string
	VATRate  float64
}

// Pipeline wires the collaborators of a report-generation run.
type Pipeline struct {
	store     storage.DocumentStore
	parser    DocumentParser
	repo      MetadataRepository
	publisher SummaryPublisher
	converter Converter
	opts      Options
	log       zerolog.Logger
}

// New assembles a pipeline. repo, publisher, and converter may be nil;
// the corresponding steps are skipped.
func New(store storage.DocumentStore, parser DocumentParser, repo MetadataRepository, publisher SummaryPublisher, converter Converter, opts Options, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		store:     store,
		parser:    parser,
		repo:      repo,
		publisher: publisher,
		converter: converter,
		opts:      opts,
		log:       log,
	}
}

// Run processes one job end to end and returns the generated report.
func (p *Pipeline) Run(ctx context.Context, job *jobs.GenerateReportJob) (*report.Report, error) {
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	data, err := p.store.FetchDocument(ctx, job.S3Key)
	if err != nil {
		return nil, fmt.Errorf("Run: fetch document %s: %w", job.S3Key, err)
	}

	wireTxs, err := p.parser.Parse(ctx, data, job.Mime)
	if err != nil {
		return nil, fmt.Errorf("Run: parse document %s: %w", job.S3Key, err)
	}

	currency := job.Currency
	if currency == "" {
		currency = p.opts.Currency
	}

	wireTxs = p.normalizeCurrency(wireTxs, currency)

	rep := p.GenerateReport(wireTxs, currency, job.OriginalName)

	if err := p.persist(ctx, job, wireTxs, rep); err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	if p.publisher != nil {
		if err := p.publisher.PublishSummary(ctx, job.UserID, job.ReportID, rep); err != nil {
			p.log.Warn().Err(err).
				Str("job_id", job.JobID).
				Str("report_id", job.ReportID).
				Msg("Failed to publish report summary")
		}
	}

	return rep, nil
}

// GenerateReport converts wire transactions and runs the derivation
// core. Invalid records are dropped with a warning rather than failing
// the run.
func (p *Pipeline) GenerateReport(wireTxs []schema.Transaction, currency, source string) *report.Report {
	txs, dropped := schema.ToReportTransactions(wireTxs)
	if dropped > 0 {
		p.log.Warn().
			Int("dropped", dropped).
			Int("accepted", len(txs)).
			Msg("Dropped invalid transactions")
	}

	opts := report.Options{
		Currency: currency,
		VATRate:  p.opts.VATRate,
	}
	if source != "" {
		opts.DataSources = []string{source}
	}

	return report.Generate(txs, opts)
}

// normalizeCurrency converts foreign-currency amounts into the report
// currency. A transaction whose rate is unknown passes through
// unchanged with a warning.
func (p *Pipeline) normalizeCurrency(txs []schema.Transaction, currency string) []schema.Transaction {
	if p.converter == nil {
		return txs
	}

	out := make([]schema.Transaction, len(txs))
	copy(out, txs)
	for i := range out {
		from := out[i].Currency
		if from == "" || from == currency {
			continue
		}
		converted, err := p.converter.Convert(out[i].Amount, from, currency)
		if err != nil {
			p.log.Warn().Err(err).
				Str("currency", from).
				Str("description", out[i].Description).
				Msg("Cannot convert transaction currency")
			continue
		}
		out[i].Amount = converted
		out[i].Currency = currency
		if out[i].TaxAmount != nil {
			if tax, err := p.converter.Convert(*out[i].TaxAmount, from, currency); err == nil {
				out[i].TaxAmount = &tax
			}
		}
	}
	return out
}

// persist stores the extracted transactions, the report body, and the
// report metadata row.
func (p *Pipeline) persist(ctx context.Context, job *jobs.GenerateReportJob, wireTxs []schema.Transaction, rep *report.Report) error {
	gcsKey, err := p.store.SaveReport(ctx, job.UserID, job.ReportID, rep)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	if p.repo == nil {
		return nil
	}

	rows := make([]*infrabq.TransactionRow, 0, len(wireTxs))
	for _, tx := range wireTxs {
		rows = append(rows, infrabq.TransactionRowFromSchema(tx, job.UserID, job.JobID))
	}
	if err := p.repo.InsertTransactions(ctx, rows); err != nil {
		return fmt.Errorf("insert transactions: %w", err)
	}

	meta := &infrabq.ReportRow{
		ReportID:          job.ReportID,
		UserID:            job.UserID,
		JobID:             job.JobID,
		Currency:          job.Currency,
		GCSURI:            gcsKey,
		TransactionsTotal: int64(len(wireTxs)),
		GeneratedAt:       time.Now(),
		CreatedTS:         time.Now(),
	}
	if summary := rep.Sections.ExecutiveSummary; summary != nil {
		meta.OverallHealth = summary.OverallHealth
		meta.AlertsTotal = int64(summary.AlertCount)
	}
	meta.ConfidenceScore = rep.Metadata.Confidence
	if meta.Currency == "" {
		meta.Currency = p.opts.Currency
	}

	if err := p.repo.InsertReport(ctx, meta); err != nil {
		return fmt.Errorf("insert report metadata: %w", err)
	}
	return nil
}
