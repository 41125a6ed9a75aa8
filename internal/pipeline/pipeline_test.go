package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	infrabq "github.com/mizanhq/mizan/internal/infra/bigquery"
	"github.com/mizanhq/mizan/internal/jobs"
	"github.com/mizanhq/mizan/internal/report"
	"github.com/mizanhq/mizan/internal/schema"
)

type fakeStore struct {
	documents map[string][]byte
	reports   map[string]interface{}
	fetchErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		documents: make(map[string][]byte),
		reports:   make(map[string]interface{}),
	}
}

func (s *fakeStore) FetchDocument(_ context.Context, key string) ([]byte, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	data, ok := s.documents[key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", key)
	}
	return data, nil
}

func (s *fakeStore) SaveDocument(_ context.Context, key string, data []byte) error {
	s.documents[key] = data
	return nil
}

func (s *fakeStore) SaveReport(_ context.Context, userID, reportID string, rep interface{}) (string, error) {
	key := fmt.Sprintf("reports/%s/%s.json", userID, reportID)
	s.reports[key] = rep
	return key, nil
}

func (s *fakeStore) FetchReport(_ context.Context, userID, reportID string) ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}

type fakeRepo struct {
	txRows     []*infrabq.TransactionRow
	reportRows []*infrabq.ReportRow
	insertErr  error
}

func (r *fakeRepo) InsertTransactions(_ context.Context, rows []*infrabq.TransactionRow) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.txRows = append(r.txRows, rows...)
	return nil
}

func (r *fakeRepo) InsertReport(_ context.Context, row *infrabq.ReportRow) error {
	r.reportRows = append(r.reportRows, row)
	return nil
}

type fakePublisher struct {
	published int
	err       error
}

func (p *fakePublisher) PublishSummary(_ context.Context, _, _ string, _ *report.Report) error {
	p.published++
	return p.err
}

func testJob() *jobs.GenerateReportJob {
	return &jobs.GenerateReportJob{
		Job: schema.Job{
			JobID:        "job-1",
			S3Key:        "documents/user-1/job-1/may.csv",
			Mime:         "text/csv",
			OriginalName: "may.csv",
			UserID:       "user-1",
			CreatedAt:    time.Now(),
		},
		ReportID: "rep-1",
		Currency: "EUR",
	}
}

const sampleCSV = "Date,Description,Amount,Category\n" +
	"2024-05-01,Client invoice payment,2500.00,Income\n" +
	"2024-05-03,Office supplies,-150.00,Office\n"

func newTestPipeline(store *fakeStore, repo *fakeRepo, pub *fakePublisher) *Pipeline {
	var mr MetadataRepository
	if repo != nil {
		mr = repo
	}
	var sp SummaryPublisher
	if pub != nil {
		sp = pub
	}
	return New(store, newCSVOnlyParser(), mr, sp, nil, Options{Currency: "EUR", VATRate: 0.19}, zerolog.Nop())
}

type csvOnlyParser struct{}

func newCSVOnlyParser() *csvOnlyParser { return &csvOnlyParser{} }

func (csvOnlyParser) Parse(_ context.Context, data []byte, mimeType string) ([]schema.Transaction, error) {
	if mimeType != "text/csv" {
		return nil, fmt.Errorf("unsupported mime type %q", mimeType)
	}
	return []schema.Transaction{
		{Date: "2024-05-01", Description: "Client invoice payment", Amount: 2500, Category: "Income"},
		{Date: "2024-05-03", Description: "Office supplies", Amount: -150, Category: "Office"},
	}, nil
}

func TestPipeline_Run(t *testing.T) {
	store := newFakeStore()
	store.documents["documents/user-1/job-1/may.csv"] = []byte(sampleCSV)
	repo := &fakeRepo{}
	pub := &fakePublisher{}

	p := newTestPipeline(store, repo, pub)

	rep, err := p.Run(context.Background(), testJob())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	summary := rep.Sections.ExecutiveSummary
	if summary == nil {
		t.Fatal("expected executive summary")
	}
	if summary.TotalInflow != 2500 || summary.TotalOutflow != 150 {
		t.Errorf("inflow/outflow = %v/%v, want 2500/150", summary.TotalInflow, summary.TotalOutflow)
	}

	if _, ok := store.reports["reports/user-1/rep-1.json"]; !ok {
		t.Error("expected report persisted under reports/user-1/rep-1.json")
	}
	if len(repo.txRows) != 2 {
		t.Errorf("persisted %d transaction rows, want 2", len(repo.txRows))
	}
	if len(repo.reportRows) != 1 {
		t.Fatalf("persisted %d report rows, want 1", len(repo.reportRows))
	}
	if repo.reportRows[0].TransactionsTotal != 2 {
		t.Errorf("report row transactions_total = %d, want 2", repo.reportRows[0].TransactionsTotal)
	}
	if pub.published != 1 {
		t.Errorf("publisher called %d times, want 1", pub.published)
	}
}

func TestPipeline_Run_MissingDocument(t *testing.T) {
	p := newTestPipeline(newFakeStore(), &fakeRepo{}, nil)

	if _, err := p.Run(context.Background(), testJob()); err == nil {
		t.Error("expected error for missing document")
	}
}

func TestPipeline_Run_InvalidJob(t *testing.T) {
	p := newTestPipeline(newFakeStore(), nil, nil)

	job := testJob()
	job.UserID = ""

	if _, err := p.Run(context.Background(), job); err == nil {
		t.Error("expected validation error for job without user")
	}
}

func TestPipeline_Run_PublisherFailureIsNotFatal(t *testing.T) {
	store := newFakeStore()
	store.documents["documents/user-1/job-1/may.csv"] = []byte(sampleCSV)
	pub := &fakePublisher{err: fmt.Errorf("notion unavailable")}

	p := newTestPipeline(store, &fakeRepo{}, pub)

	if _, err := p.Run(context.Background(), testJob()); err != nil {
		t.Errorf("Run() error = %v, want nil despite publisher failure", err)
	}
}

func TestPipeline_GenerateReport_DropsInvalid(t *testing.T) {
	p := newTestPipeline(newFakeStore(), nil, nil)

	wire := []schema.Transaction{
		{Date: "2024-05-01", Description: "Sale", Amount: 100},
		{Date: "2024-05-02", Description: "", Amount: -50}, // no description
	}

	rep := p.GenerateReport(wire, "EUR", "upload.csv")

	if got := rep.Sections.CashflowAnalysis.Totals.TotalInflow; got != 100 {
		t.Errorf("inflow = %v, want 100", got)
	}
	if got := rep.Sections.CashflowAnalysis.Totals.TotalOutflow; got != 0 {
		t.Errorf("outflow = %v, want 0 (invalid record dropped)", got)
	}
	if len(rep.Metadata.DataSources) != 1 || rep.Metadata.DataSources[0] != "upload.csv" {
		t.Errorf("data sources = %v", rep.Metadata.DataSources)
	}
}

type fixedConverter struct{ rate float64 }

func (c fixedConverter) Convert(amount float64, from, to string) (float64, error) {
	if from == "USD" && to == "EUR" {
		return amount * c.rate, nil
	}
	return 0, fmt.Errorf("no rate for %s->%s", from, to)
}

func TestPipeline_NormalizeCurrency(t *testing.T) {
	p := New(newFakeStore(), newCSVOnlyParser(), nil, nil, fixedConverter{rate: 0.9}, Options{Currency: "EUR"}, zerolog.Nop())

	in := []schema.Transaction{
		{Description: "US sale", Amount: 1000, Currency: "USD"},
		{Description: "Local sale", Amount: 500, Currency: "EUR"},
		{Description: "Unknown currency", Amount: 50, Currency: "XXX"},
	}

	out := p.normalizeCurrency(in, "EUR")

	if out[0].Amount != 900 || out[0].Currency != "EUR" {
		t.Errorf("converted tx = %+v, want 900 EUR", out[0])
	}
	if out[1].Amount != 500 {
		t.Errorf("same-currency tx changed: %+v", out[1])
	}
	if out[2].Amount != 50 || out[2].Currency != "XXX" {
		t.Errorf("unconvertible tx should pass through: %+v", out[2])
	}
	if in[0].Amount != 1000 {
		t.Error("input slice mutated")
	}
}
