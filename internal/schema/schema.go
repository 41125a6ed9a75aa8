// Package schema defines the validated wire shapes exchanged with the
// ingestion worker: job payloads describing an uploaded document and the
// normalized transactions extracted from it. The report pipeline accepts
// and produces data compatible with these shapes.
package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/mizanhq/mizan/internal/report"
)

// DefaultCurrency is assumed for transactions that do not carry one.
const DefaultCurrency = "EUR"

// Job is the payload describing one uploaded document handed to the
// worker for extraction and report generation.
type Job struct {
	JobID        string    `json:"jobId"`
	S3Key        string    `json:"s3Key"`
	Mime         string    `json:"mime"`
	OriginalName string    `json:"originalName"`
	UserID       string    `json:"userId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate checks the job payload for the fields the worker cannot do
// without.
func (j *Job) Validate() error {
	if j.JobID == "" {
		return fmt.Errorf("job: missing jobId")
	}
	if j.S3Key == "" {
		return fmt.Errorf("job %s: missing s3Key", j.JobID)
	}
	if j.UserID == "" {
		return fmt.Errorf("job %s: missing userId", j.JobID)
	}
	return nil
}

// Transaction is one normalized transaction on the wire.
type Transaction struct {
	ID          string         `json:"id,omitempty"`
	Date        string         `json:"date"` // ISO-8601 calendar date
	Description string         `json:"description"`
	Vendor      string         `json:"vendor,omitempty"`
	Amount      float64        `json:"amount"`
	Currency    string         `json:"currency,omitempty"`
	Category    string         `json:"category,omitempty"`
	TaxAmount   *float64       `json:"taxAmount,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// Validate checks the transaction for required fields and a parseable
// date. Zero amounts are legal on the wire; the pipeline skips them with
// a warning rather than rejecting the batch.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("transaction: missing description")
	}
	if t.Date != "" {
		if _, err := parseDate(t.Date); err != nil {
			return fmt.Errorf("transaction %q: %w", t.Description, err)
		}
	}
	return nil
}

// ToReport converts the wire transaction into the core's representation,
// applying the EUR currency default. An unparseable or missing date maps
// to the zero time, which the core buckets as unknown.
func (t *Transaction) ToReport() report.Transaction {
	date, _ := parseDate(t.Date)
	currency := t.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	return report.Transaction{
		Date:        date,
		Description: t.Description,
		Amount:      t.Amount,
		Currency:    currency,
		Category:    t.Category,
		Vendor:      t.Vendor,
	}
}

// ToReportTransactions converts a wire batch for the core, dropping
// records that fail validation and returning how many were dropped.
func ToReportTransactions(txs []Transaction) ([]report.Transaction, int) {
	out := make([]report.Transaction, 0, len(txs))
	dropped := 0
	for i := range txs {
		if err := txs[i].Validate(); err != nil {
			dropped++
			continue
		}
		out = append(out, txs[i].ToReport())
	}
	return out, dropped
}

// dateLayouts are tried in order when parsing wire dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
