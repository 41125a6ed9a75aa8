// Package report implements the financial-statement derivation pipeline:
// deterministic modules that take a normalized list of transactions and
// produce cashflow summaries, budget variance analysis, ledger postings,
// tax/VAT liability tracking, assets/liabilities classification, debt
// tracking, profit & loss and multi-horizon forecasts, merged into a
// single report by the aggregator.
//
// Every module is a pure function over its input slice: no module mutates
// its input, and calling a module twice with the same data yields
// identical output. Amount-zero records are skipped everywhere and logged
// as warnings.
package report

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Transaction is one normalized financial movement. Positive amounts are
// income, negative amounts are expenses. A zero Date is treated as
// unknown and bucketed separately by date-grouping modules.
type Transaction struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency,omitempty"`
	Category    string    `json:"category,omitempty"`
	Vendor      string    `json:"vendor,omitempty"`
}

// Severity levels for alerts.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Alert flags a condition that needs the user's attention.
type Alert struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Highlight is a notable observation surfaced on the dashboard. Type is
// one of "positive", "negative", "neutral" or "info"; the aggregator
// counts positive highlights when grading overall health.
type Highlight struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// DefaultCurrency is assumed when a caller does not specify one.
const DefaultCurrency = "EUR"

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Str("component", "report").Logger()

// SetLogger replaces the package logger. The pipeline logs skipped
// records and classification fallthroughs as warnings; pass a disabled
// logger to silence them.
func SetLogger(l zerolog.Logger) {
	log = l
}

// skipZero filters out zero-amount transactions, logging one warning per
// skipped record with the calling module's tag. The input slice is never
// modified.
func skipZero(module string, txs []Transaction) []Transaction {
	kept := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Amount == 0 {
			log.Warn().
				Str("module", module).
				Str("description", tx.Description).
				Msg("skipping zero-amount transaction")
			continue
		}
		kept = append(kept, tx)
	}
	return kept
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return DefaultCurrency
	}
	return currency
}
