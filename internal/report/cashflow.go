package report

import "fmt"

// CashflowTotals aggregates money in and out across the whole dataset.
// Outflow is reported as a positive magnitude; NetCashflow is
// TotalInflow - TotalOutflow.
type CashflowTotals struct {
	TotalInflow      float64 `json:"totalInflow"`
	TotalOutflow     float64 `json:"totalOutflow"`
	NetCashflow      float64 `json:"netCashflow"`
	TransactionCount int     `json:"transactionCount"`
}

// DailyCashflow is one day bucket of the daily summary.
type DailyCashflow struct {
	Date    string  `json:"date"`
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
	Net     float64 `json:"net"`
}

// CashflowResult is the output of the cashflow module.
type CashflowResult struct {
	Currency     string          `json:"currency"`
	Totals       CashflowTotals  `json:"totals"`
	DailySummary []DailyCashflow `json:"dailySummary"`
	Alerts       []Alert         `json:"alerts"`
	Highlights   []Highlight     `json:"highlights"`
}

// ProcessCashflow aggregates inflow, outflow and net cashflow in a single
// pass, grouped by day. Transactions without a usable date land in the
// "unknown" bucket; buckets are returned in chronological order.
func ProcessCashflow(txs []Transaction, currency string) (*CashflowResult, error) {
	txs = skipZero("cashflow", txs)

	result := &CashflowResult{
		Currency:     currencyOrDefault(currency),
		DailySummary: []DailyCashflow{},
		Alerts:       []Alert{},
		Highlights:   []Highlight{},
	}

	daily := make(map[string]*DailyCashflow)
	for _, tx := range txs {
		if tx.Amount > 0 {
			result.Totals.TotalInflow += tx.Amount
		} else {
			result.Totals.TotalOutflow += -tx.Amount
		}
		result.Totals.TransactionCount++

		key := DayKey(tx.Date)
		day, ok := daily[key]
		if !ok {
			day = &DailyCashflow{Date: key}
			daily[key] = day
		}
		if tx.Amount > 0 {
			day.Inflow += tx.Amount
		} else {
			day.Outflow += -tx.Amount
		}
		day.Net = day.Inflow - day.Outflow
	}
	result.Totals.NetCashflow = result.Totals.TotalInflow - result.Totals.TotalOutflow

	for _, key := range sortedKeys(daily) {
		result.DailySummary = append(result.DailySummary, *daily[key])
	}

	if result.Totals.NetCashflow < 0 {
		result.Alerts = append(result.Alerts, Alert{
			Type:     "negative_cashflow",
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("Net cashflow is negative: %.2f %s", result.Totals.NetCashflow, result.Currency),
		})
	}
	if result.Totals.TotalInflow > 0 && result.Totals.NetCashflow > 0 {
		result.Highlights = append(result.Highlights, Highlight{
			Type:    "positive",
			Message: fmt.Sprintf("Positive net cashflow of %.2f %s across %d transactions", result.Totals.NetCashflow, result.Currency, result.Totals.TransactionCount),
		})
	}
	if result.Totals.TotalOutflow > result.Totals.TotalInflow*2 && result.Totals.TotalInflow > 0 {
		result.Alerts = append(result.Alerts, Alert{
			Type:     "high_outflow",
			Severity: SeverityMedium,
			Message:  "Outflow is more than twice the inflow for this period",
		})
	}

	return result, nil
}
