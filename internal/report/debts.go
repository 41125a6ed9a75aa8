package report

import (
	"fmt"
	"math"
)

// DebtEntry is one debt-related transaction. Positive amounts are drawn
// credit (new borrowing), negative amounts are repayments.
type DebtEntry struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Kind        string  `json:"kind"` // "borrowing" or "repayment"
	Value       float64 `json:"value"`
}

// DebtTotals summarizes debt activity across the dataset.
type DebtTotals struct {
	TotalBorrowed     float64 `json:"totalBorrowed"`
	TotalRepaid       float64 `json:"totalRepaid"`
	OutstandingChange float64 `json:"outstandingChange"`
	MonthlyObligation float64 `json:"monthlyObligation"`
}

// DebtsLoansResult is the output of the debts & loans module.
type DebtsLoansResult struct {
	Currency   string      `json:"currency"`
	Entries    []DebtEntry `json:"entries"`
	Totals     DebtTotals  `json:"totals"`
	Alerts     []Alert     `json:"alerts"`
	Highlights []Highlight `json:"highlights"`
}

// ProcessDebtsLoans retains loan/debt/credit-related transactions and
// tracks borrowing against repayments. The monthly obligation is the
// average repayment per distinct month with repayment activity.
func ProcessDebtsLoans(txs []Transaction, currency string) (*DebtsLoansResult, error) {
	txs = skipZero("debts_loans", txs)

	result := &DebtsLoansResult{
		Currency:   currencyOrDefault(currency),
		Entries:    []DebtEntry{},
		Alerts:     []Alert{},
		Highlights: []Highlight{},
	}

	var totalInflow float64
	repayMonths := make(map[string]struct{})
	for _, tx := range txs {
		if tx.Amount > 0 {
			totalInflow += tx.Amount
		}
		if !isDebtRelated(tx) {
			continue
		}
		entry := DebtEntry{
			Description: tx.Description,
			Amount:      tx.Amount,
			Date:        DayKey(tx.Date),
			Value:       math.Abs(tx.Amount),
		}
		if tx.Amount > 0 {
			entry.Kind = "borrowing"
			result.Totals.TotalBorrowed += entry.Value
		} else {
			entry.Kind = "repayment"
			result.Totals.TotalRepaid += entry.Value
			repayMonths[MonthKey(tx.Date)] = struct{}{}
		}
		result.Entries = append(result.Entries, entry)
	}

	result.Totals.OutstandingChange = result.Totals.TotalBorrowed - result.Totals.TotalRepaid
	if n := len(repayMonths); n > 0 {
		result.Totals.MonthlyObligation = result.Totals.TotalRepaid / float64(n)
	}

	if totalInflow > 0 && result.Totals.TotalRepaid > totalInflow*0.4 {
		result.Alerts = append(result.Alerts, Alert{
			Type:     "debt_service_burden",
			Severity: SeverityHigh,
			Message: fmt.Sprintf("Debt repayments of %.2f %s consume more than 40%% of inflow",
				result.Totals.TotalRepaid, result.Currency),
		})
	}
	if result.Totals.OutstandingChange > 0 {
		result.Alerts = append(result.Alerts, Alert{
			Type:     "growing_debt",
			Severity: SeverityMedium,
			Message: fmt.Sprintf("Borrowing exceeds repayments by %.2f %s this period",
				result.Totals.OutstandingChange, result.Currency),
		})
	}
	if len(result.Entries) > 0 && result.Totals.OutstandingChange < 0 {
		result.Highlights = append(result.Highlights, Highlight{
			Type:    "positive",
			Message: fmt.Sprintf("Net debt reduced by %.2f %s", -result.Totals.OutstandingChange, result.Currency),
		})
	}

	return result, nil
}
