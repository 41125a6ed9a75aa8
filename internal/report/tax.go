package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// TaxVATEntry is one transaction decomposed into its net and tax parts.
// NetAmount + TaxAmount always equals the absolute gross amount, with
// NetAmount = gross / (1 + rate).
type TaxVATEntry struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"` // "tax" or "vat"
	Subcategory string  `json:"subcategory"`
	Rate        float64 `json:"rate"`
	NetAmount   float64 `json:"netAmount"`
	TaxAmount   float64 `json:"taxAmount"`
	DueDate     string  `json:"dueDate"`
	Status      string  `json:"status"` // "pending" or "paid"
}

// TaxTotals sums obligations across the dataset.
type TaxTotals struct {
	TotalTax       float64 `json:"totalTax"`
	TotalVAT       float64 `json:"totalVAT"`
	TotalNet       float64 `json:"totalNet"`
	TotalLiability float64 `json:"totalLiability"`
	TaxCount       int     `json:"taxCount"`
	VATCount       int     `json:"vatCount"`
}

// CalendarItem is one upcoming or recorded tax deadline.
type CalendarItem struct {
	DueDate     string  `json:"dueDate"`
	Description string  `json:"description"`
	Subcategory string  `json:"subcategory"`
	Amount      float64 `json:"amount,omitempty"`
	Recurring   bool    `json:"recurring"`
}

// TaxesVATResult is the output of the taxes/VAT module.
type TaxesVATResult struct {
	Currency   string         `json:"currency"`
	Taxes      []TaxVATEntry  `json:"taxes"`
	VAT        []TaxVATEntry  `json:"vat"`
	Totals     TaxTotals      `json:"totals"`
	Calendar   []CalendarItem `json:"calendar"`
	Alerts     []Alert        `json:"alerts"`
	Highlights []Highlight    `json:"highlights"`
}

// ProcessTaxesVAT retains tax/VAT-bearing transactions, splits each gross
// amount into net and tax at the matched subtype rate, derives
// subtype-specific due dates and merges them with synthesized recurring
// reminders into a deadline calendar. Overdue detection compares against
// wall-clock today since deadlines are real-world obligations.
func ProcessTaxesVAT(txs []Transaction, currency string, defaultVATRate float64) (*TaxesVATResult, error) {
	if defaultVATRate <= 0 {
		defaultVATRate = DefaultVATRate
	}
	txs = skipZero("taxes_vat", txs)

	result := &TaxesVATResult{
		Currency:   currencyOrDefault(currency),
		Taxes:      []TaxVATEntry{},
		VAT:        []TaxVATEntry{},
		Calendar:   []CalendarItem{},
		Alerts:     []Alert{},
		Highlights: []Highlight{},
	}

	// Due dates are midnight dates, so compare against a truncated
	// today. An obligation due today is not yet overdue.
	today := startOfDay(time.Now())

	for _, tx := range txs {
		class, ok := classifyTax(tx, defaultVATRate)
		if !ok {
			continue
		}
		gross := math.Abs(tx.Amount)
		net := gross / (1 + class.Rate)
		entry := TaxVATEntry{
			Description: tx.Description,
			Amount:      tx.Amount,
			Type:        class.Type,
			Subcategory: class.Subcategory,
			Rate:        class.Rate,
			NetAmount:   net,
			TaxAmount:   gross - net,
			DueDate:     DayKey(dueDateFor(class.Subcategory, tx.Date)),
			Status:      paymentStatus(tx),
		}

		result.Totals.TotalNet += entry.NetAmount
		if entry.Type == "vat" {
			result.VAT = append(result.VAT, entry)
			result.Totals.TotalVAT += entry.TaxAmount
			result.Totals.VATCount++
		} else {
			result.Taxes = append(result.Taxes, entry)
			result.Totals.TotalTax += entry.TaxAmount
			result.Totals.TaxCount++
		}

		if due, err := time.Parse("2006-01-02", entry.DueDate); err == nil {
			if due.Before(today) && entry.Status != "paid" {
				result.Alerts = append(result.Alerts, Alert{
					Type:     "overdue_tax",
					Severity: SeverityHigh,
					Message: fmt.Sprintf("%s of %.2f %s was due %s and is not marked paid",
						entry.Subcategory, entry.TaxAmount, result.Currency, entry.DueDate),
				})
			}
		}
		result.Calendar = append(result.Calendar, CalendarItem{
			DueDate:     entry.DueDate,
			Description: entry.Description,
			Subcategory: entry.Subcategory,
			Amount:      entry.TaxAmount,
		})
	}
	result.Totals.TotalLiability = result.Totals.TotalTax + result.Totals.TotalVAT

	result.Calendar = append(result.Calendar, recurringReminders(today)...)
	sort.Slice(result.Calendar, func(i, j int) bool {
		return result.Calendar[i].DueDate < result.Calendar[j].DueDate
	})

	if result.Totals.TotalLiability > 0 {
		result.Highlights = append(result.Highlights, Highlight{
			Type: "info",
			Message: fmt.Sprintf("Tracked %d tax and %d VAT obligations totalling %.2f %s",
				result.Totals.TaxCount, result.Totals.VATCount, result.Totals.TotalLiability, result.Currency),
		})
	}

	return result, nil
}

// dueDateFor applies the subtype-specific deadline rule to a transaction
// date. Unknown subtypes get a flat 30-day grace period.
func dueDateFor(subcategory string, txDate time.Time) time.Time {
	if txDate.IsZero() {
		txDate = time.Now()
	}
	switch subcategory {
	case "VAT":
		// End of the next calendar month. Step from the first of the
		// month so a transaction on the 29th-31st cannot normalize past
		// February and land a month late.
		firstOfMonth := time.Date(txDate.Year(), txDate.Month(), 1, 0, 0, 0, 0, txDate.Location())
		return endOfMonth(firstOfMonth.AddDate(0, 1, 0))
	case "Income Tax":
		// Next April 5 after the transaction.
		due := time.Date(txDate.Year(), time.April, 5, 0, 0, 0, 0, txDate.Location())
		if !due.After(txDate) {
			due = due.AddDate(1, 0, 0)
		}
		return due
	case "Corporate Tax":
		// September 30 of the year after the fiscal year-end.
		return time.Date(txDate.Year()+1, time.September, 30, 0, 0, 0, 0, txDate.Location())
	case "Property Tax":
		// Start of the next calendar quarter.
		quarterStartMonth := time.Month((quarterOf(txDate)-1)*3 + 1)
		start := time.Date(txDate.Year(), quarterStartMonth, 1, 0, 0, 0, 0, txDate.Location())
		return start.AddDate(0, 3, 0)
	case "Social Security":
		// First of the next month.
		return time.Date(txDate.Year(), txDate.Month(), 1, 0, 0, 0, 0, txDate.Location()).AddDate(0, 1, 0)
	default:
		return txDate.AddDate(0, 0, 30)
	}
}

// paymentStatus marks an obligation paid when the description says so.
func paymentStatus(tx Transaction) string {
	if strings.Contains(strings.ToLower(tx.Description), "paid") {
		return "paid"
	}
	return "pending"
}

// recurringReminders synthesizes the standing quarterly income-tax and
// monthly VAT deadlines for the next twelve months. Only future dates are
// emitted; actual entries already cover the past.
func recurringReminders(today time.Time) []CalendarItem {
	items := []CalendarItem{}

	// Monthly VAT returns, due at the end of each month. Step from the
	// first of the month to keep the twelve reminders on distinct months.
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	for i := 1; i <= 12; i++ {
		due := endOfMonth(firstOfMonth.AddDate(0, i, 0))
		if !due.After(today) {
			continue
		}
		items = append(items, CalendarItem{
			DueDate:     DayKey(due),
			Description: "VAT return",
			Subcategory: "VAT",
			Recurring:   true,
		})
	}

	// Quarterly income-tax installments on quarter starts.
	for i := 1; i <= 4; i++ {
		month := time.Month((quarterOf(today)-1)*3 + 1)
		due := time.Date(today.Year(), month, 1, 0, 0, 0, 0, today.Location()).AddDate(0, 3*i, 0)
		if !due.After(today) {
			continue
		}
		items = append(items, CalendarItem{
			DueDate:     DayKey(due),
			Description: "Quarterly income tax installment",
			Subcategory: "Income Tax",
			Recurring:   true,
		})
	}

	return items
}
