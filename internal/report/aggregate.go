package report

import (
	"fmt"
	"time"
)

// Version identifies the report schema produced by Generate.
const Version = "1.0.0"

// Options configures a report generation run.
type Options struct {
	Currency    string
	Budgets     []BudgetCategory
	VATRate     float64
	DataSources []string
}

// ExecutiveSummary condenses the whole report into headline figures.
type ExecutiveSummary struct {
	OverallHealth string  `json:"overallHealth"` // excellent | good | fair | poor
	TotalInflow   float64 `json:"totalInflow"`
	TotalOutflow  float64 `json:"totalOutflow"`
	NetCashflow   float64 `json:"netCashflow"`
	NetWorth      float64 `json:"netWorth"`
	NetIncome     float64 `json:"netIncome"`
	TaxLiability  float64 `json:"taxLiability"`
	AlertCount    int     `json:"alertCount"`
	Alerts        []Alert `json:"alerts"`
}

// Sections groups every module's output in the merged report.
type Sections struct {
	ExecutiveSummary  *ExecutiveSummary        `json:"executiveSummary"`
	CashflowAnalysis  *CashflowResult          `json:"cashflowAnalysis"`
	BudgetAnalysis    *BudgetResult            `json:"budgetAnalysis"`
	AssetsLiabilities *AssetsLiabilitiesResult `json:"assetsLiabilities"`
	DebtsLoans        *DebtsLoansResult        `json:"debtsLoans"`
	TaxesVAT          *TaxesVATResult          `json:"taxesVAT"`
	Forecasting       *ForecastingResult       `json:"forecasting"`
	Ledger            *LedgerResult            `json:"ledger"`
	ProfitLoss        *ProfitLossResult        `json:"profitLoss"`
	Recommendations   []string                 `json:"recommendations"`
}

// Metadata describes how and when the report was produced.
type Metadata struct {
	DataSources []string `json:"dataSources"`
	Confidence  float64  `json:"confidence"`
	Version     string   `json:"version"`
	GeneratedAt string   `json:"generatedAt"`
}

// Report is the merged output of the whole derivation pipeline.
type Report struct {
	Sections Sections `json:"sections"`
	Metadata Metadata `json:"metadata"`
}

// Generate runs every derivation module over the transaction list and
// merges the results. Each module call is isolated: a failure (or panic)
// in one module degrades that section to nil plus a high-severity alert
// instead of aborting the rest of the report.
func Generate(txs []Transaction, opts Options) *Report {
	currency := currencyOrDefault(opts.Currency)

	var moduleAlerts []Alert

	cashflow := runSection("cashflow", &moduleAlerts, func() (*CashflowResult, error) {
		return ProcessCashflow(txs, currency)
	})
	budget := runSection("budget", &moduleAlerts, func() (*BudgetResult, error) {
		return ProcessBudget(txs, opts.Budgets, currency)
	})
	assets := runSection("assets_liabilities", &moduleAlerts, func() (*AssetsLiabilitiesResult, error) {
		return ProcessAssetsLiabilities(txs, currency)
	})
	debts := runSection("debts_loans", &moduleAlerts, func() (*DebtsLoansResult, error) {
		return ProcessDebtsLoans(txs, currency)
	})
	taxes := runSection("taxes_vat", &moduleAlerts, func() (*TaxesVATResult, error) {
		return ProcessTaxesVAT(txs, currency, opts.VATRate)
	})
	forecasting := runSection("forecasting", &moduleAlerts, func() (*ForecastingResult, error) {
		return ProcessForecasting(txs, currency)
	})
	ledger := runSection("ledger", &moduleAlerts, func() (*LedgerResult, error) {
		return ProcessLedger(txs)
	})
	profitLoss := runSection("profit_loss", &moduleAlerts, func() (*ProfitLossResult, error) {
		return ProcessProfitLoss(txs, currency)
	})

	report := &Report{
		Sections: Sections{
			CashflowAnalysis:  cashflow,
			BudgetAnalysis:    budget,
			AssetsLiabilities: assets,
			DebtsLoans:        debts,
			TaxesVAT:          taxes,
			Forecasting:       forecasting,
			Ledger:            ledger,
			ProfitLoss:        profitLoss,
			Recommendations:   []string{},
		},
		Metadata: Metadata{
			DataSources: opts.DataSources,
			Version:     Version,
			GeneratedAt: time.Now().Format(time.RFC3339),
		},
	}
	if len(report.Metadata.DataSources) == 0 {
		report.Metadata.DataSources = []string{"transactions"}
	}

	report.Sections.ExecutiveSummary = buildExecutiveSummary(report, moduleAlerts)
	report.Sections.Recommendations = mergeRecommendations(report)
	report.Metadata.Confidence = overallConfidence(report)

	return report
}

// runSection isolates one module invocation, converting an error or a
// panic into a degraded nil section with a single high-severity alert.
func runSection[T any](module string, alerts *[]Alert, fn func() (*T, error)) *T {
	result, err := func() (out *T, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%v", r)
			}
		}()
		return fn()
	}()
	if err != nil {
		log.Error().Str("module", module).Err(err).Msg("module failed; degrading section")
		*alerts = append(*alerts, Alert{
			Type:     module + "_error",
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("%s processing failed: %v", module, err),
		})
		return nil
	}
	return result
}

func buildExecutiveSummary(r *Report, moduleAlerts []Alert) *ExecutiveSummary {
	summary := &ExecutiveSummary{Alerts: moduleAlerts}

	highCount := len(moduleAlerts)
	positiveHighlights := 0
	count := func(alerts []Alert, highlights []Highlight) {
		for _, a := range alerts {
			if a.Severity == SeverityHigh {
				highCount++
			}
		}
		for _, h := range highlights {
			if h.Type == "positive" {
				positiveHighlights++
			}
		}
	}

	if cf := r.Sections.CashflowAnalysis; cf != nil {
		summary.TotalInflow = cf.Totals.TotalInflow
		summary.TotalOutflow = cf.Totals.TotalOutflow
		summary.NetCashflow = cf.Totals.NetCashflow
		count(cf.Alerts, cf.Highlights)
	}
	if b := r.Sections.BudgetAnalysis; b != nil {
		count(b.Alerts, b.Highlights)
	}
	if al := r.Sections.AssetsLiabilities; al != nil {
		summary.NetWorth = al.Totals.NetWorth
		count(al.Alerts, al.Highlights)
	}
	if d := r.Sections.DebtsLoans; d != nil {
		count(d.Alerts, d.Highlights)
	}
	if t := r.Sections.TaxesVAT; t != nil {
		summary.TaxLiability = t.Totals.TotalLiability
		count(t.Alerts, t.Highlights)
	}
	if f := r.Sections.Forecasting; f != nil {
		count(f.Alerts, f.Highlights)
	}
	if l := r.Sections.Ledger; l != nil {
		count(l.Alerts, l.Highlights)
	}
	if pl := r.Sections.ProfitLoss; pl != nil {
		summary.NetIncome = pl.ProfitLoss.NetIncome
		count(pl.Alerts, pl.Highlights)
	}
	summary.AlertCount = highCount

	switch {
	case highCount == 0 && positiveHighlights > 0:
		summary.OverallHealth = "excellent"
	case highCount <= 1 && positiveHighlights > 0:
		summary.OverallHealth = "good"
	case highCount <= 2:
		summary.OverallHealth = "fair"
	default:
		summary.OverallHealth = "poor"
	}

	return summary
}

// mergeRecommendations collects module recommendations and adds the
// cross-module ones no single module can see.
func mergeRecommendations(r *Report) []string {
	recs := []string{}
	if b := r.Sections.BudgetAnalysis; b != nil {
		recs = append(recs, b.Recommendations...)
	}
	if f := r.Sections.Forecasting; f != nil {
		recs = append(recs, f.Recommendations...)
	}

	cf := r.Sections.CashflowAnalysis
	d := r.Sections.DebtsLoans
	if cf != nil && d != nil && cf.Totals.NetCashflow < 0 && d.Totals.OutstandingChange > 0 {
		recs = append(recs, "Cashflow is negative while debt is growing; prioritize repayments over new borrowing")
	}
	t := r.Sections.TaxesVAT
	if cf != nil && t != nil && t.Totals.TotalLiability > cf.Totals.NetCashflow && t.Totals.TotalLiability > 0 {
		recs = append(recs, "Tax liability exceeds net cashflow; set aside a tax reserve now")
	}
	return recs
}

// overallConfidence is the unweighted mean of the per-module confidence
// constants over the sections actually present in the report.
func overallConfidence(r *Report) float64 {
	var sum float64
	var n int
	if r.Sections.CashflowAnalysis != nil {
		sum += ConfidenceCashflow
		n++
	}
	if r.Sections.BudgetAnalysis != nil {
		sum += ConfidenceBudget
		n++
	}
	if r.Sections.AssetsLiabilities != nil {
		sum += ConfidenceAssetsLiabilities
		n++
	}
	if r.Sections.DebtsLoans != nil {
		sum += ConfidenceDebtsLoans
		n++
	}
	if r.Sections.TaxesVAT != nil {
		sum += ConfidenceTaxesVAT
		n++
	}
	if r.Sections.Forecasting != nil {
		sum += ConfidenceForecasting
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
