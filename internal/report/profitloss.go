package report

import "fmt"

// ProfitLossStatement is a simplified income statement. All expenses are
// treated as cost of goods sold and operating expenses are zero; this is
// a deliberate simplification of the categorization scheme, not a bug.
type ProfitLossStatement struct {
	Revenue           float64 `json:"revenue"`
	COGS              float64 `json:"cogs"`
	GrossProfit       float64 `json:"grossProfit"`
	OperatingExpenses float64 `json:"operatingExpenses"`
	OperatingIncome   float64 `json:"operatingIncome"`
	Taxes             float64 `json:"taxes"`
	NetIncome         float64 `json:"netIncome"`
	GrossMargin       float64 `json:"grossMargin"`
	OperatingMargin   float64 `json:"operatingMargin"`
	NetMargin         float64 `json:"netMargin"`
}

// ProfitLossResult is the output of the profit & loss module.
type ProfitLossResult struct {
	Currency   string              `json:"currency"`
	ProfitLoss ProfitLossStatement `json:"profitLoss"`
	Confidence int                 `json:"confidence"`
	Alerts     []Alert             `json:"alerts"`
	Highlights []Highlight         `json:"highlights"`
}

// ProcessProfitLoss derives revenue, COGS and net income from the
// transaction set. Taxes apply a flat rate to positive pre-tax income
// only; margins are ratios to revenue and zero when there is no revenue.
func ProcessProfitLoss(txs []Transaction, currency string) (*ProfitLossResult, error) {
	txs = skipZero("profit_loss", txs)

	result := &ProfitLossResult{
		Currency:   currencyOrDefault(currency),
		Alerts:     []Alert{},
		Highlights: []Highlight{},
	}

	pl := &result.ProfitLoss
	for _, tx := range txs {
		if tx.Amount > 0 {
			pl.Revenue += tx.Amount
		} else {
			pl.COGS += -tx.Amount
		}
	}

	pl.GrossProfit = pl.Revenue - pl.COGS
	pl.OperatingExpenses = 0
	pl.OperatingIncome = pl.GrossProfit - pl.OperatingExpenses
	if pl.OperatingIncome > 0 {
		pl.Taxes = pl.OperatingIncome * FlatIncomeTaxRate
	}
	pl.NetIncome = pl.OperatingIncome - pl.Taxes

	if pl.Revenue > 0 {
		pl.GrossMargin = pl.GrossProfit / pl.Revenue
		pl.OperatingMargin = pl.OperatingIncome / pl.Revenue
		pl.NetMargin = pl.NetIncome / pl.Revenue
	}

	result.Confidence = dataConfidence(len(txs))

	if pl.NetIncome < 0 {
		result.Alerts = append(result.Alerts, Alert{
			Type:     "net_loss",
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("Operating at a net loss of %.2f %s", pl.NetIncome, result.Currency),
		})
	}
	if pl.NetIncome > 0 {
		result.Highlights = append(result.Highlights, Highlight{
			Type:    "positive",
			Message: fmt.Sprintf("Net income of %.2f %s at a %.0f%% net margin", pl.NetIncome, result.Currency, pl.NetMargin*100),
		})
	}
	if pl.Revenue > 0 && pl.GrossMargin < 0.2 {
		result.Alerts = append(result.Alerts, Alert{
			Type:     "thin_margin",
			Severity: SeverityMedium,
			Message:  fmt.Sprintf("Gross margin is thin at %.0f%%", pl.GrossMargin*100),
		})
	}

	return result, nil
}
