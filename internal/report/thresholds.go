package report

// Shared tuning constants. Several modules rely on the exact same cut
// points (the budget status thresholds and the ±5% trend band in
// particular), so they live here rather than in each module.
const (
	// Budget utilization cut points, inclusive.
	UtilizationCritical = 0.95
	UtilizationWarning  = 0.80
	UtilizationUnder    = 0.50

	// TrendBandPct is the band within which a period-over-period change
	// counts as stable. Above +5% is increasing, below -5% decreasing.
	TrendBandPct = 5.0

	// BalanceTolerance is the maximum drift allowed between total debits
	// and total credits before the trial balance is considered broken.
	BalanceTolerance = 0.01

	// DefaultVATRate applies when no explicit rate is configured.
	DefaultVATRate = 0.19

	// FlatIncomeTaxRate is applied to positive pre-tax net income in the
	// profit & loss statement.
	FlatIncomeTaxRate = 0.20
)

// Per-module confidence weights used by the aggregator. The overall
// report confidence is the unweighted mean over modules actually present.
const (
	ConfidenceCashflow          = 0.8
	ConfidenceBudget            = 0.7
	ConfidenceAssetsLiabilities = 0.6
	ConfidenceDebtsLoans        = 0.7
	ConfidenceTaxesVAT          = 0.8
	ConfidenceForecasting       = 0.5
)

// dataConfidence grades how much to trust a statement derived from n
// transactions. The ladder is shared by the ledger and profit & loss
// modules and must stay identical between them.
func dataConfidence(n int) int {
	switch {
	case n < 10:
		return 60
	case n < 50:
		return 75
	case n < 100:
		return 85
	default:
		return 95
	}
}

// trendDirection classifies a period-over-period percentage change.
func trendDirection(changePct float64) string {
	switch {
	case changePct > TrendBandPct:
		return "increasing"
	case changePct < -TrendBandPct:
		return "decreasing"
	default:
		return "stable"
	}
}

// percentChange returns the relative change from prev to cur in percent.
// A zero prev yields 0 so callers never divide by zero.
func percentChange(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}
