package report

import (
	"fmt"
	"sort"
	"time"
)

// BudgetCategory is one budget allocation for a category and month.
type BudgetCategory struct {
	Category      string  `json:"category"`
	MonthlyBudget float64 `json:"monthlyBudget"`
	YearlyBudget  float64 `json:"yearlyBudget"`
	Month         string  `json:"month"` // YYYY-MM
	Year          int     `json:"year"`
	Priority      string  `json:"priority"`
}

// CategoryAnalysis compares actual spend against budget for one category.
type CategoryAnalysis struct {
	Category        string  `json:"category"`
	Budget          float64 `json:"budget"`
	Actual          float64 `json:"actual"`
	Variance        float64 `json:"variance"`
	VariancePct     float64 `json:"variancePct"`
	UtilizationRate float64 `json:"utilizationRate"`
	Status          string  `json:"status"`
}

// OverallBudgetAnalysis sums the picture across all categories for the
// analysis month.
type OverallBudgetAnalysis struct {
	Month           string  `json:"month"`
	TotalBudget     float64 `json:"totalBudget"`
	TotalActual     float64 `json:"totalActual"`
	Variance        float64 `json:"variance"`
	VariancePct     float64 `json:"variancePct"`
	UtilizationRate float64 `json:"utilizationRate"`
	Status          string  `json:"status"`
}

// MonthlySpend is total actual spend for one calendar month.
type MonthlySpend struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
	Trend string  `json:"trend"`
}

// BudgetResult is the output of the budgeting module.
type BudgetResult struct {
	Currency        string                `json:"currency"`
	Budgets         []BudgetCategory      `json:"budgets"`
	Actuals         map[string]float64    `json:"actuals"` // category -> spend in analysis month
	Overall         OverallBudgetAnalysis `json:"overall"`
	Monthly         []MonthlySpend        `json:"monthly"`
	Categories      []CategoryAnalysis    `json:"categories"`
	Alerts          []Alert               `json:"alerts"`
	Highlights      []Highlight           `json:"highlights"`
	Recommendations []string              `json:"recommendations"`
}

// Default budget categories synthesized when the caller supplies none.
// Anchored to the reference month at processing time.
var defaultBudgets = []struct {
	Category string
	Monthly  float64
	Priority string
}{
	{"Office", 500, "medium"},
	{"Software", 300, "high"},
	{"Utilities", 400, "high"},
	{"Marketing", 600, "medium"},
	{"Professional", 800, "medium"},
	{"Equipment", 1000, "low"},
	{"Travel", 700, "low"},
	{"Other", 500, "low"},
}

// utilizationStatus classifies a utilization rate. Cut points are
// inclusive: exactly 0.95 is already critical, exactly 0.80 warning and
// exactly 0.50 still underutilized.
func utilizationStatus(rate float64) string {
	switch {
	case rate >= UtilizationCritical:
		return "critical"
	case rate >= UtilizationWarning:
		return "warning"
	case rate <= UtilizationUnder:
		return "underutilized"
	default:
		return "healthy"
	}
}

// ProcessBudget compares actual expense spend per category against budget
// allocations for the reference month. Only negative amounts count as
// actuals. The reference month is the latest month present in the data,
// never the wall clock, except when the dataset is empty; if the
// reference month carries no spend at all (budgets supplied for a
// disjoint month), analysis falls back to the month with the highest
// total spend, earliest month winning ties.
func ProcessBudget(txs []Transaction, budgets []BudgetCategory, currency string) (*BudgetResult, error) {
	txs = skipZero("budget", txs)

	result := &BudgetResult{
		Currency:        currencyOrDefault(currency),
		Actuals:         make(map[string]float64),
		Monthly:         []MonthlySpend{},
		Categories:      []CategoryAnalysis{},
		Alerts:          []Alert{},
		Highlights:      []Highlight{},
		Recommendations: []string{},
	}

	// Month -> category -> spend, expenses only, positive magnitudes.
	spendByMonth := make(map[string]map[string]float64)
	for _, tx := range txs {
		if tx.Amount >= 0 {
			continue
		}
		month := MonthKey(tx.Date)
		if spendByMonth[month] == nil {
			spendByMonth[month] = make(map[string]float64)
		}
		category := tx.Category
		if category == "" {
			category = "Other"
		}
		spendByMonth[month][category] += -tx.Amount
	}

	// Reference month: latest month present in the data (income counts
	// too; an income-only month can still be the nominal current month).
	referenceMonth := ""
	for _, tx := range txs {
		if month := MonthKey(tx.Date); month != UnknownBucket && month > referenceMonth {
			referenceMonth = month
		}
	}
	if referenceMonth == "" {
		referenceMonth = time.Now().Format("2006-01")
	}

	if len(budgets) == 0 {
		budgets = synthesizeBudgets(referenceMonth)
	}
	result.Budgets = budgets

	analysisMonth := referenceMonth
	if monthTotal(spendByMonth[analysisMonth]) == 0 {
		analysisMonth = highestSpendMonth(spendByMonth, analysisMonth)
	}
	result.Overall.Month = analysisMonth

	for category, spend := range spendByMonth[analysisMonth] {
		result.Actuals[category] = spend
	}

	for _, b := range budgets {
		actual := result.Actuals[b.Category]
		ca := CategoryAnalysis{
			Category: b.Category,
			Budget:   b.MonthlyBudget,
			Actual:   actual,
			Variance: actual - b.MonthlyBudget,
		}
		if b.MonthlyBudget > 0 {
			ca.UtilizationRate = actual / b.MonthlyBudget
			ca.VariancePct = ca.Variance / b.MonthlyBudget * 100
		}
		ca.Status = utilizationStatus(ca.UtilizationRate)
		result.Categories = append(result.Categories, ca)

		result.Overall.TotalBudget += b.MonthlyBudget
		result.Overall.TotalActual += actual

		switch ca.Status {
		case "critical":
			result.Alerts = append(result.Alerts, Alert{
				Type:     "category_critical",
				Severity: SeverityHigh,
				Message: fmt.Sprintf("%s is at %.0f%% of its %.2f %s budget",
					b.Category, ca.UtilizationRate*100, b.MonthlyBudget, result.Currency),
			})
		case "warning":
			result.Alerts = append(result.Alerts, Alert{
				Type:     "category_warning",
				Severity: SeverityMedium,
				Message: fmt.Sprintf("%s is at %.0f%% of its %.2f %s budget",
					b.Category, ca.UtilizationRate*100, b.MonthlyBudget, result.Currency),
			})
		}
		if ca.UtilizationRate > UtilizationWarning && ca.VariancePct > 20 {
			result.Alerts = append(result.Alerts, Alert{
				Type:     "spending_trend",
				Severity: SeverityMedium,
				Message: fmt.Sprintf("%s spending is trending %.0f%% over budget", b.Category, ca.VariancePct),
			})
		}
	}

	result.Overall.Variance = result.Overall.TotalActual - result.Overall.TotalBudget
	if result.Overall.TotalBudget > 0 {
		result.Overall.UtilizationRate = result.Overall.TotalActual / result.Overall.TotalBudget
		result.Overall.VariancePct = result.Overall.Variance / result.Overall.TotalBudget * 100
	}
	result.Overall.Status = utilizationStatus(result.Overall.UtilizationRate)

	if result.Overall.Status == "critical" {
		result.Alerts = append(result.Alerts, Alert{
			Type:     "budget_critical",
			Severity: SeverityHigh,
			Message: fmt.Sprintf("Total spend %.2f %s against budget %.2f %s (variance %.2f, %.1f%%)",
				result.Overall.TotalActual, result.Currency, result.Overall.TotalBudget,
				result.Currency, result.Overall.Variance, result.Overall.VariancePct),
		})
	}
	if result.Overall.Status == "healthy" && result.Overall.TotalActual > 0 {
		result.Highlights = append(result.Highlights, Highlight{
			Type: "positive",
			Message: fmt.Sprintf("Budget utilization healthy at %.0f%% for %s",
				result.Overall.UtilizationRate*100, analysisMonth),
		})
	}

	result.Monthly = monthlyTrend(spendByMonth)
	result.Recommendations = budgetRecommendations(result)

	return result, nil
}

func synthesizeBudgets(month string) []BudgetCategory {
	year := 0
	if t, err := time.Parse("2006-01", month); err == nil {
		year = t.Year()
	}
	budgets := make([]BudgetCategory, 0, len(defaultBudgets))
	for _, d := range defaultBudgets {
		budgets = append(budgets, BudgetCategory{
			Category:      d.Category,
			MonthlyBudget: d.Monthly,
			YearlyBudget:  d.Monthly * 12,
			Month:         month,
			Year:          year,
			Priority:      d.Priority,
		})
	}
	return budgets
}

func monthTotal(spend map[string]float64) float64 {
	var total float64
	for _, v := range spend {
		total += v
	}
	return total
}

// highestSpendMonth picks the month with the largest total spend,
// preferring the lexicographically earliest month on a tie. Falls back to
// the provided month when there is no spend anywhere.
func highestSpendMonth(spendByMonth map[string]map[string]float64, fallback string) string {
	best := fallback
	var bestTotal float64
	months := make([]string, 0, len(spendByMonth))
	for m := range spendByMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		if m == UnknownBucket {
			continue
		}
		if total := monthTotal(spendByMonth[m]); total > bestTotal {
			best, bestTotal = m, total
		}
	}
	return best
}

func monthlyTrend(spendByMonth map[string]map[string]float64) []MonthlySpend {
	months := make([]string, 0, len(spendByMonth))
	for m := range spendByMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]MonthlySpend, 0, len(months))
	var prev float64
	for i, m := range months {
		total := monthTotal(spendByMonth[m])
		trend := "stable"
		if i > 0 {
			trend = trendDirection(percentChange(prev, total))
		}
		out = append(out, MonthlySpend{Month: m, Total: total, Trend: trend})
		prev = total
	}
	return out
}

func budgetRecommendations(r *BudgetResult) []string {
	recs := []string{}
	for _, ca := range r.Categories {
		switch ca.Status {
		case "critical":
			recs = append(recs, fmt.Sprintf("Reduce %s spending or raise its allocation; it has consumed %.0f%% of budget", ca.Category, ca.UtilizationRate*100))
		case "underutilized":
			if ca.Actual > 0 {
				recs = append(recs, fmt.Sprintf("Consider reallocating part of the %s budget; only %.0f%% used", ca.Category, ca.UtilizationRate*100))
			}
		}
	}
	if len(r.Monthly) >= 2 && r.Monthly[len(r.Monthly)-1].Trend == "increasing" {
		recs = append(recs, "Monthly spend is rising; review recurring costs before the next cycle")
	}
	return recs
}
