package report

import (
	"fmt"
	"math"
)

// BalanceEntry is one transaction classified onto the balance sheet.
// Value is always the positive magnitude of the amount.
type BalanceEntry struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category,omitempty"`
	Date        string  `json:"date"`
	Type        string  `json:"type"` // "asset" or "liability"
	Subcategory string  `json:"subcategory"`
	Value       float64 `json:"value"`
}

// BalanceTotals summarizes the classified balance sheet.
type BalanceTotals struct {
	TotalAssets      float64 `json:"totalAssets"`
	TotalLiabilities float64 `json:"totalLiabilities"`
	NetWorth         float64 `json:"netWorth"`
	DebtToAssetRatio float64 `json:"debtToAssetRatio"`
}

// AssetsLiabilitiesResult is the output of the assets/liabilities module.
type AssetsLiabilitiesResult struct {
	Currency    string             `json:"currency"`
	Assets      []BalanceEntry     `json:"assets"`
	Liabilities []BalanceEntry     `json:"liabilities"`
	Totals      BalanceTotals      `json:"totals"`
	Breakdown   map[string]float64 `json:"breakdown"` // subcategory -> total value
	Alerts      []Alert            `json:"alerts"`
	Highlights  []Highlight        `json:"highlights"`
}

// ProcessAssetsLiabilities classifies every transaction as an asset or a
// liability via the ordered keyword rules, then category defaults, then
// the sign of the amount, and derives net worth and the debt-to-asset
// ratio.
func ProcessAssetsLiabilities(txs []Transaction, currency string) (*AssetsLiabilitiesResult, error) {
	txs = skipZero("assets_liabilities", txs)

	result := &AssetsLiabilitiesResult{
		Currency:    currencyOrDefault(currency),
		Assets:      []BalanceEntry{},
		Liabilities: []BalanceEntry{},
		Breakdown:   make(map[string]float64),
		Alerts:      []Alert{},
		Highlights:  []Highlight{},
	}

	for _, tx := range txs {
		class := classifyBalance(tx)
		entry := BalanceEntry{
			Description: tx.Description,
			Amount:      tx.Amount,
			Category:    tx.Category,
			Date:        DayKey(tx.Date),
			Type:        class.Type,
			Subcategory: class.Subcategory,
			Value:       math.Abs(tx.Amount),
		}
		result.Breakdown[class.Subcategory] += entry.Value
		if class.Type == "asset" {
			result.Assets = append(result.Assets, entry)
			result.Totals.TotalAssets += entry.Value
		} else {
			result.Liabilities = append(result.Liabilities, entry)
			result.Totals.TotalLiabilities += entry.Value
		}
	}

	result.Totals.NetWorth = result.Totals.TotalAssets - result.Totals.TotalLiabilities
	if result.Totals.TotalAssets > 0 {
		result.Totals.DebtToAssetRatio = result.Totals.TotalLiabilities / result.Totals.TotalAssets
	}

	if result.Totals.DebtToAssetRatio > 0.8 {
		result.Alerts = append(result.Alerts, Alert{
			Type:     "high_leverage",
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("Debt-to-asset ratio is %.2f; liabilities nearly cover assets", result.Totals.DebtToAssetRatio),
		})
	}
	if result.Totals.NetWorth < 0 {
		result.Alerts = append(result.Alerts, Alert{
			Type:     "negative_net_worth",
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("Net worth is negative: %.2f %s", result.Totals.NetWorth, result.Currency),
		})
	}

	if len(result.Assets) > 5 && subcategoryCount(result.Assets) < 3 {
		result.Alerts = append(result.Alerts, Alert{
			Type:     "asset_concentration",
			Severity: SeverityMedium,
			Message:  "Assets are concentrated in fewer than three categories",
		})
	}
	if len(result.Liabilities) > 3 && subcategoryCount(result.Liabilities) < 2 {
		result.Alerts = append(result.Alerts, Alert{
			Type:     "liability_concentration",
			Severity: SeverityMedium,
			Message:  "Liabilities are concentrated in a single category",
		})
	}

	if result.Totals.NetWorth > 0 {
		result.Highlights = append(result.Highlights, Highlight{
			Type:    "positive",
			Message: fmt.Sprintf("Positive net worth of %.2f %s", result.Totals.NetWorth, result.Currency),
		})
	}
	if result.Totals.TotalAssets > 0 && result.Totals.DebtToAssetRatio < 0.3 {
		result.Highlights = append(result.Highlights, Highlight{
			Type:    "positive",
			Message: fmt.Sprintf("Low leverage: debt-to-asset ratio %.2f", result.Totals.DebtToAssetRatio),
		})
	}

	return result, nil
}

func subcategoryCount(entries []BalanceEntry) int {
	seen := make(map[string]struct{})
	for _, e := range entries {
		seen[e.Subcategory] = struct{}{}
	}
	return len(seen)
}
