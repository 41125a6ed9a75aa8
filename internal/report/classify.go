package report

import "strings"

// Classification of a transaction into the balance-sheet taxonomy.
type balanceClass struct {
	Type        string // "asset" or "liability"
	Subcategory string
}

// balanceRule matches a lower-cased description against a keyword set.
// Rules are evaluated in order and the first match wins, so rule order is
// part of the classification policy.
type balanceRule struct {
	keywords []string
	class    balanceClass
}

var balanceRules = []balanceRule{
	{[]string{"equipment", "computer", "hardware"}, balanceClass{"asset", "Equipment"}},
	{[]string{"office", "furniture", "supplies"}, balanceClass{"asset", "Office"}},
	{[]string{"software", "license", "subscription"}, balanceClass{"asset", "Software"}},
	{[]string{"vehicle", "car", "transport"}, balanceClass{"asset", "Vehicle"}},
	{[]string{"property", "real estate", "building"}, balanceClass{"asset", "Property"}},
	{[]string{"investment", "stock", "bond"}, balanceClass{"asset", "Investment"}},
	{[]string{"cash", "bank", "savings"}, balanceClass{"asset", "Cash"}},
	{[]string{"loan", "debt", "credit"}, balanceClass{"liability", "Debt"}},
	{[]string{"rent", "lease"}, balanceClass{"liability", "Rent/Lease"}},
	{[]string{"tax", "vat", "gst"}, balanceClass{"liability", "Tax"}},
	{[]string{"insurance", "premium"}, balanceClass{"liability", "Insurance"}},
	{[]string{"utility", "electric", "water", "internet"}, balanceClass{"liability", "Utilities"}},
}

// categoryClasses maps explicit transaction categories to a balance class
// when no description keyword matched.
var categoryClasses = map[string]balanceClass{
	"Equipment": {"asset", "Equipment"},
	"Software":  {"asset", "Software"},
	"Office":    {"asset", "Office"},
	"Rent":      {"liability", "Rent/Lease"},
	"Utilities": {"liability", "Utilities"},
	"Insurance": {"liability", "Insurance"},
	"Tax":       {"liability", "Tax"},
}

// classifyBalance resolves a transaction to an asset or liability class.
// Resolution order: description keywords, explicit category, then the
// sign of the amount (positive defaults to a general asset, negative to a
// general liability).
func classifyBalance(tx Transaction) balanceClass {
	desc := strings.ToLower(tx.Description)
	for _, rule := range balanceRules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				return rule.class
			}
		}
	}
	if class, ok := categoryClasses[tx.Category]; ok {
		return class
	}
	if tx.Amount >= 0 {
		return balanceClass{"asset", "Other Assets"}
	}
	return balanceClass{"liability", "Other Liabilities"}
}

// taxClass describes a detected tax or VAT obligation.
type taxClass struct {
	Type        string // "tax" or "vat"
	Subcategory string
	Rate        float64
}

type taxRule struct {
	keywords []string
	class    taxClass
}

// Default rates per tax subtype. The VAT rate is a placeholder replaced
// with the configured default at match time.
var taxRules = []taxRule{
	{[]string{"vat", "value added tax", "gst"}, taxClass{"vat", "VAT", 0}},
	{[]string{"income tax"}, taxClass{"tax", "Income Tax", 0.20}},
	{[]string{"corporate tax", "corporation tax"}, taxClass{"tax", "Corporate Tax", 0.25}},
	{[]string{"property tax"}, taxClass{"tax", "Property Tax", 0.05}},
	{[]string{"social security", "national insurance"}, taxClass{"tax", "Social Security", 0.12}},
	{[]string{"tax"}, taxClass{"tax", "General Tax", 0.20}},
}

// classifyTax detects whether a transaction carries a tax or VAT
// obligation. The second return is false for ordinary transactions,
// which the tax module silently excludes. vatRate fills in the rate for
// VAT matches.
func classifyTax(tx Transaction, vatRate float64) (taxClass, bool) {
	desc := strings.ToLower(tx.Description)
	for _, rule := range taxRules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				class := rule.class
				if class.Type == "vat" {
					class.Rate = vatRate
				}
				return class, true
			}
		}
	}
	if strings.EqualFold(tx.Category, "tax") || strings.EqualFold(tx.Category, "vat") {
		if strings.EqualFold(tx.Category, "vat") {
			return taxClass{"vat", "VAT", vatRate}, true
		}
		return taxClass{"tax", "General Tax", 0.20}, true
	}
	return taxClass{}, false
}

// debtKeywords retain transactions for the debts & loans module.
var debtKeywords = []string{"loan", "debt", "credit", "mortgage", "installment", "financing"}

func isDebtRelated(tx Transaction) bool {
	desc := strings.ToLower(tx.Description)
	for _, kw := range debtKeywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return strings.EqualFold(tx.Category, "loan") || strings.EqualFold(tx.Category, "debt")
}
