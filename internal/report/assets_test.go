package report

import "testing"

func TestClassifyBalance(t *testing.T) {
	tests := []struct {
		name     string
		tx       Transaction
		wantType string
		wantSub  string
	}{
		{"loan repayment", tx("2024-01-01", "Loan repayment", -500, ""), "liability", "Debt"},
		{"equipment", tx("2024-01-01", "New computer for design team", -1200, ""), "asset", "Equipment"},
		{"office before rent", tx("2024-01-01", "Office rent", -900, ""), "asset", "Office"}, // rule order: office keyword wins
		{"software", tx("2024-01-01", "Annual license renewal", -300, ""), "asset", "Software"},
		{"vehicle", tx("2024-01-01", "Car maintenance", -150, ""), "asset", "Vehicle"},
		{"property", tx("2024-01-01", "Real estate deposit", -5000, ""), "asset", "Property"},
		{"investment", tx("2024-01-01", "Stock purchase", -2000, ""), "asset", "Investment"},
		{"cash", tx("2024-01-01", "Bank transfer in", 700, ""), "asset", "Cash"},
		{"lease", tx("2024-01-01", "Warehouse lease", -1100, ""), "liability", "Rent/Lease"},
		{"vat", tx("2024-01-01", "VAT remittance", -190, ""), "liability", "Tax"},
		{"insurance", tx("2024-01-01", "Premium payment", -80, ""), "liability", "Insurance"},
		{"utilities", tx("2024-01-01", "Electric bill", -60, ""), "liability", "Utilities"},
		{"category fallback", tx("2024-01-01", "Monthly thing", -100, "Rent"), "liability", "Rent/Lease"},
		{"positive sign fallback", tx("2024-01-01", "Mystery inflow", 400, ""), "asset", "Other Assets"},
		{"negative sign fallback", tx("2024-01-01", "Mystery outflow", -400, ""), "liability", "Other Liabilities"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class := classifyBalance(tt.tx)
			if class.Type != tt.wantType || class.Subcategory != tt.wantSub {
				t.Errorf("classifyBalance(%q) = %s/%s, want %s/%s",
					tt.tx.Description, class.Type, class.Subcategory, tt.wantType, tt.wantSub)
			}
		})
	}
}

func TestProcessAssetsLiabilities_LoanRepaymentScenario(t *testing.T) {
	result, err := ProcessAssetsLiabilities([]Transaction{
		tx("2024-01-01", "Loan repayment", -500, ""),
	}, "EUR")
	if err != nil {
		t.Fatalf("ProcessAssetsLiabilities failed: %v", err)
	}

	if len(result.Liabilities) != 1 {
		t.Fatalf("got %d liabilities, want 1", len(result.Liabilities))
	}
	entry := result.Liabilities[0]
	if entry.Type != "liability" || entry.Subcategory != "Debt" || entry.Value != 500 {
		t.Errorf("entry = %+v, want liability/Debt with value 500", entry)
	}
}

func TestProcessAssetsLiabilities_Totals(t *testing.T) {
	txs := []Transaction{
		tx("2024-01-01", "Bank balance", 10000, ""),
		tx("2024-01-02", "New equipment", -4000, ""),
		tx("2024-01-03", "Business loan", -9000, ""),
	}

	result, err := ProcessAssetsLiabilities(txs, "EUR")
	if err != nil {
		t.Fatalf("ProcessAssetsLiabilities failed: %v", err)
	}

	if result.Totals.TotalAssets != 14000 {
		t.Errorf("TotalAssets = %v, want 14000", result.Totals.TotalAssets)
	}
	if result.Totals.TotalLiabilities != 9000 {
		t.Errorf("TotalLiabilities = %v, want 9000", result.Totals.TotalLiabilities)
	}
	if result.Totals.NetWorth != 5000 {
		t.Errorf("NetWorth = %v, want 5000", result.Totals.NetWorth)
	}
	if ratio := result.Totals.DebtToAssetRatio; ratio < 0.64 || ratio > 0.65 {
		t.Errorf("DebtToAssetRatio = %v, want ~0.643", ratio)
	}
}

func TestProcessAssetsLiabilities_Alerts(t *testing.T) {
	t.Run("high leverage", func(t *testing.T) {
		result, err := ProcessAssetsLiabilities([]Transaction{
			tx("2024-01-01", "Savings deposit", 1000, ""),
			tx("2024-01-02", "Bridge loan", -900, ""),
		}, "EUR")
		if err != nil {
			t.Fatal(err)
		}
		if !hasAlert(result.Alerts, "high_leverage") {
			t.Errorf("want high_leverage alert at ratio 0.9, got %+v", result.Alerts)
		}
	})

	t.Run("negative net worth", func(t *testing.T) {
		result, err := ProcessAssetsLiabilities([]Transaction{
			tx("2024-01-01", "Savings deposit", 100, ""),
			tx("2024-01-02", "Debt consolidation", -900, ""),
		}, "EUR")
		if err != nil {
			t.Fatal(err)
		}
		if !hasAlert(result.Alerts, "negative_net_worth") {
			t.Errorf("want negative_net_worth alert, got %+v", result.Alerts)
		}
	})

	t.Run("zero assets no ratio", func(t *testing.T) {
		result, err := ProcessAssetsLiabilities([]Transaction{
			tx("2024-01-01", "Loan drawdown fee", -50, ""),
		}, "EUR")
		if err != nil {
			t.Fatal(err)
		}
		if result.Totals.DebtToAssetRatio != 0 {
			t.Errorf("ratio with zero assets = %v, want 0", result.Totals.DebtToAssetRatio)
		}
	})
}

func hasAlert(alerts []Alert, typ string) bool {
	for _, a := range alerts {
		if a.Type == typ {
			return true
		}
	}
	return false
}

func TestProcessDebtsLoans(t *testing.T) {
	txs := []Transaction{
		tx("2024-01-05", "Business loan drawdown", 10000, ""),
		tx("2024-02-01", "Loan repayment", -1000, ""),
		tx("2024-03-01", "Loan repayment", -1000, ""),
		tx("2024-03-10", "Groceries", -50, ""), // not debt-related
		tx("2024-03-15", "Client payment", 3000, "Income"),
	}

	result, err := ProcessDebtsLoans(txs, "EUR")
	if err != nil {
		t.Fatalf("ProcessDebtsLoans failed: %v", err)
	}

	if len(result.Entries) != 3 {
		t.Fatalf("got %d debt entries, want 3", len(result.Entries))
	}
	if result.Totals.TotalBorrowed != 10000 {
		t.Errorf("TotalBorrowed = %v, want 10000", result.Totals.TotalBorrowed)
	}
	if result.Totals.TotalRepaid != 2000 {
		t.Errorf("TotalRepaid = %v, want 2000", result.Totals.TotalRepaid)
	}
	if result.Totals.OutstandingChange != 8000 {
		t.Errorf("OutstandingChange = %v, want 8000", result.Totals.OutstandingChange)
	}
	if result.Totals.MonthlyObligation != 1000 {
		t.Errorf("MonthlyObligation = %v, want 1000 across two repayment months", result.Totals.MonthlyObligation)
	}
	if !hasAlert(result.Alerts, "growing_debt") {
		t.Errorf("want growing_debt alert, got %+v", result.Alerts)
	}
}
