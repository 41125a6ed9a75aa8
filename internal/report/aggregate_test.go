package report

import (
	"encoding/json"
	"testing"
)

func TestGenerate_AllSectionsPresent(t *testing.T) {
	txs := []Transaction{
		tx("2024-01-05", "Client Payment", 2500, "Income"),
		tx("2024-01-06", "Office Supplies", -150, "Office"),
		tx("2024-01-10", "VAT payment", -238, ""),
		tx("2024-01-12", "Loan repayment", -500, ""),
	}

	r := Generate(txs, Options{Currency: "EUR"})

	if r.Sections.ExecutiveSummary == nil {
		t.Fatal("executive summary missing")
	}
	if r.Sections.CashflowAnalysis == nil || r.Sections.BudgetAnalysis == nil ||
		r.Sections.AssetsLiabilities == nil || r.Sections.DebtsLoans == nil ||
		r.Sections.TaxesVAT == nil || r.Sections.Forecasting == nil ||
		r.Sections.Ledger == nil || r.Sections.ProfitLoss == nil {
		t.Fatal("expected every section to be populated")
	}

	summary := r.Sections.ExecutiveSummary
	if summary.NetCashflow != r.Sections.CashflowAnalysis.Totals.NetCashflow {
		t.Errorf("summary net cashflow %v != cashflow section %v",
			summary.NetCashflow, r.Sections.CashflowAnalysis.Totals.NetCashflow)
	}
	if r.Metadata.Version != Version {
		t.Errorf("version = %q, want %q", r.Metadata.Version, Version)
	}
	if len(r.Metadata.DataSources) == 0 {
		t.Error("dataSources should default when unset")
	}
}

func TestGenerate_Confidence(t *testing.T) {
	r := Generate([]Transaction{tx("2024-01-05", "Payment", 100, "Income")}, Options{})

	// Unweighted mean of the six per-module constants.
	want := (ConfidenceCashflow + ConfidenceBudget + ConfidenceAssetsLiabilities +
		ConfidenceDebtsLoans + ConfidenceTaxesVAT + ConfidenceForecasting) / 6
	if !almostEqual(r.Metadata.Confidence, want) {
		t.Errorf("confidence = %v, want %v", r.Metadata.Confidence, want)
	}
}

func TestGenerate_EmptyInput(t *testing.T) {
	r := Generate(nil, Options{})

	if r.Sections.CashflowAnalysis == nil {
		t.Fatal("empty input must still produce sections")
	}
	if r.Sections.CashflowAnalysis.Totals != (CashflowTotals{}) {
		t.Errorf("empty input should yield zeroed cashflow totals, got %+v",
			r.Sections.CashflowAnalysis.Totals)
	}
	if got := len(r.Sections.ExecutiveSummary.Alerts); got != 0 {
		t.Errorf("empty input produced %d module error alerts", got)
	}
}

func TestGenerate_DoesNotMutateInput(t *testing.T) {
	txs := []Transaction{
		tx("2024-01-05", "Payment", 2500, "Income"),
		tx("2024-01-06", "Supplies", -150, "Office"),
	}
	before := make([]Transaction, len(txs))
	copy(before, txs)

	Generate(txs, Options{})

	for i := range before {
		if txs[i] != before[i] {
			t.Errorf("input transaction %d was mutated", i)
		}
	}
}

func TestGenerate_JSONSerializable(t *testing.T) {
	r := Generate([]Transaction{
		tx("2024-01-05", "Client Payment", 2500, "Income"),
		tx("2024-01-06", "Office Supplies", -150, "Office"),
	}, Options{Currency: "EUR"})

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("report is not JSON-serializable: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	for _, key := range []string{"sections", "metadata"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("serialized report missing %q", key)
		}
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(decoded["sections"], &sections); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"executiveSummary", "cashflowAnalysis", "budgetAnalysis",
		"assetsLiabilities", "debtsLoans", "taxesVAT", "forecasting", "recommendations"} {
		if _, ok := sections[key]; !ok {
			t.Errorf("sections missing %q", key)
		}
	}
}

func TestGenerate_HealthGrading(t *testing.T) {
	t.Run("healthy data grades well", func(t *testing.T) {
		r := Generate([]Transaction{
			tx("2024-01-05", "Client Payment", 5000, "Income"),
			tx("2024-01-06", "Supplies", -100, "Office"),
		}, Options{})
		health := r.Sections.ExecutiveSummary.OverallHealth
		if health != "excellent" && health != "good" {
			t.Errorf("health = %q for healthy data, want excellent or good", health)
		}
	})

	t.Run("distressed data grades poorly", func(t *testing.T) {
		r := Generate([]Transaction{
			tx("2020-01-05", "Tiny sale", 100, "Income"),
			tx("2020-01-06", "Huge loan repayment", -5000, ""),
			tx("2020-01-07", "Overdue VAT payment", -2380, ""),
			tx("2020-01-08", "Equipment loss", -3000, ""),
		}, Options{})
		health := r.Sections.ExecutiveSummary.OverallHealth
		if health != "fair" && health != "poor" {
			t.Errorf("health = %q for distressed data, want fair or poor", health)
		}
	})
}

func TestRunSection_IsolatesFailures(t *testing.T) {
	var alerts []Alert

	got := runSection("ledger", &alerts, func() (*LedgerResult, error) {
		panic("boom")
	})

	if got != nil {
		t.Error("failed section should be nil")
	}
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	if alerts[0].Type != "ledger_error" || alerts[0].Severity != SeverityHigh {
		t.Errorf("alert = %+v, want high-severity ledger_error", alerts[0])
	}
}
