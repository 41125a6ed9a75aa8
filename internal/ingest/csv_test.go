package ingest

import (
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	input := `Date,Description,Amount,Currency,Category,Vendor,VAT
2024-05-01,Client invoice payment,2500.00,EUR,Income,Acme GmbH,
2024-05-03,"Office supplies, pens",-150.00,EUR,Office,Staples,23.95
`

	txs, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("ParseCSV() returned %d transactions, want 2", len(txs))
	}

	first := txs[0]
	if first.Date != "2024-05-01" || first.Amount != 2500.00 || first.Currency != "EUR" {
		t.Errorf("first tx = %+v", first)
	}
	if first.Vendor != "Acme GmbH" {
		t.Errorf("first tx vendor = %q, want Acme GmbH", first.Vendor)
	}
	if first.TaxAmount != nil {
		t.Errorf("first tx tax = %v, want nil", *first.TaxAmount)
	}

	second := txs[1]
	if second.Description != "Office supplies, pens" {
		t.Errorf("second tx description = %q", second.Description)
	}
	if second.Amount != -150.00 {
		t.Errorf("second tx amount = %v, want -150", second.Amount)
	}
	if second.TaxAmount == nil || *second.TaxAmount != 23.95 {
		t.Errorf("second tx tax = %v, want 23.95", second.TaxAmount)
	}
}

func TestParseCSV_HeaderAliases(t *testing.T) {
	input := `Transaction Date,Narrative,Value,Payee
2024-01-15,Monthly rent,"-1,200.00",Landlord Ltd
`

	txs, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if txs[0].Amount != -1200.00 {
		t.Errorf("amount = %v, want -1200 (thousands separator)", txs[0].Amount)
	}
	if txs[0].Vendor != "Landlord Ltd" {
		t.Errorf("vendor = %q, want Landlord Ltd", txs[0].Vendor)
	}
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing amount column", "Date,Description\n2024-01-01,test\n"},
		{"bad amount value", "Date,Description,Amount\n2024-01-01,test,abc\n"},
		{"empty input", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCSV(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	input := `[{"date":"2024-05-01","description":"Invoice","amount":500,"currency":"EUR"}]`

	txs, err := ParseJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if len(txs) != 1 || txs[0].Amount != 500 {
		t.Errorf("txs = %+v", txs)
	}
}
