package currency

import (
	"math"
	"testing"
)

func TestSymbol(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"", "€"},
		{"EUR", "€"},
		{"usd", "$"},
		{"GBP", "£"},
		{"CHF", "CHF"}, // unknown codes fall back to themselves
	}
	for _, tt := range tests {
		if got := Symbol(tt.code); got != tt.want {
			t.Errorf("Symbol(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestManagerConvert(t *testing.T) {
	m := NewManager("")

	if m.Base() != "EUR" {
		t.Fatalf("Base = %q, want EUR", m.Base())
	}

	same, err := m.Convert(100, "USD", "usd")
	if err != nil || same != 100 {
		t.Errorf("same-currency conversion = %v, %v; want 100, nil", same, err)
	}

	usd, err := m.Convert(100, "EUR", "USD")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(usd-108) > 1e-9 {
		t.Errorf("100 EUR = %v USD, want 108 at the default rate", usd)
	}

	if _, err := m.Convert(100, "EUR", "XXX"); err == nil {
		t.Error("expected an error for an unknown currency")
	}
}

func TestManagerRefresh(t *testing.T) {
	m := NewManager("EUR")
	m.Refresh(map[string]float64{"USD": 2.0, "BAD": -1})

	usd, err := m.Convert(10, "EUR", "USD")
	if err != nil {
		t.Fatal(err)
	}
	if usd != 20 {
		t.Errorf("after refresh 10 EUR = %v USD, want 20", usd)
	}

	if _, err := m.Convert(1, "EUR", "BAD"); err == nil {
		t.Error("non-positive rates must be ignored on refresh")
	}

	cross, err := m.Convert(20, "USD", "GBP")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(cross-20*0.85/2.0) > 1e-9 {
		t.Errorf("cross rate = %v, want %v", cross, 20*0.85/2.0)
	}
}
