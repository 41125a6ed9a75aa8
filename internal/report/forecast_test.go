package report

import (
	"testing"
	"time"
)

func TestProcessForecasting_AnchorsToLatestTransaction(t *testing.T) {
	// Data entirely from 2023; forecasts must anchor there, not today.
	txs := []Transaction{
		tx("2023-06-01", "Payment", 1000, "Income"),
		tx("2023-06-10", "Rent", -500, "Rent"),
		tx("2023-06-15", "Payment", 1100, "Income"),
	}

	result, err := ProcessForecasting(txs, "EUR")
	if err != nil {
		t.Fatalf("ProcessForecasting failed: %v", err)
	}

	if result.Anchor != "2023-06-15" {
		t.Errorf("Anchor = %q, want 2023-06-15", result.Anchor)
	}
	if got := result.ShortTerm.Forecast[0].Period; got != "2023-06-16" {
		t.Errorf("first short-term forecast period = %q, want 2023-06-16", got)
	}
	if got := result.LongTerm.Forecast[0].Period; got != "2023-07" {
		t.Errorf("first long-term forecast period = %q, want 2023-07", got)
	}
}

func TestProcessForecasting_LongTermMonthsDistinct(t *testing.T) {
	// A month-end anchor must still yield twelve consecutive months
	// starting with the month after the anchor, without skipping short
	// months or doubling up.
	txs := []Transaction{
		tx("2023-12-15", "Payment", 1000, "Income"),
		tx("2024-01-31", "Rent", -500, "Rent"),
	}

	result, err := ProcessForecasting(txs, "EUR")
	if err != nil {
		t.Fatalf("ProcessForecasting failed: %v", err)
	}

	if got := len(result.LongTerm.Forecast); got != 12 {
		t.Fatalf("got %d long-term points, want 12", got)
	}
	for i, p := range result.LongTerm.Forecast {
		want := time.Date(2024, time.February+time.Month(i), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
		if p.Period != want {
			t.Errorf("long-term point %d period = %q, want %q", i, p.Period, want)
		}
	}
}

func TestProcessForecasting_Reproducible(t *testing.T) {
	txs := []Transaction{
		tx("2023-01-05", "Payment", 800, "Income"),
		tx("2023-02-05", "Payment", 900, "Income"),
		tx("2023-02-20", "Hosting", -100, "Software"),
	}

	first, err := ProcessForecasting(txs, "EUR")
	if err != nil {
		t.Fatal(err)
	}
	second, err := ProcessForecasting(txs, "EUR")
	if err != nil {
		t.Fatal(err)
	}

	if len(first.LongTerm.Forecast) != len(second.LongTerm.Forecast) {
		t.Fatal("runs produced different forecast lengths")
	}
	for i := range first.LongTerm.Forecast {
		if first.LongTerm.Forecast[i] != second.LongTerm.Forecast[i] {
			t.Fatalf("long-term point %d differs between runs", i)
		}
	}
}

func TestProcessForecasting_ConfidenceDecay(t *testing.T) {
	txs := []Transaction{
		tx("2024-01-01", "Payment", 1000, "Income"),
		tx("2024-01-02", "Payment", 1000, "Income"),
	}

	result, err := ProcessForecasting(txs, "EUR")
	if err != nil {
		t.Fatalf("ProcessForecasting failed: %v", err)
	}

	checkDecay := func(name string, hf *HorizonForecast, floor float64, steps int) {
		t.Helper()
		if hf == nil {
			t.Fatalf("%s horizon missing", name)
		}
		if len(hf.Forecast) != steps {
			t.Fatalf("%s has %d steps, want %d", name, len(hf.Forecast), steps)
		}
		prev := 1.0
		for i, p := range hf.Forecast {
			if p.Confidence > prev {
				t.Errorf("%s confidence increased at step %d: %v > %v", name, i, p.Confidence, prev)
			}
			if p.Confidence < floor {
				t.Errorf("%s confidence %v below floor %v at step %d", name, p.Confidence, floor, i)
			}
			prev = p.Confidence
		}
	}

	checkDecay("shortTerm", result.ShortTerm, 0.6, 30)
	checkDecay("mediumTerm", result.MediumTerm, 0.4, 13)
	checkDecay("longTerm", result.LongTerm, 0.2, 12)
}

func TestProcessForecasting_TrendExtrapolation(t *testing.T) {
	// Two monthly buckets, income rising 10%: the long-term forecast
	// scales that trend by step fraction, so the final step applies the
	// full +10%.
	txs := []Transaction{
		tx("2024-01-15", "Payment", 1000, "Income"),
		tx("2024-02-15", "Payment", 1100, "Income"),
	}

	result, err := ProcessForecasting(txs, "EUR")
	if err != nil {
		t.Fatalf("ProcessForecasting failed: %v", err)
	}

	long := result.LongTerm
	if long.IncomeTrend != 10 {
		t.Fatalf("IncomeTrend = %v, want 10", long.IncomeTrend)
	}
	if long.Direction != "increasing" {
		t.Errorf("Direction = %q, want increasing", long.Direction)
	}

	last := long.Forecast[len(long.Forecast)-1]
	if want := 1100 * 1.10; !almostEqual(last.Income, want) {
		t.Errorf("final step income = %v, want %v", last.Income, want)
	}
	mid := long.Forecast[5] // step 6 of 12: half the trend applied
	if want := 1100 * 1.05; !almostEqual(mid.Income, want) {
		t.Errorf("step 6 income = %v, want %v", mid.Income, want)
	}
}

func TestProcessForecasting_FallbackForUndatedData(t *testing.T) {
	txs := []Transaction{
		{Description: "Undated payment", Amount: 500},
		{Description: "Undated cost", Amount: -200},
	}

	result, err := ProcessForecasting(txs, "EUR")
	if err != nil {
		t.Fatalf("ProcessForecasting failed: %v", err)
	}

	if result.ShortTerm == nil || len(result.ShortTerm.Forecast) == 0 {
		t.Fatal("fallback must still produce a forecast")
	}
	if !result.ShortTerm.UsingFallback {
		t.Error("expected fallback flag for window without dated buckets")
	}
	p := result.ShortTerm.Forecast[0]
	if p.Income != 500 || p.Expense != 200 {
		t.Errorf("fallback baseline = income %v expense %v, want 500 / 200", p.Income, p.Expense)
	}
}

func TestComputeSeasonality(t *testing.T) {
	txs := []Transaction{
		tx("2024-01-07", "Payment", 100, ""),  // January, Sunday, Q1
		tx("2024-01-14", "Payment", 300, ""),  // January, Sunday, Q1
		tx("2024-07-03", "Expense", -400, ""), // July, Wednesday, Q3
	}

	s := computeSeasonality(txs)

	if s.Monthly[0] != 200 { // avg |100|,|300|
		t.Errorf("January average = %v, want 200", s.Monthly[0])
	}
	if s.Monthly[6] != 400 {
		t.Errorf("July average = %v, want 400", s.Monthly[6])
	}
	if s.Quarterly[0] != 200 || s.Quarterly[2] != 400 {
		t.Errorf("quarterly averages = %v, want Q1 200 and Q3 400", s.Quarterly)
	}
	if s.Weekday[0] != 200 { // both January dates are Sundays
		t.Errorf("Sunday average = %v, want 200", s.Weekday[0])
	}
	if s.Weekday[3] != 400 {
		t.Errorf("Wednesday average = %v, want 400", s.Weekday[3])
	}
}

func TestCategoryTrends(t *testing.T) {
	txs := []Transaction{
		tx("2024-01-10", "Ads", -100, "Marketing"),
		tx("2024-02-10", "Ads", -200, "Marketing"),
		tx("2024-02-11", "Stationery", -50, "Office"),
	}

	trends := categoryTrends(txs)
	if len(trends) != 2 {
		t.Fatalf("got %d category trends, want 2", len(trends))
	}
	// Sorted by total descending.
	if trends[0].Category != "Marketing" || trends[0].Total != 300 {
		t.Errorf("top category = %+v, want Marketing with total 300", trends[0])
	}
	if trends[0].Trend != "increasing" {
		t.Errorf("Marketing trend = %q, want increasing", trends[0].Trend)
	}
	if trends[0].MonthlyAvg != 150 {
		t.Errorf("Marketing monthly average = %v, want 150", trends[0].MonthlyAvg)
	}
}

func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
