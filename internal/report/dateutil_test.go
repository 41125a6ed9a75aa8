package report

import (
	"testing"
	"time"
)

func TestBucketKeys(t *testing.T) {
	d := day("2024-01-05")

	if got := DayKey(d); got != "2024-01-05" {
		t.Errorf("DayKey = %q", got)
	}
	if got := MonthKey(d); got != "2024-01" {
		t.Errorf("MonthKey = %q", got)
	}
	if got := WeekKey(d); got != "2024-W01" {
		t.Errorf("WeekKey = %q, want 2024-W01", got)
	}

	// ISO weeks can belong to the neighboring year.
	if got := WeekKey(day("2023-01-01")); got != "2022-W52" {
		t.Errorf("WeekKey(2023-01-01) = %q, want 2022-W52", got)
	}

	var zero Transaction
	if got := DayKey(zero.Date); got != UnknownBucket {
		t.Errorf("zero date DayKey = %q, want %q", got, UnknownBucket)
	}
}

func TestQuarterOf(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2024-01-15", 1}, {"2024-03-31", 1}, {"2024-04-01", 2},
		{"2024-07-20", 3}, {"2024-12-31", 4},
	}
	for _, tt := range tests {
		if got := quarterOf(day(tt.date)); got != tt.want {
			t.Errorf("quarterOf(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}
}

func TestSortedKeysUnknownLast(t *testing.T) {
	m := map[string]int{
		UnknownBucket: 1,
		"2024-03":     1,
		"2024-01":     1,
	}
	got := sortedKeys(m)
	want := []string{"2024-01", "2024-03", UnknownBucket}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sortedKeys = %v, want %v", got, want)
		}
	}
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2024, time.May, 14, 16, 45, 12, 99, time.UTC)
	got := startOfDay(in)
	want := time.Date(2024, time.May, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("startOfDay(%v) = %v, want %v", in, got, want)
	}
	if got.Location() != in.Location() {
		t.Errorf("startOfDay changed location to %v", got.Location())
	}
}

func TestEndOfMonth(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2024-02-01", "2024-02-29"}, // leap year
		{"2023-02-10", "2023-02-28"},
		{"2024-12-05", "2024-12-31"},
	}
	for _, tt := range tests {
		if got := DayKey(endOfMonth(day(tt.in))); got != tt.want {
			t.Errorf("endOfMonth(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
