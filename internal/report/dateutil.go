package report

import (
	"fmt"
	"sort"
	"time"
)

// UnknownBucket is the grouping key for transactions with no usable date.
const UnknownBucket = "unknown"

// DayKey truncates a date to its day bucket, YYYY-MM-DD.
func DayKey(t time.Time) string {
	if t.IsZero() {
		return UnknownBucket
	}
	return t.Format("2006-01-02")
}

// MonthKey truncates a date to its month bucket, YYYY-MM.
func MonthKey(t time.Time) string {
	if t.IsZero() {
		return UnknownBucket
	}
	return t.Format("2006-01")
}

// WeekKey truncates a date to its ISO-week bucket, YYYY-Www.
func WeekKey(t time.Time) string {
	if t.IsZero() {
		return UnknownBucket
	}
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// quarterOf returns the calendar quarter (1-4) of a date.
func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// sortedKeys returns the map's keys in lexicographic order, which for the
// bucket key formats above is also chronological order. The unknown
// bucket sorts after all real dates.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	// "unknown" happens to sort after digit-led keys, but make the
	// ordering contract explicit rather than rely on ASCII.
	for i, k := range keys {
		if k == UnknownBucket {
			keys = append(append(keys[:i], keys[i+1:]...), UnknownBucket)
			break
		}
	}
	return keys
}

// latestDate returns the most recent non-zero transaction date, or a zero
// time if none exists. Forecast windows anchor here instead of the wall
// clock so historical datasets produce reproducible output.
func latestDate(txs []Transaction) time.Time {
	var latest time.Time
	for _, tx := range txs {
		if tx.Date.After(latest) {
			latest = tx.Date
		}
	}
	return latest
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// endOfMonth returns the last day of t's month.
func endOfMonth(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}
