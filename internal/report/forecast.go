package report

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// PeriodAggregate is one historical bucket of income/expense activity.
type PeriodAggregate struct {
	Period  string  `json:"period"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

// ForecastPoint is one extrapolated future period. Confidence is in
// [0,1] and never increases with forecast distance.
type ForecastPoint struct {
	Period     string  `json:"period"`
	Income     float64 `json:"income"`
	Expense    float64 `json:"expense"`
	Net        float64 `json:"net"`
	Confidence float64 `json:"confidence"`
}

// HorizonForecast bundles one horizon's history and extrapolation.
type HorizonForecast struct {
	Horizon       string            `json:"horizon"`
	Historical    []PeriodAggregate `json:"historical"`
	Forecast      []ForecastPoint   `json:"forecast"`
	IncomeTrend   float64           `json:"incomeTrendPct"`
	ExpenseTrend  float64           `json:"expenseTrendPct"`
	Direction     string            `json:"direction"`
	UsingFallback bool              `json:"usingFallback"`
}

// Seasonality holds average absolute activity per calendar bucket. The
// slices are indexed by month-of-year (0-11), quarter (0-3 for Q1-Q4) and
// day-of-week (0=Sunday). Purely descriptive; not fed back into the
// extrapolation.
type Seasonality struct {
	Monthly   []float64 `json:"monthly"`
	Quarterly []float64 `json:"quarterly"`
	Weekday   []float64 `json:"weekday"`
}

// CategoryTrend summarizes spend behavior of one expense category.
type CategoryTrend struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	MonthlyAvg float64 `json:"monthlyAvg"`
	Trend      string  `json:"trend"`
}

// ForecastingResult is the output of the forecasting module.
type ForecastingResult struct {
	Currency        string           `json:"currency"`
	Anchor          string           `json:"anchor"` // latest transaction date
	ShortTerm       *HorizonForecast `json:"shortTerm"`
	MediumTerm      *HorizonForecast `json:"mediumTerm"`
	LongTerm        *HorizonForecast `json:"longTerm"`
	Seasonality     Seasonality      `json:"seasonality"`
	Categories      []CategoryTrend  `json:"categories"`
	Alerts          []Alert          `json:"alerts"`
	Highlights      []Highlight      `json:"highlights"`
	Recommendations []string         `json:"recommendations"`
}

// Horizon parameters. Confidence decays linearly per step down to a
// floor; the wider the horizon, the faster the decay and the lower the
// floor.
type horizonSpec struct {
	name            string
	windowDays      int
	steps           int
	bucket          func(time.Time) string
	nextPeriod      func(anchor time.Time, step int) string
	confidenceDecay float64
	confidenceFloor float64
}

var horizons = []horizonSpec{
	{
		name: "shortTerm", windowDays: 30, steps: 30,
		bucket:          DayKey,
		nextPeriod:      func(a time.Time, i int) string { return DayKey(a.AddDate(0, 0, i)) },
		confidenceDecay: 0.01, confidenceFloor: 0.6,
	},
	{
		name: "mediumTerm", windowDays: 90, steps: 13,
		bucket:          WeekKey,
		nextPeriod:      func(a time.Time, i int) string { return WeekKey(a.AddDate(0, 0, 7*i)) },
		confidenceDecay: 0.05, confidenceFloor: 0.4,
	},
	{
		name: "longTerm", windowDays: 365, steps: 12,
		bucket: MonthKey,
		// Step from the first of the anchor's month so a late-month
		// anchor cannot normalize into skipped or duplicated months.
		nextPeriod: func(a time.Time, i int) string {
			return MonthKey(time.Date(a.Year(), a.Month()+time.Month(i), 1, 0, 0, 0, 0, a.Location()))
		},
		confidenceDecay: 0.1, confidenceFloor: 0.2,
	},
}

// ProcessForecasting derives historical aggregates and trend-extrapolated
// forecasts at three horizons. All windows anchor to the latest
// transaction date in the dataset rather than the wall clock, so the same
// dataset always produces the same forecast.
func ProcessForecasting(txs []Transaction, currency string) (*ForecastingResult, error) {
	txs = skipZero("forecasting", txs)

	result := &ForecastingResult{
		Currency:        currencyOrDefault(currency),
		Categories:      []CategoryTrend{},
		Alerts:          []Alert{},
		Highlights:      []Highlight{},
		Recommendations: []string{},
	}

	anchor := latestDate(txs)
	if anchor.IsZero() && len(txs) > 0 {
		// No usable dates at all; anchor to today so the fallback
		// baseline still yields a forecast.
		anchor = time.Now()
	}
	result.Anchor = DayKey(anchor)

	for i := range horizons {
		hf := forecastHorizon(txs, anchor, horizons[i])
		switch horizons[i].name {
		case "shortTerm":
			result.ShortTerm = hf
		case "mediumTerm":
			result.MediumTerm = hf
		case "longTerm":
			result.LongTerm = hf
		}
	}

	result.Seasonality = computeSeasonality(txs)
	result.Categories = categoryTrends(txs)

	if result.ShortTerm != nil && len(result.ShortTerm.Forecast) > 0 {
		last := result.ShortTerm.Forecast[len(result.ShortTerm.Forecast)-1]
		if last.Net < 0 {
			result.Alerts = append(result.Alerts, Alert{
				Type:     "projected_deficit",
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("Short-term forecast projects a net deficit of %.2f %s", last.Net, result.Currency),
			})
			result.Recommendations = append(result.Recommendations,
				"Projected short-term deficit; defer discretionary spend or accelerate receivables")
		}
	}
	if result.LongTerm != nil && result.LongTerm.Direction == "decreasing" {
		result.Alerts = append(result.Alerts, Alert{
			Type:     "declining_trend",
			Severity: SeverityMedium,
			Message:  "Long-term income trend is decreasing",
		})
	}
	if result.LongTerm != nil && result.LongTerm.Direction == "increasing" {
		result.Highlights = append(result.Highlights, Highlight{
			Type:    "positive",
			Message: "Income trend is increasing over the long-term window",
		})
	}

	return result, nil
}

// forecastHorizon buckets the historical window at the horizon's
// granularity and extrapolates each future step from the most recent
// bucket, scaling the latest period-over-period trend by the step's
// fraction of the horizon. A window with no activity falls back to the
// whole-dataset average so sparse data still yields a forecast.
func forecastHorizon(txs []Transaction, anchor time.Time, spec horizonSpec) *HorizonForecast {
	hf := &HorizonForecast{
		Horizon:    spec.name,
		Historical: []PeriodAggregate{},
		Forecast:   []ForecastPoint{},
	}

	var window []Transaction
	if !anchor.IsZero() {
		cutoff := anchor.AddDate(0, 0, -spec.windowDays)
		for _, tx := range txs {
			if tx.Date.After(cutoff) && !tx.Date.After(anchor) {
				window = append(window, tx)
			}
		}
	}
	hf.Historical = aggregateByPeriod(window, spec.bucket)

	var baseIncome, baseExpense float64
	if len(hf.Historical) == 0 {
		// Whole-dataset average, not just the window.
		hf.UsingFallback = true
		all := aggregateByPeriod(txs, spec.bucket)
		for _, p := range all {
			baseIncome += p.Income
			baseExpense += p.Expense
		}
		if len(all) > 0 {
			baseIncome /= float64(len(all))
			baseExpense /= float64(len(all))
		} else {
			// Dataset has no usable dates; treat it as one period.
			for _, tx := range txs {
				if tx.Amount > 0 {
					baseIncome += tx.Amount
				} else {
					baseExpense += -tx.Amount
				}
			}
		}
	} else {
		last := hf.Historical[len(hf.Historical)-1]
		baseIncome, baseExpense = last.Income, last.Expense
		if len(hf.Historical) >= 2 {
			prev := hf.Historical[len(hf.Historical)-2]
			hf.IncomeTrend = percentChange(prev.Income, last.Income)
			hf.ExpenseTrend = percentChange(prev.Expense, last.Expense)
		}
	}
	hf.Direction = trendDirection(hf.IncomeTrend)

	if anchor.IsZero() {
		return hf
	}

	for i := 1; i <= spec.steps; i++ {
		fraction := float64(i) / float64(spec.steps)
		point := ForecastPoint{
			Period:     spec.nextPeriod(anchor, i),
			Income:     baseIncome * (1 + hf.IncomeTrend/100*fraction),
			Expense:    baseExpense * (1 + hf.ExpenseTrend/100*fraction),
			Confidence: math.Max(spec.confidenceFloor, 1-spec.confidenceDecay*float64(i)),
		}
		point.Net = point.Income - point.Expense
		hf.Forecast = append(hf.Forecast, point)
	}

	return hf
}

// aggregateByPeriod groups transactions into {income, expense, net}
// buckets keyed by the supplied truncation and returns them in
// chronological order.
func aggregateByPeriod(txs []Transaction, bucket func(time.Time) string) []PeriodAggregate {
	byPeriod := make(map[string]*PeriodAggregate)
	for _, tx := range txs {
		key := bucket(tx.Date)
		if key == UnknownBucket {
			continue
		}
		agg, ok := byPeriod[key]
		if !ok {
			agg = &PeriodAggregate{Period: key}
			byPeriod[key] = agg
		}
		if tx.Amount > 0 {
			agg.Income += tx.Amount
		} else {
			agg.Expense += -tx.Amount
		}
		agg.Net = agg.Income - agg.Expense
	}

	out := make([]PeriodAggregate, 0, len(byPeriod))
	for _, key := range sortedKeys(byPeriod) {
		out = append(out, *byPeriod[key])
	}
	return out
}

// computeSeasonality averages absolute activity by month-of-year,
// calendar quarter and day-of-week.
func computeSeasonality(txs []Transaction) Seasonality {
	s := Seasonality{
		Monthly:   make([]float64, 12),
		Quarterly: make([]float64, 4),
		Weekday:   make([]float64, 7),
	}
	monthN := make([]int, 12)
	quarterN := make([]int, 4)
	weekdayN := make([]int, 7)

	for _, tx := range txs {
		if tx.Date.IsZero() {
			continue
		}
		abs := math.Abs(tx.Amount)
		m := int(tx.Date.Month()) - 1
		q := quarterOf(tx.Date) - 1
		w := int(tx.Date.Weekday())
		s.Monthly[m] += abs
		monthN[m]++
		s.Quarterly[q] += abs
		quarterN[q]++
		s.Weekday[w] += abs
		weekdayN[w]++
	}
	for i := range s.Monthly {
		if monthN[i] > 0 {
			s.Monthly[i] /= float64(monthN[i])
		}
	}
	for i := range s.Quarterly {
		if quarterN[i] > 0 {
			s.Quarterly[i] /= float64(quarterN[i])
		}
	}
	for i := range s.Weekday {
		if weekdayN[i] > 0 {
			s.Weekday[i] /= float64(weekdayN[i])
		}
	}
	return s
}

// categoryTrends summarizes expense categories: total spend, average per
// active month and the direction between the two most recent months.
func categoryTrends(txs []Transaction) []CategoryTrend {
	type catMonths struct {
		total  float64
		months map[string]float64
	}
	byCat := make(map[string]*catMonths)
	for _, tx := range txs {
		if tx.Amount >= 0 {
			continue
		}
		category := tx.Category
		if category == "" {
			category = "Other"
		}
		cm, ok := byCat[category]
		if !ok {
			cm = &catMonths{months: make(map[string]float64)}
			byCat[category] = cm
		}
		cm.total += -tx.Amount
		cm.months[MonthKey(tx.Date)] += -tx.Amount
	}

	out := make([]CategoryTrend, 0, len(byCat))
	for category, cm := range byCat {
		ct := CategoryTrend{Category: category, Total: cm.total, Trend: "stable"}
		if n := len(cm.months); n > 0 {
			ct.MonthlyAvg = cm.total / float64(n)
		}
		months := sortedKeys(cm.months)
		if len(months) >= 2 {
			prev := cm.months[months[len(months)-2]]
			cur := cm.months[months[len(months)-1]]
			ct.Trend = trendDirection(percentChange(prev, cur))
		}
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}
