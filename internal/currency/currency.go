// Package currency holds the process-wide exchange-rate cache used when
// a report has to be rendered in a currency other than the transactions'.
// Rates are refreshed manually; the pipeline itself never blocks on a
// rate lookup.
package currency

import (
	"fmt"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"
)

// Symbols for the currencies the dashboard renders. Everything else
// falls back to the ISO code itself.
var symbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"JPY": "¥",
	"AED": "د.إ",
	"SAR": "﷼",
	"EGP": "E£",
}

// Built-in rates against EUR, used until the first manual refresh.
var defaultRates = map[string]float64{
	"EUR": 1.0,
	"USD": 1.08,
	"GBP": 0.85,
	"JPY": 162.0,
	"AED": 3.97,
	"SAR": 4.05,
	"EGP": 52.0,
}

// Manager caches exchange rates against a base currency. It is safe for
// concurrent use and is intended to live for the whole process.
type Manager struct {
	base  string
	rates *cache.Cache
	mu    sync.RWMutex
}

// NewManager creates a manager with EUR as base unless overridden,
// seeded with the built-in rate table.
func NewManager(base string) *Manager {
	if base == "" {
		base = "EUR"
	}
	m := &Manager{
		base:  strings.ToUpper(base),
		rates: cache.New(cache.NoExpiration, 0),
	}
	m.Refresh(defaultRates)
	return m
}

// Base returns the manager's base currency code.
func (m *Manager) Base() string {
	return m.base
}

// Refresh replaces the cached rate table. Rates are expressed as units
// of the quoted currency per one unit of the base currency.
func (m *Manager) Refresh(rates map[string]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, rate := range rates {
		if rate <= 0 {
			continue
		}
		m.rates.Set(strings.ToUpper(code), rate, cache.NoExpiration)
	}
}

// Rate returns how many units of to one unit of from buys.
func (m *Manager) Rate(from, to string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fromRate, err := m.baseRate(from)
	if err != nil {
		return 0, err
	}
	toRate, err := m.baseRate(to)
	if err != nil {
		return 0, err
	}
	return toRate / fromRate, nil
}

// Convert converts an amount between two currencies via the base.
func (m *Manager) Convert(amount float64, from, to string) (float64, error) {
	if strings.EqualFold(from, to) {
		return amount, nil
	}
	rate, err := m.Rate(from, to)
	if err != nil {
		return 0, err
	}
	return amount * rate, nil
}

func (m *Manager) baseRate(code string) (float64, error) {
	code = strings.ToUpper(code)
	if code == m.base {
		return 1, nil
	}
	if v, ok := m.rates.Get(code); ok {
		return v.(float64), nil
	}
	return 0, fmt.Errorf("currency: no rate for %s", code)
}

// Symbol returns the display symbol for a currency code, defaulting to
// the euro sign when the code is empty and to the code itself when the
// symbol is unknown.
func Symbol(code string) string {
	if code == "" {
		return symbols["EUR"]
	}
	if s, ok := symbols[strings.ToUpper(code)]; ok {
		return s
	}
	return strings.ToUpper(code)
}
