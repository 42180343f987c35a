package domain

import "time"

// DefaultDecimalPlaces is used when the backend omits a currency's precision.
const DefaultDecimalPlaces = 2

// Currency represents a display currency offered to the admin UI.
type Currency struct {
	Code          string `json:"code"`          // e.g., "USD"
	Symbol        string `json:"symbol"`        // e.g., "$"
	Name          string `json:"name"`          // e.g., "US Dollar"
	DecimalPlaces int    `json:"decimalPlaces"` // rounding and display precision, >= 0
}

// ExchangeRateSnapshot holds all rates relative to a single base currency.
// The base itself is never stored in Rates; rate(base->base) is implicitly 1.
// Snapshots are replaced wholesale on refresh, never merged.
type ExchangeRateSnapshot struct {
	BaseCurrency string             `json:"baseCurrency"`
	Rates        map[string]float64 `json:"rates"`
	LastUpdated  time.Time          `json:"lastUpdated"`
}

// Clone returns a deep copy so callers cannot mutate the cached snapshot.
func (s *ExchangeRateSnapshot) Clone() *ExchangeRateSnapshot {
	if s == nil {
		return nil
	}
	rates := make(map[string]float64, len(s.Rates))
	for code, rate := range s.Rates {
		rates[code] = rate
	}
	return &ExchangeRateSnapshot{
		BaseCurrency: s.BaseCurrency,
		Rates:        rates,
		LastUpdated:  s.LastUpdated,
	}
}

// FallbackCurrencies is the built-in currency list used when the backend
// cannot be reached, so the UI is never left without a currency selector.
func FallbackCurrencies() []Currency {
	return []Currency{
		{Code: "USD", Symbol: "$", Name: "US Dollar", DecimalPlaces: 2},
		{Code: "EUR", Symbol: "€", Name: "Euro", DecimalPlaces: 2},
		{Code: "GBP", Symbol: "£", Name: "British Pound", DecimalPlaces: 2},
		{Code: "JPY", Symbol: "¥", Name: "Japanese Yen", DecimalPlaces: 0},
		{Code: "AED", Symbol: "د.إ", Name: "UAE Dirham", DecimalPlaces: 2},
		{Code: "SAR", Symbol: "﷼", Name: "Saudi Riyal", DecimalPlaces: 2},
	}
}

// BuiltinRates returns a static snapshot for the given base currency.
// It is the last-resort rate source when both the backend and the persisted
// cache are unavailable. Only the three major bases are covered; any other
// base returns nil.
func BuiltinRates(base string) *ExchangeRateSnapshot {
	var rates map[string]float64
	switch base {
	case "USD":
		rates = map[string]float64{"EUR": 0.92, "GBP": 0.79, "JPY": 149.50, "AED": 3.67, "SAR": 3.75}
	case "EUR":
		rates = map[string]float64{"USD": 1.09, "GBP": 0.86, "JPY": 162.80, "AED": 4.00, "SAR": 4.08}
	case "GBP":
		rates = map[string]float64{"USD": 1.27, "EUR": 1.16, "JPY": 189.60, "AED": 4.66, "SAR": 4.76}
	default:
		return nil
	}
	return &ExchangeRateSnapshot{BaseCurrency: base, Rates: rates}
}
