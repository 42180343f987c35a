// Package currencyconv converts and formats monetary amounts against a
// star-shaped rate snapshot anchored at a base currency. Every function here
// is total: bad input degrades to a safe default (usually 0 or the unchanged
// amount) with a logged warning, never a panic. The admin UI calls these on
// every keystroke and every rendered price cell, so "missing price" must
// silently become zero rather than fail.
package currencyconv

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/Noura-Darwazeh/delivery-admin-api/internal/core/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Convert converts amount from one currency code to another using the given
// snapshot. Conversion goes through the snapshot's base: divide by
// rates[from] to normalize into the base, then multiply by rates[to].
// Fail-soft rules:
//   - non-finite amount -> 0
//   - from == to -> amount unchanged, no lookup
//   - nil snapshot or empty rate table -> amount unchanged
//   - missing or zero rate for either code -> the original amount unchanged
func Convert(amount float64, fromCode, toCode string, snapshot *domain.ExchangeRateSnapshot) float64 {
	if !isFinite(amount) {
		return 0
	}
	if fromCode == toCode {
		return amount
	}
	if snapshot == nil || len(snapshot.Rates) == 0 {
		slog.Warn("currency conversion skipped: no exchange rates available",
			slog.String("from", fromCode), slog.String("to", toCode))
		return amount
	}

	converted := amount
	if fromCode != snapshot.BaseCurrency {
		rate, ok := snapshot.Rates[fromCode]
		if !ok || rate == 0 {
			slog.Warn("currency conversion skipped: no rate for source currency",
				slog.String("from", fromCode), slog.String("base", snapshot.BaseCurrency))
			return amount
		}
		converted /= rate
	}
	if toCode != snapshot.BaseCurrency {
		rate, ok := snapshot.Rates[toCode]
		if !ok {
			slog.Warn("currency conversion skipped: no rate for target currency",
				slog.String("to", toCode), slog.String("base", snapshot.BaseCurrency))
			return amount
		}
		converted *= rate
	}
	return converted
}

// Format renders amount as a localized string for the given currency: rounded
// to the currency's decimal places, grouped per the locale's rules, with the
// currency symbol prepended directly before the number. Minimum and maximum
// fraction digits are pinned to the same value so trailing zeros always show.
// A nil currency falls back to a plain two-decimal number with no symbol.
func Format(amount float64, currency *domain.Currency, locale string) string {
	if !isFinite(amount) {
		amount = 0
	}
	if currency == nil {
		return strconv.FormatFloat(Round(amount, domain.DefaultDecimalPlaces), 'f', domain.DefaultDecimalPlaces, 64)
	}

	places := currency.DecimalPlaces
	if places < 0 {
		places = domain.DefaultDecimalPlaces
	}
	rounded := Round(amount, places)

	p := message.NewPrinter(parseLocale(locale))
	formatted := p.Sprint(number.Decimal(rounded,
		number.MinFractionDigits(places),
		number.MaxFractionDigits(places),
	))
	return currency.Symbol + formatted
}

// Round rounds half away from zero to the given number of decimal places.
// Non-finite amounts round to 0.
func Round(amount float64, decimalPlaces int) float64 {
	if !isFinite(amount) {
		return 0
	}
	return decimal.NewFromFloat(amount).Round(int32(decimalPlaces)).InexactFloat64()
}

// Parse extracts a numeric value from free-form text such as "$1,234.50" by
// stripping everything that is not a digit, '.' or '-'. Unparsable input
// yields 0.
func Parse(text string) float64 {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	value, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || !isFinite(value) {
		return 0
	}
	return value
}

// ConvertAndFormat converts amount between the two codes and formats the
// result with the target currency's symbol and precision.
func ConvertAndFormat(amount float64, fromCode string, target *domain.Currency, snapshot *domain.ExchangeRateSnapshot, locale string) string {
	toCode := ""
	if target != nil {
		toCode = target.Code
	}
	return Format(Convert(amount, fromCode, toCode, snapshot), target, locale)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func parseLocale(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil || tag == language.Und {
		return language.AmericanEnglish
	}
	return tag
}
