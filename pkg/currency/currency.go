// Package currency holds the static exchange-rate table used by the storefront
// and the checkout relay, plus per-currency display formatting.
//
// Prices are authored in the reference currency (USD). Rates are fixed
// configuration; there is no live feed and no staleness handling.
package currency

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Supported currency codes.
const (
	USD = "USD"
	CZK = "CZK"
	EUR = "EUR"
	PHP = "PHP"
)

// Reference is the currency every price is authored in.
const Reference = USD

// DisplayDefault is the currency shown on cart pages before the shopper picks one.
const DisplayDefault = CZK

// Info describes one supported currency.
type Info struct {
	Code   string
	Rate   decimal.Decimal
	Symbol string
	Locale language.Tag
	// SymbolAfter places the symbol after the number, separated by a no-break space.
	SymbolAfter bool
	// WholeUnits rounds displayed amounts to the nearest whole unit.
	WholeUnits bool
}

var (
	order = []string{USD, CZK, EUR, PHP}
	table = map[string]Info{
		USD: {Code: USD, Rate: decimal.NewFromInt(1), Symbol: "$", Locale: language.AmericanEnglish},
		CZK: {Code: CZK, Rate: decimal.NewFromInt(24), Symbol: "Kč", Locale: language.MustParse("cs-CZ"), SymbolAfter: true},
		EUR: {Code: EUR, Rate: decimal.RequireFromString("0.95"), Symbol: "€", Locale: language.MustParse("de-DE"), SymbolAfter: true},
		PHP: {Code: PHP, Rate: decimal.NewFromInt(58), Symbol: "₱", Locale: language.MustParse("en-PH"), WholeUnits: true},
	}
)

// ErrAmountOutOfRange is returned when a minor-unit amount does not fit in an int64.
var ErrAmountOutOfRange = errors.New("currency: amount out of range")

var (
	hundred  = decimal.NewFromInt(100)
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// Supported returns the supported codes in display order.
func Supported() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Lookup returns the table entry for code, matched case-insensitively.
func Lookup(code string) (Info, bool) {
	info, ok := table[strings.ToUpper(strings.TrimSpace(code))]
	return info, ok
}

// IsSupported reports whether code is in the rate table.
func IsSupported(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// Normalize upper-cases code and maps an empty value to Reference.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Reference
	}
	return code
}

// Rate returns the multiplier against the reference currency. Unknown codes
// get 1 so the amount passes through unconverted.
func Rate(code string) decimal.Decimal {
	if info, ok := Lookup(code); ok {
		return info.Rate
	}
	return decimal.NewFromInt(1)
}

// Convert multiplies a reference-currency amount by the rate for code.
func Convert(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Mul(Rate(code))
}

// ToMinorUnits converts a reference-currency amount into code and returns it
// in hundredths, rounded half away from zero. Results outside the int64 range
// return ErrAmountOutOfRange.
func ToMinorUnits(amount decimal.Decimal, code string) (int64, error) {
	minor := Convert(amount, code).Mul(hundred).Round(0)
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return 0, ErrAmountOutOfRange
	}
	return minor.IntPart(), nil
}

// Format renders an amount already expressed in code using that currency's
// locale: two decimals, locale grouping and symbol placement. Whole-unit
// currencies are rounded first and shown without decimals. Unknown codes are
// rendered en-US with the code as a suffix.
func Format(amount decimal.Decimal, code string) string {
	info, ok := Lookup(code)
	if !ok {
		return formatNumber(language.AmericanEnglish, amount, 2) + " " + Normalize(code)
	}

	scale := 2
	if info.WholeUnits {
		amount = amount.Round(0)
		scale = 0
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	num := formatNumber(info.Locale, amount, scale)
	if info.SymbolAfter {
		return sign + num + " " + info.Symbol
	}
	return sign + info.Symbol + num
}

// FormatReference converts a reference-currency amount into code and formats it.
func FormatReference(amount decimal.Decimal, code string) string {
	return Format(Convert(amount, code), code)
}

// formatNumber renders amount with scale decimals using tag's grouping and
// decimal marks. Digits come from the decimal itself so large amounts stay exact.
func formatNumber(tag language.Tag, amount decimal.Decimal, scale int) string {
	group, mark := separators(tag)

	rounded := amount.Round(int32(scale))
	whole, frac, _ := strings.Cut(rounded.Abs().StringFixed(int32(scale)), ".")

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(group)
		}
		b.WriteRune(digit)
	}
	if frac != "" {
		b.WriteString(mark)
		b.WriteString(frac)
	}
	return b.String()
}

// separators reads the grouping and decimal marks off a sample rendered by
// x/text, e.g. "1,234,567.5" or "1.234.567,5".
func separators(tag language.Tag) (group, mark string) {
	sample := []rune(message.NewPrinter(tag).Sprint(number.Decimal(1234567.5, number.Scale(1))))
	return string(sample[1]), string(sample[len(sample)-2])
}
