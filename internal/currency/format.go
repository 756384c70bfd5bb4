package currency

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// es-UY display conventions: dot thousands, comma decimals, symbol first.
var formatters = map[Code]*money.Formatter{
	USD: money.NewFormatter(2, ",", ".", "US$", "$ 1"),
	UYU: money.NewFormatter(0, ",", ".", "$", "$ 1"),
}

// Format renders amount for display. USD keeps two fraction digits and UYU
// none; the amount is rounded half away from zero to that precision.
func Format(amount float64, c Code) (string, error) {
	f, ok := formatters[c]
	if !ok {
		return "", fmt.Errorf("Format: %q: %w", c, ErrInvalidCurrency)
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(f.Fraction)).Round(0)
	return f.Format(minor.IntPart()), nil
}

// FormatReporting converts amount into the reporting currency and formats it.
func FormatReporting(amount float64, from Code) (string, error) {
	v, err := Convert(amount, from, Reporting)
	if err != nil {
		return "", err
	}
	return Format(v, Reporting)
}
