// Package currency converts and formats amounts in the two supported
// currencies. The exchange rate is a fixed constant.
package currency

import (
	"errors"
	"fmt"
	"strings"
)

// Code is an ISO 4217 currency code supported by the tracker.
type Code string

const (
	UYU Code = "UYU"
	USD Code = "USD"
)

// Reporting is the currency every aggregate is expressed in.
const Reporting = UYU

// ExchangeRate is the number of UYU per USD.
const ExchangeRate = 40.0

// ErrInvalidCurrency is returned for any code other than UYU or USD.
var ErrInvalidCurrency = errors.New("invalid currency")

// Valid reports whether c is a supported code.
func (c Code) Valid() bool {
	return c == UYU || c == USD
}

// Parse accepts a currency code in any case, surrounded by optional spaces.
func Parse(s string) (Code, error) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("Parse: %q: %w", s, ErrInvalidCurrency)
	}
	return c, nil
}

// Convert converts amount from one currency to another. Amounts are not
// rounded; rounding only happens in Format.
func Convert(amount float64, from, to Code) (float64, error) {
	if !from.Valid() {
		return 0, fmt.Errorf("Convert: source %q: %w", from, ErrInvalidCurrency)
	}
	if !to.Valid() {
		return 0, fmt.Errorf("Convert: target %q: %w", to, ErrInvalidCurrency)
	}
	if from == to {
		return amount, nil
	}
	if from == USD {
		return amount * ExchangeRate, nil
	}
	return amount / ExchangeRate, nil
}

// MustConvert is Convert for codes already known to be valid.
func MustConvert(amount float64, from, to Code) float64 {
	v, err := Convert(amount, from, to)
	if err != nil {
		panic(err)
	}
	return v
}
