package currency

import (
	"errors"
	"math"
	"testing"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		from   Code
		to     Code
		want   float64
	}{
		{"usd to uyu", 100, USD, UYU, 4000},
		{"uyu to usd", 4000, UYU, USD, 100},
		{"same currency uyu", 1234.5, UYU, UYU, 1234.5},
		{"same currency usd", 0.01, USD, USD, 0.01},
		{"no rounding", 1, UYU, USD, 0.025},
		{"negative", -10, USD, UYU, -400},
		{"zero", 0, USD, UYU, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.amount, tt.from, tt.to)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Convert(%v, %s, %s) = %v, want %v", tt.amount, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestConvert_InvalidCurrency(t *testing.T) {
	tests := []struct {
		name string
		from Code
		to   Code
	}{
		{"bad source", "EUR", UYU},
		{"bad target", USD, "GBP"},
		{"empty", "", UYU},
		{"lowercase is not normalized", "usd", UYU},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(1, tt.from, tt.to)
			if !errors.Is(err, ErrInvalidCurrency) {
				t.Errorf("Convert() error = %v, want ErrInvalidCurrency", err)
			}
		})
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	for _, x := range []float64{0, 1, 3.33, 1500, 123456.78, 0.001} {
		usd, err := Convert(x, UYU, USD)
		if err != nil {
			t.Fatal(err)
		}
		back, err := Convert(usd, USD, UYU)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(back-x) > 1e-9 {
			t.Errorf("round trip of %v gave %v", x, back)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Code
		wantErr bool
	}{
		{"UYU", UYU, false},
		{" usd ", USD, false},
		{"Usd", USD, false},
		{"EUR", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		code   Code
		want   string
	}{
		{"usd two decimals", 1234.5, USD, "US$ 1.234,50"},
		{"usd small", 0.3, USD, "US$ 0,30"},
		{"usd zero", 0, USD, "US$ 0,00"},
		{"uyu no decimals", 1234.5, UYU, "$ 1.235"},
		{"uyu millions", 1500000, UYU, "$ 1.500.000"},
		{"uyu negative", -2500.4, UYU, "-$ 2.500"},
		{"uyu zero", 0, UYU, "$ 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.amount, tt.code)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Format(%v, %s) = %q, want %q", tt.amount, tt.code, got, tt.want)
			}
		})
	}
}

func TestFormat_InvalidCurrency(t *testing.T) {
	if _, err := Format(1, "EUR"); !errors.Is(err, ErrInvalidCurrency) {
		t.Errorf("Format() error = %v, want ErrInvalidCurrency", err)
	}
}

func TestFormatReporting(t *testing.T) {
	got, err := FormatReporting(100, USD)
	if err != nil {
		t.Fatal(err)
	}
	if got != "$ 4.000" {
		t.Errorf("FormatReporting() = %q, want %q", got, "$ 4.000")
	}
}
