package format

import (
	"math"
	"testing"
)

func TestCurrency(t *testing.T) {
	f := New("R$")
	tests := []struct {
		in   float64
		want string
	}{
		{0, "R$ 0.00"},
		{1234.5, "R$ 1,234.50"},
		{1234567.891, "R$ 1,234,567.89"},
		{-42.5, "R$ -42.50"},
		{999.999, "R$ 1,000.00"},
	}
	for _, tt := range tests {
		if got := f.Currency(tt.in); got != tt.want {
			t.Errorf("Currency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := New("").Currency(5); got != "5.00" {
		t.Errorf("expected bare number without symbol, got %q", got)
	}
}

func TestInt(t *testing.T) {
	tests := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		-25000:   "-25,000",
		12345678: "12,345,678",
	}
	for in, want := range tests {
		if got := Int(in); got != want {
			t.Errorf("Int(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(23.456); got != "23.5%" {
		t.Errorf("unexpected percent %q", got)
	}
}

func TestFloatLargeValues(t *testing.T) {
	tests := []struct {
		in       float64
		decimals int
		want     string
	}{
		{1e17, 2, "100,000,000,000,000,000.00"},
		{-1e19, 0, "-10,000,000,000,000,000,000"},
		{1e21, 1, "1,000,000,000,000,000,000,000.0"},
		{-0.004, 2, "0.00"},
		{math.NaN(), 2, "0.00"},
	}
	for _, tt := range tests {
		if got := Float(tt.in, tt.decimals); got != tt.want {
			t.Errorf("Float(%v, %d) = %q, want %q", tt.in, tt.decimals, got, tt.want)
		}
	}

	if got := New("R$").Currency(1e17); got != "R$ 100,000,000,000,000,000.00" {
		t.Errorf("unexpected large currency %q", got)
	}
}
