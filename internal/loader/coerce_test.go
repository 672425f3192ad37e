package loader

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCleanNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234", "1234"},
		{"1,234", "1234"},
		{"1,234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"12,5", "12.5"},
		{"R$ 99,90", "99.90"},
		{"1,234,567", "1234567"},
	}

	for _, tt := range tests {
		if got := cleanNumber(tt.in); got != tt.want {
			t.Errorf("cleanNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		in   string
		def  int
		want int
	}{
		{"", 1, 1},
		{"7", 1, 7},
		{"7.9", 1, 7},
		{"-3", 1, 0},
		{"x", 1, 0},
		{"NaN", 1, 0},
		{"9223372036854775807", 1, 2147483647},
		{"3000000000", 1, 2147483647},
		{"1e12", 1, 2147483647},
	}

	for _, tt := range tests {
		if got := toInt(tt.in, tt.def); got != tt.want {
			t.Errorf("toInt(%q, %d) = %d, want %d", tt.in, tt.def, got, tt.want)
		}
	}
}

func TestToDecimal(t *testing.T) {
	if got := toDecimal("", decimal.NewFromInt(5)); !got.Equal(decimal.NewFromInt(5)) {
		t.Errorf("expected default for empty value, got %s", got)
	}
	if got := toDecimal("oops", decimal.NewFromInt(5)); !got.IsZero() {
		t.Errorf("expected 0 for unparsable value, got %s", got)
	}
	if got := toDecimal("-1", decimal.Zero); !got.IsZero() {
		t.Errorf("expected negative to clamp to 0, got %s", got)
	}
}

func TestToDate(t *testing.T) {
	today := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	want := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{
		"2024-12-31",
		"2024-12-31 18:45:00",
		"2024-12-31T18:45:00Z",
		"31/12/2024",
		"2024/12/31",
		"12/31/2024",
		"45657",
	} {
		if got := toDate(in, today); !got.Equal(want) {
			t.Errorf("toDate(%q) = %v, want %v", in, got, want)
		}
	}

	for _, in := range []string{"", "soon", "0"} {
		if got := toDate(in, today); !got.Equal(today) {
			t.Errorf("toDate(%q) = %v, want today", in, got)
		}
	}
}
