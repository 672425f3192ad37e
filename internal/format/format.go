// Package format renders KPI values for display.
package format

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Formatter renders money with a fixed currency symbol.
type Formatter struct {
	Symbol string
}

func New(symbol string) Formatter {
	return Formatter{Symbol: symbol}
}

// Currency formats v with two decimals and comma thousands separators.
// Example: 1234.5 => "R$ 1,234.50".
func (f Formatter) Currency(v float64) string {
	s := Float(v, 2)
	if f.Symbol == "" {
		return s
	}
	return f.Symbol + " " + s
}

// Int formats n with comma thousands separators.
func Int(n int) string {
	return humanize.Comma(int64(n))
}

// Percent formats a ratio already expressed in percent, one decimal.
func Percent(v float64) string {
	return toDecimal(v).StringFixed(1) + "%"
}

// Float formats v with comma thousands separators and exactly the given
// number of decimals. Rounding is half away from zero and the integer part
// is grouped at arbitrary precision.
func Float(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	d := toDecimal(v).Round(int32(decimals))

	prefix := ""
	if d.IsNegative() {
		prefix = "-"
		d = d.Abs()
	}
	s := humanize.BigComma(d.Truncate(0).BigInt())
	if decimals == 0 {
		return prefix + s
	}
	fixed := d.StringFixed(int32(decimals))
	return prefix + s + fixed[strings.IndexByte(fixed, '.'):]
}

func toDecimal(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
