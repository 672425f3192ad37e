package loader

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var numberSanitizer = strings.NewReplacer("R$", "", "$", "", " ", "", "\u00a0", "")

// cleanNumber strips currency symbols and thousands separators, accepting
// both 1,234.56 and 1.234,56 styles.
func cleanNumber(s string) string {
	s = numberSanitizer.Replace(strings.TrimSpace(s))
	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")

	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		frac := len(s) - comma - 1
		if strings.Count(s, ",") == 1 && frac >= 1 && frac <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	return s
}

// toInt parses a non-negative integer clamped to MaxInt32. An empty value
// yields def, anything unparsable yields 0 and decimals are truncated.
func toInt(s string, def int) int {
	if s == "" {
		return def
	}
	s = cleanNumber(s)
	if n, err := strconv.Atoi(s); err == nil {
		return min(max(n, 0), math.MaxInt32)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Trunc(f))
}

// toDecimal parses a non-negative amount. An empty value yields def,
// anything unparsable yields 0.
func toDecimal(s string, def decimal.Decimal) decimal.Decimal {
	if s == "" {
		return def
	}
	d, err := decimal.NewFromString(cleanNumber(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func toText(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
}

// Excel serial numbers past this are beyond year 9999.
const maxExcelSerial = 2958465

// toDate parses s as a calendar date, falling back to today when s is
// empty or unparsable.
func toDate(s string, today time.Time) time.Time {
	if s == "" {
		return today
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t)
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 1 && f <= maxExcelSerial {
		if t, err := excelize.ExcelDateToTime(f, false); err == nil {
			return truncateDay(t)
		}
	}
	return today
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
