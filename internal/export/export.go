// Package export writes datasets as CSV or xlsx with a header row and
// columns in entity order followed by derived columns.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/retailbi/internal/domain"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a query value to a Format, defaulting to CSV.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Table is a rendered dataset ready to be written.
type Table struct {
	Header []string
	Rows   [][]string
}

// Write encodes t in the given format.
func Write(w io.Writer, f Format, t Table) error {
	if f == FormatXLSX {
		return WriteXLSX(w, t)
	}
	return WriteCSV(w, t)
}

// WriteCSV writes t as UTF-8 CSV.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

const sheetName = "Sheet1"

// WriteXLSX writes t to the first sheet of a new workbook.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet writer: %w", err)
	}
	for i, row := range append([][]string{t.Header}, t.Rows...) {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cellName, cells); err != nil {
			return fmt.Errorf("write sheet row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func dec(d decimal.Decimal) string {
	return d.String()
}

func boolString(b bool) string {
	return strconv.FormatBool(b)
}

func floatString(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Purchases renders purchase records.
func Purchases(records []domain.PurchaseRecord) Table {
	t := Table{Header: []string{"date", "supplier", "product_name", "quantity", "unit_price", "delivery_days", "total_cost"}}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			formatDate(r.Date), r.Supplier, r.ProductName, itoa(r.Quantity), dec(r.UnitPrice), itoa(r.DeliveryDays), dec(r.TotalCost()),
		})
	}
	return t
}

// Stock renders stock records.
func Stock(records []domain.StockRecord) Table {
	t := Table{Header: []string{"product_id", "product_name", "category", "supplier", "quantity", "min_stock", "unit_cost", "last_update", "value", "below_min"}}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			r.ProductID, r.ProductName, r.Category, r.Supplier, itoa(r.Quantity), itoa(r.MinStock), dec(r.UnitCost),
			formatDate(r.LastUpdate), dec(r.Value()), boolString(r.BelowMin()),
		})
	}
	return t
}

// Sales renders sale records.
func Sales(records []domain.SaleRecord) Table {
	t := Table{Header: []string{"date", "store", "product_name", "quantity", "unit_price", "revenue"}}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			formatDate(r.Date), r.Store, r.ProductName, itoa(r.Quantity), dec(r.UnitPrice), dec(r.Revenue()),
		})
	}
	return t
}

// Consolidated renders consolidated product rows.
func Consolidated(records []domain.ConsolidatedProduct) Table {
	t := Table{Header: []string{
		"product_name", "category", "supplier", "quantity", "min_stock", "unit_cost", "qty_sold", "revenue_total",
		"qty_purchased", "spend_total", "avg_lead_time", "stock_value", "stockout_risk", "overstock", "margin",
	}}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			r.ProductName, r.Category, r.Supplier, itoa(r.Quantity), itoa(r.MinStock), dec(r.UnitCost), itoa(r.QtySold),
			dec(r.RevenueTotal), itoa(r.QtyPurchased), dec(r.SpendTotal), floatString(r.AvgLeadTime), dec(r.StockValue),
			boolString(r.StockoutRisk), boolString(r.Overstock), dec(r.Margin),
		})
	}
	return t
}
