package domain

import (
	"fmt"
	"time"
)

// FieldType classifies how a named field may be used by filters and
// aggregations.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldDate   FieldType = "date"
	FieldFlag   FieldType = "flag"
)

// Schema is the fixed set of named accessors for one record type. Filters
// and aggregations resolve field names through it instead of probing
// columns at runtime.
type Schema[T any] struct {
	Text   map[string]func(T) string
	Number map[string]func(T) float64
	Date   map[string]func(T) time.Time
	Flag   map[string]func(T) bool
}

// TypeOf returns the type of a field, or false when the field is unknown.
func (s Schema[T]) TypeOf(field string) (FieldType, bool) {
	if _, ok := s.Text[field]; ok {
		return FieldText, true
	}
	if _, ok := s.Number[field]; ok {
		return FieldNumber, true
	}
	if _, ok := s.Date[field]; ok {
		return FieldDate, true
	}
	if _, ok := s.Flag[field]; ok {
		return FieldFlag, true
	}
	return "", false
}

// Key returns a string form of any field, used for grouping and counting
// distinct values.
func (s Schema[T]) Key(field string) (func(T) string, error) {
	if f, ok := s.Text[field]; ok {
		return f, nil
	}
	if f, ok := s.Number[field]; ok {
		return func(r T) string { return fmt.Sprintf("%v", f(r)) }, nil
	}
	if f, ok := s.Date[field]; ok {
		return func(r T) string { return f(r).Format(DateLayout) }, nil
	}
	if f, ok := s.Flag[field]; ok {
		return func(r T) string { return fmt.Sprintf("%t", f(r)) }, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
}

// DateLayout is the calendar-date layout used on the wire and in CSV output.
const DateLayout = "2006-01-02"

// PurchaseSchema exposes PurchaseRecord fields.
var PurchaseSchema = Schema[PurchaseRecord]{
	Text: map[string]func(PurchaseRecord) string{
		"supplier":     func(r PurchaseRecord) string { return r.Supplier },
		"product_name": func(r PurchaseRecord) string { return r.ProductName },
	},
	Number: map[string]func(PurchaseRecord) float64{
		"quantity":      func(r PurchaseRecord) float64 { return float64(r.Quantity) },
		"unit_price":    func(r PurchaseRecord) float64 { return r.UnitPrice.InexactFloat64() },
		"delivery_days": func(r PurchaseRecord) float64 { return float64(r.DeliveryDays) },
		"total_cost":    func(r PurchaseRecord) float64 { return r.TotalCost().InexactFloat64() },
	},
	Date: map[string]func(PurchaseRecord) time.Time{
		"date": func(r PurchaseRecord) time.Time { return r.Date },
	},
}

// StockSchema exposes StockRecord fields.
var StockSchema = Schema[StockRecord]{
	Text: map[string]func(StockRecord) string{
		"product_id":   func(r StockRecord) string { return r.ProductID },
		"product_name": func(r StockRecord) string { return r.ProductName },
		"category":     func(r StockRecord) string { return r.Category },
		"supplier":     func(r StockRecord) string { return r.Supplier },
	},
	Number: map[string]func(StockRecord) float64{
		"quantity":  func(r StockRecord) float64 { return float64(r.Quantity) },
		"min_stock": func(r StockRecord) float64 { return float64(r.MinStock) },
		"unit_cost": func(r StockRecord) float64 { return r.UnitCost.InexactFloat64() },
		"value":     func(r StockRecord) float64 { return r.Value().InexactFloat64() },
		"diff":      func(r StockRecord) float64 { return float64(r.Quantity - r.MinStock) },
	},
	Date: map[string]func(StockRecord) time.Time{
		"last_update": func(r StockRecord) time.Time { return r.LastUpdate },
	},
	Flag: map[string]func(StockRecord) bool{
		"below_min": func(r StockRecord) bool { return r.BelowMin() },
	},
}

// SaleSchema exposes SaleRecord fields.
var SaleSchema = Schema[SaleRecord]{
	Text: map[string]func(SaleRecord) string{
		"store":        func(r SaleRecord) string { return r.Store },
		"product_name": func(r SaleRecord) string { return r.ProductName },
	},
	Number: map[string]func(SaleRecord) float64{
		"quantity":   func(r SaleRecord) float64 { return float64(r.Quantity) },
		"unit_price": func(r SaleRecord) float64 { return r.UnitPrice.InexactFloat64() },
		"revenue":    func(r SaleRecord) float64 { return r.Revenue().InexactFloat64() },
	},
	Date: map[string]func(SaleRecord) time.Time{
		"date": func(r SaleRecord) time.Time { return r.Date },
	},
}

// ConsolidatedSchema exposes ConsolidatedProduct fields.
var ConsolidatedSchema = Schema[ConsolidatedProduct]{
	Text: map[string]func(ConsolidatedProduct) string{
		"product_name": func(r ConsolidatedProduct) string { return r.ProductName },
		"category":     func(r ConsolidatedProduct) string { return r.Category },
		"supplier":     func(r ConsolidatedProduct) string { return r.Supplier },
	},
	Number: map[string]func(ConsolidatedProduct) float64{
		"quantity":      func(r ConsolidatedProduct) float64 { return float64(r.Quantity) },
		"min_stock":     func(r ConsolidatedProduct) float64 { return float64(r.MinStock) },
		"unit_cost":     func(r ConsolidatedProduct) float64 { return r.UnitCost.InexactFloat64() },
		"qty_sold":      func(r ConsolidatedProduct) float64 { return float64(r.QtySold) },
		"revenue_total": func(r ConsolidatedProduct) float64 { return r.RevenueTotal.InexactFloat64() },
		"qty_purchased": func(r ConsolidatedProduct) float64 { return float64(r.QtyPurchased) },
		"spend_total":   func(r ConsolidatedProduct) float64 { return r.SpendTotal.InexactFloat64() },
		"avg_lead_time": func(r ConsolidatedProduct) float64 { return r.AvgLeadTime },
		"stock_value":   func(r ConsolidatedProduct) float64 { return r.StockValue.InexactFloat64() },
		"margin":        func(r ConsolidatedProduct) float64 { return r.Margin.InexactFloat64() },
	},
	Flag: map[string]func(ConsolidatedProduct) bool{
		"stockout_risk": func(r ConsolidatedProduct) bool { return r.StockoutRisk },
		"overstock":     func(r ConsolidatedProduct) bool { return r.Overstock },
	},
}
