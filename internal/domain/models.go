// backend-go/internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseRecord is one purchase order line from the procurement dataset.
type PurchaseRecord struct {
	Date         time.Time       `json:"date"`
	Supplier     string          `json:"supplier"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	DeliveryDays int             `json:"delivery_days"`
}

// TotalCost is quantity × unit price.
func (r PurchaseRecord) TotalCost() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))
}

// StockRecord is a stock snapshot for one product.
type StockRecord struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	Supplier    string          `json:"supplier"`
	Quantity    int             `json:"quantity"`
	MinStock    int             `json:"min_stock"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	LastUpdate  time.Time       `json:"last_update"`
}

// Value is quantity × unit cost.
func (r StockRecord) Value() decimal.Decimal {
	return r.UnitCost.Mul(decimal.NewFromInt(int64(r.Quantity)))
}

// BelowMin reports whether on-hand quantity is under the configured minimum.
func (r StockRecord) BelowMin() bool {
	return r.Quantity < r.MinStock
}

// SaleRecord is one sales line from the point-of-sale dataset.
type SaleRecord struct {
	Date        time.Time       `json:"date"`
	Store       string          `json:"store"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Revenue is quantity × unit price.
func (r SaleRecord) Revenue() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))
}

// ConsolidatedProduct joins stock, sales and purchase aggregates for one
// product name. It always originates from a stock row.
type ConsolidatedProduct struct {
	ProductName  string          `json:"product_name"`
	Category     string          `json:"category"`
	Supplier     string          `json:"supplier"`
	Quantity     int             `json:"quantity"`
	MinStock     int             `json:"min_stock"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	QtySold      int             `json:"qty_sold"`
	RevenueTotal decimal.Decimal `json:"revenue_total"`
	QtyPurchased int             `json:"qty_purchased"`
	SpendTotal   decimal.Decimal `json:"spend_total"`
	AvgLeadTime  float64         `json:"avg_lead_time"`
	StockValue   decimal.Decimal `json:"stock_value"`
	StockoutRisk bool            `json:"stockout_risk"`
	Overstock    bool            `json:"overstock"`
	Margin       decimal.Decimal `json:"margin"`
}

// Dataset is an immutable, loaded set of records of one kind. ID is the
// content hash of the input it was built from.
type Dataset[T any] struct {
	ID       string    `json:"id"`
	Kind     Kind      `json:"kind"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
	Records  []T       `json:"records"`
}

// Len returns the number of records, tolerating a nil dataset.
func (d *Dataset[T]) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Rows returns the records, or nil for a nil dataset.
func (d *Dataset[T]) Rows() []T {
	if d == nil {
		return nil
	}
	return d.Records
}

// DatasetInfo summarises a loaded dataset without its rows.
type DatasetInfo struct {
	ID       string    `json:"id"`
	Kind     Kind      `json:"kind"`
	Label    string    `json:"label"`
	Source   string    `json:"source"`
	Rows     int       `json:"rows"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Info returns the dataset summary.
func (d *Dataset[T]) Info() DatasetInfo {
	if d == nil {
		return DatasetInfo{}
	}
	return DatasetInfo{ID: d.ID, Kind: d.Kind, Label: d.Kind.Label(), Source: d.Source, Rows: len(d.Records), LoadedAt: d.LoadedAt}
}
