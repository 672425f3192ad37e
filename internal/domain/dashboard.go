package domain

// Metric is one KPI card value plus its display string.
type Metric struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// AggregateRow is one group produced by the aggregation engine. Key is the
// group value (or YYYY-MM-01 for monthly buckets).
type AggregateRow struct {
	Key    string             `json:"key"`
	Count  int                `json:"count"`
	Values map[string]float64 `json:"values"`
}

// Value returns a reduced field, 0 when absent.
func (r AggregateRow) Value(field string) float64 {
	return r.Values[field]
}

// SupplierPremium flags a supplier priced well above the average of all
// supplier mean prices.
type SupplierPremium struct {
	Supplier    string  `json:"supplier"`
	AvgPrice    float64 `json:"avg_price"`
	PctAboveAvg float64 `json:"pct_above_avg"`
	Display     string  `json:"display"`
}

type PurchaseRecommendations struct {
	BestPrice          []AggregateRow    `json:"best_price"`
	FastestDelivery    []AggregateRow    `json:"fastest_delivery"`
	ExpensiveSuppliers []SupplierPremium `json:"expensive_suppliers"`
	TopInvestments     []AggregateRow    `json:"top_investments"`
}

// PurchasesDashboard aggregates all purchases dashboard data
type PurchasesDashboard struct {
	Metrics            []Metric                `json:"metrics"`
	Options            map[string][]string     `json:"options"`
	SupplierComparison []AggregateRow          `json:"supplier_comparison"`
	Monthly            []AggregateRow          `json:"monthly"`
	TopProducts        []AggregateRow          `json:"top_products"`
	Recommendations    PurchaseRecommendations `json:"recommendations"`
	Rows               int                     `json:"rows"`
}

// StockLevel is one bar pair in the current-vs-minimum chart.
type StockLevel struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	MinStock    int    `json:"min_stock"`
	Diff        int    `json:"diff"`
	BelowMin    bool   `json:"below_min"`
}

// StockDashboard aggregates all stock dashboard data
type StockDashboard struct {
	Metrics []Metric            `json:"metrics"`
	Options map[string][]string `json:"options"`
	Items   []StockRecord       `json:"items"`
	Levels  []StockLevel        `json:"levels"`
	Reorder []StockRecord       `json:"reorder"`
}

// SalesDashboard aggregates all sales dashboard data
type SalesDashboard struct {
	Metrics        []Metric            `json:"metrics"`
	Options        map[string][]string `json:"options"`
	Monthly        []AggregateRow      `json:"monthly"`
	TopProducts    []AggregateRow      `json:"top_products"`
	RevenueByStore []AggregateRow      `json:"revenue_by_store"`
	Rows           int                 `json:"rows"`
}

// Alert is a risk or opportunity notice for a single product.
type Alert struct {
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ProductView is the 360° panel for one consolidated product.
type ProductView struct {
	Product ConsolidatedProduct `json:"product"`
	Status  string              `json:"status"`
	Alerts  []Alert             `json:"alerts"`
}

// HeatmapRow compares stock, sold and purchased quantity for one product.
type HeatmapRow struct {
	ProductName  string `json:"product_name"`
	Quantity     int    `json:"quantity"`
	QtySold      int    `json:"qty_sold"`
	QtyPurchased int    `json:"qty_purchased"`
}

// OrphanReport lists activity whose product is absent from stock and was
// therefore left out of consolidation.
type OrphanReport struct {
	Sales     []string `json:"sales"`
	Purchases []string `json:"purchases"`
}

type ConsolidatedRecommendations struct {
	CriticalCount     int    `json:"critical_count"`
	BestPriceSupplier string `json:"best_price_supplier,omitempty"`
	TopProduct        string `json:"top_product,omitempty"`
}

// ConsolidatedDashboard aggregates the 360° view
type ConsolidatedDashboard struct {
	Metrics         []Metric                    `json:"metrics"`
	Options         map[string][]string         `json:"options"`
	Product         *ProductView                `json:"product,omitempty"`
	Products        []ConsolidatedProduct       `json:"products"`
	Critical        []ConsolidatedProduct       `json:"critical"`
	RevenueVsSpend  []AggregateRow              `json:"revenue_vs_spend"`
	Suppliers       []AggregateRow              `json:"suppliers"`
	Heatmap         []HeatmapRow                `json:"heatmap"`
	Recommendations ConsolidatedRecommendations `json:"recommendations"`
	Orphans         OrphanReport                `json:"orphans"`
}
