package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/andresuchdata/retailbi/internal/domain"
	"github.com/andresuchdata/retailbi/internal/engine"
	"github.com/andresuchdata/retailbi/internal/workspace"
)

const heatmapSize = 15

const (
	StatusCritical = "CRITICAL"
	StatusOK       = "OK"
)

// consolidatedInputs holds the filtered datasets feeding one consolidated
// view. Sales and purchases are optional and count as empty when absent.
type consolidatedInputs struct {
	stock     []domain.StockRecord
	sales     []domain.SaleRecord
	purchases []domain.PurchaseRecord
}

func filterConsolidatedInputs(snap workspace.Snapshot, f domain.ConsolidatedFilter) (consolidatedInputs, error) {
	var in consolidatedInputs
	var err error

	stockSpec := withSelection(domain.FilterSpec{}, "product_name", f.Products)
	stockSpec = withSelection(stockSpec, "category", f.Categories)
	if in.stock, err = engine.Filter(domain.StockSchema, snap.Stock.Rows(), stockSpec); err != nil {
		return in, err
	}

	salesSpec := withPeriod(domain.FilterSpec{}, f.Period)
	salesSpec = withSelection(salesSpec, "product_name", f.Products)
	salesSpec = withSelection(salesSpec, "store", f.Stores)
	if in.sales, err = engine.Filter(domain.SaleSchema, snap.Sales.Rows(), salesSpec); err != nil {
		return in, err
	}

	purchasesSpec := withPeriod(domain.FilterSpec{}, f.Period)
	purchasesSpec = withSelection(purchasesSpec, "product_name", f.Products)
	if in.purchases, err = engine.Filter(domain.PurchaseSchema, snap.Purchases.Rows(), purchasesSpec); err != nil {
		return in, err
	}
	return in, nil
}

// ConsolidatedRows returns the joined per-product rows for f.
func (s *DashboardService) ConsolidatedRows(ctx context.Context, f domain.ConsolidatedFilter) ([]domain.ConsolidatedProduct, error) {
	snap := s.source.Snapshot()
	if err := snap.Require(domain.KindStock); err != nil {
		return nil, err
	}

	f.Product = ""
	return remember(ctx, s, "consolidated_rows", datasetIDs(snap), f, func() ([]domain.ConsolidatedProduct, error) {
		in, err := filterConsolidatedInputs(snap, f)
		if err != nil {
			return nil, err
		}
		return nonNil(engine.Consolidate(in.stock, in.sales, in.purchases, s.thresholds)), nil
	})
}

// CriticalRows returns the consolidated rows at risk of stockout, lowest
// quantity first.
func (s *DashboardService) CriticalRows(ctx context.Context, f domain.ConsolidatedFilter) ([]domain.ConsolidatedProduct, error) {
	rows, err := s.ConsolidatedRows(ctx, f)
	if err != nil {
		return nil, err
	}
	return criticalRows(rows), nil
}

// Product returns the 360° view of one product, or ErrNotFound when no
// consolidated row carries that name.
func (s *DashboardService) Product(ctx context.Context, f domain.ConsolidatedFilter, name string) (*domain.ProductView, error) {
	rows, err := s.ConsolidatedRows(ctx, f)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r.ProductName == name {
			view := s.productView(r)
			return &view, nil
		}
	}
	return nil, fmt.Errorf("%w: product %q", domain.ErrNotFound, name)
}

// Consolidated builds the 360° dashboard joining stock, sales and purchases.
func (s *DashboardService) Consolidated(ctx context.Context, f domain.ConsolidatedFilter) (*domain.ConsolidatedDashboard, error) {
	snap := s.source.Snapshot()
	if err := snap.Require(domain.KindStock); err != nil {
		return nil, err
	}

	dashboard, err := remember(ctx, s, "consolidated", datasetIDs(snap), f, func() (domain.ConsolidatedDashboard, error) {
		return s.buildConsolidated(snap, f)
	})
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *DashboardService) buildConsolidated(snap workspace.Snapshot, f domain.ConsolidatedFilter) (domain.ConsolidatedDashboard, error) {
	in, err := filterConsolidatedInputs(snap, f)
	if err != nil {
		return domain.ConsolidatedDashboard{}, err
	}
	rows := nonNil(engine.Consolidate(in.stock, in.sales, in.purchases, s.thresholds))

	revenue, _ := engine.Totals(domain.SaleSchema, in.sales, "revenue")
	spend, _ := engine.Totals(domain.PurchaseSchema, in.purchases, "total_cost")
	stockValue, _ := engine.Totals(domain.ConsolidatedSchema, rows, "stock_value")

	critical := criticalRows(rows)
	overstock := 0
	for _, r := range rows {
		if r.Overstock {
			overstock++
		}
	}

	monthlyRevenue, err := engine.Aggregate(domain.SaleSchema, in.sales, engine.AggregationSpec{
		GroupBy:  "date",
		Bucket:   engine.BucketMonth,
		Measures: []engine.Measure{{Field: "revenue", Reducer: engine.Sum, As: "revenue"}},
	})
	if err != nil {
		return domain.ConsolidatedDashboard{}, err
	}
	monthlySpend, err := engine.Aggregate(domain.PurchaseSchema, in.purchases, engine.AggregationSpec{
		GroupBy:  "date",
		Bucket:   engine.BucketMonth,
		Measures: []engine.Measure{{Field: "total_cost", Reducer: engine.Sum, As: "total_cost"}},
	})
	if err != nil {
		return domain.ConsolidatedDashboard{}, err
	}

	suppliers, err := engine.Aggregate(domain.PurchaseSchema, in.purchases, engine.AggregationSpec{
		GroupBy: "supplier",
		Measures: []engine.Measure{
			{Field: "unit_price", Reducer: engine.Mean, As: "avg_price"},
			{Field: "delivery_days", Reducer: engine.Mean, As: "avg_lead_time"},
			{Field: "quantity", Reducer: engine.Sum, As: "quantity"},
			{Field: "total_cost", Reducer: engine.Sum, As: "spend"},
		},
	})
	if err != nil {
		return domain.ConsolidatedDashboard{}, err
	}

	byRevenue := sortedByRevenue(rows)
	recs := domain.ConsolidatedRecommendations{
		CriticalCount:     len(critical),
		BestPriceSupplier: cheapestSupplier(suppliers),
	}
	if len(byRevenue) > 0 {
		recs.TopProduct = byRevenue[0].ProductName
	}

	dashboard := domain.ConsolidatedDashboard{
		Metrics: []domain.Metric{
			s.money("total_revenue", "Total revenue", revenue),
			s.money("stock_value", "Stock value", stockValue),
			s.money("total_spend", "Purchase spend", spend),
			countMetric("critical", "Products at stockout risk", len(critical)),
			countMetric("overstock", "Overstocked products", overstock),
			countMetric("products", "Products", len(rows)),
		},
		Options:         consolidatedOptions(snap),
		Products:        rows,
		Critical:        critical,
		RevenueVsSpend:  nonNil(engine.OuterJoinMonthly(monthlyRevenue, monthlySpend)),
		Suppliers:       nonNil(suppliers),
		Heatmap:         heatmap(head(byRevenue, heatmapSize)),
		Recommendations: recs,
		Orphans:         engine.Orphans(snap.Stock.Rows(), in.sales, in.purchases),
	}

	if p := selectProduct(rows, f.Product); p != nil {
		view := s.productView(*p)
		dashboard.Product = &view
	}
	return dashboard, nil
}

// selectProduct picks the named row, or the first row when no name is
// given.
func selectProduct(rows []domain.ConsolidatedProduct, name string) *domain.ConsolidatedProduct {
	if name == "" {
		if len(rows) == 0 {
			return nil
		}
		return &rows[0]
	}
	for i := range rows {
		if rows[i].ProductName == name {
			return &rows[i]
		}
	}
	return nil
}

func (s *DashboardService) productView(p domain.ConsolidatedProduct) domain.ProductView {
	view := domain.ProductView{Product: p, Status: StatusOK, Alerts: []domain.Alert{}}
	if p.StockoutRisk {
		view.Status = StatusCritical
		view.Alerts = append(view.Alerts, domain.Alert{
			Level:   "critical",
			Code:    "stockout_risk",
			Message: "Stockout risk: quantity below minimum. Raise the next purchase order now.",
		})
	}
	if p.Overstock {
		view.Alerts = append(view.Alerts, domain.Alert{
			Level:   "warning",
			Code:    "overstock",
			Message: "Overstock: quantity far above minimum. Consider promotions or smaller orders.",
		})
	}
	if p.Margin.IsPositive() {
		view.Alerts = append(view.Alerts, domain.Alert{
			Level:   "success",
			Code:    "profitable",
			Message: "Profitable: margin of " + s.format.Currency(p.Margin.InexactFloat64()),
		})
	}
	return view
}

func criticalRows(rows []domain.ConsolidatedProduct) []domain.ConsolidatedProduct {
	out := []domain.ConsolidatedProduct{}
	for _, r := range rows {
		if r.StockoutRisk {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Quantity < out[j].Quantity
	})
	return out
}

func sortedByRevenue(rows []domain.ConsolidatedProduct) []domain.ConsolidatedProduct {
	out := append([]domain.ConsolidatedProduct(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RevenueTotal.GreaterThan(out[j].RevenueTotal)
	})
	return out
}

func heatmap(rows []domain.ConsolidatedProduct) []domain.HeatmapRow {
	out := make([]domain.HeatmapRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.HeatmapRow{
			ProductName:  r.ProductName,
			Quantity:     r.Quantity,
			QtySold:      r.QtySold,
			QtyPurchased: r.QtyPurchased,
		})
	}
	return out
}

// cheapestSupplier returns the supplier with the lowest mean unit price,
// the first seen on ties.
func cheapestSupplier(suppliers []domain.AggregateRow) string {
	sorted := engine.SortBy(suppliers, "avg_price", true)
	if len(sorted) == 0 {
		return ""
	}
	return sorted[0].Key
}

func consolidatedOptions(snap workspace.Snapshot) map[string][]string {
	stock := snap.Stock.Rows()
	sales := snap.Sales.Rows()
	return map[string][]string{
		"products":   uniqueSorted(stock, func(r domain.StockRecord) string { return r.ProductName }),
		"categories": uniqueSorted(stock, func(r domain.StockRecord) string { return r.Category }),
		"stores":     uniqueSorted(sales, func(r domain.SaleRecord) string { return r.Store }),
		"period":     dateSpan(sales, domain.SaleSchema.Date["date"]),
	}
}
