package service

import (
	"context"

	"github.com/andresuchdata/retailbi/internal/domain"
	"github.com/andresuchdata/retailbi/internal/engine"
)

const topSoldProducts = 10

func salesSpec(f domain.SalesFilter) domain.FilterSpec {
	spec := withPeriod(domain.FilterSpec{}, f.Period)
	spec = withSelection(spec, "store", f.Stores)
	return withOptionalSelection(spec, "product_name", f.Products)
}

// FilteredSales returns the sales rows matching f.
func (s *DashboardService) FilteredSales(ctx context.Context, f domain.SalesFilter) ([]domain.SaleRecord, error) {
	snap := s.source.Snapshot()
	if err := snap.Require(domain.KindSales); err != nil {
		return nil, err
	}
	return engine.Filter(domain.SaleSchema, snap.Sales.Rows(), salesSpec(f))
}

// Sales builds the point-of-sale dashboard.
func (s *DashboardService) Sales(ctx context.Context, f domain.SalesFilter) (*domain.SalesDashboard, error) {
	snap := s.source.Snapshot()
	if err := snap.Require(domain.KindSales); err != nil {
		return nil, err
	}

	dashboard, err := remember(ctx, s, "sales", []string{snap.Sales.ID}, f, func() (domain.SalesDashboard, error) {
		return s.buildSales(snap.Sales.Rows(), f)
	})
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *DashboardService) buildSales(all []domain.SaleRecord, f domain.SalesFilter) (domain.SalesDashboard, error) {
	rows, err := engine.Filter(domain.SaleSchema, all, salesSpec(f))
	if err != nil {
		return domain.SalesDashboard{}, err
	}

	revenue, _ := engine.Totals(domain.SaleSchema, rows, "revenue")
	quantity, _ := engine.Totals(domain.SaleSchema, rows, "quantity")

	monthly, err := engine.Aggregate(domain.SaleSchema, rows, engine.AggregationSpec{
		GroupBy: "date",
		Bucket:  engine.BucketMonth,
		Measures: []engine.Measure{
			{Field: "quantity", Reducer: engine.Sum, As: "quantity"},
			{Field: "revenue", Reducer: engine.Sum, As: "revenue"},
		},
	})
	if err != nil {
		return domain.SalesDashboard{}, err
	}

	products, err := engine.Aggregate(domain.SaleSchema, rows, engine.AggregationSpec{
		GroupBy:  "product_name",
		Measures: []engine.Measure{{Field: "quantity", Reducer: engine.Sum, As: "quantity"}},
	})
	if err != nil {
		return domain.SalesDashboard{}, err
	}

	stores, err := engine.Aggregate(domain.SaleSchema, rows, engine.AggregationSpec{
		GroupBy:  "store",
		Measures: []engine.Measure{{Field: "revenue", Reducer: engine.Sum, As: "revenue"}},
	})
	if err != nil {
		return domain.SalesDashboard{}, err
	}

	return domain.SalesDashboard{
		Metrics: []domain.Metric{
			s.money("total_revenue", "Total revenue", revenue),
			countMetric("total_quantity", "Total quantity sold", int(quantity)),
			countMetric("products", "Distinct products sold", len(products)),
		},
		Options: map[string][]string{
			"stores":   uniqueSorted(all, func(r domain.SaleRecord) string { return r.Store }),
			"products": uniqueSorted(all, func(r domain.SaleRecord) string { return r.ProductName }),
			"period":   dateSpan(all, domain.SaleSchema.Date["date"]),
		},
		Monthly:        nonNil(monthly),
		TopProducts:    nonNil(engine.TopN(products, "quantity", topSoldProducts)),
		RevenueByStore: nonNil(engine.TopN(stores, "revenue", 0)),
		Rows:           len(rows),
	}, nil
}
