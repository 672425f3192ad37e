package service

import (
	"context"

	"github.com/andresuchdata/retailbi/internal/domain"
	"github.com/andresuchdata/retailbi/internal/engine"
	"github.com/andresuchdata/retailbi/internal/format"
)

const (
	topPurchasedProducts  = 15
	purchaseRecommendTopN = 5
)

// expensiveSupplierRatio flags suppliers whose mean price exceeds the
// average of all supplier means by this factor.
const expensiveSupplierRatio = 1.2

func purchasesSpec(f domain.PurchasesFilter) domain.FilterSpec {
	spec := withPeriod(domain.FilterSpec{}, f.Period)
	spec = withSelection(spec, "supplier", f.Suppliers)
	return withOptionalSelection(spec, "product_name", f.Products)
}

// FilteredPurchases returns the purchase rows matching f.
func (s *DashboardService) FilteredPurchases(ctx context.Context, f domain.PurchasesFilter) ([]domain.PurchaseRecord, error) {
	snap := s.source.Snapshot()
	if err := snap.Require(domain.KindPurchases); err != nil {
		return nil, err
	}
	return engine.Filter(domain.PurchaseSchema, snap.Purchases.Rows(), purchasesSpec(f))
}

// Purchases builds the procurement dashboard.
func (s *DashboardService) Purchases(ctx context.Context, f domain.PurchasesFilter) (*domain.PurchasesDashboard, error) {
	snap := s.source.Snapshot()
	if err := snap.Require(domain.KindPurchases); err != nil {
		return nil, err
	}

	dashboard, err := remember(ctx, s, "purchases", []string{snap.Purchases.ID}, f, func() (domain.PurchasesDashboard, error) {
		return s.buildPurchases(snap.Purchases.Rows(), f)
	})
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *DashboardService) buildPurchases(all []domain.PurchaseRecord, f domain.PurchasesFilter) (domain.PurchasesDashboard, error) {
	rows, err := engine.Filter(domain.PurchaseSchema, all, purchasesSpec(f))
	if err != nil {
		return domain.PurchasesDashboard{}, err
	}

	spend, _ := engine.Totals(domain.PurchaseSchema, rows, "total_cost")
	quantity, _ := engine.Totals(domain.PurchaseSchema, rows, "quantity")

	suppliers, err := engine.Aggregate(domain.PurchaseSchema, rows, engine.AggregationSpec{
		GroupBy: "supplier",
		Measures: []engine.Measure{
			{Field: "unit_price", Reducer: engine.Mean, As: "avg_price"},
			{Field: "delivery_days", Reducer: engine.Mean, As: "avg_delivery_days"},
			{Field: "quantity", Reducer: engine.Sum, As: "quantity"},
		},
	})
	if err != nil {
		return domain.PurchasesDashboard{}, err
	}

	monthly, err := engine.Aggregate(domain.PurchaseSchema, rows, engine.AggregationSpec{
		GroupBy: "date",
		Bucket:  engine.BucketMonth,
		Measures: []engine.Measure{
			{Field: "total_cost", Reducer: engine.Sum, As: "spend"},
			{Field: "quantity", Reducer: engine.Sum, As: "quantity"},
		},
	})
	if err != nil {
		return domain.PurchasesDashboard{}, err
	}

	products, err := engine.Aggregate(domain.PurchaseSchema, rows, engine.AggregationSpec{
		GroupBy: "product_name",
		Measures: []engine.Measure{
			{Field: "total_cost", Reducer: engine.Sum, As: "spend"},
			{Field: "quantity", Reducer: engine.Sum, As: "quantity"},
			{Field: "total_cost", Reducer: engine.Std, As: "spend_std"},
		},
	})
	if err != nil {
		return domain.PurchasesDashboard{}, err
	}

	return domain.PurchasesDashboard{
		Metrics: []domain.Metric{
			s.money("total_spend", "Total spend", spend),
			countMetric("total_quantity", "Total quantity purchased", int(quantity)),
			countMetric("suppliers", "Distinct suppliers", len(suppliers)),
			countMetric("transactions", "Transactions", len(rows)),
		},
		Options: map[string][]string{
			"suppliers": uniqueSorted(all, func(r domain.PurchaseRecord) string { return r.Supplier }),
			"products":  uniqueSorted(all, func(r domain.PurchaseRecord) string { return r.ProductName }),
			"period":    dateSpan(all, domain.PurchaseSchema.Date["date"]),
		},
		SupplierComparison: nonNil(engine.SortBy(suppliers, "avg_price", true)),
		Monthly:            nonNil(monthly),
		TopProducts:        nonNil(engine.TopN(products, "spend", topPurchasedProducts)),
		Recommendations:    purchaseRecommendations(suppliers, products),
		Rows:               len(rows),
	}, nil
}

func purchaseRecommendations(suppliers, products []domain.AggregateRow) domain.PurchaseRecommendations {
	rec := domain.PurchaseRecommendations{
		BestPrice:          nonNil(head(engine.SortBy(suppliers, "avg_price", true), purchaseRecommendTopN)),
		FastestDelivery:    nonNil(head(engine.SortBy(suppliers, "avg_delivery_days", true), purchaseRecommendTopN)),
		ExpensiveSuppliers: expensiveSuppliers(suppliers),
	}

	var varying []domain.AggregateRow
	for _, p := range products {
		if p.Value("spend_std") > 0 {
			varying = append(varying, p)
		}
	}
	rec.TopInvestments = nonNil(engine.TopN(varying, "spend", purchaseRecommendTopN))
	return rec
}

// expensiveSuppliers compares each supplier's mean price to the average of
// the supplier means. A single supplier has nothing to compare against.
func expensiveSuppliers(suppliers []domain.AggregateRow) []domain.SupplierPremium {
	out := []domain.SupplierPremium{}
	if len(suppliers) < 2 {
		return out
	}

	var total float64
	for _, sup := range suppliers {
		total += sup.Value("avg_price")
	}
	overall := total / float64(len(suppliers))
	if overall <= 0 {
		return out
	}

	for _, sup := range engine.SortBy(suppliers, "avg_price", false) {
		price := sup.Value("avg_price")
		if price <= overall*expensiveSupplierRatio {
			continue
		}
		pct := (price/overall - 1) * 100
		out = append(out, domain.SupplierPremium{
			Supplier:    sup.Key,
			AvgPrice:    price,
			PctAboveAvg: pct,
			Display:     format.Percent(pct) + " above average",
		})
	}
	return out
}

func head[T any](rows []T, n int) []T {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

