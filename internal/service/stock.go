package service

import (
	"context"
	"sort"
	"strings"

	"github.com/andresuchdata/retailbi/internal/domain"
	"github.com/andresuchdata/retailbi/internal/engine"
)

const (
	maxStockLevels = 40
	maxReorder     = 8
)

func stockSpec(f domain.StockFilter) domain.FilterSpec {
	spec := domain.FilterSpec{}
	if c := strings.TrimSpace(f.Category); c != "" && !strings.EqualFold(c, engine.AllKey) {
		spec = spec.WithMember("category", []string{c})
	}
	spec = spec.WithSearch("product_name", f.Search)
	if f.OnlyBelowMin {
		spec = spec.WithFlag("below_min", true)
	}
	return spec
}

// FilteredStock returns the stock rows matching f.
func (s *DashboardService) FilteredStock(ctx context.Context, f domain.StockFilter) ([]domain.StockRecord, error) {
	snap := s.source.Snapshot()
	if err := snap.Require(domain.KindStock); err != nil {
		return nil, err
	}
	return engine.Filter(domain.StockSchema, snap.Stock.Rows(), stockSpec(f))
}

// Stock builds the inventory dashboard.
func (s *DashboardService) Stock(ctx context.Context, f domain.StockFilter) (*domain.StockDashboard, error) {
	snap := s.source.Snapshot()
	if err := snap.Require(domain.KindStock); err != nil {
		return nil, err
	}

	dashboard, err := remember(ctx, s, "stock", []string{snap.Stock.ID}, f, func() (domain.StockDashboard, error) {
		return s.buildStock(snap.Stock.Rows(), f)
	})
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *DashboardService) buildStock(all []domain.StockRecord, f domain.StockFilter) (domain.StockDashboard, error) {
	rows, err := engine.Filter(domain.StockSchema, all, stockSpec(f))
	if err != nil {
		return domain.StockDashboard{}, err
	}

	var (
		units    int
		belowMin []domain.StockRecord
		value    float64
		skus     = make(map[string]struct{})
	)
	for _, r := range rows {
		units += r.Quantity
		value += r.Value().InexactFloat64()
		skus[r.ProductID] = struct{}{}
		if r.BelowMin() {
			belowMin = append(belowMin, r)
		}
	}

	sort.SliceStable(belowMin, func(i, j int) bool {
		return belowMin[i].Quantity < belowMin[j].Quantity
	})

	return domain.StockDashboard{
		Metrics: []domain.Metric{
			countMetric("total_units", "Total units in stock", units),
			countMetric("skus", "SKUs listed", len(skus)),
			countMetric("below_min", "Products below minimum", len(belowMin)),
			s.money("total_value", "Total stock value", value),
		},
		Options: map[string][]string{
			"categories": uniqueSorted(all, func(r domain.StockRecord) string { return r.Category }),
		},
		Items:   nonNil(rows),
		Levels:  stockLevels(rows),
		Reorder: nonNil(head(belowMin, maxReorder)),
	}, nil
}

// stockLevels lists the most critical rows first, by quantity minus
// minimum.
func stockLevels(rows []domain.StockRecord) []domain.StockLevel {
	levels := make([]domain.StockLevel, 0, len(rows))
	for _, r := range rows {
		levels = append(levels, domain.StockLevel{
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
			MinStock:    r.MinStock,
			Diff:        r.Quantity - r.MinStock,
			BelowMin:    r.BelowMin(),
		})
	}
	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].Diff < levels[j].Diff
	})
	return head(levels, maxStockLevels)
}
