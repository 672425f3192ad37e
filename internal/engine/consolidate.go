package engine

import (
	"github.com/shopspring/decimal"

	"github.com/andresuchdata/retailbi/internal/domain"
)

// Thresholds holds the consolidation policy constants.
type Thresholds struct {
	// OverstockMultiplier flags a product once quantity exceeds this
	// multiple of min_stock.
	OverstockMultiplier float64 `json:"overstock_multiplier"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{OverstockMultiplier: 3}
}

func (t Thresholds) overstock(quantity, minStock int) bool {
	mult := t.OverstockMultiplier
	if mult <= 0 {
		mult = DefaultThresholds().OverstockMultiplier
	}
	return float64(quantity) > mult*float64(minStock)
}

type stockAgg struct {
	first    domain.StockRecord
	rows     int
	quantity int
	minStock int
	value    decimal.Decimal
}

type salesAgg struct {
	quantity int
	revenue  decimal.Decimal
}

type purchasesAgg struct {
	quantity     int
	spend        decimal.Decimal
	deliveryDays int
	rows         int
}

// Consolidate joins per-product sales and purchase aggregates onto stock.
// The result has one row per distinct stock product name, in first-seen
// order. Duplicate stock names are merged first: quantities are summed and
// unit cost becomes the quantity-weighted mean.
func Consolidate(stock []domain.StockRecord, sales []domain.SaleRecord, purchases []domain.PurchaseRecord, th Thresholds) []domain.ConsolidatedProduct {
	stockByName := make(map[string]*stockAgg, len(stock))
	order := make([]string, 0, len(stock))
	for _, r := range stock {
		agg, ok := stockByName[r.ProductName]
		if !ok {
			agg = &stockAgg{first: r}
			stockByName[r.ProductName] = agg
			order = append(order, r.ProductName)
		}
		agg.rows++
		agg.quantity += r.Quantity
		agg.minStock += r.MinStock
		agg.value = agg.value.Add(r.Value())
	}

	soldByName := make(map[string]*salesAgg)
	for _, r := range sales {
		agg, ok := soldByName[r.ProductName]
		if !ok {
			agg = &salesAgg{}
			soldByName[r.ProductName] = agg
		}
		agg.quantity += r.Quantity
		agg.revenue = agg.revenue.Add(r.Revenue())
	}

	boughtByName := make(map[string]*purchasesAgg)
	for _, r := range purchases {
		agg, ok := boughtByName[r.ProductName]
		if !ok {
			agg = &purchasesAgg{}
			boughtByName[r.ProductName] = agg
		}
		agg.quantity += r.Quantity
		agg.spend = agg.spend.Add(r.TotalCost())
		agg.deliveryDays += r.DeliveryDays
		agg.rows++
	}

	out := make([]domain.ConsolidatedProduct, 0, len(order))
	for _, name := range order {
		s := stockByName[name]

		unitCost := s.first.UnitCost
		if s.rows > 1 && s.quantity > 0 {
			unitCost = s.value.Div(decimal.NewFromInt(int64(s.quantity)))
		}

		p := domain.ConsolidatedProduct{
			ProductName:  name,
			Category:     s.first.Category,
			Supplier:     s.first.Supplier,
			Quantity:     s.quantity,
			MinStock:     s.minStock,
			UnitCost:     unitCost,
			RevenueTotal: decimal.Zero,
			SpendTotal:   decimal.Zero,
			StockValue:   s.value,
			StockoutRisk: s.quantity < s.minStock,
			Overstock:    th.overstock(s.quantity, s.minStock),
		}

		if sold, ok := soldByName[name]; ok {
			p.QtySold = sold.quantity
			p.RevenueTotal = sold.revenue
		}
		if bought, ok := boughtByName[name]; ok {
			p.QtyPurchased = bought.quantity
			p.SpendTotal = bought.spend
			if bought.rows > 0 {
				p.AvgLeadTime = float64(bought.deliveryDays) / float64(bought.rows)
			}
		}
		p.Margin = p.RevenueTotal.Sub(unitCost.Mul(decimal.NewFromInt(int64(p.QtySold))))

		out = append(out, p)
	}
	return out
}

// Orphans lists sales and purchase product names that have no stock row,
// in first-seen order. Consolidate drops these.
func Orphans(stock []domain.StockRecord, sales []domain.SaleRecord, purchases []domain.PurchaseRecord) domain.OrphanReport {
	known := make(map[string]struct{}, len(stock))
	for _, r := range stock {
		known[r.ProductName] = struct{}{}
	}

	saleNames := make([]string, len(sales))
	for i, r := range sales {
		saleNames[i] = r.ProductName
	}
	purchaseNames := make([]string, len(purchases))
	for i, r := range purchases {
		purchaseNames[i] = r.ProductName
	}

	return domain.OrphanReport{
		Sales:     unknownNames(known, saleNames),
		Purchases: unknownNames(known, purchaseNames),
	}
}

func unknownNames(known map[string]struct{}, names []string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, name := range names {
		if _, ok := known[name]; ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
