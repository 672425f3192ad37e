package service

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/retailbi/internal/domain"
	"github.com/andresuchdata/retailbi/internal/workspace"
)

func salesRows() []domain.SaleRecord {
	return []domain.SaleRecord{
		{Date: day(time.January, 3), Store: "Store_1", ProductName: "Widget", Quantity: 3, UnitPrice: dec("10")},
		{Date: day(time.January, 9), Store: "Store_2", ProductName: "Widget", Quantity: 1, UnitPrice: dec("10")},
		{Date: day(time.February, 14), Store: "Store_2", ProductName: "Gadget", Quantity: 5, UnitPrice: dec("20")},
	}
}

func TestSalesDashboard(t *testing.T) {
	svc, _ := newTestService(workspace.Snapshot{Sales: dataset(domain.KindSales, "v1", salesRows())})

	got, err := svc.Sales(context.Background(), domain.SalesFilter{})
	if err != nil {
		t.Fatalf("Sales returned error: %v", err)
	}

	if m := metric(t, got.Metrics, "total_revenue"); m.Value != 140 || m.Display != "R$ 140.00" {
		t.Errorf("unexpected revenue metric %+v", m)
	}
	if m := metric(t, got.Metrics, "total_quantity"); m.Value != 9 {
		t.Errorf("unexpected quantity metric %+v", m)
	}
	if m := metric(t, got.Metrics, "products"); m.Value != 2 {
		t.Errorf("unexpected products metric %+v", m)
	}

	if k := keys(got.RevenueByStore); !equalStrings(k, []string{"Store_2", "Store_1"}) || got.RevenueByStore[0].Value("revenue") != 110 {
		t.Errorf("unexpected revenue by store %+v", got.RevenueByStore)
	}
	if k := keys(got.TopProducts); !equalStrings(k, []string{"Gadget", "Widget"}) {
		t.Errorf("unexpected top products %v", k)
	}
	if len(got.Monthly) != 2 || got.Monthly[0].Value("quantity") != 4 || got.Monthly[1].Value("quantity") != 5 {
		t.Errorf("unexpected monthly quantities %+v", got.Monthly)
	}
	if !equalStrings(got.Options["stores"], []string{"Store_1", "Store_2"}) {
		t.Errorf("unexpected store options %v", got.Options["stores"])
	}
}

func TestSalesFilterSelections(t *testing.T) {
	svc, _ := newTestService(workspace.Snapshot{Sales: dataset(domain.KindSales, "v1", salesRows())})
	ctx := context.Background()

	tests := []struct {
		name   string
		filter domain.SalesFilter
		rows   int
	}{
		{"no filter", domain.SalesFilter{}, 3},
		{"empty product selection keeps all", domain.SalesFilter{Products: domain.Select()}, 3},
		{"empty store selection keeps none", domain.SalesFilter{Stores: domain.Select()}, 0},
		{"one store", domain.SalesFilter{Stores: domain.Select("Store_2")}, 2},
		{"product and store", domain.SalesFilter{Stores: domain.Select("Store_2"), Products: domain.Select("Widget")}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Sales(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Sales returned error: %v", err)
			}
			if got.Rows != tt.rows {
				t.Errorf("expected %d rows, got %d", tt.rows, got.Rows)
			}
			rows, err := svc.FilteredSales(ctx, tt.filter)
			if err != nil {
				t.Fatalf("FilteredSales returned error: %v", err)
			}
			if len(rows) != tt.rows {
				t.Errorf("FilteredSales: expected %d rows, got %d", tt.rows, len(rows))
			}
		})
	}
}
