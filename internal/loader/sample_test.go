package loader

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/retailbi/internal/domain"
)

func TestGenerateDeterministic(t *testing.T) {
	opts := SampleOptions{Seed: 7, Products: 10, Days: 20}

	if !reflect.DeepEqual(GenerateStock(opts), GenerateStock(opts)) {
		t.Error("stock generation is not deterministic")
	}
	if !reflect.DeepEqual(GenerateSales(opts), GenerateSales(opts)) {
		t.Error("sales generation is not deterministic")
	}
	if !reflect.DeepEqual(GeneratePurchases(opts), GeneratePurchases(opts)) {
		t.Error("purchases generation is not deterministic")
	}

	other := opts
	other.Seed = 8
	if reflect.DeepEqual(GenerateSales(opts), GenerateSales(other)) {
		t.Error("different seeds produced identical sales")
	}
}

func TestGenerateStockShape(t *testing.T) {
	stock := GenerateStock(SampleOptions{})
	if len(stock) != 80 {
		t.Fatalf("expected 80 default products, got %d", len(stock))
	}
	for i, r := range stock {
		if r.ProductName != productName(i+1) {
			t.Fatalf("unexpected product name %q at %d", r.ProductName, i)
		}
		if r.MinStock < 10 || r.MinStock >= 30 {
			t.Errorf("min_stock out of range: %d", r.MinStock)
		}
		if r.UnitCost.LessThan(decimal.NewFromInt(10)) || r.UnitCost.GreaterThan(decimal.NewFromInt(500)) {
			t.Errorf("unexpected unit cost %s", r.UnitCost)
		}
		if !strings.HasPrefix(r.Supplier, "Supplier ") {
			t.Errorf("unexpected supplier %q", r.Supplier)
		}
	}
	if !stock[0].LastUpdate.Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected first last_update %v", stock[0].LastUpdate)
	}
}

func TestGeneratedActivityJoinsStock(t *testing.T) {
	opts := SampleOptions{Seed: 42, Products: 12, Days: 30}
	names := make(map[string]bool)
	for _, r := range GenerateStock(opts) {
		names[r.ProductName] = true
	}

	sales := GenerateSales(opts)
	if len(sales) == 0 {
		t.Fatal("expected some sales")
	}
	for _, r := range sales {
		if !names[r.ProductName] {
			t.Fatalf("sale references unknown product %q", r.ProductName)
		}
		if r.Quantity < 1 {
			t.Fatalf("sale quantity below 1: %d", r.Quantity)
		}
	}
	for _, r := range GeneratePurchases(opts) {
		if !names[r.ProductName] {
			t.Fatalf("purchase references unknown product %q", r.ProductName)
		}
		if r.DeliveryDays < 1 || r.DeliveryDays > 29 {
			t.Fatalf("delivery_days out of range: %d", r.DeliveryDays)
		}
	}
}

func TestSampleDatasetIDs(t *testing.T) {
	l := newTestLoader()
	a, err := l.Sample(domain.KindSales, SampleOptions{Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	b, err := l.Sample(domain.KindSales, SampleOptions{Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	c, err := l.Sample(domain.KindSales, SampleOptions{Seed: 2})
	if err != nil {
		t.Fatal(err)
	}

	if a.Sales.ID != b.Sales.ID {
		t.Error("equal options should share a dataset id")
	}
	if a.Sales.ID == c.Sales.ID {
		t.Error("different seeds should not share a dataset id")
	}
	if a.Sales.Source != "sample" {
		t.Errorf("unexpected source %q", a.Sales.Source)
	}
}
