package engine

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/retailbi/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func sale(d time.Time, store, product string, qty int, price string) domain.SaleRecord {
	return domain.SaleRecord{
		Date:        d,
		Store:       store,
		ProductName: product,
		Quantity:    qty,
		UnitPrice:   decimal.RequireFromString(price),
	}
}

func sampleSales() []domain.SaleRecord {
	return []domain.SaleRecord{
		sale(date(2024, time.January, 10), "Store_1", "Widget", 3, "10"),
		sale(date(2024, time.January, 31), "Store_2", "Gadget", 1, "25"),
		sale(date(2024, time.February, 1), "Store_1", "Widget", 2, "10"),
		sale(date(2024, time.February, 14), "Store_3", "Gizmo", 4, "5"),
		sale(date(2024, time.February, 28), "Store_2", "Widget", 1, "12"),
		sale(date(2024, time.March, 1), "Store_1", "Gadget", 2, "25"),
		sale(date(2024, time.March, 20), "Store_3", "Widget", 5, "9.5"),
	}
}

func TestFilterEmptySpecIsIdentity(t *testing.T) {
	in := sampleSales()
	out, err := Filter(domain.SaleSchema, in, domain.FilterSpec{})
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("expected identity, got %+v", out)
	}
	if len(out) > 0 && &out[0] == &in[0] {
		t.Error("expected a copy, not the input slice")
	}
}

func TestFilterDateRange(t *testing.T) {
	spec := domain.FilterSpec{}.WithDate("date", ptr(date(2024, time.February, 1)), ptr(date(2024, time.February, 28)))

	out, err := Filter(domain.SaleSchema, sampleSales(), spec)
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 February rows, got %d", len(out))
	}
	for _, r := range out {
		if r.Date.Month() != time.February {
			t.Errorf("unexpected row outside February: %v", r.Date)
		}
	}

	months, err := Aggregate(domain.SaleSchema, out, AggregationSpec{
		GroupBy:  "date",
		Bucket:   BucketMonth,
		Measures: []Measure{{Field: "quantity", Reducer: Sum}},
	})
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if len(months) != 1 || months[0].Key != "2024-02-01" {
		t.Fatalf("expected a single February bucket, got %+v", months)
	}
}

func TestFilterDateBoundsIgnoreTimeOfDay(t *testing.T) {
	in := []domain.SaleRecord{
		sale(time.Date(2024, time.February, 28, 23, 15, 0, 0, time.UTC), "Store_1", "Widget", 1, "1"),
	}
	to := time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)

	out, err := Filter(domain.SaleSchema, in, domain.FilterSpec{}.WithDate("date", nil, &to))
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected inclusive calendar-day bound, got %d rows", len(out))
	}
}

func TestFilterEmptyMembershipSelectsNothing(t *testing.T) {
	spec := domain.FilterSpec{}.WithMember("store", []string{})

	out, err := Filter(domain.SaleSchema, sampleSales(), spec)
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(out))
	}
}

func TestFilterIsStableSubsequenceAndIdempotent(t *testing.T) {
	in := sampleSales()
	spec := domain.FilterSpec{}.
		WithMember("store", []string{"Store_1", "Store_3"}).
		WithSearch("product_name", "WID")

	once, err := Filter(domain.SaleSchema, in, spec)
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	twice, err := Filter(domain.SaleSchema, once, spec)
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("filter is not idempotent: %+v vs %+v", once, twice)
	}

	want := []domain.SaleRecord{in[0], in[2], in[6]}
	if !reflect.DeepEqual(once, want) {
		t.Fatalf("unexpected result %+v", once)
	}
}

func TestFilterBlankSearchIsIgnored(t *testing.T) {
	in := sampleSales()
	out, err := Filter(domain.SaleSchema, in, domain.FilterSpec{}.WithSearch("product_name", "   "))
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected blank search to keep all rows, got %d", len(out))
	}
}

func TestFilterFlag(t *testing.T) {
	stock := []domain.StockRecord{
		{ProductName: "A", Quantity: 5, MinStock: 10},
		{ProductName: "B", Quantity: 10, MinStock: 10},
		{ProductName: "C", Quantity: 0, MinStock: 1},
	}

	out, err := Filter(domain.StockSchema, stock, domain.FilterSpec{}.WithFlag("below_min", true))
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	if len(out) != 2 || out[0].ProductName != "A" || out[1].ProductName != "C" {
		t.Fatalf("unexpected below-min rows %+v", out)
	}
}

func TestCompileRejectsUnknownAndMistypedFields(t *testing.T) {
	specs := map[string]domain.FilterSpec{
		"unknown member":  domain.FilterSpec{}.WithMember("colour", []string{"red"}),
		"numeric member":  domain.FilterSpec{}.WithMember("quantity", []string{"1"}),
		"text date range": domain.FilterSpec{}.WithDate("store", nil, nil),
		"missing flag":    domain.FilterSpec{}.WithFlag("below_min", true),
	}

	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			_, err := Compile(domain.SaleSchema, spec)
			if !errors.Is(err, domain.ErrUnknownField) {
				t.Fatalf("expected ErrUnknownField, got %v", err)
			}
		})
	}
}
