package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/retailbi/internal/domain"
	"github.com/andresuchdata/retailbi/internal/engine"
	"github.com/andresuchdata/retailbi/internal/loader"
)

var sampleOpts = loader.SampleOptions{Seed: 3, Products: 6, Days: 10}

func newLoader() *loader.Loader {
	now := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	return loader.New(loader.WithClock(func() time.Time { return now }))
}

func TestPurchasesRoundTrip(t *testing.T) {
	want := loader.GeneratePurchases(sampleOpts)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, Purchases(want)); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}
	got, err := newLoader().LoadPurchases(context.Background(), "purchases.csv", &buf)
	if err != nil {
		t.Fatalf("LoadPurchases returned error: %v", err)
	}

	if got.Len() != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), got.Len())
	}
	for i, w := range want {
		g := got.Records[i]
		if !g.Date.Equal(w.Date) || g.Supplier != w.Supplier || g.ProductName != w.ProductName ||
			g.Quantity != w.Quantity || !g.UnitPrice.Equal(w.UnitPrice) || g.DeliveryDays != w.DeliveryDays {
			t.Fatalf("row %d differs: got %+v want %+v", i, g, w)
		}
	}
}

func TestStockRoundTrip(t *testing.T) {
	want := loader.GenerateStock(sampleOpts)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, Stock(want)); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}
	got, err := newLoader().LoadStock(context.Background(), "stock.csv", &buf)
	if err != nil {
		t.Fatalf("LoadStock returned error: %v", err)
	}

	for i, w := range want {
		g := got.Records[i]
		if g.ProductID != w.ProductID || g.ProductName != w.ProductName || g.Category != w.Category ||
			g.Supplier != w.Supplier || g.Quantity != w.Quantity || g.MinStock != w.MinStock ||
			!g.UnitCost.Equal(w.UnitCost) || !g.LastUpdate.Equal(w.LastUpdate) {
			t.Fatalf("row %d differs: got %+v want %+v", i, g, w)
		}
	}
}

func TestSalesRoundTripXLSX(t *testing.T) {
	want := loader.GenerateSales(sampleOpts)

	var buf bytes.Buffer
	if err := Write(&buf, FormatXLSX, Sales(want)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	got, err := newLoader().LoadSales(context.Background(), "sales.xlsx", &buf)
	if err != nil {
		t.Fatalf("LoadSales returned error: %v", err)
	}

	if got.Len() != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), got.Len())
	}
	for i, w := range want {
		g := got.Records[i]
		if !g.Date.Equal(w.Date) || g.Store != w.Store || g.ProductName != w.ProductName ||
			g.Quantity != w.Quantity || !g.UnitPrice.Equal(w.UnitPrice) {
			t.Fatalf("row %d differs: got %+v want %+v", i, g, w)
		}
	}
}

func TestConsolidatedColumns(t *testing.T) {
	rows := engine.Consolidate(
		[]domain.StockRecord{{ProductName: "A", Category: "Tools", Supplier: "S", Quantity: 5, MinStock: 10, UnitCost: decimal.RequireFromString("2")}},
		nil, nil, engine.DefaultThresholds(),
	)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, Consolidated(rows)); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(records))
	}
	if records[0][0] != "product_name" || records[0][14] != "margin" {
		t.Errorf("unexpected header %v", records[0])
	}
	want := []string{"A", "Tools", "S", "5", "10", "2", "0", "0", "0", "0", "0", "10", "true", "false", "0"}
	for i, v := range want {
		if records[1][i] != v {
			t.Errorf("column %s: got %q want %q", records[0][i], records[1][i], v)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatCSV, "csv": FormatCSV, "xlsx": FormatXLSX, "excel": FormatXLSX} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for pdf")
	}
}
