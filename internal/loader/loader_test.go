package loader

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/retailbi/internal/domain"
)

var fixedNow = time.Date(2025, time.March, 14, 15, 30, 0, 0, time.UTC)

func newTestLoader() *Loader {
	return New(WithClock(func() time.Time { return fixedNow }))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLoadPurchasesCSV(t *testing.T) {
	input := "date,supplier,product_name,quantity,unit_price,delivery_days\n" +
		"2024-01-05,Supplier A,Widget,10,2.50,4\n" +
		"2024-02-01,Supplier B,Gadget,3,10,7\n"

	ds, err := newTestLoader().LoadPurchases(context.Background(), "purchases.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadPurchases returned error: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", ds.Len())
	}

	got := ds.Records[0]
	if !got.Date.Equal(day(2024, time.January, 5)) {
		t.Errorf("unexpected date %v", got.Date)
	}
	if got.Supplier != "Supplier A" || got.ProductName != "Widget" || got.Quantity != 10 || got.DeliveryDays != 4 {
		t.Errorf("unexpected record %+v", got)
	}
	if !got.UnitPrice.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("expected unit price 2.5, got %s", got.UnitPrice)
	}
	if !got.TotalCost().Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected total cost 25, got %s", got.TotalCost())
	}
	if ds.ID == "" || ds.Kind != domain.KindPurchases || ds.Source != "purchases.csv" {
		t.Errorf("unexpected dataset metadata %+v", ds.Info())
	}
}

func TestLoadPurchasesMissingDeliveryDays(t *testing.T) {
	input := "date,supplier,product_name,quantity,unit_price\n" +
		"2024-01-05,Supplier A,Widget,10,2.50\n" +
		"2024-01-06,Supplier A,Gizmo,1,3\n"

	ds, err := newTestLoader().LoadPurchases(context.Background(), "p.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadPurchases returned error: %v", err)
	}
	for _, r := range ds.Records {
		if r.DeliveryDays != 0 {
			t.Fatalf("expected delivery_days 0 for every row, got %+v", r)
		}
	}
}

func TestLoadPurchasesBackfill(t *testing.T) {
	input := "product_name\nWidget\n"

	ds, err := newTestLoader().LoadPurchases(context.Background(), "p.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadPurchases returned error: %v", err)
	}
	got := ds.Records[0]
	if got.Supplier != "Unknown" || got.Quantity != 1 || !got.UnitPrice.IsZero() || got.DeliveryDays != 0 {
		t.Errorf("unexpected defaults %+v", got)
	}
	if !got.Date.Equal(day(2025, time.March, 14)) {
		t.Errorf("expected date to default to today, got %v", got.Date)
	}
}

func TestLoadStockBackfill(t *testing.T) {
	input := "product_name,quantity\nWidget,5\nGadget,\n"

	ds, err := newTestLoader().LoadStock(context.Background(), "stock.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadStock returned error: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", ds.Len())
	}

	first, second := ds.Records[0], ds.Records[1]
	if first.ProductID != "PID1" || second.ProductID != "PID2" {
		t.Errorf("expected generated product ids, got %q and %q", first.ProductID, second.ProductID)
	}
	if first.Category != "Uncategorized" || first.Supplier != "Unknown" {
		t.Errorf("unexpected text defaults %+v", first)
	}
	if first.Quantity != 5 || second.Quantity != 0 || first.MinStock != 0 || !first.UnitCost.IsZero() {
		t.Errorf("unexpected numeric values %+v %+v", first, second)
	}
	if !first.LastUpdate.Equal(day(2025, time.March, 14)) {
		t.Errorf("expected last_update today, got %v", first.LastUpdate)
	}
}

func TestLoadSalesBackfill(t *testing.T) {
	input := "product_name,unit_price\nWidget,12.5\n"

	ds, err := newTestLoader().LoadSales(context.Background(), "sales.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadSales returned error: %v", err)
	}
	got := ds.Records[0]
	if got.Store != "Store_1" || got.Quantity != 1 {
		t.Errorf("unexpected defaults %+v", got)
	}
	if !got.Revenue().Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("expected revenue 12.5, got %s", got.Revenue())
	}
}

func TestLoadStockCoercion(t *testing.T) {
	input := "product_id,product_name,category,supplier,quantity,min_stock,unit_cost,last_update\n" +
		"1,Widget,Tools,Supplier A,-4,abc,-3.5,not a date\n" +
		"2,Gadget,Tools,Supplier A,12.9,\"1,200\",\"1.234,56\",15/02/2024\n"

	ds, err := newTestLoader().LoadStock(context.Background(), "stock.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadStock returned error: %v", err)
	}

	bad, good := ds.Records[0], ds.Records[1]
	if bad.Quantity != 0 || bad.MinStock != 0 || !bad.UnitCost.IsZero() {
		t.Errorf("expected negative and unparsable values to become 0, got %+v", bad)
	}
	if !bad.LastUpdate.Equal(day(2025, time.March, 14)) {
		t.Errorf("expected unparsable date to become today, got %v", bad.LastUpdate)
	}
	if good.Quantity != 12 || good.MinStock != 1200 {
		t.Errorf("unexpected integer coercion %+v", good)
	}
	if !good.UnitCost.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("expected unit cost 1234.56, got %s", good.UnitCost)
	}
	if !good.LastUpdate.Equal(day(2024, time.February, 15)) {
		t.Errorf("expected day-first date, got %v", good.LastUpdate)
	}
}

func TestLoadHeaderAliases(t *testing.T) {
	input := "\xef\xbb\xbfData, Loja ,Product Name,QTY,Unit-Price\n" +
		"2024-03-01,Store_2,Widget,2,9.90\n" +
		" , , , , \n"

	ds, err := newTestLoader().LoadSales(context.Background(), "sales.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadSales returned error: %v", err)
	}
	if ds.Len() != 1 {
		t.Fatalf("expected blank rows to be skipped, got %d rows", ds.Len())
	}
	got := ds.Records[0]
	if got.Store != "Store_2" || got.ProductName != "Widget" || got.Quantity != 2 || !got.Date.Equal(day(2024, time.March, 1)) {
		t.Errorf("unexpected record %+v", got)
	}
}

func TestLoadSalesBareQuote(t *testing.T) {
	input := "date,store,product_name,quantity,unit_price\n" +
		"2024-01-02,Store_1,12\" Pipe,3,10\n" +
		"2024-01-03,Store_2,Widget,1,5\n"

	ds, err := newTestLoader().LoadSales(context.Background(), "sales.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadSales returned error: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", ds.Len())
	}
	got := ds.Records[0]
	if got.ProductName != `12" Pipe` || got.Quantity != 3 || got.Store != "Store_1" {
		t.Errorf("unexpected record %+v", got)
	}
	if ds.Records[1].ProductName != "Widget" {
		t.Errorf("expected the following row intact, got %+v", ds.Records[1])
	}
}

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cellName, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func TestLoadSpreadsheet(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"date", "store", "product_name", "quantity", "unit_price"},
		{45292, "Store_1", "Widget", 3, 12.5},
		{"2024-01-02", "Store_2", "Gadget", 1, 4},
	})

	for _, name := range []string{"sales.xlsx", "upload.bin", ""} {
		t.Run(name, func(t *testing.T) {
			out, err := newTestLoader().LoadBytes(context.Background(), domain.KindSales, name, data)
			if err != nil {
				t.Fatalf("LoadBytes returned error: %v", err)
			}
			if out.Sales.Len() != 2 {
				t.Fatalf("expected 2 rows, got %d", out.Sales.Len())
			}
			first := out.Sales.Records[0]
			if !first.Date.Equal(day(2024, time.January, 1)) {
				t.Errorf("expected Excel serial to parse as 2024-01-01, got %v", first.Date)
			}
			if first.Quantity != 3 || !first.UnitPrice.Equal(decimal.RequireFromString("12.5")) {
				t.Errorf("unexpected record %+v", first)
			}
			if !out.Sales.Records[1].Date.Equal(day(2024, time.January, 2)) {
				t.Errorf("unexpected second date %v", out.Sales.Records[1].Date)
			}
		})
	}
}

func TestLoadRejectsNonTabularInput(t *testing.T) {
	cases := map[string][]byte{
		"empty":      nil,
		"whitespace": []byte("  \n\n"),
		"binary":     {0x00, 0x01, 0x02, 0xff, 0xfe},
		"bad zip":    append([]byte("PK\x03\x04"), make([]byte, 32)...),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newTestLoader().LoadBytes(context.Background(), domain.KindStock, "upload", data)
			if err == nil {
				t.Fatal("expected error")
			}
			var le *domain.LoadError
			if !errors.As(err, &le) {
				t.Fatalf("expected *domain.LoadError, got %T", err)
			}
			if le.Kind != domain.KindStock {
				t.Errorf("unexpected kind %s", le.Kind)
			}
		})
	}
}

func TestLoadUnknownKind(t *testing.T) {
	_, err := newTestLoader().LoadBytes(context.Background(), domain.Kind("returns"), "x.csv", []byte("a\n1\n"))
	if !errors.Is(err, domain.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestLoadCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestLoader().LoadBytes(ctx, domain.KindStock, "x.csv", []byte("a\n1\n"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestContentIDStable(t *testing.T) {
	data := []byte("product_name\nWidget\n")
	l := newTestLoader()

	a, err := l.LoadBytes(context.Background(), domain.KindStock, "a.csv", data)
	if err != nil {
		t.Fatal(err)
	}
	b, err := l.LoadBytes(context.Background(), domain.KindStock, "b.csv", data)
	if err != nil {
		t.Fatal(err)
	}
	c, err := l.LoadBytes(context.Background(), domain.KindSales, "a.csv", data)
	if err != nil {
		t.Fatal(err)
	}

	if a.Stock.ID != b.Stock.ID {
		t.Errorf("identical bytes should share an id: %s vs %s", a.Stock.ID, b.Stock.ID)
	}
	if a.Stock.ID == c.Sales.ID {
		t.Errorf("different kinds should not share an id")
	}
}
