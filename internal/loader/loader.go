// Package loader parses uploaded CSV and spreadsheet files into typed
// datasets, back-filling absent columns with fixed defaults.
package loader

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/retailbi/internal/domain"
)

var (
	errEmptyInput  = errors.New("input is empty")
	errNoSheets    = errors.New("spreadsheet has no sheets")
	errNotTabular  = errors.New("input is neither CSV nor a spreadsheet")
	zipMagicNumber = []byte("PK\x03\x04")
)

// Loaded is the result of loading one file. Exactly one of the dataset
// pointers is set, matching Kind.
type Loaded struct {
	Kind      domain.Kind
	Purchases *domain.Dataset[domain.PurchaseRecord]
	Stock     *domain.Dataset[domain.StockRecord]
	Sales     *domain.Dataset[domain.SaleRecord]
}

// Info summarises whichever dataset was loaded.
func (l Loaded) Info() domain.DatasetInfo {
	switch l.Kind {
	case domain.KindPurchases:
		return l.Purchases.Info()
	case domain.KindStock:
		return l.Stock.Info()
	case domain.KindSales:
		return l.Sales.Info()
	}
	return domain.DatasetInfo{}
}

// Loader turns raw bytes into datasets. It is safe for concurrent use.
type Loader struct {
	now func() time.Time
}

// Option configures a Loader.
type Option func(*Loader)

// WithClock overrides the clock used for "today" defaults.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

func New(opts ...Option) *Loader {
	l := &Loader{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) today() time.Time {
	return truncateDay(l.now())
}

// Load reads r once and parses it as the given dataset kind.
func (l *Loader) Load(ctx context.Context, kind domain.Kind, filename string, r io.Reader) (Loaded, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Loaded{}, &domain.LoadError{Kind: kind, Filename: filename, Err: err}
	}
	return l.LoadBytes(ctx, kind, filename, data)
}

// LoadBytes parses an in-memory file as the given dataset kind.
func (l *Loader) LoadBytes(ctx context.Context, kind domain.Kind, filename string, data []byte) (Loaded, error) {
	if err := ctx.Err(); err != nil {
		return Loaded{}, err
	}

	t, err := readTable(filename, data)
	if err != nil {
		log.Error().Err(err).Str("kind", string(kind)).Str("source", filename).Msg("Failed to read dataset")
		return Loaded{}, &domain.LoadError{Kind: kind, Filename: filename, Err: err}
	}

	id := contentID(kind, data)
	out := Loaded{Kind: kind}
	switch kind {
	case domain.KindPurchases:
		out.Purchases = newDataset(id, kind, filename, l.now(), l.purchasesFrom(t))
	case domain.KindStock:
		out.Stock = newDataset(id, kind, filename, l.now(), l.stockFrom(t))
	case domain.KindSales:
		out.Sales = newDataset(id, kind, filename, l.now(), l.salesFrom(t))
	default:
		return Loaded{}, fmt.Errorf("%w: %s", domain.ErrUnknownKind, kind)
	}

	info := out.Info()
	log.Info().
		Str("kind", string(kind)).
		Str("source", filename).
		Str("dataset_id", info.ID).
		Int("rows", info.Rows).
		Msg("Dataset loaded")

	return out, nil
}

// LoadPurchases is Load for the purchases kind.
func (l *Loader) LoadPurchases(ctx context.Context, filename string, r io.Reader) (*domain.Dataset[domain.PurchaseRecord], error) {
	out, err := l.Load(ctx, domain.KindPurchases, filename, r)
	return out.Purchases, err
}

// LoadStock is Load for the stock kind.
func (l *Loader) LoadStock(ctx context.Context, filename string, r io.Reader) (*domain.Dataset[domain.StockRecord], error) {
	out, err := l.Load(ctx, domain.KindStock, filename, r)
	return out.Stock, err
}

// LoadSales is Load for the sales kind.
func (l *Loader) LoadSales(ctx context.Context, filename string, r io.Reader) (*domain.Dataset[domain.SaleRecord], error) {
	out, err := l.Load(ctx, domain.KindSales, filename, r)
	return out.Sales, err
}

func newDataset[T any](id string, kind domain.Kind, source string, now time.Time, records []T) *domain.Dataset[T] {
	return &domain.Dataset[T]{
		ID:       id,
		Kind:     kind,
		Source:   source,
		LoadedAt: now,
		Records:  records,
	}
}

// contentID hashes the raw input so identical uploads share cache entries.
func contentID(kind domain.Kind, data []byte) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func readTable(filename string, data []byte) (*table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmptyInput
	}

	zipped := bytes.HasPrefix(data, zipMagicNumber)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return readSpreadsheet(data)
	case ".csv", ".txt":
		if !zipped {
			return readCSV(data)
		}
	}

	if zipped {
		return readSpreadsheet(data)
	}
	t, csvErr := readCSV(data)
	if csvErr == nil {
		return t, nil
	}
	if t, err := readSpreadsheet(data); err == nil {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %v", errNotTabular, csvErr)
}

func readCSV(data []byte) (*table, error) {
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return nil, errNotTabular
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyInput
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	t := &table{header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			log.Warn().Err(err).Int("line", parseErr.Line).Msg("skipping malformed csv row")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if blankRow(record) {
			continue
		}
		t.rows = append(t.rows, record)
	}
	return t, nil
}

// readSpreadsheet reads the first sheet of an xlsx workbook with raw cell
// values, so date cells arrive as Excel serial numbers.
func readSpreadsheet(data []byte) (*table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errNoSheets
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var t *table
	for rows.Next() {
		record, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read row from sheet %s: %w", sheet, err)
		}
		if t == nil {
			if blankRow(record) {
				continue
			}
			t = &table{header: record}
			continue
		}
		if blankRow(record) {
			continue
		}
		t.rows = append(t.rows, record)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("iterate rows in sheet %s: %w", sheet, err)
	}
	if t == nil {
		return nil, errEmptyInput
	}
	return t, nil
}

func (l *Loader) purchasesFrom(t *table) []domain.PurchaseRecord {
	today := l.today()
	idxDate := t.col(dateColumns...)
	idxSupplier := t.col(supplierColumns...)
	idxProduct := t.col(productNameColumns...)
	idxQty := t.col(quantityColumns...)
	idxPrice := t.col(unitPriceColumns...)
	idxDelivery := t.col(deliveryDaysColumns...)

	out := make([]domain.PurchaseRecord, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, domain.PurchaseRecord{
			Date:         toDate(cell(row, idxDate), today),
			Supplier:     toText(cell(row, idxSupplier), "Unknown"),
			ProductName:  cell(row, idxProduct),
			Quantity:     toInt(cell(row, idxQty), 1),
			UnitPrice:    toDecimal(cell(row, idxPrice), decimal.Zero),
			DeliveryDays: toInt(cell(row, idxDelivery), 0),
		})
	}
	return out
}

func (l *Loader) stockFrom(t *table) []domain.StockRecord {
	today := l.today()
	idxID := t.col(productIDColumns...)
	idxProduct := t.col(productNameColumns...)
	idxCategory := t.col(categoryColumns...)
	idxSupplier := t.col(supplierColumns...)
	idxQty := t.col(quantityColumns...)
	idxMin := t.col(minStockColumns...)
	idxCost := t.col(unitCostColumns...)
	idxUpdated := t.col(lastUpdateColumns...)

	out := make([]domain.StockRecord, 0, len(t.rows))
	for i, row := range t.rows {
		out = append(out, domain.StockRecord{
			ProductID:   toText(cell(row, idxID), fmt.Sprintf("PID%d", i+1)),
			ProductName: cell(row, idxProduct),
			Category:    toText(cell(row, idxCategory), "Uncategorized"),
			Supplier:    toText(cell(row, idxSupplier), "Unknown"),
			Quantity:    toInt(cell(row, idxQty), 0),
			MinStock:    toInt(cell(row, idxMin), 0),
			UnitCost:    toDecimal(cell(row, idxCost), decimal.Zero),
			LastUpdate:  toDate(cell(row, idxUpdated), today),
		})
	}
	return out
}

func (l *Loader) salesFrom(t *table) []domain.SaleRecord {
	today := l.today()
	idxDate := t.col(dateColumns...)
	idxStore := t.col(storeColumns...)
	idxProduct := t.col(productNameColumns...)
	idxQty := t.col(quantityColumns...)
	idxPrice := t.col(unitPriceColumns...)

	out := make([]domain.SaleRecord, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, domain.SaleRecord{
			Date:        toDate(cell(row, idxDate), today),
			Store:       toText(cell(row, idxStore), "Store_1"),
			ProductName: cell(row, idxProduct),
			Quantity:    toInt(cell(row, idxQty), 1),
			UnitPrice:   toDecimal(cell(row, idxPrice), decimal.Zero),
		})
	}
	return out
}
