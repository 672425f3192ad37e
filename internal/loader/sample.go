package loader

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/retailbi/internal/domain"
)

// SampleOptions sizes the synthetic datasets. Zero fields take the defaults
// from DefaultSampleOptions.
type SampleOptions struct {
	Seed      uint64    `json:"seed"`
	Products  int       `json:"products"`
	Stores    int       `json:"stores"`
	Suppliers int       `json:"suppliers"`
	Days      int       `json:"days"`
	Start     time.Time `json:"start"`
}

// DefaultSampleOptions returns the stock 360° sample sizes.
func DefaultSampleOptions() SampleOptions {
	return SampleOptions{
		Seed:      42,
		Products:  80,
		Stores:    5,
		Suppliers: 5,
		Days:      365,
		Start:     time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (o SampleOptions) withDefaults() SampleOptions {
	def := DefaultSampleOptions()
	if o.Products <= 0 {
		o.Products = def.Products
	}
	if o.Stores <= 0 {
		o.Stores = def.Stores
	}
	if o.Suppliers <= 0 {
		o.Suppliers = def.Suppliers
	}
	if o.Days <= 0 {
		o.Days = def.Days
	}
	if o.Start.IsZero() {
		o.Start = def.Start
	}
	o.Start = truncateDay(o.Start)
	return o
}

var sampleCategories = []string{"Electronics", "Food", "Hygiene", "Tools", "Textile"}

// Stream salts keep the three generators independent for one seed.
const (
	stockStream uint64 = iota + 1
	salesStream
	purchasesStream
)

func productName(i int) string {
	return fmt.Sprintf("Product_%03d", i)
}

func supplierName(i int) string {
	if i < 26 {
		return "Supplier " + string(rune('A'+i))
	}
	return "Supplier " + strconv.Itoa(i+1)
}

func storeName(i int) string {
	return fmt.Sprintf("Store_%d", i+1)
}

// GenerateStock returns one stock row per product.
func GenerateStock(opts SampleOptions) []domain.StockRecord {
	opts = opts.withDefaults()
	rng := rand.New(rand.NewPCG(opts.Seed, stockStream))

	out := make([]domain.StockRecord, 0, opts.Products)
	for i := 1; i <= opts.Products; i++ {
		out = append(out, domain.StockRecord{
			ProductID:   strconv.Itoa(i),
			ProductName: productName(i),
			Category:    sampleCategories[rng.IntN(len(sampleCategories))],
			Supplier:    supplierName(rng.IntN(opts.Suppliers)),
			Quantity:    poisson(rng, 50),
			MinStock:    10 + rng.IntN(20),
			UnitCost:    uniformPrice(rng, 10, 500),
			LastUpdate:  opts.Start.AddDate(0, 0, i-1),
		})
	}
	return out
}

// GenerateSales returns a Poisson(15) number of sales lines per day.
func GenerateSales(opts SampleOptions) []domain.SaleRecord {
	opts = opts.withDefaults()
	rng := rand.New(rand.NewPCG(opts.Seed, salesStream))

	var out []domain.SaleRecord
	for day := 0; day < opts.Days; day++ {
		date := opts.Start.AddDate(0, 0, day)
		for n := poisson(rng, 15); n > 0; n-- {
			out = append(out, domain.SaleRecord{
				Date:        date,
				Store:       storeName(rng.IntN(opts.Stores)),
				ProductName: productName(1 + rng.IntN(opts.Products)),
				Quantity:    poisson(rng, 3) + 1,
				UnitPrice:   uniformPrice(rng, 20, 400),
			})
		}
	}
	return out
}

// GeneratePurchases returns a Poisson(8) number of purchase lines per day.
func GeneratePurchases(opts SampleOptions) []domain.PurchaseRecord {
	opts = opts.withDefaults()
	rng := rand.New(rand.NewPCG(opts.Seed, purchasesStream))

	var out []domain.PurchaseRecord
	for day := 0; day < opts.Days; day++ {
		date := opts.Start.AddDate(0, 0, day)
		for n := poisson(rng, 8); n > 0; n-- {
			out = append(out, domain.PurchaseRecord{
				Date:         date,
				Supplier:     supplierName(rng.IntN(opts.Suppliers)),
				ProductName:  productName(1 + rng.IntN(opts.Products)),
				Quantity:     poisson(rng, 5) + 1,
				UnitPrice:    uniformPrice(rng, 15, 350),
				DeliveryDays: 1 + rng.IntN(29),
			})
		}
	}
	return out
}

// Sample builds a dataset of the given kind from the generators. The
// dataset ID depends only on kind and options.
func (l *Loader) Sample(kind domain.Kind, opts SampleOptions) (Loaded, error) {
	opts = opts.withDefaults()
	id := contentID(kind, []byte(fmt.Sprintf("sample:%d:%d:%d:%d:%d:%s",
		opts.Seed, opts.Products, opts.Stores, opts.Suppliers, opts.Days, opts.Start.Format(domain.DateLayout))))
	source := "sample"

	out := Loaded{Kind: kind}
	switch kind {
	case domain.KindPurchases:
		out.Purchases = newDataset(id, kind, source, l.now(), GeneratePurchases(opts))
	case domain.KindStock:
		out.Stock = newDataset(id, kind, source, l.now(), GenerateStock(opts))
	case domain.KindSales:
		out.Sales = newDataset(id, kind, source, l.now(), GenerateSales(opts))
	default:
		return Loaded{}, fmt.Errorf("%w: %s", domain.ErrUnknownKind, kind)
	}
	return out, nil
}

// poisson draws from a Poisson distribution using Knuth's method, which is
// fine for the small means used here.
func poisson(rng *rand.Rand, mean float64) int {
	limit := math.Exp(-mean)
	k, p := 0, 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

func uniformPrice(rng *rand.Rand, lo, hi float64) decimal.Decimal {
	return decimal.NewFromFloat(lo + rng.Float64()*(hi-lo)).Round(2)
}
