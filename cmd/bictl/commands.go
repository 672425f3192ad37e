package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/retailbi/internal/domain"
	"github.com/andresuchdata/retailbi/internal/engine"
	"github.com/andresuchdata/retailbi/internal/export"
	"github.com/andresuchdata/retailbi/internal/format"
	"github.com/andresuchdata/retailbi/internal/loader"
	"github.com/andresuchdata/retailbi/internal/service"
	"github.com/andresuchdata/retailbi/pkg/logger"
)

func outFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "out",
		Usage: "Output file (.csv or .xlsx); stdout when empty",
	}
}

func datasetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "stock", Usage: "Stock file", EnvVars: []string{"BICTL_STOCK"}},
		&cli.StringFlag{Name: "sales", Usage: "Sales file", EnvVars: []string{"BICTL_SALES"}},
		&cli.StringFlag{Name: "purchases", Usage: "Purchases file", EnvVars: []string{"BICTL_PURCHASES"}},
	}
}

func sampleCommand() *cli.Command {
	return &cli.Command{
		Name:  "sample",
		Usage: "Write a deterministic sample dataset",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Usage: "stock, sales or purchases", Required: true},
			&cli.Uint64Flag{Name: "seed", Usage: "Random seed", Value: 42, EnvVars: []string{"APP_SAMPLE_SEED"}},
			&cli.IntFlag{Name: "products", Usage: "Number of products", Value: 80},
			&cli.IntFlag{Name: "days", Usage: "Days of activity", Value: 365},
			outFlag(),
		},
		Action: runSample,
	}
}

func consolidateCommand() *cli.Command {
	flags := append(datasetFlags(),
		&cli.StringFlag{Name: "from", Usage: "First day (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "to", Usage: "Last day (YYYY-MM-DD)"},
		&cli.Float64Flag{Name: "overstock", Usage: "Overstock multiplier", Value: 3, EnvVars: []string{"APP_OVERSTOCK_MULTIPLIER"}},
		&cli.BoolFlag{Name: "critical-only", Usage: "Only products at stockout risk"},
		outFlag(),
	)
	return &cli.Command{
		Name:   "consolidate",
		Usage:  "Join stock, sales and purchases into one row per product",
		Flags:  flags,
		Action: runConsolidate,
	}
}

func summaryCommand() *cli.Command {
	flags := append(datasetFlags(),
		&cli.StringFlag{Name: "currency", Usage: "Currency symbol", Value: "R$", EnvVars: []string{"APP_CURRENCY_SYMBOL"}},
		&cli.Uint64Flag{Name: "seed", Usage: "Seed for kinds without a file", Value: 42, EnvVars: []string{"APP_SAMPLE_SEED"}},
	)
	return &cli.Command{
		Name:   "summary",
		Usage:  "Log dashboard KPIs; kinds without a file use sample data",
		Flags:  flags,
		Action: runSummary,
	}
}

func runSample(c *cli.Context) error {
	kind, ok := domain.ParseKind(c.String("kind"))
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownKind, c.String("kind"))
	}

	opts := loader.DefaultSampleOptions()
	opts.Seed = c.Uint64("seed")
	opts.Products = c.Int("products")
	opts.Days = c.Int("days")

	loaded, err := loader.New().Sample(kind, opts)
	if err != nil {
		return err
	}

	var t export.Table
	switch kind {
	case domain.KindPurchases:
		t = export.Purchases(loaded.Purchases.Rows())
	case domain.KindStock:
		t = export.Stock(loaded.Stock.Rows())
	case domain.KindSales:
		t = export.Sales(loaded.Sales.Rows())
	}
	return writeOutput(c.App.Writer, c.String("out"), t)
}

func runConsolidate(c *cli.Context) error {
	snap, err := loadFiles(c.Context, loader.New(), filesFrom(c))
	if err != nil {
		return err
	}
	if err := snap.Require(domain.KindStock); err != nil {
		return fmt.Errorf("--stock is required: %w", err)
	}

	period, err := periodFrom(c.String("from"), c.String("to"))
	if err != nil {
		return err
	}

	svc := service.NewDashboardService(staticSource(snap), nil, format.New(""), engine.Thresholds{OverstockMultiplier: c.Float64("overstock")})
	filter := domain.ConsolidatedFilter{Period: period}

	var rows []domain.ConsolidatedProduct
	if c.Bool("critical-only") {
		rows, err = svc.CriticalRows(c.Context, filter)
	} else {
		rows, err = svc.ConsolidatedRows(c.Context, filter)
	}
	if err != nil {
		return err
	}

	logger.Log.Info().Int("rows", len(rows)).Msg("Consolidation finished")
	return writeOutput(c.App.Writer, c.String("out"), export.Consolidated(rows))
}

func runSummary(c *cli.Context) error {
	l := loader.New()
	snap, err := loadFiles(c.Context, l, filesFrom(c))
	if err != nil {
		return err
	}

	opts := loader.DefaultSampleOptions()
	opts.Seed = c.Uint64("seed")
	if snap, err = fillWithSamples(l, snap, opts); err != nil {
		return err
	}

	svc := service.NewDashboardService(staticSource(snap), nil, format.New(c.String("currency")), engine.DefaultThresholds())
	ctx := c.Context

	purchases, err := svc.Purchases(ctx, domain.PurchasesFilter{})
	if err != nil {
		return err
	}
	stock, err := svc.Stock(ctx, domain.StockFilter{})
	if err != nil {
		return err
	}
	sales, err := svc.Sales(ctx, domain.SalesFilter{})
	if err != nil {
		return err
	}
	consolidated, err := svc.Consolidated(ctx, domain.ConsolidatedFilter{})
	if err != nil {
		return err
	}

	for _, section := range []struct {
		name    string
		metrics []domain.Metric
	}{
		{"purchases", purchases.Metrics},
		{"stock", stock.Metrics},
		{"sales", sales.Metrics},
		{"consolidated", consolidated.Metrics},
	} {
		for _, m := range section.metrics {
			logger.Log.Info().Str("dashboard", section.name).Str("metric", m.Key).Str("value", m.Display).Msg(m.Label)
		}
	}
	if rec := consolidated.Recommendations; rec.TopProduct != "" {
		logger.Log.Info().
			Int("critical", rec.CriticalCount).
			Str("best_price_supplier", rec.BestPriceSupplier).
			Str("top_product", rec.TopProduct).
			Msg("Recommendations")
	}
	return nil
}

func periodFrom(from, to string) (domain.Period, error) {
	var p domain.Period
	if from != "" {
		t, err := time.Parse(domain.DateLayout, from)
		if err != nil {
			return p, fmt.Errorf("--from: %w", err)
		}
		p.From = &t
	}
	if to != "" {
		t, err := time.Parse(domain.DateLayout, to)
		if err != nil {
			return p, fmt.Errorf("--to: %w", err)
		}
		p.To = &t
	}
	return p, nil
}

// writeOutput writes t to path, picking the format from its extension, or
// CSV to w when path is empty.
func writeOutput(w io.Writer, path string, t export.Table) error {
	if path == "" {
		return export.WriteCSV(w, t)
	}

	f := export.FormatCSV
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".xlsx" {
		f = export.FormatXLSX
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.Write(file, f, t); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return err
	}

	logger.Log.Info().Str("path", path).Int("rows", len(t.Rows)).Msg("Output written")
	return nil
}
