package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/retailbi/internal/domain"
	"github.com/andresuchdata/retailbi/internal/loader"
	"github.com/andresuchdata/retailbi/internal/workspace"
	"github.com/andresuchdata/retailbi/pkg/logger"
)

// staticSource serves a fixed snapshot to the dashboard service.
type staticSource workspace.Snapshot

func (s staticSource) Snapshot() workspace.Snapshot { return workspace.Snapshot(s) }

// filesFrom collects the dataset paths given on the command line.
func filesFrom(c *cli.Context) map[domain.Kind]string {
	files := map[domain.Kind]string{}
	for _, kind := range domain.Kinds() {
		if path := c.String(string(kind)); path != "" {
			files[kind] = path
		}
	}
	return files
}

// loadFiles reads and parses every file concurrently. The first failure
// cancels the rest.
func loadFiles(ctx context.Context, l *loader.Loader, files map[domain.Kind]string) (workspace.Snapshot, error) {
	var (
		mu   sync.Mutex
		snap workspace.Snapshot
	)

	g, ctx := errgroup.WithContext(ctx)
	for kind, path := range files {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s file: %w", kind, err)
			}
			loaded, err := l.LoadBytes(ctx, kind, filepath.Base(path), data)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			switch kind {
			case domain.KindPurchases:
				snap.Purchases = loaded.Purchases
			case domain.KindStock:
				snap.Stock = loaded.Stock
			case domain.KindSales:
				snap.Sales = loaded.Sales
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return workspace.Snapshot{}, err
	}
	return snap, nil
}

// fillWithSamples generates every dataset missing from snap.
func fillWithSamples(l *loader.Loader, snap workspace.Snapshot, opts loader.SampleOptions) (workspace.Snapshot, error) {
	for _, kind := range domain.Kinds() {
		if snap.Require(kind) == nil {
			continue
		}
		loaded, err := l.Sample(kind, opts)
		if err != nil {
			return snap, err
		}
		switch kind {
		case domain.KindPurchases:
			snap.Purchases = loaded.Purchases
		case domain.KindStock:
			snap.Stock = loaded.Stock
		case domain.KindSales:
			snap.Sales = loaded.Sales
		}
		logger.Log.Info().Str("kind", string(kind)).Msg("Using sample dataset")
	}
	return snap, nil
}
