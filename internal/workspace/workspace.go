// Package workspace holds the datasets loaded for the current session.
package workspace

import (
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/retailbi/internal/domain"
	"github.com/andresuchdata/retailbi/internal/loader"
	"github.com/andresuchdata/retailbi/internal/storage"
)

// Source names a remote dataset origin.
type Source string

const (
	SourceS3    Source = "s3"
	SourceDrive Source = "drive"
)

// Fetcher downloads one remote file, returning its bytes and file name.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, string, error)
}

// ObjectFetcher adapts object storage to Fetcher.
type ObjectFetcher struct {
	Storage storage.ObjectStorage
}

func (f ObjectFetcher) Fetch(ctx context.Context, key string) ([]byte, string, error) {
	data, err := f.Storage.GetObject(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return data, path.Base(key), nil
}

// Snapshot is a consistent view of the loaded datasets. Datasets are
// immutable, so a snapshot stays valid after later loads.
type Snapshot struct {
	Purchases *domain.Dataset[domain.PurchaseRecord]
	Stock     *domain.Dataset[domain.StockRecord]
	Sales     *domain.Dataset[domain.SaleRecord]
}

// Infos summarises the loaded datasets in display order.
func (s Snapshot) Infos() []domain.DatasetInfo {
	out := []domain.DatasetInfo{}
	for _, kind := range domain.Kinds() {
		if s.loaded(kind) {
			out = append(out, s.info(kind))
		}
	}
	return out
}

// Require fails with ErrNoDataset when any of kinds is not loaded.
func (s Snapshot) Require(kinds ...domain.Kind) error {
	for _, kind := range kinds {
		if !s.loaded(kind) {
			return fmt.Errorf("%w: %s", domain.ErrNoDataset, kind)
		}
	}
	return nil
}

func (s Snapshot) loaded(kind domain.Kind) bool {
	switch kind {
	case domain.KindPurchases:
		return s.Purchases != nil
	case domain.KindStock:
		return s.Stock != nil
	case domain.KindSales:
		return s.Sales != nil
	}
	return false
}

func (s Snapshot) info(kind domain.Kind) domain.DatasetInfo {
	switch kind {
	case domain.KindPurchases:
		return s.Purchases.Info()
	case domain.KindStock:
		return s.Stock.Info()
	case domain.KindSales:
		return s.Sales.Info()
	}
	return domain.DatasetInfo{}
}

// Workspace owns the current datasets. Replacing one swaps a pointer; a
// failed load leaves the previous dataset in place.
type Workspace struct {
	loader  *loader.Loader
	sources map[Source]Fetcher

	mu      sync.RWMutex
	current Snapshot
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithSource registers a remote source. A nil fetcher leaves it disabled.
func WithSource(name Source, f Fetcher) Option {
	return func(w *Workspace) {
		if f != nil {
			w.sources[name] = f
		}
	}
}

func New(l *loader.Loader, opts ...Option) *Workspace {
	if l == nil {
		l = loader.New()
	}
	w := &Workspace{loader: l, sources: make(map[Source]Fetcher)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Snapshot returns the datasets loaded right now.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// SourceEnabled reports whether a remote source was configured.
func (w *Workspace) SourceEnabled(name Source) bool {
	_, ok := w.sources[name]
	return ok
}

func (w *Workspace) set(l loader.Loaded) domain.DatasetInfo {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch l.Kind {
	case domain.KindPurchases:
		w.current.Purchases = l.Purchases
	case domain.KindStock:
		w.current.Stock = l.Stock
	case domain.KindSales:
		w.current.Sales = l.Sales
	}
	return l.Info()
}

// Upload parses data as kind and makes it current.
func (w *Workspace) Upload(ctx context.Context, kind domain.Kind, filename string, data []byte) (domain.DatasetInfo, error) {
	l, err := w.loader.LoadBytes(ctx, kind, filename, data)
	if err != nil {
		log.Error().Err(err).Str("kind", string(kind)).Str("source", filename).Msg("Dataset load failed")
		return domain.DatasetInfo{}, err
	}
	return w.set(l), nil
}

// Sample replaces kind with generated data.
func (w *Workspace) Sample(kind domain.Kind, opts loader.SampleOptions) (domain.DatasetInfo, error) {
	l, err := w.loader.Sample(kind, opts)
	if err != nil {
		return domain.DatasetInfo{}, err
	}
	return w.set(l), nil
}

// SeedSamples loads sample data for every kind.
func (w *Workspace) SeedSamples(opts loader.SampleOptions) error {
	for _, kind := range domain.Kinds() {
		info, err := w.Sample(kind, opts)
		if err != nil {
			return fmt.Errorf("seed %s sample: %w", kind, err)
		}
		log.Info().Str("kind", string(kind)).Int("rows", info.Rows).Str("dataset_id", info.ID).Msg("Sample dataset seeded")
	}
	return nil
}

// Import fetches key from a remote source and loads it as kind.
func (w *Workspace) Import(ctx context.Context, kind domain.Kind, source Source, key string) (domain.DatasetInfo, error) {
	f, ok := w.sources[source]
	if !ok {
		return domain.DatasetInfo{}, fmt.Errorf("%w: %s", domain.ErrSourceDisabled, source)
	}

	data, filename, err := f.Fetch(ctx, key)
	if err != nil {
		return domain.DatasetInfo{}, fmt.Errorf("fetch %s from %s: %w", key, source, err)
	}

	log.Info().Str("kind", string(kind)).Str("source", string(source)).Str("key", key).Int("bytes", len(data)).Msg("Dataset fetched")
	return w.Upload(ctx, kind, filename, data)
}
