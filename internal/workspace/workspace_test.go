package workspace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/retailbi/internal/domain"
	"github.com/andresuchdata/retailbi/internal/loader"
	"github.com/andresuchdata/retailbi/internal/storage"
)

func newWorkspace(opts ...Option) *Workspace {
	l := loader.New(loader.WithClock(func() time.Time {
		return time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	}))
	return New(l, opts...)
}

func TestUploadReplacesDataset(t *testing.T) {
	ctx := context.Background()
	w := newWorkspace()

	if err := w.Snapshot().Require(domain.KindStock); !errors.Is(err, domain.ErrNoDataset) {
		t.Fatalf("expected ErrNoDataset before any upload, got %v", err)
	}

	first, err := w.Upload(ctx, domain.KindStock, "a.csv", []byte("product_name,quantity\nA,1\n"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	before := w.Snapshot()

	second, err := w.Upload(ctx, domain.KindStock, "b.csv", []byte("product_name,quantity\nA,1\nB,2\n"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if first.ID == second.ID || second.Rows != 2 || second.Label != "Stock" {
		t.Fatalf("unexpected dataset infos %+v %+v", first, second)
	}

	if before.Stock.Len() != 1 {
		t.Error("an earlier snapshot must not see the new dataset")
	}
	if w.Snapshot().Stock.Len() != 2 {
		t.Error("expected the new dataset to be current")
	}
}

func TestFailedUploadKeepsPreviousDataset(t *testing.T) {
	ctx := context.Background()
	w := newWorkspace()

	good, err := w.Upload(ctx, domain.KindSales, "s.csv", []byte("product_name\nA\n"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = w.Upload(ctx, domain.KindSales, "broken.xlsx", []byte("not a workbook"))
	if !domain.IsLoadError(err) {
		t.Fatalf("expected a load error, got %v", err)
	}
	if got := w.Snapshot().Sales.Info().ID; got != good.ID {
		t.Fatalf("expected previous dataset %s to stay current, got %s", good.ID, got)
	}
}

func TestSeedSamples(t *testing.T) {
	w := newWorkspace()
	if err := w.SeedSamples(loader.SampleOptions{Products: 5, Days: 3}); err != nil {
		t.Fatalf("SeedSamples returned error: %v", err)
	}

	snap := w.Snapshot()
	if err := snap.Require(domain.KindPurchases, domain.KindStock, domain.KindSales); err != nil {
		t.Fatalf("expected every kind loaded: %v", err)
	}
	infos := snap.Infos()
	if len(infos) != 3 || infos[0].Kind != domain.KindStock {
		t.Fatalf("unexpected infos %+v", infos)
	}
	if snap.Stock.Len() != 5 {
		t.Errorf("expected 5 stock rows, got %d", snap.Stock.Len())
	}
}

type fakeStorage struct {
	objects map[string][]byte
}

func (f fakeStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for k, v := range f.objects {
		out = append(out, storage.ObjectInfo{Key: k, Size: int64(len(v))})
	}
	return out, nil
}

func (f fakeStorage) GetObject(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	store := fakeStorage{objects: map[string][]byte{
		"exports/2024/purchases.csv": []byte("supplier,product_name,quantity,unit_price\nX,A,2,5\n"),
	}}
	w := newWorkspace(WithSource(SourceS3, ObjectFetcher{Storage: store}), WithSource(SourceDrive, nil))

	if w.SourceEnabled(SourceDrive) {
		t.Error("a nil fetcher must leave the source disabled")
	}
	if _, err := w.Import(ctx, domain.KindPurchases, SourceDrive, "id"); !errors.Is(err, domain.ErrSourceDisabled) {
		t.Fatalf("expected ErrSourceDisabled, got %v", err)
	}

	info, err := w.Import(ctx, domain.KindPurchases, SourceS3, "exports/2024/purchases.csv")
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	if info.Source != "purchases.csv" || info.Rows != 1 {
		t.Errorf("unexpected info %+v", info)
	}

	if _, err := w.Import(ctx, domain.KindPurchases, SourceS3, "missing.csv"); err == nil {
		t.Error("expected error for a missing object")
	}
}
