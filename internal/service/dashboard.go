// backend-go/internal/service/dashboard.go
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/retailbi/internal/cache"
	"github.com/andresuchdata/retailbi/internal/domain"
	"github.com/andresuchdata/retailbi/internal/engine"
	"github.com/andresuchdata/retailbi/internal/format"
	"github.com/andresuchdata/retailbi/internal/workspace"
)

// Snapshotter yields the datasets a report is built from.
type Snapshotter interface {
	Snapshot() workspace.Snapshot
}

// DashboardService builds the purchases, stock, sales and consolidated
// reports from the current workspace snapshot.
type DashboardService struct {
	source     Snapshotter
	memo       *cache.Memo
	format     format.Formatter
	thresholds engine.Thresholds
}

func NewDashboardService(source Snapshotter, memo *cache.Memo, f format.Formatter, th engine.Thresholds) *DashboardService {
	if th.OverstockMultiplier <= 0 {
		th = engine.DefaultThresholds()
	}
	return &DashboardService{source: source, memo: memo, format: f, thresholds: th}
}

// ClearCache drops every memoized report.
func (s *DashboardService) ClearCache(ctx context.Context) error {
	if err := s.memo.Invalidate(ctx); err != nil {
		return fmt.Errorf("clear report cache: %w", err)
	}
	log.Info().Msg("Report cache cleared")
	return nil
}

// reportParams is everything besides the datasets that changes a report.
type reportParams struct {
	Filter    any     `json:"filter"`
	Currency  string  `json:"currency"`
	Overstock float64 `json:"overstock"`
}

func remember[T any](ctx context.Context, s *DashboardService, name string, ids []string, filter any, compute func() (T, error)) (T, error) {
	if s.memo == nil {
		return compute()
	}

	key, err := s.memo.Key(name, ids, reportParams{
		Filter:    filter,
		Currency:  s.format.Symbol,
		Overstock: s.thresholds.OverstockMultiplier,
	})
	if err != nil {
		log.Warn().Err(err).Str("report", name).Msg("Cache key build failed")
		return compute()
	}
	return cache.Remember(ctx, s.memo, key, compute)
}

func (s *DashboardService) money(key, label string, v float64) domain.Metric {
	return domain.Metric{Key: key, Label: label, Value: v, Display: s.format.Currency(v)}
}

func countMetric(key, label string, n int) domain.Metric {
	return domain.Metric{Key: key, Label: label, Value: float64(n), Display: format.Int(n)}
}

func datasetIDs(snap workspace.Snapshot) []string {
	return []string{snap.Stock.Info().ID, snap.Sales.Info().ID, snap.Purchases.Info().ID}
}

// uniqueSorted returns the distinct non-empty values of get over records.
func uniqueSorted[T any](records []T, get func(T) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range records {
		v := get(r)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// dateSpan returns [earliest, latest] as calendar dates, or nil for no rows.
func dateSpan[T any](records []T, get func(T) time.Time) []string {
	if len(records) == 0 {
		return nil
	}
	lo, hi := get(records[0]), get(records[0])
	for _, r := range records[1:] {
		d := get(r)
		if d.Before(lo) {
			lo = d
		}
		if d.After(hi) {
			hi = d
		}
	}
	return []string{lo.Format(domain.DateLayout), hi.Format(domain.DateLayout)}
}

func withPeriod(spec domain.FilterSpec, p domain.Period) domain.FilterSpec {
	if p.IsZero() {
		return spec
	}
	return spec.WithDate("date", p.From, p.To)
}

// withSelection applies a membership predicate only when the selection was
// sent. A sent but empty selection keeps nothing.
func withSelection(spec domain.FilterSpec, field string, sel domain.Selection) domain.FilterSpec {
	if !sel.Set {
		return spec
	}
	return spec.WithMember(field, sel.Values)
}

// withOptionalSelection treats an empty selection like an absent one.
func withOptionalSelection(spec domain.FilterSpec, field string, sel domain.Selection) domain.FilterSpec {
	if len(sel.Values) == 0 {
		return spec
	}
	return spec.WithMember(field, sel.Values)
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
