package engine

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/andresuchdata/retailbi/internal/domain"
)

// Reducer names a per-group reduction.
type Reducer string

const (
	Sum           Reducer = "sum"
	Mean          Reducer = "mean"
	Count         Reducer = "count"
	CountDistinct Reducer = "count_distinct"
	Std           Reducer = "std"
	Min           Reducer = "min"
	Max           Reducer = "max"
)

// Bucket controls how a date group-by field is keyed.
type Bucket string

const (
	BucketNone  Bucket = ""
	BucketMonth Bucket = "month"
)

// AllKey is the group key used when no group-by field is given.
const AllKey = "all"

// Measure reduces one field within each group. As names the output value
// and defaults to "<field>_<reducer>".
type Measure struct {
	Field   string  `json:"field"`
	Reducer Reducer `json:"reducer"`
	As      string  `json:"as,omitempty"`
}

func (m Measure) name() string {
	if m.As != "" {
		return m.As
	}
	if m.Field == "" {
		return string(m.Reducer)
	}
	return m.Field + "_" + string(m.Reducer)
}

// AggregationSpec describes group → reduce over one dataset.
type AggregationSpec struct {
	GroupBy  string    `json:"group_by"`
	Bucket   Bucket    `json:"bucket,omitempty"`
	Measures []Measure `json:"measures"`
}

// MonthKey returns the YYYY-MM-01 bucket for t.
func MonthKey(t time.Time) string {
	return t.Format("2006-01") + "-01"
}

type reducerFunc[T any] func(rows []T) float64

// Aggregate groups records and reduces each measure per group. Groups keep
// first-seen order, except monthly buckets which are chronological.
func Aggregate[T any](schema domain.Schema[T], records []T, spec AggregationSpec) ([]domain.AggregateRow, error) {
	keyOf, err := groupKey(schema, spec)
	if err != nil {
		return nil, err
	}

	reducers := make([]reducerFunc[T], len(spec.Measures))
	for i, m := range spec.Measures {
		fn, err := compileReducer(schema, m)
		if err != nil {
			return nil, err
		}
		reducers[i] = fn
	}

	grouped := make(map[string][]T)
	order := make([]string, 0)
	for _, r := range records {
		key := keyOf(r)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], r)
	}

	if spec.Bucket == BucketMonth {
		sort.Strings(order)
	}

	out := make([]domain.AggregateRow, 0, len(order))
	for _, key := range order {
		rows := grouped[key]
		row := domain.AggregateRow{
			Key:    key,
			Count:  len(rows),
			Values: make(map[string]float64, len(spec.Measures)),
		}
		for i, m := range spec.Measures {
			row.Values[m.name()] = reducers[i](rows)
		}
		out = append(out, row)
	}
	return out, nil
}

func groupKey[T any](schema domain.Schema[T], spec AggregationSpec) (func(T) string, error) {
	if spec.GroupBy == "" {
		return func(T) string { return AllKey }, nil
	}
	if spec.Bucket == BucketMonth {
		get, ok := schema.Date[spec.GroupBy]
		if !ok {
			return nil, fieldError(schema, spec.GroupBy, domain.FieldDate)
		}
		return func(r T) string { return MonthKey(get(r)) }, nil
	}
	return schema.Key(spec.GroupBy)
}

func compileReducer[T any](schema domain.Schema[T], m Measure) (reducerFunc[T], error) {
	switch m.Reducer {
	case Count:
		return func(rows []T) float64 { return float64(len(rows)) }, nil
	case CountDistinct:
		key, err := schema.Key(m.Field)
		if err != nil {
			return nil, err
		}
		return func(rows []T) float64 {
			seen := make(map[string]struct{}, len(rows))
			for _, r := range rows {
				seen[key(r)] = struct{}{}
			}
			return float64(len(seen))
		}, nil
	}

	get, ok := schema.Number[m.Field]
	if !ok {
		return nil, fieldError(schema, m.Field, domain.FieldNumber)
	}
	values := func(rows []T) []float64 {
		vs := make([]float64, len(rows))
		for i, r := range rows {
			vs[i] = get(r)
		}
		return vs
	}

	switch m.Reducer {
	case Sum:
		return func(rows []T) float64 { return sum(values(rows)) }, nil
	case Mean:
		return func(rows []T) float64 { return mean(values(rows)) }, nil
	case Std:
		return func(rows []T) float64 { return sampleStd(values(rows)) }, nil
	case Min:
		return func(rows []T) float64 { return minOf(values(rows)) }, nil
	case Max:
		return func(rows []T) float64 { return maxOf(values(rows)) }, nil
	}
	return nil, fmt.Errorf("unknown reducer %q", m.Reducer)
}

func sum(vs []float64) float64 {
	var total float64
	for _, v := range vs {
		total += v
	}
	return total
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	return sum(vs) / float64(len(vs))
}

// sampleStd uses n-1 in the denominator; fewer than two values yield 0.
func sampleStd(vs []float64) float64 {
	if len(vs) < 2 {
		return 0
	}
	m := mean(vs)
	var ss float64
	for _, v := range vs {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(vs)-1))
}

func minOf(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	return slices.Min(vs)
}

func maxOf(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	return slices.Max(vs)
}

// SortBy returns a copy of rows stably sorted on a value field.
func SortBy(rows []domain.AggregateRow, field string, asc bool) []domain.AggregateRow {
	out := slices.Clone(rows)
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return out[i].Value(field) < out[j].Value(field)
		}
		return out[i].Value(field) > out[j].Value(field)
	})
	return out
}

// TopN returns the n rows with the largest field value. Ties keep their
// incoming order. n <= 0 returns every row, sorted.
func TopN(rows []domain.AggregateRow, field string, n int) []domain.AggregateRow {
	out := SortBy(rows, field, false)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Totals sums a numeric field over every record.
func Totals[T any](schema domain.Schema[T], records []T, field string) (float64, error) {
	get, ok := schema.Number[field]
	if !ok {
		return 0, fieldError(schema, field, domain.FieldNumber)
	}
	var total float64
	for _, r := range records {
		total += get(r)
	}
	return total, nil
}

// OuterJoinMonthly merges two keyed series. Every output row carries every
// value name seen on either side, 0 where a side had no row for the key.
// Rows are ordered by key.
func OuterJoinMonthly(a, b []domain.AggregateRow) []domain.AggregateRow {
	names := make(map[string]struct{})
	merged := make(map[string]*domain.AggregateRow)
	var keys []string

	for _, side := range [][]domain.AggregateRow{a, b} {
		for _, r := range side {
			row, ok := merged[r.Key]
			if !ok {
				row = &domain.AggregateRow{Key: r.Key, Values: make(map[string]float64)}
				merged[r.Key] = row
				keys = append(keys, r.Key)
			}
			row.Count += r.Count
			for name, v := range r.Values {
				names[name] = struct{}{}
				row.Values[name] += v
			}
		}
	}

	sort.Strings(keys)
	out := make([]domain.AggregateRow, 0, len(keys))
	for _, k := range keys {
		row := merged[k]
		for name := range names {
			if _, ok := row.Values[name]; !ok {
				row.Values[name] = 0
			}
		}
		out = append(out, *row)
	}
	return out
}
