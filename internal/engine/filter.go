// Package engine holds the pure filter, aggregation and consolidation stages
// shared by every dashboard. Nothing here mutates its input.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/retailbi/internal/domain"
)

// Predicate reports whether a record passes a compiled filter.
type Predicate[T any] func(T) bool

// Compile resolves every field in spec against schema. It fails when a field
// is unknown or has the wrong type for the predicate using it.
func Compile[T any](schema domain.Schema[T], spec domain.FilterSpec) (Predicate[T], error) {
	var preds []Predicate[T]

	if spec.Date != nil {
		get, ok := schema.Date[spec.Date.Field]
		if !ok {
			return nil, fieldError(schema, spec.Date.Field, domain.FieldDate)
		}
		from, to := dayBound(spec.Date.From), dayBound(spec.Date.To)
		preds = append(preds, func(r T) bool {
			d := truncateDay(get(r))
			if from != nil && d.Before(*from) {
				return false
			}
			if to != nil && d.After(*to) {
				return false
			}
			return true
		})
	}

	for _, m := range spec.Members {
		get, ok := schema.Text[m.Field]
		if !ok {
			return nil, fieldError(schema, m.Field, domain.FieldText)
		}
		allowed := make(map[string]struct{}, len(m.Values))
		for _, v := range m.Values {
			allowed[v] = struct{}{}
		}
		preds = append(preds, func(r T) bool {
			_, ok := allowed[get(r)]
			return ok
		})
	}

	for _, s := range spec.Searches {
		get, ok := schema.Text[s.Field]
		if !ok {
			return nil, fieldError(schema, s.Field, domain.FieldText)
		}
		term := strings.ToLower(strings.TrimSpace(s.Term))
		if term == "" {
			continue
		}
		preds = append(preds, func(r T) bool {
			return strings.Contains(strings.ToLower(get(r)), term)
		})
	}

	for _, f := range spec.Flags {
		get, ok := schema.Flag[f.Field]
		if !ok {
			return nil, fieldError(schema, f.Field, domain.FieldFlag)
		}
		want := f.Want
		preds = append(preds, func(r T) bool { return get(r) == want })
	}

	return func(r T) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}, nil
}

// Apply returns the records passing pred, in input order.
func Apply[T any](records []T, pred Predicate[T]) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// Filter compiles spec and applies it to records.
func Filter[T any](schema domain.Schema[T], records []T, spec domain.FilterSpec) ([]T, error) {
	if spec.IsEmpty() {
		return append(make([]T, 0, len(records)), records...), nil
	}
	pred, err := Compile(schema, spec)
	if err != nil {
		return nil, err
	}
	return Apply(records, pred), nil
}

func fieldError[T any](schema domain.Schema[T], field string, want domain.FieldType) error {
	got, ok := schema.TypeOf(field)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownField, field)
	}
	return fmt.Errorf("%w: %s is %s, want %s", domain.ErrUnknownField, field, got, want)
}

func dayBound(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := truncateDay(*t)
	return &d
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
