package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownKind    = errors.New("unknown dataset kind")
	ErrNoDataset      = errors.New("dataset not loaded")
	ErrSourceDisabled = errors.New("dataset source not configured")
	ErrUnknownField   = errors.New("unknown field")
	ErrNotFound       = errors.New("not found")
)

// LoadError means an input could not be read as CSV or as a spreadsheet.
// Callers must surface it and skip rendering for the affected dataset.
type LoadError struct {
	Kind     Kind
	Filename string
	Err      error
}

func (e *LoadError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("load %s dataset: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("load %s dataset from %s: %v", e.Kind, e.Filename, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether err wraps a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
