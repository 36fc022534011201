package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable matches any failure to obtain an input collection.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrEmptyCollection indicates a source returned no usable entries.
	ErrEmptyCollection = errors.New("collection is empty")
)

// FetchError reports that one of the input collections could not be loaded.
// It is fatal for the pass.
type FetchError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("loading %s collection: %v", e.Source, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *FetchError) Is(target error) bool {
	return target == ErrSourceUnavailable
}
