package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrDataSufficiency = errors.New("insufficient data")
	ErrPersistence     = errors.New("persistence error")
)

// ValidationError reports an invalid episode pattern, evidence symbol or evidence set.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DataSufficiencyError reports that too few weighted samples were available.
type DataSufficiencyError struct {
	Needed int
	Found  int
}

func (e *DataSufficiencyError) Error() string {
	return fmt.Sprintf("not enough samples: needed at least %d, found %d", e.Needed, e.Found)
}

func (e *DataSufficiencyError) Is(target error) bool {
	return target == ErrDataSufficiency
}

// PersistenceError wraps a read or write failure on a persisted table.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
