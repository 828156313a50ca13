package types

import (
	"errors"
	"fmt"
)

var (
	ErrNoHomeDir = errors.New("could not determine home directory")
	ErrNoQuery   = errors.New("no query provided")
)

// StoreError wraps a persistence failure with the operation that hit it.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error {
	return e.Err
}
