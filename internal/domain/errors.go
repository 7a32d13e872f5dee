package domain

import (
	"errors"
	"fmt"
)

// ErrStoreNotFound is returned when the persisted vector store files are
// absent. It is user-recoverable: run ingestion first.
var ErrStoreNotFound = errors.New("vector store not found")

// DimensionError is returned when a vector supplied for insertion or query
// does not match the dimension an index was created with.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: expected %d, got %d", e.Want, e.Got)
}
