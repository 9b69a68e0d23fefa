package rewrite

import (
	"errors"
	"fmt"

	"github.com/coredag/treediff/hash"
)

// ErrInvalidConfig is returned by FromMap for an unrecognised value.
type ErrInvalidConfig struct {
	Key, Value string
}

func (e *ErrInvalidConfig) Error() string {
	return fmt.Sprintf("rewrite: invalid value %q for %s", e.Value, e.Key)
}

var errEmpty = errors.New("rewrite: empty integer")

// ErrBlobFetch is returned when the similarity pass needs a blob's
// bytes and the configured object.ObjectSource does not have it.
type ErrBlobFetch struct {
	ID hash.ObjectID
}

func (e *ErrBlobFetch) Error() string {
	return fmt.Sprintf("rewrite: blob not found: %s", e.ID)
}

// ErrBlobDiff wraps a failure from the configured BlobDiff.
type ErrBlobDiff struct {
	Err error
}

func (e *ErrBlobDiff) Error() string { return fmt.Sprintf("rewrite: blob diff failed: %s", e.Err) }
func (e *ErrBlobDiff) Unwrap() error { return e.Err }
