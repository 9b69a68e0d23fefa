package diff

import (
	"fmt"

	"github.com/coredag/treediff/hash"
)

// ErrTreeNotFound is returned when the object source has no tree for
// an id the differ needed to descend into.
type ErrTreeNotFound struct {
	ID hash.ObjectID
}

func (e *ErrTreeNotFound) Error() string {
	return fmt.Sprintf("diff: tree not found: %s", e.ID)
}
