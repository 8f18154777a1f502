package dispenser

import (
	"errors"
	"fmt"
)

// ErrEmptyFeed is returned when a pull yields no new items.
var ErrEmptyFeed = errors.New("feed returned no new items")

// PersistenceError reports a ledger append failure. The item it names was not dispensed
// and is still at the head of the buffer.
type PersistenceError struct {
	ID  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("record dispensed id %s: %v", e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
