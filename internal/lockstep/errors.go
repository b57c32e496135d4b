package lockstep

import (
	"errors"
	"fmt"
)

var ErrEmptyKey = errors.New("empty correlation key")

// CardinalityError is returned when a key does not have exactly one primary record.
type CardinalityError struct {
	Key         string
	Primaries   int
	Secondaries int
}

func (e *CardinalityError) Error() string {
	if e.Primaries == 0 {
		return fmt.Sprintf("no primary record for key %q", e.Key)
	}
	return fmt.Sprintf("expected exactly one primary record for key %q, found %d with %d secondary records", e.Key, e.Primaries, e.Secondaries)
}

// OrderError is returned when a stream is not sorted by key.
type OrderError struct {
	Stream   string
	Previous string
	Key      string
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("%s stream out of order: key %q follows %q", e.Stream, e.Key, e.Previous)
}
