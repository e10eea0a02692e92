package streamquery

import "github.com/cockroachdb/errors"

var (
	// ErrLimitReached is the error used to short-circuit a stream by canceling its context to indicate that
	// the maximum number of elements given to Limit has been reached.
	ErrLimitReached = errors.New("limit reached")

	// ErrShortCircuit is a generic error used to short-circuit a stream by canceling its context.
	ErrShortCircuit = errors.New("short circuit")

	// ErrEmptySource is returned by aggregates asked to reduce zero elements.
	ErrEmptySource = errors.New("empty source")

	// ErrNotComparable is returned by minimum and maximum aggregates when two values have no usable ordering.
	ErrNotComparable = errors.New("values are not comparable")

	// ErrInvalidNumber is returned by numeric aggregates when a projection yields an invalid Number.
	ErrInvalidNumber = errors.New("invalid number")

	// ErrSourceConsumed is used to cancel a stream whose one-shot producer has already been called once.
	ErrSourceConsumed = errors.New("one-shot source already consumed")

	// ErrGroupsClosed is returned when a closed Groups needs to read more elements from its source.
	ErrGroupsClosed = errors.New("groups closed")
)

// A DuplicateKeyError is used to short-circuit a stream by canceling its context to indicate that
// a key could not be added to a map because it already exists.
type DuplicateKeyError[T any, K comparable] struct {
	// Element is the upstream producer's element that caused the error.
	Element T

	// Key is the key that was already in the map.
	Key K
}

// Error implements error.
func (e *DuplicateKeyError[T, K]) Error() string {
	return "duplicate key"
}
