package streamquery

import (
	"context"
	"fmt"
	"sync"
)

// Bucket holds the elements of a Groups that share one key, in source order.
// A bucket grows as its Groups pulls more elements from the source.
type Bucket[K comparable, T any] struct {
	// mu is the owning Groups' mutex.
	mu *sync.Mutex

	key   K
	elems []T
}

// Key returns the key shared by the elements of b.
func (b *Bucket[K, T]) Key() K {
	return b.key
}

// Len returns the number of elements in b so far.
func (b *Bucket[K, T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.elems)
}

// Values returns a copy of the elements in b so far.
func (b *Bucket[K, T]) Values() []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]T{}, b.elems...)
}

// Producer returns a producer of the elements in b.
// Every call produces the elements in b at the time of the call.
func (b *Bucket[K, T]) Producer() ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		return Produce(b.Values())(ctx, cancel)
	}
}

// String implements fmt.Stringer.
func (b *Bucket[K, T]) String() string {
	return fmt.Sprintf("%v=%v", b.key, b.Values())
}
