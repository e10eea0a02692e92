package streamquery

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// feed returns the next batch of elements for a Groups, all sharing key.
// It returns false once its source is exhausted, together with the error that ended it, if any.
type feed[K comparable, T any] func() (key K, elems []T, ok bool, err error)

// Groups maps keys to buckets of elements, built incrementally from a single traversal of a source.
//
// Elements are pulled from the source only when an operation needs them, by whichever caller needs them first.
// Once pulled, an element is filed into its bucket exactly once, and is visible to every present and future
// caller. The source is never rewound.
//
// Groups is safe for concurrent use. All of its state, including the contents of its buckets,
// is guarded by a single mutex.
type Groups[K comparable, T any] struct {
	mu sync.Mutex

	feed    feed[K, T]
	release func()

	index   map[K]int
	buckets []*Bucket[K, T]

	done   bool
	err    error
	pulled uint64

	opts *options
}

// GroupBy returns a Groups that files the elements produced by prod into buckets according to key.
// key is called exactly once per element, when the element is pulled.
//
// GroupBy does not call prod. It is called once, when the first element is needed, using ctx.
// Canceling ctx stops the traversal; buckets filed so far remain readable.
// Groups that are not exhausted should be closed to release the traversal.
func GroupBy[T any, K comparable](ctx context.Context, prod ProducerFunc[T], key Function[T, K], opts ...Option) *Groups[K, T] {
	var cursor *Cursor[T]

	groups := newGroups[K, T](newOptions(opts...))

	groups.feed = func() (K, []T, bool, error) {
		if cursor == nil {
			cursor = Pull(ctx, prod)
		}

		elem, ok, err := cursor.Next()
		if !ok {
			var zero K
			return zero, nil, false, err
		}

		return key(elem), []T{elem}, true, nil
	}

	groups.release = func() {
		if cursor != nil {
			_ = cursor.Close()
		}
	}

	return groups
}

func newGroups[K comparable, T any](opts *options) *Groups[K, T] {
	return &Groups[K, T]{
		index: make(map[K]int, opts.capacity),
		opts:  opts,
	}
}

// pull files the next batch of the source into its bucket, creating the bucket if its key is new.
// It returns the bucket and the batch, or false once the source is exhausted.
// g.mu must be held.
func (g *Groups[K, T]) pull() (*Bucket[K, T], []T, bool) {
	if g.done {
		return nil, nil, false
	}

	key, elems, ok, err := g.feed()
	if !ok {
		g.finish(err)
		return nil, nil, false
	}

	i, found := g.index[key]
	if !found {
		i = len(g.buckets)
		g.index[key] = i
		g.buckets = append(g.buckets, &Bucket[K, T]{mu: &g.mu, key: key})
	}

	bucket := g.buckets[i]
	bucket.elems = append(bucket.elems, elems...)

	g.pulled += uint64(len(elems))

	return bucket, elems, true
}

// finish marks the source as exhausted, and releases it.
// g.mu must be held.
func (g *Groups[K, T]) finish(err error) {
	g.done = true
	g.err = err
	g.feed = nil

	if g.release != nil {
		g.release()
		g.release = nil
	}

	if err != nil {
		g.opts.logger.Debug("grouping stopped",
			zap.Int("groups", len(g.buckets)),
			zap.Uint64("elements", g.pulled),
			zap.Error(err))

		return
	}

	g.opts.logger.Debug("groups materialized",
		zap.Int("groups", len(g.buckets)),
		zap.Uint64("elements", g.pulled))
}

// materialize pulls until the source is exhausted. g.mu must be held.
func (g *Groups[K, T]) materialize() error {
	for {
		if _, _, ok := g.pull(); !ok {
			return g.err
		}
	}
}

// Materialize pulls all remaining elements from the source.
// It returns the error that ended the traversal, if any. Calling it again returns the same result.
func (g *Groups[K, T]) Materialize() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.materialize()
}

// Len returns the number of distinct keys, after materializing all groups.
func (g *Groups[K, T]) Len() (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	err := g.materialize()

	return len(g.buckets), err
}

// Keys returns all keys in the order they were discovered, after materializing all groups.
func (g *Groups[K, T]) Keys() ([]K, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	err := g.materialize()

	keys := make([]K, len(g.buckets))
	for i, bucket := range g.buckets {
		keys[i] = bucket.key
	}

	return keys, err
}

// Buckets returns all buckets in the order their keys were discovered, after materializing all groups.
func (g *Groups[K, T]) Buckets() ([]*Bucket[K, T], error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	err := g.materialize()

	buckets := make([]*Bucket[K, T], len(g.buckets))
	copy(buckets, g.buckets)

	return buckets, err
}

// ToMap returns a copy of all groups, after materializing them.
func (g *Groups[K, T]) ToMap() (map[K][]T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	err := g.materialize()

	result := make(map[K][]T, len(g.buckets))
	for _, bucket := range g.buckets {
		result[bucket.key] = append([]T{}, bucket.elems...)
	}

	return result, err
}

// Lookup returns the bucket for key, pulling from the source only until key is discovered.
// A bucket returned by Lookup may still grow. A miss is only certain after Materialize, see Get.
func (g *Groups[K, T]) Lookup(key K) (*Bucket[K, T], bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for {
		if i, ok := g.index[key]; ok {
			return g.buckets[i], true, nil
		}

		if _, _, ok := g.pull(); !ok {
			return nil, false, g.err
		}
	}
}

// Get returns the complete bucket for key, after materializing all groups.
func (g *Groups[K, T]) Get(key K) (*Bucket[K, T], bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.materialize(); err != nil {
		return nil, false, err
	}

	i, ok := g.index[key]
	if !ok {
		return nil, false, nil
	}

	return g.buckets[i], true, nil
}

// Contains returns true if key has a bucket, pulling from the source only until key is discovered.
func (g *Groups[K, T]) Contains(key K) (bool, error) {
	_, ok, err := g.Lookup(key)
	return ok, err
}

// ContainsValue returns true if match returns true for any element, pulling from the source only until
// such an element is found.
// match is called with g locked: it must not call methods of g or of its buckets.
func (g *Groups[K, T]) ContainsValue(match func(elem T) bool) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, bucket := range g.buckets {
		if anyOf(bucket.elems, match) {
			return true, nil
		}
	}

	for {
		_, elems, ok := g.pull()
		if !ok {
			return false, g.err
		}

		if anyOf(elems, match) {
			return true, nil
		}
	}
}

func anyOf[T any](elems []T, match func(T) bool) bool {
	for _, elem := range elems {
		if match(elem) {
			return true
		}
	}

	return false
}

// MinEntry returns the bucket with the fewest elements, after materializing all groups.
// If several buckets are equally small, the one discovered first is returned.
// It returns ErrEmptySource if there are no groups.
func (g *Groups[K, T]) MinEntry() (*Bucket[K, T], error) {
	return g.extremeEntry(func(candidate int, current int) bool {
		return candidate < current
	})
}

// MaxEntry returns the bucket with the most elements, after materializing all groups.
// If several buckets are equally large, the one discovered first is returned.
// It returns ErrEmptySource if there are no groups.
func (g *Groups[K, T]) MaxEntry() (*Bucket[K, T], error) {
	return g.extremeEntry(func(candidate int, current int) bool {
		return candidate > current
	})
}

func (g *Groups[K, T]) extremeEntry(beats func(candidate int, current int) bool) (*Bucket[K, T], error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.materialize(); err != nil {
		return nil, err
	}

	if len(g.buckets) == 0 {
		return nil, ErrEmptySource
	}

	result := g.buckets[0]
	for _, bucket := range g.buckets[1:] {
		if beats(len(bucket.elems), len(result.elems)) {
			result = bucket
		}
	}

	return result, nil
}

// Cursor returns a new cursor over the buckets of g.
// The cursor first yields the buckets already discovered, then pulls from the source to discover more.
// Every cursor yields every bucket exactly once, regardless of other cursors.
func (g *Groups[K, T]) Cursor() *GroupCursor[K, T] {
	return &GroupCursor[K, T]{groups: g}
}

// Entries returns a producer of the buckets of g, in the order their keys were discovered.
// Every call starts a new cursor, see Cursor.
func (g *Groups[K, T]) Entries() ProducerFunc[*Bucket[K, T]] {
	return ProduceOpen(func() (Iterator[*Bucket[K, T]], error) {
		return g.Cursor(), nil
	})
}

// Close stops pulling from the source, and releases it.
// Buckets already discovered remain readable. Operations that need more elements return ErrGroupsClosed.
// Closing a materialized Groups has no effect.
func (g *Groups[K, T]) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.done {
		g.finish(ErrGroupsClosed)
	}

	return nil
}

// GroupCursor iterates over the buckets of a Groups.
// Its position is private to it, and its Next method is safe for concurrent use.
type GroupCursor[K comparable, T any] struct {
	groups *Groups[K, T]
	pos    int
}

// Next implements Iterator.
// Once all buckets have been yielded, it returns false and the error that ended the traversal of the source, if any.
func (c *GroupCursor[K, T]) Next() (*Bucket[K, T], bool, error) {
	g := c.groups

	g.mu.Lock()
	defer g.mu.Unlock()

	for c.pos >= len(g.buckets) {
		if _, _, ok := g.pull(); !ok {
			return nil, false, g.err
		}
	}

	bucket := g.buckets[c.pos]
	c.pos++

	return bucket, true, nil
}
