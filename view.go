package streamquery

import (
	"context"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// Entry is a key and the value computed for it.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// ReducerFunc computes a value from the elements produced by prod.
type ReducerFunc[T any, V any] func(ctx context.Context, prod ProducerFunc[T]) (V, error)

// View computes a value per bucket of a Groups.
// A View holds no state of its own: values are computed from the buckets on every access.
// Every access materializes the Groups first, so that values are computed over complete buckets.
type View[K comparable, T any, V any] struct {
	groups *Groups[K, T]
	reduce ReducerFunc[T, V]
}

// NewView returns a View that computes values for the buckets of groups using reduce.
func NewView[K comparable, T any, V any](groups *Groups[K, T], reduce ReducerFunc[T, V]) *View[K, T, V] {
	return &View[K, T, V]{
		groups: groups,
		reduce: reduce,
	}
}

// Get returns the value computed for the bucket of key.
// It returns false if there is no such bucket.
func (v *View[K, T, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V

	bucket, ok, err := v.groups.Get(key)
	if err != nil || !ok {
		return zero, ok, err
	}

	value, err := v.compute(ctx, bucket)
	if err != nil {
		return zero, true, err
	}

	return value, true, nil
}

// Keys returns the keys of the Groups, in the order they were discovered.
func (v *View[K, T, V]) Keys() ([]K, error) {
	return v.groups.Keys()
}

// Entries returns a producer of the values computed for all buckets, in the order their keys were discovered.
// If a value cannot be computed, the stream's context will be canceled with the error.
func (v *View[K, T, V]) Entries() ProducerFunc[Entry[K, V]] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan Entry[K, V] {
		buckets, err := v.groups.Buckets()
		if err != nil {
			cancel(err)
			return closedChannel[Entry[K, V]]()
		}

		return Map(Produce(buckets), func(ctx context.Context, cancel context.CancelCauseFunc, bucket *Bucket[K, T], _ uint64) Entry[K, V] {
			value, err := v.compute(ctx, bucket)
			if err != nil {
				cancel(err)
			}

			return Entry[K, V]{Key: bucket.Key(), Value: value}
		})(ctx, cancel)
	}
}

// ToMap returns the values computed for all buckets.
func (v *View[K, T, V]) ToMap(ctx context.Context) (map[K]V, error) {
	return Reduce(ctx, v.Entries(), map[K]V{}, CollectMap(
		FuncMapper(func(entry Entry[K, V]) K {
			return entry.Key
		}),
		FuncMapper(func(entry Entry[K, V]) V {
			return entry.Value
		}),
	))
}

func (v *View[K, T, V]) compute(ctx context.Context, bucket *Bucket[K, T]) (V, error) {
	value, err := v.reduce(ctx, bucket.Producer())
	if err != nil {
		return value, errors.Wrapf(err, "group %v", bucket.Key())
	}

	return value, nil
}

// Sizes returns a View of the number of elements per bucket.
func Sizes[K comparable, T any](groups *Groups[K, T]) *View[K, T, uint64] {
	return NewView[K, T, uint64](groups, Count[T])
}

// Sums returns a View of the Sum per bucket.
func Sums[K comparable, T any](groups *Groups[K, T], num Function[T, Number]) *View[K, T, Number] {
	return NewView(groups, func(ctx context.Context, prod ProducerFunc[T]) (Number, error) {
		return Sum(ctx, prod, num)
	})
}

// Averages returns a View of the Average per bucket.
func Averages[K comparable, T any](groups *Groups[K, T], num Function[T, Number]) *View[K, T, Number] {
	return NewView(groups, func(ctx context.Context, prod ProducerFunc[T]) (Number, error) {
		return Average(ctx, prod, num)
	})
}

// Means returns a View of the Mean, that is the midrange, per bucket.
func Means[K comparable, T any](groups *Groups[K, T], num Function[T, Number]) *View[K, T, Number] {
	return NewView(groups, func(ctx context.Context, prod ProducerFunc[T]) (Number, error) {
		return Mean(ctx, prod, num)
	})
}

// Mins returns a View of the Min element per bucket.
func Mins[K comparable, T any, C constraints.Ordered](groups *Groups[K, T], key Function[T, C]) *View[K, T, T] {
	return NewView(groups, func(ctx context.Context, prod ProducerFunc[T]) (T, error) {
		return Min(ctx, prod, key)
	})
}

// Maxes returns a View of the Max element per bucket.
func Maxes[K comparable, T any, C constraints.Ordered](groups *Groups[K, T], key Function[T, C]) *View[K, T, T] {
	return NewView(groups, func(ctx context.Context, prod ProducerFunc[T]) (T, error) {
		return Max(ctx, prod, key)
	})
}

// MinsFunc returns a View of the MinFunc element per bucket.
func MinsFunc[K comparable, T any](groups *Groups[K, T], cmp func(a T, b T) int) *View[K, T, T] {
	return NewView(groups, func(ctx context.Context, prod ProducerFunc[T]) (T, error) {
		return MinFunc(ctx, prod, cmp)
	})
}

// MaxesFunc returns a View of the MaxFunc element per bucket.
func MaxesFunc[K comparable, T any](groups *Groups[K, T], cmp func(a T, b T) int) *View[K, T, T] {
	return NewView(groups, func(ctx context.Context, prod ProducerFunc[T]) (T, error) {
		return MaxFunc(ctx, prod, cmp)
	})
}

// MinsNumber returns a View of the MinNumber element per bucket.
func MinsNumber[K comparable, T any](groups *Groups[K, T], num Function[T, Number]) *View[K, T, T] {
	return NewView(groups, func(ctx context.Context, prod ProducerFunc[T]) (T, error) {
		return MinNumber(ctx, prod, num)
	})
}

// MaxesNumber returns a View of the MaxNumber element per bucket.
func MaxesNumber[K comparable, T any](groups *Groups[K, T], num Function[T, Number]) *View[K, T, T] {
	return NewView(groups, func(ctx context.Context, prod ProducerFunc[T]) (T, error) {
		return MaxNumber(ctx, prod, num)
	})
}
