package streamquery

import "context"

// CollectSlice returns an accumulator that collects elements into a slice.
func CollectSlice[T any]() AccumulatorFunc[T, []T] {
	return func(_ context.Context, _ context.CancelCauseFunc, elem T, _ uint64, acc []T) []T {
		return append(acc, elem)
	}
}

// CollectMap returns an accumulator that collects elements into a map.
// Elements are mapped using key and value, respectively.
// If a key is already in the map, the map entry will be overwritten, see CollectMapNoDuplicateKeys.
func CollectMap[T any, K comparable, V any](key MapperFunc[T, K], value MapperFunc[T, V]) AccumulatorFunc[T, map[K]V] {
	return func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64, acc map[K]V) map[K]V {
		acc[key(ctx, cancel, elem, index)] = value(ctx, cancel, elem, index)
		return acc
	}
}

// CollectMapNoDuplicateKeys returns an accumulator that collects elements into a map.
// Elements are mapped using key and value, respectively.
// If a key is already in the map, the stream's context will be canceled with a DuplicateKeyError.
func CollectMapNoDuplicateKeys[T any, K comparable, V any](key MapperFunc[T, K], value MapperFunc[T, V]) AccumulatorFunc[T, map[K]V] {
	return func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64, acc map[K]V) map[K]V {
		key := key(ctx, cancel, elem, index)

		if _, ok := acc[key]; ok {
			cancel(&DuplicateKeyError[T, K]{
				Element: elem,
				Key:     key,
			})

			return acc
		}

		acc[key] = value(ctx, cancel, elem, index)

		return acc
	}
}

// CollectGroup returns an accumulator that collects elements into a group map.
// Elements will be grouped into slices according to key.
// It is the eager counterpart of GroupBy: the whole stream is consumed by a single reduction,
// and the result cannot be shared between consumers while it is being built.
func CollectGroup[T any, K comparable, V any](key MapperFunc[T, K], value MapperFunc[T, V]) AccumulatorFunc[T, map[K][]V] {
	return func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64, acc map[K][]V) map[K][]V {
		key := key(ctx, cancel, elem, index)
		acc[key] = append(acc[key], value(ctx, cancel, elem, index))

		return acc
	}
}

// CollectPartition returns an accumulator that collects elements into a partition map.
// Elements will be grouped into slices according to pred.
func CollectPartition[T any, V any](pred PredicateFunc[T], value MapperFunc[T, V]) AccumulatorFunc[T, map[bool][]V] {
	return CollectGroup(MapperFunc[T, bool](pred), value)
}
