package streamquery

import (
	"context"

	"golang.org/x/exp/slices"
)

// Function returns the result of applying an operation to elem.
type Function[T any, U any] func(elem T) U

// MapperFunc maps element elem to type U.
// The index is the 0-based index of elem, in the order produced by the upstream producer.
type MapperFunc[T any, U any] func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64) U

// PredicateFunc returns true elem matches a predicate.
// The index is the 0-based index of elem, in the order produced by the upstream producer.
type PredicateFunc[T any] func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64) bool

// LessFunc returns true if element a is "less" than element b.
type LessFunc[T any] func(ctx context.Context, cancel context.CancelCauseFunc, a T, b T) bool

// FuncMapper returns a mapper that calls mapp for each element.
func FuncMapper[T any, U any](mapp Function[T, U]) MapperFunc[T, U] {
	return func(_ context.Context, _ context.CancelCauseFunc, elem T, _ uint64) U {
		return mapp(elem)
	}
}

// FuncPredicate returns a predicate that calls pred for each element.
func FuncPredicate[T any](pred Function[T, bool]) PredicateFunc[T] {
	return func(_ context.Context, _ context.CancelCauseFunc, elem T, _ uint64) bool {
		return pred(elem)
	}
}

// Map returns a producer that calls mapp for each element produced by prod, mapping it to type U.
func Map[T any, U any](prod ProducerFunc[T], mapp MapperFunc[T, U]) ProducerFunc[U] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan U {
		ch := prod(ctx, cancel)

		outCh := make(chan U)

		go func() {
			defer close(outCh)

			index := uint64(0)

			for elem := range ch {
				outElem := mapp(ctx, cancel, elem, index)

				if contextDone(ctx) {
					return
				}

				select {
				case outCh <- outElem:
					index++

				case <-ctx.Done():
					return
				}
			}
		}()

		return outCh
	}
}

// FlatMap returns a producer that calls mapp for each element produced by prod, mapping it to an intermediate producer
// that produces elements of type U.
// The new producer produces all elements produced by the intermediate producers, in order.
func FlatMap[T any, U any](prod ProducerFunc[T], mapp MapperFunc[T, ProducerFunc[U]]) ProducerFunc[U] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan U {
		ch := prod(ctx, cancel)

		outCh := make(chan U)

		go func() {
			defer close(outCh)

			index := uint64(0)

			for elem := range ch {
				inner := mapp(ctx, cancel, elem, index)

				if contextDone(ctx) {
					return
				}

				index++

				for innerElem := range inner(ctx, cancel) {
					select {
					case outCh <- innerElem:

					case <-ctx.Done():
						return
					}
				}
			}
		}()

		return outCh
	}
}

// Filter returns a producer that calls filter for each element produced by prod, and only produces elements for which
// filter returns true.
func Filter[T any](prod ProducerFunc[T], filter PredicateFunc[T]) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		ch := prod(ctx, cancel)

		outCh := make(chan T)

		go func() {
			defer close(outCh)

			index := uint64(0)

			for elem := range ch {
				filterResult := filter(ctx, cancel, elem, index)

				if contextDone(ctx) {
					return
				}

				index++

				if !filterResult {
					continue
				}

				select {
				case outCh <- elem:

				case <-ctx.Done():
					return
				}
			}
		}()

		return outCh
	}
}

// OfType returns a producer that only produces the elements produced by prod whose dynamic type is, or implements, U.
func OfType[U any, T any](prod ProducerFunc[T]) ProducerFunc[U] {
	matching := Filter(prod, FuncPredicate(func(elem T) bool {
		_, ok := any(elem).(U)
		return ok
	}))

	return Map(matching, FuncMapper(func(elem T) U {
		return any(elem).(U)
	}))
}

// Peek returns a producer that calls peek for each element produced by prod, in order, and produces the same elements.
func Peek[T any](prod ProducerFunc[T], peek ConsumerFunc[T]) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		ch := prod(ctx, cancel)

		outCh := make(chan T)

		go func() {
			defer close(outCh)

			index := uint64(0)

			for elem := range ch {
				peek(ctx, cancel, elem, index)

				if contextDone(ctx) {
					return
				}

				select {
				case outCh <- elem:
					index++

				case <-ctx.Done():
					return
				}
			}
		}()

		return outCh
	}
}

// Limit returns a producer that produces the same elements as prod, in order, up to max elements.
func Limit[T any](prod ProducerFunc[T], max uint64) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		prodCtx, cancelProd := context.WithCancelCause(ctx)

		ch := prod(prodCtx, cancel)

		outCh := make(chan T)

		go func() {
			defer cancelProd(nil)

			defer close(outCh)

			if max == 0 {
				cancelProd(ErrLimitReached)
				return
			}

			done := uint64(0)

			for elem := range ch {
				select {
				case outCh <- elem:
					done++
					if done == max {
						cancelProd(ErrLimitReached)
						return
					}

				case <-ctx.Done():
					return
				}
			}
		}()

		return outCh
	}
}

// Skip returns a producer that produces the same elements as prod, in order, skipping the first num elements.
// The skipped elements are consumed before the first element is produced.
func Skip[T any](prod ProducerFunc[T], num uint64) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		ch := prod(ctx, cancel)

		outCh := make(chan T)

		go func() {
			defer close(outCh)

			done := uint64(0)

			for elem := range ch {
				done++
				if done <= num {
					continue
				}

				select {
				case outCh <- elem:

				case <-ctx.Done():
					return
				}
			}
		}()

		return outCh
	}
}

// Sort returns a producer that consumes elements from prod, sorts them using sort, and produces them in sorted order.
func Sort[T any](prod ProducerFunc[T], sort LessFunc[T]) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		ch := prod(ctx, cancel)

		result := []T{}

		for elem := range ch {
			result = append(result, elem)
		}

		slices.SortFunc(result, func(a T, b T) bool {
			return sort(ctx, cancel, a, b)
		})

		return Produce(result)(ctx, cancel)
	}
}

// Distinct returns a producer that produces the first element produced by prod for each distinct key,
// in order of first appearance.
func Distinct[T any, K comparable](prod ProducerFunc[T], key MapperFunc[T, K]) ProducerFunc[T] {
	return distinct(prod, key, func() func(K) bool {
		seen := map[K]struct{}{}

		return func(k K) bool {
			if _, ok := seen[k]; ok {
				return false
			}

			seen[k] = struct{}{}

			return true
		}
	})
}

// DistinctFunc returns a producer that produces the first element produced by prod for each distinct key,
// in order of first appearance. Keys are compared using equal, against every key seen so far.
func DistinctFunc[T any, K any](prod ProducerFunc[T], key MapperFunc[T, K], equal func(a K, b K) bool) ProducerFunc[T] {
	return distinct(prod, key, func() func(K) bool {
		seen := []K{}

		return func(k K) bool {
			matches := slices.IndexFunc(seen, func(s K) bool {
				return equal(k, s)
			})

			if matches >= 0 {
				return false
			}

			seen = append(seen, k)

			return true
		}
	})
}

// distinct returns a producer that produces the elements of prod whose key is accepted by a fresh
// first-occurrence tracker, created for every traversal.
func distinct[T any, K any](prod ProducerFunc[T], key MapperFunc[T, K], tracker func() func(K) bool) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		ch := prod(ctx, cancel)

		outCh := make(chan T)

		go func() {
			defer close(outCh)

			first := tracker()

			index := uint64(0)

			for elem := range ch {
				k := key(ctx, cancel, elem, index)

				if contextDone(ctx) {
					return
				}

				index++

				if !first(k) {
					continue
				}

				select {
				case outCh <- elem:

				case <-ctx.Done():
					return
				}
			}
		}()

		return outCh
	}
}

// Intersect returns a producer that produces the elements produced by prod, in order, for which an equal element
// is produced by every one of others. Duplicates produced by prod are kept, each one is matched independently.
// The other producers are consumed completely before the first element is produced.
func Intersect[T comparable](prod ProducerFunc[T], others ...ProducerFunc[T]) ProducerFunc[T] {
	return intersect(prod, others, func(ctx context.Context, cancel context.CancelCauseFunc, other ProducerFunc[T]) func(T) bool {
		set := map[T]struct{}{}
		for elem := range other(ctx, cancel) {
			set[elem] = struct{}{}
		}

		return func(elem T) bool {
			_, ok := set[elem]
			return ok
		}
	})
}

// IntersectFunc is like Intersect, but compares elements using equal.
func IntersectFunc[T any](prod ProducerFunc[T], equal func(a T, b T) bool, others ...ProducerFunc[T]) ProducerFunc[T] {
	return intersect(prod, others, func(ctx context.Context, cancel context.CancelCauseFunc, other ProducerFunc[T]) func(T) bool {
		elems := []T{}
		for elem := range other(ctx, cancel) {
			elems = append(elems, elem)
		}

		return func(elem T) bool {
			return slices.IndexFunc(elems, func(o T) bool {
				return equal(elem, o)
			}) >= 0
		}
	})
}

// intersect returns a producer that produces the elements of prod contained in all of others,
// using collect to turn each other producer into a membership test.
func intersect[T any](prod ProducerFunc[T], others []ProducerFunc[T],
	collect func(ctx context.Context, cancel context.CancelCauseFunc, other ProducerFunc[T]) func(T) bool,
) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		ch := prod(ctx, cancel)

		outCh := make(chan T)

		go func() {
			defer close(outCh)

			contains := make([]func(T) bool, len(others))
			for i, other := range others {
				contains[i] = collect(ctx, cancel, other)

				if contextDone(ctx) {
					return
				}
			}

			for elem := range ch {
				if !containedInAll(contains, elem) {
					continue
				}

				select {
				case outCh <- elem:

				case <-ctx.Done():
					return
				}
			}
		}()

		return outCh
	}
}

func containedInAll[T any](contains []func(T) bool, elem T) bool {
	for _, c := range contains {
		if !c(elem) {
			return false
		}
	}

	return true
}

// Identity returns a mapper that returns the same element it receives.
func Identity[T any]() MapperFunc[T, T] {
	return func(_ context.Context, _ context.CancelCauseFunc, elem T, _ uint64) T {
		return elem
	}
}
