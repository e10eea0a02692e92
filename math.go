package streamquery

import (
	"context"

	"golang.org/x/exp/constraints"
)

// Sum returns the sum of the Numbers num returns for the elements produced by prod.
// The result has the greatest Kind among the summed Numbers.
// It returns ErrEmptySource if prod produces no elements, and ErrInvalidNumber if num returns an invalid Number.
func Sum[T any](ctx context.Context, prod ProducerFunc[T], num Function[T, Number]) (Number, error) {
	sum, count, err := total(ctx, prod, num)
	if err != nil {
		return Number{}, err
	}

	if count == 0 {
		return Number{}, ErrEmptySource
	}

	return sum, nil
}

// Average returns the sum of the Numbers num returns for the elements produced by prod, divided by their count.
// The division happens in the Kind of the sum, integer kinds truncate.
// It returns ErrEmptySource if prod produces no elements, and ErrInvalidNumber if num returns an invalid Number.
func Average[T any](ctx context.Context, prod ProducerFunc[T], num Function[T, Number]) (Number, error) {
	sum, count, err := total(ctx, prod, num)
	if err != nil {
		return Number{}, err
	}

	if count == 0 {
		return Number{}, ErrEmptySource
	}

	return sum.Div(int64(count))
}

// Mean returns the midrange of the Numbers num returns for the elements produced by prod,
// that is, the sum of the smallest and the largest Number, divided by 2.
// This is not the arithmetic mean, see Average for that.
// It returns ErrEmptySource if prod produces no elements, and ErrInvalidNumber if num returns an invalid Number.
func Mean[T any](ctx context.Context, prod ProducerFunc[T], num Function[T, Number]) (Number, error) {
	var lowest, highest Number

	count := uint64(0)

	err := Each(ctx, prod, func(_ context.Context, cancel context.CancelCauseFunc, elem T, _ uint64) {
		n := num(elem)
		if !n.IsValid() {
			cancel(ErrInvalidNumber)
			return
		}

		count++

		if count == 1 {
			lowest, highest = n, n
			return
		}

		if c, _ := n.Cmp(lowest); c < 0 {
			lowest = n
		}

		if c, _ := n.Cmp(highest); c > 0 {
			highest = n
		}
	})

	if err != nil {
		return Number{}, err
	}

	if count == 0 {
		return Number{}, ErrEmptySource
	}

	return lowest.Add(highest).Div(2)
}

func total[T any](ctx context.Context, prod ProducerFunc[T], num Function[T, Number]) (Number, uint64, error) {
	var acc Number

	count := uint64(0)

	err := Each(ctx, prod, func(_ context.Context, cancel context.CancelCauseFunc, elem T, _ uint64) {
		n := num(elem)
		if !n.IsValid() {
			cancel(ErrInvalidNumber)
			return
		}

		if count == 0 {
			acc = n
		} else {
			acc = acc.Add(n)
		}

		count++
	})

	return acc, count, err
}

// keyed is an element paired with the value it is compared by.
type keyed[T any, C any] struct {
	elem T
	key  C
}

// Min returns the element produced by prod for which key returns the smallest value.
// If several elements share the smallest value, the first one is returned.
// It returns ErrEmptySource if prod produces no elements.
func Min[T any, C constraints.Ordered](ctx context.Context, prod ProducerFunc[T], key Function[T, C]) (T, error) {
	return extremeBy(ctx, prod, FuncMapper(key), func(candidate C, current C) (bool, error) {
		return candidate < current, nil
	})
}

// Max returns the element produced by prod for which key returns the largest value.
// If several elements share the largest value, the first one is returned.
// It returns ErrEmptySource if prod produces no elements.
func Max[T any, C constraints.Ordered](ctx context.Context, prod ProducerFunc[T], key Function[T, C]) (T, error) {
	return extremeBy(ctx, prod, FuncMapper(key), func(candidate C, current C) (bool, error) {
		return candidate > current, nil
	})
}

// MinFunc returns the smallest element produced by prod according to cmp, which returns a negative number
// if a is less than b, a positive number if a is greater than b, and zero if they are equal.
// If several elements are equally small, the first one is returned.
// It returns ErrEmptySource if prod produces no elements.
func MinFunc[T any](ctx context.Context, prod ProducerFunc[T], cmp func(a T, b T) int) (T, error) {
	return extremeBy(ctx, prod, Identity[T](), func(candidate T, current T) (bool, error) {
		return cmp(candidate, current) < 0, nil
	})
}

// MaxFunc returns the largest element produced by prod according to cmp.
// If several elements are equally large, the first one is returned.
// It returns ErrEmptySource if prod produces no elements.
func MaxFunc[T any](ctx context.Context, prod ProducerFunc[T], cmp func(a T, b T) int) (T, error) {
	return extremeBy(ctx, prod, Identity[T](), func(candidate T, current T) (bool, error) {
		return cmp(candidate, current) > 0, nil
	})
}

// MinNumber returns the element produced by prod for which num returns the smallest Number.
// If several elements share the smallest Number, the first one is returned.
// It returns ErrEmptySource if prod produces no elements, and ErrNotComparable if num returns an invalid Number.
func MinNumber[T any](ctx context.Context, prod ProducerFunc[T], num Function[T, Number]) (T, error) {
	return extremeBy(ctx, prod, comparableNumber(num), func(candidate Number, current Number) (bool, error) {
		c, err := candidate.Cmp(current)
		return c < 0, err
	})
}

// MaxNumber returns the element produced by prod for which num returns the largest Number.
// If several elements share the largest Number, the first one is returned.
// It returns ErrEmptySource if prod produces no elements, and ErrNotComparable if num returns an invalid Number.
func MaxNumber[T any](ctx context.Context, prod ProducerFunc[T], num Function[T, Number]) (T, error) {
	return extremeBy(ctx, prod, comparableNumber(num), func(candidate Number, current Number) (bool, error) {
		c, err := candidate.Cmp(current)
		return c > 0, err
	})
}

// comparableNumber wraps num so that an invalid Number is reported even for a single element.
func comparableNumber[T any](num Function[T, Number]) MapperFunc[T, Number] {
	return func(_ context.Context, cancel context.CancelCauseFunc, elem T, _ uint64) Number {
		n := num(elem)
		if !n.IsValid() {
			cancel(ErrNotComparable)
		}

		return n
	}
}

// extremeBy returns the first element produced by prod whose key no later element's key beats.
// key is called once per element.
func extremeBy[T any, C any](ctx context.Context, prod ProducerFunc[T], key MapperFunc[T, C],
	beats func(candidate C, current C) (bool, error),
) (T, error) {
	pairs := Map(prod, func(ctx context.Context, cancel context.CancelCauseFunc, elem T, index uint64) keyed[T, C] {
		return keyed[T, C]{elem: elem, key: key(ctx, cancel, elem, index)}
	})

	var result keyed[T, C]

	found := false

	err := Each(ctx, pairs, func(_ context.Context, cancel context.CancelCauseFunc, elem keyed[T, C], _ uint64) {
		if !found {
			result, found = elem, true
			return
		}

		better, err := beats(elem.key, result.key)
		if err != nil {
			cancel(err)
			return
		}

		if better {
			result = elem
		}
	})

	if err != nil {
		var zero T
		return zero, err
	}

	if !found {
		var zero T
		return zero, ErrEmptySource
	}

	return result.elem, nil
}
