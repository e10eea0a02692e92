package streamquery

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestMap(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Produce([]int{1, 2, 3, 4, 5})

	ints = Map(ints, func(_ context.Context, _ context.CancelCauseFunc, elem int, index uint64) int {
		is.Equal(index, uint64(elem-1))

		return elem * 2
	})

	result, _ := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(result, []int{2, 4, 6, 8, 10})
}

func TestMap_Cancel(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Produce([]int{1, 2, 3, 4, 5})

	ints = Map(ints, func(_ context.Context, cancel context.CancelCauseFunc, elem int, index uint64) int {
		is.True(elem <= 3)
		is.Equal(index, uint64(elem-1))

		if elem == 3 {
			cancel(nil)
			return 0
		}

		return elem * 2
	})

	result, err := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(result, []int{2, 4})
	is.True(errors.Is(err, context.Canceled))
}

func TestFilter(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Produce([]int{1, 2, 3, 4, 5})

	ints = Filter(ints, even)

	result, _ := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(result, []int{2, 4})
}

func TestFilter_Cancel(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Produce([]int{1, 2, 3, 4, 5})

	evenCancel := func(_ context.Context, cancel context.CancelCauseFunc, elem int, index uint64) bool {
		is.True(elem <= 3)
		is.Equal(index, uint64(elem-1))

		if elem == 3 {
			cancel(nil)
			return false
		}

		return elem%2 == 0
	}

	ints = Filter(ints, evenCancel)

	result, err := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(result, []int{2})
	is.True(errors.Is(err, context.Canceled))
}

func TestPeek(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Produce([]int{1, 2, 3, 4, 5})

	sum := 0

	ints = Peek(ints, func(_ context.Context, _ context.CancelCauseFunc, elem int, index uint64) {
		is.Equal(index, uint64(elem-1))

		sum += elem
	})

	_, _ = Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(sum, 15)
}

func TestPeek_Cancel(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Produce([]int{1, 2, 3, 4, 5})

	sum := 0

	ints = Peek(ints, func(_ context.Context, cancel context.CancelCauseFunc, elem int, index uint64) {
		is.True(elem <= 3)
		is.Equal(index, uint64(elem-1))

		if elem == 3 {
			cancel(nil)
			return
		}

		sum += elem
	})

	_, err := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(sum, 3)
	is.True(errors.Is(err, context.Canceled))
}

func TestSort(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Produce([]int{3, 1, 2, 4, 5})

	ints = Sort(ints, func(_ context.Context, _ context.CancelCauseFunc, a int, b int) bool {
		return a < b
	})

	result, _ := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(result, []int{1, 2, 3, 4, 5})
}

func TestSort_Cancel(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Produce([]int{3, 1, 2, 4, 5})

	ints = Sort(ints, func(_ context.Context, cancel context.CancelCauseFunc, a int, b int) bool { //nolint:varnamelen // a and b are okay for sorting
		if a == 4 || b == 4 {
			cancel(nil)
			return false
		}

		return a < b
	})

	_, err := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.True(errors.Is(err, context.Canceled))
}

func TestLimit(t *testing.T) { //nolint:gocognit // it's a bit more involved
	tests := []struct {
		givenLimit              uint64
		want                    []int
		wantProducerCancelCause error
	}{
		{
			givenLimit:              3,
			want:                    []int{1, 2, 2, 3, 3, 3},
			wantProducerCancelCause: ErrLimitReached,
		},
		{
			givenLimit:              0,
			want:                    nil,
			wantProducerCancelCause: ErrLimitReached,
		},
		{
			givenLimit: 100,
			want:       []int{1, 2, 2, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 5, 1, 2, 2, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 5, 1, 2, 2, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 5},
		},
	}

	for idx, test := range tests {
		t.Run(strconv.Itoa(idx), func(t *testing.T) {
			is := is.New(t)

			ctx := context.Background()

			producerCancelCause := make(chan error)

			ints := func(ctx context.Context, _ context.CancelCauseFunc) <-chan int {
				outCh := make(chan int)

				go func() {
					var cancelCause error

					defer func() {
						producerCancelCause <- cancelCause
					}()

					defer close(outCh)

					for _, i := range []int{1, 2, 3, 4, 5, 1, 2, 3, 4, 5, 1, 2, 3, 4, 5} {
						select {
						case outCh <- i:

						case <-ctx.Done():
							cancelCause = context.Cause(ctx)
							return
						}
					}
				}()

				return outCh
			}

			ints = Limit(ints, test.givenLimit)

			expectedIndex := uint64(0)

			ints = FlatMap(ints, func(_ context.Context, _ context.CancelCauseFunc, elem int, index uint64) ProducerFunc[int] {
				is.Equal(index, expectedIndex)
				expectedIndex++

				elems := make([]int, elem)
				for i := 0; i < elem; i++ {
					elems[i] = elem
				}

				return Produce(elems)
			})

			result, _ := Reduce(ctx, ints, nil, CollectSlice[int]())

			is.Equal(result, test.want)
			is.Equal(<-producerCancelCause, test.wantProducerCancelCause)
		})
	}
}

func TestSkip(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Produce([]int{1, 2, 3, 4, 5})

	ints = Skip(ints, 3)

	result, _ := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(result, []int{4, 5})
}

func TestFlatMap(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Produce([]int{1, 2, 3, 4, 5})

	ints = FlatMap(ints, func(_ context.Context, _ context.CancelCauseFunc, elem int, index uint64) ProducerFunc[int] {
		is.Equal(index, uint64(elem-1))

		elems := make([]int, elem)
		for i := 0; i < elem; i++ {
			elems[i] = i + 1
		}

		return Produce(elems)
	})

	result, _ := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(result, []int{1, 1, 2, 1, 2, 3, 1, 2, 3, 4, 1, 2, 3, 4, 5})
}

func TestSkip_Exhausted(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Skip(Produce([]int{1, 2, 3}), 5)

	result, err := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.NoErr(err)
	is.Equal(result, nil)
}

func TestDistinct(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Distinct(Produce([]int{3, 1, 2, 1, 3}), Identity[int]())

	result, _ := Reduce(ctx, ints, nil, CollectSlice[int]())
	is.Equal(result, []int{3, 1, 2})

	result, _ = Reduce(ctx, ints, nil, CollectSlice[int]())
	is.Equal(result, []int{3, 1, 2})
}

func TestDistinct_Key(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	strs := Distinct(Produce([]string{"a", "bb", "c", "dd", "eee"}), FuncMapper(func(elem string) int {
		return len(elem)
	}))

	result, _ := Reduce(ctx, strs, nil, CollectSlice[string]())

	is.Equal(result, []string{"a", "bb", "eee"})
}

func TestDistinctFunc(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	strs := DistinctFunc(Produce([]string{"a", "B", "A", "b", "c"}), Identity[string](), strings.EqualFold)

	result, _ := Reduce(ctx, strs, nil, CollectSlice[string]())

	is.Equal(result, []string{"a", "B", "c"})
}

func TestDistinct_Cancel(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Distinct(Produce([]int{1, 2, 3, 4}), func(_ context.Context, cancel context.CancelCauseFunc, elem int, _ uint64) int {
		if elem == 3 {
			cancel(nil)
		}

		return elem
	})

	result, err := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(result, []int{1, 2})
	is.True(errors.Is(err, context.Canceled))
}

func TestIntersect(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Intersect(Produce([]int{1, 2, 2, 3}), Produce([]int{2, 2, 4}))

	result, _ := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(result, []int{2, 2})
}

func TestIntersect_Many(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Intersect(Produce([]int{5, 1, 2, 3, 1}), Produce([]int{1, 3, 5}), Produce([]int{3, 1}))

	result, _ := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(result, []int{1, 3, 1})
}

func TestIntersect_NoOthers(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	ints := Intersect(Produce([]int{1, 2}))

	result, _ := Reduce(ctx, ints, nil, CollectSlice[int]())

	is.Equal(result, []int{1, 2})
}

func TestIntersectFunc(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	strs := IntersectFunc(Produce([]string{"a", "B", "c", "b"}), strings.EqualFold, Produce([]string{"b", "C"}))

	result, _ := Reduce(ctx, strs, nil, CollectSlice[string]())

	is.Equal(result, []string{"B", "c", "b"})
}

func TestOfType(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	elems := Produce([]any{1, "a", 2.5, "b", nil, 3})

	strs, err := ReduceSlice(ctx, OfType[string](elems))
	is.NoErr(err)
	is.Equal(strs, []string{"a", "b"})

	ints, err := ReduceSlice(ctx, OfType[int](elems))
	is.NoErr(err)
	is.Equal(ints, []int{1, 3})
}

func TestOfType_Interface(t *testing.T) {
	is := is.New(t)

	ctx := context.Background()

	elems := Produce([]any{Long(1), "a", Double(2)})

	stringers, err := ReduceSlice(ctx, OfType[fmt.Stringer](elems))
	is.NoErr(err)
	is.Equal(len(stringers), 2)
	is.Equal(stringers[0].String(), "1")
}
