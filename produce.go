package streamquery

import (
	"context"
	"io"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// ProducerFunc returns a channel of elements for a stream.
// Every call starts a new traversal of the producer's source.
type ProducerFunc[T any] func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T

// Produce returns a producer that produces the elements of the given slices, in order.
// The producer may be called any number of times.
func Produce[T any](slices ...[]T) ProducerFunc[T] {
	return func(ctx context.Context, _ context.CancelCauseFunc) <-chan T {
		outCh := make(chan T)

		go func() {
			defer close(outCh)

			for _, slice := range slices {
				for _, elem := range slice {
					select {
					case outCh <- elem:

					case <-ctx.Done():
						return
					}
				}
			}
		}()

		return outCh
	}
}

// Split returns a producer of the substrings of s separated by sep, in order.
// Empty substrings are kept, so a string without sep produces s itself. The producer may be called any number of times.
func Split(s string, sep rune) ProducerFunc[string] {
	return Produce(strings.Split(s, string(sep)))
}

// ProduceChannel returns a one-shot producer that produces the elements received through the given channels, in order.
func ProduceChannel[T any](channels ...<-chan T) ProducerFunc[T] {
	return Once(func(ctx context.Context, _ context.CancelCauseFunc) <-chan T {
		outCh := make(chan T)

		go func() {
			defer close(outCh)

			for _, ch := range channels {
				for elem := range ch {
					select {
					case outCh <- elem:

					case <-ctx.Done():
						return
					}
				}
			}
		}()

		return outCh
	})
}

// ProduceIterator returns a one-shot producer that produces the elements returned by it, in order.
// If it returns an error, the stream's context will be canceled with that error.
// If it implements io.Closer, it is closed once the traversal ends.
func ProduceIterator[T any](it Iterator[T]) ProducerFunc[T] {
	return Once(iterate(it))
}

// ProduceOpen returns a producer that calls open at the start of every traversal, and produces the elements
// returned by the opened iterator, in order.
// open acts as a restart hook: sources that cannot be rewound, such as files or network streams, can be
// traversed any number of times by reopening them.
// If open returns an error, the stream's context will be canceled with that error.
func ProduceOpen[T any](open func() (Iterator[T], error)) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		it, err := open()
		if err != nil {
			cancel(errors.Wrap(err, "open iterator"))
			return closedChannel[T]()
		}

		return iterate(it)(ctx, cancel)
	}
}

// Once returns a producer that produces the elements produced by prod, but that can only be called once.
// Calling it again will cancel the stream's context using ErrSourceConsumed, and produce no elements.
func Once[T any](prod ProducerFunc[T]) ProducerFunc[T] {
	started := atomic.Bool{}

	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		if started.Swap(true) {
			cancel(ErrSourceConsumed)
			return closedChannel[T]()
		}

		return prod(ctx, cancel)
	}
}

// Merge returns a producer that produces the elements produced by the given producers, in order.
// Each producer is drained completely before the next one is called. Duplicates are preserved.
func Merge[T any](producers ...ProducerFunc[T]) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		outCh := make(chan T)

		go func() {
			defer close(outCh)

			for _, prod := range producers {
				if contextDone(ctx) {
					return
				}

				for elem := range prod(ctx, cancel) {
					select {
					case outCh <- elem:

					case <-ctx.Done():
						return
					}
				}
			}
		}()

		return outCh
	}
}

// iterate returns a producer that pulls elements from it until it is exhausted.
func iterate[T any](it Iterator[T]) ProducerFunc[T] {
	return func(ctx context.Context, cancel context.CancelCauseFunc) <-chan T {
		outCh := make(chan T)

		go func() {
			defer close(outCh)

			if closer, ok := it.(io.Closer); ok {
				defer func() {
					if err := closer.Close(); err != nil {
						cancel(errors.Wrap(err, "close iterator"))
					}
				}()
			}

			for {
				elem, ok, err := it.Next()
				if err != nil {
					cancel(err)
					return
				}

				if !ok {
					return
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

func closedChannel[T any]() <-chan T {
	ch := make(chan T)
	close(ch)

	return ch
}
