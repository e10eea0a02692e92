package streamquery

import "context"

// Iterator is a pull-based source of elements.
// Next returns the next element and true, or false once the source is exhausted.
// A non-nil error means the source failed, and no further elements will be returned.
type Iterator[T any] interface {
	Next() (value T, ok bool, err error)
}

// IteratorFunc adapts a function to the Iterator interface.
type IteratorFunc[T any] func() (T, bool, error)

// Next implements Iterator.
func (f IteratorFunc[T]) Next() (T, bool, error) {
	return f()
}

// SliceIterator returns an iterator over the elements of slice.
func SliceIterator[T any](slice []T) Iterator[T] {
	i := 0

	return IteratorFunc[T](func() (T, bool, error) {
		if i >= len(slice) {
			var zero T
			return zero, false, nil
		}

		elem := slice[i]
		i++

		return elem, true, nil
	})
}

// Cursor pulls elements from a single traversal of a producer.
// A Cursor is not safe for concurrent use.
type Cursor[T any] struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	ch     <-chan T
	done   bool
	err    error
}

// Pull calls prod once and returns a cursor over the elements it produces.
// The cursor must be drained or closed to release the producer.
func Pull[T any](ctx context.Context, prod ProducerFunc[T]) *Cursor[T] {
	ctx, cancel := context.WithCancelCause(ctx)

	return &Cursor[T]{
		ctx:    ctx,
		cancel: cancel,
		ch:     prod(ctx, cancel),
	}
}

// Next implements Iterator.
// Once the producer is finished, it returns false and the cause of the stream's cancelation, if any.
func (c *Cursor[T]) Next() (T, bool, error) {
	var zero T

	if c.done {
		return zero, false, c.err
	}

	elem, ok := <-c.ch
	if ok {
		return elem, true, nil
	}

	c.finish(streamCause(c.ctx))

	return zero, false, c.err
}

// Close stops the traversal. Subsequent calls to Next return false.
func (c *Cursor[T]) Close() error {
	if !c.done {
		c.finish(nil)
	}

	return nil
}

func (c *Cursor[T]) finish(err error) {
	c.done = true
	c.err = err
	c.cancel(ErrShortCircuit)
}
