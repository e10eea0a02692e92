package streamquery

import (
	"context"

	"github.com/cockroachdb/errors"
)

// contextDone returns true if ctx.Err() != nil.
func contextDone(ctx context.Context) bool {
	return ctx.Err() != nil
}

// streamCause returns the cause of ctx's cancelation, treating a short circuit as a regular end of the stream.
func streamCause(ctx context.Context) error {
	err := context.Cause(ctx)
	if errors.Is(err, ErrShortCircuit) {
		err = nil
	}

	return err
}
