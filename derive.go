package streamquery

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Sample returns a new Groups holding the buckets of g whose key matches, with the same elements.
// match is called with the new Groups locked: it must not call methods of the new Groups or of its buckets.
// The new Groups materializes g the first time it needs an element, and holds copies of g's buckets.
func (g *Groups[K, T]) Sample(match func(key K) bool) *Groups[K, T] {
	return g.derive("sample", match, -1)
}

// Amount returns a new Groups holding all buckets of g, each capped to its first n elements.
// A negative n leaves buckets uncapped.
// The new Groups materializes g the first time it needs an element, and holds copies of g's buckets.
func (g *Groups[K, T]) Amount(n int) *Groups[K, T] {
	return g.derive("amount", nil, n)
}

// derive returns a new Groups fed by the buckets of g.
// Locks are always taken on the derived Groups first, then on g.
func (g *Groups[K, T]) derive(view string, match func(K) bool, limit int) *Groups[K, T] {
	var (
		parent []*Bucket[K, T]
		loaded bool
		pos    int
	)

	derived := newGroups[K, T](g.opts)

	derived.feed = func() (K, []T, bool, error) {
		var zero K

		if !loaded {
			buckets, err := g.Buckets()
			if err != nil {
				return zero, nil, false, errors.Wrapf(err, "derive %s", view)
			}

			parent, loaded = buckets, true

			g.opts.logger.Debug("deriving groups",
				zap.String("view", view),
				zap.Int("groups", len(parent)),
				zap.Int("limit", limit))
		}

		for pos < len(parent) {
			bucket := parent[pos]
			pos++

			if match != nil && !match(bucket.key) {
				continue
			}

			elems := bucket.Values()
			if limit >= 0 && len(elems) > limit {
				elems = elems[:limit]
			}

			return bucket.key, elems, true, nil
		}

		return zero, nil, false, nil
	}

	return derived
}
