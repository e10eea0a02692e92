// Package streamquery provides deferred-execution queries over streams of elements.
// Streams form a pipeline of operations that elements are being passed through.
//
// Streams are constructed by creating an initial ProducerFunc, which can produce elements from slices,
// channels, pull iterators, or any arbitrary source. Calling a ProducerFunc starts a new traversal of its source.
// Producers built over slices or over an open function can be traversed any number of times; producers built
// over channels or iterators are one-shot, and calling them a second time cancels the stream with ErrSourceConsumed.
//
// Elements may then be operated upon using mapping, filtering, deduplication, intersection, merging, and sorting
// operations (which are intermediate ProducerFuncs).
//
// Finally, the elements are consumed by terminal operations, such as collecting them into slices or maps,
// checking for matching elements, computing numeric aggregates, or simply iterating over them.
//
// GroupBy turns a producer into a Groups, a key to bucket mapping that is built incrementally while consumers
// ask for it. The source is read only once, no matter how many cursors, lookups, views, or derived groups are
// reading from the same Groups. Views compute per-group aggregates such as Sizes, Sums, Averages, Means, Mins
// and Maxes.
//
// Stream operations will receive a context.CancelCauseFunc. Calling the cancel function will
// cancel the entire stream, thus short-circuiting processing elements. Depending on the intermediate
// operations and the final consumer, the result of the consumer may be undefined.
// Producer implementations must be prepared to be canceled at any time by checking the provided context.Context.
//
// Streams are always lazy, meaning that producers will produce a new element only after a
// downstream producer or consumer has consumed the previous element.
package streamquery
