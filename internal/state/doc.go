// Package state provides concurrency-safe storage of receiver state for gpswatch.
//
// This package is internal to gpswatch and holds the two pieces of
// shared state between the sampling loop and API callers:
//
//   - [Store]: the sentence cache, keyed by message class, latest wins
//   - [Fix]: the derived position snapshot, published atomically
//
// The sampling loop is the only writer; any number of callers may read
// concurrently. The fix snapshot is an immutable value replaced
// wholesale on every update, so a reader can never observe a partially
// updated position.
//
// Users of the gpswatch library should not need to interact with this
// package directly. State is managed internally by the Receiver.
package state
