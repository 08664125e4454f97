// Package sampler provides the background polling loop for gpswatch.
//
// This package is internal to gpswatch and owns the goroutine that
// pulls sentences from the daemon connection, writes them into the
// state store, and applies TPV/SKY processing rules. The loop cannot
// terminate except through [Sampler.Stop] or context cancellation:
// every per-iteration error is caught and logged, and sentence
// processing runs inside a panic recovery boundary.
//
// Users of the gpswatch library should not need to interact with this
// package directly. The loop is managed by the Receiver.
package sampler
