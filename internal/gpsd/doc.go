// Package gpsd provides the connection to a gpsd daemon for gpswatch.
//
// This package is internal to gpswatch and handles the TCP connection,
// the ?WATCH handshake that enables JSON streaming, and the decoding of
// newline-delimited JSON sentences. Reads are bounded by a deadline so
// that callers can poll for at most one pending sentence per call
// without ever blocking indefinitely on a hung daemon.
//
// The main components are:
//
//   - [Conn]: a live gpsd connection with a one-sentence-per-call Next method
//   - [Sentence]: one decoded report, stamped with its local arrival time
//
// Users of the gpswatch library should not need to interact with this
// package directly. The connection is managed by the Receiver.
package gpsd
