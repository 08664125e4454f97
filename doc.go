// Package gpswatch provides non-blocking, cached access to GPS receiver
// state via a local gpsd daemon.
//
// gpswatch polls gpsd in the background, caches the most recent sentence
// of every message class, and derives a position snapshot (latitude,
// longitude, altitude, HDOP) plus a drift-corrected timestamp from TPV
// and SKY sentences. Readers never block on the sampling loop and never
// observe a partially updated position: the snapshot is an immutable
// value replaced atomically on every update.
//
// # Quick Start
//
// Create a receiver and start sampling:
//
//	rcv, _ := gpswatch.New()
//	rcv.Start(context.Background())
//	defer rcv.Stop()
//
//	pos := rcv.Position()
//	fmt.Println(pos.Lat, pos.Lon, pos.Alt, pos.HDOP)
//
//	if now, err := rcv.CorrectedNow(); err == nil {
//	    fmt.Println("GPS-corrected time:", now)
//	}
//
// # Configuration
//
// gpswatch uses the functional options pattern for configuration:
//
//	rcv, err := gpswatch.New(
//	    gpswatch.WithAddress("localhost:2947"),
//	    gpswatch.WithPollInterval(time.Second),
//	    gpswatch.WithLogger(logger),
//	    gpswatch.WithSentenceCallback(func(s gpswatch.Sentence) {
//	        fmt.Println("cached", s.Class)
//	    }),
//	)
//
// Sampling runs on a background goroutine by default. [WithForeground]
// runs it on the calling goroutine instead, making Start block until
// the context is cancelled or Stop is called from elsewhere.
//
// # Failure Semantics
//
// A gpsd connection failure at startup is logged and leaves the
// receiver degraded rather than failing: every subsequent poll fails
// and is logged, at the same fixed interval, until Stop is called.
// Malformed or incomplete sentences are logged and skipped, leaving the
// snapshot at its last-known-good values. The sampling loop itself
// cannot terminate except via Stop or context cancellation.
//
// # Architecture
//
// gpswatch consists of several internal packages (under internal/):
//
//   - internal/gpsd: the daemon connection and sentence decoding
//   - internal/state: the sentence cache and atomic fix snapshot
//   - internal/sampler: the background polling loop
//
// The internal packages are not part of the public API and may change
// without notice. A small cobra CLI lives in cmd/gpswatch for
// demonstration and config validation.
package gpswatch
