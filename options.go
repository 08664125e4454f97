package gpswatch

import (
	"errors"
	"log/slog"
	"time"
)

// rcvConfig holds mutable state during Receiver construction.
type rcvConfig struct {
	address      string
	pollInterval time.Duration
	dialTimeout  time.Duration
	readTimeout  time.Duration
	foreground   bool
	logger       *slog.Logger
	callbacks    []func(Sentence)
}

// Option is a function that configures a [Receiver] during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithAddress], [WithPollInterval], [WithDialTimeout],
// [WithReadTimeout], [WithLogger], [WithSentenceCallback].
type Option func(*rcvConfig) error

// WithAddress sets the gpsd daemon address as host:port.
//
// Defaults to "localhost:2947", the standard gpsd listen address.
//
// Example:
//
//	rcv, err := gpswatch.New(
//	    gpswatch.WithAddress("10.0.0.5:2947"),
//	)
//
// Returns an error if the address is empty.
func WithAddress(addr string) Option {
	return func(cfg *rcvConfig) error {
		if addr == "" {
			return errors.New("address cannot be empty")
		}
		cfg.address = addr
		return nil
	}
}

// WithPollInterval sets the delay between sampling iterations.
//
// The same interval applies whether or not the previous poll succeeded;
// there is no backoff. Defaults to 500 milliseconds.
//
// Returns an error if the duration is zero or negative.
func WithPollInterval(d time.Duration) Option {
	return func(cfg *rcvConfig) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		cfg.pollInterval = d
		return nil
	}
}

// WithDialTimeout sets the timeout for establishing the daemon
// connection during [Receiver.Start]. Defaults to 2 seconds.
//
// Returns an error if the duration is zero or negative.
func WithDialTimeout(d time.Duration) Option {
	return func(cfg *rcvConfig) error {
		if d <= 0 {
			return errors.New("dial timeout must be positive")
		}
		cfg.dialTimeout = d
		return nil
	}
}

// WithReadTimeout sets the per-poll read deadline on the daemon
// connection. A poll that sees no complete sentence within this window
// simply yields nothing for that tick. Defaults to 100 milliseconds.
//
// The read timeout should be shorter than the poll interval, otherwise
// reads eat into the inter-poll delay.
//
// Returns an error if the duration is zero or negative.
func WithReadTimeout(d time.Duration) Option {
	return func(cfg *rcvConfig) error {
		if d <= 0 {
			return errors.New("read timeout must be positive")
		}
		cfg.readTimeout = d
		return nil
	}
}

// WithForeground makes [Receiver.Start] run the sampling loop on the
// calling goroutine instead of in the background.
//
// In foreground mode Start blocks until the context is cancelled or
// [Receiver.Stop] is called from another goroutine. By default the
// loop runs on its own goroutine and Start returns immediately.
func WithForeground() Option {
	return func(cfg *rcvConfig) error {
		cfg.foreground = true
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Receiver.
//
// This allows library consumers to control where logs are written and
// in what format. If not specified, [slog.Default] is used.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	rcv, err := gpswatch.New(
//	    gpswatch.WithLogger(logger),
//	)
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *rcvConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithSentenceCallback registers a function to be called for every
// sentence cached by the sampling loop.
//
// The callback receives the [Sentence] after it has been written to the
// cache and any snapshot update has been published. Multiple callbacks
// may be registered by calling WithSentenceCallback multiple times;
// they execute in registration order.
//
// IMPORTANT: Callbacks must be non-blocking. They run on the sampling
// goroutine, so a blocking callback delays subsequent polls. Panics
// within callbacks are recovered and logged; they do not stop the loop.
//
// Nil callbacks are silently ignored.
func WithSentenceCallback(cb func(Sentence)) Option {
	return func(cfg *rcvConfig) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		cfg.callbacks = append(cfg.callbacks, cb)
		return nil
	}
}
