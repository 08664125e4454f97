package gpswatch

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/Dukat-Gul/gpswatch/internal/gpsd"
	"github.com/Dukat-Gul/gpswatch/internal/sampler"
	"github.com/Dukat-Gul/gpswatch/internal/state"
)

const (
	defaultAddress      = gpsd.DefaultAddress
	defaultPollInterval = 500 * time.Millisecond
	defaultDialTimeout  = 2 * time.Second
	defaultReadTimeout  = 100 * time.Millisecond
)

// Receiver maintains a continuously refreshed snapshot of GPS state.
//
// Receiver owns the connection to a gpsd daemon and a background
// sampling loop that caches the most recent sentence of every class and
// derives a position snapshot from TPV and SKY sentences. All read
// methods are non-blocking and safe to call from any goroutine,
// concurrently with the sampling loop.
//
// The typical lifecycle is:
//
//	rcv, err := gpswatch.New()
//	if err != nil {
//	    slog.Error("failed to create receiver", "error", err)
//	    os.Exit(1)
//	}
//
//	rcv.Start(ctx)
//	defer rcv.Stop()
//
//	pos := rcv.Position()
//
// Start is non-blocking; Stop waits for the sampling loop to exit.
type Receiver struct {
	address      string
	pollInterval time.Duration
	dialTimeout  time.Duration
	readTimeout  time.Duration
	foreground   bool
	logger       *slog.Logger
	callbacks    []func(Sentence)

	store *state.Store

	mu      sync.Mutex
	conn    *gpsd.Conn
	loop    *sampler.Sampler
	started bool
	stopped bool
}

// New creates a new [Receiver] with the given options.
//
// All options have sensible defaults:
//   - Address: localhost:2947
//   - Poll interval: 500 milliseconds
//   - Dial timeout: 2 seconds
//   - Read timeout: 100 milliseconds
//
// Returns an error if any option is invalid. New does not touch the
// network; the daemon connection is established by [Receiver.Start].
func New(opts ...Option) (*Receiver, error) {
	cfg := &rcvConfig{
		address:      defaultAddress,
		pollInterval: defaultPollInterval,
		dialTimeout:  defaultDialTimeout,
		readTimeout:  defaultReadTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Receiver{
		address:      cfg.address,
		pollInterval: cfg.pollInterval,
		dialTimeout:  cfg.dialTimeout,
		readTimeout:  cfg.readTimeout,
		foreground:   cfg.foreground,
		logger:       logger,
		callbacks:    cfg.callbacks,
		store:        state.NewStore(),
	}, nil
}

// Start connects to the daemon and begins sampling.
//
// By default Start is non-blocking and the loop runs on its own
// goroutine; with [WithForeground] it runs on the calling goroutine and
// Start blocks until the context is cancelled or Stop is called.
//
// The connection is established eagerly; if it fails, the failure is
// logged and the receiver stays up in a degraded state where every poll
// fails and is logged, without ever stopping the loop. There is no
// automatic reconnection.
//
// If ctx is nil, context.Background() is used. Cancelling the context
// stops the sampling loop, as does [Receiver.Stop]. Start is
// idempotent; calling it again after the first call, or after Stop, is
// a no-op.
func (r *Receiver) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started || r.stopped {
		r.mu.Unlock()
		return
	}
	r.started = true

	var source sampler.Source
	conn, err := gpsd.Dial(r.address, r.dialTimeout, r.readTimeout)
	if err != nil {
		// degraded but alive: the loop keeps polling and logging
		r.logger.Warn("gpsd connection setup failed",
			"address", r.address,
			"error", err.Error(),
		)
		source = &disconnectedSource{err: err}
	} else {
		r.logger.Info("connected to gpsd", "address", r.address)
		r.conn = conn
		source = conn
	}

	r.loop = sampler.New(source, r.store, r.pollInterval, r.logger, r.loopCallbacks())
	loop := r.loop
	r.mu.Unlock()

	r.logger.Info("gps sampling started", "poll_interval", r.pollInterval.String(), "foreground", r.foreground)
	if r.foreground {
		loop.Run(ctx)
		return
	}
	loop.Start(ctx)
}

// Stop halts background sampling and closes the daemon connection.
//
// Stop blocks until the sampling loop has acknowledged termination; an
// in-flight poll is allowed to finish, it is never interrupted.
//
// Stop is idempotent and safe to call multiple times. Calling Stop
// before Start is a safe no-op.
func (r *Receiver) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	loop := r.loop
	conn := r.conn
	started := r.started
	r.mu.Unlock()

	if loop != nil {
		loop.Stop()
	}
	if err := conn.Close(); err != nil {
		r.logger.Warn("failed to close gpsd connection", "error", err.Error())
	}
	if started {
		r.logger.Info("gps sampling stopped")
	}
}

// Position returns the current position snapshot.
//
// Position never blocks and never fails. All fields are zero until the
// first valid fix has been processed; after that they hold the values
// of the most recent valid TPV sentence (and the most recent SKY HDOP),
// which may be stale if the daemon has gone quiet.
func (r *Receiver) Position() Position {
	snap := r.store.Snapshot()
	return Position{
		Lat:  snap.Lat,
		Lon:  snap.Lon,
		Alt:  snap.Alt,
		HDOP: snap.HDOP,
	}
}

// CorrectedNow returns a drift-compensated estimate of current time.
//
// The estimate is the GPS-reported timestamp of the last fix advanced
// by the wall-clock time elapsed since that fix was cached. This
// corrects for local clock drift on hosts without a reliable RTC.
//
// Returns [ErrNoFix] if no position fix has ever been cached.
func (r *Receiver) CorrectedNow() (time.Time, error) {
	snap := r.store.Snapshot()
	if snap.SeenAt.IsZero() {
		return time.Time{}, ErrNoFix
	}

	sec, frac := math.Modf(snap.GPSTime)
	fixTime := time.Unix(int64(sec), int64(frac*float64(time.Second)))
	return fixTime.Add(time.Since(snap.SeenAt)), nil
}

// Sentence returns the latest cached sentence of the given class.
//
// The lookup is case-insensitive: Sentence("tpv") and Sentence("TPV")
// are equivalent. The second return value is false when no sentence of
// that class has ever been seen.
//
// The returned Sentence is a defensive copy; modifying its Fields does
// not affect the cache.
func (r *Receiver) Sentence(class string) (Sentence, bool) {
	cached, ok := r.store.Sentence(class)
	if !ok {
		return Sentence{}, false
	}
	return toPublicSentence(cached), true
}

// SentenceClasses returns every distinct sentence class cached so far,
// sorted alphabetically. Empty until the first sentence arrives.
func (r *Receiver) SentenceClasses() []string {
	return r.store.Classes()
}

// Address returns the configured gpsd daemon address.
func (r *Receiver) Address() string {
	return r.address
}

// PollInterval returns the configured delay between sampling iterations.
func (r *Receiver) PollInterval() time.Duration {
	return r.pollInterval
}

// loopCallbacks wraps the public sentence callbacks for the sampler.
func (r *Receiver) loopCallbacks() []func(*gpsd.Sentence) {
	if len(r.callbacks) == 0 {
		return nil
	}

	wrapped := make([]func(*gpsd.Sentence), len(r.callbacks))
	for i, cb := range r.callbacks {
		cb := cb // per-iteration copy for pre-Go 1.22 loop semantics
		wrapped[i] = func(s *gpsd.Sentence) {
			cb(toPublicSentence(s))
		}
	}
	return wrapped
}

// toPublicSentence converts an internal sentence to the public API type.
// Creates a defensive copy of the field map to prevent data races.
func toPublicSentence(s *gpsd.Sentence) Sentence {
	return Sentence{
		Class:    s.Class,
		Fields:   copyFields(s.Fields),
		Received: s.Received,
	}
}

// disconnectedSource stands in for the daemon connection when setup
// failed. Every poll fails with the original dial error, keeping the
// degradation visible in the logs.
type disconnectedSource struct {
	err error
}

func (d *disconnectedSource) Next() (*gpsd.Sentence, error) {
	return nil, d.err
}
