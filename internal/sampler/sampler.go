package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Dukat-Gul/gpswatch/internal/gpsd"
	"github.com/Dukat-Gul/gpswatch/internal/state"
)

// gpsd fix modes as reported in the TPV mode field.
const (
	modeNoData = 0
	modeNoFix  = 1
)

// Source yields at most one pending sentence per call.
//
// A (nil, nil) return means nothing arrived this tick. [gpsd.Conn]
// implements Source; tests substitute scripted sources.
type Source interface {
	Next() (*gpsd.Sentence, error)
}

// Sampler runs the background polling loop.
//
// Sampler pulls one sentence per iteration from its [Source], caches it
// in the [state.Store], and updates the fix snapshot according to the
// sentence class. Iterations are separated by a fixed interval with no
// backoff: a failing daemon is retried on the next tick exactly like a
// healthy one.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Sampler struct {
	source    Source
	store     *state.Store
	interval  time.Duration
	logger    *slog.Logger
	callbacks []func(*gpsd.Sentence)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// New creates a [Sampler] that polls source every interval.
//
// Callbacks are invoked from the loop goroutine after each sentence is
// cached; they must be non-blocking. The sampler must be started with
// [Sampler.Start] and stopped with [Sampler.Stop].
func New(source Source, store *state.Store, interval time.Duration, logger *slog.Logger, callbacks []func(*gpsd.Sentence)) *Sampler {
	return &Sampler{
		source:    source,
		store:     store,
		interval:  interval,
		logger:    logger,
		callbacks: callbacks,
	}
}

// Start begins the polling loop in a background goroutine.
//
// Start is non-blocking and returns immediately. The loop polls once
// right away, then once per interval, until [Sampler.Stop] is called or
// the context is cancelled.
//
// If ctx is nil, context.Background() is used as the parent context.
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
func (s *Sampler) Start(ctx context.Context) {
	loopCtx, ok := s.begin(ctx)
	if !ok {
		return
	}
	go s.run(loopCtx)
}

// Run executes the polling loop on the calling goroutine.
//
// Run is the foreground alternative to [Sampler.Start]: it blocks until
// the context is cancelled or [Sampler.Stop] is called from another
// goroutine. The same idempotency rules as Start apply; Run after Start
// (or vice versa) is a no-op that returns immediately.
func (s *Sampler) Run(ctx context.Context) {
	loopCtx, ok := s.begin(ctx)
	if !ok {
		return
	}
	s.run(loopCtx)
}

// begin transitions the sampler into the running state.
// Returns false when the sampler already ran or was stopped.
func (s *Sampler) begin(ctx context.Context) (context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.stopped {
		return nil, false
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	return s.ctx, true
}

// run is the loop body shared by Start and Run.
func (s *Sampler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.pollOnce()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop halts the sampler and waits for the loop goroutine to exit.
//
// Stop cancels the loop's context and blocks until the current
// iteration completes; it does not interrupt an in-flight poll.
//
// Stop is idempotent and safe to call multiple times. Calling Stop
// before Start is a safe no-op.
func (s *Sampler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// pollOnce runs a single loop iteration.
//
// Every failure path logs and returns; nothing propagates out of the
// loop, so the sampler can only stop via Stop or context cancellation.
func (s *Sampler) pollOnce() {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			s.logger.Error("sentence processing panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()

	sentence, err := s.source.Next()
	if err != nil {
		s.logger.Warn("gpsd poll failed", "error", err.Error())
		return
	}
	if sentence == nil {
		// nothing pending this tick
		return
	}

	s.store.CacheSentence(sentence)

	switch sentence.Class {
	case "TPV":
		s.applyTPV(sentence)
	case "SKY":
		s.applySKY(sentence)
	default:
		s.logger.Debug("sentence cached", "class", sentence.Class)
	}

	for _, cb := range s.callbacks {
		s.invokeCallbackSafe(cb, sentence)
	}
}

// applyTPV updates the fix snapshot from a TPV sentence.
//
// Mode 0 (no data) and 1 (no fix) leave the snapshot untouched, as does
// any missing field. A complete 2D/3D fix is published as one atomic
// snapshot replacement.
func (s *Sampler) applyTPV(sentence *gpsd.Sentence) {
	mode, err := sentence.Int("mode")
	if err != nil {
		s.logger.Warn("TPV sentence unusable", "error", err.Error())
		return
	}
	if mode == modeNoData || mode == modeNoFix {
		s.logger.Info("no GPS fix yet", "mode", mode)
		return
	}

	lat, err := sentence.Float("lat")
	if err != nil {
		s.logger.Warn("TPV sentence incomplete", "error", err.Error())
		return
	}
	lon, err := sentence.Float("lon")
	if err != nil {
		s.logger.Warn("TPV sentence incomplete", "error", err.Error())
		return
	}
	alt, err := sentence.Float("alt")
	if err != nil {
		s.logger.Warn("TPV sentence incomplete", "error", err.Error())
		return
	}
	gpsTime, err := sentence.Float("time")
	if err != nil {
		s.logger.Warn("TPV sentence incomplete", "error", err.Error())
		return
	}

	s.store.PublishFix(lat, lon, alt, gpsTime, time.Now())
	s.logger.Debug("position fix cached",
		"lat", lat,
		"lon", lon,
		"alt", alt,
		"mode", mode,
	)
}

// applySKY updates the snapshot HDOP from a SKY sentence.
func (s *Sampler) applySKY(sentence *gpsd.Sentence) {
	hdop, err := sentence.Float("hdop")
	if err != nil {
		s.logger.Warn("SKY sentence incomplete", "error", err.Error())
		return
	}

	s.store.PublishHDOP(hdop)
	s.logger.Debug("hdop cached", "hdop", hdop)
}

// invokeCallbackSafe calls a sentence callback with panic recovery.
// Panics are logged with a correlation ID but do not propagate.
func (s *Sampler) invokeCallbackSafe(cb func(*gpsd.Sentence), sentence *gpsd.Sentence) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			s.logger.Error("sentence callback panicked",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"class", sentence.Class,
			)
		}
	}()
	cb(sentence)
}
