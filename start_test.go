package gpswatch

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestStop_BeforeStart(t *testing.T) {
	rcv, err := New(WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		rcv.Stop() // must not hang or panic
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() before Start() did not return")
	}
}

func TestStop_Twice(t *testing.T) {
	daemon := newFakeDaemon(t)
	rcv := startReceiver(t, daemon)

	rcv.Stop()
	rcv.Stop() // must not hang or panic
}

func TestStart_Twice(t *testing.T) {
	daemon := newFakeDaemon(t)
	rcv := startReceiver(t, daemon)

	// second Start is a no-op; the receiver keeps working
	rcv.Start(context.Background())

	daemon.feed(`{"class":"SKY","hdop":1.0}`)
	waitFor(t, "SKY sentence", func() bool {
		_, ok := rcv.Sentence("SKY")
		return ok
	})
}

func TestStart_AfterStopIsNoOp(t *testing.T) {
	rcv, err := New(WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rcv.Stop()
	rcv.Start(context.Background()) // no loop, no connection

	if rcv.loop != nil {
		t.Error("Start() after Stop() created a sampling loop, want no-op")
	}
}

func TestStart_DegradedWhenDaemonUnreachable(t *testing.T) {
	// grab a port that is guaranteed closed
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	addr := listener.Addr().String()
	_ = listener.Close()

	rcv, err := New(
		WithAddress(addr),
		WithPollInterval(5*time.Millisecond),
		WithDialTimeout(200*time.Millisecond),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Start must not fail even though the daemon is unreachable
	rcv.Start(context.Background())

	// the degraded receiver keeps answering reads
	if got := rcv.Position(); got != (Position{}) {
		t.Errorf("Position() = %+v, want zero value", got)
	}
	if _, ok := rcv.Sentence("TPV"); ok {
		t.Error("Sentence(TPV) ok = true, want false for degraded receiver")
	}

	// allow a few failing polls, then verify Stop still works cleanly
	time.Sleep(30 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		rcv.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() of degraded receiver did not return")
	}
}

func TestStart_ForegroundBlocksUntilStop(t *testing.T) {
	daemon := newFakeDaemon(t)

	rcv, err := New(
		WithAddress(daemon.listener.Addr().String()),
		WithPollInterval(5*time.Millisecond),
		WithReadTimeout(20*time.Millisecond),
		WithForeground(),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	returned := make(chan struct{})
	go func() {
		rcv.Start(context.Background())
		close(returned)
	}()

	daemon.feed(`{"class":"TPV","mode":3,"lat":51.5,"lon":-0.1,"alt":10.0,"time":1700000000}`)
	waitFor(t, "position from foreground loop", func() bool {
		return rcv.Position().Lat == 51.5
	})

	select {
	case <-returned:
		t.Fatal("Start() returned before Stop() in foreground mode")
	default:
	}

	rcv.Stop()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after Stop() in foreground mode")
	}
}

func TestStart_ForegroundReturnsOnContextCancel(t *testing.T) {
	daemon := newFakeDaemon(t)

	rcv, err := New(
		WithAddress(daemon.listener.Addr().String()),
		WithPollInterval(5*time.Millisecond),
		WithReadTimeout(20*time.Millisecond),
		WithForeground(),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(rcv.Stop)

	ctx, cancel := context.WithCancel(context.Background())

	returned := make(chan struct{})
	go func() {
		rcv.Start(ctx)
		close(returned)
	}()

	cancel()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after context cancellation in foreground mode")
	}
}

func TestStart_ContextCancelStopsSampling(t *testing.T) {
	daemon := newFakeDaemon(t)

	rcv, err := New(
		WithAddress(daemon.listener.Addr().String()),
		WithPollInterval(5*time.Millisecond),
		WithReadTimeout(20*time.Millisecond),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	rcv.Start(ctx)
	cancel()

	// Stop must return promptly once the context is cancelled
	done := make(chan struct{})
	go func() {
		rcv.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return after context cancellation")
	}
}
