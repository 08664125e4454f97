package gpswatch

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	rcv, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if rcv.Address() != "localhost:2947" {
		t.Errorf("Address() = %q, want %q", rcv.Address(), "localhost:2947")
	}
	if rcv.PollInterval() != 500*time.Millisecond {
		t.Errorf("PollInterval() = %v, want 500ms", rcv.PollInterval())
	}
	if rcv.logger == nil {
		t.Error("logger is nil, want slog.Default fallback")
	}
}

func TestWithAddress(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{name: "valid", addr: "10.0.0.5:2947"},
		{name: "empty", addr: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rcv, err := New(WithAddress(tt.addr))
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(WithAddress(%q)) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
			if !tt.wantErr && rcv.Address() != tt.addr {
				t.Errorf("Address() = %q, want %q", rcv.Address(), tt.addr)
			}
		})
	}
}

func TestWithPollInterval(t *testing.T) {
	tests := []struct {
		name    string
		d       time.Duration
		wantErr bool
	}{
		{name: "valid", d: time.Second},
		{name: "zero", d: 0, wantErr: true},
		{name: "negative", d: -time.Second, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rcv, err := New(WithPollInterval(tt.d))
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(WithPollInterval(%v)) error = %v, wantErr %v", tt.d, err, tt.wantErr)
			}
			if !tt.wantErr && rcv.PollInterval() != tt.d {
				t.Errorf("PollInterval() = %v, want %v", rcv.PollInterval(), tt.d)
			}
		})
	}
}

func TestWithDialTimeout(t *testing.T) {
	if _, err := New(WithDialTimeout(0)); err == nil {
		t.Error("New(WithDialTimeout(0)) error = nil, want validation failure")
	}
	if _, err := New(WithDialTimeout(time.Second)); err != nil {
		t.Errorf("New(WithDialTimeout(1s)) error = %v, want nil", err)
	}
}

func TestWithReadTimeout(t *testing.T) {
	if _, err := New(WithReadTimeout(-time.Millisecond)); err == nil {
		t.Error("New(WithReadTimeout(-1ms)) error = nil, want validation failure")
	}
	if _, err := New(WithReadTimeout(50 * time.Millisecond)); err != nil {
		t.Errorf("New(WithReadTimeout(50ms)) error = %v, want nil", err)
	}
}

func TestWithLogger(t *testing.T) {
	if _, err := New(WithLogger(nil)); err == nil {
		t.Error("New(WithLogger(nil)) error = nil, want validation failure")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rcv, err := New(WithLogger(logger))
	if err != nil {
		t.Fatalf("New(WithLogger) error = %v", err)
	}
	if rcv.logger != logger {
		t.Error("logger was not applied")
	}
}

func TestWithForeground(t *testing.T) {
	rcv, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if rcv.foreground {
		t.Error("foreground = true by default, want false")
	}

	rcv, err = New(WithForeground())
	if err != nil {
		t.Fatalf("New(WithForeground) error = %v", err)
	}
	if !rcv.foreground {
		t.Error("foreground = false, want true")
	}
}

func TestWithSentenceCallback(t *testing.T) {
	rcv, err := New(
		WithSentenceCallback(func(Sentence) {}),
		WithSentenceCallback(nil), // ignored
		WithSentenceCallback(func(Sentence) {}),
	)
	if err != nil {
		t.Fatalf("New(WithSentenceCallback) error = %v", err)
	}
	if got := len(rcv.callbacks); got != 2 {
		t.Errorf("callbacks = %v, want 2 (nil ignored)", got)
	}
}
