package gpsd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultAddress is the address gpsd listens on by default.
const DefaultAddress = "localhost:2947"

// watchCommand enables JSON streaming reports from gpsd.
const watchCommand = `?WATCH={"enable":true,"json":true}` + "\n"

// Sentence is one decoded gpsd report.
//
// Sentence is immutable after creation. Class is the gpsd message class
// (e.g. "TPV", "SKY"), always upper-cased. Fields holds the raw decoded
// JSON object, including the class field itself. Received is the local
// wall-clock time at which the sentence was read from the daemon, used
// later for timestamp drift correction.
type Sentence struct {
	// Class is the upper-cased gpsd message class.
	Class string

	// Fields is the decoded JSON object for this sentence.
	Fields map[string]any

	// Received is the local time the sentence arrived.
	Received time.Time
}

// Float returns the named field as a float64.
//
// Returns an error if the field is absent or not numeric. JSON numbers
// always decode to float64, so this covers both integral and fractional
// protocol fields.
func (s *Sentence) Float(key string) (float64, error) {
	v, ok := s.Fields[key]
	if !ok {
		return 0, fmt.Errorf("%s sentence has no %q field", s.Class, key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%s field %q is %T, want number", s.Class, key, v)
	}
	return f, nil
}

// Int returns the named field as an int, truncating the JSON number.
func (s *Sentence) Int(key string) (int, error) {
	f, err := s.Float(key)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// Conn is a live connection to a gpsd daemon.
//
// Conn is not safe for concurrent use; it is owned by a single sampling
// loop. [Conn.Next] reads at most one pending sentence per call, bounded
// by the configured read timeout, so a hung daemon can never stall the
// caller for longer than one timeout period.
type Conn struct {
	conn        net.Conn
	reader      *bufio.Reader
	readTimeout time.Duration

	// pending accumulates a partial line when the read deadline expires
	// mid-sentence, so the line survives across Next calls.
	pending []byte
}

// Dial connects to gpsd at addr and enables JSON watch mode.
//
// If addr is empty, [DefaultAddress] is used. dialTimeout bounds
// connection establishment; readTimeout bounds each subsequent
// [Conn.Next] call.
func Dial(addr string, dialTimeout, readTimeout time.Duration) (*Conn, error) {
	if strings.TrimSpace(addr) == "" {
		addr = DefaultAddress
	}

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gpsd at %s: %w", addr, err)
	}

	if err := conn.SetWriteDeadline(time.Now().Add(dialTimeout)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set write deadline: %w", err)
	}
	if _, err := conn.Write([]byte(watchCommand)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable gpsd watch mode: %w", err)
	}

	return &Conn{
		conn:        conn,
		reader:      bufio.NewReader(conn),
		readTimeout: readTimeout,
	}, nil
}

// Next reads at most one pending sentence from the daemon.
//
// Returns (nil, nil) when no complete sentence arrived within the read
// timeout; the caller should simply try again on its next tick. A
// partial line received before the timeout is retained and completed by
// a later call, so no data is lost across ticks.
//
// Returns an error for malformed JSON, a sentence without a class
// field, or a connection failure.
func (c *Conn) Next() (*Sentence, error) {
	deadline := time.Now().Add(c.readTimeout)
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %w", err)
	}

	for {
		chunk, err := c.reader.ReadBytes('\n')
		c.pending = append(c.pending, chunk...)

		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				// no complete sentence this tick; keep the partial line
				return nil, nil
			}
			return nil, fmt.Errorf("gpsd read failed: %w", err)
		}

		line := c.pending
		c.pending = nil

		sentence, err := decode(line)
		if err != nil {
			return nil, err
		}
		if sentence == nil {
			// blank line; keep reading until the deadline expires
			continue
		}
		return sentence, nil
	}
}

// decode parses one newline-terminated gpsd report.
// Returns (nil, nil) for blank lines.
func decode(line []byte) (*Sentence, error) {
	trimmed := strings.TrimSpace(string(line))
	if trimmed == "" {
		return nil, nil
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return nil, fmt.Errorf("malformed gpsd sentence: %w", err)
	}

	class, ok := fields["class"].(string)
	if !ok || class == "" {
		return nil, fmt.Errorf("gpsd sentence has no class field: %s", trimmed)
	}

	return &Sentence{
		Class:    strings.ToUpper(class),
		Fields:   fields,
		Received: time.Now(),
	}, nil
}

// Close closes the underlying daemon connection.
//
// Safe to call on a nil Conn, which allows callers to close
// unconditionally during teardown.
func (c *Conn) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
