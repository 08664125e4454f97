package gpswatch

import (
	"errors"
	"time"
)

// ErrNoFix is returned by [Receiver.CorrectedNow] when no position fix
// has ever been cached, so there is no GPS timestamp to correct from.
var ErrNoFix = errors.New("no GPS fix obtained yet")

// Position is the current derived position view.
//
// Position is a plain value snapshot: all fields come from a single
// atomic publication, except HDOP, which is updated independently from
// SKY sentences and is best-effort rather than atomically paired with
// the fix. Fields are zero until the first valid fix (or first SKY
// sentence, for HDOP); they then hold the last-known-good values and
// may be stale.
type Position struct {
	// Lat and Lon are in decimal degrees.
	Lat float64
	Lon float64

	// Alt is in metres.
	Alt float64

	// HDOP is the horizontal dilution of precision.
	HDOP float64
}

// Sentence is one cached message from the positioning daemon.
//
// Sentence is immutable after creation and superseded wholesale by the
// next sentence of the same class. Fields holds the raw decoded JSON
// object; Received is the local time the sentence arrived, which allows
// callers to judge staleness.
type Sentence struct {
	// Class is the upper-cased message class, e.g. "TPV" or "SKY".
	Class string

	// Fields is the decoded JSON object for this sentence.
	Fields map[string]any

	// Received is the local time the sentence was cached.
	Received time.Time
}

// copyFields returns a copy of the field map, or nil if input is nil.
func copyFields(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
