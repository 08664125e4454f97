package state

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Dukat-Gul/gpswatch/internal/gpsd"
)

// Fix is the derived position snapshot built from TPV and SKY sentences.
//
// Fix is immutable once published. A zero SeenAt means no position fix
// has been obtained yet; HDOP may still be set in that case, since SKY
// sentences arrive independently of position fixes.
type Fix struct {
	// Lat and Lon are the last reported position in decimal degrees.
	Lat float64
	Lon float64

	// Alt is the last reported altitude in metres.
	Alt float64

	// HDOP is the horizontal dilution of precision from the latest SKY
	// sentence. It is best-effort and not atomically paired with the
	// position fields.
	HDOP float64

	// GPSTime is the epoch-seconds timestamp reported by the fix.
	GPSTime float64

	// SeenAt is the local time the fix was cached. Zero until the first
	// valid fix.
	SeenAt time.Time
}

// Store holds the sentence cache and the current [Fix] snapshot.
//
// Store is safe for concurrent use by one writer (the sampling loop)
// and any number of readers. Sentences are keyed by upper-cased class;
// a new sentence of a class replaces the previous one wholesale, and
// nothing is ever deleted.
type Store struct {
	mu        sync.RWMutex
	sentences map[string]*gpsd.Sentence

	fix atomic.Pointer[Fix]
}

// NewStore creates an empty [Store], immediately ready for use.
func NewStore() *Store {
	s := &Store{
		sentences: make(map[string]*gpsd.Sentence),
	}
	s.fix.Store(&Fix{})
	return s
}

// CacheSentence stores a sentence under its class, replacing any
// previous sentence of the same class.
func (s *Store) CacheSentence(sentence *gpsd.Sentence) {
	s.mu.Lock()
	s.sentences[strings.ToUpper(sentence.Class)] = sentence
	s.mu.Unlock()
}

// Sentence returns the latest cached sentence of the given class.
//
// The lookup is case-insensitive. The second return value is false when
// no sentence of that class has ever been seen.
func (s *Store) Sentence(class string) (*gpsd.Sentence, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sentence, ok := s.sentences[strings.ToUpper(class)]
	return sentence, ok
}

// Classes returns every distinct sentence class cached so far, sorted.
func (s *Store) Classes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	classes := make([]string, 0, len(s.sentences))
	for class := range s.sentences {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}

// Snapshot returns the current [Fix] by value.
//
// The snapshot is a complete, consistent publication: all position
// fields were set by the same update.
func (s *Store) Snapshot() Fix {
	return *s.fix.Load()
}

// PublishFix atomically replaces the snapshot with a new position fix.
//
// The HDOP of the previous snapshot is carried over, since HDOP is
// updated independently from SKY sentences.
func (s *Store) PublishFix(lat, lon, alt, gpsTime float64, seenAt time.Time) {
	prev := s.fix.Load()
	s.fix.Store(&Fix{
		Lat:     lat,
		Lon:     lon,
		Alt:     alt,
		HDOP:    prev.HDOP,
		GPSTime: gpsTime,
		SeenAt:  seenAt,
	})
}

// PublishHDOP atomically replaces the snapshot with a copy carrying the
// new HDOP value. All position fields are preserved.
func (s *Store) PublishHDOP(hdop float64) {
	next := *s.fix.Load()
	next.HDOP = hdop
	s.fix.Store(&next)
}
