// Package presence converts periodic radio sightings into a presence boolean
// with timeout-based decay.
package presence

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"faculty-desk-unit/internal/model"
)

// Scanner is the radio capability: scan for nearby devices for a bounded
// duration and return the identifiers sighted. Implementations may block for
// up to the given duration.
type Scanner interface {
	Scan(ctx context.Context, d time.Duration) ([]string, error)
}

// Event is a presence transition produced by Poll.
type Event int

const (
	EventAcquired Event = iota + 1
	EventLost
)

func (e Event) String() string {
	switch e {
	case EventAcquired:
		return "presence acquired"
	case EventLost:
		return "presence lost"
	}
	return "unknown"
}

type scanResult struct {
	ids []string
	err error
}

// Tracker watches for the configured beacon identifier. Scans run on their own
// goroutine so a slow radio never stalls the tick loop; results are folded in
// on the next Poll.
type Tracker struct {
	beaconID     string
	scanner      Scanner
	scanInterval time.Duration
	scanWindow   time.Duration
	timeout      time.Duration

	// nearby remembers every identifier sighted recently, for the local
	// diagnostic API. Presence itself is decided from explicit timestamps.
	nearby *cache.Cache

	lastScanStarted time.Time
	scanning        bool
	results         chan scanResult

	state model.PresenceState
}

// NewTracker creates a tracker for the given beacon identifier.
func NewTracker(beaconID string, scanner Scanner, scanInterval, scanWindow, timeout time.Duration) *Tracker {
	return &Tracker{
		beaconID:     beaconID,
		scanner:      scanner,
		scanInterval: scanInterval,
		scanWindow:   scanWindow,
		timeout:      timeout,
		nearby:       cache.New(timeout, 2*timeout),
		results:      make(chan scanResult, 1),
	}
}

// Poll drives the tracker one tick: fold in any finished scan, evaluate the
// presence timeout, and kick off the next scan if the interval has elapsed.
// Returns the presence transitions that occurred, in order.
func (t *Tracker) Poll(ctx context.Context, now time.Time) []Event {
	var events []Event

	select {
	case res := <-t.results:
		t.scanning = false
		if res.err != nil {
			log.Printf("radio scan failed: %v", res.err)
		}
		if t.ingest(res.ids, now) && !t.state.Sighted {
			t.state.Sighted = true
			events = append(events, EventAcquired)
		}
	default:
	}

	if t.state.Sighted && now.Sub(t.state.LastSightedAt) > t.timeout {
		t.state.Sighted = false
		events = append(events, EventLost)
	}

	if !t.scanning && now.Sub(t.lastScanStarted) >= t.scanInterval {
		t.scanning = true
		t.lastScanStarted = now
		go func() {
			ids, err := t.scanner.Scan(ctx, t.scanWindow)
			t.results <- scanResult{ids: ids, err: err}
		}()
	}

	return events
}

// ingest records every sighted identifier and reports whether the watched
// beacon was among them.
func (t *Tracker) ingest(ids []string, now time.Time) bool {
	sawBeacon := false
	for _, id := range ids {
		t.nearby.Set(strings.ToLower(id), now, cache.DefaultExpiration)
		if strings.EqualFold(id, t.beaconID) {
			sawBeacon = true
		}
	}
	if sawBeacon {
		t.state.LastSightedAt = now
	}
	return sawBeacon
}

// State returns the current presence view.
func (t *Tracker) State() model.PresenceState {
	return t.state
}

// Nearby lists the identifiers sighted within the presence window, sorted.
// Safe to call from outside the tick goroutine.
func (t *Tracker) Nearby() []string {
	items := t.nearby.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StaticScanner always reports the same identifiers. It stands in for the real
// radio on bench units and in the simulation mode selected by config.
type StaticScanner struct {
	IDs []string
}

func (s *StaticScanner) Scan(ctx context.Context, d time.Duration) ([]string, error) {
	return s.IDs, nil
}
