// Package desk runs the unit's cooperative tick loop. Each tick services the
// link, folds in radio scan results, evaluates the presence timeout, samples
// buttons, and refreshes the display when anything changed. All shared state
// is touched only from the tick goroutine.
package desk

import (
	"context"
	"log"
	"sync"
	"time"

	"faculty-desk-unit/internal/availability"
	"faculty-desk-unit/internal/display"
	"faculty-desk-unit/internal/input"
	"faculty-desk-unit/internal/link"
	"faculty-desk-unit/internal/model"
	"faculty-desk-unit/internal/presence"
	"faculty-desk-unit/internal/queue"
	"faculty-desk-unit/internal/render"
)

// Options bundles the collaborators of a Unit.
type Options struct {
	Identity render.Identity
	Width    int

	Link    *link.Manager
	Tracker *presence.Tracker
	Status  *availability.Controller
	Queue   *queue.Queue
	Buttons *input.Controller
	Bus     *input.Bus
	Sink    display.Sink
}

// Unit is the faculty desk unit.
type Unit struct {
	opts Options

	mu    sync.RWMutex
	frame render.Frame
	conn  model.ConnectionState
	state model.AvailabilityStatus

	dirty bool
}

// New assembles a unit. The first tick always renders.
func New(opts Options) *Unit {
	return &Unit{opts: opts, dirty: true}
}

// Run drives the tick loop until the context is cancelled.
func (u *Unit) Run(ctx context.Context, interval time.Duration) {
	u.Tick(ctx, time.Now())

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("desk unit shutting down")
			return
		case <-timer.C:
			u.Tick(ctx, time.Now())
			timer.Reset(interval)
		}
	}
}

// Tick runs one pass: connectivity, inbound requests, presence, buttons,
// render.
func (u *Unit) Tick(ctx context.Context, now time.Time) {
	connBefore := u.opts.Link.State()
	if res := u.opts.Link.EnsureAttached(now); res.Err != nil {
		log.Printf("link attach failed: %v", res.Err)
	}
	connAfter := u.opts.Link.State()
	if connAfter.NetworkAttached != connBefore.NetworkAttached ||
		connAfter.BrokerSessionActive != connBefore.BrokerSessionActive {
		u.dirty = true
	}

	u.drainRequests()

	for _, ev := range u.opts.Tracker.Poll(ctx, now) {
		log.Printf("%s", ev)
		if u.opts.Status.OnPresence(ctx, ev) {
			u.dirty = true
		}
	}

	for _, btn := range u.opts.Buttons.Sample(now) {
		u.handlePress(ctx, btn)
		u.dirty = true
	}

	u.refresh()
}

// drainRequests folds inbound consultation requests into the queue.
func (u *Unit) drainRequests() {
	for {
		select {
		case req := <-u.opts.Link.Requests():
			if u.opts.Queue.Upsert(req) {
				log.Printf("new request %s from %s", req.ID, req.RequesterID)
			} else {
				log.Printf("request %s updated in place", req.ID)
			}
			u.dirty = true
		default:
			return
		}
	}
}

func (u *Unit) handlePress(ctx context.Context, btn input.Button) {
	switch btn {
	case input.ButtonCycle:
		u.opts.Queue.AdvanceCursor()
	case input.ButtonToggleBusy:
		u.opts.Status.OnToggle(ctx, u.opts.Tracker.State().Sighted)
	case input.ButtonComplete:
		id, ok := u.opts.Queue.CompleteCurrent()
		if !ok {
			return
		}
		if err := u.opts.Link.PublishCompletion(id); err != nil {
			log.Printf("completion for %s not propagated: %v", id, err)
		}
	}
}

// refresh re-renders when dirty and publishes a fresh snapshot for the local
// API either way.
func (u *Unit) refresh() {
	conn := u.opts.Link.State()
	status := u.opts.Status.Current()

	if u.dirty {
		frame := render.Render(u.opts.Identity, status, conn, u.opts.Queue, u.opts.Width)
		if err := u.opts.Sink.Apply(frame); err != nil {
			log.Printf("failed to apply frame: %v", err)
		}
		u.mu.Lock()
		u.frame = frame
		u.mu.Unlock()
		u.dirty = false
	}

	u.mu.Lock()
	u.conn = conn
	u.state = status
	u.mu.Unlock()
}

// Frame returns the last rendered frame. Safe from any goroutine.
func (u *Unit) Frame() render.Frame {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.frame
}

// Status returns the availability status as of the last tick.
func (u *Unit) Status() model.AvailabilityStatus {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.state
}

// Connection returns the connection state as of the last tick.
func (u *Unit) Connection() model.ConnectionState {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.conn
}

// Nearby lists recently sighted radio identifiers.
func (u *Unit) Nearby() []string {
	return u.opts.Tracker.Nearby()
}

// Press records an operator press from an external trigger.
func (u *Unit) Press(btn input.Button) {
	u.opts.Bus.Press(btn)
}
