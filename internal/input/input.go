// Package input maps the three momentary buttons to actions, with one shared
// debounce window across all of them.
package input

import "time"

// Button is one of the unit's three logical inputs.
type Button int

const (
	ButtonCycle Button = iota
	ButtonToggleBusy
	ButtonComplete
)

func (b Button) String() string {
	switch b {
	case ButtonCycle:
		return "cycle"
	case ButtonToggleBusy:
		return "busy"
	case ButtonComplete:
		return "complete"
	}
	return "unknown"
}

// ParseButton maps an external name (local API) to a button.
func ParseButton(name string) (Button, bool) {
	switch name {
	case "cycle":
		return ButtonCycle, true
	case "busy":
		return ButtonToggleBusy, true
	case "complete":
		return ButtonComplete, true
	}
	return 0, false
}

// Source yields the raw presses observed since the previous sample.
type Source interface {
	Poll() []Button
}

// Bus is a Source fed asynchronously by press triggers (GPIO edge handlers,
// the local API). Press never blocks; excess presses are dropped.
type Bus struct {
	presses chan Button
}

// NewBus returns a Bus with a small press buffer.
func NewBus() *Bus {
	return &Bus{presses: make(chan Button, 8)}
}

// Press records a raw button press. Safe from any goroutine.
func (b *Bus) Press(btn Button) {
	select {
	case b.presses <- btn:
	default:
	}
}

// Poll drains the presses recorded since the last call.
func (b *Bus) Poll() []Button {
	var out []Button
	for {
		select {
		case btn := <-b.presses:
			out = append(out, btn)
		default:
			return out
		}
	}
}

// Controller debounces raw presses. The window is global: any accepted press
// resets it for all three buttons, and presses inside the window are ignored
// entirely, not queued.
type Controller struct {
	source       Source
	debounce     time.Duration
	lastAccepted time.Time
}

// NewController wraps a press source with the given debounce window.
func NewController(source Source, debounce time.Duration) *Controller {
	return &Controller{source: source, debounce: debounce}
}

// Sample returns the presses accepted this tick.
func (c *Controller) Sample(now time.Time) []Button {
	var accepted []Button
	for _, btn := range c.source.Poll() {
		if !c.lastAccepted.IsZero() && now.Sub(c.lastAccepted) < c.debounce {
			continue
		}
		c.lastAccepted = now
		accepted = append(accepted, btn)
	}
	return accepted
}
