// Package availability owns the tri-state availability value and its
// transition rules. It is the single source of truth read by the render
// adapter and published to the broker.
package availability

import (
	"context"
	"log"

	"faculty-desk-unit/internal/model"
	"faculty-desk-unit/internal/presence"
	"faculty-desk-unit/internal/store"
)

// PublishFunc pushes a new status to the broker, best effort. A failure means
// the status was not propagated; it must never be treated as fatal.
type PublishFunc func(status model.AvailabilityStatus) error

// Controller applies presence events and operator toggles to the availability
// state, persisting every transition.
type Controller struct {
	store   store.Store
	publish PublishFunc
	current model.AvailabilityStatus
}

// NewController creates a controller in the Unavailable state. Call Load to
// resume the persisted value.
func NewController(st store.Store, publish PublishFunc) *Controller {
	return &Controller{
		store:   st,
		publish: publish,
		current: model.StatusUnavailable,
	}
}

// Load restores the last persisted status, defaulting to Unavailable when the
// store has no (or an unrecognized) value.
func (c *Controller) Load(ctx context.Context) error {
	value, found, err := c.store.Get(ctx, store.KeyAvailability)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	status, ok := model.ParseAvailability(value)
	if !ok {
		log.Printf("ignoring unrecognized persisted status %q", value)
		return nil
	}
	c.current = status
	return nil
}

// Current returns the availability status.
func (c *Controller) Current() model.AvailabilityStatus {
	return c.current
}

// OnPresence applies a presence transition. Busy is immune to presence; only
// the operator can enter or leave it. Returns true when the status changed.
func (c *Controller) OnPresence(ctx context.Context, ev presence.Event) bool {
	if c.current == model.StatusBusy {
		return false
	}
	switch ev {
	case presence.EventAcquired:
		return c.transition(ctx, model.StatusAvailable)
	case presence.EventLost:
		return c.transition(ctx, model.StatusUnavailable)
	}
	return false
}

// OnToggle applies the operator toggle-busy action. From Unavailable the
// toggle only takes effect while the beacon is currently sighted.
func (c *Controller) OnToggle(ctx context.Context, sighted bool) bool {
	switch c.current {
	case model.StatusAvailable:
		return c.transition(ctx, model.StatusBusy)
	case model.StatusBusy:
		return c.transition(ctx, model.StatusAvailable)
	case model.StatusUnavailable:
		if sighted {
			return c.transition(ctx, model.StatusAvailable)
		}
	}
	return false
}

// transition persists and publishes the new status. Persistence errors and
// publish failures are logged and absorbed: the unit keeps operating locally.
func (c *Controller) transition(ctx context.Context, next model.AvailabilityStatus) bool {
	if next == c.current {
		return false
	}
	c.current = next

	if err := c.store.Set(ctx, store.KeyAvailability, string(next)); err != nil {
		log.Printf("failed to persist status %s: %v", next, err)
	}
	if err := c.publish(next); err != nil {
		log.Printf("status %s not propagated: %v", next, err)
	}
	return true
}
