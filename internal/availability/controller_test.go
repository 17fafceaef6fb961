package availability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faculty-desk-unit/internal/model"
	"faculty-desk-unit/internal/presence"
	"faculty-desk-unit/internal/store"
)

// memStore is an in-memory stand-in for the sqlite-backed store.
type memStore struct {
	values map[string]string
	setErr error
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (m *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Set(ctx context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

// recordingPublish captures published statuses and optionally fails.
type recordingPublish struct {
	published []model.AvailabilityStatus
	err       error
}

func (r *recordingPublish) publish(s model.AvailabilityStatus) error {
	if r.err != nil {
		return r.err
	}
	r.published = append(r.published, s)
	return nil
}

func newController(t *testing.T, st *memStore) (*Controller, *recordingPublish) {
	t.Helper()
	pub := &recordingPublish{}
	c := NewController(st, pub.publish)
	require.NoError(t, c.Load(context.Background()))
	return c, pub
}

func TestController_LoadDefaultsToUnavailable(t *testing.T) {
	c, _ := newController(t, newMemStore())
	assert.Equal(t, model.StatusUnavailable, c.Current())
}

func TestController_LoadResumesPersistedStatus(t *testing.T) {
	st := newMemStore()
	st.values[store.KeyAvailability] = "busy"

	c, _ := newController(t, st)
	assert.Equal(t, model.StatusBusy, c.Current())
}

func TestController_LoadIgnoresGarbageValue(t *testing.T) {
	st := newMemStore()
	st.values[store.KeyAvailability] = "gone-fishing"

	c, _ := newController(t, st)
	assert.Equal(t, model.StatusUnavailable, c.Current())
}

func TestController_PresenceDrivesAvailability(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	c, pub := newController(t, st)

	assert.True(t, c.OnPresence(ctx, presence.EventAcquired))
	assert.Equal(t, model.StatusAvailable, c.Current())
	assert.Equal(t, "available", st.values[store.KeyAvailability])

	assert.True(t, c.OnPresence(ctx, presence.EventLost))
	assert.Equal(t, model.StatusUnavailable, c.Current())

	// Repeated loss is idempotent: no transition, no publish.
	assert.False(t, c.OnPresence(ctx, presence.EventLost))
	assert.Equal(t, model.StatusUnavailable, c.Current())
	assert.Equal(t, []model.AvailabilityStatus{model.StatusAvailable, model.StatusUnavailable}, pub.published)
}

func TestController_BusyIsImmuneToPresence(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t, newMemStore())

	c.OnPresence(ctx, presence.EventAcquired)
	require.True(t, c.OnToggle(ctx, true))
	require.Equal(t, model.StatusBusy, c.Current())

	// Any sequence of presence events leaves Busy untouched.
	for _, ev := range []presence.Event{presence.EventLost, presence.EventAcquired, presence.EventLost} {
		assert.False(t, c.OnPresence(ctx, ev))
		assert.Equal(t, model.StatusBusy, c.Current())
	}
}

func TestController_Toggle(t *testing.T) {
	testCases := []struct {
		name        string
		start       model.AvailabilityStatus
		sighted     bool
		wantChanged bool
		want        model.AvailabilityStatus
	}{
		{name: "available to busy", start: model.StatusAvailable, sighted: true, wantChanged: true, want: model.StatusBusy},
		{name: "busy back to available", start: model.StatusBusy, sighted: true, wantChanged: true, want: model.StatusAvailable},
		{name: "busy to available even when not sighted", start: model.StatusBusy, sighted: false, wantChanged: true, want: model.StatusAvailable},
		{name: "unavailable with presence", start: model.StatusUnavailable, sighted: true, wantChanged: true, want: model.StatusAvailable},
		{name: "unavailable without presence is a no-op", start: model.StatusUnavailable, sighted: false, wantChanged: false, want: model.StatusUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			st := newMemStore()
			st.values[store.KeyAvailability] = string(tc.start)
			c, _ := newController(t, st)

			assert.Equal(t, tc.wantChanged, c.OnToggle(context.Background(), tc.sighted))
			assert.Equal(t, tc.want, c.Current())
		})
	}
}

func TestController_TransitionSurvivesPersistAndPublishFailure(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	st.setErr = errors.New("disk full")
	pub := &recordingPublish{err: errors.New("not connected")}
	c := NewController(st, pub.publish)

	// Both side effects fail; the in-memory transition still happens.
	assert.True(t, c.OnPresence(ctx, presence.EventAcquired))
	assert.Equal(t, model.StatusAvailable, c.Current())
}
