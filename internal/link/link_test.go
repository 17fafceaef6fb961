package link

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faculty-desk-unit/internal/codec"
	"faculty-desk-unit/internal/model"
)

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeSession is a func-field implementation of the broker transport.
type fakeSession struct {
	connected  bool
	connectErr error

	subscribed map[string]func(topic string, payload []byte)
	publishes  []published
}

func newFakeSession() *fakeSession {
	return &fakeSession{subscribed: map[string]func(string, []byte){}}
}

func (f *fakeSession) Connect(timeout time.Duration) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeSession) Connected() bool { return f.connected }

func (f *fakeSession) Publish(topic string, qos byte, retained bool, payload []byte) error {
	f.publishes = append(f.publishes, published{topic: topic, qos: qos, retained: retained, payload: payload})
	return nil
}

func (f *fakeSession) Subscribe(topic string, qos byte, handler func(string, []byte)) error {
	f.subscribed[topic] = handler
	return nil
}

func (f *fakeSession) Close() { f.connected = false }

type fakeProber struct {
	err error
}

func (f *fakeProber) Probe(timeout time.Duration) error { return f.err }

func testConfig() Config {
	return Config{
		FacultyID:     "fac-42",
		Department:    "Computer Science",
		ClientID:      "desk-fac-42",
		RetryInterval: 10 * time.Second,
		AttachTimeout: time.Second,
	}
}

func newTestManager(session Session, prober Prober) *Manager {
	return NewManager(session, prober, testConfig(), func() model.AvailabilityStatus {
		return model.StatusAvailable
	})
}

func TestManager_AttachSubscribesAndRepublishesStatus(t *testing.T) {
	session := newFakeSession()
	m := newTestManager(session, &fakeProber{})

	res := m.EnsureAttached(time.Now())
	assert.True(t, res.Attempted)
	assert.True(t, res.NetworkAttached)
	assert.True(t, res.SessionActive)
	require.NoError(t, res.Err)

	// Fresh session: request topic subscribed, online announcement and the
	// current status re-published.
	assert.Contains(t, session.subscribed, "faculty/fac-42/requests")

	require.Len(t, session.publishes, 2)
	assert.Equal(t, "consultease/system/desk-fac-42/status", session.publishes[0].topic)

	statusPub := session.publishes[1]
	assert.Equal(t, "faculty/fac-42/status", statusPub.topic)
	assert.True(t, statusPub.retained)
	assert.Equal(t, byte(1), statusPub.qos)

	var msg codec.StatusMessage
	require.NoError(t, json.Unmarshal(statusPub.payload, &msg))
	assert.Equal(t, "available", msg.Status)
	assert.Equal(t, "Computer Science", msg.Department)

	state := m.State()
	assert.True(t, state.NetworkAttached)
	assert.True(t, state.BrokerSessionActive)
}

func TestManager_RetryIsGatedByFixedInterval(t *testing.T) {
	session := newFakeSession()
	prober := &fakeProber{err: errors.New("no route to host")}
	m := newTestManager(session, prober)
	now := time.Now()

	res := m.EnsureAttached(now)
	assert.True(t, res.Attempted)
	assert.Error(t, res.Err)
	assert.False(t, m.State().NetworkAttached)

	// Within the retry interval further calls are no-ops.
	res = m.EnsureAttached(now.Add(3 * time.Second))
	assert.False(t, res.Attempted)

	// Past the interval a new attempt is made, and this time it succeeds.
	prober.err = nil
	res = m.EnsureAttached(now.Add(11 * time.Second))
	assert.True(t, res.Attempted)
	assert.True(t, res.SessionActive)
}

func TestManager_BrokerFailureLeavesNetworkAttached(t *testing.T) {
	session := newFakeSession()
	session.connectErr = errors.New("connection refused")
	m := newTestManager(session, &fakeProber{})

	res := m.EnsureAttached(time.Now())
	assert.True(t, res.Attempted)
	assert.True(t, res.NetworkAttached)
	assert.False(t, res.SessionActive)
	assert.Error(t, res.Err)

	state := m.State()
	assert.True(t, state.NetworkAttached)
	assert.False(t, state.BrokerSessionActive)
}

func TestManager_PublishWhileDisconnectedIsDropped(t *testing.T) {
	session := newFakeSession()
	m := newTestManager(session, &fakeProber{})

	err := m.PublishStatus(model.StatusBusy)
	assert.ErrorIs(t, err, ErrNotConnected)

	err = m.PublishCompletion("req-1")
	assert.ErrorIs(t, err, ErrNotConnected)

	assert.Empty(t, session.publishes)
}

func TestManager_PublishCompletion(t *testing.T) {
	session := newFakeSession()
	m := newTestManager(session, &fakeProber{})
	m.EnsureAttached(time.Now())
	session.publishes = nil

	require.NoError(t, m.PublishCompletion("req-7"))
	require.Len(t, session.publishes, 1)

	pub := session.publishes[0]
	assert.Equal(t, NotificationTopic, pub.topic)
	assert.False(t, pub.retained)

	var msg codec.CompletionMessage
	require.NoError(t, json.Unmarshal(pub.payload, &msg))
	assert.Equal(t, "fac-42", msg.FacultyID)
	assert.Equal(t, "req-7", msg.RequestID)
	assert.Equal(t, "completed", msg.Status)
}

func TestManager_InboundRequestsAreDecodedAndDelivered(t *testing.T) {
	session := newFakeSession()
	m := newTestManager(session, &fakeProber{})
	m.EnsureAttached(time.Now())

	handler := session.subscribed["faculty/fac-42/requests"]
	require.NotNil(t, handler)

	// Malformed payloads are discarded without disturbing anything.
	handler("faculty/fac-42/requests", []byte(`{"student_id":"s1"}`))
	handler("faculty/fac-42/requests", []byte(`not json`))
	select {
	case req := <-m.Requests():
		t.Fatalf("unexpected request delivered: %+v", req)
	default:
	}

	handler("faculty/fac-42/requests", []byte(`{"id":"q1","student_id":"s1","student_name":"Ada","request_text":"hello"}`))
	select {
	case req := <-m.Requests():
		assert.Equal(t, "q1", req.ID)
		assert.Equal(t, "Ada", req.RequesterName)
	default:
		t.Fatal("expected a decoded request on the channel")
	}
}

func TestManager_ConnectedSessionShortCircuitsAttach(t *testing.T) {
	session := newFakeSession()
	m := newTestManager(session, &fakeProber{})
	m.EnsureAttached(time.Now())
	subsBefore := len(session.subscribed)

	res := m.EnsureAttached(time.Now().Add(time.Minute))
	assert.False(t, res.Attempted)
	assert.True(t, res.SessionActive)
	assert.Len(t, session.subscribed, subsBefore)
}
