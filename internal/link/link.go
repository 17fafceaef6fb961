// Package link owns the network link lifecycle: network attachment, the broker
// session, the request subscription, and best-effort publications. Failure is
// never fatal; the unit keeps working locally while disconnected.
package link

import (
	"errors"
	"fmt"
	"log"
	"time"

	"faculty-desk-unit/internal/codec"
	"faculty-desk-unit/internal/model"
)

// ErrNotConnected is returned by publish operations while no broker session is
// active. The message is dropped, not queued.
var ErrNotConnected = errors.New("broker session not active")

// Session is the broker-facing transport the manager drives. The production
// implementation wraps paho; tests supply func-field fakes.
type Session interface {
	Connect(timeout time.Duration) error
	Connected() bool
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error
	Close()
}

// Prober reports whether the underlying network can reach the broker at all,
// independent of the broker session.
type Prober interface {
	Probe(timeout time.Duration) error
}

// AttachResult is what one EnsureAttached pass observed.
type AttachResult struct {
	Attempted       bool
	NetworkAttached bool
	SessionActive   bool
	Err             error
}

// Config carries the identity and timing knobs the manager needs.
type Config struct {
	FacultyID     string
	Department    string
	ClientID      string
	RetryInterval time.Duration
	AttachTimeout time.Duration
}

// Manager maintains the link with bounded, fixed-interval retry. All methods
// are called from the tick goroutine; the subscription handler runs on the
// transport's goroutine and only writes into the requests channel.
type Manager struct {
	session Session
	prober  Prober
	cfg     Config

	// currentStatus is re-published on every fresh session, since a new
	// session has no knowledge of prior state from the unit's perspective.
	currentStatus func() model.AvailabilityStatus

	state    model.ConnectionState
	requests chan model.ConsultationRequest
}

// NewManager wires a manager over the given transport.
func NewManager(session Session, prober Prober, cfg Config, currentStatus func() model.AvailabilityStatus) *Manager {
	return &Manager{
		session:       session,
		prober:        prober,
		cfg:           cfg,
		currentStatus: currentStatus,
		requests:      make(chan model.ConsultationRequest, 16),
	}
}

// EnsureAttached performs one bounded maintenance pass. Repeated calls within
// the retry interval are no-ops while disconnected.
func (m *Manager) EnsureAttached(now time.Time) AttachResult {
	if m.session.Connected() {
		m.state.NetworkAttached = true
		m.state.BrokerSessionActive = true
		return AttachResult{NetworkAttached: true, SessionActive: true}
	}
	m.state.BrokerSessionActive = false

	if !m.state.LastAttemptAt.IsZero() && now.Sub(m.state.LastAttemptAt) < m.cfg.RetryInterval {
		return AttachResult{NetworkAttached: m.state.NetworkAttached}
	}
	m.state.LastAttemptAt = now

	if err := m.prober.Probe(m.cfg.AttachTimeout); err != nil {
		m.state.NetworkAttached = false
		return AttachResult{Attempted: true, Err: fmt.Errorf("network unreachable: %w", err)}
	}
	m.state.NetworkAttached = true

	if err := m.session.Connect(m.cfg.AttachTimeout); err != nil {
		return AttachResult{Attempted: true, NetworkAttached: true, Err: fmt.Errorf("broker connect failed: %w", err)}
	}
	m.state.BrokerSessionActive = true

	if err := m.onSessionUp(now); err != nil {
		log.Printf("session setup incomplete: %v", err)
	}

	return AttachResult{Attempted: true, NetworkAttached: true, SessionActive: true}
}

// onSessionUp re-subscribes and re-asserts the unit's state on a fresh session.
func (m *Manager) onSessionUp(now time.Time) error {
	if err := m.session.Subscribe(RequestTopic(m.cfg.FacultyID), 1, m.onMessage); err != nil {
		return fmt.Errorf("subscribe failed: %w", err)
	}

	if payload, err := codec.EncodeSystemStatus("online", now); err == nil {
		if err := m.session.Publish(SystemTopic(m.cfg.ClientID), 1, true, payload); err != nil {
			log.Printf("system status not propagated: %v", err)
		}
	}

	return m.PublishStatus(m.currentStatus())
}

// onMessage decodes an inbound consultation request and hands it to the tick
// loop. Malformed payloads are discarded; a full channel drops the message
// (at-most-once delivery, never blocking the transport).
func (m *Manager) onMessage(topic string, payload []byte) {
	req, err := codec.DecodeRequest(payload)
	if err != nil {
		log.Printf("discarding message on %s: %v", topic, err)
		return
	}
	select {
	case m.requests <- req:
	default:
		log.Printf("request buffer full, dropping %s", req.ID)
	}
}

// Requests is the stream of decoded inbound consultation requests. The tick
// loop drains it once per tick.
func (m *Manager) Requests() <-chan model.ConsultationRequest {
	return m.requests
}

// PublishStatus publishes the availability status, retained, QoS 1.
func (m *Manager) PublishStatus(status model.AvailabilityStatus) error {
	if !m.session.Connected() {
		return ErrNotConnected
	}
	payload, err := codec.EncodeStatus(m.cfg.FacultyID, m.cfg.Department, status, time.Now())
	if err != nil {
		return err
	}
	return m.session.Publish(StatusTopic(m.cfg.FacultyID), 1, true, payload)
}

// PublishCompletion notifies the central system that a request was completed.
// While disconnected the notification is lost; there is no replay.
func (m *Manager) PublishCompletion(requestID string) error {
	if !m.session.Connected() {
		return ErrNotConnected
	}
	payload, err := codec.EncodeCompletion(m.cfg.FacultyID, requestID, time.Now())
	if err != nil {
		return err
	}
	return m.session.Publish(NotificationTopic, 1, false, payload)
}

// State returns the transient connection view for rendering.
func (m *Manager) State() model.ConnectionState {
	return m.state
}

// Close announces the unit offline and tears down the session.
func (m *Manager) Close() {
	if m.session.Connected() {
		if payload, err := codec.EncodeSystemStatus("offline", time.Now()); err == nil {
			if err := m.session.Publish(SystemTopic(m.cfg.ClientID), 1, true, payload); err != nil {
				log.Printf("offline announcement not propagated: %v", err)
			}
		}
	}
	m.session.Close()
}
