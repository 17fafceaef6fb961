package model

import "time"

// PresenceState tracks whether the faculty beacon was sighted within the
// presence timeout window. Mutated only by the presence tracker.
type PresenceState struct {
	Sighted       bool
	LastSightedAt time.Time
}

// ConnectionState is the transient view of the network link. It is rebuilt at
// boot and after every failure; it is never persisted.
type ConnectionState struct {
	NetworkAttached     bool
	BrokerSessionActive bool
	LastAttemptAt       time.Time
}
