package model

// AvailabilityStatus is the operator-facing tri-state shown on the panel and
// published to the broker.
type AvailabilityStatus string

const (
	StatusUnavailable AvailabilityStatus = "unavailable"
	StatusAvailable   AvailabilityStatus = "available"
	StatusBusy        AvailabilityStatus = "busy"
)

// ParseAvailability maps a stored or wire string back to a status. The second
// return value is false for anything that is not one of the three states.
func ParseAvailability(s string) (AvailabilityStatus, bool) {
	switch AvailabilityStatus(s) {
	case StatusUnavailable, StatusAvailable, StatusBusy:
		return AvailabilityStatus(s), true
	}
	return "", false
}

// Label returns the display text for the status line.
func (s AvailabilityStatus) Label() string {
	switch s {
	case StatusAvailable:
		return "AVAILABLE"
	case StatusBusy:
		return "BUSY"
	default:
		return "UNAVAILABLE"
	}
}
