// Package codec encodes and decodes the three message shapes exchanged with
// the central system over the broker. Decoding failures are recoverable: the
// caller discards the message and carries on.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"faculty-desk-unit/internal/model"
)

// ErrMalformed marks an inbound payload that could not be decoded into a
// usable message. It is never fatal.
var ErrMalformed = errors.New("malformed payload")

// StatusMessage is the retained status publication on faculty/<id>/status.
type StatusMessage struct {
	FacultyID  string `json:"faculty_id"`
	Status     string `json:"status"`
	Department string `json:"department"`
	Timestamp  string `json:"timestamp"`
}

// CompletionMessage is the completion notification on consultease/notifications.
type CompletionMessage struct {
	FacultyID string `json:"faculty_id"`
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// SystemStatusMessage is the unit's own online/offline announcement, also used
// as the broker last-will payload.
type SystemStatusMessage struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// EncodeStatus serializes a status publication.
func EncodeStatus(facultyID, department string, status model.AvailabilityStatus, now time.Time) ([]byte, error) {
	return json.Marshal(StatusMessage{
		FacultyID:  facultyID,
		Status:     string(status),
		Department: department,
		Timestamp:  now.Format(time.RFC3339),
	})
}

// EncodeCompletion serializes a completion notification for a removed request.
func EncodeCompletion(facultyID, requestID string, now time.Time) ([]byte, error) {
	return json.Marshal(CompletionMessage{
		FacultyID: facultyID,
		RequestID: requestID,
		Status:    "completed",
		Timestamp: now.Format(time.RFC3339),
	})
}

// EncodeSystemStatus serializes the unit's online/offline announcement.
func EncodeSystemStatus(status string, now time.Time) ([]byte, error) {
	return json.Marshal(SystemStatusMessage{
		Status:    status,
		Timestamp: now.Format(time.RFC3339),
	})
}

// DecodeRequest parses an inbound consultation request. A payload that is not
// JSON or is missing the id field yields ErrMalformed.
func DecodeRequest(payload []byte) (model.ConsultationRequest, error) {
	var req model.ConsultationRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return model.ConsultationRequest{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if req.ID == "" {
		return model.ConsultationRequest{}, fmt.Errorf("%w: missing id", ErrMalformed)
	}
	return req, nil
}
