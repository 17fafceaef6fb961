// Package render projects the unit's state into a structured display frame.
// Render is pure; the display sink applies the frame to the panel.
package render

import (
	"fmt"

	"faculty-desk-unit/internal/model"
	"faculty-desk-unit/internal/queue"
)

const (
	// DefaultWidth is the character width of the panel's text area.
	DefaultWidth = 20
	// BodyPreviewLines is how many lines of the request body are shown.
	BodyPreviewLines = 2

	glyphUp   = "*"
	glyphDown = "!"
)

// Identity is the fixed header content for the unit.
type Identity struct {
	FacultyID  string `json:"faculty_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// Frame is the structured description the display sink consumes.
type Frame struct {
	Name         string   `json:"name"`
	Department   string   `json:"department"`
	StatusLabel  string   `json:"status_label"`
	NetworkGlyph string   `json:"network_glyph"`
	BrokerGlyph  string   `json:"broker_glyph"`
	QueueSummary string   `json:"queue_summary"`
	Requester    string   `json:"requester"`
	BodyPreview  []string `json:"body_preview"`
}

// Render builds a frame from the current state. width <= 0 falls back to
// DefaultWidth.
func Render(id Identity, status model.AvailabilityStatus, conn model.ConnectionState, q *queue.Queue, width int) Frame {
	if width <= 0 {
		width = DefaultWidth
	}

	f := Frame{
		Name:         Truncate(id.Name, width),
		Department:   Truncate(id.Department, width),
		StatusLabel:  status.Label(),
		NetworkGlyph: glyph(conn.NetworkAttached),
		BrokerGlyph:  glyph(conn.BrokerSessionActive),
	}

	current, ok := q.Current()
	if !ok {
		f.QueueSummary = "No pending requests"
		return f
	}

	f.QueueSummary = fmt.Sprintf("Request %d of %d", q.Cursor()+1, q.Len())
	requester := current.RequesterName
	if requester == "" {
		requester = current.RequesterID
	}
	f.Requester = Truncate(requester, width)
	f.BodyPreview = PreviewLines(current.Body, width, BodyPreviewLines)
	return f
}

func glyph(up bool) string {
	if up {
		return glyphUp
	}
	return glyphDown
}

// Truncate shortens s to max runes, ellipsized with "..." when it does not fit.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// PreviewLines breaks s into at most lines rows of width runes. The final row
// is ellipsized when content remains beyond it.
func PreviewLines(s string, width, lines int) []string {
	if s == "" || width <= 0 || lines <= 0 {
		return nil
	}
	runes := []rune(s)
	var out []string
	for i := 0; i < lines; i++ {
		if len(runes) == 0 {
			break
		}
		if len(runes) <= width {
			out = append(out, string(runes))
			runes = nil
			continue
		}
		if i == lines-1 {
			out = append(out, Truncate(string(runes), width))
			break
		}
		out = append(out, string(runes[:width]))
		runes = runes[width:]
	}
	return out
}
